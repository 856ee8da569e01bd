package filter

import (
	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
)

type not struct {
	filter ShapeFilter
}

func Not(filter ShapeFilter) ShapeFilter {
	return &not{filter: filter}
}

func (f *not) MatchesShape(shape *archetype.Shape) bool {
	return !f.filter.MatchesShape(shape)
}
