package filter

import (
	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
)

type and struct {
	filters []ShapeFilter
}

func And(filters ...ShapeFilter) ShapeFilter {
	return &and{filters: filters}
}

func (f *and) MatchesShape(shape *archetype.Shape) bool {
	for _, filter := range f.filters {
		if !filter.MatchesShape(shape) {
			return false
		}
	}
	return true
}
