package filter

import (
	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
)

type or struct {
	filters []ShapeFilter
}

func Or(filters ...ShapeFilter) ShapeFilter {
	return &or{filters: filters}
}

func (f *or) MatchesShape(shape *archetype.Shape) bool {
	for _, filter := range f.filters {
		if filter.MatchesShape(shape) {
			return true
		}
	}
	return false
}
