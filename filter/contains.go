package filter

import (
	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
)

type contains struct {
	names []string
}

// Contains matches shapes that carry every one of the named terms, whatever
// else they carry.
func Contains(names ...string) ShapeFilter {
	return &contains{names: names}
}

func (f *contains) MatchesShape(shape *archetype.Shape) bool {
	for _, name := range f.names {
		if !shape.HasTerm(name) {
			return false
		}
	}
	return true
}
