package filter

import (
	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

type exact struct {
	names []string
}

// Exact matches shapes whose non-intrinsic terms are exactly the names given.
func Exact(names ...string) ShapeFilter {
	return &exact{names: names}
}

func (f *exact) MatchesShape(shape *archetype.Shape) bool {
	if shape.Len()-1 != len(f.names) {
		return false
	}
	for _, name := range f.names {
		if name == types.EntityTermName || !shape.HasTerm(name) {
			return false
		}
	}
	return true
}
