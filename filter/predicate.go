package filter

import (
	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

type predicate struct {
	name string
	fn   func(types.Term) bool
}

// Predicate matches shapes for which the named term exists and satisfies the
// given function. This is the escape hatch for arbitrary sub-queries over term
// values.
func Predicate(name string, fn func(types.Term) bool) ShapeFilter {
	return &predicate{name: name, fn: fn}
}

func (f *predicate) MatchesShape(shape *archetype.Shape) bool {
	term, ok := shape.Term(f.name)
	return ok && f.fn(term)
}
