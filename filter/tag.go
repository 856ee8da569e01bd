package filter

import (
	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

type tag struct {
	name  string
	value string
}

// Tag matches shapes carrying the named auxiliary term with the given value.
func Tag(name, value string) ShapeFilter {
	return &tag{name: name, value: value}
}

func (f *tag) MatchesShape(shape *archetype.Shape) bool {
	term, ok := shape.Term(f.name)
	return ok && term.Kind == types.TermAuxiliary && term.Value == f.value
}
