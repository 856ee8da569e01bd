// Package archetype implements the columnar storage unit of the engine: a
// shape (the structural identity of one unique term combination) and the
// archetype that owns one storage column per associated term of that shape.
package archetype

import (
	"hash/fnv"
	"sort"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

var (
	// ErrIntrinsicTermImmutable is returned when a caller attempts to add or
	// remove the entity-identifier term. That term is structural.
	ErrIntrinsicTermImmutable = eris.New("the entity identifier term cannot be added or removed")
	// ErrTermAlreadyPresent is returned by WithTerm for a name the shape
	// already carries. Callers must remove the old term first.
	ErrTermAlreadyPresent = eris.New("term is already present in the shape")
	// ErrTermNotPresent is returned by WithoutTerm for an unknown term name.
	ErrTermNotPresent = eris.New("term is not present in the shape")
)

// Shape is the immutable, structurally comparable identity of one archetype.
// Two shapes are equal iff their term mappings are equal; the hash is computed
// once at construction because shapes are used as lookup keys on every entity
// mutation. Every shape unconditionally contains the intrinsic
// entity-identifier term.
type Shape struct {
	terms       map[string]types.Term
	names       []string // all term names, sorted
	columnNames []string // associated term names only, sorted
	hash        uint64
}

// NewShape builds a shape from the given term mapping. The intrinsic
// entity-identifier term is injected unconditionally; construction is
// deterministic regardless of the map's insertion order.
func NewShape(terms map[string]types.Term) *Shape {
	m := make(map[string]types.Term, len(terms)+1)
	for name, term := range terms {
		m[name] = term
	}
	m[types.EntityTermName] = types.Term{Kind: types.TermIntrinsic}
	return newShape(m)
}

// FromComponents builds the shape for a set of component types. Two entities
// created with the same components in a different call order land in the same
// shape.
func FromComponents(comps ...types.Component) *Shape {
	terms := make(map[string]types.Term, len(comps))
	for _, comp := range comps {
		terms[comp.Name()] = types.Term{Kind: types.TermAssociated, TypeName: comp.Name()}
	}
	return NewShape(terms)
}

// newShape takes ownership of the map.
func newShape(terms map[string]types.Term) *Shape {
	names := make([]string, 0, len(terms))
	for name := range terms {
		names = append(names, name)
	}
	sort.Strings(names)

	columnNames := make([]string, 0, len(names))
	h := fnv.New64a()
	for _, name := range names {
		term := terms[name]
		_, _ = h.Write([]byte(name))
		_, _ = h.Write([]byte{0, byte(term.Kind)})
		_, _ = h.Write([]byte(term.TypeName))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(term.Value))
		_, _ = h.Write([]byte{0})
		if term.Kind.HasColumn() {
			columnNames = append(columnNames, name)
		}
	}

	return &Shape{
		terms:       terms,
		names:       names,
		columnNames: columnNames,
		hash:        h.Sum64(),
	}
}

// Hash returns the cached structural hash.
func (s *Shape) Hash() uint64 {
	return s.hash
}

// Equal reports structural equality. The cached hash comparison short-circuits
// before the full term comparison.
func (s *Shape) Equal(other *Shape) bool {
	if s == other {
		return true
	}
	if s.hash != other.hash || len(s.terms) != len(other.terms) {
		return false
	}
	for name, term := range s.terms {
		otherTerm, ok := other.terms[name]
		if !ok || term != otherTerm {
			return false
		}
	}
	return true
}

// Term returns the named term.
func (s *Shape) Term(name string) (types.Term, bool) {
	term, ok := s.terms[name]
	return term, ok
}

// HasTerm reports whether the shape carries the named term.
func (s *Shape) HasTerm(name string) bool {
	_, ok := s.terms[name]
	return ok
}

// Names returns the sorted term names. The returned slice is shared and must
// not be mutated.
func (s *Shape) Names() []string {
	return s.names
}

// ColumnNames returns the sorted names of terms backed by storage columns.
// This is the authoritative column order for bulk load and save. The returned
// slice is shared and must not be mutated.
func (s *Shape) ColumnNames() []string {
	return s.columnNames
}

// Len returns the number of terms, the intrinsic term included.
func (s *Shape) Len() int {
	return len(s.terms)
}

// TermMap returns a copy of the full term mapping, suitable for serialization.
func (s *Shape) TermMap() map[string]types.Term {
	m := make(map[string]types.Term, len(s.terms))
	for name, term := range s.terms {
		m[name] = term
	}
	return m
}

// WithTerm returns a new shape with one term added. The receiver is never
// mutated. Adding the intrinsic term or a name already present fails.
func (s *Shape) WithTerm(name string, term types.Term) (*Shape, error) {
	if name == types.EntityTermName || term.Kind == types.TermIntrinsic {
		return nil, eris.Wrapf(ErrIntrinsicTermImmutable, "cannot add term %q", name)
	}
	if _, ok := s.terms[name]; ok {
		return nil, eris.Wrapf(ErrTermAlreadyPresent, "cannot add term %q", name)
	}
	m := s.TermMap()
	m[name] = term
	return newShape(m), nil
}

// WithoutTerm returns a new shape with one term removed. The receiver is never
// mutated. Removing the intrinsic term or an absent name fails.
func (s *Shape) WithoutTerm(name string) (*Shape, error) {
	if name == types.EntityTermName {
		return nil, eris.Wrapf(ErrIntrinsicTermImmutable, "cannot remove term %q", name)
	}
	if _, ok := s.terms[name]; !ok {
		return nil, eris.Wrapf(ErrTermNotPresent, "cannot remove term %q", name)
	}
	m := s.TermMap()
	delete(m, name)
	return newShape(m), nil
}

// String renders the shape for logs: term names joined with "+", auxiliary
// terms rendered as name=value.
func (s *Shape) String() string {
	parts := make([]string, 0, len(s.names))
	for _, name := range s.names {
		term := s.terms[name]
		if term.Kind == types.TermAuxiliary {
			parts = append(parts, name+"="+term.Value)
			continue
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, "+")
}
