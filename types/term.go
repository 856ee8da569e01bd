package types

// TermKind distinguishes the three roles a term can play inside a shape.
type TermKind uint8

const (
	// TermIntrinsic is the entity-identifier term present on every shape. It
	// carries the slot bookkeeping for the archetype and cannot be added or
	// removed by callers.
	TermIntrinsic TermKind = iota
	// TermAssociated names a registered component type backed by a real data
	// column in the archetype.
	TermAssociated
	// TermAuxiliary is a filter-only tag. It participates in shape identity
	// and query matching but has no storage column.
	TermAuxiliary
)

// EntityTermName is the reserved name of the intrinsic entity-identifier term.
const EntityTermName = "entity_id"

// Term is one named entry of a shape: either a stored component column
// (intrinsic/associated) or a non-stored filtering tag (auxiliary).
type Term struct {
	Kind TermKind `json:"kind"`
	// TypeName is the registered component type name for associated terms.
	TypeName string `json:"type_name,omitempty"`
	// Value is the tag payload for auxiliary terms.
	Value string `json:"value,omitempty"`
}

func (k TermKind) String() string {
	switch k {
	case TermIntrinsic:
		return "intrinsic"
	case TermAssociated:
		return "associated"
	case TermAuxiliary:
		return "auxiliary"
	}
	return "unknown"
}

// HasColumn reports whether a term of this kind is backed by a storage column.
func (k TermKind) HasColumn() bool {
	return k == TermAssociated
}
