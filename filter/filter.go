// Package filter provides the predicates queries use to match archetype
// shapes.
package filter

import (
	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
)

// ShapeFilter decides whether an archetype shape participates in a query.
// Filters are immutable; a query evaluates its filters against every archetype
// exactly once, when the archetype is first offered to it.
type ShapeFilter interface {
	MatchesShape(shape *archetype.Shape) bool
}
