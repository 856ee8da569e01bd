package types

import "math"

// EntityID is the unique identifier for an entity. IDs are allocated
// monotonically by a registry and are never reused, even after the entity is
// destroyed.
type EntityID uint64

// SubscriptionID identifies one event subscription. Like entity IDs,
// subscription IDs are monotonic and never recycled.
type SubscriptionID uint64

const (
	// MaxEntityID is the default ceiling for entity ID allocation. Allocation
	// fails outright when the ceiling is reached; IDs never wrap.
	MaxEntityID = EntityID(math.MaxUint64)

	// MaxSubscriptionID is the ceiling for subscription ID allocation.
	MaxSubscriptionID = SubscriptionID(math.MaxUint64)
)
