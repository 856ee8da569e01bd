// Package events implements the name-addressed publish/subscribe bus owned by
// the registry, plus the websocket stream relay for external listeners.
package events

import (
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

// ParallelSuffix is the reserved event-name suffix selecting parallel
// dispatch. A parallel event is distinguished from its serial counterpart
// purely by this suffix, not by a separate type.
const ParallelSuffix = ":parallel"

// Well-known event names.
const (
	// ComponentRegistered fires after a component is attached to an entity,
	// scoped to that (entity, component) pair.
	ComponentRegistered = "component_registered"
	// ComponentUnregistering fires before a component is detached, so
	// subscribers can read the final state.
	ComponentUnregistering = "component_unregistering"

	// Per-frame events relayed for the surrounding simulation. The bus
	// implements no per-frame logic of its own beyond dispatch.
	Update     = "update"
	PostUpdate = "post-update"
	Render     = "render"
	Actualize  = "actualize"
)

var (
	ErrSubscriptionIDExhausted = eris.New("subscription id space exhausted")
	ErrUnknownSubscription     = eris.New("no subscription with that id")
	// ErrSubscriptionBookkeeping indicates the subscription tables disagree
	// with each other. This is a bug in the bookkeeping itself, not in user
	// input.
	ErrSubscriptionBookkeeping = eris.New("subscription bookkeeping mismatch")
)

// ScopeKind selects how narrowly a subscription or publication is addressed.
type ScopeKind uint8

const (
	ScopeGlobal ScopeKind = iota
	ScopeEntity
	ScopeComponent
)

// Scope addresses an event: globally, to one entity, or to one
// (entity, component-name) pair.
type Scope struct {
	Kind      ScopeKind
	Entity    types.EntityID
	Component string
}

func GlobalScope() Scope {
	return Scope{Kind: ScopeGlobal}
}

func EntityScope(id types.EntityID) Scope {
	return Scope{Kind: ScopeEntity, Entity: id}
}

func ComponentScope(id types.EntityID, component string) Scope {
	return Scope{Kind: ScopeComponent, Entity: id, Component: component}
}

// Event is one published value. Subscribers receive it by value and must not
// assume any mutable simulation-state reference: parallel dispatch provides no
// protection for shared state.
type Event struct {
	Name    string
	Scope   Scope
	Payload any
}

// Handler is one subscriber callback.
type Handler func(Event)

type subscriber struct {
	id types.SubscriptionID
	fn Handler
}

type subKey struct {
	name  string
	scope Scope
}

// Bus is the registry's event bus. Subscriptions are keyed by
// (event name, scope); subscription ids are monotonic and fail, rather than
// wrap, when exhausted. The bus is owned by one registry and carries no
// process-global state.
type Bus struct {
	mu     sync.Mutex
	nextID types.SubscriptionID
	maxID  types.SubscriptionID
	subs   map[subKey][]subscriber
	byID   map[types.SubscriptionID]subKey
	taps   []Handler
	logger zerolog.Logger
}

// BusOption augments bus construction.
type BusOption func(*Bus)

// WithSubscriptionIDCeiling lowers the subscription-id allocation ceiling.
// Allocation fails outright at the ceiling; ids never wrap or get reused.
func WithSubscriptionIDCeiling(max types.SubscriptionID) BusOption {
	return func(b *Bus) {
		b.maxID = max
	}
}

func NewBus(logger zerolog.Logger, opts ...BusOption) *Bus {
	b := &Bus{
		nextID: 1,
		maxID:  types.MaxSubscriptionID,
		subs:   map[subKey][]subscriber{},
		byID:   map[types.SubscriptionID]subKey{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers a callback for the named event at the given scope.
// Callbacks at one key run in registration order on serial publish.
func (b *Bus) Subscribe(name string, scope Scope, fn Handler) (types.SubscriptionID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nextID >= b.maxID {
		return 0, eris.Wrapf(ErrSubscriptionIDExhausted, "at id %d", b.nextID)
	}
	id := b.nextID
	b.nextID++
	key := subKey{name: name, scope: scope}
	b.subs[key] = append(b.subs[key], subscriber{id: id, fn: fn})
	b.byID[id] = key
	b.logger.Debug().
		Str("event", name).
		Uint64("subscription_id", uint64(id)).
		Msg("subscribed")
	return id, nil
}

// Unsubscribe removes one subscription by id.
func (b *Bus) Unsubscribe(id types.SubscriptionID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	key, ok := b.byID[id]
	if !ok {
		return eris.Wrapf(ErrUnknownSubscription, "id %d", id)
	}
	delete(b.byID, id)
	list := b.subs[key]
	for i, sub := range list {
		if sub.id != id {
			continue
		}
		b.subs[key] = append(list[:i], list[i+1:]...)
		if len(b.subs[key]) == 0 {
			delete(b.subs, key)
		}
		return nil
	}
	// The id table pointed at a list that does not contain the id.
	return eris.Wrapf(ErrSubscriptionBookkeeping, "id %d missing from its subscriber list", id)
}

// HasSubscribers reports whether a publish at the given scope would reach
// anyone. Used to skip capture work when nothing listens; an optimization, not
// a correctness requirement.
func (b *Bus) HasSubscribers(name string, scope Scope) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, key := range matchKeys(name, scope) {
		if len(b.subs[key]) > 0 {
			return true
		}
	}
	return false
}

// matchKeys lists the subscription keys a publication at the given scope
// reaches: its own scope plus every enclosing one.
func matchKeys(name string, scope Scope) []subKey {
	keys := []subKey{{name: name, scope: GlobalScope()}}
	switch scope.Kind {
	case ScopeGlobal:
	case ScopeEntity:
		keys = append(keys, subKey{name: name, scope: scope})
	case ScopeComponent:
		keys = append(keys,
			subKey{name: name, scope: EntityScope(scope.Entity)},
			subKey{name: name, scope: scope},
		)
	}
	return keys
}

// Publish dispatches the event to every matching subscriber. Names carrying
// the parallel suffix dispatch one task per subscriber and block until all
// complete (a join barrier, not a cancellation point); all other names
// dispatch synchronously in subscription order.
func (b *Bus) Publish(ev Event) {
	subs := b.collect(ev)
	if strings.HasSuffix(ev.Name, ParallelSuffix) {
		var wg sync.WaitGroup
		for _, sub := range subs {
			sub := sub
			wg.Add(1)
			go func() {
				defer wg.Done()
				sub.fn(ev)
			}()
		}
		wg.Wait()
		return
	}
	for _, sub := range subs {
		sub.fn(ev)
	}
}

// collect snapshots the matching subscribers in registration order, and the
// taps, under the lock; dispatch happens outside it so subscribers may
// subscribe or unsubscribe reentrantly.
func (b *Bus) collect(ev Event) []subscriber {
	b.mu.Lock()
	matched := make([]subscriber, 0, 4)
	for _, key := range matchKeys(ev.Name, ev.Scope) {
		matched = append(matched, b.subs[key]...)
	}
	taps := b.taps
	b.mu.Unlock()

	// Subscription ids are monotonic, so sorting by id restores global
	// registration order across the merged scopes.
	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })
	for _, tap := range taps {
		tap(ev)
	}
	return matched
}

// AttachTap registers a callback invoked for every published event regardless
// of name or scope. The stream relay uses this to mirror traffic outward.
func (b *Bus) AttachTap(fn Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.taps = append(b.taps, fn)
}

// SubscriptionCount returns the number of live subscriptions.
func (b *Bus) SubscriptionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.byID)
}
