// Package query implements persistent archetype filters with serial and
// parallel iteration over matching entities.
package query

import (
	"sort"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/filter"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

// ErrNoMatchingEntities is returned by First when the query matches nothing.
var ErrNoMatchingEntities = eris.New("no entity matches the query")

// Query is an immutable filter over shape terms plus a live set of matching
// archetypes. A query is registered once against a registry; from then on
// every newly created archetype is offered to it, so iteration never rescans
// the archetype table. Archetypes are never removed from a query because
// archetypes are never destroyed.
type Query struct {
	filters []filter.ShapeFilter

	mu      sync.RWMutex
	matches []*archetype.Archetype
	seen    map[*archetype.Archetype]struct{}
}

func New(filters ...filter.ShapeFilter) *Query {
	return &Query{
		filters: filters,
		seen:    map[*archetype.Archetype]struct{}{},
	}
}

// TryRegisterArchetype adds the archetype to the match set iff it is not
// already present and its shape satisfies every filter. Idempotent.
func (q *Query) TryRegisterArchetype(arch *archetype.Archetype) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.seen[arch]; ok {
		return false
	}
	for _, f := range q.filters {
		if !f.MatchesShape(arch.Shape()) {
			return false
		}
	}
	q.seen[arch] = struct{}{}
	q.matches = append(q.matches, arch)
	return true
}

// matchedArchetypes snapshots the match set in archetype-table order.
func (q *Query) matchedArchetypes() []*archetype.Archetype {
	q.mu.RLock()
	defer q.mu.RUnlock()
	matches := make([]*archetype.Archetype, len(q.matches))
	copy(matches, q.matches)
	return matches
}

// Cursor points at one occupied row during iteration. The typed column
// references it hands out are valid only for the duration of the callback.
type Cursor struct {
	arch *archetype.Archetype
	row  int
	id   types.EntityID
}

func (c *Cursor) Entity() types.EntityID {
	return c.id
}

func (c *Cursor) Archetype() *archetype.Archetype {
	return c.arch
}

func (c *Cursor) Row() int {
	return c.row
}

// Get returns a mutable typed reference to the named column at the cursor's
// row. One type assertion per call, no boxing.
func Get[T any](c *Cursor, name string) (*T, error) {
	col, err := c.arch.Column(name)
	if err != nil {
		return nil, err
	}
	store, err := archetype.ColumnAs[T](col)
	if err != nil {
		return nil, err
	}
	return store.Get(c.row)
}

// Each calls fn for every matching entity: archetype-table order across
// archetypes, row order within one (free-list churn order, not creation
// order). Return false from fn to stop.
func (q *Query) Each(fn func(*Cursor) bool) {
	cur := &Cursor{}
	for _, arch := range q.matchedArchetypes() {
		stopped := false
		cur.arch = arch
		arch.Each(func(row int, id types.EntityID) bool {
			cur.row = row
			cur.id = id
			if !fn(cur) {
				stopped = true
				return false
			}
			return true
		})
		if stopped {
			return
		}
	}
}

// Fold threads an accumulator through every matching entity in Each order.
func Fold[A any](q *Query, acc A, fn func(A, *Cursor) A) A {
	q.Each(func(cur *Cursor) bool {
		acc = fn(acc, cur)
		return true
	})
	return acc
}

// Count returns the number of entities currently matching the query.
func (q *Query) Count() int {
	count := 0
	for _, arch := range q.matchedArchetypes() {
		count += arch.Count()
	}
	return count
}

// First returns the first matching entity in Each order.
func (q *Query) First() (types.EntityID, error) {
	found := false
	var id types.EntityID
	q.Each(func(cur *Cursor) bool {
		id = cur.Entity()
		found = true
		return false
	})
	if !found {
		return 0, eris.Wrap(ErrNoMatchingEntities, "")
	}
	return id, nil
}

// MustFirst panics when the query matches nothing.
func (q *Query) MustFirst() types.EntityID {
	id, err := q.First()
	if err != nil {
		panic("no entity matches the query")
	}
	return id
}

// IterateParallel runs fn over matching entities with one task per matching
// archetype. Within each archetype the named columns are guarded by their
// per-column locks for the duration of the scan; archetypes run concurrently
// with each other. The call does not return until all spawned work completes.
//
// Hard constraints on fn, not enforceable here: it must not attach or detach
// components or tags (a migration frees and writes rows of the very archetype
// being scanned), and it must not touch state outside the locked columns
// without its own synchronization. No ordering is guaranteed across
// archetypes.
func (q *Query) IterateParallel(columns []string, fn func(*Cursor)) error {
	matches := q.matchedArchetypes()

	// Locks are resolved up front so a missing column fails the whole call
	// before any task runs. Lock order is sorted column name, the same in
	// every task, so concurrent queries over overlapping column sets cannot
	// deadlock.
	ordered := make([]string, len(columns))
	copy(ordered, columns)
	sort.Strings(ordered)
	locks := make([][]*sync.Mutex, len(matches))
	for i, arch := range matches {
		for _, name := range ordered {
			lock, err := arch.ColumnLock(name)
			if err != nil {
				return err
			}
			locks[i] = append(locks[i], lock)
		}
	}

	var wg sync.WaitGroup
	for i, arch := range matches {
		i, arch := i, arch
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, lock := range locks[i] {
				lock.Lock()
			}
			defer func() {
				for _, lock := range locks[i] {
					lock.Unlock()
				}
			}()
			cur := &Cursor{arch: arch}
			arch.Each(func(row int, id types.EntityID) bool {
				cur.row = row
				cur.id = id
				fn(cur)
				return true
			})
		}()
	}
	wg.Wait()
	return nil
}
