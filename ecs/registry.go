// Package ecs implements the registry: the single owner of all archetypes,
// the entity-slot index, the component metadata table, the event bus and the
// live queries of one running simulation.
package ecs

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/events"
	ecslog "github.com/yvileapsis/TEHOM-old-sub000/log"
	"github.com/yvileapsis/TEHOM-old-sub000/query"
	"github.com/yvileapsis/TEHOM-old-sub000/statsd"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

var (
	ErrEntityIDExhausted          = eris.New("entity id space exhausted")
	ErrEntityDoesNotExist         = eris.New("entity does not exist")
	ErrComponentAlreadyRegistered = eris.New("component type name is already registered")
	ErrComponentNotRegistered     = eris.New("component type is not registered")
	ErrComponentAlreadyOnEntity   = eris.New("component already on entity")
	ErrComponentNotOnEntity       = eris.New("component not on entity")
	ErrTagAlreadyOnEntity         = eris.New("tag already on entity")
	ErrTagNotOnEntity             = eris.New("tag not on entity")
	ErrEntityAlreadyExists        = eris.New("entity already exists")
)

// slotRef is the registry's record of where an entity currently lives. It is
// rewritten on every migration; nothing outside the registry holds one across
// a mutation.
type slotRef struct {
	arch *archetype.Archetype
	row  int
}

// Registry owns the process state of one simulation: a monotonic entity-id
// counter, the archetype table, the entity-slot index, the registered
// component types, the event bus and the registered queries. Entities and
// archetypes live and die with the registry; nothing here is global.
//
// The registry is not safe for concurrent mutation. Steady-state usage is
// single-threaded from the owning simulation thread; the two opt-in parallel
// paths (parallel publish, parallel query iteration) never mutate registry
// tables.
type Registry struct {
	id     string
	logger zerolog.Logger
	bus    *events.Bus

	nextEntityID types.EntityID
	maxEntityID  types.EntityID

	components map[string]types.ComponentMetadata
	factories  map[string]types.ColumnFactory

	buckets  map[uint64][]*archetype.Archetype
	archList []*archetype.Archetype
	base     *archetype.Archetype

	slots map[types.EntityID]slotRef

	queries []*query.Query
}

// Option augments registry construction.
type Option func(*Registry)

// WithLogger replaces the registry's logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithEntityIDCeiling lowers the entity-id allocation ceiling. Allocation
// fails outright at the ceiling; ids never wrap or get reused.
func WithEntityIDCeiling(max types.EntityID) Option {
	return func(r *Registry) {
		r.maxEntityID = max
	}
}

// NewRegistry creates an empty registry. Entity ids start at 1; id 0 is
// reserved so a zero EntityID always means "no entity". The archetype for the
// bare intrinsic shape is created eagerly: every freshly created entity lives
// there until its first component or tag is attached.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		id:           uuid.NewString(),
		logger:       zerolog.Nop(),
		nextEntityID: 1,
		maxEntityID:  types.MaxEntityID,
		components:   map[string]types.ComponentMetadata{},
		factories:    map[string]types.ColumnFactory{},
		buckets:      map[uint64][]*archetype.Archetype{},
		slots:        map[types.EntityID]slotRef{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("registry_id", r.id).Logger()
	r.bus = events.NewBus(r.logger)

	base, err := r.getOrCreateArchetype(archetype.NewShape(nil))
	if err != nil {
		return nil, err
	}
	r.base = base
	return r, nil
}

// ID returns the registry's instance id, used for log correlation and
// snapshot namespacing.
func (r *Registry) ID() string {
	return r.id
}

func (r *Registry) Logger() *zerolog.Logger {
	return &r.logger
}

// Bus returns the registry's event bus.
func (r *Registry) Bus() *events.Bus {
	return r.bus
}

// RegisterComponent records a component type and its column factory. A
// duplicate name is rejected unconditionally; the error distinguishes an
// identical re-registration from a conflicting schema.
func (r *Registry) RegisterComponent(meta types.ComponentMetadata) error {
	name := meta.Name()
	existing, ok := r.components[name]
	if ok {
		same, err := types.IsSchemaValid(existing.GetSchema(), meta.GetSchema())
		if err != nil {
			return err
		}
		if same {
			return eris.Wrapf(ErrComponentAlreadyRegistered, "component %q", name)
		}
		return eris.Wrapf(ErrComponentAlreadyRegistered, "component %q with a conflicting schema", name)
	}
	r.components[name] = meta
	r.factories[name] = meta.NewColumn
	r.logger.Debug().Str("component", name).Msg("component registered")
	return nil
}

// ComponentByName returns the metadata for a registered component type.
func (r *Registry) ComponentByName(name string) (types.ComponentMetadata, error) {
	meta, ok := r.components[name]
	if !ok {
		return nil, eris.Wrapf(ErrComponentNotRegistered, "component %q", name)
	}
	return meta, nil
}

// getOrCreateArchetype resolves the archetype table entry for the shape,
// creating it on first use. New archetypes are immediately offered to every
// registered query, so queries stay in sync without rescans.
func (r *Registry) getOrCreateArchetype(shape *archetype.Shape) (*archetype.Archetype, error) {
	bucket := r.buckets[shape.Hash()]
	for _, arch := range bucket {
		if arch.Shape().Equal(shape) {
			return arch, nil
		}
	}
	arch, err := archetype.New(shape, r.factories)
	if err != nil {
		return nil, err
	}
	r.buckets[shape.Hash()] = append(bucket, arch)
	r.archList = append(r.archList, arch)
	for _, q := range r.queries {
		q.TryRegisterArchetype(arch)
	}
	ecslog.Shape(&r.logger, zerolog.DebugLevel, shape)
	statsd.EmitArchetypeCount(len(r.archList))
	return arch, nil
}

// allocEntityID hands out the next entity id, failing at the ceiling.
func (r *Registry) allocEntityID() (types.EntityID, error) {
	if r.nextEntityID >= r.maxEntityID {
		return 0, eris.Wrapf(ErrEntityIDExhausted, "at id %d", r.nextEntityID)
	}
	id := r.nextEntityID
	r.nextEntityID++
	return id, nil
}

// CreateEntity allocates a fresh entity with no components or tags.
func (r *Registry) CreateEntity() (EntityHandle, error) {
	id, err := r.allocEntityID()
	if err != nil {
		return EntityHandle{}, err
	}
	row, err := r.base.Register(nil, id)
	if err != nil {
		return EntityHandle{}, err
	}
	r.slots[id] = slotRef{arch: r.base, row: row}
	ecslog.Entity(&r.logger, zerolog.DebugLevel, id, r.base.Shape(), row)
	return EntityHandle{id: id, reg: r}, nil
}

// CreateEntityWith allocates an entity holding the given components in one
// step. All component types must already be registered.
func (r *Registry) CreateEntityWith(comps ...types.Component) (EntityHandle, error) {
	terms := make(map[string]types.Term, len(comps))
	values := make(map[string]any, len(comps))
	for _, comp := range comps {
		if _, err := r.ComponentByName(comp.Name()); err != nil {
			return EntityHandle{}, err
		}
		terms[comp.Name()] = types.Term{Kind: types.TermAssociated, TypeName: comp.Name()}
		values[comp.Name()] = comp
	}
	arch, err := r.getOrCreateArchetype(archetype.NewShape(terms))
	if err != nil {
		return EntityHandle{}, err
	}
	id, err := r.allocEntityID()
	if err != nil {
		return EntityHandle{}, err
	}
	row, err := arch.Register(values, id)
	if err != nil {
		return EntityHandle{}, err
	}
	r.slots[id] = slotRef{arch: arch, row: row}
	ecslog.Entity(&r.logger, zerolog.DebugLevel, id, arch.Shape(), row)
	for _, comp := range comps {
		r.bus.Publish(events.Event{
			Name:    events.ComponentRegistered,
			Scope:   events.ComponentScope(id, comp.Name()),
			Payload: comp,
		})
	}
	return EntityHandle{id: id, reg: r}, nil
}

// migrate moves an entity from its current archetype into the one matching
// newShape, carrying the given values. This is the only way an entity changes
// shape.
func (r *Registry) migrate(id types.EntityID, from slotRef, newShape *archetype.Shape, values map[string]any) error {
	arch, err := r.getOrCreateArchetype(newShape)
	if err != nil {
		return err
	}
	row, err := arch.Register(values, id)
	if err != nil {
		return err
	}
	if err := from.arch.Unregister(from.row); err != nil {
		return err
	}
	r.slots[id] = slotRef{arch: arch, row: row}
	ecslog.Migration(&r.logger, zerolog.DebugLevel, id, from.arch.Shape(), arch.Shape())
	return nil
}

// AttachComponent attaches a registered component to the entity, migrating it
// to the archetype with the added term, and fires the component-registered
// event scoped to the (entity, component) pair. Re-attaching a component that
// is already present fails; detach it first.
func (r *Registry) AttachComponent(name string, value any, id types.EntityID) error {
	start := time.Now()
	if _, err := r.ComponentByName(name); err != nil {
		return err
	}
	slot, err := r.slot(id)
	if err != nil {
		return err
	}
	term := types.Term{Kind: types.TermAssociated, TypeName: name}
	newShape, err := slot.arch.Shape().WithTerm(name, term)
	if err != nil {
		if eris.Is(eris.Cause(err), archetype.ErrTermAlreadyPresent) {
			return eris.Wrapf(ErrComponentAlreadyOnEntity, "component %q, entity %d", name, id)
		}
		return err
	}
	values, err := slot.arch.Values(slot.row)
	if err != nil {
		return err
	}
	values[name] = value
	if err := r.migrate(id, slot, newShape, values); err != nil {
		return err
	}
	r.bus.Publish(events.Event{
		Name:    events.ComponentRegistered,
		Scope:   events.ComponentScope(id, name),
		Payload: value,
	})
	statsd.EmitMigrationStat(start, "attach_component")
	return nil
}

// DetachComponent fires the component-unregistering event before any
// mutation, so subscribers can read the entity's final state, then migrates
// the entity to the archetype without the term, dropping the column's value.
func (r *Registry) DetachComponent(name string, id types.EntityID) error {
	start := time.Now()
	slot, err := r.slot(id)
	if err != nil {
		return err
	}
	if _, err := slot.arch.Shape().WithoutTerm(name); err != nil {
		if eris.Is(eris.Cause(err), archetype.ErrTermNotPresent) {
			return eris.Wrapf(ErrComponentNotOnEntity, "component %q, entity %d", name, id)
		}
		return err
	}
	r.bus.Publish(events.Event{
		Name:  events.ComponentUnregistering,
		Scope: events.ComponentScope(id, name),
	})
	// The subscriber may have mutated the entity; re-resolve and derive the
	// target shape from whatever the entity looks like now.
	slot, err = r.slot(id)
	if err != nil {
		return err
	}
	newShape, err := slot.arch.Shape().WithoutTerm(name)
	if err != nil {
		if eris.Is(eris.Cause(err), archetype.ErrTermNotPresent) {
			return eris.Wrapf(ErrComponentNotOnEntity, "component %q, entity %d", name, id)
		}
		return err
	}
	values, err := slot.arch.Values(slot.row)
	if err != nil {
		return err
	}
	delete(values, name)
	if err := r.migrate(id, slot, newShape, values); err != nil {
		return err
	}
	statsd.EmitMigrationStat(start, "detach_component")
	return nil
}

// AttachTag attaches an auxiliary term carrying an arbitrary value, used only
// for query filtering. Same migration protocol as components, but no backing
// column and no lifecycle event.
func (r *Registry) AttachTag(name, value string, id types.EntityID) error {
	start := time.Now()
	slot, err := r.slot(id)
	if err != nil {
		return err
	}
	term := types.Term{Kind: types.TermAuxiliary, Value: value}
	newShape, err := slot.arch.Shape().WithTerm(name, term)
	if err != nil {
		if eris.Is(eris.Cause(err), archetype.ErrTermAlreadyPresent) {
			return eris.Wrapf(ErrTagAlreadyOnEntity, "tag %q, entity %d", name, id)
		}
		return err
	}
	values, err := slot.arch.Values(slot.row)
	if err != nil {
		return err
	}
	if err := r.migrate(id, slot, newShape, values); err != nil {
		return err
	}
	statsd.EmitMigrationStat(start, "attach_tag")
	return nil
}

// DetachTag removes an auxiliary term.
func (r *Registry) DetachTag(name string, id types.EntityID) error {
	start := time.Now()
	slot, err := r.slot(id)
	if err != nil {
		return err
	}
	newShape, err := slot.arch.Shape().WithoutTerm(name)
	if err != nil {
		if eris.Is(eris.Cause(err), archetype.ErrTermNotPresent) {
			return eris.Wrapf(ErrTagNotOnEntity, "tag %q, entity %d", name, id)
		}
		return err
	}
	values, err := slot.arch.Values(slot.row)
	if err != nil {
		return err
	}
	if err := r.migrate(id, slot, newShape, values); err != nil {
		return err
	}
	statsd.EmitMigrationStat(start, "detach_tag")
	return nil
}

// DestroyEntity fires the component-unregistering event for each of the
// entity's columns, when anything is subscribed, then frees the row. The
// entity id is never reclaimed.
func (r *Registry) DestroyEntity(id types.EntityID) error {
	slot, err := r.slot(id)
	if err != nil {
		return err
	}
	for _, name := range slot.arch.Shape().ColumnNames() {
		scope := events.ComponentScope(id, name)
		if !r.bus.HasSubscribers(events.ComponentUnregistering, scope) {
			continue
		}
		r.bus.Publish(events.Event{Name: events.ComponentUnregistering, Scope: scope})
	}
	// Subscribers may have migrated the entity; free whatever row it holds
	// now.
	slot, err = r.slot(id)
	if err != nil {
		return err
	}
	if err := slot.arch.Unregister(slot.row); err != nil {
		return err
	}
	delete(r.slots, id)
	r.logger.Debug().Uint64("entity_id", uint64(id)).Msg("entity destroyed")
	return nil
}

// RegisterQuery tests every existing archetype against the query, then keeps
// the query subscribed to all future archetype creations.
func (r *Registry) RegisterQuery(q *query.Query) {
	for _, arch := range r.archList {
		q.TryRegisterArchetype(arch)
	}
	r.queries = append(r.queries, q)
}

// slot resolves an entity id to its current location.
func (r *Registry) slot(id types.EntityID) (slotRef, error) {
	slot, ok := r.slots[id]
	if !ok {
		return slotRef{}, eris.Wrapf(ErrEntityDoesNotExist, "entity %d", id)
	}
	return slot, nil
}

// ArchetypeCount returns the number of archetypes created so far.
func (r *Registry) ArchetypeCount() int {
	return len(r.archList)
}

// EntityCount returns the number of live entities.
func (r *Registry) EntityCount() int {
	return len(r.slots)
}

// Archetypes returns the archetype table in creation order. The snapshot
// store iterates this to save a whole registry.
func (r *Registry) Archetypes() []*archetype.Archetype {
	archs := make([]*archetype.Archetype, len(r.archList))
	copy(archs, r.archList)
	return archs
}

// AdoptArchetype bulk-loads count rows for the given term mapping from the
// stream, assigning the provided entity ids to the loaded rows in order. All
// associated component types must already be registered. The entity-id
// counter is advanced past the largest adopted id so future allocations never
// collide.
func (r *Registry) AdoptArchetype(terms map[string]types.Term, ids []types.EntityID, stream io.Reader) error {
	if len(ids) == 0 {
		return eris.New("cannot adopt an archetype with no entities")
	}
	arch, err := r.getOrCreateArchetype(archetype.NewShape(terms))
	if err != nil {
		return err
	}
	seen := make(map[types.EntityID]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return eris.New("cannot adopt entity id 0")
		}
		if _, ok := r.slots[id]; ok {
			return eris.Wrapf(ErrEntityAlreadyExists, "entity %d", id)
		}
		if _, ok := seen[id]; ok {
			return eris.Wrapf(ErrEntityAlreadyExists, "entity %d repeated in adopted ids", id)
		}
		seen[id] = struct{}{}
	}
	first, _, err := arch.ReadBulk(len(ids), stream)
	if err != nil {
		return err
	}
	for i, id := range ids {
		if err := arch.SetRowEntity(first+i, id); err != nil {
			return err
		}
		r.slots[id] = slotRef{arch: arch, row: first + i}
		if id >= r.nextEntityID {
			r.nextEntityID = id + 1
		}
	}
	r.logger.Info().
		Int("count", len(ids)).
		Stringer("shape", arch.Shape()).
		Msg("archetype adopted from stream")
	return nil
}
