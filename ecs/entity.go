package ecs

import (
	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

// EntityHandle is a lightweight, copyable reference to one entity. It carries
// no cached row or archetype: every access re-resolves through the registry's
// slot index, so a handle stays valid across archetype migrations and fails
// loudly once the entity is destroyed.
type EntityHandle struct {
	id  types.EntityID
	reg *Registry
}

// Handle builds a handle for an entity id. The id is not validated here;
// resolution is where a dangling id surfaces.
func (r *Registry) Handle(id types.EntityID) EntityHandle {
	return EntityHandle{id: id, reg: r}
}

func (h EntityHandle) ID() types.EntityID {
	return h.id
}

func (h EntityHandle) Registry() *Registry {
	return h.reg
}

// Slot is the resolved, transient location of an entity: its archetype and
// row. It is good for a burst of accesses without repeated index lookups and
// must be treated as invalidated the instant the entity's shape changes.
type Slot struct {
	Archetype *archetype.Archetype
	Row       int
}

// Resolve looks the entity up in the registry's slot index.
func (h EntityHandle) Resolve() (Slot, error) {
	ref, err := h.reg.slot(h.id)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Archetype: ref.arch, Row: ref.row}, nil
}

// Exists reports whether the entity currently resolves.
func (h EntityHandle) Exists() bool {
	_, err := h.reg.slot(h.id)
	return err == nil
}

// Validate is the non-failing existence check for a named column on the
// entity's current archetype, used before optional access.
func (h EntityHandle) Validate(name string) bool {
	ref, err := h.reg.slot(h.id)
	if err != nil {
		return false
	}
	return ref.arch.HasColumn(name)
}

// Attach attaches the component value to the entity, deriving the column name
// from the component type.
func (h EntityHandle) Attach(comp types.Component) error {
	return h.reg.AttachComponent(comp.Name(), comp, h.id)
}

// Detach removes the named component from the entity.
func (h EntityHandle) Detach(name string) error {
	return h.reg.DetachComponent(name, h.id)
}

// Tag attaches an auxiliary filtering term to the entity.
func (h EntityHandle) Tag(name, value string) error {
	return h.reg.AttachTag(name, value, h.id)
}

// Untag removes an auxiliary term.
func (h EntityHandle) Untag(name string) error {
	return h.reg.DetachTag(name, h.id)
}

// Destroy frees the entity's row. The id is never reused.
func (h EntityHandle) Destroy() error {
	return h.reg.DestroyEntity(h.id)
}

// Get returns a mutable typed reference to the entity's component, deriving
// the column name from the component type. The reference is invalidated by
// any shape change of the entity; do not hold it across an attach or detach.
func Get[T types.Component](h EntityHandle) (*T, error) {
	var t T
	return GetNamed[T](h, t.Name())
}

// GetNamed is Get with an explicit column name, for columns whose name does
// not come from the stored type.
func GetNamed[T any](h EntityHandle, name string) (*T, error) {
	slot, err := h.Resolve()
	if err != nil {
		return nil, err
	}
	return AtSlot[T](slot, name)
}

// Set overwrites the entity's component value.
func Set[T types.Component](h EntityHandle, value T) error {
	slot, err := h.Resolve()
	if err != nil {
		return err
	}
	col, err := slot.Archetype.Column(value.Name())
	if err != nil {
		return err
	}
	store, err := archetype.ColumnAs[T](col)
	if err != nil {
		return err
	}
	return store.Set(slot.Row, value)
}

// AtSlot reads a typed reference through an already-resolved slot, skipping
// the index lookup. One type assertion, no boxing.
func AtSlot[T any](slot Slot, name string) (*T, error) {
	col, err := slot.Archetype.Column(name)
	if err != nil {
		return nil, err
	}
	store, err := archetype.ColumnAs[T](col)
	if err != nil {
		return nil, err
	}
	return store.Get(slot.Row)
}
