package archetype

import (
	"io"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

// initialRows is the capacity an archetype's columns start with on first
// growth.
const initialRows = 8

var (
	// ErrRowNotOccupied is returned when an operation targets a row that holds
	// no live entity.
	ErrRowNotOccupied = eris.New("row is not occupied")
	// ErrMissingColumnFactory is returned at archetype creation when an
	// associated term names a component type with no registered column
	// factory.
	ErrMissingColumnFactory = eris.New("no column factory registered for component type")
	// ErrNoSuchColumn is returned when a named column is absent from the
	// archetype. This indicates the caller queried a shape the entity does not
	// have.
	ErrNoSuchColumn = eris.New("archetype has no column with that name")
)

// SlotState tags one row of the intrinsic store.
type SlotState uint8

const (
	// SlotFree marks a row holding no entity: either reclaimed into the free
	// list or never allocated.
	SlotFree SlotState = iota
	// SlotOccupied marks a row holding a live entity.
	SlotOccupied
)

// Slot is the intrinsic per-row record: which entity occupies the row, if any.
// Keeping the occupancy tag and entity ID in one value keeps the free-list
// invariant checkable in one place.
type Slot struct {
	State  SlotState
	Entity types.EntityID
}

// Archetype owns one storage column per associated term of its shape, plus the
// intrinsic slot column, a free list of reclaimed rows and a monotonic
// high-water mark. A row is exactly one of: occupied, in the free list, or at
// or above the high-water mark.
//
// Archetypes are created lazily the first time an entity needs their exact
// shape and are never destroyed, so query bindings stay valid for the life of
// the registry.
type Archetype struct {
	shape   *Shape
	columns map[string]types.Column
	locks   map[string]*sync.Mutex

	slots     []Slot
	freeRows  []int
	freeIndex int // high-water mark; rows at or above it were never allocated
	length    int // shared logical length of every column
}

// New builds an empty archetype for the shape. Columns are built through the
// factory table keyed by component type name, so no runtime type introspection
// happens here.
func New(shape *Shape, factories map[string]types.ColumnFactory) (*Archetype, error) {
	columns := make(map[string]types.Column, len(shape.ColumnNames()))
	locks := make(map[string]*sync.Mutex, len(shape.ColumnNames()))
	for _, name := range shape.ColumnNames() {
		term, _ := shape.Term(name)
		factory, ok := factories[term.TypeName]
		if !ok {
			return nil, eris.Wrapf(ErrMissingColumnFactory, "term %q, component type %q", name, term.TypeName)
		}
		columns[name] = factory(name)
		locks[name] = &sync.Mutex{}
	}
	return &Archetype{
		shape:   shape,
		columns: columns,
		locks:   locks,
	}, nil
}

func (a *Archetype) Shape() *Shape {
	return a.shape
}

// Column returns the named storage column.
func (a *Archetype) Column(name string) (types.Column, error) {
	col, ok := a.columns[name]
	if !ok {
		return nil, eris.Wrapf(ErrNoSuchColumn, "column %q, shape %s", name, a.shape)
	}
	return col, nil
}

// HasColumn is the non-failing existence check used before optional access.
func (a *Archetype) HasColumn(name string) bool {
	_, ok := a.columns[name]
	return ok
}

// ColumnLock returns the mutex guarding the named column during parallel
// iteration. Locks are per column; archetypes share nothing.
func (a *Archetype) ColumnLock(name string) (*sync.Mutex, error) {
	lock, ok := a.locks[name]
	if !ok {
		return nil, eris.Wrapf(ErrNoSuchColumn, "column %q, shape %s", name, a.shape)
	}
	return lock, nil
}

// Len returns the shared logical length of the archetype's columns.
func (a *Archetype) Len() int {
	return a.length
}

// HighWater returns the current high-water mark. Rows at or above it have
// never been allocated.
func (a *Archetype) HighWater() int {
	return a.freeIndex
}

// FreeCount returns the number of reclaimed rows below the high-water mark.
func (a *Archetype) FreeCount() int {
	return len(a.freeRows)
}

// Count returns the number of live entities in the archetype.
func (a *Archetype) Count() int {
	return a.freeIndex - len(a.freeRows)
}

// Slot returns the intrinsic record for the row.
func (a *Archetype) Slot(row int) (Slot, error) {
	if row < 0 || row >= a.length {
		return Slot{}, eris.Wrapf(ErrRowOutOfRange, "row %d, length %d", row, a.length)
	}
	return a.slots[row], nil
}

// grow extends every column and the slot store in lock-step so the shared
// length stays the single authoritative number.
func (a *Archetype) grow() {
	n := a.length
	if n == 0 {
		n = initialRows
	}
	for _, col := range a.columns {
		col.Extend(n)
	}
	a.slots = append(a.slots, make([]Slot, n)...)
	a.length += n
}

// allocRow reuses a freed row when one exists, otherwise advances the
// high-water mark, growing all columns if the mark reached capacity.
func (a *Archetype) allocRow() int {
	if n := len(a.freeRows); n > 0 {
		row := a.freeRows[n-1]
		a.freeRows = a.freeRows[:n-1]
		return row
	}
	if a.freeIndex == a.length {
		a.grow()
	}
	row := a.freeIndex
	a.freeIndex++
	return row
}

// Register allocates a row for the entity and writes the supplied named values
// into the matching columns. A value naming a column absent from this
// archetype is skipped, not an error: call sites derive the column set from
// the shape itself.
func (a *Archetype) Register(values map[string]any, id types.EntityID) (int, error) {
	row := a.allocRow()
	for name, value := range values {
		col, ok := a.columns[name]
		if !ok {
			continue
		}
		if err := col.SetValue(row, value); err != nil {
			// Roll the allocation back so the failed registration leaves no
			// half-written occupied row.
			for _, written := range a.columns {
				_ = written.Zero(row)
			}
			a.freeRow(row)
			return 0, err
		}
	}
	a.slots[row] = Slot{State: SlotOccupied, Entity: id}
	return row, nil
}

// Unregister zeroes every column at the row, clears the intrinsic record and
// returns the row to the allocator. Unregistering the most recently allocated
// row decrements the high-water mark instead of growing the free list, keeping
// the common append/remove pattern free-list-neutral.
func (a *Archetype) Unregister(row int) error {
	if row < 0 || row >= a.length {
		return eris.Wrapf(ErrRowOutOfRange, "row %d, length %d", row, a.length)
	}
	if a.slots[row].State != SlotOccupied {
		return eris.Wrapf(ErrRowNotOccupied, "row %d, shape %s", row, a.shape)
	}
	for _, col := range a.columns {
		if err := col.Zero(row); err != nil {
			return err
		}
	}
	a.freeRow(row)
	return nil
}

func (a *Archetype) freeRow(row int) {
	a.slots[row] = Slot{}
	if row == a.freeIndex-1 {
		a.freeIndex--
		return
	}
	a.freeRows = append(a.freeRows, row)
}

// Values captures a boxed copy of every column value at the row. This is the
// migration path: the copies are re-registered into the destination archetype.
func (a *Archetype) Values(row int) (map[string]any, error) {
	if row < 0 || row >= a.length || a.slots[row].State != SlotOccupied {
		return nil, eris.Wrapf(ErrRowNotOccupied, "row %d, shape %s", row, a.shape)
	}
	values := make(map[string]any, len(a.columns))
	for name, col := range a.columns {
		value, err := col.Value(row)
		if err != nil {
			return nil, err
		}
		values[name] = value
	}
	return values, nil
}

// ReadBulk bulk-loads count rows starting at the current high-water mark,
// reading each column's tightly-packed elements in the shape's column order.
// The free list is not consulted: bulk-loaded archetypes are append-only at
// load time. Loaded rows are marked occupied with a zero entity ID; the caller
// assigns real IDs through SetRowEntity.
func (a *Archetype) ReadBulk(count int, r io.Reader) (firstRow, lastRow int, err error) {
	if count <= 0 {
		return 0, 0, eris.New("bulk load count must be positive")
	}
	first := a.freeIndex
	for a.length < first+count {
		a.grow()
	}
	for _, name := range a.shape.ColumnNames() {
		if err := a.columns[name].ReadBulk(count, first, r); err != nil {
			return 0, 0, err
		}
	}
	for row := first; row < first+count; row++ {
		a.slots[row] = Slot{State: SlotOccupied}
	}
	a.freeIndex = first + count
	return first, first + count - 1, nil
}

// WriteBulk writes the given rows of every column to w, in the shape's column
// order, in the format ReadBulk consumes.
func (a *Archetype) WriteBulk(w io.Writer, rows []int) error {
	for _, name := range a.shape.ColumnNames() {
		if err := a.columns[name].WriteRows(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// SetRowEntity records which entity occupies a bulk-loaded row.
func (a *Archetype) SetRowEntity(row int, id types.EntityID) error {
	if row < 0 || row >= a.length {
		return eris.Wrapf(ErrRowOutOfRange, "row %d, length %d", row, a.length)
	}
	if a.slots[row].State != SlotOccupied {
		return eris.Wrapf(ErrRowNotOccupied, "row %d, shape %s", row, a.shape)
	}
	a.slots[row].Entity = id
	return nil
}

// Each calls fn for every occupied row in row order, skipping freed slots
// below the high-water mark. Iteration stops early when fn returns false.
// Row order is whatever the free-list churn currently produces, not creation
// order, and is not stable across attach/detach operations on other entities.
func (a *Archetype) Each(fn func(row int, id types.EntityID) bool) {
	for row := 0; row < a.freeIndex; row++ {
		if a.slots[row].State != SlotOccupied {
			continue
		}
		if !fn(row, a.slots[row].Entity) {
			return
		}
	}
}

// OccupiedRows returns the occupied rows in row order. Snapshot save uses this
// to write a dense dump.
func (a *Archetype) OccupiedRows() []int {
	rows := make([]int, 0, a.Count())
	for row := 0; row < a.freeIndex; row++ {
		if a.slots[row].State == SlotOccupied {
			rows = append(rows, row)
		}
	}
	return rows
}
