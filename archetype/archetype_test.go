package archetype_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/assert"
	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

var testFactories = map[string]types.ColumnFactory{
	"position": archetype.Factory[Position](),
	"velocity": archetype.Factory[Velocity](),
	"health":   archetype.Factory[Health](),
}

func newArchetypeForTest(t *testing.T, comps ...types.Component) *archetype.Archetype {
	t.Helper()
	arch, err := archetype.New(archetype.FromComponents(comps...), testFactories)
	assert.NilError(t, err)
	return arch
}

func TestNewArchetypeFailsWithoutAColumnFactory(t *testing.T) {
	shape := archetype.NewShape(map[string]types.Term{
		"mystery": {Kind: types.TermAssociated, TypeName: "mystery"},
	})
	_, err := archetype.New(shape, testFactories)
	assert.ErrorIs(t, err, archetype.ErrMissingColumnFactory)
}

func TestRegisterMarksTheRowOccupied(t *testing.T) {
	arch := newArchetypeForTest(t, Health{})

	row, err := arch.Register(map[string]any{"health": Health{Current: 42}}, 7)
	assert.NilError(t, err)

	slot, err := arch.Slot(row)
	assert.NilError(t, err)
	assert.Equal(t, archetype.SlotOccupied, slot.State)
	assert.Equal(t, types.EntityID(7), slot.Entity)
	assert.Equal(t, 1, arch.Count())
}

func TestRegisterReusesFreedRows(t *testing.T) {
	arch := newArchetypeForTest(t, Health{})

	rows := make([]int, 3)
	for i := range rows {
		row, err := arch.Register(map[string]any{"health": Health{Current: int32(i)}}, types.EntityID(i+1))
		assert.NilError(t, err)
		rows[i] = row
	}

	assert.NilError(t, arch.Unregister(rows[1]))
	assert.Equal(t, 1, arch.FreeCount())

	row, err := arch.Register(map[string]any{"health": Health{Current: 99}}, 4)
	assert.NilError(t, err)
	assert.Equal(t, rows[1], row)
	assert.Equal(t, 0, arch.FreeCount())
	assert.Equal(t, 3, arch.HighWater())
}

func TestUnregisteringTheLastRowLowersTheHighWaterMark(t *testing.T) {
	arch := newArchetypeForTest(t, Health{})

	_, err := arch.Register(map[string]any{"health": Health{Current: 1}}, 1)
	assert.NilError(t, err)
	last, err := arch.Register(map[string]any{"health": Health{Current: 2}}, 2)
	assert.NilError(t, err)

	assert.Equal(t, 2, arch.HighWater())
	assert.NilError(t, arch.Unregister(last))
	assert.Equal(t, 1, arch.HighWater())
	assert.Equal(t, 0, arch.FreeCount())
}

func TestUnregisterZeroesTheFreedRow(t *testing.T) {
	arch := newArchetypeForTest(t, Health{})

	row, err := arch.Register(map[string]any{"health": Health{Current: 42}}, 1)
	assert.NilError(t, err)
	assert.NilError(t, arch.Unregister(row))

	// The reused row must not leak the previous occupant's value.
	again, err := arch.Register(nil, 2)
	assert.NilError(t, err)
	assert.Equal(t, row, again)
	col, err := arch.Column("health")
	assert.NilError(t, err)
	value, err := col.Value(again)
	assert.NilError(t, err)
	assert.Equal(t, Health{}, value)
}

func TestUnregisteringAFreeRowFails(t *testing.T) {
	arch := newArchetypeForTest(t, Health{})

	row, err := arch.Register(nil, 1)
	assert.NilError(t, err)
	assert.NilError(t, arch.Unregister(row))
	assert.ErrorIs(t, arch.Unregister(row), archetype.ErrRowNotOccupied)
	assert.ErrorIs(t, arch.Unregister(100), archetype.ErrRowOutOfRange)
}

func TestColumnsGrowInLockStep(t *testing.T) {
	arch := newArchetypeForTest(t, Position{}, Velocity{})

	for i := 0; i < 20; i++ {
		_, err := arch.Register(map[string]any{
			"position": Position{X: float64(i)},
			"velocity": Velocity{DX: float64(i)},
		}, types.EntityID(i+1))
		assert.NilError(t, err)
	}

	pos, err := arch.Column("position")
	assert.NilError(t, err)
	vel, err := arch.Column("velocity")
	assert.NilError(t, err)
	assert.Equal(t, arch.Len(), pos.Len())
	assert.Equal(t, arch.Len(), vel.Len())
	assert.Equal(t, 20, arch.Count())
}

func TestEachSkipsFreedRows(t *testing.T) {
	arch := newArchetypeForTest(t, Health{})

	rows := make([]int, 4)
	for i := range rows {
		row, err := arch.Register(map[string]any{"health": Health{Current: int32(i)}}, types.EntityID(i+1))
		assert.NilError(t, err)
		rows[i] = row
	}
	assert.NilError(t, arch.Unregister(rows[1]))

	var seen []types.EntityID
	arch.Each(func(_ int, id types.EntityID) bool {
		seen = append(seen, id)
		return true
	})
	assert.DeepEqual(t, []types.EntityID{1, 3, 4}, seen)
}

func TestBulkLoadAppendsAtTheHighWaterMark(t *testing.T) {
	arch := newArchetypeForTest(t, Health{})

	_, err := arch.Register(map[string]any{"health": Health{Current: 1}}, 1)
	assert.NilError(t, err)

	var stream bytes.Buffer
	assert.NilError(t, binary.Write(&stream, binary.LittleEndian, []Health{{10}, {20}, {30}}))

	first, last, err := arch.ReadBulk(3, &stream)
	assert.NilError(t, err)
	assert.Equal(t, 1, first)
	assert.Equal(t, 3, last)
	assert.Equal(t, 4, arch.Count())

	for i, id := range []types.EntityID{11, 12, 13} {
		assert.NilError(t, arch.SetRowEntity(first+i, id))
	}

	col, err := arch.Column("health")
	assert.NilError(t, err)
	for i, want := range []int32{10, 20, 30} {
		value, err := col.Value(first + i)
		assert.NilError(t, err)
		assert.Equal(t, Health{Current: want}, value)
	}
	slot, err := arch.Slot(2)
	assert.NilError(t, err)
	assert.Equal(t, types.EntityID(12), slot.Entity)
}

func TestBulkSaveRoundTripsThroughBulkLoad(t *testing.T) {
	source := newArchetypeForTest(t, Position{}, Velocity{})
	for i := 0; i < 3; i++ {
		_, err := source.Register(map[string]any{
			"position": Position{X: float64(i), Y: float64(i * 10)},
			"velocity": Velocity{DX: float64(-i)},
		}, types.EntityID(i+1))
		assert.NilError(t, err)
	}

	var stream bytes.Buffer
	assert.NilError(t, source.WriteBulk(&stream, source.OccupiedRows()))

	target := newArchetypeForTest(t, Position{}, Velocity{})
	first, _, err := target.ReadBulk(3, &stream)
	assert.NilError(t, err)

	col, err := target.Column("position")
	assert.NilError(t, err)
	for i := 0; i < 3; i++ {
		value, err := col.Value(first + i)
		assert.NilError(t, err)
		assert.Equal(t, Position{X: float64(i), Y: float64(i * 10)}, value)
	}
}

func TestValuesCapturesBoxedCopies(t *testing.T) {
	arch := newArchetypeForTest(t, Position{})

	row, err := arch.Register(map[string]any{"position": Position{X: 5}}, 1)
	assert.NilError(t, err)

	values, err := arch.Values(row)
	assert.NilError(t, err)
	assert.Equal(t, Position{X: 5}, values["position"])

	_, err = arch.Values(row + 1)
	assert.ErrorIs(t, err, archetype.ErrRowNotOccupied)
}
