package archetype_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/yvileapsis/TEHOM-old-sub000/archetype"
	"github.com/yvileapsis/TEHOM-old-sub000/assert"
)

type Health struct {
	Current int32
}

func (Health) Name() string {
	return "health"
}

func TestStoreGetReturnsAMutableReference(t *testing.T) {
	store := archetype.NewStore[Health]("health")
	store.Extend(4)

	ref, err := store.Get(2)
	assert.NilError(t, err)
	ref.Current = 50

	again, err := store.Get(2)
	assert.NilError(t, err)
	assert.Equal(t, int32(50), again.Current)
}

func TestStoreRowOutOfRangeIsAnError(t *testing.T) {
	store := archetype.NewStore[Health]("health")
	store.Extend(2)

	_, err := store.Get(2)
	assert.ErrorIs(t, err, archetype.ErrRowOutOfRange)
	_, err = store.Get(-1)
	assert.ErrorIs(t, err, archetype.ErrRowOutOfRange)
	err = store.Set(2, Health{})
	assert.ErrorIs(t, err, archetype.ErrRowOutOfRange)
}

func TestStoreSetValueAcceptsBothValueAndPointer(t *testing.T) {
	store := archetype.NewStore[Health]("health")
	store.Extend(2)

	assert.NilError(t, store.SetValue(0, Health{Current: 10}))
	assert.NilError(t, store.SetValue(1, &Health{Current: 20}))

	first, err := store.Get(0)
	assert.NilError(t, err)
	assert.Equal(t, int32(10), first.Current)
	second, err := store.Get(1)
	assert.NilError(t, err)
	assert.Equal(t, int32(20), second.Current)
}

func TestStoreSetValueRejectsAForeignType(t *testing.T) {
	store := archetype.NewStore[Health]("health")
	store.Extend(1)

	err := store.SetValue(0, Position{X: 1})
	assert.ErrorIs(t, err, archetype.ErrColumnTypeMismatch)
}

func TestColumnAsRejectsAMismatchedElementType(t *testing.T) {
	store := archetype.NewStore[Health]("health")
	_, err := archetype.ColumnAs[Position](store)
	assert.ErrorIs(t, err, archetype.ErrColumnTypeMismatch)
}

func TestStoreBulkReadLoadsTightlyPackedElements(t *testing.T) {
	var stream bytes.Buffer
	assert.NilError(t, binary.Write(&stream, binary.LittleEndian, []Health{{10}, {20}, {30}}))

	store := archetype.NewStore[Health]("health")
	store.Extend(4)
	assert.NilError(t, store.ReadBulk(3, 0, &stream))

	for row, want := range []int32{10, 20, 30} {
		got, err := store.Get(row)
		assert.NilError(t, err)
		assert.Equal(t, want, got.Current)
	}
	// Row 3 was not part of the stream.
	last, err := store.Get(3)
	assert.NilError(t, err)
	assert.Equal(t, int32(0), last.Current)
}

func TestStoreBulkReadFailsOnAShortStream(t *testing.T) {
	var stream bytes.Buffer
	assert.NilError(t, binary.Write(&stream, binary.LittleEndian, []Health{{10}}))

	store := archetype.NewStore[Health]("health")
	store.Extend(4)
	err := store.ReadBulk(3, 0, &stream)
	assert.IsError(t, err)
}

func TestStoreWriteRowsRoundTripsThroughBulkRead(t *testing.T) {
	source := archetype.NewStore[Health]("health")
	source.Extend(4)
	assert.NilError(t, source.Set(0, Health{Current: 1}))
	assert.NilError(t, source.Set(2, Health{Current: 3}))

	var stream bytes.Buffer
	assert.NilError(t, source.WriteRows(&stream, []int{0, 2}))

	target := archetype.NewStore[Health]("health")
	target.Extend(2)
	assert.NilError(t, target.ReadBulk(2, 0, &stream))

	first, err := target.Get(0)
	assert.NilError(t, err)
	assert.Equal(t, int32(1), first.Current)
	second, err := target.Get(1)
	assert.NilError(t, err)
	assert.Equal(t, int32(3), second.Current)
}
