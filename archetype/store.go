package archetype

import (
	"encoding/binary"
	"io"

	"github.com/rotisserie/eris"

	"github.com/yvileapsis/TEHOM-old-sub000/types"
)

var (
	// ErrRowOutOfRange is returned on access to a row outside the column's
	// logical length. This is always a logic bug in the caller.
	ErrRowOutOfRange = eris.New("row index out of range")
	// ErrColumnTypeMismatch is returned when a column's element type disagrees
	// with the type requested at the call site.
	ErrColumnTypeMismatch = eris.New("column element type mismatch")
)

// Store is a growable, index-addressed column of T. One store exists per
// associated term of an archetype; all stores of one archetype have equal
// logical length and grow together.
//
// Bulk load and save use the tightly-packed little-endian layout of T, so
// component types that pass through ReadBulk/WriteRows must be fixed-size
// (no strings, maps or slices).
type Store[T any] struct {
	name string
	data []T
}

func NewStore[T any](name string) *Store[T] {
	return &Store[T]{name: name}
}

// Factory returns the column factory for T, collected into the registry's
// factory table at component registration time.
func Factory[T any]() types.ColumnFactory {
	return func(name string) types.Column {
		return NewStore[T](name)
	}
}

// ColumnAs recovers the concrete store from a type-erased column. After this
// single assertion all row access is direct against the typed backing array.
func ColumnAs[T any](col types.Column) (*Store[T], error) {
	store, ok := col.(*Store[T])
	if !ok {
		return nil, eris.Wrapf(ErrColumnTypeMismatch, "column %q does not store the requested type", col.Name())
	}
	return store, nil
}

func (s *Store[T]) Name() string {
	return s.name
}

func (s *Store[T]) Len() int {
	return len(s.data)
}

// Get returns a mutable reference to the row, not a copy. The reference is
// invalidated by any growth of the column or migration of the owning entity.
func (s *Store[T]) Get(row int) (*T, error) {
	if row < 0 || row >= len(s.data) {
		return nil, eris.Wrapf(ErrRowOutOfRange, "row %d, length %d", row, len(s.data))
	}
	return &s.data[row], nil
}

func (s *Store[T]) Set(row int, value T) error {
	if row < 0 || row >= len(s.data) {
		return eris.Wrapf(ErrRowOutOfRange, "row %d, length %d", row, len(s.data))
	}
	s.data[row] = value
	return nil
}

// Extend appends n zeroed rows, doubling the backing capacity when exhausted
// so growth stays amortized O(1) per insertion.
func (s *Store[T]) Extend(n int) {
	need := len(s.data) + n
	if cap(s.data) < need {
		newCap := cap(s.data)
		if newCap == 0 {
			newCap = initialRows
		}
		for newCap < need {
			newCap *= 2
		}
		grown := make([]T, len(s.data), newCap)
		copy(grown, s.data)
		s.data = grown
	}
	var zero T
	for i := 0; i < n; i++ {
		s.data = append(s.data, zero)
	}
}

// Zero resets the row to the zero value of T. Used when a row is freed.
func (s *Store[T]) Zero(row int) error {
	var zero T
	return s.Set(row, zero)
}

// Value returns a boxed copy of the row. Migration path only.
func (s *Store[T]) Value(row int) (any, error) {
	ref, err := s.Get(row)
	if err != nil {
		return nil, err
	}
	return *ref, nil
}

// SetValue writes a boxed value to the row. Accepts both T and *T, matching
// how callers hold component values.
func (s *Store[T]) SetValue(row int, value any) error {
	switch v := value.(type) {
	case T:
		return s.Set(row, v)
	case *T:
		return s.Set(row, *v)
	default:
		return eris.Wrapf(ErrColumnTypeMismatch, "cannot store %T in column %q", value, s.name)
	}
}

// ReadBulk deserializes count contiguous elements from r into rows
// [startRow, startRow+count). The stream carries exactly count tightly-packed
// little-endian elements with no framing; the caller already knows count.
func (s *Store[T]) ReadBulk(count, startRow int, r io.Reader) error {
	if startRow < 0 || startRow+count > len(s.data) {
		return eris.Wrapf(ErrRowOutOfRange, "rows [%d, %d), length %d", startRow, startRow+count, len(s.data))
	}
	if err := binary.Read(r, binary.LittleEndian, s.data[startRow:startRow+count]); err != nil {
		return eris.Wrapf(err, "bulk read of column %q failed", s.name)
	}
	return nil
}

// WriteRows serializes the given rows to w in the format ReadBulk consumes.
func (s *Store[T]) WriteRows(w io.Writer, rows []int) error {
	for _, row := range rows {
		if row < 0 || row >= len(s.data) {
			return eris.Wrapf(ErrRowOutOfRange, "row %d, length %d", row, len(s.data))
		}
		if err := binary.Write(w, binary.LittleEndian, s.data[row]); err != nil {
			return eris.Wrapf(err, "bulk write of column %q failed", s.name)
		}
	}
	return nil
}
