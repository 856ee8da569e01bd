package types

import "io"

// Column is one component's contiguous storage within an archetype. Concrete
// columns are generically instantiated per component type at registration time;
// all columns of one archetype share a single logical length and grow in
// lock-step.
type Column interface {
	// Name returns the term name this column stores data for.
	Name() string
	// Len returns the logical length of the column.
	Len() int
	// Extend appends n zeroed rows, doubling backing capacity as needed.
	Extend(n int)
	// Zero resets the row to the element type's zero value.
	Zero(row int) error
	// Value returns a boxed copy of the row. Used on migrations only; typed
	// access goes through the concrete column to avoid boxing on the hot path.
	Value(row int) (any, error)
	// SetValue writes a boxed value to the row. The value's dynamic type must
	// be the column's element type.
	SetValue(row int, v any) error
	// ReadBulk deserializes count tightly-packed fixed-size elements from r
	// into rows [startRow, startRow+count). The column must already be long
	// enough.
	ReadBulk(count, startRow int, r io.Reader) error
	// WriteRows serializes the given rows to w in the same fixed-size format
	// ReadBulk consumes.
	WriteRows(w io.Writer, rows []int) error
}

// ColumnFactory builds an empty column for one component type. Factories are
// collected at component registration time so archetype creation never needs
// runtime type introspection.
type ColumnFactory func(name string) Column
