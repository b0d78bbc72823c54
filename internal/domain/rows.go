package domain

import "fmt"

// Rows is the result of executing a QuerySpec. Rows are addressed by
// position and columns by ordinal. A Rows value must be closed by its owner
// once superseded.
type Rows interface {
	Columns() []string
	Count() int
	Position() int
	MoveTo(pos int) bool
	Next() bool
	Value(col int) any
	Int64(col int) int64
	String(col int) (string, bool)
	Close() error
}

// RowSet is an in-memory Rows implementation. Catalog accessors materialize
// their results into a RowSet so positional access is cheap.
type RowSet struct {
	columns []string
	values  [][]any
	pos     int
	closed  bool
}

// NewRowSet creates a row set positioned before the first row
func NewRowSet(columns []string, values [][]any) *RowSet {
	return &RowSet{columns: columns, values: values, pos: -1}
}

func (r *RowSet) Columns() []string { return r.columns }
func (r *RowSet) Count() int        { return len(r.values) }
func (r *RowSet) Position() int     { return r.pos }

// MoveTo positions the row set at pos; returns false when out of range
func (r *RowSet) MoveTo(pos int) bool {
	if pos < 0 || pos >= len(r.values) {
		return false
	}
	r.pos = pos
	return true
}

// Next advances to the following row
func (r *RowSet) Next() bool {
	if r.pos+1 >= len(r.values) {
		r.pos = len(r.values)
		return false
	}
	r.pos++
	return true
}

// Value returns the raw value at col in the current row
func (r *RowSet) Value(col int) any {
	if r.pos < 0 || r.pos >= len(r.values) {
		return nil
	}
	row := r.values[r.pos]
	if col < 0 || col >= len(row) {
		return nil
	}
	return row[col]
}

// Int64 returns the value at col as an integer, 0 when null or non-numeric
func (r *RowSet) Int64(col int) int64 {
	switch v := r.Value(col).(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// String returns the value at col as text; ok is false for null
func (r *RowSet) String(col int) (string, bool) {
	switch v := r.Value(col).(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return fmt.Sprint(v), true
	}
}

// Close releases the row set. Closing twice is harmless.
func (r *RowSet) Close() error {
	r.closed = true
	r.values = nil
	r.pos = -1
	return nil
}

// Closed reports whether Close has been called
func (r *RowSet) Closed() bool { return r.closed }
