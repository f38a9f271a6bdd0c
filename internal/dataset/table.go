package dataset

import (
	"strings"

	"github.com/spf13/cast"
)

// Value is an optional cell value. The zero Value is absent, which keeps
// "no data" distinct from an empty string or a genuine zero all the way
// through the pipeline; the distinction collapses only when a table is
// written out.
type Value struct {
	raw     string
	present bool
}

// NewValue returns a present Value holding raw.
func NewValue(raw string) Value {
	return Value{raw: raw, present: true}
}

// Absent returns the absent Value.
func Absent() Value {
	return Value{}
}

// Present reports whether the value holds data.
func (v Value) Present() bool {
	return v.present
}

// String returns the raw cell text, or "" when absent.
func (v Value) String() string {
	return v.raw
}

// Float parses the value as a number. Thousands separators are tolerated
// since government exports frequently carry them. Absent or unparseable
// values report ok=false.
func (v Value) Float() (float64, bool) {
	if !v.present {
		return 0, false
	}
	s := strings.TrimSpace(strings.ReplaceAll(v.raw, ",", ""))
	if s == "" {
		return 0, false
	}
	f, err := cast.ToFloat64E(s)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Row maps column names to cell values. Columns missing from the map are
// treated as absent.
type Row map[string]Value

// Get returns the cell for col, or the absent Value.
func (r Row) Get(col string) Value {
	return r[col]
}

// Float is shorthand for Get(col).Float().
func (r Row) Float(col string) (float64, bool) {
	return r.Get(col).Float()
}

// Table is an ordered in-memory tabular dataset. Column order is
// significant: role resolution scans columns in table order, and CSV
// output preserves it.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable creates an empty table with the given column order.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns}
}

// HasColumn reports whether the table has a column with the exact name.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn appends a column to the table order if not already present.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Append adds a row to the table.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// Len returns the row count.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Clone returns a deep copy of the table. Transform stages copy before
// mutating so a caller's table is never changed underneath it.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		copied := make(Row, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out.Rows[i] = copied
	}
	return out
}

// Filter returns a new table containing the rows for which keep returns
// true, preserving order and column layout.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Columns: append([]string(nil), t.Columns...)}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// CoerceNumeric re-types a column as numeric in place: cells that do not
// parse as a number become absent. Parseable cells keep their original
// text form.
func (t *Table) CoerceNumeric(col string) {
	for _, row := range t.Rows {
		if _, ok := row.Float(col); !ok {
			row[col] = Absent()
		}
	}
}
