// =============================================================================
// SDMX Table Mapper - Tabular Data Module
// =============================================================================
//
// This package provides the in-memory table value type the mapping engine
// operates on. A Table is a rectangle of cells addressed by column header;
// cells carry an explicit null marker so "no value" and "empty string" stay
// distinguishable after a round trip through CSV or a spreadsheet grid.
//
// Tables are cheap to clone and the engine never mutates its input, so a
// Table can safely be shared across independent apply calls.
//
// =============================================================================

package tabular

import (
	"fmt"
	"strings"
)

// =============================================================================
// CELLS
// =============================================================================

// Cell is a single table value. A null cell has no value at all; its Value
// field is ignored.
type Cell struct {
	Value string
	Null  bool
}

// V builds a present cell.
func V(value string) Cell {
	return Cell{Value: value}
}

// Null is the missing-value marker.
var Null = Cell{Null: true}

// String returns the cell's string representation; null cells render empty.
func (c Cell) String() string {
	if c.Null {
		return ""
	}
	return c.Value
}

// =============================================================================
// TABLE
// =============================================================================

// Table is a rectangular dataset with ordered, distinct column headers.
type Table struct {
	columns []string
	cells   map[string][]Cell
	rows    int
}

// New creates an empty table with the given column headers.
// Duplicate headers are rejected.
func New(columns ...string) (*Table, error) {
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if col == "" {
			return nil, fmt.Errorf("empty column header")
		}
		if seen[col] {
			return nil, fmt.Errorf("duplicate column header %q", col)
		}
		seen[col] = true
	}
	t := &Table{
		columns: append([]string(nil), columns...),
		cells:   make(map[string][]Cell, len(columns)),
	}
	for _, col := range columns {
		t.cells[col] = nil
	}
	return t, nil
}

// MustNew is New for statically known headers, mostly in tests.
func MustNew(columns ...string) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Columns returns the headers in declaration order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the table has a column with the given header.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.cells[name]
	return ok
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int {
	return t.rows
}

// AppendRow adds one row. The number of cells must match the column count.
func (t *Table) AppendRow(row []Cell) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.columns))
	}
	for i, col := range t.columns {
		t.cells[col] = append(t.cells[col], row[i])
	}
	t.rows++
	return nil
}

// Column returns the cells of a column in row order.
func (t *Table) Column(name string) ([]Cell, bool) {
	cells, ok := t.cells[name]
	if !ok {
		return nil, false
	}
	return append([]Cell(nil), cells...), true
}

// Cell returns a single cell by column header and row index.
func (t *Table) Cell(name string, row int) (Cell, bool) {
	cells, ok := t.cells[name]
	if !ok || row < 0 || row >= len(cells) {
		return Cell{}, false
	}
	return cells[row], true
}

// SetColumn replaces a column's cells, creating the column if absent.
// The slice length must match the row count.
func (t *Table) SetColumn(name string, cells []Cell) error {
	if len(cells) != t.rows {
		return fmt.Errorf("column %q: got %d cells, table has %d rows", name, len(cells), t.rows)
	}
	if _, ok := t.cells[name]; !ok {
		t.columns = append(t.columns, name)
	}
	t.cells[name] = append([]Cell(nil), cells...)
	return nil
}

// Broadcast sets every cell of a column to the same value, creating the
// column if absent.
func (t *Table) Broadcast(name, value string) {
	cells := make([]Cell, t.rows)
	for i := range cells {
		cells[i] = V(value)
	}
	// The table owns the fresh slice, SetColumn cannot fail on length.
	_ = t.SetColumn(name, cells)
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		columns: append([]string(nil), t.columns...),
		cells:   make(map[string][]Cell, len(t.cells)),
		rows:    t.rows,
	}
	for col, cells := range t.cells {
		out.cells[col] = append([]Cell(nil), cells...)
	}
	return out
}

// Equal reports whether two tables have identical headers, order, and cells.
func (t *Table) Equal(other *Table) bool {
	if other == nil || t.rows != other.rows || len(t.columns) != len(other.columns) {
		return false
	}
	for i, col := range t.columns {
		if other.columns[i] != col {
			return false
		}
		a, b := t.cells[col], other.cells[col]
		for r := range a {
			if a[r] != b[r] {
				return false
			}
		}
	}
	return true
}

// SelectRows returns a new table containing only the rows whose index is in
// keep, preserving order.
func (t *Table) SelectRows(keep []int) *Table {
	out := &Table{
		columns: append([]string(nil), t.columns...),
		cells:   make(map[string][]Cell, len(t.cells)),
		rows:    len(keep),
	}
	for col, cells := range t.cells {
		selected := make([]Cell, 0, len(keep))
		for _, r := range keep {
			selected = append(selected, cells[r])
		}
		out.cells[col] = selected
	}
	return out
}

// String renders a compact debug representation.
func (t *Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table(%d rows; %s)", t.rows, strings.Join(t.columns, ", "))
	return b.String()
}
