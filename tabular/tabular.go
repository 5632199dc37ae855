// Package tabular defines the in-memory table exchanged with Bunny storage.
package tabular

import "fmt"

// Table is a rows-by-named-columns dataset. Cells are strings; codecs
// that carry a schema (Parquet, Feather) encode every column as UTF-8.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New returns an empty table with the given column names.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// AppendRow adds one row. The cell count must match the column count.
func (t *Table) AppendRow(cells ...string) error {
	if len(cells) != len(t.Columns) {
		return fmt.Errorf("tabular: row has %d cells, table has %d columns", len(cells), len(t.Columns))
	}
	t.Rows = append(t.Rows, cells)
	return nil
}

// NumRows returns the number of data rows (the header is not a row).
func (t *Table) NumRows() int { return len(t.Rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.Columns) }

// Validate reports the first ragged row, if any.
func (t *Table) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("tabular: row %d has %d cells, table has %d columns", i, len(row), len(t.Columns))
		}
	}
	return nil
}

// Equal reports whether two tables have identical columns and cell content.
func (t *Table) Equal(o *Table) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		if len(t.Rows[i]) != len(o.Rows[i]) {
			return false
		}
		for j := range t.Rows[i] {
			if t.Rows[i][j] != o.Rows[i][j] {
				return false
			}
		}
	}
	return true
}
