package core

import (
	"github.com/shopspring/decimal"
)

// Table is a loaded dataset: ordered rows of string cells under a header.
// A Table is never mutated after construction; derived tables (normalized
// copies) and views hold their own state.
type Table struct {
	Columns []string
	Rows    [][]string

	index   map[string]int
	numeric map[string][]decimal.NullDecimal
}

// NewTable builds a table from a header and rows. Rows are expected to be
// exactly len(columns) wide.
func NewTable(columns []string, rows [][]string) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; !dup {
			index[c] = i
		}
	}
	return &Table{
		Columns: columns,
		Rows:    rows,
		index:   index,
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of col, or -1.
func (t *Table) Index(col string) int {
	if i, ok := t.index[col]; ok {
		return i
	}
	return -1
}

// HasColumn reports whether col is in the header.
func (t *Table) HasColumn(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Value returns the cell at (row, col), or "" when col is unknown.
func (t *Table) Value(row int, col string) string {
	i := t.Index(col)
	if i < 0 {
		return ""
	}
	return t.Rows[row][i]
}

// Numeric returns the parsed values of a normalized column. It returns nil
// for columns that were not normalized.
func (t *Table) Numeric(col string) []decimal.NullDecimal {
	return t.numeric[col]
}

// IsNumeric reports whether col carries parsed numeric values.
func (t *Table) IsNumeric(col string) bool {
	_, ok := t.numeric[col]
	return ok
}
