package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// View is a filtered, read-only window onto a Table. It holds row indexes
// only; the table's cells are shared, never copied or modified.
type View struct {
	table *Table
	rows  []int
}

// AllRows returns a view over every row of t.
func AllRows(t *Table) *View {
	rows := make([]int, t.Len())
	for i := range rows {
		rows[i] = i
	}
	return &View{table: t, rows: rows}
}

// ApplyFilters keeps the rows whose value in each selected role's column
// is one of the allowed values. Roles with an empty value set, or whose
// column is unresolved, do not filter. Conditions compose with AND.
// An empty cell never matches a non-empty value set.
func ApplyFilters(t *Table, m RoleMapping, sel Selection) *View {
	type condition struct {
		col     int
		allowed map[string]struct{}
	}

	var conds []condition
	for role, values := range sel {
		if len(values) == 0 {
			continue
		}
		col, ok := m.Column(role)
		if !ok {
			continue
		}
		idx := t.Index(col)
		if idx < 0 {
			continue
		}
		allowed := make(map[string]struct{}, len(values))
		for _, v := range values {
			allowed[v] = struct{}{}
		}
		conds = append(conds, condition{col: idx, allowed: allowed})
	}

	if len(conds) == 0 {
		return AllRows(t)
	}

	rows := make([]int, 0, t.Len())
	for r, row := range t.Rows {
		keep := true
		for _, c := range conds {
			cell := row[c.col]
			if cell == "" {
				keep = false
				break
			}
			if _, ok := c.allowed[cell]; !ok {
				keep = false
				break
			}
		}
		if keep {
			rows = append(rows, r)
		}
	}

	return &View{table: t, rows: rows}
}

// DistinctValues returns the sorted distinct non-empty values of col.
func DistinctValues(t *Table, col string) []string {
	idx := t.Index(col)
	if idx < 0 {
		return nil
	}

	seen := make(map[string]struct{})
	for _, row := range t.Rows {
		if v := row[idx]; v != "" {
			seen[v] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// DefaultSelection selects every distinct value of each resolved filter role.
func DefaultSelection(t *Table, m RoleMapping) Selection {
	sel := make(Selection, len(FilterRoles))
	for _, role := range FilterRoles {
		if col, ok := m.Column(role); ok {
			sel[role] = DistinctValues(t, col)
		}
	}
	return sel
}

// Table returns the underlying table.
func (v *View) Table() *Table {
	return v.table
}

// Columns returns the header of the underlying table.
func (v *View) Columns() []string {
	return v.table.Columns
}

// Len returns the number of rows in the view.
func (v *View) Len() int {
	return len(v.rows)
}

// Row returns the cells of the i-th row of the view.
func (v *View) Row(i int) []string {
	return v.table.Rows[v.rows[i]]
}

// Value returns the cell in column col of the i-th row of the view.
func (v *View) Value(i int, col string) string {
	return v.table.Value(v.rows[i], col)
}

// Numeric returns the parsed value of column col in the i-th row.
// Columns that were not normalized are parsed on the fly.
func (v *View) Numeric(i int, col string) decimal.NullDecimal {
	if vals := v.table.Numeric(col); vals != nil {
		return vals[v.rows[i]]
	}
	return NormalizeCell(v.Value(i, col))
}

// Head returns a view of at most the first n rows.
func (v *View) Head(n int) *View {
	if n < 0 || n >= len(v.rows) {
		return v
	}
	return &View{table: v.table, rows: v.rows[:n]}
}
