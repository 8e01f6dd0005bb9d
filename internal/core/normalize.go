package core

// normalize.go turns formatted metric cells ("$1,234.50") into numbers.
//
// Only "," and "$" are stripped. Anything that still is not a plain decimal
// or scientific literal becomes a missing value; normalization never fails.

import (
	"regexp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// numericRegex matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var numericCleaner = strings.NewReplacer(",", "", "$", "")

// NormalizeCell parses one metric cell. Invalid or empty input yields
// a NullDecimal with Valid=false.
func NormalizeCell(s string) decimal.NullDecimal {
	s = strings.TrimSpace(numericCleaner.Replace(s))
	if s == "" || !numericRegex.MatchString(s) {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// NormalizeColumn parses every cell of a column.
func NormalizeColumn(values []string) []decimal.NullDecimal {
	out := make([]decimal.NullDecimal, len(values))
	for i, v := range values {
		out[i] = NormalizeCell(v)
	}
	return out
}

// FormatNumeric renders a normalized value as text; missing renders as "".
// NormalizeCell(FormatNumeric(v)) == v for every normalized v.
func FormatNumeric(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}

// Normalize returns a copy of t in which each named column is parsed.
// Cells of those columns are rewritten to their canonical text and the
// parsed values are available through Numeric. Unknown columns are ignored.
// The source table is not modified.
func Normalize(t *Table, cols ...string) *Table {
	var targets []int
	var names []string
	for _, c := range cols {
		if i := t.Index(c); i >= 0 && !slices.Contains(targets, i) {
			targets = append(targets, i)
			names = append(names, c)
		}
	}

	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		if len(targets) == 0 {
			rows[r] = row
			continue
		}
		cp := make([]string, len(row))
		copy(cp, row)
		rows[r] = cp
	}

	out := NewTable(t.Columns, rows)
	out.numeric = make(map[string][]decimal.NullDecimal, len(t.numeric)+len(names))
	for c, vals := range t.numeric {
		out.numeric[c] = vals
	}

	for k, i := range targets {
		vals := make([]decimal.NullDecimal, len(rows))
		for r, row := range rows {
			vals[r] = NormalizeCell(row[i])
			row[i] = FormatNumeric(vals[r])
		}
		out.numeric[names[k]] = vals
	}

	return out
}
