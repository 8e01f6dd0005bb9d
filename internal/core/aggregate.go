package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// groupSums accumulates decimal sums per key in first-appearance order.
type groupSums struct {
	width int
	keys  []string
	sums  map[string][]decimal.Decimal
}

func newGroupSums(width int) *groupSums {
	return &groupSums{width: width, sums: make(map[string][]decimal.Decimal)}
}

func (g *groupSums) add(key string, i int, v decimal.NullDecimal) {
	s, ok := g.sums[key]
	if !ok {
		s = make([]decimal.Decimal, g.width)
		g.sums[key] = s
		g.keys = append(g.keys, key)
	}
	if v.Valid {
		s[i] = s[i].Add(v.Decimal)
	}
}

// Aggregate groups the view by the group role's column, sums the metric
// role's column, sorts descending by sum and keeps the first topN groups
// (topN <= 0 keeps all).
//
// Rows with an empty group key are dropped. Missing metric values add
// nothing, so a group whose values are all missing sums to zero. Groups
// with equal sums keep their first-appearance order.
//
// ok is false when either role is unresolved.
func Aggregate(v *View, m RoleMapping, group, metric Role, topN int) (Summary, bool) {
	groupCol, ok := m.Column(group)
	if !ok {
		return nil, false
	}
	metricCol, ok := m.Column(metric)
	if !ok {
		return nil, false
	}

	g := newGroupSums(1)
	for i := 0; i < v.Len(); i++ {
		key := v.Value(i, groupCol)
		if key == "" {
			continue
		}
		g.add(key, 0, v.Numeric(i, metricCol))
	}

	out := make(Summary, 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, GroupTotal{Key: k, Value: g.sums[k][0].InexactFloat64()})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out, true
}

// Breakdown sums several metrics per group of the group role, in
// first-appearance order. Totals keep their sign, so a group may sum to
// zero or less. Unresolved metrics are left out of the totals.
// ok is false when the group role or every metric is unresolved.
func Breakdown(v *View, m RoleMapping, group Role, metrics ...Role) ([]GroupRow, bool) {
	groupCol, ok := m.Column(group)
	if !ok {
		return nil, false
	}

	var roles []Role
	var cols []string
	for _, r := range metrics {
		if col, ok := m.Column(r); ok {
			roles = append(roles, r)
			cols = append(cols, col)
		}
	}
	if len(roles) == 0 {
		return nil, false
	}

	g := newGroupSums(len(roles))
	for i := 0; i < v.Len(); i++ {
		key := v.Value(i, groupCol)
		if key == "" {
			continue
		}
		for j, col := range cols {
			g.add(key, j, v.Numeric(i, col))
		}
	}

	out := make([]GroupRow, 0, len(g.keys))
	for _, k := range g.keys {
		totals := make(map[Role]float64, len(roles))
		for j, r := range roles {
			totals[r] = g.sums[k][j].InexactFloat64()
		}
		out = append(out, GroupRow{Key: k, Totals: totals})
	}
	return out, true
}

// SortBreakdown orders rows descending by the given metric, keeping the
// existing order for ties.
func SortBreakdown(rows []GroupRow, by Role) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Totals[by] > rows[j].Totals[by]
	})
}

// SortBreakdownByKey orders rows ascending by group key.
func SortBreakdownByKey(rows []GroupRow) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
}

// Pareto returns the running total and cumulative share (percent of the
// summary's total) for each entry, in summary order. Shares are zero when
// the total is zero.
func Pareto(s Summary) []ParetoPoint {
	var total float64
	for _, g := range s {
		total += g.Value
	}

	out := make([]ParetoPoint, len(s))
	var running float64
	for i, g := range s {
		running += g.Value
		var share float64
		if total != 0 {
			share = running / total * 100
		}
		out[i] = ParetoPoint{Key: g.Key, Value: g.Value, Cumulative: running, Share: share}
	}
	return out
}
