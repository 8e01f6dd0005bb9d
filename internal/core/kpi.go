package core

import "github.com/shopspring/decimal"

// ComputeKPIs builds the overview cards for a view.
//
// Total profit is only meaningful when the profit role resolves. Top items
// rank products by sales, falling back to categories when no product
// column exists; both need sales.
func ComputeKPIs(v *View, m RoleMapping, topN int) KPIs {
	var k KPIs

	if col, ok := m.Column(RoleProfit); ok {
		var total decimal.Decimal
		for i := 0; i < v.Len(); i++ {
			if n := v.Numeric(i, col); n.Valid {
				total = total.Add(n.Decimal)
			}
		}
		k.TotalProfit = total.InexactFloat64()
		k.ProfitResolved = true
	}

	if col, ok := m.Column(RoleCountry); ok {
		k.Countries = countDistinct(v, col)
	}

	for _, by := range []Role{RoleProduct, RoleCategory} {
		if s, ok := Aggregate(v, m, by, RoleSales, topN); ok {
			k.TopItems = s
			k.TopItemsBy = by
			k.TopItemsColumn, _ = m.Column(by)
			break
		}
	}

	return k
}

// countDistinct counts distinct non-empty values of col in the view.
func countDistinct(v *View, col string) int {
	seen := make(map[string]struct{})
	for i := 0; i < v.Len(); i++ {
		if val := v.Value(i, col); val != "" {
			seen[val] = struct{}{}
		}
	}
	return len(seen)
}
