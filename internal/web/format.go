package web

import (
	"encoding/json"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/JonMunkholm/bidash/internal/core"
	"github.com/JonMunkholm/bidash/internal/web/templates"
)

var printer = message.NewPrinter(language.English)

// formatMoney renders v as dollars with thousands separators and cents.
func formatMoney(v float64) string {
	if v < 0 {
		return printer.Sprintf("-$%.2f", -v)
	}
	return printer.Sprintf("$%.2f", v)
}

// formatCount renders n with thousands separators.
func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// formatAmount renders a summed metric with thousands separators and at
// most two decimals.
func formatAmount(v float64) string {
	if v == float64(int64(v)) {
		return printer.Sprintf("%d", int64(v))
	}
	return printer.Sprintf("%.2f", v)
}

// kpiCards formats KPIs for the overview cards.
func kpiCards(k *core.KPIs) *templates.KPICards {
	cards := &templates.KPICards{
		TotalProfit:    formatMoney(k.TotalProfit),
		Countries:      formatCount(k.Countries),
		TopItemsColumn: k.TopItemsColumn,
	}
	for _, item := range k.TopItems {
		cards.TopItems = append(cards.TopItems, templates.TopItem{Key: item.Key, Value: formatAmount(item.Value)})
	}
	return cards
}

// mappingJSON renders role diagnostics as indented JSON in role order.
func mappingJSON(m core.RoleMapping) string {
	diag := m.Diagnostics()
	var b []byte
	b = append(b, "{\n"...)
	for i, r := range core.Roles {
		key := string(r) + "_col"
		k, _ := json.Marshal(key)
		v, _ := json.Marshal(diag[key])
		b = append(b, "  "...)
		b = append(b, k...)
		b = append(b, ": "...)
		b = append(b, v...)
		if i < len(core.Roles)-1 {
			b = append(b, ',')
		}
		b = append(b, '\n')
	}
	b = append(b, '}')
	return string(b)
}
