package web

import (
	"fmt"

	"github.com/JonMunkholm/bidash/internal/chart"
	"github.com/JonMunkholm/bidash/internal/core"
	"github.com/JonMunkholm/bidash/internal/export"
	"github.com/JonMunkholm/bidash/internal/web/templates"
)

// chartDef describes a figure that can be embedded in a page or
// downloaded on its own.
type chartDef struct {
	page     core.Page
	title    string
	filename string
	roles    []core.Role
	svg      string // static variant in svgCharts, if any
	figure   func(rep *core.Report, m core.RoleMapping, title string) (*chart.Figure, error)
}

// chartDefs are the interactive figures, by export name.
var chartDefs = map[string]chartDef{
	"snapshot": {
		page:     core.PageOverview,
		title:    "Top Categories (Sales)",
		filename: "category_snapshot.html",
		roles:    []core.Role{core.RoleCategory, core.RoleSales},
		figure: func(rep *core.Report, m core.RoleMapping, title string) (*chart.Figure, error) {
			return chart.Bar(title, column(m, core.RoleCategory), column(m, core.RoleSales), rep.CategorySnapshot)
		},
	},
	"map": {
		page:     core.PageMap,
		title:    "Sales by Country",
		filename: export.SalesMapHTML,
		roles:    []core.Role{core.RoleCountry, core.RoleSales},
		svg:      "countries",
		figure: func(rep *core.Report, m core.RoleMapping, title string) (*chart.Figure, error) {
			return chart.Choropleth(title, column(m, core.RoleSales), rep.CountrySales)
		},
	},
	"treemap": {
		page:     core.PageCategories,
		title:    "Sales Treemap",
		filename: "sales_treemap.html",
		roles:    []core.Role{core.RoleCategory, core.RoleSales},
		figure: func(rep *core.Report, m core.RoleMapping, title string) (*chart.Figure, error) {
			return chart.Treemap(title, breakdownSummary(rep.Breakdown, core.RoleSales))
		},
	},
	"categories": {
		page:     core.PageCategories,
		title:    "Top Categories (Bar)",
		filename: "top_categories.html",
		roles:    []core.Role{core.RoleCategory, core.RoleSales},
		svg:      "categories",
		figure: func(rep *core.Report, m core.RoleMapping, title string) (*chart.Figure, error) {
			return chart.Bar(title, column(m, core.RoleCategory), column(m, core.RoleSales), rep.CategoryTop)
		},
	},
	"pareto": {
		page:     core.PageCategories,
		title:    "Cumulative Sales Share",
		filename: "sales_pareto.html",
		roles:    []core.Role{core.RoleCategory, core.RoleSales},
		figure: func(rep *core.Report, m core.RoleMapping, title string) (*chart.Figure, error) {
			return chart.Line(title, rep.Pareto)
		},
	},
}

// pageCharts lists the figures drawn on each page, in order.
var pageCharts = map[core.Page][]string{
	core.PageOverview:   {"snapshot"},
	core.PageMap:        {"map"},
	core.PageCategories: {"treemap", "categories", "pareto"},
}

// svgCharts are the static bar charts, by export name. Each plots sales
// per group of its role.
var svgCharts = map[string]struct {
	title string
	group core.Role
}{
	"categories": {"Top Categories (Sales)", core.RoleCategory},
	"countries":  {"Top Countries (Sales)", core.RoleCountry},
}

// buildFigure returns the named figure for a report of the chart's page.
func buildFigure(name string, rep *core.Report, m core.RoleMapping) (*chart.Figure, chartDef, error) {
	def, ok := chartDefs[name]
	if !ok {
		return nil, chartDef{}, invalidRequest("unknown chart %q", name)
	}
	if err := requireRoles(m, def.roles...); err != nil {
		return nil, def, fmt.Errorf("%s chart: %w", name, err)
	}
	fig, err := def.figure(rep, m, def.title)
	if err != nil {
		return nil, def, fmt.Errorf("%s chart: %w", name, err)
	}
	return fig, def, nil
}

// embedCharts builds the figures of the report's page. Figures whose
// roles are unresolved are left out, since the page already warns about
// them; a figure that fails otherwise carries its error message instead.
func embedCharts(rep *core.Report, m core.RoleMapping, svgBase string) []templates.Chart {
	var out []templates.Chart
	for _, name := range pageCharts[rep.Page] {
		if requireRoles(m, chartDefs[name].roles...) != nil {
			continue
		}
		c := templates.Chart{Title: chartDefs[name].title}
		fig, def, err := buildFigure(name, rep, m)
		if err == nil {
			c.HTML, err = chart.Embed(fig, "chart-"+name)
		}
		if err != nil {
			c.Error = userMessage(err)
		} else if def.svg != "" {
			c.SVGURL = svgBase + def.svg + ".svg"
		}
		out = append(out, c)
	}
	return out
}

func requireRoles(m core.RoleMapping, roles ...core.Role) error {
	for _, r := range roles {
		if !m.Resolved(r) {
			return fmt.Errorf("%w: %s", core.ErrUnresolvedRole, r)
		}
	}
	return nil
}

// column returns the column serving role, or the role name when unresolved.
func column(m core.RoleMapping, role core.Role) string {
	if col, ok := m.Column(role); ok {
		return col
	}
	return string(role)
}

// breakdownSummary projects one metric of a breakdown as a summary.
func breakdownSummary(rows []core.GroupRow, metric core.Role) core.Summary {
	out := make(core.Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, core.GroupTotal{Key: r.Key, Value: r.Totals[metric]})
	}
	return out
}
