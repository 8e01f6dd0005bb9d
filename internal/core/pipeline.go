package core

import (
	"strings"
	"time"
)

// Dataset is a loaded table together with its resolved role mapping.
// Table holds the metric columns in normalized form; Raw is the table
// exactly as parsed. Both are read-only for the life of the dataset.
type Dataset struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Preset   string

	Raw       *Table
	Table     *Table
	Mapping   RoleMapping
	Overrides map[Role]string
}

// NewDataset resolves roles against the raw header, applies overrides and
// normalizes the resolved metric columns.
func NewDataset(id, source string, raw *Table, c Candidates, overrides map[Role]string) (*Dataset, error) {
	mapping := ResolveRoles(raw.Columns, c)
	if len(overrides) > 0 {
		var err error
		mapping, err = mapping.WithOverrides(raw, overrides)
		if err != nil {
			return nil, err
		}
	}

	var metricCols []string
	for _, r := range MetricRoles {
		if col, ok := mapping.Column(r); ok {
			metricCols = append(metricCols, col)
		}
	}

	return &Dataset{
		ID:        id,
		Source:    source,
		LoadedAt:  time.Now(),
		Raw:       raw,
		Table:     Normalize(raw, metricCols...),
		Mapping:   mapping,
		Overrides: overrides,
	}, nil
}

// Page is one of the dashboard's views.
type Page string

const (
	PageOverview   Page = "overview"
	PageMap        Page = "map"
	PageCategories Page = "categories"
	PageData       Page = "data"
)

// Pages lists the pages in navigation order.
var Pages = []Page{PageOverview, PageMap, PageCategories, PageData}

var pageLabels = map[Page]string{
	PageOverview:   "Overview",
	PageMap:        "Map",
	PageCategories: "Category Analysis",
	PageData:       "Data & Export",
}

// Label returns the navigation label of the page.
func (p Page) Label() string {
	return pageLabels[p]
}

// ParsePage accepts a page slug or label. Unknown input selects Overview.
func ParsePage(s string) Page {
	s = strings.TrimSpace(s)
	for _, p := range Pages {
		if strings.EqualFold(s, string(p)) || strings.EqualFold(s, p.Label()) {
			return p
		}
	}
	return PageOverview
}

// Options are the per-page sizes used by Run.
type Options struct {
	TopN         int
	CategoryTopN int
	PreviewRows  int
}

// DefaultOptions returns the standard dashboard sizes.
func DefaultOptions() Options {
	return Options{TopN: 10, CategoryTopN: 20, PreviewRows: 300}
}

// Warning messages shown in place of a page section.
const (
	WarnMapRoles      = "Country or Sales column missing."
	WarnCategoryRoles = "Category or Sales not found."
	WarnTopItems      = "Top 10 Items unavailable"
)

// Report is everything a page needs to render. Only the fields of the
// requested page are populated.
type Report struct {
	Page      Page
	Source    string
	Rows      int
	TotalRows int
	View      *View

	KPIs             *KPIs
	CategorySnapshot Summary

	CountrySales Summary

	Breakdown   []GroupRow
	CategoryTop Summary
	Pareto      []ParetoPoint

	Preview *View
	Mapping map[string]any

	Warnings []string
}

// Run filters the dataset by sel and computes the summaries for page.
// It never modifies ds; unresolved roles produce warnings, not errors.
func Run(ds *Dataset, sel Selection, page Page, opts Options) *Report {
	view := ApplyFilters(ds.Table, ds.Mapping, sel)

	rep := &Report{
		Page:      page,
		Source:    ds.Source,
		Rows:      view.Len(),
		TotalRows: ds.Table.Len(),
		View:      view,
	}

	switch page {
	case PageMap:
		if s, ok := Aggregate(view, ds.Mapping, RoleCountry, RoleSales, 0); ok {
			rep.CountrySales = s
		} else {
			rep.Warnings = append(rep.Warnings, WarnMapRoles)
		}

	case PageCategories:
		rows, ok := Breakdown(view, ds.Mapping, RoleCategory, RoleSales, RoleProfit)
		if !ok || !ds.Mapping.Resolved(RoleSales) {
			rep.Warnings = append(rep.Warnings, WarnCategoryRoles)
			break
		}
		rep.Breakdown = rows
		rep.CategoryTop, _ = Aggregate(view, ds.Mapping, RoleCategory, RoleSales, opts.CategoryTopN)
		all, _ := Aggregate(view, ds.Mapping, RoleCategory, RoleSales, 0)
		rep.Pareto = Pareto(all)

	case PageData:
		rep.Preview = view.Head(opts.PreviewRows)
		rep.Mapping = ds.Mapping.Diagnostics()

	default:
		rep.Page = PageOverview
		kpis := ComputeKPIs(view, ds.Mapping, opts.TopN)
		rep.KPIs = &kpis
		if kpis.TopItems == nil {
			rep.Warnings = append(rep.Warnings, WarnTopItems)
		}
		rep.CategorySnapshot, _ = Aggregate(view, ds.Mapping, RoleCategory, RoleSales, opts.TopN)
	}

	return rep
}
