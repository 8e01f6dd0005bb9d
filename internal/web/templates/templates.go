// Package templates renders the dashboard's HTML.
//
// Every exported function returns a templ.Component so handlers render
// pages, partials and alerts the same way:
//
//	templates.Page(params).Render(r.Context(), w)
package templates

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/bidash/internal/chart"
	"github.com/JonMunkholm/bidash/internal/core"
)

//go:embed html/*.html
var files embed.FS

var tmpl = template.Must(template.New("").Funcs(template.FuncMap{
	"plotlyCDN": func() string { return chart.PlotlyCDN },
}).ParseFS(files, "html/*.html"))

// NavLink is one entry of the page selector.
type NavLink struct {
	Label  string
	URL    string
	Active bool
}

// Option is one value of a multi-select filter.
type Option struct {
	Value    string
	Selected bool
}

// Filter is a sidebar multi-select bound to one role.
type Filter struct {
	Name    string // query parameter
	Label   string // column name shown to the user
	Options []Option
}

// Sidebar holds the upload form, page selector and filters.
type Sidebar struct {
	DatasetID string
	Page      string
	Source    string
	Preset    string
	Nav       []NavLink
	Filters   []Filter
}

// TopItem is a row of the KPI top items table.
type TopItem struct {
	Key   string
	Value string
}

// KPICards are the overview summary cards.
type KPICards struct {
	TotalProfit    string
	Countries      string
	TopItemsColumn string
	TopItems       []TopItem
}

// Chart is an embedded interactive figure, or the reason it is missing.
type Chart struct {
	Title  string
	HTML   template.HTML
	Error  *core.UserMessage
	SVGURL string
}

// Download is a link to an exported file.
type Download struct {
	Label string
	URL   string
}

// DataTable is a plain HTML table.
type DataTable struct {
	Caption string
	Columns []string
	Rows    [][]string
}

// RoleChoice is one role of the mapping form.
type RoleChoice struct {
	Role    string
	Current string
	Columns []string
}

// MappingForm lets the user reassign role columns.
type MappingForm struct {
	Action  string
	Choices []RoleChoice
}

// PageParams are everything a dashboard page shows. Sections whose
// fields are empty are not rendered.
type PageParams struct {
	Title     string
	Heading   string
	Sidebar   Sidebar
	Source    string
	Rows      string
	TotalRows string
	Warnings  []string
	Alert     *core.UserMessage

	KPIs        *KPICards
	Charts      []Chart
	Tables      []DataTable
	Downloads   []Download
	Mapping     string
	MappingForm *MappingForm
}

// NoDataParams are shown when no dataset is available.
type NoDataParams struct {
	Alert *core.UserMessage
}

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return tmpl.ExecuteTemplate(w, name, data)
	})
}

// Page renders a full dashboard page.
func Page(p PageParams) templ.Component {
	return render("page", p)
}

// NoData renders the blocking page offered when there is nothing to show:
// an explanation and the upload form.
func NoData(p NoDataParams) templ.Component {
	return render("nodata", p)
}

// ErrorAlert renders an inline error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return render("alert", core.UserMessage{Message: message, Action: action, Code: code})
}
