package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/bidash/internal/core"
	"github.com/JonMunkholm/bidash/internal/logging"
	"github.com/JonMunkholm/bidash/internal/web/templates"
)

var pageHeadings = map[core.Page]string{
	core.PageOverview:   "Overview",
	core.PageMap:        "Geographic Sales Map",
	core.PageCategories: "Category Analysis",
	core.PageData:       "Filtered Data",
}

// handleIndex redirects to the overview, keeping the query.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	target := "/page/" + string(core.PageOverview)
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// handlePage renders one dashboard page for the selected dataset and filters.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := core.ParsePage(chi.URLParam(r, "page"))

	ds, err := s.service.Dataset(ctx, datasetParam(r))
	if err != nil {
		s.renderNoData(w, r, err)
		return
	}

	rep := core.Run(ds, parseSelection(r), page, s.opts)
	params := s.pageParams(r, ds, rep)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Page(params).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render page failed", "page", page, "error", err)
	}
}

// renderNoData shows the upload form when no dataset can be served. A
// missing default source is the normal first-run state; anything else is
// reported with its status.
func (s *Server) renderNoData(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if errors.Is(err, core.ErrNoData) {
		status = http.StatusOK
		logging.FromContext(r.Context()).Info("no data source available", "error", err)
	} else {
		logging.FromContext(r.Context()).Warn("dataset unavailable", "error", err, "status", status)
	}

	var alert *core.UserMessage
	if !errors.Is(err, core.ErrNoData) {
		alert = userMessage(err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.NoData(templates.NoDataParams{Alert: alert}).Render(r.Context(), w)
}

// pageParams assembles everything the page template shows.
func (s *Server) pageParams(r *http.Request, ds *core.Dataset, rep *core.Report) templates.PageParams {
	query := selectionQuery(ds.ID, r)
	exportBase := "/export/" + url.PathEscape(ds.ID) + "/"

	p := templates.PageParams{
		Title:     "Sales Dashboard | " + rep.Page.Label(),
		Heading:   pageHeadings[rep.Page],
		Sidebar:   s.sidebar(r, ds, rep.Page, query),
		Source:    rep.Source,
		Rows:      formatCount(rep.Rows),
		TotalRows: formatCount(rep.TotalRows),
		Warnings:  rep.Warnings,
	}

	svgBase := exportBase + "chart/"
	p.Charts = embedCharts(rep, ds.Mapping, svgBase)
	for i := range p.Charts {
		if p.Charts[i].SVGURL != "" {
			p.Charts[i].SVGURL += "?" + query
		}
	}

	switch rep.Page {
	case core.PageOverview:
		p.KPIs = kpiCards(rep.KPIs)

	case core.PageMap:
		if rep.CountrySales != nil {
			p.Downloads = append(p.Downloads, templates.Download{
				Label: "Download Map as HTML",
				URL:   exportBase + "chart/map.html?" + query,
			})
		}

	case core.PageCategories:
		if rep.Breakdown != nil {
			p.Tables = append(p.Tables, breakdownTable(rep.Breakdown, ds.Mapping))
			p.Downloads = append(p.Downloads, templates.Download{
				Label: "Download Category Summary Excel",
				URL:   exportBase + "category_summary.xlsx?" + query,
			})
		}

	case core.PageData:
		p.Tables = append(p.Tables, previewTable(rep.Preview))
		p.Downloads = append(p.Downloads,
			templates.Download{Label: "Download filtered CSV", URL: exportBase + "filtered.csv?" + query},
			templates.Download{Label: "Download filtered Excel", URL: exportBase + "filtered.xlsx?" + query},
		)
		p.Mapping = mappingJSON(ds.Mapping)
		p.MappingForm = mappingForm(ds)
	}

	return p
}

// sidebar builds navigation links and filters. On a first visit every
// filter value shows selected; after the filter form is submitted only
// the submitted values do.
func (s *Server) sidebar(r *http.Request, ds *core.Dataset, active core.Page, query string) templates.Sidebar {
	sb := templates.Sidebar{
		DatasetID: ds.ID,
		Page:      string(active),
		Source:    ds.Source,
		Preset:    ds.Preset,
	}
	for _, p := range core.Pages {
		sb.Nav = append(sb.Nav, templates.NavLink{
			Label:  p.Label(),
			URL:    "/page/" + string(p) + "?" + query,
			Active: p == active,
		})
	}

	sel := parseSelection(r)
	if !filterSubmitted(r) {
		sel = core.DefaultSelection(ds.Table, ds.Mapping)
	}
	for _, role := range core.FilterRoles {
		col, ok := ds.Mapping.Column(role)
		if !ok {
			continue
		}
		f := templates.Filter{Name: string(role), Label: col}
		for _, v := range core.DistinctValues(ds.Table, col) {
			f.Options = append(f.Options, templates.Option{
				Value:    v,
				Selected: slices.Contains(sel[role], v),
			})
		}
		sb.Filters = append(sb.Filters, f)
	}
	return sb
}

func previewTable(v *core.View) templates.DataTable {
	t := templates.DataTable{Columns: v.Columns()}
	for i := 0; i < v.Len(); i++ {
		t.Rows = append(t.Rows, v.Row(i))
	}
	return t
}

// breakdownTable lists per-category totals, largest sales first.
func breakdownTable(rows []core.GroupRow, m core.RoleMapping) templates.DataTable {
	sorted := slices.Clone(rows)
	core.SortBreakdown(sorted, core.RoleSales)

	metrics := resolvedMetrics(m)
	t := templates.DataTable{Caption: "Category Summary", Columns: []string{column(m, core.RoleCategory)}}
	for _, c := range metrics {
		t.Columns = append(t.Columns, c.Name)
	}
	for _, r := range sorted {
		row := []string{r.Key}
		for _, c := range metrics {
			row = append(row, formatAmount(r.Totals[c.Role]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func mappingForm(ds *core.Dataset) *templates.MappingForm {
	form := &templates.MappingForm{Action: "/datasets/" + url.PathEscape(ds.ID) + "/mapping"}
	for _, role := range core.Roles {
		current, _ := ds.Mapping.Column(role)
		form.Choices = append(form.Choices, templates.RoleChoice{
			Role:    string(role),
			Current: current,
			Columns: ds.Raw.Columns,
		})
	}
	return form
}

// handleUpload parses an uploaded CSV and redirects to its overview.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			s.renderNoData(w, r, fmt.Errorf("file too large: %w", err))
			return
		}
		s.renderNoData(w, r, fmt.Errorf("%w: %v", errNoFile, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.renderNoData(w, r, errNoFile)
		return
	}
	defer file.Close()

	ds, err := s.service.Upload(r.Context(), header.Filename, file)
	if err != nil {
		s.renderNoData(w, r, err)
		return
	}

	http.Redirect(w, r, "/page/overview?dataset="+url.QueryEscape(ds.ID), http.StatusSeeOther)
}

// handleMappingForm applies role reassignments submitted from the data
// page, optionally saving them as a preset, and shows the new dataset.
func (s *Server) handleMappingForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		respondError(w, r, invalidRequest("%v", err), http.StatusBadRequest)
		return
	}

	overrides := make(map[core.Role]string)
	for _, role := range core.Roles {
		if vals, ok := r.PostForm[string(role)]; ok && len(vals) > 0 {
			overrides[role] = strings.TrimSpace(vals[0])
		}
	}

	ds, err := s.service.ApplyOverrides(ctx, chi.URLParam(r, "dataset"), overrides)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	if name := strings.TrimSpace(r.PostForm.Get("preset_name")); name != "" {
		if _, err := s.service.SavePreset(ctx, name, ds.Raw.Columns, ds.Overrides); err != nil {
			respondError(w, r, err, 0)
			return
		}
		logging.FromContext(ctx).Info("preset saved from mapping form",
			slog.String("preset", name),
			slog.String("dataset_id", ds.ID),
		)
	}

	http.Redirect(w, r, "/page/data?dataset="+url.QueryEscape(ds.ID), http.StatusSeeOther)
}
