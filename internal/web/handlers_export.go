package web

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/bidash/internal/chart"
	"github.com/JonMunkholm/bidash/internal/core"
	"github.com/JonMunkholm/bidash/internal/export"
	"github.com/JonMunkholm/bidash/internal/logging"
)

// selectedView loads the request's dataset and applies its filters.
func (s *Server) selectedView(r *http.Request) (*core.Dataset, *core.View, error) {
	ds, err := s.service.Dataset(r.Context(), datasetParam(r))
	if err != nil {
		return nil, nil, err
	}
	return ds, core.ApplyFilters(ds.Table, ds.Mapping, parseSelection(r)), nil
}

// resolvedMetrics lists the resolved metric roles with their columns.
func resolvedMetrics(m core.RoleMapping) []export.Column {
	var out []export.Column
	for _, r := range core.MetricRoles {
		if col, ok := m.Column(r); ok {
			out = append(out, export.Column{Role: r, Name: col})
		}
	}
	return out
}

// sendFile writes a buffered download.
func sendFile(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Write(body)
}

// handleExportCSV streams the filtered rows as CSV.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	ds, view, err := s.selectedView(r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", export.ContentTypeCSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.FilteredCSV))

	// Headers are sent once the first row is written, so failures can only be logged.
	if err := export.WriteCSV(w, view); err != nil {
		logging.FromContext(r.Context()).Error("csv export failed", "dataset_id", ds.ID, "error", err)
		return
	}
	logging.FromContext(r.Context()).Info("csv exported", "dataset_id", ds.ID, "rows", view.Len())
}

// handleExportXLSX sends the filtered rows as a workbook.
func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	ds, view, err := s.selectedView(r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	var buf bytes.Buffer
	if err := export.ViewXLSX(&buf, view); err != nil {
		respondError(w, r, fmt.Errorf("xlsx export: %w", err), http.StatusInternalServerError)
		return
	}
	logging.FromContext(r.Context()).Info("xlsx exported", "dataset_id", ds.ID, "rows", view.Len())
	sendFile(w, export.ContentTypeXLSX, export.FilteredXLSX, buf.Bytes())
}

// handleExportCategorySummary sends per-category sales and profit totals.
func (s *Server) handleExportCategorySummary(w http.ResponseWriter, r *http.Request) {
	ds, view, err := s.selectedView(r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	if err := requireRoles(ds.Mapping, core.RoleCategory, core.RoleSales); err != nil {
		respondError(w, r, fmt.Errorf("category summary: %w", err), 0)
		return
	}
	metrics := resolvedMetrics(ds.Mapping)
	roles := make([]core.Role, len(metrics))
	for i, c := range metrics {
		roles[i] = c.Role
	}
	rows, _ := core.Breakdown(view, ds.Mapping, core.RoleCategory, roles...)
	core.SortBreakdownByKey(rows)

	var buf bytes.Buffer
	if err := export.BreakdownXLSX(&buf, column(ds.Mapping, core.RoleCategory), metrics, rows); err != nil {
		respondError(w, r, fmt.Errorf("category summary: %w", err), http.StatusInternalServerError)
		return
	}
	sendFile(w, export.ContentTypeXLSX, export.CategorySummary, buf.Bytes())
}

// handleChartHTML sends one interactive figure as a standalone HTML file.
func (s *Server) handleChartHTML(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	def, ok := chartDefs[name]
	if !ok {
		respondError(w, r, invalidRequest("unknown chart %q", name), http.StatusNotFound)
		return
	}

	ds, err := s.service.Dataset(r.Context(), datasetParam(r))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	rep := core.Run(ds, parseSelection(r), def.page, s.opts)
	fig, _, err := buildFigure(name, rep, ds.Mapping)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	body, err := chart.HTML(fig, def.title)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	sendFile(w, export.ContentTypeHTML, def.filename, body)
}

// handleChartSVG renders a static bar chart of sales per group.
func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	bar, ok := svgCharts[name]
	if !ok {
		respondError(w, r, invalidRequest("unknown chart %q", name), http.StatusNotFound)
		return
	}

	ds, view, err := s.selectedView(r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	topN := s.opts.TopN
	if bar.group == core.RoleCategory {
		topN = s.opts.CategoryTopN
	}
	summary, ok := core.Aggregate(view, ds.Mapping, bar.group, core.RoleSales, topN)
	if !ok {
		respondError(w, r, fmt.Errorf("%s chart: %w", name, requireRoles(ds.Mapping, bar.group, core.RoleSales)), 0)
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderBarSVG(&buf, bar.title, summary); err != nil {
		respondError(w, r, fmt.Errorf("%s chart: %w", name, err), 0)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(buf.Bytes())
}
