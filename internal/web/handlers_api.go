package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/bidash/internal/core"
	"github.com/JonMunkholm/bidash/internal/logging"
)

// maxJSONBody caps API request bodies.
const maxJSONBody = 1 << 20

// MappingResponse describes a dataset's columns and role assignments.
type MappingResponse struct {
	DatasetID string               `json:"dataset_id"`
	Source    string               `json:"source"`
	LoadedAt  time.Time            `json:"loaded_at"`
	Preset    string               `json:"preset,omitempty"`
	Columns   []string             `json:"columns"`
	Mapping   map[string]any       `json:"mapping"`
	Overrides map[core.Role]string `json:"overrides,omitempty"`
}

func mappingResponse(ds *core.Dataset) MappingResponse {
	return MappingResponse{
		DatasetID: ds.ID,
		Source:    ds.Source,
		LoadedAt:  ds.LoadedAt,
		Preset:    ds.Preset,
		Columns:   ds.Raw.Columns,
		Mapping:   ds.Mapping.Diagnostics(),
		Overrides: ds.Overrides,
	}
}

// SummaryResponse is a ranked aggregate.
type SummaryResponse struct {
	DatasetID    string       `json:"dataset_id"`
	Group        core.Role    `json:"group"`
	Metric       core.Role    `json:"metric"`
	GroupColumn  string       `json:"group_column"`
	MetricColumn string       `json:"metric_column"`
	Rows         int          `json:"rows"`
	Groups       core.Summary `json:"groups"`
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return invalidRequest("body: %w", err)
	}
	return nil
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":  "ok",
		"uploads": s.service.UploadStatus(),
	})
}

// handleGetMapping returns a dataset's role mapping.
func (s *Server) handleGetMapping(w http.ResponseWriter, r *http.Request) {
	ds, err := s.service.Dataset(r.Context(), datasetParam(r))
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, mappingResponse(ds))
}

// handlePutMapping derives a dataset with roles reassigned. The body maps
// role names to column names; an empty column unsets the role.
func (s *Server) handlePutMapping(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	if err := decodeJSON(w, r, &body); err != nil {
		respondError(w, r, err, 0)
		return
	}
	if len(body) == 0 {
		respondError(w, r, invalidRequest("no overrides given"), http.StatusBadRequest)
		return
	}

	overrides := make(map[core.Role]string, len(body))
	for k, v := range body {
		overrides[core.Role(strings.ToLower(strings.TrimSpace(k)))] = strings.TrimSpace(v)
	}

	ds, err := s.service.ApplyOverrides(r.Context(), datasetParam(r), overrides)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	w.Header().Set("Location", "/api/datasets/"+ds.ID+"/mapping")
	writeJSON(w, r, http.StatusCreated, mappingResponse(ds))
}

// handleSummary groups the filtered rows and returns the ranked sums.
//
// Query: group (default category), metric (default sales), top (0 = all),
// plus the usual filter parameters.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	group, err := parseRoleParam(r, "group", core.RoleCategory)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	metric, err := parseRoleParam(r, "metric", core.RoleSales)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if !metric.IsMetric() {
		respondError(w, r, invalidRequest("metric must be sales or profit"), http.StatusBadRequest)
		return
	}
	top, err := parseIntParam(r, "top", s.opts.TopN)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	ds, view, err := s.selectedView(r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	summary, ok := core.Aggregate(view, ds.Mapping, group, metric, top)
	if !ok {
		respondError(w, r, fmt.Errorf("summary: %w", requireRoles(ds.Mapping, group, metric)), 0)
		return
	}

	groupCol, _ := ds.Mapping.Column(group)
	metricCol, _ := ds.Mapping.Column(metric)
	writeJSON(w, r, http.StatusOK, SummaryResponse{
		DatasetID:    ds.ID,
		Group:        group,
		Metric:       metric,
		GroupColumn:  groupCol,
		MetricColumn: metricCol,
		Rows:         view.Len(),
		Groups:       summary,
	})
}

// handleKPIs returns the overview KPIs for the filtered rows.
func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	ds, view, err := s.selectedView(r)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, core.ComputeKPIs(view, ds.Mapping, s.opts.TopN))
}

// handleListPresets returns every saved preset.
func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.service.ListPresets(r.Context())
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if presets == nil {
		presets = []core.Preset{}
	}
	writeJSON(w, r, http.StatusOK, presets)
}

// handleMatchPresets finds presets matching comma-separated headers, or
// the headers of a dataset.
func (s *Server) handleMatchPresets(w http.ResponseWriter, r *http.Request) {
	var headers []string
	if raw := r.URL.Query().Get("headers"); raw != "" {
		for _, h := range strings.Split(raw, ",") {
			headers = append(headers, strings.TrimSpace(h))
		}
	} else {
		ds, err := s.service.Dataset(r.Context(), datasetParam(r))
		if err != nil {
			respondError(w, r, err, 0)
			return
		}
		headers = ds.Raw.Columns
	}

	matches, err := s.service.MatchPresets(r.Context(), headers)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if matches == nil {
		matches = []core.PresetMatch{}
	}
	writeJSON(w, r, http.StatusOK, matches)
}

// handleCreatePreset saves a preset. Headers default to the columns of
// the given dataset.
func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string               `json:"name"`
		Headers   []string             `json:"headers"`
		DatasetID string               `json:"dataset_id"`
		Overrides map[core.Role]string `json:"overrides"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, 0)
		return
	}

	headers := req.Headers
	if len(headers) == 0 && req.DatasetID != "" {
		ds, err := s.service.Dataset(r.Context(), req.DatasetID)
		if err != nil {
			respondError(w, r, err, 0)
			return
		}
		headers = ds.Raw.Columns
	}

	preset, err := s.service.SavePreset(r.Context(), req.Name, headers, req.Overrides)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	logging.FromContext(r.Context()).Info("preset saved", "preset_id", preset.ID, "name", preset.Name)
	writeJSON(w, r, http.StatusCreated, preset)
}

// handleDeletePreset removes a preset.
func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.service.DeletePreset(r.Context(), id); err != nil {
		respondError(w, r, err, 0)
		return
	}
	logging.FromContext(r.Context()).Info("preset deleted", "preset_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleRecentLoads returns the dataset load history, newest first.
func (s *Server) handleRecentLoads(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", core.DefaultHistoryLimit)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	loads, err := s.service.RecentLoads(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	if loads == nil {
		loads = []core.LoadRecord{}
	}
	writeJSON(w, r, http.StatusOK, loads)
}

// handleUploadStatus reports upload slot usage.
func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.service.UploadStatus())
}
