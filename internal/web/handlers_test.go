package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/bidash/internal/chart"
	"github.com/JonMunkholm/bidash/internal/core"
	"github.com/JonMunkholm/bidash/internal/export"
)

func TestExportCSV(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name    string
		query   string
		want    []string
		notWant []string
	}{
		{"all rows", "", []string{"Country,Sales,Profit,Category,Product", "US,1200,100,Tech,Laptop", "DE,300,50,Office,Chair"}, nil},
		{"category filter", "?category=Tech", []string{"US,1200,100,Tech,Laptop", "FR,200,30,Tech,Phone"}, []string{"Office"}},
		{"country filter", "?country=US&country=FR", []string{"US,500,-20,Office,Desk"}, []string{"DE,"}},
		{"filters combine", "?country=US&category=Office", []string{"US,500,-20,Office,Desk"}, []string{"Laptop", "Chair"}},
		{"blank selection ignored", "?category=", []string{"DE,300,50,Office,Chair"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/export/default/filtered.csv"+tt.query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if ct := rec.Header().Get("Content-Type"); ct != export.ContentTypeCSV {
				t.Errorf("Content-Type = %q, want %q", ct, export.ContentTypeCSV)
			}
			if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, export.FilteredCSV) {
				t.Errorf("Content-Disposition = %q", cd)
			}
			body := rec.Body.String()
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("csv missing %q:\n%s", w, body)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(body, w) {
					t.Errorf("csv should not contain %q:\n%s", w, body)
				}
			}
		})
	}
}

func TestExportCSVPaddedValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padded.csv")
	if err := os.WriteFile(path, []byte("Region,Sales,Category\n US,10,A \nUK,5,A\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newServerWithSources(testConfig(), path)

	rec := do(t, s, http.MethodGet, "/page/data", nil)
	if body := rec.Body.String(); !strings.Contains(body, `value=" US"`) || !strings.Contains(body, `value="A "`) {
		t.Fatalf("sidebar should offer the raw cell text as option values:\n%s", body)
	}

	tests := []struct {
		name    string
		query   string
		want    []string
		notWant []string
	}{
		{"padded country", "?country=%20US&filtered=1", []string{`" US",10,A `}, []string{"UK"}},
		{"padded category", "?category=A%20&filtered=1", []string{`" US",10,A `}, []string{"UK"}},
		{"unpadded category", "?category=A&filtered=1", []string{"UK,5,A"}, []string{`" US"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/export/default/filtered.csv"+tt.query, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			body := rec.Body.String()
			for _, w := range tt.want {
				if !strings.Contains(body, w) {
					t.Errorf("csv missing %q:\n%s", w, body)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(body, w) {
					t.Errorf("csv should not contain %q:\n%s", w, body)
				}
			}
		})
	}
}

func readWorkbook(t *testing.T, body []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	if err != nil {
		t.Fatalf("GetRows(%q) error = %v", export.SheetName, err)
	}
	return rows
}

func TestExportXLSX(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/export/default/filtered.xlsx?category=Tech", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != export.ContentTypeXLSX {
		t.Errorf("Content-Type = %q", ct)
	}

	rows := readWorkbook(t, rec.Body.Bytes())
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 (header + 2)", len(rows))
	}
	if rows[0][0] != "Country" || rows[1][1] != "1200" {
		t.Errorf("rows = %v", rows)
	}
}

func TestExportCategorySummary(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/export/default/category_summary.xlsx", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, export.CategorySummary) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rows := readWorkbook(t, rec.Body.Bytes())
	if len(rows) != 3 {
		t.Fatalf("rows = %v, want header + 2 categories", rows)
	}
	if got := strings.Join(rows[0], ","); got != "Category,Sales,Profit" {
		t.Errorf("header = %q", got)
	}
	if rows[1][0] != "Office" || rows[2][0] != "Tech" {
		t.Errorf("categories = %q, %q, want Office, Tech", rows[1][0], rows[2][0])
	}
}

func TestChartHTML(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/export/default/chart/map.html", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, export.SalesMapHTML) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	body := rec.Body.String()
	for _, w := range []string{chart.PlotlyCDN, "choropleth", "country names", "Sales by Country"} {
		if !strings.Contains(body, w) {
			t.Errorf("chart html missing %q", w)
		}
	}

	rec = do(t, s, http.MethodGet, "/export/default/chart/bogus.html", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown chart status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestChartHTMLEmptySelection(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/export/default/chart/treemap.html?category=Nothing", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestTreemapNegativeSales(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refunds.csv")
	if err := os.WriteFile(path, []byte("Category,Sales\nRefunds,-50\nReturns,-5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := newServerWithSources(testConfig(), path)

	rec := do(t, s, http.MethodGet, "/page/categories", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "CHART003") || !strings.Contains(body, "positive sales") {
		t.Errorf("categories page should explain the empty treemap:\n%s", body)
	}

	rec = do(t, s, http.MethodGet, "/export/default/chart/treemap.html", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestChartSVG(t *testing.T) {
	s := newTestServer(t, testConfig())

	for _, name := range []string{"categories", "countries"} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/export/default/chart/"+name+".svg", nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
				t.Errorf("Content-Type = %q", ct)
			}
			if !strings.Contains(rec.Body.String(), "<svg") {
				t.Error("body is not svg")
			}
		})
	}
}

func TestSummaryAPI(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name     string
		query    string
		wantCode int
		wantErr  string
		want     core.Summary
	}{
		{"default category sales", "", http.StatusOK, "", core.Summary{{Key: "Tech", Value: 1400}, {Key: "Office", Value: 800}}},
		{"country profit", "?group=country&metric=profit", http.StatusOK, "", core.Summary{{Key: "US", Value: 80}, {Key: "DE", Value: 50}, {Key: "FR", Value: 30}}},
		{"top one", "?group=country&top=1", http.StatusOK, "", core.Summary{{Key: "US", Value: 1700}}},
		{"filtered", "?category=Office", http.StatusOK, "", core.Summary{{Key: "Office", Value: 800}}},
		{"unknown group", "?group=region", http.StatusBadRequest, "ROLE003", nil},
		{"non-metric metric", "?metric=country", http.StatusBadRequest, "REQ001", nil},
		{"negative top", "?top=-1", http.StatusBadRequest, "REQ001", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodGet, "/api/datasets/default/summary"+tt.query, nil)
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				if code := errorCode(t, rec); code != tt.wantErr {
					t.Errorf("code = %q, want %q", code, tt.wantErr)
				}
				return
			}
			var resp SummaryResponse
			decodeBody(t, rec, &resp)
			if fmt.Sprint(resp.Groups) != fmt.Sprint(tt.want) {
				t.Errorf("Groups = %v, want %v", resp.Groups, tt.want)
			}
		})
	}
}

func TestKPIsAPI(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/api/datasets/default/kpis?country=US", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var kpis core.KPIs
	decodeBody(t, rec, &kpis)
	if kpis.TotalProfit != 80 {
		t.Errorf("TotalProfit = %v, want 80", kpis.TotalProfit)
	}
	if kpis.Countries != 1 {
		t.Errorf("Countries = %d, want 1", kpis.Countries)
	}

	rec = do(t, s, http.MethodGet, "/api/datasets/nope/kpis", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	if code := errorCode(t, rec); code != "DATA002" {
		t.Errorf("code = %q, want DATA002", code)
	}
}

func TestPutMapping(t *testing.T) {
	s := newTestServer(t, testConfig())

	tests := []struct {
		name     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"reassign", `{"sales":"Profit"}`, http.StatusCreated, ""},
		{"unset", `{"profit":""}`, http.StatusCreated, ""},
		{"unknown column", `{"sales":"Nope"}`, http.StatusBadRequest, "ROLE002"},
		{"unknown role", `{"region":"Country"}`, http.StatusBadRequest, "ROLE003"},
		{"empty body", `{}`, http.StatusBadRequest, "REQ001"},
		{"malformed", `{`, http.StatusBadRequest, "REQ001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPut, "/api/datasets/default/mapping", strings.NewReader(tt.body),
				"Content-Type", "application/json")
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantErr != "" {
				if code := errorCode(t, rec); code != tt.wantErr {
					t.Errorf("code = %q, want %q", code, tt.wantErr)
				}
				return
			}
			var resp MappingResponse
			decodeBody(t, rec, &resp)
			if resp.DatasetID == core.DefaultDatasetID {
				t.Error("overrides should derive a new dataset")
			}
			if loc := rec.Header().Get("Location"); loc != "/api/datasets/"+resp.DatasetID+"/mapping" {
				t.Errorf("Location = %q", loc)
			}
		})
	}
}

func TestPresetsAPI(t *testing.T) {
	s := newTestServer(t, testConfig())

	create := `{"name":"regional","headers":["Region","Revenue"],"overrides":{"country":"Region"}}`
	rec := do(t, s, http.MethodPost, "/api/presets", strings.NewReader(create), "Content-Type", "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var preset core.Preset
	decodeBody(t, rec, &preset)
	if preset.ID == "" || preset.Name != "regional" {
		t.Fatalf("preset = %+v", preset)
	}

	rec = do(t, s, http.MethodPost, "/api/presets", strings.NewReader(create), "Content-Type", "application/json")
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want %d", rec.Code, http.StatusConflict)
	}

	rec = do(t, s, http.MethodPost, "/api/presets", strings.NewReader(`{"headers":["a"]}`), "Content-Type", "application/json")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("nameless status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = do(t, s, http.MethodGet, "/api/presets/match?headers=Region,Revenue", nil)
	var matches []core.PresetMatch
	decodeBody(t, rec, &matches)
	if len(matches) != 1 || matches[0].Preset.ID != preset.ID {
		t.Errorf("matches = %+v", matches)
	}

	rec = do(t, s, http.MethodGet, "/api/presets/match?dataset=default", nil)
	matches = nil
	decodeBody(t, rec, &matches)
	if len(matches) != 0 {
		t.Errorf("default dataset matches = %+v, want none", matches)
	}

	rec = do(t, s, http.MethodDelete, "/api/presets/"+preset.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	rec = do(t, s, http.MethodDelete, "/api/presets/"+preset.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestPresetsFromDataset(t *testing.T) {
	s := newTestServer(t, testConfig())

	body := `{"name":"from default","dataset_id":"default","overrides":{"product":"Category"}}`
	rec := do(t, s, http.MethodPost, "/api/presets", strings.NewReader(body), "Content-Type", "application/json")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var preset core.Preset
	decodeBody(t, rec, &preset)
	if strings.Join(preset.Headers, ",") != "Country,Sales,Profit,Category,Product" {
		t.Errorf("Headers = %v", preset.Headers)
	}
}

func TestMutationsRequireAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RequireAPIKey = true
	cfg.Security.APIKeys = []string{"secret"}
	s := newTestServer(t, cfg)

	body := `{"name":"p","headers":["a"]}`
	rec := do(t, s, http.MethodPost, "/api/presets", strings.NewReader(body))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	rec = do(t, s, http.MethodPost, "/api/presets", strings.NewReader(body), "X-API-Key", "secret")
	if rec.Code != http.StatusCreated {
		t.Errorf("with key status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}

	rec = do(t, s, http.MethodGet, "/api/presets", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("reads should stay open, status = %d", rec.Code)
	}
}

func TestRecentLoads(t *testing.T) {
	s := newTestServer(t, testConfig())

	do(t, s, http.MethodGet, "/page/overview", nil)
	body, ct := multipartBody(t, "file", "second.csv", "Country,Sales\nUS,1\n")
	do(t, s, http.MethodPost, "/upload", body, "Content-Type", ct)

	rec := do(t, s, http.MethodGet, "/api/loads?limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var loads []core.LoadRecord
	decodeBody(t, rec, &loads)
	if len(loads) != 1 || loads[0].Source != "second.csv" {
		t.Errorf("loads = %+v, want the upload only", loads)
	}

	rec = do(t, s, http.MethodGet, "/api/loads?limit=abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUploadStatusAPI(t *testing.T) {
	s := newTestServer(t, testConfig())

	rec := do(t, s, http.MethodGet, "/api/upload-status", nil)
	var status core.UploadLimiterStatus
	decodeBody(t, rec, &status)
	if status.MaxConcurrent != 2 || status.Active != 0 {
		t.Errorf("status = %+v", status)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Rate.Enabled = true
	cfg.Rate.RequestsPerMinute = 2
	s := newTestServer(t, cfg)
	defer s.Shutdown(context.Background())

	for i := 0; i < 2; i++ {
		if rec := do(t, s, http.MethodGet, "/api/presets", nil); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(t, s, http.MethodGet, "/api/presets", nil)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"no data", core.ErrNoData, http.StatusNotFound},
		{"dataset", fmt.Errorf("%w: x", core.ErrDatasetNotFound), http.StatusNotFound},
		{"unresolved", fmt.Errorf("%w: sales", core.ErrUnresolvedRole), http.StatusNotFound},
		{"empty chart", fmt.Errorf("map chart: %w", chart.ErrEmptyChart), http.StatusNotFound},
		{"preset exists", core.ErrPresetExists, http.StatusConflict},
		{"busy", core.ErrTooManyUploads, http.StatusServiceUnavailable},
		{"rate", errRateLimited, http.StatusTooManyRequests},
		{"column", core.ErrColumnNotFound, http.StatusBadRequest},
		{"invalid csv", errors.New("parse a.csv: invalid csv: bad quote"), http.StatusBadRequest},
		{"invalid request", invalidRequest("top"), http.StatusBadRequest},
		{"too large", fmt.Errorf("file too large: %w", &http.MaxBytesError{Limit: 1}), http.StatusRequestEntityTooLarge},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestRespondErrorFormats(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		accept string
		wantCT string
	}{
		{"api path", "/api/presets", "", "application/json"},
		{"accept json", "/page/overview", "application/json", "application/json"},
		{"html", "/page/overview", "text/html", "text/html; charset=utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			respondError(rec, req, core.ErrPresetExists, 0)

			if rec.Code != http.StatusConflict {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.wantCT {
				t.Errorf("Content-Type = %q, want %q", ct, tt.wantCT)
			}
			if !strings.Contains(rec.Body.String(), "PRE002") {
				t.Errorf("body missing code: %s", rec.Body.String())
			}
		})
	}
}
