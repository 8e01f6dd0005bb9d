package web

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/bidash/internal/core"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  core.Selection
	}{
		{"none", "", core.Selection{}},
		{"repeated values", "category=Tech&category=Office", core.Selection{core.RoleCategory: {"Tech", "Office"}}},
		{"both roles", "category=Tech&country=US", core.Selection{core.RoleCategory: {"Tech"}, core.RoleCountry: {"US"}}},
		{"empties dropped", "category=&country=", core.Selection{}},
		{"padded kept", "country=+US&category=Tech+", core.Selection{core.RoleCountry: {" US"}, core.RoleCategory: {"Tech "}}},
		{"whitespace kept", "country=%20", core.Selection{core.RoleCountry: {" "}}},
		{"non-filter role ignored", "product=Laptop", core.Selection{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			if got := parseSelection(r); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseSelection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectionQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?category=Tech&filtered=1&top=5&dataset=old", nil)
	got := selectionQuery("abc", r)
	want := "category=Tech&dataset=abc&filtered=1"
	if got != want {
		t.Errorf("selectionQuery() = %q, want %q", got, want)
	}
}

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{"", 10, false},
		{"n=3", 3, false},
		{"n=0", 0, false},
		{"n=-1", 0, true},
		{"n=x", 0, true},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		got, err := parseIntParam(r, "n", 10)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseIntParam(%q) error = %v, wantErr %v", tt.query, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseIntParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"money", formatMoney(1234567.891), "$1,234,567.89"},
		{"negative money", formatMoney(-20), "-$20.00"},
		{"count", formatCount(12345), "12,345"},
		{"whole amount", formatAmount(1400), "1,400"},
		{"fractional amount", formatAmount(300.5), "300.50"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestMappingJSON(t *testing.T) {
	m := core.ResolveRoles([]string{"Country", "Sales"}, core.DefaultCandidates())
	got := mappingJSON(m)

	want := []string{
		`"country_col": "Country",`,
		`"sales_col": "Sales",`,
		`"profit_col": null,`,
		`"product_col": null`,
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("mappingJSON() missing %q:\n%s", w, got)
		}
	}
	if strings.Index(got, "country_col") > strings.Index(got, "sales_col") {
		t.Error("roles should appear in display order")
	}
}
