package core

import (
	"context"
	"time"
)

// Role is a semantic purpose a column may serve, independent of its literal name.
type Role string

const (
	RoleCountry  Role = "country"
	RoleSales    Role = "sales"
	RoleProfit   Role = "profit"
	RoleCategory Role = "category"
	RoleProduct  Role = "product"
)

// Roles lists every role in display order.
var Roles = []Role{RoleCountry, RoleSales, RoleProfit, RoleCategory, RoleProduct}

// MetricRoles are the roles whose columns are normalized to numbers.
var MetricRoles = []Role{RoleSales, RoleProfit}

// FilterRoles are the roles exposed as sidebar filters.
var FilterRoles = []Role{RoleCategory, RoleCountry}

// ParseRole converts a string to a Role. Returns false for unknown roles.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// IsMetric reports whether the role is summed by the aggregator.
func (r Role) IsMetric() bool {
	return r == RoleSales || r == RoleProfit
}

// Candidates maps each role to its column name patterns in priority order.
type Candidates map[Role][]string

// DefaultCandidates are the column name patterns tried for each role.
func DefaultCandidates() Candidates {
	return Candidates{
		RoleCountry:  {"Country", "Region"},
		RoleSales:    {"Sales", "Revenue", "Amount"},
		RoleProfit:   {"Profit", "NetProfit"},
		RoleCategory: {"Category", "Product Category"},
		RoleProduct:  {"Product", "Product_Name", "Item"},
	}
}

// Selection maps a filter role to the set of allowed values.
// A missing or empty entry means no filtering on that role.
type Selection map[Role][]string

// GroupTotal is one entry of an aggregate summary.
type GroupTotal struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// Summary is a grouped, summed, ranked metric output, sorted descending by Value.
type Summary []GroupTotal

// Keys returns the group keys in order.
func (s Summary) Keys() []string {
	keys := make([]string, len(s))
	for i, g := range s {
		keys[i] = g.Key
	}
	return keys
}

// Values returns the summed values in order.
func (s Summary) Values() []float64 {
	values := make([]float64, len(s))
	for i, g := range s {
		values[i] = g.Value
	}
	return values
}

// GroupRow holds several summed metrics for one group key.
type GroupRow struct {
	Key    string           `json:"key"`
	Totals map[Role]float64 `json:"totals"`
}

// ParetoPoint is one step of a cumulative share curve.
type ParetoPoint struct {
	Key        string  `json:"key"`
	Value      float64 `json:"value"`
	Cumulative float64 `json:"cumulative"`
	Share      float64 `json:"share"` // cumulative percentage, 0-100
}

// KPIs are the summary cards shown on the overview page.
type KPIs struct {
	TotalProfit    float64 `json:"total_profit"`
	ProfitResolved bool    `json:"profit_resolved"`
	Countries      int     `json:"countries"`
	TopItems       Summary `json:"top_items,omitempty"`
	TopItemsBy     Role    `json:"top_items_by,omitempty"`
	TopItemsColumn string  `json:"top_items_column,omitempty"`
}

// Preset is a saved set of role overrides, matched against uploads by header.
type Preset struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Headers   []string        `json:"headers"`
	Overrides map[Role]string `json:"overrides"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PresetMatch pairs a preset with its header match score (0-1).
type PresetMatch struct {
	Preset     Preset  `json:"preset"`
	MatchScore float64 `json:"match_score"`
}

// LoadRecord describes one dataset load for the history view.
type LoadRecord struct {
	DatasetID string    `json:"dataset_id"`
	Source    string    `json:"source"`
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	Preset    string    `json:"preset,omitempty"`
	ClientIP  string    `json:"client_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// Store persists presets and load history.
type Store interface {
	SavePreset(ctx context.Context, p Preset) (Preset, error)
	ListPresets(ctx context.Context) ([]Preset, error)
	DeletePreset(ctx context.Context, id string) error
	RecordLoad(ctx context.Context, rec LoadRecord) error
	RecentLoads(ctx context.Context, limit int) ([]LoadRecord, error)
}
