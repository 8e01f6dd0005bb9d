package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/bidash/internal/core"
)

// filterQueryKeys are the query parameters that describe a selection.
var filterQueryKeys = []string{"dataset", "filtered", string(core.RoleCategory), string(core.RoleCountry)}

// parseSelection reads the filter selection from the query. Each filter
// role takes repeated parameters named after the role. Values are kept
// exactly as given so they match the raw cell text; only empty values are
// ignored, so a cleared filter selects everything.
func parseSelection(r *http.Request) core.Selection {
	q := r.URL.Query()
	sel := core.Selection{}
	for _, role := range core.FilterRoles {
		var values []string
		for _, v := range q[string(role)] {
			if v != "" {
				values = append(values, v)
			}
		}
		if len(values) > 0 {
			sel[role] = values
		}
	}
	return sel
}

// filterSubmitted reports whether the sidebar filter form produced the
// request, as opposed to a first visit where every value shows selected.
func filterSubmitted(r *http.Request) bool {
	return r.URL.Query().Get("filtered") == "1"
}

// datasetParam returns the dataset ID from the URL path or query.
func datasetParam(r *http.Request) string {
	if id := chi.URLParam(r, "dataset"); id != "" {
		return id
	}
	return r.URL.Query().Get("dataset")
}

// selectionQuery rebuilds the query string for links that keep the
// current dataset and filters.
func selectionQuery(datasetID string, r *http.Request) string {
	q := url.Values{}
	src := r.URL.Query()
	for _, k := range filterQueryKeys {
		for _, v := range src[k] {
			q.Add(k, v)
		}
	}
	q.Set("dataset", datasetID)
	return q.Encode()
}

// parseIntParam parses a non-negative integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return 0, invalidRequest("%s must be a non-negative integer", name)
	}
	return i, nil
}

// parseRoleParam parses a role name query parameter with a default value.
func parseRoleParam(r *http.Request, name string, defaultVal core.Role) (core.Role, error) {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal, nil
	}
	role, ok := core.ParseRole(strings.ToLower(val))
	if !ok {
		return "", fmt.Errorf("%w %q for %s", core.ErrUnknownRole, val, name)
	}
	return role, nil
}
