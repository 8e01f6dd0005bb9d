package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolvedRole is returned when a feature needs a role that no column serves.
	ErrUnresolvedRole = errors.New("unresolved role")

	// ErrColumnNotFound is returned when an override names a column the table lacks.
	ErrColumnNotFound = errors.New("column not found")

	// ErrUnknownRole is returned for a role name outside Roles.
	ErrUnknownRole = errors.New("unknown role")
)

// RoleMapping records which column, if any, serves each role.
// The zero value has every role unresolved.
type RoleMapping struct {
	columns map[Role]string
}

// ResolveColumn picks the column for one role from the table header.
//
// The first pass looks for a case-insensitive exact match, trying each
// candidate in priority order against every column in header order. Only
// when that finds nothing does a second pass accept a column whose name
// contains a candidate as a case-insensitive substring, in the same order.
func ResolveColumn(columns []string, candidates []string) (string, bool) {
	for _, cand := range candidates {
		for _, col := range columns {
			if strings.EqualFold(cand, col) {
				return col, true
			}
		}
	}

	for _, cand := range candidates {
		needle := strings.ToLower(cand)
		for _, col := range columns {
			if strings.Contains(strings.ToLower(col), needle) {
				return col, true
			}
		}
	}

	return "", false
}

// ResolveRoles resolves every role in c against the header.
func ResolveRoles(columns []string, c Candidates) RoleMapping {
	m := RoleMapping{columns: make(map[Role]string, len(Roles))}
	for _, role := range Roles {
		if col, ok := ResolveColumn(columns, c[role]); ok {
			m.columns[role] = col
		}
	}
	return m
}

// Column returns the column serving role.
func (m RoleMapping) Column(role Role) (string, bool) {
	col, ok := m.columns[role]
	return col, ok
}

// Resolved reports whether every given role has a column.
func (m RoleMapping) Resolved(roles ...Role) bool {
	for _, r := range roles {
		if _, ok := m.columns[r]; !ok {
			return false
		}
	}
	return true
}

// Columns returns a copy of the role to column assignments.
func (m RoleMapping) Columns() map[Role]string {
	out := make(map[Role]string, len(m.columns))
	for r, c := range m.columns {
		out[r] = c
	}
	return out
}

// Diagnostics returns the mapping keyed "<role>_col", with nil for
// unresolved roles so it renders as JSON null.
func (m RoleMapping) Diagnostics() map[string]any {
	out := make(map[string]any, len(Roles))
	for _, r := range Roles {
		key := string(r) + "_col"
		if col, ok := m.columns[r]; ok {
			out[key] = col
		} else {
			out[key] = nil
		}
	}
	return out
}

// WithOverrides returns a copy of m with the given roles reassigned.
// An empty column unsets the role. Every named column must exist in t.
func (m RoleMapping) WithOverrides(t *Table, overrides map[Role]string) (RoleMapping, error) {
	out := RoleMapping{columns: m.Columns()}

	for role, col := range overrides {
		if _, ok := ParseRole(string(role)); !ok {
			return RoleMapping{}, fmt.Errorf("%w %q", ErrUnknownRole, role)
		}
		if col == "" {
			delete(out.columns, role)
			continue
		}
		if !t.HasColumn(col) {
			return RoleMapping{}, fmt.Errorf("%w: %q for role %s", ErrColumnNotFound, col, role)
		}
		out.columns[role] = col
	}

	return out, nil
}
