// Package store persists role presets and the dataset load history.
//
// Two implementations satisfy core.Store: Memory, used when no database is
// configured, and Postgres, backed by a pgx connection pool.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/bidash/internal/core"
)

// DefaultHistorySize bounds the number of load records Memory keeps.
const DefaultHistorySize = 500

// Memory is a mutex-guarded in-memory store. Its contents are lost on restart.
type Memory struct {
	mu      sync.RWMutex
	presets map[string]core.Preset
	loads   []core.LoadRecord
	maxLoad int
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		presets: make(map[string]core.Preset),
		maxLoad: DefaultHistorySize,
	}
}

// SavePreset inserts p, or replaces the preset with the same ID.
// Names are unique, compared case-insensitively.
func (m *Memory) SavePreset(_ context.Context, p core.Preset) (core.Preset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, existing := range m.presets {
		if id != p.ID && strings.EqualFold(existing.Name, p.Name) {
			return core.Preset{}, core.ErrPresetExists
		}
	}

	if old, ok := m.presets[p.ID]; ok {
		p.CreatedAt = old.CreatedAt
	}
	m.presets[p.ID] = clonePreset(p)
	return clonePreset(p), nil
}

// ListPresets returns all presets ordered by name.
func (m *Memory) ListPresets(context.Context) ([]core.Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.Preset, 0, len(m.presets))
	for _, p := range m.presets {
		out = append(out, clonePreset(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// DeletePreset removes a preset by ID.
func (m *Memory) DeletePreset(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.presets[id]; !ok {
		return core.ErrPresetNotFound
	}
	delete(m.presets, id)
	return nil
}

// RecordLoad appends a load record, dropping the oldest beyond the history size.
func (m *Memory) RecordLoad(_ context.Context, rec core.LoadRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loads = append(m.loads, rec)
	if over := len(m.loads) - m.maxLoad; over > 0 {
		m.loads = append([]core.LoadRecord(nil), m.loads[over:]...)
	}
	return nil
}

// RecentLoads returns up to limit records, newest first.
func (m *Memory) RecentLoads(_ context.Context, limit int) ([]core.LoadRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.LoadRecord, 0, min(limit, len(m.loads)))
	for i := len(m.loads) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.loads[i])
	}
	return out, nil
}

func clonePreset(p core.Preset) core.Preset {
	p.Headers = append([]string(nil), p.Headers...)
	if p.Overrides != nil {
		o := make(map[core.Role]string, len(p.Overrides))
		for r, c := range p.Overrides {
			o[r] = c
		}
		p.Overrides = o
	}
	return p
}
