package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// PresetMatchThreshold is the minimum header match score for a preset to
// be applied to an upload automatically.
const PresetMatchThreshold = 0.7

var (
	// ErrPresetNotFound is returned when no preset has the given ID.
	ErrPresetNotFound = errors.New("preset not found")

	// ErrPresetExists is returned when a preset name is already taken.
	ErrPresetExists = errors.New("preset already exists")

	// ErrPresetIncomplete is returned when a preset lacks a name or headers.
	ErrPresetIncomplete = errors.New("preset incomplete")
)

// SavePreset stores a named set of role overrides for files with the given headers.
func (s *Service) SavePreset(ctx context.Context, name string, headers []string, overrides map[Role]string) (Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Preset{}, fmt.Errorf("%w: preset name is required", ErrPresetIncomplete)
	}
	if len(headers) == 0 {
		return Preset{}, fmt.Errorf("%w: preset headers are required", ErrPresetIncomplete)
	}
	for role := range overrides {
		if _, ok := ParseRole(string(role)); !ok {
			return Preset{}, fmt.Errorf("%w %q", ErrUnknownRole, role)
		}
	}

	now := s.now().UTC()
	p := Preset{
		ID:        uuid.NewString(),
		Name:      name,
		Headers:   headers,
		Overrides: overrides,
		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, err := s.store.SavePreset(ctx, p)
	if err != nil {
		return Preset{}, fmt.Errorf("save preset: %w", err)
	}
	return saved, nil
}

// ListPresets returns every stored preset.
func (s *Service) ListPresets(ctx context.Context) ([]Preset, error) {
	presets, err := s.store.ListPresets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	return presets, nil
}

// DeletePreset removes a preset.
func (s *Service) DeletePreset(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid preset ID: %w", err)
	}
	return s.store.DeletePreset(ctx, id)
}

// MatchPresets returns the presets whose headers match at least
// PresetMatchThreshold of the given headers, best first.
func (s *Service) MatchPresets(ctx context.Context, headers []string) ([]PresetMatch, error) {
	presets, err := s.ListPresets(ctx)
	if err != nil {
		return nil, err
	}
	return matchPresets(headers, presets), nil
}

func matchPresets(headers []string, presets []Preset) []PresetMatch {
	var matches []PresetMatch
	for _, p := range presets {
		score := matchHeaders(headers, p.Headers)
		if score >= PresetMatchThreshold {
			matches = append(matches, PresetMatch{Preset: p, MatchScore: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})
	return matches
}

// matchHeaders returns the fraction of preset headers present in headers,
// compared case-insensitively.
func matchHeaders(headers, presetHeaders []string) float64 {
	if len(presetHeaders) == 0 {
		return 0
	}

	set := make(map[string]bool, len(headers))
	for _, h := range headers {
		set[strings.ToLower(strings.TrimSpace(h))] = true
	}

	matched := 0
	for _, h := range presetHeaders {
		if set[strings.ToLower(strings.TrimSpace(h))] {
			matched++
		}
	}

	return float64(matched) / float64(len(presetHeaders))
}

// applicableOverrides drops overrides whose column is not in t.
func applicableOverrides(t *Table, overrides map[Role]string) map[Role]string {
	out := make(map[Role]string, len(overrides))
	for role, col := range overrides {
		if col == "" || t.HasColumn(col) {
			out[role] = col
		}
	}
	return out
}
