package core

import (
	"context"
	"log/slog"

	"github.com/JonMunkholm/bidash/internal/logging"
)

// DefaultHistoryLimit is the number of loads returned when no limit is given.
const DefaultHistoryLimit = 20

// recordLoad appends ds to the load history. Failures are logged and
// otherwise ignored so that a history outage never blocks the dashboard.
func (s *Service) recordLoad(ctx context.Context, ds *Dataset) {
	ip, ua := ClientFromContext(ctx)

	rec := LoadRecord{
		DatasetID: ds.ID,
		Source:    ds.Source,
		Rows:      ds.Raw.Len(),
		Columns:   len(ds.Raw.Columns),
		Preset:    ds.Preset,
		ClientIP:  ip,
		UserAgent: ua,
		LoadedAt:  ds.LoadedAt.UTC(),
	}

	if err := s.store.RecordLoad(ctx, rec); err != nil {
		logging.FromContext(ctx).Warn("failed to record dataset load",
			slog.String("dataset_id", ds.ID),
			slog.String("error", err.Error()),
		)
	}
}

// RecentLoads returns the most recent dataset loads, newest first.
func (s *Service) RecentLoads(ctx context.Context, limit int) ([]LoadRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.RecentLoads(ctx, limit)
}
