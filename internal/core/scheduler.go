package core

// scheduler.go runs background maintenance for the dataset cache.
//
// The sweeper evicts uploaded datasets that have sat idle longer than the
// cache TTL, so memory held by abandoned uploads is returned. It is
// long-running and context-aware for graceful shutdown.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultSweepInterval is used when StartSweeper is given a non-positive interval.
const DefaultSweepInterval = time.Minute

// StartSweeper periodically evicts idle datasets until ctx is cancelled.
// Call it in its own goroutine.
func (s *Service) StartSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	slog.Info("dataset sweeper started",
		"interval", interval,
		"ttl", s.ttl,
		"max_datasets", s.cache.max,
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("dataset sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Sweep evicts idle datasets once and returns how many were removed.
func (s *Service) Sweep() int {
	start := time.Now()
	evicted := s.cache.sweep(s.now())

	if len(evicted) > 0 {
		slog.Info("evicted idle datasets",
			"count", len(evicted),
			"remaining", s.cache.len(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	} else {
		slog.Debug("dataset sweep found nothing to evict", "cached", s.cache.len())
	}

	return len(evicted)
}
