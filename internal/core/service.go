package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/bidash/internal/logging"
)

// DefaultDatasetID identifies the dataset loaded from the configured source paths.
const DefaultDatasetID = "default"

// ErrDatasetNotFound is returned for unknown or expired dataset IDs.
var ErrDatasetNotFound = errors.New("dataset not found")

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// SourcePaths are tried in order for the default dataset.
	SourcePaths []string

	// CacheTTL is how long the default dataset is reused, and how long an
	// uploaded dataset may sit idle before it is evicted.
	CacheTTL time.Duration

	// MaxDatasets caps the number of uploaded and derived datasets kept.
	MaxDatasets int

	MaxConcurrentUploads int
	MaxUploadWait        time.Duration

	// Candidates are the column name patterns per role. Nil uses DefaultCandidates.
	Candidates Candidates
}

// Service owns datasets and everything that outlives a single request:
// the default source, uploads, presets and load history.
type Service struct {
	store      Store
	limiter    *UploadLimiter
	cache      *datasetCache
	sources    []string
	candidates Candidates
	ttl        time.Duration
	now        func() time.Time

	defaultMu sync.Mutex
	def       *Dataset
}

// NewService creates a Service backed by store.
func NewService(store Store, cfg ServiceConfig) *Service {
	candidates := cfg.Candidates
	if candidates == nil {
		candidates = DefaultCandidates()
	}

	return &Service{
		store:      store,
		limiter:    NewUploadLimiter(cfg.MaxConcurrentUploads, cfg.MaxUploadWait),
		cache:      newDatasetCache(cfg.CacheTTL, cfg.MaxDatasets),
		sources:    cfg.SourcePaths,
		candidates: candidates,
		ttl:        cfg.CacheTTL,
		now:        time.Now,
	}
}

// Default returns the dataset loaded from the first usable source path.
// The loaded dataset is reused until CacheTTL has passed since the load.
// Returns an error wrapping ErrNoData when no source can be loaded.
func (s *Service) Default(ctx context.Context) (*Dataset, error) {
	s.defaultMu.Lock()
	defer s.defaultMu.Unlock()

	if s.def != nil && (s.ttl <= 0 || s.now().Sub(s.def.LoadedAt) < s.ttl) {
		return s.def, nil
	}

	start := time.Now()
	raw, source, err := LoadFirst(s.sources)
	if err != nil {
		return nil, err
	}

	ds, err := s.buildDataset(ctx, DefaultDatasetID, source, raw)
	if err != nil {
		return nil, err
	}
	s.def = ds

	logging.WithFields(ctx, "dataset_id", ds.ID, "source", source).Info("default dataset loaded",
		slog.Int("rows", raw.Len()),
		slog.Int("columns", len(raw.Columns)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	s.recordLoad(ctx, ds)
	return ds, nil
}

// Upload parses an uploaded CSV into a new dataset. The best matching
// preset, if any, supplies role overrides.
func (s *Service) Upload(ctx context.Context, filename string, r io.Reader) (*Dataset, error) {
	release, err := s.limiter.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	counter := NewCountingReader(r)
	raw, err := LoadCSV(counter)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	ds, err := s.buildDataset(ctx, uuid.NewString(), filename, raw)
	if err != nil {
		return nil, err
	}
	s.cacheDataset(ds)

	logging.WithFields(ctx, "dataset_id", ds.ID, "source", filename).Info("upload parsed",
		slog.Int("rows", raw.Len()),
		slog.Int("columns", len(raw.Columns)),
		slog.Int64("bytes", counter.BytesRead()),
		slog.String("preset", ds.Preset),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	s.recordLoad(ctx, ds)
	return ds, nil
}

// Dataset returns a dataset by ID. The empty ID and DefaultDatasetID
// select the default dataset.
func (s *Service) Dataset(ctx context.Context, id string) (*Dataset, error) {
	if id == "" || id == DefaultDatasetID {
		return s.Default(ctx)
	}
	ds, ok := s.cache.get(id, s.now())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return ds, nil
}

// ApplyOverrides derives a new dataset from id with some roles reassigned.
// Overrides are merged over those already applied to the dataset; an empty
// column unsets a role.
func (s *Service) ApplyOverrides(ctx context.Context, id string, overrides map[Role]string) (*Dataset, error) {
	base, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}

	merged := make(map[Role]string, len(base.Overrides)+len(overrides))
	for r, c := range base.Overrides {
		merged[r] = c
	}
	for r, c := range overrides {
		merged[r] = c
	}

	ds, err := NewDataset(uuid.NewString(), base.Source, base.Raw, s.candidates, merged)
	if err != nil {
		return nil, err
	}
	ds.LoadedAt = s.now()
	ds.Preset = base.Preset
	s.cacheDataset(ds)

	logging.WithFields(ctx, "dataset_id", ds.ID, "base_id", base.ID).Info("role overrides applied",
		slog.Any("mapping", ds.Mapping.Diagnostics()),
	)
	return ds, nil
}

// UploadStatus reports upload slot usage.
func (s *Service) UploadStatus() UploadLimiterStatus {
	return s.limiter.Status()
}

// WaitForUploads blocks until in-flight uploads finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// buildDataset resolves roles for raw, applying the best matching preset.
func (s *Service) buildDataset(ctx context.Context, id, source string, raw *Table) (*Dataset, error) {
	var preset *Preset
	presets, err := s.store.ListPresets(ctx)
	if err != nil {
		logging.FromContext(ctx).Warn("presets unavailable, resolving roles without them",
			slog.String("error", err.Error()),
		)
	} else if matches := matchPresets(raw.Columns, presets); len(matches) > 0 {
		preset = &matches[0].Preset
	}

	var overrides map[Role]string
	if preset != nil {
		overrides = applicableOverrides(raw, preset.Overrides)
	}

	ds, err := NewDataset(id, source, raw, s.candidates, overrides)
	if err != nil {
		return nil, err
	}
	ds.LoadedAt = s.now()
	if preset != nil {
		ds.Preset = preset.Name
	}
	return ds, nil
}

// cacheDataset caches ds and logs evictions caused by the size cap.
func (s *Service) cacheDataset(ds *Dataset) {
	if evicted := s.cache.put(ds, s.now()); len(evicted) > 0 {
		slog.Info("dataset cache full, evicted least recently used",
			"evicted", evicted,
			"max_datasets", s.cache.max,
		)
	}
}
