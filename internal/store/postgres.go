package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/bidash/internal/core"
)

// uniqueViolation is the Postgres SQLSTATE for unique constraint failures.
const uniqueViolation = "23505"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS role_presets (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL,
	headers    JSONB NOT NULL DEFAULT '[]',
	overrides  JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS role_presets_name_unique ON role_presets (lower(name));

CREATE TABLE IF NOT EXISTS dataset_loads (
	id           BIGSERIAL PRIMARY KEY,
	dataset_id   TEXT NOT NULL,
	source       TEXT NOT NULL,
	row_count    INTEGER NOT NULL,
	column_count INTEGER NOT NULL,
	preset       TEXT NOT NULL DEFAULT '',
	client_ip    TEXT NOT NULL DEFAULT '',
	user_agent   TEXT NOT NULL DEFAULT '',
	loaded_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS dataset_loads_loaded_at_idx ON dataset_loads (loaded_at DESC);
`

// Postgres stores presets and load history in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool. Call EnsureSchema before first use.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the store's tables if they do not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SavePreset upserts p by ID.
func (p *Postgres) SavePreset(ctx context.Context, preset core.Preset) (core.Preset, error) {
	headers, err := json.Marshal(preset.Headers)
	if err != nil {
		return core.Preset{}, fmt.Errorf("marshal headers: %w", err)
	}
	overrides, err := json.Marshal(preset.Overrides)
	if err != nil {
		return core.Preset{}, fmt.Errorf("marshal overrides: %w", err)
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO role_presets (id, name, headers, overrides, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
		    headers = EXCLUDED.headers,
		    overrides = EXCLUDED.overrides,
		    updated_at = EXCLUDED.updated_at
		RETURNING id::text, name, headers, overrides, created_at, updated_at`,
		preset.ID, preset.Name, headers, overrides, preset.CreatedAt, preset.UpdatedAt,
	)

	saved, err := scanPreset(row)
	if err != nil {
		return core.Preset{}, mapPgError(err)
	}
	return saved, nil
}

// ListPresets returns all presets ordered by name.
func (p *Postgres) ListPresets(ctx context.Context) ([]core.Preset, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id::text, name, headers, overrides, created_at, updated_at
		FROM role_presets
		ORDER BY name`)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var out []core.Preset
	for rows.Next() {
		preset, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, preset)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}
	return out, nil
}

// DeletePreset removes a preset by ID.
func (p *Postgres) DeletePreset(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM role_presets WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrPresetNotFound
	}
	return nil
}

// RecordLoad inserts a load history record.
func (p *Postgres) RecordLoad(ctx context.Context, rec core.LoadRecord) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO dataset_loads (dataset_id, source, row_count, column_count, preset, client_ip, user_agent, loaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.DatasetID, rec.Source, rec.Rows, rec.Columns, rec.Preset, rec.ClientIP, rec.UserAgent, rec.LoadedAt,
	)
	if err != nil {
		return fmt.Errorf("record load: %w", mapPgError(err))
	}
	return nil
}

// RecentLoads returns up to limit records, newest first.
func (p *Postgres) RecentLoads(ctx context.Context, limit int) ([]core.LoadRecord, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT dataset_id, source, row_count, column_count, preset, client_ip, user_agent, loaded_at
		FROM dataset_loads
		ORDER BY loaded_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, mapPgError(err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.LoadRecord, error) {
		var rec core.LoadRecord
		err := row.Scan(&rec.DatasetID, &rec.Source, &rec.Rows, &rec.Columns,
			&rec.Preset, &rec.ClientIP, &rec.UserAgent, &rec.LoadedAt)
		return rec, err
	})
	if err != nil {
		return nil, mapPgError(err)
	}
	return out, nil
}

// scanPreset reads one role_presets row.
func scanPreset(row pgx.Row) (core.Preset, error) {
	var (
		preset    core.Preset
		headers   []byte
		overrides []byte
	)
	if err := row.Scan(&preset.ID, &preset.Name, &headers, &overrides, &preset.CreatedAt, &preset.UpdatedAt); err != nil {
		return core.Preset{}, err
	}
	if err := decodePresetJSON(headers, overrides, &preset); err != nil {
		return core.Preset{}, err
	}
	return preset, nil
}

// decodePresetJSON fills the JSONB columns of a preset.
func decodePresetJSON(headers, overrides []byte, preset *core.Preset) error {
	if err := json.Unmarshal(headers, &preset.Headers); err != nil {
		return fmt.Errorf("unmarshal headers: %w", err)
	}
	if len(overrides) > 0 && string(overrides) != "null" {
		if err := json.Unmarshal(overrides, &preset.Overrides); err != nil {
			return fmt.Errorf("unmarshal overrides: %w", err)
		}
	}
	return nil
}

// mapPgError translates driver errors into core sentinels where one applies.
func mapPgError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrPresetNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", core.ErrPresetExists, pgErr.ConstraintName)
	}
	return err
}
