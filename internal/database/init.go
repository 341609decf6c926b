package database

import (
	"context"
	"fmt"

	"github.com/yourusername/pitwall/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS simulation_runs (
	id           UUID PRIMARY KEY,
	fingerprint  TEXT NOT NULL,
	iterations   INTEGER NOT NULL,
	seed         BIGINT NOT NULL,
	competitors  INTEGER NOT NULL,
	leader       TEXT NOT NULL DEFAULT '',
	duration_ms  BIGINT NOT NULL,
	summary      JSONB NOT NULL,
	run_date     TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS simulation_runs_fingerprint_idx ON simulation_runs (fingerprint, run_date DESC);

CREATE TABLE IF NOT EXISTS simulation_summary_rows (
	run_id          UUID NOT NULL REFERENCES simulation_runs (id) ON DELETE CASCADE,
	rank            INTEGER NOT NULL,
	car             TEXT NOT NULL,
	win_percent     DOUBLE PRECISION NOT NULL,
	podium_percent  DOUBLE PRECISION NOT NULL,
	dnf_percent     DOUBLE PRECISION NOT NULL,
	avg_finish_time DOUBLE PRECISION,
	PRIMARY KEY (run_id, rank)
);
`

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}
