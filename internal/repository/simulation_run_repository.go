package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yourusername/pitwall/internal/database"
	"github.com/yourusername/pitwall/internal/models"
)

const (
	errScanSimulationRun = "failed to scan simulation run: %w"

	selectSimulationRun = `
		SELECT id, fingerprint, iterations, seed, competitors, leader, duration_ms, summary, run_date, created_at
		FROM simulation_runs`
)

// PostgresSimulationRunRepository implements SimulationRunRepository for PostgreSQL
type PostgresSimulationRunRepository struct {
	db *database.DB
}

// NewPostgresSimulationRunRepository creates a new simulation run repository
func NewPostgresSimulationRunRepository(db *database.DB) SimulationRunRepository {
	return &PostgresSimulationRunRepository{db: db}
}

// Save inserts a run and its ranked rows in one transaction
func (r *PostgresSimulationRunRepository) Save(ctx context.Context, run *models.SimulationRun, rows []models.SummaryRow) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO simulation_runs (
				id, fingerprint, iterations, seed, competitors, leader, duration_ms, summary, run_date, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			run.ID, run.Fingerprint, run.Iterations, run.Seed, run.Competitors, run.Leader,
			run.DurationMs, run.Summary, run.RunDate, run.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save simulation run: %w", err)
		}

		batch := &pgx.Batch{}
		for rank, row := range rows {
			batch.Queue(`
				INSERT INTO simulation_summary_rows (
					run_id, rank, car, win_percent, podium_percent, dnf_percent, avg_finish_time
				) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				run.ID, rank+1, row.Car, row.WinPercent, row.PodiumPercent, row.DNFPercent, row.AvgFinishTime,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("failed to save summary rows: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a run by ID
func (r *PostgresSimulationRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.SimulationRun, error) {
	row := r.db.GetPool().QueryRow(ctx, selectSimulationRun+` WHERE id = $1`, id)
	return scanSimulationRun(row)
}

// GetLatestByFingerprint retrieves the newest run for a configuration fingerprint
func (r *PostgresSimulationRunRepository) GetLatestByFingerprint(ctx context.Context, fingerprint string) (*models.SimulationRun, error) {
	row := r.db.GetPool().QueryRow(ctx, selectSimulationRun+` WHERE fingerprint = $1 ORDER BY run_date DESC LIMIT 1`, fingerprint)
	return scanSimulationRun(row)
}

// GetLatest retrieves the newest runs
func (r *PostgresSimulationRunRepository) GetLatest(ctx context.Context, limit int) ([]*models.SimulationRun, error) {
	rows, err := r.db.GetPool().Query(ctx, selectSimulationRun+` ORDER BY run_date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest simulation runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SimulationRun
	for rows.Next() {
		run, err := scanSimulationRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanSimulationRun(row pgx.Row) (*models.SimulationRun, error) {
	run := &models.SimulationRun{}
	err := row.Scan(
		&run.ID, &run.Fingerprint, &run.Iterations, &run.Seed, &run.Competitors, &run.Leader,
		&run.DurationMs, &run.Summary, &run.RunDate, &run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(errScanSimulationRun, err)
	}
	return run, nil
}
