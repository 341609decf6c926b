package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yourusername/pitwall/internal/models"
)

// SimulationRunRepository defines the interface for persisted monte carlo summaries
type SimulationRunRepository interface {
	Save(ctx context.Context, run *models.SimulationRun, rows []models.SummaryRow) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SimulationRun, error)
	GetLatest(ctx context.Context, limit int) ([]*models.SimulationRun, error)
	GetLatestByFingerprint(ctx context.Context, fingerprint string) (*models.SimulationRun, error)
}
