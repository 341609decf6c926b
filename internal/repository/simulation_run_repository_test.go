package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/pitwall/internal/database"
	"github.com/yourusername/pitwall/internal/models"
)

func TestNewRepositoriesRequiresDB(t *testing.T) {
	_, err := NewRepositories(nil)
	assert.Error(t, err)
}

func TestSimulationRunRepository(t *testing.T) {
	db := database.SetupTestDB(t)
	defer database.TeardownTestDB(t, db)

	repos, err := NewRepositories(db)
	require.NoError(t, err)
	repo := repos.SimulationRun

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	avg := 2000.0
	rows := []models.SummaryRow{
		{Car: "A", WinPercent: 100, PodiumPercent: 100, AvgFinishTime: &avg},
		{Car: "B", DNFPercent: 100},
	}
	summary, err := json.Marshal(rows)
	require.NoError(t, err)

	now := time.Now().UTC().Truncate(time.Millisecond)
	older := &models.SimulationRun{
		ID: uuid.New(), Fingerprint: "fp", Iterations: 10, Seed: 42, Competitors: 2,
		Leader: "A", DurationMs: 5, Summary: summary, RunDate: now.Add(-time.Hour), CreatedAt: now,
	}
	newer := &models.SimulationRun{
		ID: uuid.New(), Fingerprint: "fp", Iterations: 20, Seed: 42, Competitors: 2,
		Leader: "A", DurationMs: 7, Summary: summary, RunDate: now, CreatedAt: now,
	}
	require.NoError(t, repo.Save(ctx, older, rows))
	require.NoError(t, repo.Save(ctx, newer, rows))

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, older.Iterations, got.Iterations)
	assert.Equal(t, "A", got.Leader)
	assert.JSONEq(t, string(summary), string(got.Summary))

	latest, err := repo.GetLatestByFingerprint(ctx, "fp")
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)

	runs, err := repo.GetLatest(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, newer.ID, runs[0].ID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = repo.GetLatestByFingerprint(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
