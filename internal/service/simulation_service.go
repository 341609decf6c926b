package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/pitwall/internal/logger"
	"github.com/yourusername/pitwall/internal/metrics"
	"github.com/yourusername/pitwall/internal/models"
	"github.com/yourusername/pitwall/internal/repository"
	"github.com/yourusername/pitwall/internal/simulation"
)

// RunResult is a completed monte carlo run as seen by callers of the service
type RunResult struct {
	RunID       uuid.UUID                   `json:"run_id"`
	Fingerprint string                      `json:"fingerprint"`
	Cached      bool                        `json:"cached"`
	CompletedAt time.Time                   `json:"completed_at"`
	Result      simulation.MonteCarloResult `json:"result"`
}

// RunCompletedEvent is the event type published after every run
const RunCompletedEvent = "run.completed"

// Notifier receives run events, e.g. a webhook or a websocket feed
type Notifier interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// SimulationService runs monte carlo simulations, caching seeded runs and
// persisting summaries when a repository is configured.
type SimulationService struct {
	repo      repository.SimulationRunRepository
	cache     *ResultCache
	logger    *logrus.Logger
	simLogger *logger.SimulationLogger
	notifiers []Notifier

	mu     sync.RWMutex
	latest *RunResult
}

// NewSimulationService creates a new simulation service. repo and cache may be nil.
func NewSimulationService(repo repository.SimulationRunRepository, resultCache *ResultCache, log *logrus.Logger) *SimulationService {
	if log == nil {
		log = logrus.New()
	}
	return &SimulationService{
		repo:      repo,
		cache:     resultCache,
		logger:    log,
		simLogger: logger.NewSimulationLogger(log),
	}
}

// AddNotifier registers n for run events. Not safe to call concurrently with Run.
func (s *SimulationService) AddNotifier(n Notifier) {
	s.notifiers = append(s.notifiers, n)
}

// Run executes spec and returns the ranked summary
func (s *SimulationService) Run(ctx context.Context, spec simulation.RunSpec) (*RunResult, error) {
	runID := uuid.New()
	if err := spec.Validate(); err != nil {
		s.simLogger.LogRunFailed(runID.String(), err)
		metrics.RecordSimulationRun("failure")
		return nil, err
	}

	fingerprint, err := Fingerprint(spec)
	if err != nil {
		return nil, err
	}

	// Unseeded runs are not reproducible and never cached
	cacheable := s.cache != nil && spec.MonteCarlo.Seed != 0
	if cacheable {
		if cached, ok := s.cache.Get(fingerprint); ok {
			hit := *cached
			hit.Cached = true
			metrics.RecordSimulationRun("cached")
			s.publish(&hit)
			s.notify(ctx, &hit)
			s.logCompleted(&hit)
			return &hit, nil
		}
	}

	mcConfig := spec.MonteCarlo
	if mcConfig.Progress == nil && mcConfig.ProgressEvery > 0 {
		mcConfig.Progress = func(completed, total int) {
			s.simLogger.LogProgress(runID.String(), completed, total)
		}
	}
	s.simLogger.LogRunStarted(runID.String(), len(spec.Competitors), spec.Circuit.NLaps, mcConfig.Iterations, mcConfig.Workers, mcConfig.Seed)

	result, err := simulation.RunMonteCarlo(ctx, spec.Competitors, spec.Circuit, mcConfig)
	if err != nil {
		s.simLogger.LogRunFailed(runID.String(), err)
		metrics.RecordSimulationRun("failure")
		return nil, fmt.Errorf("monte carlo run failed: %w", err)
	}

	run := &RunResult{
		RunID:       runID,
		Fingerprint: fingerprint,
		CompletedAt: time.Now().UTC(),
		Result:      result,
	}

	metrics.RecordSimulationRun("success")
	metrics.RecordTrials(result.Iterations)
	metrics.RecordSimulationDuration(result.Duration.Seconds())
	metrics.UpdateSummary(result.Rows)

	if cacheable {
		s.cache.Set(fingerprint, run)
	}
	s.persist(ctx, run)
	s.publish(run)
	s.notify(ctx, run)
	s.logCompleted(run)

	return run, nil
}

// Latest returns the most recent run, if any
func (s *SimulationService) Latest() (*RunResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

func (s *SimulationService) publish(run *RunResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = run
}

// notify delivers the run to every notifier; failures are logged
func (s *SimulationService) notify(ctx context.Context, run *RunResult) {
	for _, n := range s.notifiers {
		if err := n.Publish(ctx, RunCompletedEvent, run); err != nil {
			s.logger.WithError(err).WithField("run_id", run.RunID).Warn("Failed to publish run event")
		}
	}
}

// persist stores the summary. Storage failures are logged, not returned:
// the computed table is still valid for the caller.
func (s *SimulationService) persist(ctx context.Context, run *RunResult) {
	if s.repo == nil {
		return
	}
	summary, err := json.Marshal(run.Result.Rows)
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode simulation summary")
		return
	}

	leader := ""
	if row, ok := run.Result.Leader(); ok {
		leader = row.Car
	}
	record := &models.SimulationRun{
		ID:          run.RunID,
		Fingerprint: run.Fingerprint,
		Iterations:  run.Result.Iterations,
		Seed:        run.Result.Seed,
		Competitors: len(run.Result.Rows),
		Leader:      leader,
		DurationMs:  run.Result.Duration.Milliseconds(),
		Summary:     summary,
		RunDate:     run.CompletedAt,
		CreatedAt:   run.CompletedAt,
	}
	if err := s.repo.Save(ctx, record, run.Result.Rows); err != nil {
		s.logger.WithError(err).WithField("run_id", run.RunID).Error("Failed to persist simulation summary")
		return
	}
	s.simLogger.LogRunPersisted(run.RunID.String(), run.Fingerprint, len(run.Result.Rows))
}

func (s *SimulationService) logCompleted(run *RunResult) {
	leader, winPercent := "", 0.0
	if row, ok := run.Result.Leader(); ok {
		leader, winPercent = row.Car, row.WinPercent
	}
	s.simLogger.LogRunCompleted(run.RunID.String(), run.Result.Iterations, leader, winPercent, run.Result.Duration, run.Cached)
}

type fingerprintInput struct {
	Competitors []models.Competitor `json:"competitors"`
	Circuit     models.Circuit      `json:"circuit"`
	Iterations  int                 `json:"iterations"`
	Seed        int64               `json:"seed"`
	Parallel    bool                `json:"parallel"`
}

// Fingerprint identifies the inputs that determine a seeded run's result.
// Sequential and parallel runs draw differently, so the mode is part of it.
func Fingerprint(spec simulation.RunSpec) (string, error) {
	data, err := json.Marshal(fingerprintInput{
		Competitors: spec.Competitors,
		Circuit:     spec.Circuit,
		Iterations:  spec.MonteCarlo.Iterations,
		Seed:        spec.MonteCarlo.Seed,
		Parallel:    spec.MonteCarlo.Workers > 1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to fingerprint run: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
