package simulation

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/pitwall/internal/models"
	"golang.org/x/sync/errgroup"
)

const podiumSize = 3

// ProgressFunc is notified every ProgressEvery completed trials
type ProgressFunc func(completed, total int)

// MonteCarloConfig configures a monte carlo run
type MonteCarloConfig struct {
	Iterations    int
	Seed          int64
	ProgressEvery int
	Progress      ProgressFunc
	Workers       int
	// Logger receives per-race traces at debug level
	Logger *logrus.Logger
}

// MonteCarloResult is the ranked summary of a monte carlo run
type MonteCarloResult struct {
	Iterations int                 `json:"iterations"`
	Seed       int64               `json:"seed"`
	Workers    int                 `json:"workers"`
	Circuit    models.Circuit      `json:"circuit"`
	Rows       []models.SummaryRow `json:"rows"`
	Duration   time.Duration       `json:"duration_ns"`
}

// Leader returns the top row, if any
func (m MonteCarloResult) Leader() (models.SummaryRow, bool) {
	if len(m.Rows) == 0 {
		return models.SummaryRow{}, false
	}
	return m.Rows[0], true
}

// ExportJSON serializes the result. Non-finite averages cannot be encoded.
func (m MonteCarloResult) ExportJSON() ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return data, nil
}

// RunMonteCarlo runs cfg.Iterations independent races and aggregates win, podium,
// DNF and finish time statistics. Invalid configuration fails before any race runs.
//
// With Workers <= 1 every race draws from a single stream seeded by cfg.Seed.
// With more workers each trial gets its own stream derived from the seed and its
// index, and trials are split into contiguous blocks merged in order, so the
// result does not depend on the worker count.
func RunMonteCarlo(ctx context.Context, competitors []models.Competitor, circuit models.Circuit, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if cfg.Iterations < 1 {
		return MonteCarloResult{}, fmt.Errorf("%w: got %d", models.ErrInvalidTrials, cfg.Iterations)
	}
	if err := ValidateField(competitors, circuit); err != nil {
		return MonteCarloResult{}, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > cfg.Iterations {
		workers = cfg.Iterations
	}

	start := time.Now()
	sim := NewRaceSimulator(competitors, circuit, cfg.Logger)
	progress := newProgressReporter(cfg.ProgressEvery, cfg.Iterations, cfg.Progress)

	var (
		totals *tally
		err    error
	)
	if workers == 1 {
		totals, err = runSequential(ctx, sim, cfg.Iterations, seed, progress)
	} else {
		totals, err = runParallel(ctx, sim, cfg.Iterations, seed, workers, progress)
	}
	if err != nil {
		return MonteCarloResult{}, err
	}

	return MonteCarloResult{
		Iterations: cfg.Iterations,
		Seed:       seed,
		Workers:    workers,
		Circuit:    circuit,
		Rows:       totals.summarize(competitors, cfg.Iterations),
		Duration:   time.Since(start),
	}, nil
}

func runSequential(ctx context.Context, sim *RaceSimulator, iterations int, seed int64, progress *progressReporter) (*tally, error) {
	rng := rand.New(rand.NewSource(seed))
	totals := newTally(sim.Competitors())
	for i := 0; i < iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		totals.record(sim.Run(rng))
		progress.tick()
	}
	return totals, nil
}

func runParallel(ctx context.Context, sim *RaceSimulator, iterations int, seed int64, workers int, progress *progressReporter) (*tally, error) {
	blocks := make([]*tally, workers)
	g, gCtx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		w := w
		from := w * iterations / workers
		to := (w + 1) * iterations / workers

		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed))
			block := newTally(sim.Competitors())
			for trial := from; trial < to; trial++ {
				if err := gCtx.Err(); err != nil {
					return err
				}
				rng.Seed(trialSeed(seed, trial))
				block.record(sim.Run(rng))
				progress.tick()
			}
			blocks[w] = block
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	totals := newTally(sim.Competitors())
	for _, block := range blocks {
		totals.merge(block)
	}
	return totals, nil
}

// trialSeed mixes the run seed with a trial index (splitmix64 finalizer)
func trialSeed(seed int64, trial int) int64 {
	z := uint64(seed) + uint64(trial+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return int64(z ^ (z >> 31))
}

type progressReporter struct {
	mu        sync.Mutex
	every     int
	total     int
	completed int
	notify    ProgressFunc
}

func newProgressReporter(every, total int, notify ProgressFunc) *progressReporter {
	return &progressReporter{every: every, total: total, notify: notify}
}

func (p *progressReporter) tick() {
	if p.every <= 0 || p.notify == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed++
	if p.completed%p.every == 0 {
		p.notify(p.completed, p.total)
	}
}
