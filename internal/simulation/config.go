package simulation

import (
	"fmt"

	"github.com/yourusername/pitwall/internal/config"
	"github.com/yourusername/pitwall/internal/models"
)

// RunSpec bundles everything one monte carlo run needs
type RunSpec struct {
	Competitors []models.Competitor
	Circuit     models.Circuit
	MonteCarlo  MonteCarloConfig
}

// FromConfig converts app config to a run spec
func FromConfig(cfg *config.Config) (RunSpec, error) {
	if cfg == nil {
		return RunSpec{}, fmt.Errorf("config is required")
	}

	competitors := make([]models.Competitor, len(cfg.Competitors))
	for i, c := range cfg.Competitors {
		competitors[i] = models.Competitor{
			Name:       c.Name,
			BaseSpeed:  c.BaseSpeed,
			SpeedStd:   c.SpeedStd,
			CrashProb:  c.CrashProb,
			PitMean:    c.PitMean,
			PitStd:     c.PitStd,
			PitLaps:    append([]int(nil), c.PitLaps...),
			TyreDecay:  c.TyreDecay,
			BoostLaps:  append([]int(nil), c.BoostLaps...),
			BoostSpeed: c.BoostSpeed,
			BoostCrash: c.BoostCrash,
		}
	}

	spec := RunSpec{
		Competitors: competitors,
		Circuit: models.Circuit{
			LapLength:       cfg.Circuit.LapLength,
			NLaps:           cfg.Circuit.Laps,
			WeatherVariance: cfg.Circuit.WeatherVariance,
		},
		MonteCarlo: MonteCarloConfig{
			Iterations:    cfg.Simulation.Iterations,
			Seed:          cfg.Simulation.Seed,
			ProgressEvery: cfg.Simulation.ProgressEvery,
			Workers:       cfg.Simulation.Workers,
		},
	}

	return spec, spec.Validate()
}

// Validate validates run parameters
func (r RunSpec) Validate() error {
	if r.MonteCarlo.Iterations < 1 {
		return fmt.Errorf("%w: got %d", models.ErrInvalidTrials, r.MonteCarlo.Iterations)
	}
	return ValidateField(r.Competitors, r.Circuit)
}
