package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/pitwall/internal/config"
	"github.com/yourusername/pitwall/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Simulation: config.SimulationConfig{Iterations: 200, Seed: 7, ProgressEvery: 50, Workers: 2},
		Circuit:    config.CircuitConfig{LapLength: 4000, Laps: 30, WeatherVariance: 0.2},
		Competitors: []config.CompetitorConfig{
			{Name: "Rocket", BaseSpeed: 85, SpeedStd: 2.5, CrashProb: 0.01, PitMean: 18, PitStd: 2, PitLaps: []int{20}, TyreDecay: 0.003, BoostLaps: []int{5}, BoostSpeed: 4, BoostCrash: 0.01},
			{Name: "Eco", BaseSpeed: 78, SpeedStd: 1.5, CrashProb: 0.001},
		},
	}
}

func TestFromConfig(t *testing.T) {
	cfg := testConfig()

	spec, err := FromConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, models.Circuit{LapLength: 4000, NLaps: 30, WeatherVariance: 0.2}, spec.Circuit)
	assert.Equal(t, 200, spec.MonteCarlo.Iterations)
	assert.Equal(t, int64(7), spec.MonteCarlo.Seed)
	assert.Equal(t, 50, spec.MonteCarlo.ProgressEvery)
	assert.Equal(t, 2, spec.MonteCarlo.Workers)
	require.Len(t, spec.Competitors, 2)
	assert.Equal(t, "Rocket", spec.Competitors[0].Name)
	assert.Equal(t, []int{20}, spec.Competitors[0].PitLaps)
	assert.Equal(t, 0.01, spec.Competitors[0].BoostCrash)

	// competitor lap lists are copied
	cfg.Competitors[0].PitLaps[0] = 99
	assert.Equal(t, []int{20}, spec.Competitors[0].PitLaps)
}

func TestFromConfigInvalid(t *testing.T) {
	_, err := FromConfig(nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.Simulation.Iterations = 0
	_, err = FromConfig(cfg)
	assert.ErrorIs(t, err, models.ErrInvalidTrials)

	cfg = testConfig()
	cfg.Competitors[1].Name = "Rocket"
	_, err = FromConfig(cfg)
	assert.ErrorIs(t, err, models.ErrDuplicateCompetitor)

	cfg = testConfig()
	cfg.Circuit.Laps = 0
	_, err = FromConfig(cfg)
	assert.ErrorIs(t, err, models.ErrInvalidCircuit)
}
