package simulation

import (
	"math"
	"math/rand"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/pitwall/internal/models"
)

// MinLapSpeed is the floor applied to a sampled lap speed so lap times stay finite
const MinLapSpeed = 1e-3

type entrant struct {
	models.Competitor
	pits   LapSet
	boosts LapSet
}

// RaceSimulator simulates single stochastic races for a fixed field and circuit.
// It holds no per-race state and can be shared by concurrent workers as long as
// each worker passes its own random source.
type RaceSimulator struct {
	entrants []entrant
	circuit  models.Circuit
	logger   *logrus.Logger
}

// NewRaceSimulator prepares lap lookups for every competitor. A non-nil logger
// receives one debug line per competitor per race.
func NewRaceSimulator(competitors []models.Competitor, circuit models.Circuit, logger *logrus.Logger) *RaceSimulator {
	entrants := make([]entrant, len(competitors))
	for i, c := range competitors {
		entrants[i] = entrant{
			Competitor: c,
			pits:       NewLapSet(c.PitLaps, circuit.NLaps),
			boosts:     NewLapSet(c.BoostLaps, circuit.NLaps),
		}
	}
	return &RaceSimulator{entrants: entrants, circuit: circuit, logger: logger}
}

// Competitors returns the number of entrants
func (s *RaceSimulator) Competitors() int {
	return len(s.entrants)
}

// Run simulates one race and returns outcomes in input order.
// Draws are consumed competitor by competitor, lap by lap: crash, speed,
// weather, then pit duration on pit laps.
func (s *RaceSimulator) Run(rng *rand.Rand) []models.RaceOutcome {
	outcomes := make([]models.RaceOutcome, len(s.entrants))
	for i := range s.entrants {
		outcomes[i] = s.runEntrant(rng, &s.entrants[i])
	}
	return outcomes
}

func (s *RaceSimulator) runEntrant(rng *rand.Rand, e *entrant) models.RaceOutcome {
	totalTime := 0.0
	lastPitLap := 0

	for lap := 1; lap <= s.circuit.NLaps; lap++ {
		boosted := e.boosts.Contains(lap)

		crashProb := e.CrashProb
		if boosted {
			crashProb += e.BoostCrash
		}
		if rng.Float64() < crashProb {
			outcome := models.RaceOutcome{Name: e.Name, Status: models.RaceStatusDNF, LapsCompleted: lap}
			s.trace(outcome, totalTime)
			return outcome
		}

		speed := lapSpeed(rng, e, lap, lastPitLap, boosted, s.circuit.WeatherVariance)
		totalTime += s.circuit.LapLength / speed

		if e.pits.Contains(lap) {
			totalTime += pitStopTime(rng, e.PitMean, e.PitStd)
			lastPitLap = lap
		}
	}

	finish := totalTime
	outcome := models.RaceOutcome{
		Name:          e.Name,
		Status:        models.RaceStatusFinished,
		LapsCompleted: s.circuit.NLaps,
		TotalTime:     &finish,
	}
	s.trace(outcome, totalTime)
	return outcome
}

func (s *RaceSimulator) trace(outcome models.RaceOutcome, elapsed float64) {
	if s.logger == nil || !s.logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"car":    outcome.Name,
		"status": outcome.StatusLabel(),
		"laps":   outcome.LapsCompleted,
		"time":   elapsed,
	}).Debug("Race outcome")
}

// lapSpeed samples the effective speed for one lap, floored at MinLapSpeed
func lapSpeed(rng *rand.Rand, e *entrant, lap, lastPitLap int, boosted bool, weatherStd float64) float64 {
	tyrePenalty := TyrePenalty(e.BaseSpeed, e.TyreDecay, LapsSincePit(lap, lastPitLap))
	speed := gaussian(rng, e.BaseSpeed, e.SpeedStd) - tyrePenalty
	if boosted {
		speed += e.BoostSpeed
	}
	// each competitor gets an independent weather sample with the shared variance
	speed += gaussian(rng, 0, weatherStd)
	return math.Max(speed, MinLapSpeed)
}

// LapsSincePit returns the laps of tyre wear before lap. It is 0 on the lap
// right after a stop (and on lap 1, when lastPitLap is 0).
func LapsSincePit(lap, lastPitLap int) int {
	return lap - lastPitLap - 1
}

// TyrePenalty is the speed lost to tyre wear. It grows without bound.
func TyrePenalty(baseSpeed, tyreDecay float64, lapsSincePit int) float64 {
	return baseSpeed * tyreDecay * float64(lapsSincePit)
}

func pitStopTime(rng *rand.Rand, mean, std float64) float64 {
	return math.Max(gaussian(rng, mean, std), 0)
}

func gaussian(rng *rand.Rand, mean, std float64) float64 {
	return rng.NormFloat64()*std + mean
}

// SimulateRace runs a single race and returns outcomes keyed by competitor name
func SimulateRace(rng *rand.Rand, competitors []models.Competitor, circuit models.Circuit) map[string]models.RaceOutcome {
	outcomes := NewRaceSimulator(competitors, circuit, nil).Run(rng)
	results := make(map[string]models.RaceOutcome, len(outcomes))
	for _, outcome := range outcomes {
		results[outcome.Name] = outcome
	}
	return results
}
