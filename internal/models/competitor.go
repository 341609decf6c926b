package models

// Competitor is the immutable configuration for one entrant in a race.
// It is shared read-only across every simulated race.
type Competitor struct {
	Name      string  `json:"name" validate:"required"`
	BaseSpeed float64 `json:"base_speed" validate:"finite,gt=0"`
	SpeedStd  float64 `json:"speed_std" validate:"finite,gte=0"`
	CrashProb float64 `json:"crash_prob" validate:"finite,gte=0,lte=1"`

	// Pit stop and tyre model
	PitMean   float64 `json:"pit_mean" validate:"finite,gte=0"`
	PitStd    float64 `json:"pit_std" validate:"finite,gte=0"`
	PitLaps   []int   `json:"pit_laps"`
	TyreDecay float64 `json:"tyre_decay" validate:"finite,gte=0"`

	// Push laps trade extra pace for extra crash risk
	BoostLaps  []int   `json:"boost_laps"`
	BoostSpeed float64 `json:"boost_speed" validate:"finite"`
	BoostCrash float64 `json:"boost_crash" validate:"finite,gte=0,lte=1"`
}
