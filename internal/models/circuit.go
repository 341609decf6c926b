package models

// Circuit describes the race geometry shared by all competitors.
type Circuit struct {
	LapLength       float64 `json:"lap_length" validate:"finite,gt=0"`
	NLaps           int     `json:"n_laps" validate:"gte=1"`
	WeatherVariance float64 `json:"weather_variance" validate:"finite,gte=0"`
}

// Distance returns the full race distance
func (c Circuit) Distance() float64 {
	return c.LapLength * float64(c.NLaps)
}
