package models

import "fmt"

// RaceStatus is the terminal state of a competitor in a single race
type RaceStatus string

const (
	RaceStatusFinished RaceStatus = "finished"
	RaceStatusDNF      RaceStatus = "dnf"
)

// RaceOutcome is the result of one competitor in one simulated race
type RaceOutcome struct {
	Name          string     `json:"name"`
	Status        RaceStatus `json:"status"`
	LapsCompleted int        `json:"laps"`
	TotalTime     *float64   `json:"time,omitempty"`
}

// IsFinished reports whether the competitor completed every lap
func (o RaceOutcome) IsFinished() bool {
	return o.Status == RaceStatusFinished && o.TotalTime != nil
}

// StatusLabel renders the status the way race reports show it
func (o RaceOutcome) StatusLabel() string {
	if o.Status == RaceStatusDNF {
		return fmt.Sprintf("DNF on lap %d", o.LapsCompleted)
	}
	return "Finished"
}

// Time returns the elapsed time, or 0 when the competitor did not finish
func (o RaceOutcome) Time() float64 {
	if o.TotalTime == nil {
		return 0
	}
	return *o.TotalTime
}
