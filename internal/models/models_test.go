package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCircuitDistance(t *testing.T) {
	assert.Equal(t, 200000.0, Circuit{LapLength: 5000, NLaps: 40}.Distance())
	assert.Equal(t, 0.0, Circuit{}.Distance())
}

func TestRaceOutcomeTime(t *testing.T) {
	elapsed := 812.5
	finished := RaceOutcome{Name: "A", Status: RaceStatusFinished, LapsCompleted: 10, TotalTime: &elapsed}
	dnf := RaceOutcome{Name: "B", Status: RaceStatusDNF, LapsCompleted: 4}

	assert.Equal(t, 812.5, finished.Time())
	assert.True(t, finished.IsFinished())
	assert.Equal(t, "Finished", finished.StatusLabel())

	assert.Equal(t, 0.0, dnf.Time())
	assert.False(t, dnf.IsFinished())
	assert.Equal(t, "DNF on lap 4", dnf.StatusLabel())
}
