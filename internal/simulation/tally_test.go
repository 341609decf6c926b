package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/pitwall/internal/models"
)

func finished(name string, t float64) models.RaceOutcome {
	return models.RaceOutcome{Name: name, Status: models.RaceStatusFinished, TotalTime: &t}
}

func dnf(name string, lap int) models.RaceOutcome {
	return models.RaceOutcome{Name: name, Status: models.RaceStatusDNF, LapsCompleted: lap}
}

func TestTallyRecord(t *testing.T) {
	totals := newTally(5)
	totals.record([]models.RaceOutcome{
		finished("A", 120),
		dnf("B", 3),
		finished("C", 100),
		finished("D", 120),
		finished("E", 90),
	})

	assert.Equal(t, []int{0, 0, 0, 0, 1}, totals.wins)
	// E, C, then A before D on the tie
	assert.Equal(t, []int{1, 0, 1, 0, 1}, totals.podiums)
	assert.Equal(t, []int{0, 1, 0, 0, 0}, totals.dnfs)
	assert.Empty(t, totals.finishTimes[1])
	assert.Equal(t, []float64{120}, totals.finishTimes[3])
}

func TestTallyRecordAllDNF(t *testing.T) {
	totals := newTally(2)
	totals.record([]models.RaceOutcome{dnf("A", 1), dnf("B", 2)})

	assert.Equal(t, []int{0, 0}, totals.wins)
	assert.Equal(t, []int{0, 0}, totals.podiums)
	assert.Equal(t, []int{1, 1}, totals.dnfs)
	assert.Equal(t, 1, totals.trials)
}

func TestTallyFewerFinishersThanPodium(t *testing.T) {
	totals := newTally(3)
	totals.record([]models.RaceOutcome{finished("A", 5), dnf("B", 1), dnf("C", 1)})

	assert.Equal(t, []int{1, 0, 0}, totals.podiums)
}

func TestTallyMerge(t *testing.T) {
	first, second := newTally(2), newTally(2)
	first.record([]models.RaceOutcome{finished("A", 10), finished("B", 20)})
	second.record([]models.RaceOutcome{finished("A", 30), dnf("B", 4)})

	first.merge(second)

	assert.Equal(t, 2, first.trials)
	assert.Equal(t, []int{2, 0}, first.wins)
	assert.Equal(t, []int{0, 1}, first.dnfs)
	assert.Equal(t, []float64{10, 30}, first.finishTimes[0])
}

func TestTallySummarize(t *testing.T) {
	competitors := []models.Competitor{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	totals := newTally(3)
	totals.record([]models.RaceOutcome{finished("A", 10), finished("B", 5), dnf("C", 1)})
	totals.record([]models.RaceOutcome{finished("A", 30), finished("B", 8), dnf("C", 2)})
	totals.record([]models.RaceOutcome{finished("A", 20), dnf("B", 7), dnf("C", 1)})
	totals.record([]models.RaceOutcome{dnf("A", 1), dnf("B", 2), dnf("C", 1)})

	rows := totals.summarize(competitors, 4)
	require.Len(t, rows, 3)

	assert.Equal(t, "B", rows[0].Car)
	assert.Equal(t, 50.0, rows[0].WinPercent)
	assert.Equal(t, 1, rows[0].EntryOrder)

	assert.Equal(t, "A", rows[1].Car)
	assert.Equal(t, 25.0, rows[1].WinPercent)
	assert.Equal(t, 75.0, rows[1].PodiumPercent)
	assert.Equal(t, 25.0, rows[1].DNFPercent)
	require.NotNil(t, rows[1].AvgFinishTime)
	assert.InDelta(t, 20.0, *rows[1].AvgFinishTime, 1e-9)

	assert.Equal(t, "C", rows[2].Car)
	assert.Equal(t, 100.0, rows[2].DNFPercent)
	assert.Nil(t, rows[2].AvgFinishTime)
}
