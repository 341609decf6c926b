package simulation

import (
	"sort"

	"github.com/yourusername/pitwall/internal/models"
)

// tally accumulates per-competitor counts across trials, indexed by input order
type tally struct {
	wins        []int
	podiums     []int
	dnfs        []int
	finishTimes [][]float64
	trials      int
}

func newTally(n int) *tally {
	return &tally{
		wins:        make([]int, n),
		podiums:     make([]int, n),
		dnfs:        make([]int, n),
		finishTimes: make([][]float64, n),
	}
}

// record folds one race into the running totals
func (t *tally) record(outcomes []models.RaceOutcome) {
	t.trials++

	finished := make([]int, 0, len(outcomes))
	for i, outcome := range outcomes {
		if outcome.IsFinished() {
			finished = append(finished, i)
			t.finishTimes[i] = append(t.finishTimes[i], outcome.Time())
		} else {
			t.dnfs[i]++
		}
	}
	if len(finished) == 0 {
		return
	}

	sort.SliceStable(finished, func(a, b int) bool {
		return outcomes[finished[a]].Time() < outcomes[finished[b]].Time()
	})
	t.wins[finished[0]]++
	for rank, idx := range finished {
		if rank >= podiumSize {
			break
		}
		t.podiums[idx]++
	}
}

// merge appends other's totals. Finish times keep other's order after ours.
func (t *tally) merge(other *tally) {
	t.trials += other.trials
	for i := range t.wins {
		t.wins[i] += other.wins[i]
		t.podiums[i] += other.podiums[i]
		t.dnfs[i] += other.dnfs[i]
		t.finishTimes[i] = append(t.finishTimes[i], other.finishTimes[i]...)
	}
}

// summarize finalizes the ranked table over n trials
func (t *tally) summarize(competitors []models.Competitor, n int) []models.SummaryRow {
	rows := make([]models.SummaryRow, len(competitors))
	for i, c := range competitors {
		row := models.SummaryRow{
			Car:           c.Name,
			WinPercent:    percent(t.wins[i], n),
			PodiumPercent: percent(t.podiums[i], n),
			DNFPercent:    percent(t.dnfs[i], n),
			Wins:          t.wins[i],
			Podiums:       t.podiums[i],
			DNFs:          t.dnfs[i],
			Finishes:      len(t.finishTimes[i]),
			EntryOrder:    i,
		}
		if len(t.finishTimes[i]) > 0 {
			avg := mean(t.finishTimes[i])
			row.AvgFinishTime = &avg
		}
		rows[i] = row
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].WinPercent > rows[b].WinPercent
	})
	return rows
}

func percent(count, n int) float64 {
	return 100 * float64(count) / float64(n)
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
