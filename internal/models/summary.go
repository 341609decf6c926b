package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SummaryRow holds the finalized statistics for one competitor across all trials
type SummaryRow struct {
	Car           string   `json:"car"`
	WinPercent    float64  `json:"win_percent"`
	PodiumPercent float64  `json:"podium_percent"`
	DNFPercent    float64  `json:"dnf_percent"`
	AvgFinishTime *float64 `json:"avg_time,omitempty"`
	Wins          int      `json:"wins"`
	Podiums       int      `json:"podiums"`
	DNFs          int      `json:"dnfs"`
	Finishes      int      `json:"finishes"`
	EntryOrder    int      `json:"entry_order"`
}

// HasAverage reports whether the competitor finished at least once
func (r SummaryRow) HasAverage() bool {
	return r.AvgFinishTime != nil
}

// SimulationRun represents a persisted Monte Carlo run
type SimulationRun struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Fingerprint string          `db:"fingerprint" json:"fingerprint"`
	Iterations  int             `db:"iterations" json:"iterations"`
	Seed        int64           `db:"seed" json:"seed"`
	Competitors int             `db:"competitors" json:"competitors"`
	Leader      string          `db:"leader" json:"leader"`
	DurationMs  int64           `db:"duration_ms" json:"duration_ms"`
	Summary     json.RawMessage `db:"summary" json:"summary"`
	RunDate     time.Time       `db:"run_date" json:"run_date"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}
