// Package logger provides simulation-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SimulationLogger provides dedicated logging for monte carlo runs.
type SimulationLogger struct {
	*logrus.Entry
}

// NewSimulationLogger creates a new simulation logger.
func NewSimulationLogger(baseLogger *logrus.Logger) *SimulationLogger {
	return &SimulationLogger{
		Entry: baseLogger.WithField("component", "simulation"),
	}
}

// LogRunStarted logs the start of a monte carlo run.
func (sl *SimulationLogger) LogRunStarted(runID string, competitors, laps, iterations, workers int, seed int64) {
	sl.WithFields(logrus.Fields{
		"run_id":      runID,
		"competitors": competitors,
		"laps":        laps,
		"iterations":  iterations,
		"workers":     workers,
		"seed":        seed,
	}).Info("Simulation run started")
}

// LogProgress logs completed trials.
func (sl *SimulationLogger) LogProgress(runID string, completed, total int) {
	sl.WithFields(logrus.Fields{
		"run_id":    runID,
		"completed": completed,
		"total":     total,
	}).Info("Simulations completed")
}

// LogRunCompleted logs a finished run with its leader.
func (sl *SimulationLogger) LogRunCompleted(runID string, iterations int, leader string, leaderWinPercent float64, duration time.Duration, cached bool) {
	sl.WithFields(logrus.Fields{
		"run_id":             runID,
		"iterations":         iterations,
		"leader":             leader,
		"leader_win_percent": leaderWinPercent,
		"duration_ms":        duration.Milliseconds(),
		"cached":             cached,
	}).Info("Simulation run completed")
}

// LogRunFailed logs a run aborted by invalid configuration or cancellation.
func (sl *SimulationLogger) LogRunFailed(runID string, err error) {
	sl.WithFields(logrus.Fields{
		"run_id": runID,
	}).WithError(err).Error("Simulation run failed")
}

// LogRunPersisted logs a summary written to storage.
func (sl *SimulationLogger) LogRunPersisted(runID, fingerprint string, rows int) {
	sl.WithFields(logrus.Fields{
		"run_id":      runID,
		"fingerprint": fingerprint,
		"rows":        rows,
		"event_type":  "persisted",
	}).Info("Simulation summary persisted")
}
