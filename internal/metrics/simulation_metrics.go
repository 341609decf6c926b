// Package metrics defines simulation-specific metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yourusername/pitwall/internal/models"
)

// Counter metrics
var (
	SimulationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_runs_total",
		Help:      "Total number of monte carlo runs by status",
	}, []string{"status"})
	TrialsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "trials_total",
		Help:      "Total number of simulated races",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_hits_total",
		Help:      "Total number of runs served from the result cache",
	})
)

// Gauge vectors, labelled by competitor
var (
	CompetitorWinPercent = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "competitor_win_percent",
		Help:      "Win percentage of each competitor in the latest run",
	}, []string{"car"})
	CompetitorPodiumPercent = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "competitor_podium_percent",
		Help:      "Podium percentage of each competitor in the latest run",
	}, []string{"car"})
	CompetitorDNFPercent = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "competitor_dnf_percent",
		Help:      "DNF percentage of each competitor in the latest run",
	}, []string{"car"})
	CompetitorAvgFinishTime = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "competitor_avg_finish_seconds",
		Help:      "Average finish time of each competitor in the latest run",
	}, []string{"car"})
)

// Histogram metrics
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_duration_seconds",
		Help:      "Duration of monte carlo runs in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

// RecordSimulationRun records a run event.
// status should be one of: "success", "failure", "cached"
func RecordSimulationRun(status string) {
	SimulationRunsTotal.WithLabelValues(status).Inc()
}

// RecordTrials adds completed trials.
func RecordTrials(n int) {
	TrialsTotal.Add(float64(n))
}

// RecordCacheHit records a run served from cache.
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordSimulationDuration records run duration.
func RecordSimulationDuration(durationSeconds float64) {
	SimulationDuration.Observe(durationSeconds)
}

// UpdateSummary publishes the latest summary table. Competitors that never
// finished have their average time series removed.
func UpdateSummary(rows []models.SummaryRow) {
	for _, row := range rows {
		CompetitorWinPercent.WithLabelValues(row.Car).Set(row.WinPercent)
		CompetitorPodiumPercent.WithLabelValues(row.Car).Set(row.PodiumPercent)
		CompetitorDNFPercent.WithLabelValues(row.Car).Set(row.DNFPercent)
		if row.AvgFinishTime != nil {
			CompetitorAvgFinishTime.WithLabelValues(row.Car).Set(*row.AvgFinishTime)
		} else {
			CompetitorAvgFinishTime.DeleteLabelValues(row.Car)
		}
	}
}
