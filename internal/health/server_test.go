package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/pitwall/internal/models"
	"github.com/yourusername/pitwall/internal/service"
	"github.com/yourusername/pitwall/internal/simulation"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error {
	return f.err
}

type fakeSummaries struct {
	run *service.RunResult
}

func (f fakeSummaries) Latest() (*service.RunResult, bool) {
	return f.run, f.run != nil
}

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndLive(t *testing.T) {
	srv := NewServer(Config{ServiceName: "pitwall", Version: "1.2.3", Commit: "abc123"})

	rec := get(t, srv.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "pitwall", body.Service)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "abc123", body.Commit)
	assert.NotEmpty(t, body.Timestamp)

	rec = get(t, srv.Handler(), "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		db         DatabasePinger
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "not ready",
			ready:      false,
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "not_ready"},
		},
		{
			name:       "ready without database",
			ready:      true,
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"service": "ok"},
		},
		{
			name:       "ready with database",
			ready:      true,
			db:         fakePinger{},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"service": "ok", "database": "ok"},
		},
		{
			name:       "database down",
			ready:      true,
			db:         fakePinger{err: errors.New("connection refused")},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"service": "ok", "database": "error: connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(Config{ServiceName: "pitwall", DB: tt.db})
			srv.SetReady(tt.ready)

			rec := get(t, srv.Handler(), "/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ReadyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantChecks, body.Checks)
		})
	}
}

func TestSummary(t *testing.T) {
	srv := NewServer(Config{ServiceName: "pitwall", Summaries: fakeSummaries{}})
	assert.Equal(t, http.StatusNotFound, get(t, srv.Handler(), "/summary").Code)

	srv = NewServer(Config{ServiceName: "pitwall"})
	assert.Equal(t, http.StatusNotFound, get(t, srv.Handler(), "/summary").Code)

	avg := 2000.0
	run := &service.RunResult{
		RunID: uuid.New(),
		Result: simulation.MonteCarloResult{
			Iterations: 10,
			Seed:       42,
			Rows:       []models.SummaryRow{{Car: "A", WinPercent: 100, PodiumPercent: 100, AvgFinishTime: &avg}},
		},
	}
	srv = NewServer(Config{ServiceName: "pitwall", Summaries: fakeSummaries{run: run}})

	rec := get(t, srv.Handler(), "/summary")
	require.Equal(t, http.StatusOK, rec.Code)

	var body service.RunResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, run.RunID, body.RunID)
	require.Len(t, body.Result.Rows, 1)
	assert.Equal(t, "A", body.Result.Rows[0].Car)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pitwall_trials_total 5\n"))
	})
	srv := NewServer(Config{ServiceName: "pitwall", MetricsPath: "/prom", MetricsHandler: metrics})

	rec := get(t, srv.Handler(), "/prom")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "pitwall_trials_total")

	assert.Equal(t, http.StatusNotFound, get(t, NewServer(Config{}).Handler(), "/metrics").Code)
}

func TestShutdownWithoutStart(t *testing.T) {
	assert.NoError(t, NewServer(Config{}).Shutdown())
}
