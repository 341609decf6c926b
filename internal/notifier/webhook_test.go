package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(url string) WebhookConfig {
	cfg := DefaultWebhookConfig(url)
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 0
	return cfg
}

func TestWebhookPublish(t *testing.T) {
	var received Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	log, _ := test.NewNullLogger()
	hook := NewWebhook(fastConfig(server.URL), log)
	defer hook.Close()

	err := hook.Publish(context.Background(), "run.completed", map[string]any{"leader": "Rocket"})
	require.NoError(t, err)

	assert.Equal(t, "run.completed", received.Type)
	assert.False(t, received.Timestamp.IsZero())
	assert.Equal(t, map[string]any{"leader": "Rocket"}, received.Payload)
}

func TestWebhookRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hook := NewWebhook(fastConfig(server.URL), nil)

	require.NoError(t, hook.Publish(context.Background(), "run.completed", nil))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestWebhookDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	hook := NewWebhook(fastConfig(server.URL), nil)

	err := hook.Publish(context.Background(), "run.completed", nil)
	assert.ErrorContains(t, err, "status 400")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestWebhookCircuitBreaker(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := fastConfig(server.URL)
	cfg.CircuitBreakerMax = 2
	hook := NewWebhook(cfg, nil)

	assert.Error(t, hook.Publish(context.Background(), "a", nil))
	assert.False(t, hook.IsOpen())
	assert.Error(t, hook.Publish(context.Background(), "b", nil))
	assert.True(t, hook.IsOpen())

	err := hook.Publish(context.Background(), "c", nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(2), attempts.Load())

	hook.Reset()
	assert.False(t, hook.IsOpen())
}

func TestWebhookRateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := fastConfig(server.URL)
	cfg.RateLimit = 0.001
	hook := NewWebhook(cfg, nil)

	require.NoError(t, hook.Publish(context.Background(), "first", nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := hook.Publish(ctx, "second", nil)
	assert.ErrorContains(t, err, "rate limiter error")
}

func TestWebhookCircuitRecoversAfterCooldown(t *testing.T) {
	var healthy atomic.Bool
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		if !healthy.Load() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := fastConfig(server.URL)
	cfg.CircuitBreakerMax = 2
	cfg.CooldownPeriod = 20 * time.Millisecond
	hook := NewWebhook(cfg, nil)

	assert.Error(t, hook.Publish(context.Background(), "a", nil))
	assert.Error(t, hook.Publish(context.Background(), "b", nil))
	require.Equal(t, CircuitOpen, hook.State())
	assert.ErrorIs(t, hook.Publish(context.Background(), "c", nil), ErrCircuitOpen)

	// still down after the cooldown: the trial fails and the circuit reopens
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, CircuitHalfOpen, hook.State())
	assert.Error(t, hook.Publish(context.Background(), "d", nil))
	assert.Equal(t, CircuitOpen, hook.State())
	assert.Equal(t, int32(3), attempts.Load())

	healthy.Store(true)
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, hook.Publish(context.Background(), "e", nil))
	assert.Equal(t, CircuitClosed, hook.State())
	assert.False(t, hook.IsOpen())

	require.NoError(t, hook.Publish(context.Background(), "f", nil))
	assert.Equal(t, int32(5), attempts.Load())
}

func TestCircuitStateString(t *testing.T) {
	assert.Equal(t, "CLOSED", CircuitClosed.String())
	assert.Equal(t, "HALF_OPEN", CircuitHalfOpen.String())
	assert.Equal(t, "OPEN", CircuitOpen.String())
	assert.Equal(t, "UNKNOWN", CircuitState(9).String())
}
