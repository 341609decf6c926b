// Package notifier delivers run events to external HTTP endpoints.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned while the endpoint is considered down
var ErrCircuitOpen = errors.New("webhook circuit breaker open")

// CircuitState is the delivery state of the webhook
type CircuitState int

const (
	// CircuitClosed means events are delivered
	CircuitClosed CircuitState = iota
	// CircuitHalfOpen means one trial delivery is allowed after the cooldown
	CircuitHalfOpen
	// CircuitOpen means events are rejected until the cooldown passes
	CircuitOpen
)

// String returns string representation of circuit state
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "CLOSED"
	case CircuitHalfOpen:
		return "HALF_OPEN"
	case CircuitOpen:
		return "OPEN"
	default:
		return "UNKNOWN"
	}
}

// WebhookConfig holds configuration for the webhook client
type WebhookConfig struct {
	URL               string
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second
	CircuitBreakerMax int     // consecutive failures before the circuit opens
	CooldownPeriod    time.Duration
}

// DefaultWebhookConfig returns recommended defaults
func DefaultWebhookConfig(url string) WebhookConfig {
	return WebhookConfig{
		URL:               url,
		Timeout:           10 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      200 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         1.0,
		CircuitBreakerMax: 5,
		CooldownPeriod:    time.Minute,
	}
}

// Event is the envelope posted to the webhook
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// Webhook posts JSON events with rate limiting, retries and a circuit breaker
type Webhook struct {
	url     string
	client  *retryablehttp.Client
	limiter *rate.Limiter
	logger  *logrus.Entry

	mu                sync.Mutex
	circuitBreakerMax int
	cooldown          time.Duration
	consecutiveErrors int
	state             CircuitState
	openedAt          time.Time
	trialInFlight     bool
	lastError         error
}

// NewWebhook creates a new webhook notifier
func NewWebhook(cfg WebhookConfig, logger *logrus.Logger) *Webhook {
	if logger == nil {
		logger = logrus.New()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = retryPolicy
	// per-attempt logging is too noisy; outcomes are logged below
	retryClient.Logger = nil

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	breakerMax := cfg.CircuitBreakerMax
	if breakerMax <= 0 {
		breakerMax = 1
	}

	return &Webhook{
		url:               cfg.URL,
		client:            retryClient,
		limiter:           rate.NewLimiter(limit, 1),
		logger:            logger.WithField("component", "webhook"),
		circuitBreakerMax: breakerMax,
		cooldown:          cfg.CooldownPeriod,
	}
}

// Publish posts one event. Non-2xx responses after retries count as failures.
// While the circuit is open events are rejected; after the cooldown a single
// trial delivery decides whether it closes again.
func (w *Webhook) Publish(ctx context.Context, eventType string, payload any) error {
	body, err := json.Marshal(Event{Type: eventType, Timestamp: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	if err := w.checkCircuit(); err != nil {
		return err
	}

	if err := w.limiter.Wait(ctx); err != nil {
		w.releaseTrial()
		return fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		w.releaseTrial()
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.recordFailure(err)
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		err := fmt.Errorf("webhook returned status %d", resp.StatusCode)
		w.recordFailure(err)
		return err
	}

	w.recordSuccess()
	w.logger.WithFields(logrus.Fields{
		"event":  eventType,
		"status": resp.StatusCode,
	}).Debug("Webhook delivered")
	return nil
}

// IsOpen reports whether the circuit breaker is rejecting events
func (w *Webhook) IsOpen() bool {
	return w.State() == CircuitOpen
}

// State returns the current circuit state, moving to half-open once the cooldown has passed
func (w *Webhook) State() CircuitState {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advanceLocked()
	return w.state
}

// Reset closes the circuit breaker
func (w *Webhook) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = CircuitClosed
	w.trialInFlight = false
	w.consecutiveErrors = 0
	w.lastError = nil
}

// Close closes idle connections
func (w *Webhook) Close() error {
	w.client.HTTPClient.CloseIdleConnections()
	return nil
}

// advanceLocked moves an open circuit to half-open after the cooldown
func (w *Webhook) advanceLocked() {
	if w.state == CircuitOpen && time.Since(w.openedAt) >= w.cooldown {
		w.state = CircuitHalfOpen
		w.logger.Info("Webhook circuit breaker entering half-open state after cooldown")
	}
}

func (w *Webhook) checkCircuit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.advanceLocked()

	switch w.state {
	case CircuitOpen:
		return fmt.Errorf("%w: %v", ErrCircuitOpen, w.lastError)
	case CircuitHalfOpen:
		if w.trialInFlight {
			return fmt.Errorf("%w: trial delivery in progress", ErrCircuitOpen)
		}
		w.trialInFlight = true
	}
	return nil
}

// releaseTrial frees the half-open slot when no request was sent
func (w *Webhook) releaseTrial() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.trialInFlight = false
}

func (w *Webhook) recordFailure(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.consecutiveErrors++
	w.lastError = err
	w.trialInFlight = false

	if w.state == CircuitHalfOpen || (w.state == CircuitClosed && w.consecutiveErrors >= w.circuitBreakerMax) {
		w.state = CircuitOpen
		w.openedAt = time.Now()
		w.logger.WithError(err).WithFields(logrus.Fields{
			"failures": w.consecutiveErrors,
			"cooldown": w.cooldown,
		}).Warn("Webhook circuit breaker opened")
	}
}

func (w *Webhook) recordSuccess() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != CircuitClosed {
		w.logger.WithField("old_state", w.state.String()).Info("Webhook circuit breaker closed")
	}
	w.state = CircuitClosed
	w.trialInFlight = false
	w.consecutiveErrors = 0
	w.lastError = nil
}

// retryPolicy retries network errors, 429 and 5xx gateway errors
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, err
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}
