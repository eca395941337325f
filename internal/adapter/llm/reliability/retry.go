package reliability

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/scenariowizard/worker/internal/domain/scenario"
)

// RetryConfig holds configuration for retry logic.
type RetryConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64 // Backoff multiplier (default: 1.0)
	JitterFactor   float64 // Random jitter factor 0-1
}

// DefaultGenerationRetryConfig returns the retry config for provider
// generation calls: up to 3 attempts, 4s base delay capped at 10s.
func DefaultGenerationRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 4 * time.Second,
		MaxBackoff:     10 * time.Second,
		Multiplier:     1.0,
		JitterFactor:   0.1,
	}
}

// RetryableError indicates an error that should trigger retry.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// IsRetryable checks if an error should trigger a retry.
//
// Template format errors are caller bugs and fail immediately. Context errors
// are never retried. Provider errors are retried when the HTTP status (if any)
// indicates a transient condition, or when the message matches a known
// transient pattern.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return true
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	if errors.Is(err, scenario.ErrTemplateFormat) {
		return false
	}

	var providerErr *scenario.ProviderError
	if errors.As(err, &providerErr) && providerErr.StatusCode != 0 {
		return IsRetryableStatusCode(providerErr.StatusCode)
	}

	errMsg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"quota exceeded",
		"too many requests",
		"service unavailable",
		"internal server error",
		"timeout",
		"connection reset",
		"connection refused",
		"temporary failure",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}

// IsRetryableStatusCode checks if an HTTP status code indicates retryable error.
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		http.StatusBadGateway,
		http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

// Retryer performs operations with retry logic.
type Retryer struct {
	config RetryConfig
}

// NewRetryer creates a new retryer with the given configuration.
func NewRetryer(config RetryConfig) *Retryer {
	if config.Multiplier == 0 {
		config.Multiplier = 1.0
	}
	return &Retryer{config: config}
}

// Do executes the operation with retry logic. Non-retryable errors return
// immediately without consuming further attempts; on exhaustion the last
// error is surfaced, not an aggregate. Backoff waits are context-aware
// suspension points, not busy-waits.
func (r *Retryer) Do(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		lastErr = err

		if !IsRetryable(err) {
			return err
		}

		if attempt == r.config.MaxAttempts {
			break
		}

		backoff := r.calculateBackoff(attempt)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
			// Continue to next attempt
		}
	}

	return lastErr
}

// calculateBackoff calculates the backoff duration with exponential increase and jitter.
func (r *Retryer) calculateBackoff(attempt int) time.Duration {
	backoff := float64(r.config.InitialBackoff) * math.Pow(r.config.Multiplier, float64(attempt-1))

	if backoff > float64(r.config.MaxBackoff) {
		backoff = float64(r.config.MaxBackoff)
	}

	jitter := (rand.Float64()*2 - 1) * r.config.JitterFactor
	backoff *= (1 + jitter)

	return time.Duration(backoff)
}
