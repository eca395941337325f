package reliability

import (
	"context"

	"golang.org/x/time/rate"
)

const (
	// Providers rate-limit aggressively; one request per second with a small
	// burst keeps sequential batch traffic well under published limits.
	defaultRequestsPerSecond = 1.0
	defaultBurst             = 2
)

// RateLimiter throttles outbound provider calls. A single limiter is shared
// across all provider adapters so fallback traffic counts against the same
// budget.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst. Non-positive values fall back to defaults.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until a request slot is available or the context is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
