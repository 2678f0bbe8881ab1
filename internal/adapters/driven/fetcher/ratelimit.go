package fetcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Default throttling for remote fetches.
const (
	DefaultRatePerSecond = 2.0
	DefaultBurst         = 2
	defaultRetryAfter    = 30 * time.Second
)

// RateLimiter throttles outgoing requests with a token bucket and honours
// Retry-After backoff after a 429 or 503 response.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewRateLimiter creates a limiter allowing perSecond requests per second.
// A non-positive rate disables throttling.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(limit, burst)}
}

// Wait blocks until a request may be made or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return r.limiter.Wait(ctx)
}

// Backoff delays further requests by d. Zero or negative uses the default.
func (r *RateLimiter) Backoff(d time.Duration) {
	if d <= 0 {
		d = defaultRetryAfter
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if at := time.Now().Add(d); at.After(r.retryAt) {
		r.retryAt = at
	}
}

// Allow reports whether a request may be made immediately.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}
