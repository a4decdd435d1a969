package subtrans

import (
	"context"
	"sync"
	"time"
)

// RateLimiter bounds provider calls per second using a token bucket.
// The bucket refills continuously at the configured rate; its capacity
// equals one second's worth of tokens, so short bursts up to the rate
// are allowed after an idle period.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a rate limiter allowing requestsPerSecond calls.
// Non-positive rates fall back to the engine default.
func NewRateLimiter(requestsPerSecond float64) *RateLimiter {
	rps := requestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}

	capacity := rps
	if capacity < 1 {
		capacity = 1
	}

	return &RateLimiter{
		tokens:     capacity, // Start with a full bucket
		maxTokens:  capacity,
		refillRate: rps,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or the context is cancelled.
// Workers park on the refill interval rather than busy-spinning.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.TryAcquire() {
			return nil
		}

		r.mu.Lock()
		waitTime := time.Duration(float64(time.Second) / r.refillRate)
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
			// Try again
		}
	}
}

// TryAcquire attempts to acquire a token without blocking.
// Returns true if a token was acquired, false otherwise.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()

	if r.tokens >= 1 {
		r.tokens--
		return true
	}

	return false
}

// refill adds tokens based on elapsed time (must be called with lock held).
func (r *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}
