// Package ratelimit provides a token bucket rate limiter used to honor
// the publish limits platforms declare per post type.
package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket allows up to maxCalls calls per window, refilling
// continuously. The zero value is not usable; use NewTokenBucket.
type TokenBucket struct {
	mu       sync.Mutex
	rate     float64 // tokens per second
	burst    float64
	tokens   float64
	lastTick time.Time
	now      func() time.Time
}

// NewTokenBucket creates a limiter allowing maxCalls per window.
func NewTokenBucket(maxCalls int, window time.Duration) *TokenBucket {
	return newTokenBucket(maxCalls, window, time.Now)
}

func newTokenBucket(maxCalls int, window time.Duration, now func() time.Time) *TokenBucket {
	if maxCalls <= 0 {
		maxCalls = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &TokenBucket{
		rate:     float64(maxCalls) / window.Seconds(),
		burst:    float64(maxCalls),
		tokens:   float64(maxCalls),
		lastTick: now(),
		now:      now,
	}
}

// Allow reports whether one call is allowed right now.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.advance()
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RetryIn returns how long until the next call would be allowed.
func (tb *TokenBucket) RetryIn() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.advance()
	if tb.tokens >= 1 {
		return 0
	}
	missing := 1 - tb.tokens
	return time.Duration(missing / tb.rate * float64(time.Second))
}

func (tb *TokenBucket) advance() {
	now := tb.now()
	elapsed := now.Sub(tb.lastTick).Seconds()
	tb.lastTick = now

	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.burst {
		tb.tokens = tb.burst
	}
}
