package errors

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/kart-io/publishhub/pkg/logger"
)

// RetryPolicy defines how failed platform calls are retried.
type RetryPolicy interface {
	// ShouldRetry determines if an error should be retried after the given attempt.
	ShouldRetry(err error, attempt int) bool

	// RetryDelay calculates the delay before the next retry.
	RetryDelay(attempt int) time.Duration

	// MaxAttempts returns the maximum number of attempts.
	MaxAttempts() int
}

// ExponentialBackoffPolicy implements base*2^attempt backoff with jitter.
type ExponentialBackoffPolicy struct {
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     float64
	Attempts   int
}

// NewExponentialBackoffPolicy creates a new exponential backoff policy.
func NewExponentialBackoffPolicy(baseDelay, maxDelay time.Duration, maxAttempts int) *ExponentialBackoffPolicy {
	return &ExponentialBackoffPolicy{
		BaseDelay:  baseDelay,
		MaxDelay:   maxDelay,
		Multiplier: 2.0,
		Jitter:     0.1,
		Attempts:   maxAttempts,
	}
}

// ShouldRetry determines if an error should be retried.
func (p *ExponentialBackoffPolicy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.Attempts {
		return false
	}
	return IsRetryable(err)
}

// RetryDelay calculates the delay before the next retry.
func (p *ExponentialBackoffPolicy) RetryDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))

	if p.Jitter > 0 {
		jitter := delay * p.Jitter * (rand.Float64()*2 - 1)
		delay += jitter
	}

	if time.Duration(delay) > p.MaxDelay {
		delay = float64(p.MaxDelay)
	}

	return time.Duration(delay)
}

// MaxAttempts returns the maximum number of attempts.
func (p *ExponentialBackoffPolicy) MaxAttempts() int {
	return p.Attempts
}

// FixedDelayPolicy waits a constant delay between attempts.
type FixedDelayPolicy struct {
	Delay    time.Duration
	Attempts int
}

// NewFixedDelayPolicy creates a new fixed delay policy.
func NewFixedDelayPolicy(delay time.Duration, maxAttempts int) *FixedDelayPolicy {
	return &FixedDelayPolicy{Delay: delay, Attempts: maxAttempts}
}

// ShouldRetry determines if an error should be retried.
func (p *FixedDelayPolicy) ShouldRetry(err error, attempt int) bool {
	if attempt >= p.Attempts {
		return false
	}
	return IsRetryable(err)
}

// RetryDelay returns the fixed delay.
func (p *FixedDelayPolicy) RetryDelay(int) time.Duration {
	return p.Delay
}

// MaxAttempts returns the maximum number of attempts.
func (p *FixedDelayPolicy) MaxAttempts() int {
	return p.Attempts
}

// NoRetryPolicy gives every operation a single attempt.
type NoRetryPolicy struct{}

// ShouldRetry always returns false.
func (NoRetryPolicy) ShouldRetry(error, int) bool { return false }

// RetryDelay always returns zero.
func (NoRetryPolicy) RetryDelay(int) time.Duration { return 0 }

// MaxAttempts returns one.
func (NoRetryPolicy) MaxAttempts() int { return 1 }

// Executor runs retryable operations under a policy. Delays honor
// context cancellation.
type Executor struct {
	policy RetryPolicy
	logger logger.Logger
}

// NewExecutor creates a new retry executor.
func NewExecutor(policy RetryPolicy, log logger.Logger) *Executor {
	if log == nil {
		log = logger.Discard
	}
	return &Executor{policy: policy, logger: log}
}

// Execute runs the operation until it succeeds, the error is terminal, or
// the attempt budget is exhausted. The returned error is the classified
// last failure; exhausted retryable failures are marked accordingly.
func (r *Executor) Execute(ctx context.Context, operation func() error) error {
	var lastErr *PublishError

	for attempt := 1; attempt <= r.policy.MaxAttempts(); attempt++ {
		err := operation()
		if err == nil {
			if attempt > 1 {
				r.logger.Info("operation succeeded after retry",
					"attempt", attempt,
					"max_attempts", r.policy.MaxAttempts())
			}
			return nil
		}

		lastErr = Classify(err).WithAttemptCount(attempt)

		if !r.policy.ShouldRetry(lastErr, attempt) {
			if lastErr.IsRetryable() && attempt >= r.policy.MaxAttempts() {
				lastErr.MarkExhausted()
				r.logger.Error("operation failed after max attempts",
					"error", lastErr.Error(),
					"attempts", attempt)
			} else {
				r.logger.Warn("operation failed, not retryable",
					"error", lastErr.Error(),
					"attempt", attempt)
			}
			break
		}

		delay := r.policy.RetryDelay(attempt)
		if suggested := lastErr.RetryAfter; suggested != nil && *suggested > delay {
			delay = *suggested
		}
		r.logger.Debug("operation failed, retrying",
			"error", lastErr.Error(),
			"attempt", attempt,
			"next_delay", delay)

		select {
		case <-ctx.Done():
			return Classify(ctx.Err()).WithAttemptCount(attempt)
		case <-time.After(delay):
		}
	}

	if lastErr == nil {
		return nil
	}
	return lastErr
}
