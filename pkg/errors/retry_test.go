package errors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoffDelayGrows(t *testing.T) {
	policy := NewExponentialBackoffPolicy(time.Second, time.Minute, 5)
	policy.Jitter = 0

	assert.Equal(t, time.Duration(0), policy.RetryDelay(0))
	assert.Equal(t, time.Second, policy.RetryDelay(1))
	assert.Equal(t, 2*time.Second, policy.RetryDelay(2))
	assert.Equal(t, 4*time.Second, policy.RetryDelay(3))
}

func TestExponentialBackoffCapsAtMax(t *testing.T) {
	policy := NewExponentialBackoffPolicy(time.Second, 5*time.Second, 10)
	policy.Jitter = 0

	assert.Equal(t, 5*time.Second, policy.RetryDelay(8))
}

func TestExponentialBackoffShouldRetry(t *testing.T) {
	policy := NewExponentialBackoffPolicy(time.Second, time.Minute, 3)

	retryable := New(ErrRateLimited, "throttled")
	terminal := New(ErrAuthenticationFailed, "bad token")

	assert.True(t, policy.ShouldRetry(retryable, 1))
	assert.True(t, policy.ShouldRetry(retryable, 2))
	assert.False(t, policy.ShouldRetry(retryable, 3))
	assert.False(t, policy.ShouldRetry(terminal, 1))
}

func TestNoRetryPolicy(t *testing.T) {
	policy := NoRetryPolicy{}
	assert.False(t, policy.ShouldRetry(New(ErrRateLimited, "x"), 1))
	assert.Equal(t, 1, policy.MaxAttempts())
}

func TestExecutorSucceedsAfterRetries(t *testing.T) {
	executor := NewExecutor(NewFixedDelayPolicy(time.Millisecond, 3), nil)

	attempts := 0
	err := executor.Execute(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return New(ErrPlatformUnavailable, "503")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestExecutorStopsOnTerminalError(t *testing.T) {
	executor := NewExecutor(NewFixedDelayPolicy(time.Millisecond, 5), nil)

	attempts := 0
	err := executor.Execute(context.Background(), func() error {
		attempts++
		return New(ErrAuthenticationFailed, "bad token")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, ErrAuthenticationFailed, pubErr.Code)
	assert.False(t, pubErr.Exhausted)
}

func TestExecutorMarksExhausted(t *testing.T) {
	executor := NewExecutor(NewFixedDelayPolicy(time.Millisecond, 2), nil)

	attempts := 0
	err := executor.Execute(context.Background(), func() error {
		attempts++
		return New(ErrRateLimited, "429")
	})

	require.Error(t, err)
	assert.Equal(t, 2, attempts)

	var pubErr *PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.True(t, pubErr.Exhausted)
	assert.True(t, pubErr.IsRetryable())
	assert.Equal(t, 2, pubErr.AttemptCount)
}

func TestExecutorHonorsContextCancellation(t *testing.T) {
	executor := NewExecutor(NewFixedDelayPolicy(10*time.Second, 3), nil)

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := executor.Execute(ctx, func() error {
		attempts++
		return New(ErrPlatformUnavailable, "503")
	})

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.Less(t, time.Since(start), time.Second)
}

func TestExecutorHonorsRetryAfterHint(t *testing.T) {
	executor := NewExecutor(NewFixedDelayPolicy(time.Millisecond, 2), nil)

	start := time.Now()
	attempts := 0
	err := executor.Execute(context.Background(), func() error {
		attempts++
		if attempts == 1 {
			return NewRateLimitError("twitter", 50*time.Millisecond)
		}
		return nil
	})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
