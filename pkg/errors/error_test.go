package errors

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSetsRetryableFromCode(t *testing.T) {
	tests := []struct {
		code      ErrorCode
		retryable bool
	}{
		{ErrRateLimited, true},
		{ErrPlatformTimeout, true},
		{ErrConnectionFailed, true},
		{ErrPlatformUnavailable, true},
		{ErrAuthenticationFailed, false},
		{ErrValidationFailed, false},
		{ErrUnsupportedPostType, false},
		{ErrUnknownPlatform, false},
		{ErrPlatformRejected, false},
		{ErrInternal, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "msg")
			assert.Equal(t, tt.retryable, err.IsRetryable())
			assert.False(t, err.Timestamp.IsZero())
		})
	}
}

func TestErrorMessageIncludesPlatform(t *testing.T) {
	err := New(ErrRateLimited, "throttled").WithPlatform("twitter")
	assert.Contains(t, err.Error(), "RATE_LIMITED")
	assert.Contains(t, err.Error(), "twitter")

	bare := New(ErrRateLimited, "throttled")
	assert.NotContains(t, bare.Error(), "platform")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, ErrConnectionFailed, "dial failed")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsMatchesByCode(t *testing.T) {
	err := New(ErrRateLimited, "a").WithPlatform("x")
	target := New(ErrRateLimited, "completely different message")

	assert.ErrorIs(t, err, target)
	assert.NotErrorIs(t, err, New(ErrPlatformTimeout, "a"))
}

func TestMarkExhaustedKeepsRetryableKind(t *testing.T) {
	err := New(ErrRateLimited, "throttled").WithAttemptCount(3).MarkExhausted()

	assert.True(t, err.Exhausted)
	assert.True(t, err.IsRetryable())
	assert.Equal(t, 3, err.AttemptCount)
}

func TestNewRateLimitErrorCarriesRetryAfter(t *testing.T) {
	err := NewRateLimitError("twitter", 42*time.Second)

	require.NotNil(t, err.RetryAfter)
	assert.Equal(t, 42*time.Second, *err.RetryAfter)
	assert.True(t, err.IsRetryable())
	assert.Equal(t, "twitter", err.Platform)
}

func TestGetCategory(t *testing.T) {
	assert.Equal(t, "configuration", GetCategory(ErrUnknownPlatform))
	assert.Equal(t, "validation", GetCategory(ErrValidationFailed))
	assert.Equal(t, "platform", GetCategory(ErrRateLimited))
	assert.Equal(t, "system", GetCategory(ErrInternal))
	assert.Equal(t, "unknown", GetCategory(ErrorCode("MADE_UP")))
}
