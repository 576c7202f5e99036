package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassifyPassesThroughPublishErrors(t *testing.T) {
	original := New(ErrRateLimited, "throttled").WithPlatform("twitter")
	classified := Classify(fmt.Errorf("wrapped: %w", original))

	assert.Same(t, original, classified)
}

func TestClassifyContextErrors(t *testing.T) {
	deadline := Classify(context.DeadlineExceeded)
	assert.Equal(t, ErrPlatformTimeout, deadline.Code)
	assert.True(t, deadline.IsRetryable())

	cancelled := Classify(context.Canceled)
	assert.Equal(t, ErrCancelled, cancelled.Code)
	assert.False(t, cancelled.IsRetryable())
}

type fakeNetError struct{ timeout bool }

func (e *fakeNetError) Error() string   { return "dial tcp: no route to host" }
func (e *fakeNetError) Timeout() bool   { return e.timeout }
func (e *fakeNetError) Temporary() bool { return true }

func TestClassifyNetErrors(t *testing.T) {
	timeout := Classify(&fakeNetError{timeout: true})
	assert.Equal(t, ErrPlatformTimeout, timeout.Code)

	refused := Classify(&fakeNetError{})
	assert.Equal(t, ErrConnectionFailed, refused.Code)
	assert.True(t, refused.IsRetryable())
}

func TestClassifyTransientSignatures(t *testing.T) {
	transient := []string{
		"read: connection reset by peer",
		"upstream service unavailable",
		"too many requests from client",
		"unexpected EOF",
	}
	for _, msg := range transient {
		t.Run(msg, func(t *testing.T) {
			classified := Classify(stderrors.New(msg))
			assert.Equal(t, ErrPlatformUnavailable, classified.Code)
			assert.True(t, classified.IsRetryable())
		})
	}
}

func TestClassifyUnknownErrorsAreNotRetryable(t *testing.T) {
	classified := Classify(stderrors.New("something odd happened"))
	assert.Equal(t, ErrUnknown, classified.Code)
	assert.False(t, classified.IsRetryable())
}

func TestFromHTTPStatus(t *testing.T) {
	tests := []struct {
		status    int
		code      ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, ErrAuthenticationFailed, false},
		{http.StatusForbidden, ErrAuthenticationFailed, false},
		{http.StatusTooManyRequests, ErrRateLimited, true},
		{http.StatusRequestTimeout, ErrPlatformTimeout, true},
		{http.StatusGatewayTimeout, ErrPlatformTimeout, true},
		{http.StatusInternalServerError, ErrPlatformUnavailable, true},
		{http.StatusServiceUnavailable, ErrPlatformUnavailable, true},
		{http.StatusBadRequest, ErrPlatformRejected, false},
		{http.StatusUnprocessableEntity, ErrPlatformRejected, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := FromHTTPStatus("twitter", tt.status, "body")
			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.retryable, err.IsRetryable())
			assert.Equal(t, "twitter", err.Platform)
		})
	}
}

func TestFromHTTPStatusSuccessIsNil(t *testing.T) {
	assert.Nil(t, FromHTTPStatus("twitter", http.StatusOK, ""))
	assert.Nil(t, FromHTTPStatus("twitter", http.StatusCreated, ""))
}
