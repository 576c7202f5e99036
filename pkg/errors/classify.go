package errors

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
)

// transientSignatures are message fragments that mark an otherwise
// unrecognized error as transient.
var transientSignatures = []string{
	"timeout",
	"timed out",
	"connection refused",
	"connection reset",
	"temporarily unavailable",
	"temporary failure",
	"service unavailable",
	"too many requests",
	"rate limit",
	"network",
	"eof",
}

// Classify converts an arbitrary error into a PublishError. Already
// classified errors pass through untouched; everything else is mapped
// conservatively: non-retryable unless its shape or message matches a
// transient signature.
func Classify(err error) *PublishError {
	if err == nil {
		return nil
	}

	var pubErr *PublishError
	if errors.As(err, &pubErr) {
		return pubErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrPlatformTimeout, "operation deadline exceeded")
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(err, ErrCancelled, "operation cancelled")
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Wrap(err, ErrPlatformTimeout, "network timeout")
		}
		return Wrap(err, ErrConnectionFailed, "network failure")
	}

	if MatchesTransientSignature(err) {
		return Wrap(err, ErrPlatformUnavailable, err.Error())
	}

	return Wrap(err, ErrUnknown, err.Error())
}

// IsRetryable reports whether an error should be retried. Foreign errors
// are classified first.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return Classify(err).IsRetryable()
}

// MatchesTransientSignature reports whether the error message contains a
// recognized transient-failure fragment.
func MatchesTransientSignature(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range transientSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

// FromHTTPStatus maps an HTTP response status to a PublishError, or nil
// for success statuses.
func FromHTTPStatus(platform string, status int, body string) *PublishError {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Newf(ErrAuthenticationFailed, "status %d: %s", status, body).WithPlatform(platform)
	case status == http.StatusTooManyRequests:
		return Newf(ErrRateLimited, "status %d: %s", status, body).WithPlatform(platform)
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return Newf(ErrPlatformTimeout, "status %d: %s", status, body).WithPlatform(platform)
	case status >= 500:
		return Newf(ErrPlatformUnavailable, "status %d: %s", status, body).WithPlatform(platform)
	default:
		return Newf(ErrPlatformRejected, "status %d: %s", status, body).WithPlatform(platform)
	}
}
