package errors

import (
	"fmt"
	"time"
)

// PublishError is the structured error carried through the orchestrator.
// Every failure that reaches a PublishOutcome is a PublishError; foreign
// errors are classified into one at the dispatch boundary.
type PublishError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Platform string    `json:"platform,omitempty"`

	// Cause is the original error, not serialized.
	Cause error `json:"-"`

	// Retry information.
	Retryable    bool           `json:"retryable"`
	RetryAfter   *time.Duration `json:"retry_after,omitempty"`
	AttemptCount int            `json:"attempt_count,omitempty"`
	Exhausted    bool           `json:"exhausted,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface.
func (e *PublishError) Error() string {
	if e.Platform != "" {
		return fmt.Sprintf("%s: %s (platform: %s)", e.Code, e.Message, e.Platform)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *PublishError) Unwrap() error {
	return e.Cause
}

// Is matches PublishErrors by code.
func (e *PublishError) Is(target error) bool {
	if targetErr, ok := target.(*PublishError); ok {
		return e.Code == targetErr.Code
	}
	return false
}

// IsRetryable reports whether the failure may succeed on a later attempt.
func (e *PublishError) IsRetryable() bool {
	return e.Retryable
}

// WithCause attaches the original error.
func (e *PublishError) WithCause(cause error) *PublishError {
	e.Cause = cause
	return e
}

// WithPlatform sets the platform the error belongs to.
func (e *PublishError) WithPlatform(platform string) *PublishError {
	e.Platform = platform
	return e
}

// WithRetryAfter sets the platform-suggested retry delay.
func (e *PublishError) WithRetryAfter(delay time.Duration) *PublishError {
	e.RetryAfter = &delay
	return e
}

// WithAttemptCount records how many attempts have been made.
func (e *PublishError) WithAttemptCount(count int) *PublishError {
	e.AttemptCount = count
	return e
}

// MarkExhausted records that the bounded retry budget was spent. The code
// keeps its retryable kind so an operator can re-submit, but the attempt
// itself is terminal.
func (e *PublishError) MarkExhausted() *PublishError {
	e.Exhausted = true
	return e
}

// New creates a new PublishError.
func New(code ErrorCode, message string) *PublishError {
	return &PublishError{
		Code:      code,
		Message:   message,
		Retryable: CodeIsRetryable(code),
		Timestamp: time.Now(),
	}
}

// Newf creates a new PublishError with a formatted message.
func Newf(code ErrorCode, format string, args ...any) *PublishError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an existing error with a PublishError.
func Wrap(err error, code ErrorCode, message string) *PublishError {
	return New(code, message).WithCause(err)
}

// Wrapf wraps an existing error with a formatted message.
func Wrapf(err error, code ErrorCode, format string, args ...any) *PublishError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// Convenience constructors.

// NewConfigurationError creates an unknown-platform configuration error.
func NewConfigurationError(platform string) *PublishError {
	return Newf(ErrUnknownPlatform, "platform %q is not registered", platform).WithPlatform(platform)
}

// NewValidationError creates a validation error for a platform.
func NewValidationError(platform, message string) *PublishError {
	return New(ErrValidationFailed, message).WithPlatform(platform)
}

// NewUnsupportedPostTypeError creates an unsupported-post-type error.
func NewUnsupportedPostTypeError(platform, postType string) *PublishError {
	return Newf(ErrUnsupportedPostType, "post type %q is not supported", postType).WithPlatform(platform)
}

// NewAuthenticationError creates an authentication error.
func NewAuthenticationError(platform, message string) *PublishError {
	return New(ErrAuthenticationFailed, message).WithPlatform(platform)
}

// NewTimeoutError creates a platform timeout error.
func NewTimeoutError(platform string) *PublishError {
	return New(ErrPlatformTimeout, "platform call timed out").WithPlatform(platform)
}

// NewRateLimitError creates a rate limit error with a suggested delay.
func NewRateLimitError(platform string, retryAfter time.Duration) *PublishError {
	return New(ErrRateLimited, "rate limit exceeded").
		WithPlatform(platform).
		WithRetryAfter(retryAfter)
}
