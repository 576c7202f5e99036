// Package errors provides the error taxonomy and retry classification
// used by the publish orchestrator.
package errors

// ErrorCode represents a PublishHub error code.
type ErrorCode string

// Configuration error codes. Configuration problems are caught before
// any platform dispatch happens.
const (
	// ErrUnknownPlatform indicates a target platform that is not registered.
	ErrUnknownPlatform ErrorCode = "UNKNOWN_PLATFORM"

	// ErrInvalidConfig indicates invalid orchestrator or platform configuration.
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"

	// ErrInvalidRequest indicates a malformed publish request.
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST"
)

// Content error codes.
const (
	// ErrValidationFailed indicates content or media violates platform requirements.
	ErrValidationFailed ErrorCode = "VALIDATION_FAILED"

	// ErrUnsupportedPostType indicates the adapter does not support the requested post type.
	ErrUnsupportedPostType ErrorCode = "UNSUPPORTED_POST_TYPE"

	// ErrMediaRequirement indicates the media list violates the post type requirements.
	ErrMediaRequirement ErrorCode = "MEDIA_REQUIREMENT_VIOLATION"
)

// Platform error codes.
const (
	// ErrPlatformTimeout indicates a platform call timed out.
	ErrPlatformTimeout ErrorCode = "PLATFORM_TIMEOUT"

	// ErrConnectionFailed indicates the platform could not be reached.
	ErrConnectionFailed ErrorCode = "CONNECTION_FAILED"

	// ErrRateLimited indicates the platform throttled the request.
	ErrRateLimited ErrorCode = "RATE_LIMITED"

	// ErrPlatformUnavailable indicates a transient 5xx-class platform failure.
	ErrPlatformUnavailable ErrorCode = "PLATFORM_UNAVAILABLE"

	// ErrAuthenticationFailed indicates an invalid or expired credential.
	ErrAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"

	// ErrPlatformRejected indicates the platform rejected the payload outright.
	ErrPlatformRejected ErrorCode = "PLATFORM_REJECTED"
)

// System error codes.
const (
	// ErrInternal indicates an internal orchestrator error (caught panic included).
	ErrInternal ErrorCode = "INTERNAL_ERROR"

	// ErrUnknown indicates a caught error of unrecognized shape.
	ErrUnknown ErrorCode = "UNKNOWN_ERROR"

	// ErrCancelled indicates the operation was cancelled by the caller.
	ErrCancelled ErrorCode = "CANCELLED"
)

// ErrorCodeInfo provides classification metadata for an error code.
type ErrorCodeInfo struct {
	Code        ErrorCode `json:"code"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Retryable   bool      `json:"retryable"`
}

var errorCodeInfoMap = map[ErrorCode]ErrorCodeInfo{
	ErrUnknownPlatform: {
		Code: ErrUnknownPlatform, Category: "configuration",
		Description: "target platform is not registered", Retryable: false,
	},
	ErrInvalidConfig: {
		Code: ErrInvalidConfig, Category: "configuration",
		Description: "invalid configuration provided", Retryable: false,
	},
	ErrInvalidRequest: {
		Code: ErrInvalidRequest, Category: "configuration",
		Description: "publish request is malformed", Retryable: false,
	},
	ErrValidationFailed: {
		Code: ErrValidationFailed, Category: "validation",
		Description: "content or media violates platform requirements", Retryable: false,
	},
	ErrUnsupportedPostType: {
		Code: ErrUnsupportedPostType, Category: "validation",
		Description: "post type is not supported by the platform", Retryable: false,
	},
	ErrMediaRequirement: {
		Code: ErrMediaRequirement, Category: "validation",
		Description: "media list violates the post type requirements", Retryable: false,
	},
	ErrPlatformTimeout: {
		Code: ErrPlatformTimeout, Category: "platform",
		Description: "platform call timed out", Retryable: true,
	},
	ErrConnectionFailed: {
		Code: ErrConnectionFailed, Category: "platform",
		Description: "failed to reach the platform", Retryable: true,
	},
	ErrRateLimited: {
		Code: ErrRateLimited, Category: "platform",
		Description: "platform rate limit exceeded", Retryable: true,
	},
	ErrPlatformUnavailable: {
		Code: ErrPlatformUnavailable, Category: "platform",
		Description: "platform is temporarily unavailable", Retryable: true,
	},
	ErrAuthenticationFailed: {
		Code: ErrAuthenticationFailed, Category: "platform",
		Description: "credential is invalid or expired", Retryable: false,
	},
	ErrPlatformRejected: {
		Code: ErrPlatformRejected, Category: "platform",
		Description: "platform rejected the payload", Retryable: false,
	},
	ErrInternal: {
		Code: ErrInternal, Category: "system",
		Description: "internal orchestrator error", Retryable: false,
	},
	ErrUnknown: {
		Code: ErrUnknown, Category: "system",
		Description: "error of unrecognized shape", Retryable: false,
	},
	ErrCancelled: {
		Code: ErrCancelled, Category: "system",
		Description: "operation was cancelled", Retryable: false,
	},
}

// GetErrorCodeInfo returns classification metadata for an error code.
func GetErrorCodeInfo(code ErrorCode) ErrorCodeInfo {
	info, exists := errorCodeInfoMap[code]
	if !exists {
		return ErrorCodeInfo{
			Code:        code,
			Category:    "unknown",
			Description: "unknown error code",
			Retryable:   false,
		}
	}
	return info
}

// CodeIsRetryable reports whether an error code is retryable by default.
func CodeIsRetryable(code ErrorCode) bool {
	return GetErrorCodeInfo(code).Retryable
}

// GetCategory returns the category of an error code.
func GetCategory(code ErrorCode) string {
	return GetErrorCodeInfo(code).Category
}
