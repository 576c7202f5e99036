// Package idgen generates the identifiers used across the orchestrator.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// RequestID returns a new publish request identifier.
func RequestID() string {
	return "req_" + uuid.NewString()
}

// PostID returns a tracker record identifier.
func PostID() string {
	return "post_" + uuid.NewString()
}

// MessageID returns a broker message identifier.
func MessageID() string {
	return uuid.NewString()
}

// Prefixed returns an identifier under an arbitrary prefix.
func Prefixed(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}
