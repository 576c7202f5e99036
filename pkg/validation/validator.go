// Package validation checks content and media against platform
// requirements. It is pure: the same checks back the pre-publish preview
// and the fan-out pre-flight gate.
package validation

import (
	"fmt"
	"unicode/utf8"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/platform"
)

// Severity classifies an issue.
type Severity string

const (
	// SeverityError blocks publishing to the platform.
	SeverityError Severity = "error"
	// SeverityWarning is advisory and never blocks.
	SeverityWarning Severity = "warning"
)

// Issue is one actionable validation finding.
type Issue struct {
	Severity Severity `json:"severity"`
	Field    string   `json:"field"`
	Message  string   `json:"message"`
}

// warnThreshold is the fraction of the length limit past which a warning
// is raised.
const warnThreshold = 0.9

// Validate checks text and media against a platform capability for one
// post type and returns all findings. An empty slice means the post is
// publishable as-is.
func Validate(cap platform.Capability, postType content.PostType, text string, media []content.MediaRef) []Issue {
	var issues []Issue

	if !cap.Supports(postType) {
		return append(issues, Issue{
			Severity: SeverityError,
			Field:    "postType",
			Message:  fmt.Sprintf("%s does not support post type %q", cap.Platform, postType),
		})
	}

	req, ok := cap.RequirementsFor(postType)
	if !ok {
		return issues
	}

	issues = append(issues, checkLength(cap.Platform, postType, req, text)...)
	issues = append(issues, checkMedia(req, media)...)
	return issues
}

// HasErrors reports whether any issue is error-severity.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

func checkLength(platformName string, postType content.PostType, req platform.Requirements, text string) []Issue {
	if req.MaxLength <= 0 {
		return nil
	}

	// Thread-style types split long content instead of rejecting it.
	if postType == content.PostTypeThread {
		return nil
	}

	length := utf8.RuneCountInString(text)
	switch {
	case length > req.MaxLength:
		return []Issue{{
			Severity: SeverityError,
			Field:    "content",
			Message:  fmt.Sprintf("content length %d exceeds %s limit of %d", length, platformName, req.MaxLength),
		}}
	case float64(length) > float64(req.MaxLength)*warnThreshold:
		return []Issue{{
			Severity: SeverityWarning,
			Field:    "content",
			Message:  fmt.Sprintf("content length %d is above %.0f%% of the %d limit", length, warnThreshold*100, req.MaxLength),
		}}
	}
	return nil
}

func checkMedia(req platform.Requirements, media []content.MediaRef) []Issue {
	var issues []Issue

	if req.MediaRequired && len(media) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Field:    "media",
			Message:  "post type requires media",
		})
		return issues
	}

	if req.MinItems > 0 && len(media) < req.MinItems {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Field:    "media",
			Message:  fmt.Sprintf("requires at least %d items, got %d", req.MinItems, len(media)),
		})
	}
	if req.MaxItems > 0 && len(media) > req.MaxItems {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Field:    "media",
			Message:  fmt.Sprintf("allows at most %d items, got %d", req.MaxItems, len(media)),
		})
	}

	for i, m := range media {
		if !req.AllowsKind(m.Kind) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Field:    fmt.Sprintf("media[%d]", i),
				Message:  fmt.Sprintf("media kind %q is not allowed", m.Kind),
			})
			continue
		}

		if m.IsVideo() {
			if req.MinDuration > 0 && m.Duration > 0 && m.Duration < req.MinDuration {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Field:    fmt.Sprintf("media[%d]", i),
					Message:  fmt.Sprintf("video duration %s is below the minimum %s", m.Duration, req.MinDuration),
				})
			}
			if req.MaxDuration > 0 && m.Duration > req.MaxDuration {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Field:    fmt.Sprintf("media[%d]", i),
					Message:  fmt.Sprintf("video duration %s exceeds the maximum %s", m.Duration, req.MaxDuration),
				})
			}
		}

		if req.AspectRatio != "" && m.AspectRatio != "" && m.AspectRatio != req.AspectRatio {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Field:    fmt.Sprintf("media[%d]", i),
				Message:  fmt.Sprintf("aspect ratio %s differs from the recommended %s", m.AspectRatio, req.AspectRatio),
			})
		}
	}

	return issues
}
