// Package platform provides the unified platform adapter contract and the
// capability model the orchestrator dispatches against.
package platform

import (
	"context"
	"time"

	"github.com/kart-io/publishhub/pkg/content"
)

// Adapter is the contract every platform implements. The orchestrator
// treats all platforms uniformly through this interface; platform rules
// (character limits, media cardinality, aspect ratios) stay local to one
// implementation.
type Adapter interface {
	// Name returns the platform identifier.
	Name() string

	// Capabilities returns the immutable capability descriptor.
	Capabilities() Capability

	// ValidateMedia checks the media list against the post type requirements.
	ValidateMedia(postType content.PostType, media []content.MediaRef) error

	// Format turns raw content into a platform-specific payload. It fails
	// with an unsupported-post-type or media-requirement error.
	Format(text string, media []content.MediaRef, postType content.PostType, options map[string]any) (*FormattedPost, error)

	// Publish performs the platform call for a formatted post.
	Publish(ctx context.Context, post *FormattedPost, cred Credential) (*PublishResponse, error)
}

// HealthChecker is optionally implemented by adapters that can report
// readiness. Adapters without it are assumed healthy.
type HealthChecker interface {
	IsHealthy(ctx context.Context) error
}

// Capability is the immutable per-platform descriptor, created once at
// process start and safe for concurrent reads.
type Capability struct {
	Platform           string                            `json:"platform"`
	SupportedPostTypes []content.PostType                `json:"supported_post_types"`
	RequirementsByType map[content.PostType]Requirements `json:"requirements_by_type"`
	RateLimitsByType   map[content.PostType]RateLimit    `json:"rate_limits_by_type"`
}

// Supports reports whether the platform supports a post type.
func (c Capability) Supports(postType content.PostType) bool {
	for _, pt := range c.SupportedPostTypes {
		if pt == postType {
			return true
		}
	}
	return false
}

// RequirementsFor returns the requirements for a post type.
func (c Capability) RequirementsFor(postType content.PostType) (Requirements, bool) {
	req, ok := c.RequirementsByType[postType]
	return req, ok
}

// Requirements are the structural constraints a platform imposes on one
// post type. Zero values mean "no constraint".
type Requirements struct {
	MaxLength         int                 `json:"max_length,omitempty"`
	MediaRequired     bool                `json:"media_required"`
	AllowedMediaKinds []content.MediaKind `json:"allowed_media_kinds,omitempty"`
	MinItems          int                 `json:"min_items,omitempty"`
	MaxItems          int                 `json:"max_items,omitempty"`
	MinDuration       time.Duration       `json:"min_duration,omitempty"`
	MaxDuration       time.Duration       `json:"max_duration,omitempty"`
	AspectRatio       string              `json:"aspect_ratio,omitempty"`
}

// AllowsKind reports whether a media kind is acceptable. An empty allow
// list accepts everything.
func (r Requirements) AllowsKind(kind content.MediaKind) bool {
	if len(r.AllowedMediaKinds) == 0 {
		return true
	}
	for _, k := range r.AllowedMediaKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// RateLimit describes the platform's publish rate limit for one post type.
type RateLimit struct {
	MaxCalls int           `json:"max_calls"`
	Window   time.Duration `json:"window"`
}

// Credential carries per-platform authentication material. Credentials are
// read-only per request; token refresh belongs to an external collaborator.
type Credential struct {
	AccessToken  string            `json:"access_token"`
	AccessSecret string            `json:"access_secret,omitempty"`
	ClientID     string            `json:"client_id,omitempty"`
	ClientSecret string            `json:"client_secret,omitempty"`
	Extra        map[string]string `json:"extra,omitempty"`
}

// IsZero reports whether no credential material is present.
func (c Credential) IsZero() bool {
	return c.AccessToken == "" && c.AccessSecret == "" && c.ClientID == "" && c.ClientSecret == "" && len(c.Extra) == 0
}

// FormattedPost is the adapter output: one platform-ready payload per
// platform per publish attempt. Chunks holds the split content for
// thread-style post types; single-chunk posts hold exactly one entry.
type FormattedPost struct {
	Platform string             `json:"platform"`
	PostType content.PostType   `json:"post_type"`
	Chunks   []string           `json:"chunks"`
	Media    []content.MediaRef `json:"media,omitempty"`
	Metadata map[string]any     `json:"metadata,omitempty"`
}

// PublishResponse is the raw result of a successful platform call.
type PublishResponse struct {
	ExternalID string `json:"external_id"`
	RawStatus  string `json:"raw_status,omitempty"`
}
