// Package linkedin provides the LinkedIn platform adapter.
package linkedin

import (
	"context"
	"time"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/platforms/common"
)

const (
	platformName  = "linkedin"
	maxPostLength = 3000

	defaultEndpoint = "https://api.linkedin.com/v2/ugcPosts"
)

// Config holds the LinkedIn adapter configuration.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint" env:"LINKEDIN_ENDPOINT"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" env:"LINKEDIN_TIMEOUT"`
}

// Adapter implements the platform contract for LinkedIn.
type Adapter struct {
	*common.Base
}

// New creates a LinkedIn adapter.
func New(cfg Config, log logger.Logger) *Adapter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	caps := platform.Capability{
		Platform:           platformName,
		SupportedPostTypes: []content.PostType{content.PostTypePost, content.PostTypeVideo},
		RequirementsByType: map[content.PostType]platform.Requirements{
			content.PostTypePost: {
				MaxLength:         maxPostLength,
				AllowedMediaKinds: []content.MediaKind{content.MediaImage},
				MaxItems:          9,
			},
			content.PostTypeVideo: {
				MaxLength:         maxPostLength,
				MediaRequired:     true,
				AllowedMediaKinds: []content.MediaKind{content.MediaVideo},
				MinItems:          1,
				MaxItems:          1,
				MaxDuration:       10 * time.Minute,
			},
		},
		RateLimitsByType: map[content.PostType]platform.RateLimit{
			content.PostTypePost: {MaxCalls: 100, Window: 24 * time.Hour},
		},
	}

	return &Adapter{Base: common.NewBase(caps, endpoint, cfg.Timeout, log)}
}

// Format builds the UGC post payload. The visibility option passes
// through as platform metadata.
func (a *Adapter) Format(text string, media []content.MediaRef, postType content.PostType, options map[string]any) (*platform.FormattedPost, error) {
	if err := a.RequireSupported(postType); err != nil {
		return nil, err
	}
	if err := a.ValidateMedia(postType, media); err != nil {
		return nil, err
	}

	metadata := map[string]any{"char_limit": maxPostLength}
	if visibility, ok := options["visibility"].(string); ok {
		metadata["visibility"] = visibility
	}

	return &platform.FormattedPost{
		Platform: platformName,
		PostType: postType,
		Chunks:   []string{text},
		Media:    media,
		Metadata: metadata,
	}, nil
}

// Publish posts the formatted payload.
func (a *Adapter) Publish(ctx context.Context, post *platform.FormattedPost, cred platform.Credential) (*platform.PublishResponse, error) {
	return a.Do(ctx, post, cred)
}
