// Package facebook provides the Facebook page platform adapter.
package facebook

import (
	"context"
	"time"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/platforms/common"
)

const (
	platformName  = "facebook"
	maxPostLength = 63206

	defaultEndpoint = "https://graph.facebook.com/v19.0/feed"
)

// Config holds the Facebook adapter configuration.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint" env:"FACEBOOK_ENDPOINT"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" env:"FACEBOOK_TIMEOUT"`
}

// Adapter implements the platform contract for Facebook pages.
type Adapter struct {
	*common.Base
}

// New creates a Facebook adapter.
func New(cfg Config, log logger.Logger) *Adapter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	caps := platform.Capability{
		Platform:           platformName,
		SupportedPostTypes: []content.PostType{content.PostTypePost, content.PostTypeStory, content.PostTypeReel},
		RequirementsByType: map[content.PostType]platform.Requirements{
			content.PostTypePost: {
				MaxLength:         maxPostLength,
				AllowedMediaKinds: []content.MediaKind{content.MediaImage, content.MediaGIF, content.MediaVideo},
				MaxItems:          10,
			},
			content.PostTypeStory: {
				MediaRequired:     true,
				AllowedMediaKinds: []content.MediaKind{content.MediaImage, content.MediaVideo},
				MinItems:          1,
				MaxItems:          1,
			},
			content.PostTypeReel: {
				MaxLength:         maxPostLength,
				MediaRequired:     true,
				AllowedMediaKinds: []content.MediaKind{content.MediaVideo},
				MinItems:          1,
				MaxItems:          1,
				MinDuration:       3 * time.Second,
				MaxDuration:       90 * time.Second,
				AspectRatio:       "9:16",
			},
		},
		RateLimitsByType: map[content.PostType]platform.RateLimit{
			content.PostTypePost: {MaxCalls: 200, Window: time.Hour},
		},
	}

	return &Adapter{Base: common.NewBase(caps, endpoint, cfg.Timeout, log)}
}

// Format builds the page post payload. The page_id option is required:
// page posts without a page have nowhere to go.
func (a *Adapter) Format(text string, media []content.MediaRef, postType content.PostType, options map[string]any) (*platform.FormattedPost, error) {
	if err := a.RequireSupported(postType); err != nil {
		return nil, err
	}
	if err := a.ValidateMedia(postType, media); err != nil {
		return nil, err
	}

	pageID, err := a.RequireOption(options, "page_id")
	if err != nil {
		return nil, err
	}

	return &platform.FormattedPost{
		Platform: platformName,
		PostType: postType,
		Chunks:   []string{text},
		Media:    media,
		Metadata: map[string]any{"page_id": pageID},
	}, nil
}

// Publish posts to the page feed.
func (a *Adapter) Publish(ctx context.Context, post *platform.FormattedPost, cred platform.Credential) (*platform.PublishResponse, error) {
	return a.Do(ctx, post, cred)
}
