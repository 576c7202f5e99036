// Package tiktok provides the TikTok platform adapter. TikTok accepts
// only media posts: a single 3-600 second video or a 2-35 image
// slideshow.
package tiktok

import (
	"context"
	"time"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/platforms/common"
)

const (
	platformName = "tiktok"

	// maxCaptionLength is the video caption limit.
	maxCaptionLength = 2200

	defaultEndpoint = "https://open.tiktokapis.com/v2/post/publish/video/init/"
)

// Config holds the TikTok adapter configuration.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint" env:"TIKTOK_ENDPOINT"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" env:"TIKTOK_TIMEOUT"`
}

// Adapter implements the platform contract for TikTok.
type Adapter struct {
	*common.Base
}

// New creates a TikTok adapter.
func New(cfg Config, log logger.Logger) *Adapter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	caps := platform.Capability{
		Platform:           platformName,
		SupportedPostTypes: []content.PostType{content.PostTypeVideo, content.PostTypeSlideshow},
		RequirementsByType: map[content.PostType]platform.Requirements{
			content.PostTypeVideo: {
				MaxLength:         maxCaptionLength,
				MediaRequired:     true,
				AllowedMediaKinds: []content.MediaKind{content.MediaVideo},
				MinItems:          1,
				MaxItems:          1,
				MinDuration:       3 * time.Second,
				MaxDuration:       600 * time.Second,
				AspectRatio:       "9:16",
			},
			content.PostTypeSlideshow: {
				MaxLength:         maxCaptionLength,
				MediaRequired:     true,
				AllowedMediaKinds: []content.MediaKind{content.MediaImage},
				MinItems:          2,
				MaxItems:          35,
			},
		},
		RateLimitsByType: map[content.PostType]platform.RateLimit{
			content.PostTypeVideo:     {MaxCalls: 15, Window: 24 * time.Hour},
			content.PostTypeSlideshow: {MaxCalls: 15, Window: 24 * time.Hour},
		},
	}

	return &Adapter{Base: common.NewBase(caps, endpoint, cfg.Timeout, log)}
}

// Format builds the upload payload for a video or slideshow post.
func (a *Adapter) Format(text string, media []content.MediaRef, postType content.PostType, options map[string]any) (*platform.FormattedPost, error) {
	if err := a.RequireSupported(postType); err != nil {
		return nil, err
	}
	if err := a.ValidateMedia(postType, media); err != nil {
		return nil, err
	}

	metadata := map[string]any{"media_count": len(media)}
	if privacy, ok := options["privacy_level"].(string); ok {
		metadata["privacy_level"] = privacy
	}

	return &platform.FormattedPost{
		Platform: platformName,
		PostType: postType,
		Chunks:   []string{text},
		Media:    media,
		Metadata: metadata,
	}, nil
}

// Publish initiates the upload for the formatted payload.
func (a *Adapter) Publish(ctx context.Context, post *platform.FormattedPost, cred platform.Credential) (*platform.PublishResponse, error) {
	return a.Do(ctx, post, cred)
}
