// Package instagram provides the Instagram platform adapter. Instagram is
// media-first: every post type requires media, carousels take 2-10 items,
// and reels take a single 3-90 second 9:16 video.
package instagram

import (
	"context"
	"time"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/platforms/common"
)

const (
	platformName = "instagram"

	// maxCaptionLength is the caption limit shared by feed, reel and
	// carousel posts.
	maxCaptionLength = 2200

	defaultEndpoint = "https://graph.instagram.com/me/media"
)

// Config holds the Instagram adapter configuration.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint" env:"INSTAGRAM_ENDPOINT"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" env:"INSTAGRAM_TIMEOUT"`
}

// Adapter implements the platform contract for Instagram.
type Adapter struct {
	*common.Base
}

// New creates an Instagram adapter.
func New(cfg Config, log logger.Logger) *Adapter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	caps := platform.Capability{
		Platform: platformName,
		SupportedPostTypes: []content.PostType{
			content.PostTypePost,
			content.PostTypeStory,
			content.PostTypeReel,
			content.PostTypeCarousel,
		},
		RequirementsByType: map[content.PostType]platform.Requirements{
			content.PostTypePost: {
				MaxLength:         maxCaptionLength,
				MediaRequired:     true,
				AllowedMediaKinds: []content.MediaKind{content.MediaImage, content.MediaVideo},
				MinItems:          1,
				MaxItems:          1,
			},
			content.PostTypeStory: {
				MediaRequired:     true,
				AllowedMediaKinds: []content.MediaKind{content.MediaImage, content.MediaVideo},
				MinItems:          1,
				MaxItems:          1,
				MaxDuration:       60 * time.Second,
				AspectRatio:       "9:16",
			},
			content.PostTypeReel: {
				MaxLength:         maxCaptionLength,
				MediaRequired:     true,
				AllowedMediaKinds: []content.MediaKind{content.MediaVideo},
				MinItems:          1,
				MaxItems:          1,
				MinDuration:       3 * time.Second,
				MaxDuration:       90 * time.Second,
				AspectRatio:       "9:16",
			},
			content.PostTypeCarousel: {
				MaxLength:         maxCaptionLength,
				MediaRequired:     true,
				AllowedMediaKinds: []content.MediaKind{content.MediaImage, content.MediaVideo},
				MinItems:          2,
				MaxItems:          10,
			},
		},
		RateLimitsByType: map[content.PostType]platform.RateLimit{
			content.PostTypePost:     {MaxCalls: 25, Window: time.Hour},
			content.PostTypeStory:    {MaxCalls: 25, Window: time.Hour},
			content.PostTypeReel:     {MaxCalls: 25, Window: time.Hour},
			content.PostTypeCarousel: {MaxCalls: 25, Window: time.Hour},
		},
	}

	return &Adapter{Base: common.NewBase(caps, endpoint, cfg.Timeout, log)}
}

// Format builds the media container payload for the requested post type.
func (a *Adapter) Format(text string, media []content.MediaRef, postType content.PostType, options map[string]any) (*platform.FormattedPost, error) {
	if err := a.RequireSupported(postType); err != nil {
		return nil, err
	}
	if err := a.ValidateMedia(postType, media); err != nil {
		return nil, err
	}

	metadata := map[string]any{"media_count": len(media)}
	if postType == content.PostTypeReel {
		metadata["required_specs"] = "video, 3-90s, 9:16"
	}
	if shareToFeed, ok := options["share_to_feed"].(bool); ok {
		metadata["share_to_feed"] = shareToFeed
	}

	return &platform.FormattedPost{
		Platform: platformName,
		PostType: postType,
		Chunks:   []string{text},
		Media:    media,
		Metadata: metadata,
	}, nil
}

// Publish creates and publishes the media container.
func (a *Adapter) Publish(ctx context.Context, post *platform.FormattedPost, cred platform.Credential) (*platform.PublishResponse, error) {
	return a.Do(ctx, post, cred)
}
