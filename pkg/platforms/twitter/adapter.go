// Package twitter provides the X (Twitter) platform adapter: 280
// character posts, four-image attachment limit, and thread support for
// longer content.
package twitter

import (
	"context"
	"time"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/platforms/common"
)

const (
	platformName = "twitter"

	// maxPostLength is the character limit of a single post.
	maxPostLength = 280

	defaultEndpoint = "https://api.twitter.com/2/tweets"
)

// Config holds the Twitter adapter configuration.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint" env:"TWITTER_ENDPOINT"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" env:"TWITTER_TIMEOUT"`
}

// Adapter implements the platform contract for X (Twitter).
type Adapter struct {
	*common.Base
}

// New creates a Twitter adapter.
func New(cfg Config, log logger.Logger) *Adapter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	caps := platform.Capability{
		Platform:           platformName,
		SupportedPostTypes: []content.PostType{content.PostTypePost, content.PostTypeThread},
		RequirementsByType: map[content.PostType]platform.Requirements{
			content.PostTypePost: {
				MaxLength:         maxPostLength,
				AllowedMediaKinds: []content.MediaKind{content.MediaImage, content.MediaGIF, content.MediaVideo},
				MaxItems:          4,
			},
			content.PostTypeThread: {
				MaxLength:         maxPostLength,
				AllowedMediaKinds: []content.MediaKind{content.MediaImage, content.MediaGIF},
				MaxItems:          4,
			},
		},
		RateLimitsByType: map[content.PostType]platform.RateLimit{
			content.PostTypePost:   {MaxCalls: 200, Window: 15 * time.Minute},
			content.PostTypeThread: {MaxCalls: 50, Window: 15 * time.Minute},
		},
	}

	return &Adapter{Base: common.NewBase(caps, endpoint, cfg.Timeout, log)}
}

// Format builds the platform payload. Thread posts split content at word
// boundaries into chunks of at most 280 characters; plain posts keep a
// single chunk.
func (a *Adapter) Format(text string, media []content.MediaRef, postType content.PostType, options map[string]any) (*platform.FormattedPost, error) {
	if err := a.RequireSupported(postType); err != nil {
		return nil, err
	}
	if err := a.ValidateMedia(postType, media); err != nil {
		return nil, err
	}

	chunks := []string{text}
	if postType == content.PostTypeThread {
		chunks = content.SplitThread(text, maxPostLength)
	}

	metadata := map[string]any{"char_limit": maxPostLength}
	if replySettings, ok := options["reply_settings"].(string); ok {
		metadata["reply_settings"] = replySettings
	}

	return &platform.FormattedPost{
		Platform: platformName,
		PostType: postType,
		Chunks:   chunks,
		Media:    media,
		Metadata: metadata,
	}, nil
}

// Publish posts the formatted payload.
func (a *Adapter) Publish(ctx context.Context, post *platform.FormattedPost, cred platform.Credential) (*platform.PublishResponse, error) {
	return a.Do(ctx, post, cred)
}
