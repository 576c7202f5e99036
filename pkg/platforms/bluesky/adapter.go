// Package bluesky provides the Bluesky platform adapter.
package bluesky

import (
	"context"
	"time"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/platforms/common"
)

const (
	platformName  = "bluesky"
	maxPostLength = 300

	defaultEndpoint = "https://bsky.social/xrpc/com.atproto.repo.createRecord"
)

// Config holds the Bluesky adapter configuration.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint" env:"BLUESKY_ENDPOINT"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" env:"BLUESKY_TIMEOUT"`
}

// Adapter implements the platform contract for Bluesky.
type Adapter struct {
	*common.Base
}

// New creates a Bluesky adapter.
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
				AllowedMediaKinds: []content.MediaKind{content.MediaImage},
				MaxItems:          4,
			},
			content.PostTypeThread: {
				MaxLength:         maxPostLength,
				AllowedMediaKinds: []content.MediaKind{content.MediaImage},
				MaxItems:          4,
			},
		},
		RateLimitsByType: map[content.PostType]platform.RateLimit{
			content.PostTypePost: {MaxCalls: 100, Window: 5 * time.Minute},
		},
	}

	return &Adapter{Base: common.NewBase(caps, endpoint, cfg.Timeout, log)}
}

// Format builds the record payload, splitting thread content at 300
// characters.
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

	return &platform.FormattedPost{
		Platform: platformName,
		PostType: postType,
		Chunks:   chunks,
		Media:    media,
		Metadata: map[string]any{"char_limit": maxPostLength},
	}, nil
}

// Publish posts the formatted record.
func (a *Adapter) Publish(ctx context.Context, post *platform.FormattedPost, cred platform.Credential) (*platform.PublishResponse, error) {
	return a.Do(ctx, post, cred)
}
