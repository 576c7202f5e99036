// Package mastodon provides the Mastodon platform adapter: 500 character
// statuses with optional content warnings and thread support.
package mastodon

import (
	"context"
	"time"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/platforms/common"
)

const (
	platformName  = "mastodon"
	maxPostLength = 500
)

// Config holds the Mastodon adapter configuration. Endpoint is the
// instance base URL; Mastodon has no single canonical server.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint" env:"MASTODON_ENDPOINT"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" env:"MASTODON_TIMEOUT"`
}

// Adapter implements the platform contract for Mastodon.
type Adapter struct {
	*common.Base
}

// New creates a Mastodon adapter.
func New(cfg Config, log logger.Logger) *Adapter {
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
			content.PostTypePost: {MaxCalls: 300, Window: 5 * time.Minute},
		},
	}

	return &Adapter{Base: common.NewBase(caps, cfg.Endpoint, cfg.Timeout, log)}
}

// Format builds the status payload, splitting thread content at 500
// characters. The visibility and spoiler_text options pass through as
// platform metadata.
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
	if visibility, ok := options["visibility"].(string); ok {
		metadata["visibility"] = visibility
	}
	if spoiler, ok := options["spoiler_text"].(string); ok {
		metadata["spoiler_text"] = spoiler
	}

	return &platform.FormattedPost{
		Platform: platformName,
		PostType: postType,
		Chunks:   chunks,
		Media:    media,
		Metadata: metadata,
	}, nil
}

// Publish posts the formatted status.
func (a *Adapter) Publish(ctx context.Context, post *platform.FormattedPost, cred platform.Credential) (*platform.PublishResponse, error) {
	return a.Do(ctx, post, cred)
}
