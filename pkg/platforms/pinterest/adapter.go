// Package pinterest provides the Pinterest platform adapter.
package pinterest

import (
	"context"
	"time"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/platforms/common"
)

const (
	platformName = "pinterest"

	// maxNoteLength is the pin description limit.
	maxNoteLength = 500

	defaultEndpoint = "https://api.pinterest.com/v5/pins"
)

// Config holds the Pinterest adapter configuration.
type Config struct {
	Endpoint string        `json:"endpoint" yaml:"endpoint" env:"PINTEREST_ENDPOINT"`
	Timeout  time.Duration `json:"timeout" yaml:"timeout" env:"PINTEREST_TIMEOUT"`
}

// Adapter implements the platform contract for Pinterest.
type Adapter struct {
	*common.Base
}

// New creates a Pinterest adapter.
func New(cfg Config, log logger.Logger) *Adapter {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}

	caps := platform.Capability{
		Platform:           platformName,
		SupportedPostTypes: []content.PostType{content.PostTypePin},
		RequirementsByType: map[content.PostType]platform.Requirements{
			content.PostTypePin: {
				MaxLength:         maxNoteLength,
				MediaRequired:     true,
				AllowedMediaKinds: []content.MediaKind{content.MediaImage, content.MediaVideo},
				MinItems:          1,
				MaxItems:          1,
			},
		},
		RateLimitsByType: map[content.PostType]platform.RateLimit{
			content.PostTypePin: {MaxCalls: 100, Window: time.Hour},
		},
	}

	return &Adapter{Base: common.NewBase(caps, endpoint, cfg.Timeout, log)}
}

// Format builds the pin payload. The board_id option is required: every
// pin lives on a board.
func (a *Adapter) Format(text string, media []content.MediaRef, postType content.PostType, options map[string]any) (*platform.FormattedPost, error) {
	if err := a.RequireSupported(postType); err != nil {
		return nil, err
	}
	if err := a.ValidateMedia(postType, media); err != nil {
		return nil, err
	}

	boardID, err := a.RequireOption(options, "board_id")
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{"board_id": boardID}
	if link, ok := options["link"].(string); ok {
		metadata["link"] = link
	}

	return &platform.FormattedPost{
		Platform: platformName,
		PostType: postType,
		Chunks:   []string{text},
		Media:    media,
		Metadata: metadata,
	}, nil
}

// Publish creates the pin.
func (a *Adapter) Publish(ctx context.Context, post *platform.FormattedPost, cred platform.Credential) (*platform.PublishResponse, error) {
	return a.Do(ctx, post, cred)
}
