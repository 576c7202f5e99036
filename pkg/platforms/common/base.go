// Package common provides the shared adapter plumbing: capability checks,
// media validation, rate limiting, and the HTTP publish call every
// platform adapter delegates to.
package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/errors"
	"github.com/kart-io/publishhub/pkg/logger"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/utils/ratelimit"
	"github.com/kart-io/publishhub/pkg/validation"
)

// DefaultTimeout bounds a single platform HTTP call.
const DefaultTimeout = 30 * time.Second

// Base carries the behavior shared by all platform adapters. Adapters
// embed it and keep only their formatting rules local.
type Base struct {
	caps     platform.Capability
	endpoint string
	client   *http.Client
	limiters map[content.PostType]*ratelimit.TokenBucket
	logger   logger.Logger
}

// NewBase creates the shared adapter core. Rate limiters are built from
// the capability's declared limits.
func NewBase(caps platform.Capability, endpoint string, timeout time.Duration, log logger.Logger) *Base {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = logger.Discard
	}

	limiters := make(map[content.PostType]*ratelimit.TokenBucket, len(caps.RateLimitsByType))
	for postType, limit := range caps.RateLimitsByType {
		if limit.MaxCalls > 0 && limit.Window > 0 {
			limiters[postType] = ratelimit.NewTokenBucket(limit.MaxCalls, limit.Window)
		}
	}

	return &Base{
		caps:     caps,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiters: limiters,
		logger:   log,
	}
}

// Name returns the platform identifier.
func (b *Base) Name() string { return b.caps.Platform }

// Capabilities returns the immutable capability descriptor.
func (b *Base) Capabilities() platform.Capability { return b.caps }

// IsHealthy reports whether the adapter can reach its platform. An
// adapter with no configured endpoint cannot publish.
func (b *Base) IsHealthy(_ context.Context) error {
	if b.endpoint == "" {
		return errors.New(errors.ErrInvalidConfig, "no endpoint configured").WithPlatform(b.caps.Platform)
	}
	return nil
}

// RequireSupported fails when the post type is outside the supported set.
func (b *Base) RequireSupported(postType content.PostType) error {
	if !b.caps.Supports(postType) {
		return errors.NewUnsupportedPostTypeError(b.caps.Platform, string(postType))
	}
	return nil
}

// ValidateMedia checks the media list against the post type requirements.
func (b *Base) ValidateMedia(postType content.PostType, media []content.MediaRef) error {
	if err := b.RequireSupported(postType); err != nil {
		return err
	}

	issues := validation.Validate(b.caps, postType, "", media)
	for _, issue := range issues {
		if issue.Severity == validation.SeverityError && issue.Field != "content" {
			return errors.New(errors.ErrMediaRequirement, issue.Message).WithPlatform(b.caps.Platform)
		}
	}
	return nil
}

// wireResponse is the minimal response shape shared by the platform
// endpoints the adapters talk to.
type wireResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Do publishes a formatted post by POSTing it as JSON to the platform
// endpoint, after the credential and rate limit checks. HTTP statuses are
// mapped onto the error taxonomy so the retry classifier can act on them.
func (b *Base) Do(ctx context.Context, post *platform.FormattedPost, cred platform.Credential) (*platform.PublishResponse, error) {
	if cred.AccessToken == "" {
		return nil, errors.NewAuthenticationError(b.caps.Platform, "missing access token")
	}

	if limiter, ok := b.limiters[post.PostType]; ok && !limiter.Allow() {
		return nil, errors.NewRateLimitError(b.caps.Platform, limiter.RetryIn())
	}

	body, err := json.Marshal(post)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "marshal payload").WithPlatform(b.caps.Platform)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "create request").WithPlatform(b.caps.Platform)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	b.logger.Debug("publishing", "platform", b.caps.Platform, "post_type", post.PostType, "chunks", len(post.Chunks))

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errors.Classify(err).WithPlatform(b.caps.Platform)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if httpErr := errors.FromHTTPStatus(b.caps.Platform, resp.StatusCode, string(respBody)); httpErr != nil {
		return nil, httpErr
	}

	var wire wireResponse
	if err := json.Unmarshal(respBody, &wire); err != nil || wire.ID == "" {
		// Endpoint accepted the post but returned no usable ID.
		wire.ID = fmt.Sprintf("%s_%d", b.caps.Platform, time.Now().UnixNano())
	}
	if wire.Status == "" {
		wire.Status = resp.Status
	}

	return &platform.PublishResponse{ExternalID: wire.ID, RawStatus: wire.Status}, nil
}

// RequireOption pulls a required string option from the per-platform
// option bag, failing with a validation error when absent.
func (b *Base) RequireOption(options map[string]any, key string) (string, error) {
	if v, ok := options[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s, nil
		}
	}
	return "", errors.NewValidationError(b.caps.Platform, fmt.Sprintf("option %q is required", key))
}
