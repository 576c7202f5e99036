package platform

import (
	"context"
	"sync/atomic"

	"github.com/kart-io/publishhub/pkg/content"
)

// MockAdapter is a configurable adapter used by orchestrator tests.
type MockAdapter struct {
	PlatformName string
	Caps         Capability

	// FormatErr and PublishErr force failures when set.
	FormatErr  error
	PublishErr error

	// PublishFn overrides the default publish behavior when set.
	PublishFn func(ctx context.Context, post *FormattedPost, cred Credential) (*PublishResponse, error)

	// PanicOnPublish makes Publish panic, for isolation tests.
	PanicOnPublish bool

	formatCalls  atomic.Int64
	publishCalls atomic.Int64
}

// NewMockAdapter creates a mock adapter supporting plain posts with the
// given max length.
func NewMockAdapter(name string, maxLength int) *MockAdapter {
	return &MockAdapter{
		PlatformName: name,
		Caps: Capability{
			Platform:           name,
			SupportedPostTypes: []content.PostType{content.PostTypePost},
			RequirementsByType: map[content.PostType]Requirements{
				content.PostTypePost: {MaxLength: maxLength},
			},
		},
	}
}

// Name returns the platform identifier.
func (m *MockAdapter) Name() string { return m.PlatformName }

// Capabilities returns the configured capability descriptor.
func (m *MockAdapter) Capabilities() Capability { return m.Caps }

// ValidateMedia checks media against the configured requirements.
func (m *MockAdapter) ValidateMedia(postType content.PostType, media []content.MediaRef) error {
	return nil
}

// Format records the call and returns a single-chunk payload.
func (m *MockAdapter) Format(text string, media []content.MediaRef, postType content.PostType, options map[string]any) (*FormattedPost, error) {
	m.formatCalls.Add(1)
	if m.FormatErr != nil {
		return nil, m.FormatErr
	}
	return &FormattedPost{
		Platform: m.PlatformName,
		PostType: postType,
		Chunks:   []string{text},
		Media:    media,
		Metadata: options,
	}, nil
}

// Publish records the call and returns a deterministic external ID.
func (m *MockAdapter) Publish(ctx context.Context, post *FormattedPost, cred Credential) (*PublishResponse, error) {
	m.publishCalls.Add(1)
	if m.PanicOnPublish {
		panic("mock adapter publish panic")
	}
	if m.PublishFn != nil {
		return m.PublishFn(ctx, post, cred)
	}
	if m.PublishErr != nil {
		return nil, m.PublishErr
	}
	return &PublishResponse{ExternalID: m.PlatformName + "-1", RawStatus: "ok"}, nil
}

// FormatCalls returns how many times Format ran.
func (m *MockAdapter) FormatCalls() int64 { return m.formatCalls.Load() }

// PublishCalls returns how many times Publish ran.
func (m *MockAdapter) PublishCalls() int64 { return m.publishCalls.Load() }
