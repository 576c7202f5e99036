package publishhub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/errors"
	"github.com/kart-io/publishhub/pkg/platform"
	"github.com/kart-io/publishhub/pkg/publisher"
	"github.com/kart-io/publishhub/pkg/tracker"
)

func newTestClient(t *testing.T, adapters ...*platform.MockAdapter) *Client {
	t.Helper()

	opts := []Option{WithRetryPolicy(errors.NoRetryPolicy{})}
	for _, adapter := range adapters {
		opts = append(opts, WithAdapter(adapter))
	}

	client, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientRegistersBuiltinPlatforms(t *testing.T) {
	client := newTestClient(t)

	platforms := client.Platforms()
	for _, want := range []string{"twitter", "mastodon", "bluesky", "instagram", "facebook", "linkedin", "tiktok", "pinterest"} {
		assert.Contains(t, platforms, want)
	}
}

func TestClientPublishTracksLifecycle(t *testing.T) {
	mock := platform.NewMockAdapter("mocknet", 280)
	client := newTestClient(t, mock)
	ctx := context.Background()

	result, err := client.Publish(ctx, &publisher.Request{
		Text:            "hello",
		PostType:        content.PostTypePost,
		TargetPlatforms: []string{"mocknet"},
		Credentials:     map[string]platform.Credential{"mocknet": {AccessToken: "tok"}},
	})
	require.NoError(t, err)
	assert.Equal(t, publisher.ResultSuccess, result.Status)

	records, err := client.Records(ctx, tracker.StatusPublished, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, result.RequestID, records[0].RequestID)
}

func TestClientPublishAsync(t *testing.T) {
	mock := platform.NewMockAdapter("mocknet", 280)
	client := newTestClient(t, mock)
	ctx := context.Background()

	jobID, err := client.PublishAsync(ctx, &publisher.Request{
		Text:            "queued hello",
		PostType:        content.PostTypePost,
		TargetPlatforms: []string{"mocknet"},
		Credentials:     map[string]platform.Credential{"mocknet": {AccessToken: "tok"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	require.Eventually(t, func() bool {
		return mock.PublishCalls() == 1
	}, 5*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		records, err := client.Records(ctx, tracker.StatusPublished, 0)
		return err == nil && len(records) == 1
	}, 5*time.Second, 20*time.Millisecond)
}

func TestClientPreview(t *testing.T) {
	client := newTestClient(t)

	long := make([]byte, 0, 600)
	for i := 0; i < 120; i++ {
		long = append(long, []byte("word ")...)
	}

	posts, failures := client.Preview(&publisher.Request{
		Text:            string(long),
		PostType:        content.PostTypeThread,
		TargetPlatforms: []string{"twitter", "nosuch"},
	})

	require.Contains(t, posts, "twitter")
	assert.Greater(t, len(posts["twitter"].Chunks), 1)
	assert.Contains(t, failures, "nosuch")
}

func TestClientCapabilities(t *testing.T) {
	client := newTestClient(t)

	caps, err := client.Capabilities("twitter")
	require.NoError(t, err)
	assert.Equal(t, "twitter", caps.Platform)
	assert.True(t, caps.Supports(content.PostTypeThread))

	req, ok := caps.RequirementsFor(content.PostTypePost)
	require.True(t, ok)
	assert.Equal(t, 280, req.MaxLength)

	_, err = client.Capabilities("nosuch")
	assert.Error(t, err)
}
