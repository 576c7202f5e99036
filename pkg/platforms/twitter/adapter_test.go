package twitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/errors"
	"github.com/kart-io/publishhub/pkg/platform"
)

func TestCapabilities(t *testing.T) {
	a := New(Config{}, nil)
	caps := a.Capabilities()

	assert.Equal(t, "twitter", a.Name())
	assert.True(t, caps.Supports(content.PostTypePost))
	assert.True(t, caps.Supports(content.PostTypeThread))
	assert.False(t, caps.Supports(content.PostTypeReel))

	req, ok := caps.RequirementsFor(content.PostTypePost)
	require.True(t, ok)
	assert.Equal(t, 280, req.MaxLength)
	assert.Equal(t, 4, req.MaxItems)
}

func TestFormatSinglePost(t *testing.T) {
	a := New(Config{}, nil)

	post, err := a.Format("short update", nil, content.PostTypePost, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"short update"}, post.Chunks)
	assert.Equal(t, "twitter", post.Platform)
}

func TestFormatSplitsThreads(t *testing.T) {
	a := New(Config{}, nil)

	text := strings.TrimSpace(strings.Repeat("the quick brown fox jumps over the lazy dog ", 14))
	post, err := a.Format(text, nil, content.PostTypeThread, nil)
	require.NoError(t, err)

	require.GreaterOrEqual(t, len(post.Chunks), 3)
	for _, chunk := range post.Chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk), 280)
	}
}

func TestFormatRejectsUnsupportedType(t *testing.T) {
	a := New(Config{}, nil)

	_, err := a.Format("caption", nil, content.PostTypeReel, nil)
	require.Error(t, err)

	var pubErr *errors.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, errors.ErrUnsupportedPostType, pubErr.Code)
}

func TestFormatRejectsTooManyAttachments(t *testing.T) {
	a := New(Config{}, nil)

	media := make([]content.MediaRef, 5)
	for i := range media {
		media[i] = content.MediaRef{Kind: content.MediaImage}
	}

	_, err := a.Format("text", media, content.PostTypePost, nil)
	require.Error(t, err)

	var pubErr *errors.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, errors.ErrMediaRequirement, pubErr.Code)
}

func TestFormatPassesReplySettings(t *testing.T) {
	a := New(Config{}, nil)

	post, err := a.Format("text", nil, content.PostTypePost, map[string]any{"reply_settings": "mentioned_users"})
	require.NoError(t, err)
	assert.Equal(t, "mentioned_users", post.Metadata["reply_settings"])
}

func TestPublishSuccess(t *testing.T) {
	var gotAuth string
	var gotBody platform.FormattedPost
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "tw-123", "status": "created"})
	}))
	defer server.Close()

	a := New(Config{Endpoint: server.URL}, nil)
	post, err := a.Format("hello", nil, content.PostTypePost, nil)
	require.NoError(t, err)

	resp, err := a.Publish(context.Background(), post, platform.Credential{AccessToken: "tok"})
	require.NoError(t, err)

	assert.Equal(t, "tw-123", resp.ExternalID)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, []string{"hello"}, gotBody.Chunks)
}

func TestPublishMissingCredential(t *testing.T) {
	a := New(Config{Endpoint: "http://unused.test"}, nil)
	post := &platform.FormattedPost{Platform: "twitter", PostType: content.PostTypePost, Chunks: []string{"x"}}

	_, err := a.Publish(context.Background(), post, platform.Credential{})
	require.Error(t, err)

	var pubErr *errors.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, errors.ErrAuthenticationFailed, pubErr.Code)
}

func TestPublishMapsHTTPStatuses(t *testing.T) {
	tests := []struct {
		status    int
		code      errors.ErrorCode
		retryable bool
	}{
		{http.StatusUnauthorized, errors.ErrAuthenticationFailed, false},
		{http.StatusTooManyRequests, errors.ErrRateLimited, true},
		{http.StatusServiceUnavailable, errors.ErrPlatformUnavailable, true},
		{http.StatusBadRequest, errors.ErrPlatformRejected, false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			a := New(Config{Endpoint: server.URL}, nil)
			post, err := a.Format("hello", nil, content.PostTypePost, nil)
			require.NoError(t, err)

			_, err = a.Publish(context.Background(), post, platform.Credential{AccessToken: "tok"})
			require.Error(t, err)

			var pubErr *errors.PublishError
			require.ErrorAs(t, err, &pubErr)
			assert.Equal(t, tt.code, pubErr.Code)
			assert.Equal(t, tt.retryable, pubErr.IsRetryable())
		})
	}
}

func TestPublishSynthesizesIDWhenResponseHasNone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	a := New(Config{Endpoint: server.URL}, nil)
	post, err := a.Format("hello", nil, content.PostTypePost, nil)
	require.NoError(t, err)

	resp, err := a.Publish(context.Background(), post, platform.Credential{AccessToken: "tok"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.ExternalID, "twitter_"))
}

func TestPublishRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "ok"})
	}))
	defer server.Close()

	a := New(Config{Endpoint: server.URL}, nil)
	post, err := a.Format("hello", nil, content.PostTypePost, nil)
	require.NoError(t, err)

	// Drain the declared 200-calls-per-window budget, then expect a
	// rate limit error with a retry hint.
	var lastErr error
	for i := 0; i < 201; i++ {
		_, lastErr = a.Publish(context.Background(), post, platform.Credential{AccessToken: "tok"})
		if lastErr != nil {
			break
		}
	}
	require.Error(t, lastErr)

	var pubErr *errors.PublishError
	require.ErrorAs(t, lastErr, &pubErr)
	assert.Equal(t, errors.ErrRateLimited, pubErr.Code)
	require.NotNil(t, pubErr.RetryAfter)
	assert.Greater(t, *pubErr.RetryAfter, time.Duration(0))
}
