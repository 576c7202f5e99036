package pinterest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/errors"
)

func TestFormatRequiresBoardAndMedia(t *testing.T) {
	a := New(Config{}, nil)
	pin := content.MediaRef{URL: "https://example.test/p.jpg", Kind: content.MediaImage}

	// No media: pins are media posts.
	_, err := a.Format("note", nil, content.PostTypePin, map[string]any{"board_id": "b1"})
	require.Error(t, err)

	var pubErr *errors.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, errors.ErrMediaRequirement, pubErr.Code)

	// No board: every pin needs one.
	_, err = a.Format("note", []content.MediaRef{pin}, content.PostTypePin, nil)
	require.Error(t, err)
	require.ErrorAs(t, err, &pubErr)
	assert.Contains(t, pubErr.Message, "board_id")

	post, err := a.Format("note", []content.MediaRef{pin}, content.PostTypePin, map[string]any{"board_id": "b1", "link": "https://example.test"})
	require.NoError(t, err)
	assert.Equal(t, "b1", post.Metadata["board_id"])
	assert.Equal(t, "https://example.test", post.Metadata["link"])
}

func TestOnlyPinsSupported(t *testing.T) {
	a := New(Config{}, nil)

	_, err := a.Format("note", nil, content.PostTypePost, nil)
	require.Error(t, err)

	var pubErr *errors.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, errors.ErrUnsupportedPostType, pubErr.Code)
}
