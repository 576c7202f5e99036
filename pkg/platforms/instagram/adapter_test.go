package instagram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/errors"
)

func image() content.MediaRef {
	return content.MediaRef{URL: "https://example.test/a.jpg", Kind: content.MediaImage}
}

func TestCapabilities(t *testing.T) {
	a := New(Config{}, nil)
	caps := a.Capabilities()

	assert.True(t, caps.Supports(content.PostTypeReel))
	assert.True(t, caps.Supports(content.PostTypeCarousel))
	assert.False(t, caps.Supports(content.PostTypeThread))

	carousel, ok := caps.RequirementsFor(content.PostTypeCarousel)
	require.True(t, ok)
	assert.Equal(t, 2, carousel.MinItems)
	assert.Equal(t, 10, carousel.MaxItems)
}

func TestFormatRequiresMedia(t *testing.T) {
	a := New(Config{}, nil)

	_, err := a.Format("caption only", nil, content.PostTypePost, nil)
	require.Error(t, err)

	var pubErr *errors.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, errors.ErrMediaRequirement, pubErr.Code)
}

func TestFormatCarouselNeedsTwoItems(t *testing.T) {
	a := New(Config{}, nil)

	_, err := a.Format("caption", []content.MediaRef{image()}, content.PostTypeCarousel, nil)
	require.Error(t, err)

	post, err := a.Format("caption", []content.MediaRef{image(), image()}, content.PostTypeCarousel, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, post.Metadata["media_count"])
}

func TestFormatReelRequiresVideo(t *testing.T) {
	a := New(Config{}, nil)

	_, err := a.Format("caption", []content.MediaRef{image()}, content.PostTypeReel, nil)
	require.Error(t, err)

	reel := content.MediaRef{URL: "https://example.test/v.mp4", Kind: content.MediaVideo, Duration: 30 * time.Second}
	post, err := a.Format("caption", []content.MediaRef{reel}, content.PostTypeReel, nil)
	require.NoError(t, err)
	assert.Equal(t, content.PostTypeReel, post.PostType)
}

func TestFormatReelDurationBounds(t *testing.T) {
	a := New(Config{}, nil)

	tooShort := content.MediaRef{Kind: content.MediaVideo, Duration: time.Second}
	_, err := a.Format("caption", []content.MediaRef{tooShort}, content.PostTypeReel, nil)
	assert.Error(t, err)

	tooLong := content.MediaRef{Kind: content.MediaVideo, Duration: 2 * time.Minute}
	_, err = a.Format("caption", []content.MediaRef{tooLong}, content.PostTypeReel, nil)
	assert.Error(t, err)
}
