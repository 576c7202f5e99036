package facebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/publishhub/pkg/content"
	"github.com/kart-io/publishhub/pkg/errors"
)

func TestFormatRequiresPageID(t *testing.T) {
	a := New(Config{}, nil)

	_, err := a.Format("update", nil, content.PostTypePost, nil)
	require.Error(t, err)

	var pubErr *errors.PublishError
	require.ErrorAs(t, err, &pubErr)
	assert.Equal(t, errors.ErrValidationFailed, pubErr.Code)
	assert.Contains(t, pubErr.Message, "page_id")
}

func TestFormatCarriesPageID(t *testing.T) {
	a := New(Config{}, nil)

	post, err := a.Format("update", nil, content.PostTypePost, map[string]any{"page_id": "12345"})
	require.NoError(t, err)
	assert.Equal(t, "12345", post.Metadata["page_id"])
	assert.Equal(t, []string{"update"}, post.Chunks)
}

func TestCapabilities(t *testing.T) {
	a := New(Config{}, nil)
	caps := a.Capabilities()

	req, ok := caps.RequirementsFor(content.PostTypePost)
	require.True(t, ok)
	assert.Equal(t, 63206, req.MaxLength)
	assert.False(t, caps.Supports(content.PostTypeThread))
}
