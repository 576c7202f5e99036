package idgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentifierPrefixes(t *testing.T) {
	assert.True(t, strings.HasPrefix(RequestID(), "req_"))
	assert.True(t, strings.HasPrefix(PostID(), "post_"))
	assert.True(t, strings.HasPrefix(Prefixed("job"), "job_"))
	assert.NotEmpty(t, MessageID())
}

func TestIdentifiersAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := RequestID()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
