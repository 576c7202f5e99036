package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextLoggerFormatsKeyValues(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, Debug)

	log.Info("publish done", "platform", "twitter", "attempts", 2)

	out := buf.String()
	assert.Contains(t, out, "INFO publish done")
	assert.Contains(t, out, "platform=twitter")
	assert.Contains(t, out, "attempts=2")
}

func TestTextLoggerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, Warn)

	log.Debug("hidden")
	log.Info("hidden too")
	assert.Empty(t, buf.String())

	log.Warn("kept")
	log.Error("kept too")
	assert.Equal(t, 2, strings.Count(buf.String(), "kept"))
}

func TestTextLoggerDanglingKey(t *testing.T) {
	var buf bytes.Buffer
	log := NewTextLogger(&buf, Info)

	log.Info("msg", "dangling")
	assert.Contains(t, buf.String(), "dangling=(missing)")
}

func TestLogModeReturnsNewInstance(t *testing.T) {
	var buf bytes.Buffer
	base := NewTextLogger(&buf, Silent)
	verbose := base.LogMode(Debug)

	base.Error("dropped")
	assert.Empty(t, buf.String())

	verbose.Debug("kept")
	assert.Contains(t, buf.String(), "DEBUG kept")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want LogLevel
	}{
		{"silent", Silent},
		{"error", Error},
		{"warn", Warn},
		{"warning", Warn},
		{"debug", Debug},
		{"", Info},
		{"bogus", Info},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.name), tt.name)
	}
}
