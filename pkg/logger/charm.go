package logger

import (
	"os"

	charm "github.com/charmbracelet/log"
)

// New returns the default styled logger writing to stderr.
func New(level LogLevel) Logger {
	return NewCharmLogger(charm.NewWithOptions(os.Stderr, charm.Options{
		Prefix:          "publishhub",
		ReportTimestamp: true,
	}), level)
}

// charmAdapter bridges charmbracelet/log into the Logger interface.
// It is the logger used by the CLI so command output stays styled.
type charmAdapter struct {
	logger *charm.Logger
	level  LogLevel
}

// NewCharmLogger wraps a charmbracelet logger. A nil logger uses the
// package default.
func NewCharmLogger(l *charm.Logger, level LogLevel) Logger {
	if l == nil {
		l = charm.Default()
	}
	return &charmAdapter{logger: l, level: level}
}

// LogMode sets the log level and returns a new logger instance.
func (c *charmAdapter) LogMode(level LogLevel) Logger {
	return &charmAdapter{logger: c.logger, level: level}
}

// Info logs an informational message.
func (c *charmAdapter) Info(msg string, args ...any) {
	if c.level >= Info {
		c.logger.Info(msg, args...)
	}
}

// Warn logs a warning message.
func (c *charmAdapter) Warn(msg string, args ...any) {
	if c.level >= Warn {
		c.logger.Warn(msg, args...)
	}
}

// Error logs an error message.
func (c *charmAdapter) Error(msg string, args ...any) {
	if c.level >= Error {
		c.logger.Error(msg, args...)
	}
}

// Debug logs a debug message.
func (c *charmAdapter) Debug(msg string, args ...any) {
	if c.level >= Debug {
		c.logger.Debug(msg, args...)
	}
}
