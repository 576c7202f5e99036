// Package logger provides the small structured logging surface used
// across PublishHub. The default logger is backed by charmbracelet/log;
// TextLogger is a plain fallback for captured output and tests.
package logger

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// Silent suppresses all log output.
	Silent LogLevel = iota + 1
	// Error only logs error messages.
	Error
	// Warn logs warnings and errors.
	Warn
	// Info logs informational messages, warnings, and errors.
	Info
	// Debug logs all messages including debug information.
	Debug
)

// Logger is the interface that wraps the basic structured logging methods.
type Logger interface {
	// LogMode sets the log level and returns a new logger instance.
	LogMode(level LogLevel) Logger
	// Info logs an informational message with structured key-value pairs.
	Info(msg string, args ...any)
	// Warn logs a warning message with structured key-value pairs.
	Warn(msg string, args ...any)
	// Error logs an error message with structured key-value pairs.
	Error(msg string, args ...any)
	// Debug logs a debug message with structured key-value pairs.
	Debug(msg string, args ...any)
}

// TextLogger writes plain key=value lines through the standard library
// log package.
type TextLogger struct {
	out   *log.Logger
	level LogLevel
}

// NewTextLogger creates a plain logger writing to w at the given level.
func NewTextLogger(w io.Writer, level LogLevel) Logger {
	return &TextLogger{out: log.New(w, "", log.LstdFlags), level: level}
}

// LogMode sets the log level and returns a new logger instance.
func (l *TextLogger) LogMode(level LogLevel) Logger {
	return &TextLogger{out: l.out, level: level}
}

// Info logs an informational message.
func (l *TextLogger) Info(msg string, args ...any) { l.emit(Info, "INFO", msg, args) }

// Warn logs a warning message.
func (l *TextLogger) Warn(msg string, args ...any) { l.emit(Warn, "WARN", msg, args) }

// Error logs an error message.
func (l *TextLogger) Error(msg string, args ...any) { l.emit(Error, "ERROR", msg, args) }

// Debug logs a debug message.
func (l *TextLogger) Debug(msg string, args ...any) { l.emit(Debug, "DEBUG", msg, args) }

func (l *TextLogger) emit(min LogLevel, tag, msg string, args []any) {
	if l.level < min {
		return
	}

	var b strings.Builder
	b.WriteString(tag)
	b.WriteByte(' ')
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		var val any = "(missing)"
		if i+1 < len(args) {
			val = args[i+1]
		}
		fmt.Fprintf(&b, " %v=%v", args[i], val)
	}
	l.out.Print(b.String())
}

// discardLogger is a logger that discards all output.
type discardLogger struct{}

func (d *discardLogger) LogMode(LogLevel) Logger { return d }
func (d *discardLogger) Info(string, ...any)     {}
func (d *discardLogger) Warn(string, ...any)     {}
func (d *discardLogger) Error(string, ...any)    {}
func (d *discardLogger) Debug(string, ...any)    {}

// Discard is a logger that discards all output.
var Discard Logger = &discardLogger{}

// ParseLevel maps a level name onto a LogLevel. Unknown names fall back
// to Info.
func ParseLevel(name string) LogLevel {
	switch name {
	case "silent":
		return Silent
	case "error":
		return Error
	case "warn", "warning":
		return Warn
	case "debug":
		return Debug
	default:
		return Info
	}
}
