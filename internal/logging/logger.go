package logging

import (
	"fmt"
	"os"
	"strings"
)

// Logger writes glyph-prefixed status lines to stderr.
// Deployment reports meant for other tooling go to stdout; everything
// here is operator-facing progress output.
type Logger struct {
	debug   bool
	noColor bool
}

// New creates a new logger instance.
func New(debug, noColor bool) *Logger {
	return &Logger{
		debug:   debug,
		noColor: noColor,
	}
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit("\033[32m", "✓", format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit("\033[33m", "⚠", format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit("\033[31m", "✗", format, args...)
}

// Debug logs a debug message if debug mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.emit("\033[36m", "[DEBUG]", format, args...)
}

func (l *Logger) emit(color, glyph, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !l.noColor {
		fmt.Fprintf(os.Stderr, "%s%s\033[0m %s\n", color, glyph, msg)
		return
	}
	fmt.Fprintf(os.Stderr, "%s %s\n", glyph, msg)
}

// Secret represents a value that should be redacted in logs.
type Secret string

// String implements the Stringer interface, always returning a redacted value.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements the GoStringer interface for %#v formatting.
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact replaces sensitive values in a string with [REDACTED].
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if secret != "" && len(secret) > 3 { // Only redact non-trivial secrets
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}

// Mask shortens a secret value for display without revealing it.
func Mask(value string) string {
	if len(value) == 0 {
		return "(empty)"
	}
	if len(value) <= 8 {
		return "***"
	}
	return value[:3] + "***" + value[len(value)-3:]
}
