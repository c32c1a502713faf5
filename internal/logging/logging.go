// ABOUTME: Structured logger construction for myjot.
// ABOUTME: Wraps charmbracelet/log with the project prefix and level parsing.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// New returns a logger writing to w at the named level. Unknown level names
// fall back to DefaultLevel.
func New(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          "myjot",
		Level:           ParseLevel(level),
		ReportTimestamp: true,
	})
}

// ParseLevel maps a level name to a log.Level.
func ParseLevel(level string) log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl, _ = log.ParseLevel(DefaultLevel)
	}
	return lvl
}

// Discard returns a logger that drops everything. Used by tests and by
// library callers that pass no logger.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
