// Package logging builds the stderr logger shared by the CLI and the parser.
package logging

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
)

// Prefix tags every log line.
const Prefix = "repoprism"

// New returns a logger writing to w at level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: Prefix,
		Level:  level,
	})
}

// LevelFromVerbosity maps a -v count to a level: none is warn, one is
// info, two or more is debug.
func LevelFromVerbosity(verbosity int) log.Level {
	switch {
	case verbosity <= 0:
		return log.WarnLevel
	case verbosity == 1:
		return log.InfoLevel
	default:
		return log.DebugLevel
	}
}

// ResolveLevel picks the level from -v when given, otherwise from the
// configured level name.
func ResolveLevel(verbosity int, configured string) (log.Level, error) {
	if verbosity > 0 {
		return LevelFromVerbosity(verbosity), nil
	}
	if configured == "" {
		return log.WarnLevel, nil
	}
	level, err := log.ParseLevel(configured)
	if err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", configured, err)
	}
	return level, nil
}
