// Package logging provides zerolog construction and context helpers for perch.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration
type Config struct {
	Level      zerolog.Level
	Format     string // "json" or "console"
	TimeFormat string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Format:     "console",
		TimeFormat: time.RFC3339,
	}
}

// New creates a new zerolog logger with the given configuration
func New(cfg Config) zerolog.Logger {
	var output io.Writer = os.Stderr

	switch cfg.Format {
	case "console":
		output = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: cfg.TimeFormat,
		}
	case "json":
		// JSON is the default zerolog format
		output = os.Stderr
	}

	return zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// NewFromSettings creates a logger from config-file level/format strings,
// with environment overrides:
// PERCH_LOG_LEVEL: trace, debug, info, warn, error (default: info)
// PERCH_LOG_FORMAT: json, console (default: console)
func NewFromSettings(level, format string) zerolog.Logger {
	cfg := DefaultConfig()

	if env := os.Getenv("PERCH_LOG_LEVEL"); env != "" {
		level = env
	}
	if env := os.Getenv("PERCH_LOG_FORMAT"); env != "" {
		format = env
	}

	if lvl := ParseLevel(level); lvl != zerolog.NoLevel {
		cfg.Level = lvl
	}

	switch format {
	case "json", "console":
		cfg.Format = format
	}

	return New(cfg)
}

// ParseLevel maps a level name to a zerolog level. Unknown names return
// zerolog.NoLevel so callers can keep their default.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.NoLevel
	}
}
