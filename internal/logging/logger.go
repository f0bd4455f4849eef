// Craftledger - Game Account Crafting & Quest Completion Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/craftledger

// Package logging provides centralized zerolog-based logging for Craftledger.
//
// All packages log through this package rather than instantiating their own
// loggers, so output format and level are controlled in one place:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("job_id", id).Msg("Population job enqueued")
//
// Always terminate log chains with .Msg() or .Send(); an unterminated chain
// is silently dropped by zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum log level: trace, debug, info, warn, error, fatal.
	// Default: info
	Level string

	// Format is the output format: json or console.
	// Default: json (recommended for production)
	Format string

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool

	// Output is the writer for log output.
	// Default: os.Stderr
	Output io.Writer
}

// DefaultConfig returns the default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: os.Stderr,
	}
}

var (
	// log is the global logger instance.
	log zerolog.Logger

	// mu protects concurrent initialization.
	mu sync.RWMutex
)

//nolint:gochecknoinits // init ensures logging works before explicit Init() call
func init() {
	initLogger(DefaultConfig())
}

// Init configures the global logger. Call once at application startup,
// after configuration is loaded.
func Init(cfg Config) {
	initLogger(cfg)
}

func initLogger(cfg Config) {
	mu.Lock()
	defer mu.Unlock()

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(parseLevel(cfg.Level)).With().Timestamp().Logger()
	if cfg.Caller {
		logger = logger.With().Caller().Logger()
	}

	log = logger
}

// parseLevel converts a level string to a zerolog level, defaulting to info.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetLogger replaces the global logger. Intended for tests that need to
// capture output.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	log = l
}

// With returns a zerolog context for building a derived logger.
func With() zerolog.Context {
	return Logger().With()
}

// Trace starts a trace-level log event.
func Trace() *zerolog.Event { l := Logger(); return l.Trace() }

// Debug starts a debug-level log event.
func Debug() *zerolog.Event { l := Logger(); return l.Debug() }

// Info starts an info-level log event.
func Info() *zerolog.Event { l := Logger(); return l.Info() }

// Warn starts a warn-level log event.
func Warn() *zerolog.Event { l := Logger(); return l.Warn() }

// Error starts an error-level log event.
func Error() *zerolog.Event { l := Logger(); return l.Error() }

// Fatal starts a fatal-level log event. The process exits after the event
// is written.
func Fatal() *zerolog.Event { l := Logger(); return l.Fatal() }

// Err starts an error-level event with the error pre-attached, or an
// info-level event when err is nil.
func Err(err error) *zerolog.Event { l := Logger(); return l.Err(err) }

// NewTestLogger returns a logger writing to w at debug level, for tests.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
