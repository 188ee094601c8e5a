package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/randalmurphal/threadevent/pkg/threadevent/id"
)

// Exception handler modes.
const (
	HandlerRethrow = "rethrow"
	HandlerSwallow = "swallow"
)

// Recognized keys.
const (
	KeyExceptionHandler = "exception_handler"
	KeyMetrics          = "metrics"
	KeyTracing          = "tracing"
	KeyLogLevel         = "log_level"
	KeyLogFile          = "log_file"
	KeyLogMaxSizeMB     = "log_max_size_mb"
	KeyIDGenerator      = "id_generator"
)

// SectionName is the optional top-level key settings may be nested under,
// for files that also carry other application configuration.
const SectionName = "threadevent"

var knownKeys = []string{
	KeyExceptionHandler,
	KeyMetrics,
	KeyTracing,
	KeyLogLevel,
	KeyLogFile,
	KeyLogMaxSizeMB,
	KeyIDGenerator,
}

// Settings is the publisher configuration carried in a Config.
type Settings struct {
	// ExceptionHandler is HandlerRethrow or HandlerSwallow.
	ExceptionHandler string
	// Metrics enables OpenTelemetry metrics.
	Metrics bool
	// Tracing enables OpenTelemetry tracing.
	Tracing bool
	// LogLevel is a level name understood by slog ("debug", "info", "warn", "error").
	LogLevel string
	// LogFile, when set, sends logs to a rotated JSON file.
	LogFile string
	// LogMaxSizeMB is the rotation size of LogFile.
	LogMaxSizeMB int
	// IDGenerator names the event ID generator ("uuid" or "nuid").
	IDGenerator string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		ExceptionHandler: HandlerRethrow,
		LogLevel:         "info",
		LogMaxSizeMB:     10,
		IDGenerator:      "uuid",
	}
}

// Settings extracts publisher settings from c, filling unset keys from
// DefaultSettings, and validates them. When c has a SectionName key the
// settings are read from that section and other top-level keys are left
// alone; otherwise every key must be a recognized one.
func (c Config) Settings() (Settings, error) {
	if c.Has(SectionName) {
		if _, ok := c.Raw()[SectionName].(map[string]any); !ok {
			return Settings{}, fmt.Errorf("%s: must be a mapping", SectionName)
		}
		c = c.Section(SectionName)
	}
	if err := c.checkKeys(); err != nil {
		return Settings{}, err
	}

	def := DefaultSettings()
	s := Settings{
		ExceptionHandler: strings.ToLower(c.String(KeyExceptionHandler, def.ExceptionHandler)),
		Metrics:          c.Bool(KeyMetrics, def.Metrics),
		Tracing:          c.Bool(KeyTracing, def.Tracing),
		LogLevel:         strings.ToLower(c.String(KeyLogLevel, def.LogLevel)),
		LogFile:          c.String(KeyLogFile, def.LogFile),
		LogMaxSizeMB:     c.Int(KeyLogMaxSizeMB, def.LogMaxSizeMB),
		IDGenerator:      strings.ToLower(c.String(KeyIDGenerator, def.IDGenerator)),
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// checkKeys rejects keys that are not settings, so a misspelt key fails
// instead of silently leaving the default in place.
func (c Config) checkKeys() error {
	var unknown []string
	for key := range c.Raw() {
		if !slices.Contains(knownKeys, key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return fmt.Errorf("unknown keys %s (recognized: %s)",
		strings.Join(unknown, ", "), strings.Join(knownKeys, ", "))
}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	var errs []error

	switch s.ExceptionHandler {
	case HandlerRethrow, HandlerSwallow:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown mode %q (want %s or %s)",
			KeyExceptionHandler, s.ExceptionHandler, HandlerRethrow, HandlerSwallow))
	}

	if _, err := s.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	if s.LogMaxSizeMB <= 0 {
		errs = append(errs, fmt.Errorf("%s: must be positive, got %d", KeyLogMaxSizeMB, s.LogMaxSizeMB))
	}

	if _, err := id.Lookup(s.IDGenerator); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyIDGenerator, err))
	}

	return errors.Join(errs...)
}

// SlogLevel parses LogLevel.
func (s Settings) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}
	return lvl, nil
}

// Generator returns the configured event ID generator.
func (s Settings) Generator() (id.Generator, error) {
	return id.Lookup(s.IDGenerator)
}
