// Package observability provides the logging, metrics, and tracing used by
// the threadevent publisher.
//
// Features:
//   - Structured logging through the Logger sink (slog, zap, or no-op)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/threadevent/pkg/threadevent/clock"
)

// Logger is the diagnostic sink used by the publisher and exception handlers.
// Arguments are alternating key/value pairs.
//
// *slog.Logger satisfies Logger directly. Use NewZapLogger for zap and
// NopLogger to discard output.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Compile-time interface check.
var _ Logger = (*slog.Logger)(nil)

// NopLogger discards everything.
type NopLogger struct{}

// Compile-time interface check.
var _ Logger = NopLogger{}

// Debug does nothing.
func (NopLogger) Debug(string, ...any) {}

// Info does nothing.
func (NopLogger) Info(string, ...any) {}

// Warn does nothing.
func (NopLogger) Warn(string, ...any) {}

// Error does nothing.
func (NopLogger) Error(string, ...any) {}

// NamedLogger returns base tagged with logger=name, the way a type-named
// logger identifies its owner. A nil base uses slog.Default().
//
// Example:
//
//	logger := NamedLogger(nil, "EventPublisher")
//	logger.Info("ready") // includes logger=EventPublisher
func NamedLogger(base *slog.Logger, name string) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	return base.With(slog.String("logger", name))
}

// LogPublishStart logs the intent to publish an event.
func LogPublishStart(logger Logger, eventName, eventID, stage string) {
	if logger == nil {
		return
	}
	logger.Info("publishing event",
		"event", eventName,
		"event_id", eventID,
		"stage", stage,
	)
}

// LogListenersFound logs how many listeners a lookup produced.
func LogListenersFound(logger Logger, eventName, eventID string, count int) {
	if logger == nil {
		return
	}
	logger.Info("found listeners for event",
		"event", eventName,
		"event_id", eventID,
		"listeners", count,
	)
}

// LogListenerInvoke logs that a listener is about to react.
func LogListenerInvoke(logger Logger, listenerName, eventName, eventID string) {
	if logger == nil {
		return
	}
	logger.Debug("invoking listener",
		"listener", listenerName,
		"event", eventName,
		"event_id", eventID,
	)
}

// LogListenerSuccess logs a listener that reacted without error.
func LogListenerSuccess(logger Logger, listenerName, eventName, eventID string, duration time.Duration) {
	if logger == nil {
		return
	}
	logger.Debug("listener processed event",
		"listener", listenerName,
		"event", eventName,
		"event_id", eventID,
		"duration_ms", durationMs(duration),
	)
}

// LogListenerFailure logs a listener failure that is being handed to the
// exception handler.
func LogListenerFailure(logger Logger, listenerName, eventName, eventID, handlerName string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("listener failed, invoking exception handler",
		"listener", listenerName,
		"event", eventName,
		"event_id", eventID,
		"handler", handlerName,
		"error", errString(err),
	)
}

// LogPublishAborted logs a publish cut short by the exception handler.
func LogPublishAborted(logger Logger, eventName, eventID string, processed int, err error) {
	if logger == nil {
		return
	}
	logger.Error("event publish aborted",
		"event", eventName,
		"event_id", eventID,
		"processed", processed,
		"error", errString(err),
	)
}

// LogPublishComplete logs successful completion of event processing.
func LogPublishComplete(logger Logger, eventName, eventID string, duration time.Duration, processed int) {
	if logger == nil {
		return
	}
	logger.Info("event processing completed",
		"event", eventName,
		"event_id", eventID,
		"duration_ms", durationMs(duration),
		"processed", processed,
	)
}

// TimedOperation measures the duration of an operation against c.
// Returns a function that, when called, returns the elapsed time.
// A nil clock uses clock.Real.
//
// Example:
//
//	done := TimedOperation(clock.Real)
//	// ... do work ...
//	elapsed := done()
func TimedOperation(c clock.Clock) func() time.Duration {
	if c == nil {
		c = clock.Real
	}
	start := c.Now()
	return func() time.Duration {
		return c.Now().Sub(start)
	}
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
