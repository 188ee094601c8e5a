package threadevent

import (
	"fmt"
	"reflect"

	"github.com/randalmurphal/threadevent/pkg/threadevent/clock"
	"github.com/randalmurphal/threadevent/pkg/threadevent/config"
	"github.com/randalmurphal/threadevent/pkg/threadevent/listener"
	"github.com/randalmurphal/threadevent/pkg/threadevent/observability"
)

// publisherLoggerName tags the default publisher logger.
const publisherLoggerName = "EventPublisher"

// Builder assembles a Publisher.
//
// Example:
//
//	pub, err := threadevent.NewBuilder(reg).
//	    WithExceptionHandler(threadevent.NewSwallowHandler(logger)).
//	    WithLogger(logger).
//	    WithMetrics(true).
//	    Build()
type Builder struct {
	registry    listener.Registry
	handler     ExceptionHandler
	handlerMode string
	logger      observability.Logger
	metrics     observability.MetricsRecorder
	spans       observability.SpanManager
	clock       clock.Clock
}

// NewBuilder starts a Publisher over registry. The publisher only ever sees
// a read-only view of it.
func NewBuilder(registry listener.Registry) *Builder {
	return &Builder{registry: registry}
}

// WithExceptionHandler sets the default exception handler.
// Default: a RethrowHandler logging to the publisher's logger.
func (b *Builder) WithExceptionHandler(h ExceptionHandler) *Builder {
	b.handler = h
	return b
}

// WithLogger sets the diagnostic sink.
// Default: slog.Default() tagged logger=EventPublisher.
//
// Pass observability.NopLogger{} to silence the publisher.
func (b *Builder) WithLogger(l observability.Logger) *Builder {
	b.logger = l
	return b
}

// WithMetrics enables or disables OpenTelemetry metrics on the global meter
// provider. Default: disabled.
func (b *Builder) WithMetrics(enabled bool) *Builder {
	if enabled {
		b.metrics = observability.NewMetricsRecorder()
	} else {
		b.metrics = observability.NoopMetrics{}
	}
	return b
}

// WithMetricsRecorder sets a specific metrics recorder.
func (b *Builder) WithMetricsRecorder(m observability.MetricsRecorder) *Builder {
	b.metrics = m
	return b
}

// WithTracing enables or disables OpenTelemetry tracing on the global tracer
// provider. Default: disabled.
func (b *Builder) WithTracing(enabled bool) *Builder {
	if enabled {
		b.spans = observability.NewSpanManager()
	} else {
		b.spans = observability.NoopSpanManager{}
	}
	return b
}

// WithSpanManager sets a specific span manager.
func (b *Builder) WithSpanManager(s observability.SpanManager) *Builder {
	b.spans = s
	return b
}

// WithClock sets the clock processing durations are measured with.
// Default: clock.Real.
func (b *Builder) WithClock(c clock.Clock) *Builder {
	b.clock = c
	return b
}

// WithSettings applies loaded settings: the exception handler mode, metrics,
// and tracing. An explicit WithExceptionHandler takes precedence over the
// handler mode.
func (b *Builder) WithSettings(s config.Settings) *Builder {
	b.handlerMode = s.ExceptionHandler
	b.WithMetrics(s.Metrics)
	b.WithTracing(s.Tracing)
	return b
}

// Build creates the Publisher.
func (b *Builder) Build() (*Publisher, error) {
	if b.registry == nil || isNilRegistry(b.registry) {
		return nil, ErrRegistryRequired
	}

	logger := b.logger
	if logger == nil {
		logger = observability.NamedLogger(nil, publisherLoggerName)
	}

	handler := b.handler
	if isNilHandler(handler) {
		switch b.handlerMode {
		case "", config.HandlerRethrow:
			handler = NewRethrowHandler(logger)
		case config.HandlerSwallow:
			handler = NewSwallowHandler(logger)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownHandlerMode, b.handlerMode)
		}
	}

	metrics := b.metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}

	spans := b.spans
	if spans == nil {
		spans = observability.NoopSpanManager{}
	}

	c := b.clock
	if c == nil {
		c = clock.Real
	}

	return &Publisher{
		registry: listener.ReadOnly(b.registry),
		handler:  handler,
		logger:   logger,
		metrics:  metrics,
		spans:    spans,
		clock:    c,
		tracker:  &tracker{logger: logger, clock: c},
	}, nil
}

func isNilRegistry(r listener.Registry) bool {
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
