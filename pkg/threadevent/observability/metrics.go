package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// instrumentationName names the meter and tracer.
const instrumentationName = "threadevent"

// MetricsRecorder records publisher metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPublish records one publish call. err is the error the call
	// returned, if any.
	RecordPublish(ctx context.Context, eventType string, listeners int, duration time.Duration, err error)

	// RecordListener records one listener reaction.
	RecordListener(ctx context.Context, eventType, listenerName string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	publishCount       metric.Int64Counter
	publishLatency     metric.Float64Histogram
	publishErrors      metric.Int64Counter
	listenerInvocation metric.Int64Counter
	listenerLatency    metric.Float64Histogram
	listenerErrors     metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the metrics instance bound to the global meter
// provider, creating it on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics(otel.GetMeterProvider())
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics(provider metric.MeterProvider) (*otelMetrics, error) {
	meter := provider.Meter(instrumentationName)

	publishCount, err := meter.Int64Counter("threadevent.publish.count",
		metric.WithDescription("Number of publish calls"),
	)
	if err != nil {
		return nil, err
	}

	publishLatency, err := meter.Float64Histogram("threadevent.publish.latency_ms",
		metric.WithDescription("Publish latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	publishErrors, err := meter.Int64Counter("threadevent.publish.errors",
		metric.WithDescription("Number of publish calls that returned an error"),
	)
	if err != nil {
		return nil, err
	}

	listenerInvocation, err := meter.Int64Counter("threadevent.listener.invocations",
		metric.WithDescription("Number of listener reactions"),
	)
	if err != nil {
		return nil, err
	}

	listenerLatency, err := meter.Float64Histogram("threadevent.listener.latency_ms",
		metric.WithDescription("Listener reaction latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	listenerErrors, err := meter.Int64Counter("threadevent.listener.errors",
		metric.WithDescription("Number of failed listener reactions"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		publishCount:       publishCount,
		publishLatency:     publishLatency,
		publishErrors:      publishErrors,
		listenerInvocation: listenerInvocation,
		listenerLatency:    listenerLatency,
		listenerErrors:     listenerErrors,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// NewMetricsRecorderFromProvider returns a MetricsRecorder bound to provider
// instead of the global one.
func NewMetricsRecorderFromProvider(provider metric.MeterProvider) (MetricsRecorder, error) {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	return newOtelMetrics(provider)
}

// RecordPublish records a publish call.
func (m *otelMetrics) RecordPublish(ctx context.Context, eventType string, listeners int, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.Bool("success", err == nil),
	)

	m.publishCount.Add(ctx, 1, attrs)
	m.publishLatency.Record(ctx, durationMs(duration), attrs)

	if err != nil {
		m.publishErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event.type", eventType),
			attribute.Int("listeners", listeners),
		))
	}
}

// RecordListener records a listener reaction.
func (m *otelMetrics) RecordListener(ctx context.Context, eventType, listenerName string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(
		attribute.String("event.type", eventType),
		attribute.String("listener", listenerName),
	)

	m.listenerInvocation.Add(ctx, 1, attrs)
	m.listenerLatency.Record(ctx, durationMs(duration), attrs)

	if err != nil {
		m.listenerErrors.Add(ctx, 1, attrs)
	}
}
