package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartPublishSpan starts a span covering one publish call.
	StartPublishSpan(ctx context.Context, eventName, eventID, stage string) (context.Context, trace.Span)

	// StartListenerSpan starts a span for one listener reaction, as a child
	// of the publish span carried by ctx.
	StartListenerSpan(ctx context.Context, listenerName string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct {
	tracer trace.Tracer
}

// NewSpanManager returns a SpanManager that uses the global OTel tracer
// provider:
//
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{tracer: otel.Tracer(instrumentationName)}
}

// NewSpanManagerFromProvider returns a SpanManager bound to provider instead
// of the global one.
func NewSpanManagerFromProvider(provider trace.TracerProvider) SpanManager {
	if provider == nil {
		return NewSpanManager()
	}
	return &otelSpanManager{tracer: provider.Tracer(instrumentationName)}
}

// StartPublishSpan starts the publish span.
func (m *otelSpanManager) StartPublishSpan(ctx context.Context, eventName, eventID, stage string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "threadevent.publish",
		trace.WithAttributes(
			attribute.String("event.name", eventName),
			attribute.String("event.id", eventID),
			attribute.String("event.stage", stage),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartListenerSpan starts a listener span.
func (m *otelSpanManager) StartListenerSpan(ctx context.Context, listenerName string) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "threadevent.listener."+listenerName,
		trace.WithAttributes(
			attribute.String("listener.name", listenerName),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
