package threadevent

import (
	"context"
	"reflect"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/threadevent/pkg/threadevent/clock"
	teerrors "github.com/randalmurphal/threadevent/pkg/threadevent/errors"
	"github.com/randalmurphal/threadevent/pkg/threadevent/event"
	"github.com/randalmurphal/threadevent/pkg/threadevent/listener"
	"github.com/randalmurphal/threadevent/pkg/threadevent/observability"
)

// Publisher dispatches events to the listeners registered for their type.
// Build one with NewBuilder.
//
// A Publisher holds no per-call state. Publish calls may run concurrently
// when the registry supports concurrent lookups, as DefaultRegistry does.
type Publisher struct {
	registry listener.Registry
	handler  ExceptionHandler
	logger   observability.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	clock    clock.Clock
	tracker  *tracker
}

// Registry returns the read-only view of the registry the publisher reads.
func (p *Publisher) Registry() listener.Registry {
	return p.registry
}

// ExceptionHandler returns the default exception handler.
func (p *Publisher) ExceptionHandler() ExceptionHandler {
	return p.handler
}

// Publish dispatches evt using the default exception handler.
// See PublishWith.
func (p *Publisher) Publish(ctx context.Context, evt event.Event) (*EventContext, error) {
	return p.PublishWith(ctx, evt, nil)
}

// PublishWith dispatches evt to every listener registered for its exact
// dynamic type, in registration order, on the calling goroutine. A nil
// handler uses the publisher's default.
//
// A listener that fails (returns an error or panics) is not recorded as
// processed; its failure is passed to handler. If handler returns an error,
// PublishWith stops and returns that error wrapped in *errors.HandlerError,
// along with the context as it stood, which is not Completed.
//
// A listener that cannot be constructed fails the call with
// *errors.ConstructionError before any listener runs; handler is not
// consulted.
func (p *Publisher) PublishWith(ctx context.Context, evt event.Event, handler ExceptionHandler) (ec *EventContext, err error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if isNilEvent(evt) {
		return nil, ErrNilEvent
	}
	if isNilHandler(handler) {
		handler = p.handler
	}

	name, eventID, stage := event.NameOf(evt), evt.ID(), evt.Stage().String()
	typ := event.TypeOf(evt)
	done := observability.TimedOperation(p.clock)

	observability.LogPublishStart(p.logger, name, eventID, stage)

	ctx, span := p.spans.StartPublishSpan(ctx, name, eventID, stage)
	var listeners []listener.Listener
	defer func() {
		p.spans.EndSpanWithError(span, err)
		p.metrics.RecordPublish(ctx, typ.Name(), len(listeners), done(), err)
	}()

	listeners, err = p.registry.ListenersForEvent(typ)
	if err != nil {
		return nil, err
	}

	observability.LogListenersFound(p.logger, name, eventID, len(listeners))
	p.spans.AddSpanEvent(ctx, "listeners.resolved", attribute.Int("count", len(listeners)))

	ec = p.tracker.startTracking(evt)

	for _, l := range listeners {
		if err = p.dispatch(ctx, ec, l, handler); err != nil {
			observability.LogPublishAborted(p.logger, name, eventID, len(ec.processed), err)
			return ec, err
		}
	}

	p.tracker.completeTracking(ec)
	return ec, nil
}

// dispatch runs one listener and routes its failure to handler. It returns a
// non-nil error only when handler re-raises.
func (p *Publisher) dispatch(ctx context.Context, ec *EventContext, l listener.Listener, handler ExceptionHandler) error {
	evt := ec.evt
	name, eventID, listenerName := event.NameOf(evt), evt.ID(), l.Name()

	observability.LogListenerInvoke(p.logger, listenerName, name, eventID)

	listenerCtx, span := p.spans.StartListenerSpan(ctx, listenerName)
	done := observability.TimedOperation(p.clock)
	reactErr := react(listenerCtx, l, evt)
	elapsed := done()
	p.spans.EndSpanWithError(span, reactErr)
	p.metrics.RecordListener(ctx, event.TypeOf(evt).Name(), listenerName, elapsed, reactErr)

	if reactErr == nil {
		observability.LogListenerSuccess(p.logger, listenerName, name, eventID, elapsed)
		ec.RecordListenerProcessing(l)
		return nil
	}

	failure := &teerrors.ReactionError{
		Event:    name,
		EventID:  eventID,
		Stage:    evt.Stage().String(),
		Listener: listenerName,
		Err:      reactErr,
	}

	observability.LogListenerFailure(p.logger, listenerName, name, eventID, handler.Name(), reactErr)

	if err := handler.Handle(ctx, evt, l, failure); err != nil {
		return &teerrors.HandlerError{Handler: handler.Name(), Err: err}
	}
	return nil
}

// react calls l.React, converting a panic into *errors.PanicError.
func react(ctx context.Context, l listener.Listener, evt event.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &teerrors.PanicError{
				Listener: l.Name(),
				Value:    r,
				Stack:    string(debug.Stack()),
			}
		}
	}()
	return l.React(ctx, evt)
}

// isNilHandler reports whether h is nil or a typed nil, such as a nil
// *RethrowHandler or HandlerFunc.
func isNilHandler(h ExceptionHandler) bool {
	if h == nil {
		return true
	}
	switch v := reflect.ValueOf(h); v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// isNilEvent reports whether evt is nil or a typed nil pointer.
func isNilEvent(evt event.Event) bool {
	if evt == nil {
		return true
	}
	v := reflect.ValueOf(evt)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
