// Package threadevent is an in-process event dispatch engine.
//
// Producers hand a typed event to a Publisher, which looks up the listeners
// registered for the event's exact type and invokes each one in registration
// order on the calling goroutine. Processing is tracked in an EventContext,
// and listener failures are routed to a pluggable ExceptionHandler that
// decides whether dispatch continues.
//
// # Basic Usage
//
//	type OrderPlaced struct {
//	    event.Base
//	    OrderID string
//	}
//
//	reg := listener.NewRegistry()
//	reg.MustRegister(listener.Func("mailer", func() listener.Reactions[*OrderPlaced] {
//	    return listener.Reactions[*OrderPlaced]{
//	        event.StageStart: func(ctx context.Context, e *OrderPlaced) error {
//	            return sendConfirmation(ctx, e.OrderID)
//	        },
//	    }
//	}))
//
//	pub, err := threadevent.NewBuilder(reg).Build()
//	if err != nil {
//	    return err
//	}
//
//	evt := &OrderPlaced{Base: event.NewBase(), OrderID: "o-1"}
//	ec, err := pub.Publish(ctx, evt)
//
// # Lifecycle Stages
//
// An event carries a Stage that listeners dispatch on. Publishing the same
// event again after a transition reaches each listener's reaction for the
// new stage:
//
//	evt.MarkEnd()
//	pub.Publish(ctx, evt)
//
// # Error Handling
//
// The default RethrowHandler aborts a publish at the first failing listener.
// SwallowHandler logs and continues. Errors are classified with
// errors.KindOf from the threadevent/errors package.
//
// # Observability
//
// Logging goes to an observability.Logger: *slog.Logger, a zap logger via
// observability.NewZapLogger, or observability.NopLogger. OpenTelemetry
// metrics and tracing are opt-in through the Builder.
package threadevent
