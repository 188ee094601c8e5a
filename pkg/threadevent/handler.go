package threadevent

import (
	"context"

	"github.com/randalmurphal/threadevent/pkg/threadevent/event"
	"github.com/randalmurphal/threadevent/pkg/threadevent/listener"
	"github.com/randalmurphal/threadevent/pkg/threadevent/observability"
)

// ExceptionHandler decides what a listener failure means for the rest of a
// publish call.
//
// Handle is called once per failed listener with the failure wrapped in a
// *errors.ReactionError. Returning nil lets dispatch continue with the next
// listener. Returning an error aborts the publish call: no further listeners
// run and Publish returns the error wrapped in a *errors.HandlerError.
type ExceptionHandler interface {
	Handle(ctx context.Context, evt event.Event, l listener.Listener, err error) error

	// Name identifies the handler in diagnostics.
	Name() string
}

// RethrowHandler logs the failure and re-raises it, aborting the publish.
// It is the default handler.
type RethrowHandler struct {
	logger observability.Logger
}

// Compile-time interface check.
var _ ExceptionHandler = (*RethrowHandler)(nil)

// NewRethrowHandler creates a RethrowHandler logging to logger.
// A nil logger discards output.
func NewRethrowHandler(logger observability.Logger) *RethrowHandler {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &RethrowHandler{logger: logger}
}

// Handle logs at error level and returns err unchanged.
func (h *RethrowHandler) Handle(_ context.Context, evt event.Event, l listener.Listener, err error) error {
	h.logger.Error("error processing event",
		"event", event.NameOf(evt),
		"listener", l.Name(),
		"error", err.Error(),
	)
	return err
}

// Name returns "RethrowHandler".
func (h *RethrowHandler) Name() string {
	return "RethrowHandler"
}

// SwallowHandler logs the failure and lets dispatch continue.
type SwallowHandler struct {
	logger observability.Logger
}

// Compile-time interface check.
var _ ExceptionHandler = (*SwallowHandler)(nil)

// NewSwallowHandler creates a SwallowHandler logging to logger.
// A nil logger discards output.
func NewSwallowHandler(logger observability.Logger) *SwallowHandler {
	if logger == nil {
		logger = observability.NopLogger{}
	}
	return &SwallowHandler{logger: logger}
}

// Handle logs at warn level and returns nil.
func (h *SwallowHandler) Handle(_ context.Context, evt event.Event, l listener.Listener, err error) error {
	h.logger.Warn("listener failure ignored",
		"event", event.NameOf(evt),
		"listener", l.Name(),
		"error", err.Error(),
	)
	return nil
}

// Name returns "SwallowHandler".
func (h *SwallowHandler) Name() string {
	return "SwallowHandler"
}

// HandlerFunc adapts a function to ExceptionHandler.
type HandlerFunc func(ctx context.Context, evt event.Event, l listener.Listener, err error) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, evt event.Event, l listener.Listener, err error) error {
	return f(ctx, evt, l, err)
}

// Name returns "HandlerFunc".
func (f HandlerFunc) Name() string {
	return "HandlerFunc"
}
