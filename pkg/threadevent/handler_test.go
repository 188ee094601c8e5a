package threadevent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/randalmurphal/threadevent/pkg/threadevent/clock"
	"github.com/randalmurphal/threadevent/pkg/threadevent/event"
	"github.com/randalmurphal/threadevent/pkg/threadevent/listener"
)

func TestRethrowHandler(t *testing.T) {
	logger := &recordingLogger{}
	h := NewRethrowHandler(logger)
	l := listener.NewTyped[*orderPlaced]("Mailer", nil)

	err := h.Handle(context.Background(), newOrderPlaced(), l, errListener)
	assert.Same(t, errListener, err)
	assert.Equal(t, "RethrowHandler", h.Name())

	entry, ok := logger.find("error processing event")
	assert.True(t, ok)
	assert.Equal(t, "ERROR", entry.level)
	assert.Equal(t, "orderPlaced", entry.value("event"))
	assert.Equal(t, "Mailer", entry.value("listener"))
	assert.Equal(t, errListener.Error(), entry.value("error"))
}

func TestSwallowHandler(t *testing.T) {
	logger := &recordingLogger{}
	h := NewSwallowHandler(logger)
	l := listener.NewTyped[*orderPlaced]("Mailer", nil)

	err := h.Handle(context.Background(), newOrderPlaced(), l, errListener)
	assert.NoError(t, err)
	assert.Equal(t, "SwallowHandler", h.Name())

	entry, ok := logger.find("listener failure ignored")
	assert.True(t, ok)
	assert.Equal(t, "WARN", entry.level)
}

func TestHandlersWithoutLogger(t *testing.T) {
	l := listener.NewTyped[*orderPlaced]("Mailer", nil)
	assert.NotPanics(t, func() {
		_ = NewRethrowHandler(nil).Handle(context.Background(), newOrderPlaced(), l, errListener)
		_ = NewSwallowHandler(nil).Handle(context.Background(), newOrderPlaced(), l, errListener)
	})
}

func TestHandlerFunc(t *testing.T) {
	errWrapped := errors.New("wrapped")
	var seen event.Event
	h := HandlerFunc(func(_ context.Context, evt event.Event, _ listener.Listener, err error) error {
		seen = evt
		return errors.Join(errWrapped, err)
	})

	evt := newOrderPlaced()
	err := h.Handle(context.Background(), evt, listener.NewTyped[*orderPlaced]("x", nil), errListener)
	assert.ErrorIs(t, err, errWrapped)
	assert.ErrorIs(t, err, errListener)
	assert.Same(t, evt, seen)
	assert.Equal(t, "HandlerFunc", h.Name())
}

func TestEventContext(t *testing.T) {
	evt := newOrderPlaced()
	ec := newEventContext(evt, clock.Real)

	a := listener.NewTyped[*orderPlaced]("a", nil)
	b := listener.NewTyped[*orderPlaced]("b", nil)
	ec.RecordListenerProcessing(a)
	ec.RecordListenerProcessing(b)

	got := ec.ProcessedListeners()
	assert.Equal(t, []string{"a", "b"}, ec.ProcessedNames())

	// Mutating the returned slice leaves the context unchanged.
	got[0] = b
	assert.Equal(t, []string{"a", "b"}, ec.ProcessedNames())

	assert.False(t, ec.Completed())
	assert.Zero(t, ec.Duration())
	assert.Equal(t, evt.CreatedAt(), ec.StartTime())
}
