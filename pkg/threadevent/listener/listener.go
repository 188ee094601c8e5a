// Package listener defines the units of reaction to events and the registry
// that associates them with event types.
//
// A Listener is bound to exactly one event type. The registry never stores
// listener instances: it stores a Factory per registration and builds fresh
// listeners on every lookup, so listeners must not rely on state surviving
// between publish calls.
//
//	reg := listener.NewRegistry()
//	reg.Register(listener.Func("mailer", func() listener.Reactions[*OrderPlaced] {
//	    return listener.Reactions[*OrderPlaced]{
//	        event.StageStart: sendConfirmation,
//	    }
//	}))
package listener

import (
	"context"
	"fmt"

	teerrors "github.com/randalmurphal/threadevent/pkg/threadevent/errors"
	"github.com/randalmurphal/threadevent/pkg/threadevent/event"
)

// Listener reacts to events of one type.
type Listener interface {
	// Name identifies the listener in diagnostics.
	Name() string

	// EventType is the exact event type this listener is registered under.
	EventType() event.Type

	// React handles evt. A returned error is routed to the publisher's
	// exception handler.
	React(ctx context.Context, evt event.Event) error
}

// Reaction handles an event of type E in one lifecycle stage.
type Reaction[E event.Event] func(ctx context.Context, evt E) error

// Reactions maps each lifecycle stage to the code that runs for it.
// Stages without an entry are acknowledged without doing anything.
type Reactions[E event.Event] map[event.Stage]Reaction[E]

// Typed is a Listener bound to the event type E that dispatches on the
// event's current stage through a Reactions table.
type Typed[E event.Event] struct {
	name      string
	reactions Reactions[E]
}

// Compile-time interface check.
var _ Listener = (*Typed[*event.Base])(nil)

// NewTyped creates a Typed listener. An empty name defaults to the event
// type name suffixed with "Listener".
func NewTyped[E event.Event](name string, reactions Reactions[E]) *Typed[E] {
	if name == "" {
		name = event.TypeFor[E]().Name() + "Listener"
	}
	return &Typed[E]{
		name:      name,
		reactions: reactions,
	}
}

// Name returns the listener name.
func (l *Typed[E]) Name() string {
	return l.name
}

// EventType returns the Type of E.
func (l *Typed[E]) EventType() event.Type {
	return event.TypeFor[E]()
}

// React runs the reaction registered for evt's current stage.
func (l *Typed[E]) React(ctx context.Context, evt event.Event) error {
	typed, ok := evt.(E)
	if !ok {
		return fmt.Errorf("%w: %s expects %s, got %s",
			teerrors.ErrEventTypeMismatch, l.name, l.EventType(), event.TypeOf(evt))
	}

	reaction, ok := l.reactions[evt.Stage()]
	if !ok || reaction == nil {
		return nil
	}
	return reaction(ctx, typed)
}

// Handles reports whether the listener has a reaction for stage s.
func (l *Typed[E]) Handles(s event.Stage) bool {
	reaction, ok := l.reactions[s]
	return ok && reaction != nil
}
