// Package errors defines the failure taxonomy of the dispatch pipeline.
//
// Every failure surfaced by threadevent belongs to one Kind:
//   - Construction: a listener factory could not produce a listener
//   - Unsupported: a mutation was attempted on a read-only registry
//   - Reaction: a listener's reaction to an event failed
//   - Handler: an exception handler re-raised a failure, aborting the publish
//
// All error types implement Unwrap, so errors.Is and errors.As see through
// them to the original cause.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a dispatch failure.
type Kind int

const (
	// KindUnknown is any error not produced by the dispatch pipeline.
	KindUnknown Kind = iota

	// KindConstruction indicates a listener could not be constructed.
	// Raised by registration and lookup; never routed to a handler.
	KindConstruction

	// KindUnsupported indicates an operation the receiver does not permit,
	// such as registering on a read-only registry.
	KindUnsupported

	// KindReaction indicates a listener's reaction failed.
	KindReaction

	// KindHandler indicates an exception handler re-raised a failure.
	KindHandler
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConstruction:
		return "construction"
	case KindUnsupported:
		return "unsupported"
	case KindReaction:
		return "reaction"
	case KindHandler:
		return "handler"
	default:
		return "unknown"
	}
}

// Sentinel errors.
var (
	// ErrReadOnly is returned by every mutation of a read-only registry.
	ErrReadOnly = fmt.Errorf("operation not permitted on a read-only registry: %w", errors.ErrUnsupported)

	// ErrNilFactory indicates a nil listener factory was registered.
	ErrNilFactory = errors.New("listener factory is nil")

	// ErrNilListener indicates a factory returned a nil listener without an error.
	ErrNilListener = errors.New("listener factory returned nil")

	// ErrNoEventType indicates a listener did not declare the event type it reacts to.
	ErrNoEventType = errors.New("listener declares no event type")

	// ErrInterfaceEventType indicates a listener declared an interface as its
	// event type. Lookup matches exact dynamic types, so it would never run.
	ErrInterfaceEventType = errors.New("listener event type is an interface")

	// ErrEventTypeMismatch indicates a listener was handed an event of a type
	// other than the one it is bound to.
	ErrEventTypeMismatch = errors.New("event type does not match listener")
)

// ConstructionError reports a listener that could not be instantiated.
type ConstructionError struct {
	// Listener names the listener being built, when known.
	Listener string
	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	if e.Listener != "" {
		return fmt.Sprintf("construct listener %s: %v", e.Listener, e.Err)
	}
	return fmt.Sprintf("construct listener: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// ReactionError wraps a failure raised by a listener while reacting to an event.
type ReactionError struct {
	// Event is the event type name.
	Event string
	// EventID is the identity of the event instance.
	EventID string
	// Stage is the lifecycle stage the event was in.
	Stage string
	// Listener is the listener name.
	Listener string
	// Err is the error the listener returned.
	Err error
}

// Error implements the error interface.
func (e *ReactionError) Error() string {
	return fmt.Sprintf("listener %s on event %s (ID: %s, stage: %s): %v",
		e.Listener, e.Event, e.EventID, e.Stage, e.Err)
}

// Unwrap returns the listener's error for errors.Is/As support.
func (e *ReactionError) Unwrap() error {
	return e.Err
}

// HandlerError wraps the failure an exception handler chose to re-raise.
// It aborts the remainder of a publish call.
type HandlerError struct {
	// Handler is the handler name.
	Handler string
	// Err is the re-raised error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("exception handler %s: %v", e.Handler, e.Err)
}

// Unwrap returns the re-raised error for errors.Is/As support.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic raised inside a listener or factory.
type PanicError struct {
	// Listener is the listener that panicked.
	Listener string
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("listener %s panicked: %v", e.Listener, e.Value)
}

// KindOf classifies err. When err wraps several pipeline errors the outermost
// meaning wins: Handler, then Reaction, then Construction, then Unsupported.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var handlerErr *HandlerError
	if errors.As(err, &handlerErr) {
		return KindHandler
	}

	var reactionErr *ReactionError
	if errors.As(err, &reactionErr) {
		return KindReaction
	}

	var constructionErr *ConstructionError
	if errors.As(err, &constructionErr) {
		return KindConstruction
	}

	if errors.Is(err, errors.ErrUnsupported) {
		return KindUnsupported
	}

	return KindUnknown
}

// IsConstruction reports whether err is a listener construction failure.
func IsConstruction(err error) bool {
	return KindOf(err) == KindConstruction
}

// IsUnsupported reports whether err is an unsupported-operation failure.
func IsUnsupported(err error) bool {
	return errors.Is(err, errors.ErrUnsupported)
}
