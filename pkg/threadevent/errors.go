package threadevent

import "errors"

// Sentinel errors for publishing.
var (
	// ErrNilEvent indicates Publish was called without an event.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrNilContext indicates Publish was called with a nil context.
	ErrNilContext = errors.New("context cannot be nil")
)

// Sentinel errors for building a publisher.
var (
	// ErrRegistryRequired indicates Build was called without a listener registry.
	ErrRegistryRequired = errors.New("listener registry is required")

	// ErrUnknownHandlerMode indicates settings named an exception handler
	// that does not exist.
	ErrUnknownHandlerMode = errors.New("unknown exception handler mode")
)
