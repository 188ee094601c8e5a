package listener

import (
	"fmt"
	"slices"
	"sync"

	teerrors "github.com/randalmurphal/threadevent/pkg/threadevent/errors"
	"github.com/randalmurphal/threadevent/pkg/threadevent/event"
)

// Registry associates event types with the ordered listeners that react to them.
type Registry interface {
	// Register validates f by constructing one listener, then appends f to
	// the listeners of that listener's event type. Fails with a
	// *errors.ConstructionError when f cannot produce a listener.
	Register(f Factory) error

	// ListenersForEvent returns freshly constructed listeners for exactly t,
	// in registration order. It returns an empty slice when none are
	// registered and a *errors.ConstructionError when a factory fails.
	ListenersForEvent(t event.Type) ([]Listener, error)
}

// entry is one registration.
type entry struct {
	factory Factory
	name    string
}

// DefaultRegistry is the mutable Registry.
//
// Registration is expected to finish before publishing starts. Lookups take a
// read lock, so any number of publishers may look up listeners concurrently.
type DefaultRegistry struct {
	mu      sync.RWMutex
	entries map[event.Type][]entry
}

// Compile-time interface check.
var _ Registry = (*DefaultRegistry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		entries: make(map[event.Type][]entry),
	}
}

// Register implements Registry. Registering the same factory twice registers
// it twice.
func (r *DefaultRegistry) Register(f Factory) error {
	l, err := construct(f)
	if err != nil {
		return err
	}

	t := l.EventType()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[t] = append(r.entries[t], entry{factory: f, name: l.Name()})
	return nil
}

// MustRegister registers f, panicking on error.
func (r *DefaultRegistry) MustRegister(f Factory) {
	if err := r.Register(f); err != nil {
		panic(fmt.Sprintf("failed to register listener: %v", err))
	}
}

// ListenersForEvent implements Registry.
func (r *DefaultRegistry) ListenersForEvent(t event.Type) ([]Listener, error) {
	// Snapshot so factories run without the lock held.
	r.mu.RLock()
	entries := slices.Clone(r.entries[t])
	r.mu.RUnlock()

	listeners := make([]Listener, 0, len(entries))
	for _, e := range entries {
		l, err := construct(e.factory)
		if err != nil {
			return nil, err
		}
		listeners = append(listeners, l)
	}
	return listeners, nil
}

// Count returns the number of registrations for t.
func (r *DefaultRegistry) Count(t event.Type) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries[t])
}

// Names returns the names of the listeners registered for t, as observed at
// registration, in registration order.
func (r *DefaultRegistry) Names(t event.Type) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries[t]))
	for _, e := range r.entries[t] {
		names = append(names, e.name)
	}
	return names
}

// Types returns every event type with at least one registration.
// The order is not guaranteed.
func (r *DefaultRegistry) Types() []event.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]event.Type, 0, len(r.entries))
	for t := range r.entries {
		types = append(types, t)
	}
	return types
}

// readOnly is a Registry view that rejects registration.
type readOnly struct {
	inner Registry
}

// ReadOnly wraps r so that Register always fails with errors.ErrReadOnly
// without reaching r. Lookups are delegated. Wrapping a read-only registry
// returns it unchanged.
func ReadOnly(r Registry) Registry {
	if ro, ok := r.(*readOnly); ok {
		return ro
	}
	return &readOnly{inner: r}
}

// IsReadOnly reports whether r was produced by ReadOnly.
func IsReadOnly(r Registry) bool {
	_, ok := r.(*readOnly)
	return ok
}

// Register always fails.
func (r *readOnly) Register(Factory) error {
	return teerrors.ErrReadOnly
}

// ListenersForEvent delegates to the wrapped registry. The returned slice is
// a copy owned by the caller.
func (r *readOnly) ListenersForEvent(t event.Type) ([]Listener, error) {
	listeners, err := r.inner.ListenersForEvent(t)
	if err != nil {
		return nil, err
	}
	if listeners == nil {
		return []Listener{}, nil
	}
	return slices.Clip(slices.Clone(listeners)), nil
}
