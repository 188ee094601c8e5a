package threadevent

import (
	"slices"
	"time"

	"github.com/randalmurphal/threadevent/pkg/threadevent/clock"
	"github.com/randalmurphal/threadevent/pkg/threadevent/event"
	"github.com/randalmurphal/threadevent/pkg/threadevent/listener"
)

// EventContext tracks the processing of one event through one publish call.
//
// Processing is timed from the event's creation, not from the start of the
// publish call, so the duration includes any time the event waited before
// being published.
//
// An EventContext is owned by the goroutine running the publish call and is
// not safe for concurrent use.
type EventContext struct {
	evt       event.Event
	start     time.Time
	clock     clock.Clock
	processed []listener.Listener
	completed bool
	duration  time.Duration
}

func newEventContext(evt event.Event, c clock.Clock) *EventContext {
	return &EventContext{
		evt:       evt,
		start:     evt.CreatedAt(),
		clock:     c,
		processed: []listener.Listener{},
	}
}

// RecordListenerProcessing appends l to the processed listeners.
func (ec *EventContext) RecordListenerProcessing(l listener.Listener) {
	ec.processed = append(ec.processed, l)
}

// Event returns the tracked event.
func (ec *EventContext) Event() event.Event {
	return ec.evt
}

// StartTime returns the instant processing is measured from, the event's
// creation time.
func (ec *EventContext) StartTime() time.Time {
	return ec.start
}

// ProcessingDuration returns the time elapsed since StartTime, as of now.
func (ec *EventContext) ProcessingDuration() time.Duration {
	return ec.clock.Now().Sub(ec.start)
}

// ProcessedListeners returns the listeners that reacted successfully, in the
// order they ran. The returned slice is a copy.
func (ec *EventContext) ProcessedListeners() []listener.Listener {
	return slices.Clone(ec.processed)
}

// ProcessedNames returns the names of ProcessedListeners.
func (ec *EventContext) ProcessedNames() []string {
	names := make([]string, 0, len(ec.processed))
	for _, l := range ec.processed {
		names = append(names, l.Name())
	}
	return names
}

// Completed reports whether every listener was dispatched. It is false when
// the exception handler aborted the publish.
func (ec *EventContext) Completed() bool {
	return ec.completed
}

// Duration returns the processing duration frozen when the publish call
// completed, or zero if it was aborted.
func (ec *EventContext) Duration() time.Duration {
	return ec.duration
}

func (ec *EventContext) complete() {
	ec.duration = ec.ProcessingDuration()
	ec.completed = true
}
