package threadevent

import (
	"github.com/randalmurphal/threadevent/pkg/threadevent/clock"
	"github.com/randalmurphal/threadevent/pkg/threadevent/event"
	"github.com/randalmurphal/threadevent/pkg/threadevent/observability"
)

// tracker opens and finalizes EventContexts.
type tracker struct {
	logger observability.Logger
	clock  clock.Clock
}

func (t *tracker) startTracking(evt event.Event) *EventContext {
	return newEventContext(evt, t.clock)
}

func (t *tracker) completeTracking(ec *EventContext) {
	ec.complete()
	observability.LogPublishComplete(t.logger,
		event.NameOf(ec.evt), ec.evt.ID(), ec.Duration(), len(ec.processed))
}
