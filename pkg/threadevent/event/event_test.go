package event_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/threadevent/pkg/threadevent/clock"
	"github.com/randalmurphal/threadevent/pkg/threadevent/event"
	"github.com/randalmurphal/threadevent/pkg/threadevent/id"
)

type orderPlaced struct {
	event.Base
	OrderID string
}

type orderShipped struct {
	event.Base
}

// auditedEvent shadows MarkPrePersist with a hook that may fail.
type auditedEvent struct {
	event.Base
	reject bool
}

var errRejected = errors.New("rejected by audit")

func (e *auditedEvent) MarkPrePersist() error {
	if e.reject {
		return errRejected
	}
	return e.Base.MarkPrePersist()
}

type renamedEvent struct {
	event.Base
}

func (renamedEvent) EventName() string { return "order.renamed" }

func TestNewBaseDefaults(t *testing.T) {
	before := time.Now()
	evt := &orderPlaced{Base: event.NewBase()}
	after := time.Now()

	assert.NotEmpty(t, evt.ID())
	assert.Equal(t, event.StageStart, evt.Stage())
	assert.False(t, evt.CreatedAt().Before(before))
	assert.False(t, evt.CreatedAt().After(after))
}

func TestDistinctIdentities(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		evt := &orderPlaced{Base: event.NewBase()}
		_, dup := seen[evt.ID()]
		require.False(t, dup, "duplicate event id %s", evt.ID())
		seen[evt.ID()] = struct{}{}
	}
}

func TestIdentityStableAcrossTransitions(t *testing.T) {
	evt := &orderPlaced{Base: event.NewBase()}
	id, createdAt := evt.ID(), evt.CreatedAt()

	transitions := []struct {
		fn   func() error
		want event.Stage
	}{
		{evt.MarkPrePersist, event.StagePrePersistence},
		{evt.MarkPostPersist, event.StagePostPersistence},
		{evt.MarkSuccess, event.StageSuccess},
		{evt.MarkFail, event.StageFailed},
		{evt.MarkEnd, event.StageEnd},
		{evt.Start, event.StageStart},
		// Unordered transitions are allowed.
		{evt.MarkEnd, event.StageEnd},
		{evt.MarkPrePersist, event.StagePrePersistence},
	}

	for _, tr := range transitions {
		require.NoError(t, tr.fn())
		assert.Equal(t, tr.want, evt.Stage())
		assert.Equal(t, id, evt.ID())
		assert.Equal(t, createdAt, evt.CreatedAt())
	}
}

func TestOptions(t *testing.T) {
	t.Run("explicit id and stage", func(t *testing.T) {
		b := event.NewBase(event.WithID("evt-1"), event.WithStage(event.StageEnd))
		assert.Equal(t, "evt-1", b.ID())
		assert.Equal(t, event.StageEnd, b.Stage())
	})

	t.Run("id generator", func(t *testing.T) {
		b := event.NewBase(event.WithIDGenerator(id.GeneratorFunc(func() string { return "gen-1" })))
		assert.Equal(t, "gen-1", b.ID())
	})

	t.Run("nil generator keeps default", func(t *testing.T) {
		b := event.NewBase(event.WithIDGenerator(nil))
		assert.NotEmpty(t, b.ID())
	})

	t.Run("clock", func(t *testing.T) {
		start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		b := event.NewBase(event.WithClock(clock.NewManual(start)))
		assert.Equal(t, start, b.CreatedAt())
	})

	t.Run("timestamp overrides clock", func(t *testing.T) {
		ts := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		b := event.NewBase(
			event.WithClock(clock.NewManual(time.Now())),
			event.WithTimestamp(ts),
		)
		assert.Equal(t, ts, b.CreatedAt())
	})
}

func TestShadowedTransition(t *testing.T) {
	evt := &auditedEvent{Base: event.NewBase(), reject: true}

	err := evt.MarkPrePersist()
	assert.ErrorIs(t, err, errRejected)
	assert.Equal(t, event.StageStart, evt.Stage())

	evt.reject = false
	require.NoError(t, evt.MarkPrePersist())
	assert.Equal(t, event.StagePrePersistence, evt.Stage())

	// Used through the interface, the shadowing method wins.
	var e event.Event = &auditedEvent{Base: event.NewBase(), reject: true}
	assert.Error(t, e.MarkPrePersist())
}

func TestTypeAndName(t *testing.T) {
	placed := &orderPlaced{Base: event.NewBase()}
	shipped := &orderShipped{Base: event.NewBase()}

	assert.Equal(t, event.TypeFor[*orderPlaced](), event.TypeOf(placed))
	assert.NotEqual(t, event.TypeOf(placed), event.TypeOf(shipped))
	assert.Equal(t, event.TypeOf(placed), event.TypeOf(&orderPlaced{Base: event.NewBase()}))

	assert.Equal(t, "orderPlaced", event.TypeOf(placed).Name())
	assert.Equal(t, "*event_test.orderPlaced", event.TypeOf(placed).String())
	assert.Equal(t, "orderPlaced", event.NameOf(placed))
	assert.Equal(t, "order.renamed", event.NameOf(&renamedEvent{Base: event.NewBase()}))

	// The embedded Base is a different type from the event embedding it.
	assert.NotEqual(t, event.TypeFor[*event.Base](), event.TypeOf(placed))

	var zero event.Type
	assert.True(t, zero.IsZero())
	assert.True(t, event.TypeOf(nil).IsZero())
	assert.Equal(t, "", zero.Name())
	assert.Equal(t, "<nil>", zero.String())

	assert.True(t, event.TypeFor[event.Event]().IsInterface())
	assert.False(t, event.TypeOf(placed).IsInterface())
	assert.False(t, zero.IsInterface())

	keyed := map[event.Type]int{event.TypeOf(placed): 1}
	assert.Equal(t, 1, keyed[event.TypeFor[*orderPlaced]()])
}

func TestStageString(t *testing.T) {
	tests := []struct {
		stage    event.Stage
		expected string
	}{
		{event.StageStart, "START"},
		{event.StagePrePersistence, "PRE_PERSISTENCE"},
		{event.StagePostPersistence, "POST_PERSISTENCE"},
		{event.StageSuccess, "SUCCESS"},
		{event.StageFailed, "FAILED"},
		{event.StageEnd, "END"},
		{event.Stage(42), "Stage(42)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.stage.String())
		})
	}
}

func TestParseStage(t *testing.T) {
	for _, s := range event.Stages() {
		got, err := event.ParseStage(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := event.ParseStage(" pre-persistence ")
	require.NoError(t, err)
	assert.Equal(t, event.StagePrePersistence, got)

	_, err = event.ParseStage("ARCHIVED")
	assert.Error(t, err)
}

func TestStageJSON(t *testing.T) {
	type settings struct {
		Stage event.Stage `json:"stage"`
	}

	data, err := json.Marshal(settings{Stage: event.StageSuccess})
	require.NoError(t, err)
	assert.JSONEq(t, `{"stage":"SUCCESS"}`, string(data))

	var s settings
	require.NoError(t, json.Unmarshal([]byte(`{"stage":"post_persistence"}`), &s))
	assert.Equal(t, event.StagePostPersistence, s.Stage)

	assert.Error(t, json.Unmarshal([]byte(`{"stage":"nope"}`), &s))

	_, err = json.Marshal(settings{Stage: event.Stage(-1)})
	assert.Error(t, err)
}

func TestTransition(t *testing.T) {
	evt := &orderPlaced{Base: event.NewBase()}
	for _, s := range event.Stages() {
		require.NoError(t, event.Transition(evt, s))
		assert.Equal(t, s, evt.Stage())
	}

	assert.Error(t, event.Transition(evt, event.Stage(99)))
	assert.Equal(t, event.StageEnd, evt.Stage())

	audited := &auditedEvent{Base: event.NewBase(), reject: true}
	assert.ErrorIs(t, event.Transition(audited, event.StagePrePersistence), errRejected)
	assert.Equal(t, event.StageStart, audited.Stage())
}
