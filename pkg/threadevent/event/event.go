// Package event defines the occurrences dispatched by threadevent.
//
// An event carries a stable identity, a creation timestamp, and a mutable
// lifecycle Stage. Concrete events embed Base:
//
//	type OrderPlaced struct {
//	    event.Base
//	    OrderID string
//	}
//
//	evt := &OrderPlaced{Base: event.NewBase(), OrderID: "o-1"}
//	evt.MarkPrePersist()
//
// The dynamic type of an event (here *OrderPlaced) is the key listeners are
// registered under; see Type.
package event

import (
	"fmt"
	"time"

	"github.com/randalmurphal/threadevent/pkg/threadevent/clock"
	"github.com/randalmurphal/threadevent/pkg/threadevent/id"
)

// Event is an identified occurrence with a lifecycle stage.
type Event interface {
	// ID is the globally unique identity, fixed at construction.
	ID() string

	// CreatedAt is the wall-clock time of construction, fixed at construction.
	CreatedAt() time.Time

	// Stage is the current lifecycle stage.
	Stage() Stage

	Lifecycle
}

// Lifecycle moves an event between stages.
//
// Each transition is an unconditional assignment: any stage may follow any
// other. Transitions return an error so that an embedding type can shadow one
// with a hook that may fail before delegating to Base.
type Lifecycle interface {
	Start() error
	MarkPrePersist() error
	MarkPostPersist() error
	MarkSuccess() error
	MarkFail() error
	MarkEnd() error
}

// Named lets an event override the diagnostic name derived from its type.
type Named interface {
	EventName() string
}

// NameOf returns the diagnostic name of evt: its EventName when it implements
// Named, otherwise the simple name of its dynamic type.
func NameOf(evt Event) string {
	if n, ok := evt.(Named); ok {
		return n.EventName()
	}
	return TypeOf(evt).Name()
}

// Base implements Event and is meant to be embedded. Build it with NewBase;
// a zero Base has no identity.
type Base struct {
	id        string
	createdAt time.Time
	stage     Stage
}

// Compile-time interface check.
var _ Event = (*Base)(nil)

// Option configures event construction.
type Option func(*config)

type config struct {
	id        string
	gen       id.Generator
	clock     clock.Clock
	timestamp time.Time
	stage     Stage
}

// WithID sets a specific identity (default: generated).
func WithID(v string) Option {
	return func(cfg *config) {
		cfg.id = v
	}
}

// WithIDGenerator sets the identity generator (default: id.UUID).
func WithIDGenerator(gen id.Generator) Option {
	return func(cfg *config) {
		if gen != nil {
			cfg.gen = gen
		}
	}
}

// WithClock sets the clock the creation timestamp is read from
// (default: clock.Real).
func WithClock(c clock.Clock) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.clock = c
		}
	}
}

// WithTimestamp sets a specific creation timestamp, overriding the clock.
func WithTimestamp(t time.Time) Option {
	return func(cfg *config) {
		cfg.timestamp = t
	}
}

// WithStage sets the initial stage (default: StageStart).
func WithStage(s Stage) Option {
	return func(cfg *config) {
		cfg.stage = s
	}
}

// NewBase creates the identity, timestamp, and initial stage of an event.
func NewBase(opts ...Option) Base {
	cfg := &config{
		gen:   id.UUID,
		clock: clock.Real,
		stage: StageStart,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.id == "" {
		cfg.id = cfg.gen.New()
	}
	if cfg.timestamp.IsZero() {
		cfg.timestamp = cfg.clock.Now()
	}

	return Base{
		id:        cfg.id,
		createdAt: cfg.timestamp,
		stage:     cfg.stage,
	}
}

// ID returns the event identity.
func (b *Base) ID() string {
	return b.id
}

// CreatedAt returns the creation timestamp.
func (b *Base) CreatedAt() time.Time {
	return b.createdAt
}

// Stage returns the current lifecycle stage.
func (b *Base) Stage() Stage {
	return b.stage
}

// Start moves the event to StageStart.
func (b *Base) Start() error {
	b.stage = StageStart
	return nil
}

// MarkPrePersist moves the event to StagePrePersistence.
func (b *Base) MarkPrePersist() error {
	b.stage = StagePrePersistence
	return nil
}

// MarkPostPersist moves the event to StagePostPersistence.
func (b *Base) MarkPostPersist() error {
	b.stage = StagePostPersistence
	return nil
}

// MarkSuccess moves the event to StageSuccess.
func (b *Base) MarkSuccess() error {
	b.stage = StageSuccess
	return nil
}

// MarkFail moves the event to StageFailed.
func (b *Base) MarkFail() error {
	b.stage = StageFailed
	return nil
}

// MarkEnd moves the event to StageEnd.
func (b *Base) MarkEnd() error {
	b.stage = StageEnd
	return nil
}

// Transition moves l to stage s through the matching lifecycle method, so
// that any hook an embedding type adds to that method runs.
func Transition(l Lifecycle, s Stage) error {
	switch s {
	case StageStart:
		return l.Start()
	case StagePrePersistence:
		return l.MarkPrePersist()
	case StagePostPersistence:
		return l.MarkPostPersist()
	case StageSuccess:
		return l.MarkSuccess()
	case StageFailed:
		return l.MarkFail()
	case StageEnd:
		return l.MarkEnd()
	default:
		return fmt.Errorf("invalid stage %s", s)
	}
}
