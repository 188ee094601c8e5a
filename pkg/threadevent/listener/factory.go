package listener

import (
	"reflect"
	"runtime"
	"runtime/debug"

	teerrors "github.com/randalmurphal/threadevent/pkg/threadevent/errors"
	"github.com/randalmurphal/threadevent/pkg/threadevent/event"
)

// Factory constructs a new listener. It is called once at registration to
// validate it and learn the listener's event type, then once per lookup.
type Factory func() (Listener, error)

// Initializer is implemented by listeners built with New that need setup
// beyond their zero value. An Init error is a construction error.
type Initializer interface {
	Init() error
}

// New returns a Factory that builds a zero-valued *L, calling Init when *L
// implements Initializer.
//
//	type Auditor struct{ seen int }
//	func (a *Auditor) Name() string            { return "Auditor" }
//	func (a *Auditor) EventType() event.Type   { return event.TypeFor[*OrderPlaced]() }
//	func (a *Auditor) React(ctx context.Context, evt event.Event) error { ... }
//
//	reg.Register(listener.New[Auditor]())
func New[L any, P interface {
	*L
	Listener
}]() Factory {
	return func() (Listener, error) {
		l := P(new(L))
		if initializer, ok := any(l).(Initializer); ok {
			if err := initializer.Init(); err != nil {
				return nil, err
			}
		}
		return l, nil
	}
}

// Func returns a Factory that builds a Typed listener, calling reactions for
// a fresh table on each construction so closures never share state across
// lookups.
func Func[E event.Event](name string, reactions func() Reactions[E]) Factory {
	return func() (Listener, error) {
		if reactions == nil {
			return NewTyped[E](name, nil), nil
		}
		return NewTyped(name, reactions()), nil
	}
}

// construct calls f, turning every way it can fail into a ConstructionError.
func construct(f Factory) (l Listener, err error) {
	if f == nil {
		return nil, &teerrors.ConstructionError{Err: teerrors.ErrNilFactory}
	}

	defer func() {
		if r := recover(); r != nil {
			l = nil
			err = &teerrors.ConstructionError{
				Err: &teerrors.PanicError{
					Listener: factoryName(f),
					Value:    r,
					Stack:    string(debug.Stack()),
				},
			}
		}
	}()

	l, err = f()
	if err != nil {
		return nil, &teerrors.ConstructionError{Listener: factoryName(f), Err: err}
	}
	if isNil(l) {
		return nil, &teerrors.ConstructionError{Listener: factoryName(f), Err: teerrors.ErrNilListener}
	}
	switch t := l.EventType(); {
	case t.IsZero():
		return nil, &teerrors.ConstructionError{Listener: l.Name(), Err: teerrors.ErrNoEventType}
	case t.IsInterface():
		return nil, &teerrors.ConstructionError{Listener: l.Name(), Err: teerrors.ErrInterfaceEventType}
	}
	return l, nil
}

// factoryName names a factory for diagnostics when no listener exists yet.
func factoryName(f Factory) string {
	if fn := runtime.FuncForPC(reflect.ValueOf(f).Pointer()); fn != nil {
		return fn.Name()
	}
	return "unknown"
}

// isNil reports whether l is nil or a typed nil pointer.
func isNil(l Listener) bool {
	if l == nil {
		return true
	}
	v := reflect.ValueOf(l)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
