package event

import "reflect"

// Type identifies the exact dynamic Go type of an event. It is the key
// listeners are registered under. Lookup by Type never matches interfaces,
// embedded types, or other members of an event family.
//
// Type is comparable and usable as a map key. The zero Type matches nothing.
type Type struct {
	rt reflect.Type
}

// TypeOf returns the dynamic type of evt.
func TypeOf(evt Event) Type {
	if evt == nil {
		return Type{}
	}
	return Type{rt: reflect.TypeOf(evt)}
}

// TypeFor returns the Type for the static event type E.
//
//	event.TypeFor[*OrderPlaced]() == event.TypeOf(&OrderPlaced{})
func TypeFor[E Event]() Type {
	return Type{rt: reflect.TypeFor[E]()}
}

// IsZero reports whether t is the zero Type.
func (t Type) IsZero() bool {
	return t.rt == nil
}

// IsInterface reports whether t is an interface type. No event has an
// interface as its dynamic type, so such a Type never matches a lookup.
func (t Type) IsInterface() bool {
	return t.rt != nil && t.rt.Kind() == reflect.Interface
}

// Name returns the simple type name used in diagnostics, with any pointer
// indirection stripped ("OrderPlaced" for *orders.OrderPlaced).
func (t Type) Name() string {
	if t.rt == nil {
		return ""
	}
	rt := t.rt
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if name := rt.Name(); name != "" {
		return name
	}
	return rt.String()
}

// String returns the package-qualified type, e.g. "*orders.OrderPlaced".
func (t Type) String() string {
	if t.rt == nil {
		return "<nil>"
	}
	return t.rt.String()
}
