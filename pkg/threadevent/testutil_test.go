package threadevent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/threadevent/pkg/threadevent/event"
	"github.com/randalmurphal/threadevent/pkg/threadevent/listener"
	"github.com/randalmurphal/threadevent/pkg/threadevent/observability"
)

// Test event types used across tests

// orderPlaced is the main test event.
type orderPlaced struct {
	event.Base
	OrderID string
}

func newOrderPlaced(opts ...event.Option) *orderPlaced {
	return &orderPlaced{Base: event.NewBase(opts...), OrderID: "o-1"}
}

// orderCancelled has no listeners in most tests.
type orderCancelled struct {
	event.Base
}

var errListener = errors.New("listener failed")

// Helper listener factories

// trackingListener records its name in *trace on every START reaction.
func trackingListener(name string, trace *[]string) listener.Factory {
	return listener.Func(name, func() listener.Reactions[*orderPlaced] {
		return listener.Reactions[*orderPlaced]{
			event.StageStart: func(context.Context, *orderPlaced) error {
				*trace = append(*trace, name)
				return nil
			},
		}
	})
}

// failingListener records its name, then fails with err.
func failingListener(name string, trace *[]string, err error) listener.Factory {
	return listener.Func(name, func() listener.Reactions[*orderPlaced] {
		return listener.Reactions[*orderPlaced]{
			event.StageStart: func(context.Context, *orderPlaced) error {
				*trace = append(*trace, name)
				return err
			},
		}
	})
}

// panickingListener panics with value.
func panickingListener(name string, value any) listener.Factory {
	return listener.Func(name, func() listener.Reactions[*orderPlaced] {
		return listener.Reactions[*orderPlaced]{
			event.StageStart: func(context.Context, *orderPlaced) error {
				panic(value)
			},
		}
	})
}

// newRegistry registers factories in order.
func newRegistry(t *testing.T, factories ...listener.Factory) *listener.DefaultRegistry {
	t.Helper()
	reg := listener.NewRegistry()
	for _, f := range factories {
		require.NoError(t, reg.Register(f))
	}
	return reg
}

// newPublisher builds a silent publisher over reg.
func newPublisher(t *testing.T, reg listener.Registry, configure ...func(*Builder)) *Publisher {
	t.Helper()
	b := NewBuilder(reg).WithLogger(observability.NopLogger{})
	for _, fn := range configure {
		fn(b)
	}
	pub, err := b.Build()
	require.NoError(t, err)
	return pub
}

// handlerCall is one recorded ExceptionHandler invocation.
type handlerCall struct {
	evt      event.Event
	listener string
	err      error
}

// recordingHandler records calls and returns result from each.
type recordingHandler struct {
	calls  []handlerCall
	result func(err error) error
}

func (h *recordingHandler) Handle(_ context.Context, evt event.Event, l listener.Listener, err error) error {
	h.calls = append(h.calls, handlerCall{evt: evt, listener: l.Name(), err: err})
	if h.result == nil {
		return nil
	}
	return h.result(err)
}

func (h *recordingHandler) Name() string { return "recordingHandler" }

// logEntry is one captured log line.
type logEntry struct {
	level string
	msg   string
	args  []any
}

func (e logEntry) value(key string) any {
	for i := 0; i+1 < len(e.args); i += 2 {
		if e.args[i] == key {
			return e.args[i+1]
		}
	}
	return nil
}

// recordingLogger captures log calls in order.
type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("DEBUG", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("INFO", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("WARN", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("ERROR", msg, args) }

func (l *recordingLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.msg)
	}
	return out
}

func (l *recordingLogger) find(msg string) (logEntry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, e := range l.entries {
		if e.msg == msg {
			return e, true
		}
	}
	return logEntry{}, false
}
