package trace

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrNoActiveTrace is returned when wells are requested outside a capture session.
	ErrNoActiveTrace = errors.New("no active trace: wells used outside of a capture session")

	// ErrDoubleCapture is returned when a capture session starts while another is active.
	ErrDoubleCapture = errors.New("another capture session is already active")
)

type ctxKey struct{}

// slot holds the single process-wide active trace.
var slot struct {
	mu     sync.Mutex
	active *Trace
}

// WithTrace binds t to the returned context.
func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext returns the trace bound to ctx.
func FromContext(ctx context.Context) (*Trace, error) {
	if ctx != nil {
		if t, ok := ctx.Value(ctxKey{}).(*Trace); ok && t != nil {
			return t, nil
		}
	}
	return nil, ErrNoActiveTrace
}

// Active reports the trace of the running capture session, if any.
func Active() *Trace {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.active
}

// Capture runs fn with a fresh trace bound to its context. The session slot is
// released on every exit path, including a panic in fn, which is re-raised.
// The returned trace is non-nil whenever the session started.
func Capture(ctx context.Context, fn func(ctx context.Context) error) (*Trace, error) {
	t := New()
	if err := acquire(t); err != nil {
		return nil, err
	}
	defer release(t)

	if err := fn(WithTrace(ctx, t)); err != nil {
		return t, err
	}
	if err := t.Err(); err != nil {
		return t, err
	}
	return t, nil
}

func acquire(t *Trace) error {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.active != nil {
		return ErrDoubleCapture
	}
	slot.active = t
	return nil
}

func release(t *Trace) {
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.active == t {
		slot.active = nil
	}
}
