package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// SignalContext is cancelled by SIGINT, SIGTERM or Cancel, and remembers
// which signal stopped it.
type SignalContext struct {
	context.Context
	Cancel func()

	mu  sync.Mutex
	sig os.Signal
}

// NewSignalContext derives a SignalContext from parent. Signal delivery is
// released as soon as the context is done.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, Cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			sc.mu.Lock()
			sc.sig = sig
			sc.mu.Unlock()
			cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sig
}
