// Package protocol runs caller code that drives wells and keeps the result.
package protocol

import (
	"context"
	"fmt"

	"github.com/aretw0/biocompute/pkg/experiment"
	"github.com/aretw0/biocompute/pkg/trace"
)

// Func is protocol code. Wells must be obtained from the context it receives.
type Func func(ctx context.Context) error

// Protocol is the captured result of running a Func.
type Protocol struct {
	Name  string
	trace *trace.Trace
}

// Capture runs fn inside a capture session and returns what it recorded.
func Capture(ctx context.Context, fn Func) (*Protocol, error) {
	t, err := trace.Capture(ctx, fn)
	if err != nil {
		return nil, err
	}
	return &Protocol{trace: t}, nil
}

// Trace exposes the underlying trace.
func (p *Protocol) Trace() *trace.Trace { return p.trace }

// Ops returns the recorded operations in emission order.
func (p *Protocol) Ops() []trace.TracedOp { return p.trace.Ops() }

// WellCount is the number of wells touched or allocated.
func (p *Protocol) WellCount() int { return p.trace.WellCount() }

// Experiments groups the recorded operations per well.
func (p *Protocol) Experiments() []experiment.Experiment {
	return experiment.Group(p.trace.Ops())
}

func (p *Protocol) String() string {
	return fmt.Sprintf("Protocol(ops=%d, wells=%d)", p.trace.Len(), p.WellCount())
}
