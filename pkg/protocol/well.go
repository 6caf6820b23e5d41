package protocol

import (
	"context"
	"fmt"

	"github.com/aretw0/biocompute/pkg/ops"
	"github.com/aretw0/biocompute/pkg/reagent"
	"github.com/aretw0/biocompute/pkg/trace"
)

// Well is a handle on one abstract container. It holds no operations itself;
// every call is emitted into the owning trace.
type Well struct {
	index int
	trace *trace.Trace
}

// NewWell builds a handle for index directly, raising the trace's well count.
func NewWell(index int, t *trace.Trace) *Well {
	t.UpdateWellCount(index)
	return &Well{index: index, trace: t}
}

// Wells allocates count fresh wells from the trace bound to ctx.
func Wells(ctx context.Context, count int) ([]*Well, error) {
	t, err := trace.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	r, err := t.AllocateWells(count)
	if err != nil {
		return nil, err
	}
	out := make([]*Well, 0, r.Len())
	for _, i := range r.Indices() {
		out = append(out, &Well{index: i, trace: t})
	}
	return out, nil
}

// Index returns the abstract well index.
func (w *Well) Index() int { return w.index }

// Fill dispenses volume microliters of r into the well.
func (w *Well) Fill(volume float64, r reagent.Reagent) *Well {
	return w.emit(ops.Fill{WellIdx: w.index, Reagent: r, VolumeUL: volume})
}

// Mix agitates the well.
func (w *Well) Mix() *Well {
	return w.emit(ops.Mix{WellIdx: w.index})
}

// Image photographs the well.
func (w *Well) Image() *Well {
	return w.emit(ops.Image{WellIdx: w.index})
}

// emit records op, or stores the validation failure on the trace so the
// capture session reports it while the chain keeps going.
func (w *Well) emit(op ops.Op) *Well {
	if err := ops.Validate(op); err != nil {
		w.trace.Fail(err)
		return w
	}
	w.trace.Emit(op)
	return w
}

func (w *Well) String() string {
	return fmt.Sprintf("Well(%d)", w.index)
}
