// Package trace records the operations emitted while protocol code runs.
package trace

import (
	"fmt"
	"sync"

	"github.com/aretw0/biocompute/pkg/ops"
)

// TracedOp is an operation tagged with the identity assigned at emission.
// Identities increase in emission order and are never reassigned.
type TracedOp struct {
	ID int
	Op ops.Op
}

// Trace collects operations during one capture session.
type Trace struct {
	mu        sync.Mutex
	ops       []TracedOp
	wellCount int
	nextID    int
	nextWell  int
	err       error
}

// New returns an empty trace.
func New() *Trace {
	return &Trace{}
}

// FromOps rebuilds a trace from operations that already carry identities.
// The next identity continues after the highest one present.
func FromOps(traced []TracedOp, wellCount int) *Trace {
	next := 0
	for _, t := range traced {
		if t.ID >= next {
			next = t.ID + 1
		}
	}
	return &Trace{
		ops:       append([]TracedOp(nil), traced...),
		wellCount: wellCount,
		nextID:    next,
		nextWell:  wellCount,
	}
}

// Emit records op and returns its identity.
func (t *Trace) Emit(op ops.Op) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.ops = append(t.ops, TracedOp{ID: id, Op: op})
	if w := op.Well() + 1; w > t.wellCount {
		t.wellCount = w
	}
	return id
}

// Range is the half-open interval [Start, End) of reserved well indices.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Start }

// Indices lists every index of the range in ascending order.
func (r Range) Indices() []int {
	out := make([]int, 0, r.Len())
	for i := r.Start; i < r.End; i++ {
		out = append(out, i)
	}
	return out
}

// AllocateWells reserves count fresh indices. Successive calls never overlap.
func (t *Trace) AllocateWells(count int) (Range, error) {
	if count < 0 {
		return Range{}, fmt.Errorf("allocate wells: count must be non-negative, got %d", count)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	start := t.nextWell
	t.nextWell += count
	if t.nextWell > t.wellCount {
		t.wellCount = t.nextWell
	}
	return Range{Start: start, End: t.nextWell}, nil
}

// UpdateWellCount raises the well count to cover index. It does not reserve
// the index: allocation ranges are tracked separately.
func (t *Trace) UpdateWellCount(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index+1 > t.wellCount {
		t.wellCount = index + 1
	}
}

// Ops returns a copy of the recorded operations in identity order.
func (t *Trace) Ops() []TracedOp {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TracedOp(nil), t.ops...)
}

// Len returns the number of recorded operations.
func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ops)
}

// WellCount is the high-water mark of well indices touched or allocated.
func (t *Trace) WellCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.wellCount
}

// Fail records err as the trace's sticky error. Only the first one is kept.
func (t *Trace) Fail(err error) {
	if err == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err == nil {
		t.err = err
	}
}

// Err returns the first error recorded by Fail.
func (t *Trace) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

func (t *Trace) String() string {
	return fmt.Sprintf("Trace(ops=%d, wells=%d)", t.Len(), t.WellCount())
}
