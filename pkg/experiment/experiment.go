// Package experiment regroups a flat operation log into per-well sequences,
// the form exchanged with the job service and read by slide synthesis.
package experiment

import (
	"cmp"
	"errors"
	"slices"

	"github.com/aretw0/biocompute/pkg/ops"
	"github.com/aretw0/biocompute/pkg/trace"
)

// Experiment is the ordered operation sequence of one well.
type Experiment []ops.Op

// Group buckets traced operations by well index. The result is indexed by
// well, has length max index + 1, and keeps each well's operations in
// identity order. Wells with no operations are empty.
func Group(traced []trace.TracedOp) []Experiment {
	maxWell := -1
	for _, t := range traced {
		if w := t.Op.Well(); w > maxWell {
			maxWell = w
		}
	}
	out := make([]Experiment, maxWell+1)
	for i := range out {
		out[i] = Experiment{}
	}
	// Identities increase with emission, but traces rebuilt with FromOps may
	// arrive out of order.
	for _, t := range sortedByID(traced) {
		w := t.Op.Well()
		out[w] = append(out[w], t.Op)
	}
	return out
}

func sortedByID(traced []trace.TracedOp) []trace.TracedOp {
	cp := append([]trace.TracedOp(nil), traced...)
	slices.SortStableFunc(cp, func(a, b trace.TracedOp) int { return cmp.Compare(a.ID, b.ID) })
	return cp
}

// Encode converts experiments to their wire form.
func Encode(exps []Experiment, schema ops.Schema) [][]ops.Record {
	out := make([][]ops.Record, len(exps))
	for w, exp := range exps {
		recs := make([]ops.Record, 0, len(exp))
		for _, op := range exp {
			recs = append(recs, schema.Encode(op))
		}
		out[w] = recs
	}
	return out
}

// Decode parses wire experiments. A record that cannot be decoded fails the
// whole payload with an *ops.MalformedOperationError naming its position.
func Decode(wire [][]ops.Record, schema ops.Schema) ([]Experiment, error) {
	out := make([]Experiment, len(wire))
	for w, recs := range wire {
		exp := make(Experiment, 0, len(recs))
		for pos, rec := range recs {
			op, err := schema.Decode(rec, w)
			if err != nil {
				var m *ops.MalformedOperationError
				if errors.As(err, &m) {
					m.Well, m.Position = w, pos
				}
				return nil, err
			}
			exp = append(exp, op)
		}
		out[w] = exp
	}
	return out, nil
}

// Ops flattens experiments into traced operations, well by well.
func Ops(exps []Experiment) []trace.TracedOp {
	var out []trace.TracedOp
	for _, exp := range exps {
		for _, op := range exp {
			out = append(out, trace.TracedOp{ID: len(out), Op: op})
		}
	}
	return out
}
