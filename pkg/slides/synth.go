package slides

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/biocompute/internal/logging"
	"github.com/aretw0/biocompute/pkg/color"
	"github.com/aretw0/biocompute/pkg/experiment"
	"github.com/aretw0/biocompute/pkg/ops"
	"github.com/aretw0/biocompute/pkg/plate"
)

// Synthesizer turns grouped experiments into a Deck.
type Synthesizer struct {
	palette color.Palette
	logger  *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithPalette overrides the reagent color table.
func WithPalette(p color.Palette) Option {
	return func(s *Synthesizer) {
		s.palette = p
	}
}

// WithLogger sets the structured logger used for per-slide debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

// New creates a Synthesizer using the default palette.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{
		palette: color.Default,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	return s
}

// step is an operation annotated with the well it belongs to.
type step struct {
	well int
	op   ops.Op
}

type wellKey struct {
	plate int
	label string
}

// Build replays exps batch by batch. It fails with an
// *ops.MalformedOperationError, and produces no slides, if any operation is
// not one of the known variants.
func (s *Synthesizer) Build(exps []experiment.Experiment) (*Deck, error) {
	batches, err := batch(exps)
	if err != nil {
		return nil, err
	}

	states := make(map[wellKey]*wellState)
	reagents := make(map[string]struct{})
	deck := &Deck{
		Slides: make([]Slide, 0, len(batches)),
		Legend: make(map[string]string),
	}

	for i, b := range batches {
		for _, st := range b {
			pos := plate.Locate(st.well)
			key := wellKey{plate: pos.Plate, label: pos.Label()}
			ws, ok := states[key]
			if !ok {
				ws = &wellState{}
				states[key] = ws
			}
			switch o := st.op.(type) {
			case ops.Fill:
				ws.fills = append(ws.fills, color.Portion{Reagent: o.Reagent.Name(), VolumeUL: o.VolumeUL})
				reagents[o.Reagent.Name()] = struct{}{}
			case ops.Mix:
				ws.mixed = true
			case ops.Image:
			}
		}

		slide := Slide{
			Title:  title(b),
			Plates: s.snapshot(states),
		}
		s.logger.Debug("slide built", "step", i+1, "title", slide.Title, "plates", len(slide.Plates))
		deck.Slides = append(deck.Slides, slide)
	}

	for name := range reagents {
		deck.Legend[name] = s.palette.Assign(name)
	}
	return deck, nil
}

// BuildWire decodes wire experiments with schema and builds them.
func (s *Synthesizer) BuildWire(wire [][]ops.Record, schema ops.Schema) (*Deck, error) {
	exps, err := experiment.Decode(wire, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to decode experiments: %w", err)
	}
	return s.Build(exps)
}

// batch pairs the i-th operation of every well. Positions are checked up front
// so a bad operation never yields a partial deck.
func batch(exps []experiment.Experiment) ([][]step, error) {
	maxOps := 0
	for w, exp := range exps {
		for pos, op := range exp {
			if err := checkVariant(op, w, pos); err != nil {
				return nil, err
			}
		}
		if len(exp) > maxOps {
			maxOps = len(exp)
		}
	}

	batches := make([][]step, 0, maxOps)
	for i := 0; i < maxOps; i++ {
		var b []step
		for w, exp := range exps {
			if i < len(exp) {
				b = append(b, step{well: w, op: exp[i]})
			}
		}
		batches = append(batches, b)
	}
	return batches, nil
}

func checkVariant(op ops.Op, well, pos int) error {
	switch op.(type) {
	case ops.Fill, ops.Mix, ops.Image:
		return nil
	}
	return &ops.MalformedOperationError{
		Well:     well,
		Position: pos,
		Kind:     fmt.Sprintf("%T", op),
		Reason:   "unrecognized operation kind",
	}
}

func (s *Synthesizer) snapshot(states map[wellKey]*wellState) []PlateSnapshot {
	byPlate := make(map[int]map[string]WellSummary)
	for key, ws := range states {
		wells, ok := byPlate[key.plate]
		if !ok {
			wells = make(map[string]WellSummary)
			byPlate[key.plate] = wells
		}
		wells[key.label] = ws.summary(s.palette)
	}

	ids := make([]int, 0, len(byPlate))
	for id := range byPlate {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]PlateSnapshot, 0, len(ids))
	for _, id := range ids {
		out = append(out, PlateSnapshot{
			Label: plate.Position{Plate: id}.PlateLabel(),
			Wells: byPlate[id],
		})
	}
	return out
}

// title describes a batch: fills grouped by reagent in order of first
// appearance, then mixes, then images, joined by "; ". The volume shown for a
// reagent is that of its first fill in the batch.
func title(b []step) string {
	type fillGroup struct {
		reagent string
		volume  float64
		labels  []string
	}
	var fills []*fillGroup
	byName := make(map[string]*fillGroup)
	mixes := make(map[string]struct{})
	images := make(map[string]struct{})
	for _, st := range b {
		label := plate.Locate(st.well).Label()
		switch o := st.op.(type) {
		case ops.Fill:
			g, ok := byName[o.Reagent.Name()]
			if !ok {
				g = &fillGroup{reagent: o.Reagent.Name(), volume: o.VolumeUL}
				byName[g.reagent] = g
				fills = append(fills, g)
			}
			g.labels = append(g.labels, label)
		case ops.Mix:
			mixes[label] = struct{}{}
		case ops.Image:
			images[label] = struct{}{}
		}
	}

	var parts []string
	for _, g := range fills {
		parts = append(parts, fmt.Sprintf("Fill %s with %s (%s µL)", plate.FormatRange(g.labels), g.reagent, formatVolume(g.volume)))
	}
	if len(mixes) > 0 {
		parts = append(parts, "Mix "+plate.FormatRange(keys(mixes)))
	}
	if len(images) > 0 {
		parts = append(parts, "Image "+plate.FormatRange(keys(images)))
	}
	if len(parts) == 0 {
		return "No-op"
	}
	return strings.Join(parts, "; ")
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

func formatVolume(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
