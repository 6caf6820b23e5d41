package slides

import (
	"sort"

	"github.com/aretw0/biocompute/pkg/color"
)

// FillSummary is one dispensed portion inside a well snapshot.
type FillSummary struct {
	Reagent  string  `json:"reagent"`
	VolumeUL float64 `json:"volume_ul"`
}

// WellSummary is the rendered state of one well at a slide.
type WellSummary struct {
	Color    string        `json:"color"`
	VolumeUL float64       `json:"volume_ul"`
	Mixed    bool          `json:"mixed"`
	Fills    []FillSummary `json:"fills"`
}

// PlateSnapshot maps well labels ("A1") of one plate to their state.
type PlateSnapshot struct {
	Label string                 `json:"label"`
	Wells map[string]WellSummary `json:"wells"`
}

// Slide is the state of every touched plate after one batch.
type Slide struct {
	Title  string          `json:"title"`
	Plates []PlateSnapshot `json:"plates"`
}

// Deck is the synthesis output.
type Deck struct {
	Slides []Slide           `json:"slides"`
	Legend map[string]string `json:"reagent_legend"`
}

// LegendEntry is one reagent of the legend.
type LegendEntry struct {
	Reagent string
	Color   string
}

// LegendEntries returns the legend sorted by reagent name.
func (d *Deck) LegendEntries() []LegendEntry {
	out := make([]LegendEntry, 0, len(d.Legend))
	for name, c := range d.Legend {
		out = append(out, LegendEntry{Reagent: name, Color: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reagent < out[j].Reagent })
	return out
}

// wellState accumulates one well during replay. mixed is never reset.
type wellState struct {
	fills []color.Portion
	mixed bool
}

func (w *wellState) volume() float64 {
	var v float64
	for _, f := range w.fills {
		v += f.VolumeUL
	}
	return v
}

func (w *wellState) summary(p color.Palette) WellSummary {
	fills := make([]FillSummary, len(w.fills))
	for i, f := range w.fills {
		fills[i] = FillSummary{Reagent: f.Reagent, VolumeUL: f.VolumeUL}
	}
	return WellSummary{
		Color:    p.Blend(w.fills),
		VolumeUL: w.volume(),
		Mixed:    w.mixed,
		Fills:    fills,
	}
}
