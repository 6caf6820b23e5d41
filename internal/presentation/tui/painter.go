package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/biocompute/pkg/plate"
	"github.com/aretw0/biocompute/pkg/slides"
	"github.com/muesli/termenv"
)

// Well glyphs.
const (
	glyphFilled = "●"
	glyphMixed  = "↻"
	glyphEmpty  = "○"
)

// Painter renders slides as colored character cells.
type Painter struct {
	out *termenv.Output
}

// NewPainter paints for w. The color profile is detected from w unless an
// explicit termenv.WithProfile option is given.
func NewPainter(w io.Writer, opts ...termenv.OutputOption) *Painter {
	return &Painter{out: termenv.NewOutput(w, opts...)}
}

// Heading renders the experiment name.
func (p *Painter) Heading(title string) string {
	return p.out.String(title).Bold().Underline().String()
}

// StepHeader renders "Step i of n" followed by the slide title.
func (p *Painter) StepHeader(index, total int, title string) string {
	counter := p.out.String(fmt.Sprintf("Step %d of %d", index+1, total)).Faint().String()
	return counter + "  " + p.out.String(title).Bold().String()
}

// Plate renders one 8x12 plate grid.
func (p *Painter) Plate(snap slides.PlateSnapshot) string {
	var b strings.Builder
	b.WriteString("   ")
	for c := 1; c <= plate.Cols; c++ {
		b.WriteString(p.out.String(fmt.Sprintf("%3d", c)).Faint().String())
	}
	b.WriteString("\n")
	for r := 0; r < plate.Rows; r++ {
		b.WriteString("  ")
		b.WriteString(p.out.String(plate.RowLetters[r : r+1]).Faint().String())
		for c := 0; c < plate.Cols; c++ {
			b.WriteString("  ")
			w, ok := snap.Wells[plate.Label(r, c)]
			b.WriteString(p.cell(w, ok))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (p *Painter) cell(w slides.WellSummary, ok bool) string {
	if !ok {
		return p.out.String(glyphEmpty).Faint().String()
	}
	glyph := glyphFilled
	if w.Mixed {
		glyph = glyphMixed
	}
	return p.out.String(glyph).Foreground(p.out.Color(w.Color)).String()
}

// Legend renders the reagent legend on one line.
func (p *Painter) Legend(entries []slides.LegendEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		dot := p.out.String(glyphFilled).Foreground(p.out.Color(e.Color)).String()
		parts = append(parts, " "+dot+" "+e.Reagent)
	}
	return strings.Join(parts, "  ")
}

// Slide renders a full step: header, every plate, legend.
func (p *Painter) Slide(deck *slides.Deck, index int) string {
	s := deck.Slides[index]
	var b strings.Builder
	b.WriteString(p.StepHeader(index, len(deck.Slides), s.Title))
	b.WriteString("\n\n")
	for _, snap := range s.Plates {
		b.WriteString("  ")
		b.WriteString(p.out.String(snap.Label).Faint().String())
		b.WriteString("\n")
		b.WriteString(p.Plate(snap))
		b.WriteString("\n")
	}
	b.WriteString(p.Legend(deck.LegendEntries()))
	b.WriteString("\n")
	return b.String()
}
