// Package report renders a slide deck as a Markdown document, optionally
// styled for the terminal with glamour.
package report

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/biocompute/pkg/plate"
	"github.com/aretw0/biocompute/pkg/slides"
	"github.com/charmbracelet/glamour"
)

// Markdown lists every slide with a table of the touched wells per plate.
func Markdown(deck *slides.Deck, title string) string {
	var b strings.Builder
	if title == "" {
		title = "Protocol"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if len(deck.Slides) == 0 {
		b.WriteString("_No slides to display._\n")
		return b.String()
	}

	for i, s := range deck.Slides {
		fmt.Fprintf(&b, "## Step %d of %d\n\n%s\n\n", i+1, len(deck.Slides), s.Title)
		for _, snap := range s.Plates {
			fmt.Fprintf(&b, "### %s\n\n", snap.Label)
			b.WriteString("| Well | Contents | Volume (µL) | Mixed | Color |\n")
			b.WriteString("|------|----------|-------------|-------|-------|\n")
			for _, label := range plate.SortLabels(slices.Collect(maps.Keys(snap.Wells))) {
				w := snap.Wells[label]
				mixed := ""
				if w.Mixed {
					mixed = "yes"
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s | `%s` |\n", label, contents(w.Fills), volume(w.VolumeUL), mixed, w.Color)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("## Reagents\n\n| Reagent | Color |\n|---------|-------|\n")
	for _, e := range deck.LegendEntries() {
		fmt.Fprintf(&b, "| %s | `%s` |\n", e.Reagent, e.Color)
	}
	return b.String()
}

func contents(fills []slides.FillSummary) string {
	parts := make([]string, len(fills))
	for i, f := range fills {
		parts[i] = f.Reagent + " " + volume(f.VolumeUL)
	}
	return strings.Join(parts, ", ")
}

func volume(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// NewRenderer returns a function that renders markdown using glamour.
// With no options the style follows the terminal background.
func NewRenderer(opts ...glamour.TermRendererOption) (func(string) (string, error), error) {
	if len(opts) == 0 {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}
