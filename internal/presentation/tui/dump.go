package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/biocompute/pkg/slides"
)

// Dump writes every slide in order. It is the presentation used when output
// is not an interactive terminal.
func Dump(w io.Writer, p *Painter, deck *slides.Deck, title string) error {
	if title != "" {
		if _, err := fmt.Fprintf(w, "\n  %s\n\n", p.Heading(title)); err != nil {
			return err
		}
	}
	for i := range deck.Slides {
		if _, err := fmt.Fprintln(w, p.Slide(deck, i)); err != nil {
			return fmt.Errorf("failed to write slide %d: %w", i+1, err)
		}
	}
	return nil
}
