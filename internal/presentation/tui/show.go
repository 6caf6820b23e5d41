// Package tui presents synthesized slides in a character-cell terminal.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/biocompute/pkg/slides"
	"golang.org/x/term"
)

// Mode selects how slides are presented.
type Mode string

const (
	ModeAuto        Mode = "auto"
	ModeBatch       Mode = "text"
	ModeInteractive Mode = "interactive"
)

// Show presents deck on the process terminal. In ModeAuto the interactive
// viewer is used only when stdin is a terminal, as piped runs cannot receive
// key presses.
func Show(ctx context.Context, deck *slides.Deck, title string, mode Mode) error {
	return show(ctx, os.Stdin, os.Stdout, deck, title, mode)
}

func show(ctx context.Context, in *os.File, out io.Writer, deck *slides.Deck, title string, mode Mode) error {
	if len(deck.Slides) == 0 {
		_, err := fmt.Fprintln(out, "No slides to display.")
		return err
	}
	if mode == ModeAuto || mode == "" {
		mode = ModeBatch
		if term.IsTerminal(int(in.Fd())) {
			mode = ModeInteractive
		}
	}
	p := NewPainter(out)
	switch mode {
	case ModeInteractive:
		return RunViewer(ctx, p, deck, title, WithIO(in, out))
	case ModeBatch:
		return Dump(out, p, deck, title)
	}
	return fmt.Errorf("unknown display mode %q", mode)
}
