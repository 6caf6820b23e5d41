package biocompute

import (
	"context"

	"github.com/aretw0/biocompute/internal/presentation/tui"
	"github.com/aretw0/biocompute/pkg/protocol"
	"github.com/aretw0/biocompute/pkg/slides"
)

// Capture runs fn in a capture session and returns the recorded protocol.
func Capture(ctx context.Context, fn protocol.Func) (*protocol.Protocol, error) {
	return protocol.Capture(ctx, fn)
}

// Synthesize builds the slide deck of a captured protocol.
func Synthesize(p *protocol.Protocol, opts ...slides.Option) (*slides.Deck, error) {
	return slides.New(opts...).Build(p.Experiments())
}

// Show synthesizes p and presents it on the process terminal: an interactive
// viewer when stdin is a terminal, a full text dump otherwise.
func Show(ctx context.Context, p *protocol.Protocol, title string, opts ...slides.Option) error {
	deck, err := Synthesize(p, opts...)
	if err != nil {
		return err
	}
	if title == "" {
		title = p.Name
	}
	return tui.Show(ctx, deck, title, tui.ModeAuto)
}
