package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/biocompute/internal/logging"
	"github.com/aretw0/biocompute/internal/presentation/graph"
	"github.com/aretw0/biocompute/internal/presentation/report"
	"github.com/aretw0/biocompute/internal/presentation/tui"
	"github.com/aretw0/biocompute/pkg/ops"
	"github.com/aretw0/biocompute/pkg/slides"
)

// Output formats of the visualize command.
const (
	FormatAuto        = "auto"
	FormatText        = "text"
	FormatInteractive = "interactive"
	FormatJSON        = "json"
	FormatMarkdown    = "markdown"
	FormatMermaid     = "mermaid"
)

// VisualizeOptions configures Visualize.
type VisualizeOptions struct {
	Path   string
	Format string
	Schema ops.Schema
	Out    io.Writer
	Logger *slog.Logger
}

// Visualize loads the input file, synthesizes its slides and presents them.
func Visualize(ctx context.Context, opts VisualizeOptions) error {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	in, err := LoadInput(ctx, opts.Path, opts.Schema)
	if err != nil {
		return err
	}
	deck, err := slides.New(slides.WithLogger(opts.Logger)).Build(in.Experiments)
	if err != nil {
		return err
	}
	opts.Logger.Info("slides synthesized", "file", opts.Path, "slides", len(deck.Slides), "operations", in.OperationCount())
	return Present(ctx, opts.Out, deck, in.Name, opts.Format)
}

// Present writes deck to out in format.
func Present(ctx context.Context, out io.Writer, deck *slides.Deck, title, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(deck)
	case FormatMarkdown:
		render, err := report.NewRenderer()
		if err != nil {
			return err
		}
		styled, err := render(report.Markdown(deck, title))
		if err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
		_, err = io.WriteString(out, styled)
		return err
	case FormatMermaid:
		_, err := io.WriteString(out, graph.GenerateMermaid(deck, nil))
		return err
	case FormatText:
		if len(deck.Slides) == 0 {
			_, err := fmt.Fprintln(out, "No slides to display.")
			return err
		}
		return tui.Dump(out, tui.NewPainter(out), deck, title)
	case FormatAuto, "":
		return tui.Show(ctx, deck, title, tui.ModeAuto)
	case FormatInteractive:
		return tui.Show(ctx, deck, title, tui.ModeInteractive)
	}
	return fmt.Errorf("unknown format %q, want auto, text, interactive, json, markdown or mermaid", format)
}
