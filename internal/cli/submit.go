package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/biocompute/pkg/client"
	"github.com/aretw0/biocompute/pkg/config"
	"github.com/aretw0/biocompute/pkg/experiment"
)

// SubmitOptions configures Submit.
type SubmitOptions struct {
	Path    string
	NoCache bool
	NoWait  bool
	Config  *config.Config
	Out     io.Writer
	Logger  *slog.Logger
	Client  []client.Option
}

// Submit loads the input file and submits it through the configured cache.
func Submit(ctx context.Context, opts SubmitOptions) (*client.Result, error) {
	schema, err := opts.Config.Schema()
	if err != nil {
		return nil, err
	}
	in, err := LoadInput(ctx, opts.Path, schema)
	if err != nil {
		return nil, err
	}

	c, err := client.FromConfig(opts.Config, append([]client.Option{client.WithLogger(opts.Logger)}, opts.Client...)...)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := OpenStore(opts.Config)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := closeStore(); err != nil {
			opts.Logger.Warn("failed to close cache", "error", err)
		}
	}()

	s := client.NewSubmitter(c, store, opts.Config.ChallengeID, client.WithSubmitterLogger(opts.Logger))
	if !opts.NoWait {
		printSystemMessage(opts.Out, "Submitting %d operations across %d wells...", in.OperationCount(), len(in.Experiments))
	}
	res, err := s.Submit(ctx, experiment.Encode(in.Experiments, schema), client.SubmitOptions{
		NoCache: opts.NoCache,
		NoWait:  opts.NoWait,
	})
	if err != nil {
		return nil, err
	}
	PrintResult(opts.Out, res)
	return res, nil
}

// PrintResult writes a short human summary of res.
func PrintResult(w io.Writer, res *client.Result) {
	suffix := ""
	if res.Cached {
		suffix = " (cached)"
	}
	fmt.Fprintf(w, "Job %s: %s%s\n", res.JobID, res.Status, suffix)
	if res.Status == client.StatusComplete {
		if d := res.DurationSeconds(); d > 0 {
			fmt.Fprintf(w, "Duration: %.1fs\n", d)
		}
		if n := len(res.WellImages()); n > 0 {
			fmt.Fprintf(w, "Images: %d wells\n", n)
		}
	}
	if res.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", res.Error)
	}
}
