package main

import (
	"context"
	"errors"

	"github.com/aretw0/biocompute/internal/cli"
	"github.com/spf13/cobra"
)

var visualizeCmd = &cobra.Command{
	Use:     "visualize FILE",
	Aliases: []string{"viz"},
	Short:   "Render a protocol as step-by-step plate slides",
	Long: `Synthesizes one slide per batch of operations and shows it.

Formats:
- auto (default): interactive viewer on a terminal, plain text otherwise.
- text: every slide, one after another.
- interactive: the viewer, even when output is redirected.
- json: the slide deck as JSON.
- markdown: a styled report.
- mermaid: a flowchart of the steps.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		schema, err := cfg.Schema()
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		watchMode, _ := cmd.Flags().GetBool("watch")

		opts := cli.VisualizeOptions{
			Path:   args[0],
			Format: format,
			Schema: schema,
			Out:    cmd.OutOrStdout(),
			Logger: logger,
		}
		if !watchMode {
			return cli.Visualize(cmd.Context(), opts)
		}
		if format == cli.FormatAuto || format == cli.FormatInteractive {
			return errors.New("--watch needs --format text, json, markdown or mermaid")
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		err = cli.Watch(ctx, args[0], cmd.ErrOrStderr(), logger, func(ctx context.Context) error {
			return cli.Visualize(ctx, opts)
		})
		if sig := ctx.Signal(); sig != nil {
			logger.Info("watch stopped", "signal", sig.String())
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(visualizeCmd)
	visualizeCmd.Flags().StringP("format", "f", cli.FormatAuto, "Output format: auto, text, interactive, json, markdown or mermaid")
	visualizeCmd.Flags().BoolP("watch", "w", false, "Render again whenever FILE changes")
}
