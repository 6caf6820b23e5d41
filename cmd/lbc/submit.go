package main

import (
	"github.com/aretw0/biocompute/internal/cli"
	"github.com/spf13/cobra"
)

var submitCmd = &cobra.Command{
	Use:   "submit FILE",
	Short: "Submit a protocol to the job service and wait for the result",
	Long: `Submits the experiments in FILE. A protocol already run to completion with
the same challenge is answered from the local cache unless --no-cache is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		noCache, _ := cmd.Flags().GetBool("no-cache")
		noWait, _ := cmd.Flags().GetBool("no-wait")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		_, err = cli.Submit(ctx, cli.SubmitOptions{
			Path:    args[0],
			NoCache: noCache,
			NoWait:  noWait,
			Config:  cfg,
			Out:     cmd.OutOrStdout(),
			Logger:  logger,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().Bool("no-cache", false, "Always submit a new job")
	submitCmd.Flags().Bool("no-wait", false, "Return as soon as the job is accepted")
}
