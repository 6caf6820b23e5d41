package main

import (
	"fmt"

	"github.com/aretw0/biocompute/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Capture a protocol and print its operation trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		schema, err := cfg.Schema()
		if err != nil {
			return err
		}
		in, err := cli.LoadInput(cmd.Context(), args[0], schema)
		if err != nil {
			return err
		}
		logger.Debug("input loaded", "file", args[0], "operations", in.OperationCount())

		out := cmd.OutOrStdout()
		if in.Protocol != nil {
			fmt.Fprintf(out, "%s: %s\n", in.Name, in.Protocol)
			for _, op := range in.Protocol.Ops() {
				fmt.Fprintf(out, "  %4d  %v\n", op.ID, op.Op)
			}
			return nil
		}
		fmt.Fprintf(out, "%s: %d operations across %d wells\n", in.Name, in.OperationCount(), len(in.Experiments))
		for well, exp := range in.Experiments {
			for _, op := range exp {
				fmt.Fprintf(out, "  %4d  %v\n", well, op)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
