package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/biocompute/internal/cli"
	"github.com/aretw0/biocompute/pkg/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lbc",
	Short: "lbc captures, previews and submits liquid-handling protocols",
	Long: `lbc turns liquid-handling protocols into operation traces, renders them as
step-by-step plate slides and submits them to a remote job service.

Protocols are YAML documents (.yaml, .yml) or JSON experiment payloads (.json).`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.Friendly(err))
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default $"+config.EnvConfig+" or ~/.lbc/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig resolves the persistent flags of cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	return cli.LoadConfig(path, level)
}
