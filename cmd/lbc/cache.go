package main

import (
	"fmt"

	"github.com/aretw0/biocompute/internal/cli"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the submission cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached submission",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		store, closeStore, err := cli.OpenStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		if store == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled.")
			return nil
		}
		n, err := store.Clear(cmd.Context())
		if err != nil {
			return err
		}
		logger.Debug("cache cleared", "backend", cfg.Cache.Backend, "entries", n)
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cached entries.\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
