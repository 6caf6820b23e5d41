package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/biocompute/pkg/config"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		err := config.Remove(path)
		switch {
		case errors.Is(err, config.ErrNotConfigured):
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		case err != nil:
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
