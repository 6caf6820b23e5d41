package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/biocompute"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lbc",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lbc version %s\n", strings.TrimSpace(biocompute.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
