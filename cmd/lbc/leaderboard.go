package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard of the configured challenge",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		entries, err := c.Leaderboard(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "Leaderboard is empty.")
			return nil
		}
		for i, e := range entries {
			score := "-"
			if e.BestScore != nil {
				score = fmt.Sprintf("%.4f", *e.BestScore)
			}
			fmt.Fprintf(out, "  %d. %s  score=%s\n", i+1, e.UserName, score)
		}
		return nil
	},
}

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Download the target image of the enrolled challenge",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		encoded, err := c.Target(cmd.Context())
		if err != nil {
			return err
		}
		img, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return fmt.Errorf("failed to decode target image: %w", err)
		}
		path, _ := cmd.Flags().GetString("output")
		if err := os.WriteFile(path, img, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Target image saved to %s (%d bytes)\n", path, len(img))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(targetCmd)
	targetCmd.Flags().StringP("output", "o", "target.png", "File to write the image to")
}
