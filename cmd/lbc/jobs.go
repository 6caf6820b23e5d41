package main

import (
	"fmt"
	"sort"

	"github.com/aretw0/biocompute/pkg/client"
	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List submitted jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		jobs, err := c.ListJobs(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(jobs) == 0 {
			fmt.Fprintln(out, "No jobs found.")
			return nil
		}
		for _, j := range jobs {
			fmt.Fprintf(out, "  %s  %s\n", j.ID, j.Status)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show JOB_ID",
	Short: "Print every field of one job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		job, err := c.GetJob(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		keys := make([]string, 0, len(job.Raw))
		for k := range job.Raw {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := cmd.OutOrStdout()
		for _, k := range keys {
			fmt.Fprintf(out, "%s: %v\n", k, job.Raw[k])
		}
		return nil
	},
}

// newClient builds a job service client from the stored configuration.
func newClient(cmd *cobra.Command) (*client.Client, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return client.FromConfig(cfg, client.WithLogger(logger))
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(showCmd)
}
