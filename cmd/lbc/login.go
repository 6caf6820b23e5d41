package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/biocompute/pkg/client"
	"github.com/aretw0/biocompute/pkg/config"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store credentials for the job service",
	Long: `Prompts for an API key, server URL and challenge ID, verifies the key
against the server and saves the result to the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		fields := []struct {
			flag   string
			prompt string
			value  *string
			def    string
		}{
			{"api-key", "API key", &cfg.APIKey, ""},
			{"base-url", "Server URL", &cfg.BaseURL, config.DefaultBaseURL},
			{"challenge-id", "Challenge ID", &cfg.ChallengeID, config.DefaultChallengeID},
		}
		for _, f := range fields {
			if cmd.Flags().Changed(f.flag) {
				*f.value, _ = cmd.Flags().GetString(f.flag)
				continue
			}
			def := f.def
			if f.def != "" && *f.value != "" {
				def = *f.value
			}
			v, err := prompt(in, out, f.prompt, def)
			if err != nil {
				return err
			}
			*f.value = v
		}
		if cfg.APIKey == "" {
			return errors.New("an API key is required")
		}

		c, err := client.FromConfig(cfg)
		if err != nil {
			return err
		}
		user, err := c.User(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to verify API key: %w", err)
		}

		path, _ := cmd.Flags().GetString("config")
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		fmt.Fprintf(out, "Logged in as %s. Config saved to %s\n", user.Name, config.ResolvePath(path))
		return nil
	},
}

// prompt reads one line, returning def when the answer is blank.
func prompt(in *bufio.Reader, out io.Writer, label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(out, "%s: ", label)
	}
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().String("api-key", "", "API key (skips the prompt)")
	loginCmd.Flags().String("base-url", "", "Server URL (skips the prompt)")
	loginCmd.Flags().String("challenge-id", "", "Challenge ID (skips the prompt)")
}
