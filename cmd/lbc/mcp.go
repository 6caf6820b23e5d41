package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/biocompute/internal/cli"
	"github.com/aretw0/biocompute/pkg/adapters/mcp"
	"github.com/aretw0/biocompute/pkg/slides"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes slide synthesis to AI agents as MCP tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		schema, err := cfg.Schema()
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		srv := mcp.NewServer(slides.New(slides.WithLogger(logger)), mcp.WithSchema(schema), mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			ctx := cli.NewSignalContext(cmd.Context())
			defer ctx.Cancel()
			if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport %q, supported: stdio, sse", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().Int("port", 8080, "Port for the sse transport")
}
