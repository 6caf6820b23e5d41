package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/biocompute/internal/cli"
	httpAdapter "github.com/aretw0/biocompute/pkg/adapters/http"
	"github.com/aretw0/biocompute/pkg/slides"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the slide preview HTTP server",
	Long: `Serves slide synthesis over HTTP:

  GET  /healthz     liveness probe
  POST /v1/slides   experiments payload to slide deck (JSON or ?format=markdown)
  POST /v1/group    YAML protocol to per-well experiments
  GET  /metrics     Prometheus metrics`,
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
		addr, _ := cmd.Flags().GetString("addr")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		handler := httpAdapter.NewHandler(slides.New(slides.WithLogger(logger)),
			httpAdapter.WithSchema(schema),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithRegistry(reg),
		)
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("preview server listening", "address", srv.Addr, "schema", schema.Name)
			serverErrors <- srv.ListenAndServe()
		}()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			logger.Info("shutting down", "signal", fmt.Sprint(ctx.Signal()))

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "error", err)
				return srv.Close()
			}
			logger.Info("preview server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
