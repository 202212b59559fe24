package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/hotellens/internal/config"
	"github.com/nao1215/hotellens/internal/server"
)

// defaultRequestTimeout bounds one API search, scraping included.
const defaultRequestTimeout = 2 * time.Minute

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search API over HTTP",
		Long: `Serve exposes the search service as a JSON API:

  GET /api/search?lat=&lng=&radius=&limit=&provider=
  GET /api/geocode?q=
  GET /healthz

Examples:
  # Serve the built-in dataset on :8080
  hotellens serve

  # Serve booking.com results with a shared Redis cache
  hotellens serve --provider booking --cache redis://localhost:6379/0 --listen :9000`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().StringP("listen", "L", config.DefaultListenAddr, "Address to listen on")
	cmd.Flags().Duration("request-timeout", defaultRequestTimeout, "Upper bound of one API search")
	addBackendFlags(cmd)

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd, os.Getenv)
	if err != nil {
		return err
	}
	if cfg.ListenAddr, err = cmd.Flags().GetString("listen"); err != nil {
		return err
	}
	requestTimeout, err := cmd.Flags().GetDuration("request-timeout")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServe(ctx, cmd, cfg, requestTimeout, logger)
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config, requestTimeout time.Duration, logger *slog.Logger) error {
	b, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("failed to close backend", "error", err)
		}
	}()

	srv := server.New(b.service,
		server.WithLogger(logger),
		server.WithRequestTimeout(requestTimeout),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "HotelLens API on %s (provider: %s)\n", cfg.ListenAddr, cfg.Provider)
	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}
