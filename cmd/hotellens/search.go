package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/hotellens/internal/config"
	"github.com/nao1215/hotellens/internal/geo"
	"github.com/nao1215/hotellens/internal/model"
	"github.com/nao1215/hotellens/internal/report"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search hotels around a location",
		Long: `Search finds hotels within a radius of a point and groups them by
minimum check-in age: eligible (18 or younger), unknown, and not eligible.

Examples:
  # Search the built-in dataset around Sacramento
  hotellens search --city sacramento

  # Search booking.com within 5 km of a coordinate
  hotellens search --provider booking --lat 38.5758 --lng -121.4789 --radius 5

  # Keep scraped results in Redis and print JSON
  hotellens search --provider expedia --city atlanta --cache redis://localhost:6379/0 --json

  # Save a Markdown report
  hotellens search --city "san francisco" --markdown -o reports/sf.md`,
		Args: cobra.NoArgs,
		RunE: runSearchCmd,
	}

	cmd.Flags().Float64("lat", 0, "Latitude of the search center")
	cmd.Flags().Float64("lng", 0, "Longitude of the search center")
	cmd.Flags().String("city", "", "City name from the built-in table (overrides --lat/--lng)")
	cmd.Flags().Float64P("radius", "r", model.DefaultRadiusKm, "Search radius in kilometres")
	cmd.Flags().IntP("limit", "l", model.DefaultLimit, "Maximum number of hotels")

	addBackendFlags(cmd)

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Also write the report to a file (creates directories if needed)")
	cmd.Flags().Bool("show-empty", false,
		"Show empty buckets in the text report")

	return cmd
}

func runSearchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildSearchConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if err := cfg.ValidateQuery(cmd.Flags().Changed("lat"), cmd.Flags().Changed("lng")); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSearch(ctx, cmd.OutOrStdout(), cfg, logger)
}

// commandContext returns the context cobra was executed with.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// buildSearchConfig adds the query and report flags to buildConfig.
func buildSearchConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := buildConfig(cmd, os.Getenv)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if cfg.Lat, err = flags.GetFloat64("lat"); err != nil {
		return nil, err
	}
	if cfg.Lng, err = flags.GetFloat64("lng"); err != nil {
		return nil, err
	}
	if cfg.City, err = flags.GetString("city"); err != nil {
		return nil, err
	}
	if cfg.RadiusKm, err = flags.GetFloat64("radius"); err != nil {
		return nil, err
	}
	if cfg.Limit, err = flags.GetInt("limit"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("output"); err != nil {
		return nil, err
	}
	if cfg.ShowEmpty, err = flags.GetBool("show-empty"); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runSearch executes one search and writes its report to out.
func runSearch(ctx context.Context, out io.Writer, cfg *config.Config, logger *slog.Logger) error {
	b, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("failed to close backend", "error", err)
		}
	}()

	params := cfg.SearchParams()
	logger.Info("starting search",
		"provider", cfg.Provider,
		"lat", params.Lat,
		"lng", params.Lng,
		"radiusKm", params.RadiusKm,
		"limit", params.Limit,
	)

	resp, err := b.service.Search(ctx, params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	r := &report.Report{Params: params, Response: resp}
	if cfg.City != "" {
		r.City = geo.CityTitle(cfg.City)
	}
	return outputReport(out, cfg, r)
}

// outputReport writes r in the configured format to out. With a report
// file, the file receives the configured format and out the text summary.
func outputReport(out io.Writer, cfg *config.Config, r *report.Report) error {
	if cfg.ReportFile == "" {
		_, err := reportWriter(out, cfg, false).Write(r)
		return err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := report.NewMultiWriter(
		report.NewSimpleWriter(out, report.WithShowEmpty(cfg.ShowEmpty)),
		reportWriter(f, cfg, true),
	)
	if _, err := w.Write(r); err != nil {
		return err
	}
	return f.Sync()
}

// reportWriter selects the writer for cfg. toFile wraps JSON output with
// the query and version.
func reportWriter(w io.Writer, cfg *config.Config, toFile bool) report.Writer {
	switch {
	case cfg.JSONReport && toFile:
		return report.NewFullJSONWriter(w, getVersion(), report.WithPrettyPrint())
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithShowEmpty(cfg.ShowEmpty), report.WithVerbose(cfg.Verbose))
	}
}
