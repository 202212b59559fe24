package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/hotellens/internal/config"
)

// NewRootCmd creates the root command for HotelLens.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hotellens",
		Short: "Find hotels that accept 18 year old guests",
		Long: `HotelLens searches hotels around a location and sorts them into
eligible, unknown and not eligible by their minimum check-in age.

The built-in mock provider works offline. The booking and expedia
providers scrape the live sites and read each hotel's policy page.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadDotEnv(config.DefaultEnvFile)
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", config.LogFormatText, "Log format: text or json")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .hotellens in current or home directory)")

	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
