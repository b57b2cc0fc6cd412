// Package cli implements the edificio command line.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/josh-kwaku/edificio/internal/config"
	"github.com/josh-kwaku/edificio/internal/logging"
)

// Version is stamped at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "edificio",
	Short: "Residential building administration",
	Long: `edificio keeps the books of a residential building: apartments, tenants,
common-expense charges, payments, bank accounts and the monthly report.

Run 'edificio serve' to start the HTTP API. The other commands work directly
on the configured database.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file (overrides "+config.FileEnv+")")
	rootCmd.Version = Version
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the default logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		if err := os.Setenv(config.FileEnv, path); err != nil {
			return nil, nil, fmt.Errorf("set config path: %w", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := logging.Init(logging.Options{Service: "edificio", Version: Version, Level: cfg.LogLevel, Env: cfg.AppEnv})
	return cfg, logger, nil
}
