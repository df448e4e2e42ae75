// =============================================================================
// Sales Analytics - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesanalytics)
//   ├── runCmd      (salesanalytics run)
//   ├── validateCmd (salesanalytics validate)
//   └── versionCmd  (salesanalytics version)
//
// The root command owns the global flags (--config, --verbose) and the
// helpers that turn them into a configuration and a logger.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// defaultConfigFile is used when --config is not given. A missing default
// file means "use defaults"; a missing explicit file is an error.
const defaultConfigFile = "config.yaml"

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose forces debug logging regardless of log_level.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesanalytics",
	Short: "Sales Analytics - Validate, analyze and enrich a sales ledger",
	Long: `Sales Analytics is a batch CLI that reads a pipe-delimited sales ledger,
validates every row, computes revenue analytics, enriches transactions with
product data from a catalog API, and writes an enriched dataset plus a
formatted text report.

Key Features:
  - Row-level validation with a rejection log
  - Region and amount filters
  - Concurrent catalog fetch with retries and graceful degradation
  - Optional XLSX workbook export
  - Prometheus textfile metrics

Example Usage:
  salesanalytics run                             # Run with config.yaml
  salesanalytics run --input ./data/sales.txt    # Override the ledger
  salesanalytics run --region North --region East --min-amount 100
  salesanalytics validate                        # Validate the ledger only`,

	SilenceUsage:  true,
	SilenceErrors: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
// An interrupt cancels the run context so in-flight catalog requests stop.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadConfig reads the configuration named by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	allowMissing := !cmd.Flags().Changed("config")
	cfg, err := config.Load(cfgFile, allowMissing)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the run logger from the configuration and --verbose.
// Console output is human-readable; the optional log file stays JSON.
func newLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Options{
		Level:   level,
		File:    cfg.LogFile,
		Console: true,
	})
}
