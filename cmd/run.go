// =============================================================================
// Sales Analytics - Run Command
// =============================================================================
//
// This file defines the 'run' command, which executes the whole pipeline for
// one ledger file.
//
// COMMAND USAGE:
//   salesanalytics run [flags]
//
// FLAGS:
//   --input           : Ledger file (.txt or .xlsx)
//   --output-dir      : Directory for every output
//   --region          : Keep only these regions (repeatable)
//   --min-amount      : Keep only records with amount >= value
//   --max-amount      : Keep only records with amount <= value
//   --top-n           : Number of top/bottom products in the report
//   --catalog-url     : Product catalog endpoint
//   --catalog-file    : Catalog snapshot file, used instead of the URL
//   --match-strategy  : exact or fuzzy
//   --workbook        : Also write the XLSX workbook
//   --metrics-file    : Prometheus textfile to write
//
// Flags override the configuration file. The merged configuration is
// validated again before the run starts.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/pipeline"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// overrides holds flag values that replace configuration keys.
type overrides struct {
	input       string
	outputDir   string
	regions     []string
	minAmount   string
	maxAmount   string
	topN        int
	catalogURL  string
	catalogFile string
	strategy    string
	workbook    bool
	metricsFile string
}

var runFlags overrides

// =============================================================================
// RUN COMMAND DEFINITION
// =============================================================================

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analytics pipeline",
	Long: `The run command reads the ledger, validates and filters it, fetches the
product catalog while computing analytics, enriches every kept record and
writes the enriched dataset and the sales report.

If the catalog cannot be fetched the run still completes: records are marked
unmatched and the report carries a warning.

Rejected rows never stop the run. They are listed in a rejection log in the
output directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyOverrides(cfg, runFlags, cmd.Flags().Changed); err != nil {
			return err
		}
		return runPipeline(cmd, cfg)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(runCmd)
	registerInputFlags(runCmd, &runFlags)

	f := runCmd.Flags()
	f.StringSliceVar(&runFlags.regions, "region", nil, "Keep only these regions (repeatable, case-insensitive)")
	f.StringVar(&runFlags.minAmount, "min-amount", "", "Keep only records with amount >= value")
	f.StringVar(&runFlags.maxAmount, "max-amount", "", "Keep only records with amount <= value")
	f.IntVar(&runFlags.topN, "top-n", 0, "Number of top and bottom products in the report")
	f.StringVar(&runFlags.catalogURL, "catalog-url", "", "Product catalog endpoint")
	f.StringVar(&runFlags.catalogFile, "catalog-file", "", "Catalog snapshot file (takes precedence over the URL)")
	f.StringVar(&runFlags.strategy, "match-strategy", "", "Catalog match strategy: exact or fuzzy")
	f.BoolVar(&runFlags.workbook, "workbook", false, "Also write the XLSX workbook")
	f.StringVar(&runFlags.metricsFile, "metrics-file", "", "Prometheus textfile to write")
}

// registerInputFlags adds the flags shared by run and validate.
func registerInputFlags(cmd *cobra.Command, o *overrides) {
	cmd.Flags().StringVar(&o.input, "input", "", "Ledger file (.txt or .xlsx)")
	cmd.Flags().StringVar(&o.outputDir, "output-dir", "", "Directory for every output")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runPipeline(cmd *cobra.Command, cfg *config.Config) error {
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Sales Analytics ===")
	fmt.Fprintf(out, "Ledger: %s\n", cfg.InputFile)

	p := pipeline.New(cfg, logger)
	result, err := p.Run(cmd.Context())
	if err != nil {
		return err
	}

	printRunSummary(out, result)
	return nil
}

func printRunSummary(out io.Writer, result *pipeline.Result) {
	s := result.Stats

	fmt.Fprintln(out, "\n=== Run Complete ===")
	fmt.Fprintf(out, "Run ID:          %s\n", result.RunID)
	fmt.Fprintf(out, "Rows read:       %d\n", s.RowsRead)
	fmt.Fprintf(out, "Valid:           %d\n", s.Valid)
	fmt.Fprintf(out, "Rejected:        %d\n", s.Rejected)
	fmt.Fprintf(out, "After filters:   %d\n", s.Kept)
	fmt.Fprintf(out, "Catalog entries: %d\n", s.CatalogEntries)
	fmt.Fprintf(out, "Enriched:        %d/%d\n", s.Matched, s.Kept)
	fmt.Fprintf(out, "Revenue:         %s\n", result.Summary.TotalRevenue.StringFixed(2))
	fmt.Fprintf(out, "Time elapsed:    %s\n", s.ProcessingTime)

	if result.Catalog.Degraded {
		fmt.Fprintf(out, "\n  ! catalog unavailable: %v\n", result.Catalog.Err)
	}

	fmt.Fprintln(out)
	for _, path := range []string{
		result.Outputs.Enriched,
		result.Outputs.Report,
		result.Outputs.Workbook,
		result.Outputs.Metrics,
	} {
		if path != "" {
			fmt.Fprintf(out, "  ✓ %s\n", filepath.Base(path))
		}
	}
	if result.Outputs.RejectLog != "" {
		fmt.Fprintf(out, "  ✗ %s\n", filepath.Base(result.Outputs.RejectLog))
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// applyOverrides copies every flag the user set into cfg, then validates the
// result.
//
// PARAMETERS:
//   - cfg: The loaded configuration, modified in place.
//   - o: The parsed flag values.
//   - changed: Reports whether a flag was given on the command line.
func applyOverrides(cfg *config.Config, o overrides, changed func(string) bool) error {
	if changed("input") {
		cfg.InputFile = o.input
	}
	if changed("output-dir") {
		cfg.OutputDir = o.outputDir
	}
	if changed("region") {
		cfg.Filters.Regions = o.regions
	}
	if changed("min-amount") {
		cfg.Filters.MinAmount = o.minAmount
	}
	if changed("max-amount") {
		cfg.Filters.MaxAmount = o.maxAmount
	}
	if changed("top-n") {
		cfg.Analytics.TopN = o.topN
	}
	if changed("catalog-url") {
		cfg.Catalog.URL = o.catalogURL
	}
	if changed("catalog-file") {
		cfg.Catalog.File = o.catalogFile
	}
	if changed("match-strategy") {
		cfg.Enrichment.Strategy = o.strategy
	}
	if changed("workbook") {
		cfg.WorkbookEnabled = o.workbook
	}
	if changed("metrics-file") {
		cfg.MetricsFile = o.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}
