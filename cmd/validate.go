// =============================================================================
// Sales Analytics - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It parses and validates the
// ledger, writes the rejection log, and prints what a run would keep. No
// catalog request is made and no report is written.
//
// COMMAND USAGE:
//   salesanalytics validate [--input FILE] [--output-dir DIR] [--strict]
//
// =============================================================================

package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/ginjaninja78/sales-analytics/internal/pipeline"
	"github.com/ginjaninja78/sales-analytics/internal/validation"
	"github.com/spf13/cobra"
)

var validateFlags overrides

// strict makes validate fail when any row was rejected.
var strict bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the ledger without running analytics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyOverrides(cfg, validateFlags, cmd.Flags().Changed); err != nil {
			return err
		}

		logger, closeLog, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		check, err := pipeline.New(cfg, logger).Check(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		parsed := check.Parse
		fmt.Fprintf(out, "Ledger:          %s (%s, %s)\n", cfg.InputFile, check.Ledger.Format, check.Ledger.Encoding)
		fmt.Fprintf(out, "Rows read:       %d\n", parsed.RowsRead)
		fmt.Fprintf(out, "Valid:           %d\n", len(parsed.Valid))
		fmt.Fprintf(out, "Rejected:        %d\n", parsed.RejectedCount())

		byReason := parsed.RejectionsByReason()
		reasons := make([]string, 0, len(byReason))
		for reason := range byReason {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(out, "  - %-20s %d\n", reason, byReason[reason])
		}

		if parsed.AmountMismatches > 0 {
			fmt.Fprintf(out, "Amount mismatch: %d (recomputed from quantity and unit price)\n", parsed.AmountMismatches)
		}
		fmt.Fprintf(out, "Regions:         %v\n", check.Regions)
		if lo, hi, ok := validation.AmountRange(parsed.Valid); ok {
			fmt.Fprintf(out, "Amount range:    %s - %s\n", lo.StringFixed(2), hi.StringFixed(2))
		}
		fmt.Fprintf(out, "After filters:   %d\n", check.Filter.Kept)
		if check.RejectLog != "" {
			fmt.Fprintf(out, "Rejection log:   %s\n", filepath.Base(check.RejectLog))
		}

		if strict && parsed.RejectedCount() > 0 {
			return fmt.Errorf("%d row(s) rejected", parsed.RejectedCount())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	registerInputFlags(validateCmd, &validateFlags)
	validateCmd.Flags().BoolVar(&strict, "strict", false, "Fail when any row is rejected")
}
