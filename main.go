// =============================================================================
// Sales Analytics - Main Entry Point
// =============================================================================
//
// USAGE:
//   salesanalytics run        - Run the full pipeline
//   salesanalytics validate   - Validate the ledger only
//   salesanalytics version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Pipeline stages (parsing, validation, analytics, catalog,
//                  enrichment, report, workbook, metrics, logging)
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-analytics/cmd"
)

func main() {
	cmd.Execute()
}
