// =============================================================================
// Sales Analytics - Main Entry Point
// =============================================================================
//
// USAGE:
//   salesreport process       - Analyze the ledger and write the report
//   salesreport validate      - Validate the ledger without writing anything
//   salesreport version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, validation, analytics, enrichment, reporting
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-analytics/cmd"
)

func main() {
	cmd.Execute()
}
