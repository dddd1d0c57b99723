// =============================================================================
// Sales Analytics - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which reads, parses and
// validates the ledger without fetching the catalog or writing any file.
//
// COMMAND USAGE:
//   salesreport validate [--input path] [--region r] [--min-amount x] [--max-amount y]
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/pipeline"
	"github.com/ginjaninja78/sales-analytics/internal/report"
	"github.com/ginjaninja78/sales-analytics/internal/validation"
	"github.com/spf13/cobra"
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the sales ledger without generating a report",
	Long: `The validate command applies the parsing and validation rules to the
ledger and prints the per-stage counts and every rejected record. Filters from
the configuration, the environment or the flags are applied as in 'process'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		result, options, err := pipeline.New(appConfig).Check(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Input: %s\n", appConfig.InputFile)
		fmt.Fprintf(out, "Regions: %s\n", strings.Join(options.Regions, ", "))
		fmt.Fprintf(out, "Amount Range: %s - %s\n\n",
			report.FormatMoney(options.MinAmount, appConfig.CurrencySymbol),
			report.FormatMoney(options.MaxAmount, appConfig.CurrencySymbol))
		fmt.Fprintln(out, validation.FormatSummary(result.Summary))
		fmt.Fprintln(out, validation.FormatErrors(result.Rejections))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
