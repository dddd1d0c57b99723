// =============================================================================
// Sales Analytics - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the whole analysis
// pipeline and writes the report.
//
// COMMAND USAGE:
//   salesreport process [flags]
//
// FLAGS:
//   --dry-run       : Run every step but write no files
//   --interactive   : Ask for region/amount filters after reading the input
//   --report        : Report path (overrides report_file)
//   --xlsx          : Also export a workbook to this path
//   --catalog       : Catalog source: http, xlsx or none
//   (see --help for the rest)
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/pipeline"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun runs the pipeline without writing output files.
var dryRun bool

// interactive prompts for filters once the filter options are known.
var interactive bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Analyze the sales ledger and write the report",
	Long: `The process command reads the sales ledger, validates and filters the
transactions, computes the analytic views, enriches every transaction from the
product catalog and writes the text report.

On success:
  - The report is written to report_file (the previous one is archived
    first when archive_dir is set)
  - The enriched transactions are written to enriched_file
  - Rejected records are listed in output/error_log_*.txt
  - A run summary is written to output/processing_summary_*.txt

An unreachable catalog, or a side-file that cannot be written, does not stop
the run. A missing input file does.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	flags := processCmd.Flags()

	flags.BoolVar(&dryRun, "dry-run", false, "Run every step but write no files")
	flags.BoolVarP(&interactive, "interactive", "i", false, "Prompt for region and amount filters")

	flags.String("report", "", "Report path (overrides report_file)")
	flags.String("enriched", "", "Enriched side-file path (overrides enriched_file)")
	flags.String("xlsx", "", "Also export the views to this XLSX workbook")
	flags.String("archive-dir", "", "Copy the previous report here before overwriting it")
	flags.String("currency", "", "Currency symbol used in the report")
	flags.Int("low-threshold", 0, "Quantity below which a product is a low performer")
	flags.Int("top-n", 0, "Number of products in the top products table")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("catalog", "", "Catalog source: http, xlsx or none")
	flags.String("catalog-xlsx", "", "Workbook used by the xlsx catalog source")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess runs the pipeline with the merged configuration.
func runProcess(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, strings.Repeat("=", 40))
	fmt.Fprintln(out, "SALES ANALYTICS SYSTEM")
	fmt.Fprintln(out, strings.Repeat("=", 40))

	opts := []pipeline.Option{pipeline.WithDryRun(dryRun)}
	if interactive {
		opts = append(opts, pipeline.WithFilterChooser(promptFilters(cmd.InOrStdin(), out, appConfig.CurrencySymbol)))
	}

	result, err := pipeline.New(appConfig, opts...).Run(cmd.Context())
	if err != nil {
		return err
	}

	printResult(out, result)
	return nil
}

// printResult writes the end-of-run summary to out.
func printResult(out io.Writer, result *pipeline.Result) {
	s := result.Validation.Summary

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Records read:    %d\n", result.Stats.RawLines)
	fmt.Fprintf(out, "Parsed:          %d\n", result.Stats.ParsedRecords)
	fmt.Fprintf(out, "Valid:           %d\n", s.FinalCount)
	fmt.Fprintf(out, "Invalid:         %d\n", s.Invalid)
	fmt.Fprintf(out, "Enriched:        %d/%d (%.1f%%)\n", result.Stats.MatchedRecords, len(result.Enriched), result.Stats.MatchRate)
	fmt.Fprintf(out, "Time elapsed:    %s\n", result.Stats.ProcessingTime)

	if result.ReportFile == "" {
		fmt.Fprintln(out, "\nDry run: no files were written.")
		return
	}

	fmt.Fprintf(out, "\nReport saved to: %s\n", result.ReportFile)
	if result.EnrichedFile != "" {
		fmt.Fprintf(out, "Enriched data:   %s\n", result.EnrichedFile)
	}
	if result.WorkbookFile != "" {
		fmt.Fprintf(out, "Workbook:        %s\n", result.WorkbookFile)
	}
	if result.ErrorLogFile != "" {
		fmt.Fprintf(out, "Rejections:      %s\n", result.ErrorLogFile)
	}
}
