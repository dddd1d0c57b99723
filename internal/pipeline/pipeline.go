// =============================================================================
// Sales Analytics - Pipeline Module
// =============================================================================
//
// This module orchestrates one run over the sales ledger, from reading the
// input file to writing the report.
//
// PIPELINE:
//   1. Read the ledger (encoding recovery, header skipping)
//   2. Parse lines into transactions
//   3. Compute filter options and choose the filters
//   4. Validate and filter
//   5. Analyze the validated records
//   6. Fetch the product catalog
//   7. Enrich transactions with catalog metadata
//   8. Save the enriched side-file
//   9. Generate the report (and the optional workbook)
//  10. Complete (run summary)
//
// FAILURE MODEL:
//   Only a missing or unreadable input file, or a report that cannot be
//   written, ends the run with an error. Catalog, side-file, workbook, error
//   log and summary log failures are logged as warnings and the run goes on.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/analytics"
	"github.com/ginjaninja78/sales-analytics/internal/catalog"
	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/enrichment"
	"github.com/ginjaninja78/sales-analytics/internal/logger"
	"github.com/ginjaninja78/sales-analytics/internal/report"
	"github.com/ginjaninja78/sales-analytics/internal/salesparser"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/ginjaninja78/sales-analytics/internal/validation"
	"github.com/ginjaninja78/sales-analytics/internal/xlsxwriter"
	"github.com/ginjaninja78/sales-analytics/pkg/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const totalSteps = 10

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and the summary file.
	RunID string

	// InputFile is the ledger that was read.
	InputFile string

	// FilterOptions are the regions and amount range seen in the input.
	FilterOptions validation.Options

	// Filters are the filters that were applied.
	Filters validation.Filters

	// Validation is the full validation outcome, including rejections.
	Validation *validation.Result

	// Catalog is the outcome of the catalog fetch.
	Catalog catalog.Result

	// Enriched holds one enriched record per validated record.
	Enriched []types.EnrichedTransaction

	// ReportText is the rendered report.
	ReportText string

	// Output paths. Empty when the file was not written.
	ReportFile     string
	EnrichedFile   string
	WorkbookFile   string
	ArchivedReport string
	ErrorLogFile   string
	SummaryFile    string

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	// Encoding is the name of the encoding that decoded the input.
	Encoding string

	// RawLines is the number of data lines read after header removal.
	RawLines int

	// ParsedRecords is the number of lines that split into 8 fields with
	// numeric quantity and price.
	ParsedRecords int

	// ValidRecords is the number of records left after validation and filters.
	ValidRecords int

	// InvalidRecords is the number of records rejected by a business rule.
	InvalidRecords int

	// MatchedRecords is the number of enriched records with a catalog match.
	MatchedRecords int

	// MatchRate is the percentage of matched records.
	MatchRate float64

	// TotalRevenue is the revenue over the validated records.
	TotalRevenue float64

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// =============================================================================
// RUNNER
// =============================================================================

// FilterChooser picks the filters to apply once the filter options of the
// input are known. It is how the interactive prompt plugs into a run.
type FilterChooser func(ctx context.Context, options validation.Options) (validation.Filters, error)

// Runner executes the pipeline for one configuration.
type Runner struct {
	cfg           *config.MainConfig
	source        catalog.Source
	files         *utils.FileManager
	chooseFilters FilterChooser
	dryRun        bool
	now           func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithSource replaces the catalog source built from the configuration.
func WithSource(source catalog.Source) Option {
	return func(r *Runner) { r.source = source }
}

// WithFilterChooser replaces the configured filters with a chooser.
func WithFilterChooser(choose FilterChooser) Option {
	return func(r *Runner) { r.chooseFilters = choose }
}

// WithDryRun runs every step but writes no files.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) { r.dryRun = dryRun }
}

// WithClock sets the clock used for the report timestamp and file names.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a Runner for cfg.
func New(cfg *config.MainConfig, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		source: SourceFromConfig(cfg.Catalog),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.files = utils.NewFileManager(cfg.DataDir, cfg.OutputDir, cfg.ArchiveDir)
	r.files.Now = r.now
	return r
}

// SourceFromConfig builds the catalog source selected by the configuration.
func SourceFromConfig(c config.CatalogConfig) catalog.Source {
	switch c.Source {
	case config.CatalogNone:
		return catalog.NoneSource{}
	case config.CatalogXLSX:
		return catalog.NewXLSXSource(c.XLSXFile)
	default:
		return catalog.NewHTTPSource(c.BaseURL, c.Timeout)
	}
}

// ConfiguredFilters returns the filters set in the configuration.
func ConfiguredFilters(cfg *config.MainConfig) validation.Filters {
	return validation.Filters{
		Region:    cfg.Filters.Region,
		MinAmount: cfg.Filters.MinAmount,
		MaxAmount: cfg.Filters.MaxAmount,
	}
}

// ReportOptions returns the rendering options set in the configuration.
func ReportOptions(cfg *config.MainConfig) report.Options {
	opts := report.DefaultOptions()
	if cfg.CurrencySymbol != "" {
		opts.CurrencySymbol = cfg.CurrencySymbol
	}
	if cfg.LowThreshold != nil {
		opts.LowThreshold = *cfg.LowThreshold
	}
	if cfg.TopN != nil {
		opts.TopN = *cfg.TopN
	}
	return opts
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline.
//
// RETURNS:
//   - The run result. It is non-nil whenever the input could be read.
//   - An error if the input cannot be read or the report cannot be written.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	startTime := r.now()
	result := &Result{
		RunID:     uuid.New().String(),
		InputFile: r.cfg.InputFile,
		Filters:   ConfiguredFilters(r.cfg),
	}

	log := logger.FromContext(ctx).With().Str("run_id", result.RunID).Logger()
	ctx = logger.WithContext(ctx, log)

	if !r.dryRun {
		if err := r.files.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("failed to prepare directories: %w", err)
		}
	}

	// =========================================================================
	// STEP 1: READ SALES DATA
	// =========================================================================

	step(log, 1).Str("file", r.cfg.InputFile).Msg("Reading sales data")

	lines, encoding, err := salesparser.ReadWithEncoding(r.cfg.InputFile)
	if err != nil {
		return nil, err
	}
	result.Stats.Encoding = encoding
	result.Stats.RawLines = len(lines)
	log.Info().Str("encoding", encoding).Int("lines", len(lines)).Msg("Read sales data")

	// =========================================================================
	// STEP 2: PARSE TRANSACTIONS
	// =========================================================================

	step(log, 2).Msg("Parsing transactions")

	records := salesparser.Parse(lines)
	result.Stats.ParsedRecords = len(records)
	log.Info().Int("records", len(records)).Int("dropped", len(lines)-len(records)).Msg("Parsed transactions")

	// =========================================================================
	// STEP 3: FILTER OPTIONS
	// =========================================================================

	step(log, 3).Msg("Computing filter options")

	result.FilterOptions = validation.FilterOptions(records)
	log.Info().
		Strs("regions", result.FilterOptions.Regions).
		Float64("min_amount", result.FilterOptions.MinAmount).
		Float64("max_amount", result.FilterOptions.MaxAmount).
		Msg("Filter options")

	if r.chooseFilters != nil {
		filters, err := r.chooseFilters(ctx, result.FilterOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to choose filters: %w", err)
		}
		result.Filters = filters
	}

	// =========================================================================
	// STEP 4: VALIDATE AND FILTER
	// =========================================================================

	step(log, 4).Msg("Validating transactions")

	validated := validation.NewValidator(result.Filters).ValidateAll(records)
	result.Validation = validated
	result.Stats.ValidRecords = len(validated.Valid)
	result.Stats.InvalidRecords = validated.Invalid

	for _, rejection := range validated.Rejections {
		log.Debug().Str("rule", rejection.Rule).Int("row", rejection.Row).Msg(rejection.Message)
	}
	s := validated.Summary
	log.Info().
		Int("total_input", s.TotalInput).
		Int("invalid", s.Invalid).
		Int("filtered_by_region", s.FilteredByRegion).
		Int("filtered_by_amount", s.FilteredByAmount).
		Int("final_count", s.FinalCount).
		Msg("Validation complete")

	if r.cfg.ErrorLogEnabled() && !r.dryRun {
		path, err := r.files.WriteErrorLog(validated.Rejections, r.cfg.InputFile)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to write error log")
		}
		result.ErrorLogFile = path
	}

	// =========================================================================
	// STEP 5: ANALYZE
	// =========================================================================

	step(log, 5).Msg("Analyzing sales data")

	valid := validated.Valid
	result.Stats.TotalRevenue = analytics.TotalRevenue(valid)
	event := log.Info().
		Float64("total_revenue", analytics.Round2(result.Stats.TotalRevenue)).
		Int("regions", len(analytics.RegionSales(valid))).
		Int("customers", len(analytics.CustomerAnalysis(valid)))
	if peak, ok := analytics.PeakDay(valid); ok {
		event = event.Str("peak_day", peak.Date)
	}
	event.Msg("Analysis complete")

	// =========================================================================
	// STEP 6: FETCH CATALOG
	// =========================================================================

	step(log, 6).Msg("Fetching product catalog")

	result.Catalog = r.source.FetchProducts(ctx, r.cfg.Catalog.Limit)
	if result.Catalog.Available() {
		log.Info().Int("products", len(result.Catalog.Products())).Msg("Catalog fetched")
	} else {
		log.Warn().Str("reason", result.Catalog.Reason()).Msg("Catalog unavailable, continuing without enrichment")
	}
	mapping := catalog.BuildMapping(result.Catalog.Products())

	// =========================================================================
	// STEP 7: ENRICH
	// =========================================================================

	step(log, 7).Msg("Enriching transactions")

	result.Enriched = enrichment.Enrich(valid, mapping)
	matched, rate := enrichment.MatchRate(result.Enriched)
	result.Stats.MatchedRecords = matched
	result.Stats.MatchRate = rate
	log.Info().Msgf("Enriched %d/%d transactions (%.1f%%)", matched, len(result.Enriched), rate)

	// =========================================================================
	// STEP 8: SAVE ENRICHED DATA
	// =========================================================================

	step(log, 8).Msg("Saving enriched data")

	if r.dryRun {
		log.Info().Msg("Dry run, enriched data not saved")
	} else if enrichment.NewEnricher(r.cfg.EnrichedFile).Save(ctx, result.Enriched) {
		result.EnrichedFile = r.cfg.EnrichedFile
	}

	// =========================================================================
	// STEP 9: GENERATE REPORT
	// =========================================================================

	step(log, 9).Msg("Generating report")

	opts := ReportOptions(r.cfg)
	opts.Now = r.now

	if r.dryRun {
		result.ReportText = report.Render(valid, result.Enriched, opts)
		log.Info().Msg("Dry run, report not written")
	} else {
		archived, err := r.files.ArchiveOutputFile(r.cfg.ReportFile)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to archive previous report")
		}
		result.ArchivedReport = archived

		path, text, err := report.Generate(r.cfg.ReportFile, valid, result.Enriched, opts)
		result.ReportText = text
		if err != nil {
			return result, err
		}
		result.ReportFile = path
		log.Info().Str("file", path).Msg("Report written")

		if r.cfg.XLSXFile != "" {
			data := xlsxwriter.Build(valid, result.Enriched, opts.TopN, r.now())
			if err := xlsxwriter.Export(r.cfg.XLSXFile, data); err != nil {
				log.Warn().Err(err).Str("file", r.cfg.XLSXFile).Msg("Failed to export workbook")
			} else {
				result.WorkbookFile = r.cfg.XLSXFile
				log.Info().Str("file", r.cfg.XLSXFile).Msg("Workbook written")
			}
		}
	}

	// =========================================================================
	// STEP 10: COMPLETE
	// =========================================================================

	endTime := r.now()
	result.Stats.ProcessingTime = endTime.Sub(startTime)

	if !r.dryRun {
		path, err := r.files.WriteSummaryLog(r.summary(result, startTime, endTime))
		if err != nil {
			log.Warn().Err(err).Msg("Failed to write processing summary")
		}
		result.SummaryFile = path
	}

	step(log, 10).Dur("elapsed", result.Stats.ProcessingTime).Msg("Complete")

	return result, nil
}

// Check reads, parses and validates the input without fetching the catalog
// or writing anything.
func (r *Runner) Check(ctx context.Context) (*validation.Result, validation.Options, error) {
	log := logger.FromContext(ctx)

	lines, encoding, err := salesparser.ReadWithEncoding(r.cfg.InputFile)
	if err != nil {
		return nil, validation.Options{}, err
	}
	records := salesparser.Parse(lines)
	log.Debug().Str("encoding", encoding).Int("lines", len(lines)).Int("records", len(records)).Msg("Parsed input")

	options := validation.FilterOptions(records)
	return validation.NewValidator(ConfiguredFilters(r.cfg)).ValidateAll(records), options, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// step starts the progress line for step n.
func step(log zerolog.Logger, n int) *zerolog.Event {
	return log.Info().Str("step", fmt.Sprintf("[%d/%d]", n, totalSteps))
}

func (r *Runner) summary(result *Result, start, end time.Time) utils.ProcessingSummary {
	status := "available"
	if !result.Catalog.Available() {
		status = "unavailable: " + result.Catalog.Reason()
	}
	return utils.ProcessingSummary{
		RunID:          result.RunID,
		StartTime:      start,
		EndTime:        end,
		InputFile:      result.InputFile,
		Encoding:       result.Stats.Encoding,
		RawLines:       result.Stats.RawLines,
		ParsedRecords:  result.Stats.ParsedRecords,
		Validation:     result.Validation.Summary,
		CatalogSource:  r.cfg.Catalog.Source,
		CatalogStatus:  status,
		Matched:        result.Stats.MatchedRecords,
		ReportFile:     result.ReportFile,
		EnrichedFile:   result.EnrichedFile,
		WorkbookFile:   result.WorkbookFile,
		ArchivedReport: result.ArchivedReport,
		ErrorLogFile:   result.ErrorLogFile,
		DryRun:         r.dryRun,
	}
}
