// =============================================================================
// Sales Analytics - Report Renderer
// =============================================================================
//
// This module renders the fixed-layout text report. Sections always appear in
// this order, each under a 44-character rule:
//   1. Header block (title, generation time, record count)
//   2. OVERALL SUMMARY
//   3. REGION-WISE PERFORMANCE
//   4. TOP N PRODUCTS
//   5. TOP 5 CUSTOMERS
//   6. DAILY SALES TREND
//   7. PRODUCT PERFORMANCE ANALYSIS
//   8. API ENRICHMENT SUMMARY
//
// Money renders as <symbol><grouped value, 2 decimals>, e.g. "₹1,234.50".
//
// =============================================================================

package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/analytics"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// DefaultCurrencySymbol prefixes every money value.
	DefaultCurrencySymbol = "₹"

	// DefaultLowThreshold is the low-performer quantity threshold.
	DefaultLowThreshold = 10

	// DefaultTopN is how many products are ranked.
	DefaultTopN = 5

	// topCustomers is how many customers are ranked.
	topCustomers = 5

	ruleWidth       = 44
	timestampLayout = "2006-01-02 15:04:05"
)

var (
	separator   = strings.Repeat("=", ruleWidth)
	sectionRule = strings.Repeat("-", ruleWidth)
	printer     = message.NewPrinter(language.English)
)

// Options controls rendering.
type Options struct {
	CurrencySymbol string
	LowThreshold   int
	TopN           int

	// Now supplies the generation timestamp. Nil means time.Now.
	Now func() time.Time
}

// DefaultOptions returns the standard rendering options.
func DefaultOptions() Options {
	return Options{
		CurrencySymbol: DefaultCurrencySymbol,
		LowThreshold:   DefaultLowThreshold,
		TopN:           DefaultTopN,
	}
}

// =============================================================================
// MONEY FORMATTING
// =============================================================================

// FormatMoney renders value with symbol, thousands separators and two
// decimals. Values that cannot be grouped (NaN, infinities) fall back to
// the raw value.
func FormatMoney(value float64, symbol string) string {
	grouped, ok := groupedAmount(value)
	if !ok {
		return symbol + strconv.FormatFloat(value, 'g', -1, 64)
	}
	return symbol + grouped
}

// groupedAmount formats value as "1,234.50". The value is rounded to two
// decimals first so the printed digits follow half-to-even rounding of the
// exact binary value.
func groupedAmount(value float64) (string, bool) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", false
	}
	return printer.Sprintf("%.2f", analytics.Round2(value)), true
}

// =============================================================================
// RENDERING
// =============================================================================

// Render builds the report text from the validated and enriched records.
// The result ends with a newline and uses LF line endings.
func Render(valid []types.ValidatedTransaction, enriched []types.EnrichedTransaction, opts Options) string {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	money := func(v float64) string { return FormatMoney(v, opts.CurrencySymbol) }

	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}
	heading := func(title string) {
		lines = append(lines, title, sectionRule)
	}

	// Header block
	lines = append(lines, separator, "SALES ANALYTICS REPORT")
	add("Generated: %s", now().Format(timestampLayout))
	add("Records Processed: %d", len(valid))
	lines = append(lines, separator)

	// Overall summary
	total := analytics.TotalRevenue(valid)
	avgOrder := 0.0
	if len(valid) > 0 {
		avgOrder = total / float64(len(valid))
	}
	dateMin, dateMax := dateRange(valid)

	heading("OVERALL SUMMARY")
	add("Total Revenue: %s", money(total))
	add("Total Transactions: %d", len(valid))
	add("Average Order Value: %s", money(avgOrder))
	add("Date Range: %s to %s", dateMin, dateMax)

	// Regions
	regions := analytics.RegionSales(valid)

	heading("REGION-WISE PERFORMANCE")
	add("%-12s%15s  %12s  %13s", "Region", "Sales", "% of Total", "Transactions")
	for _, r := range regions {
		add("%-12s%15s  %11.2f%%  %13d", r.Region, money(r.TotalSales), r.Percentage, r.TransactionCount)
	}

	// Top products
	heading(fmt.Sprintf("TOP %d PRODUCTS", opts.TopN))
	add("%4s  %-30s%6s  %15s", "Rank", "Product Name", "Qty", "Revenue")
	for i, p := range analytics.TopProducts(valid, opts.TopN) {
		add("%4d  %-30s%6d  %15s", i+1, p.Name, p.Quantity, money(p.Revenue))
	}

	// Top customers
	customers := analytics.CustomerAnalysis(valid)
	if len(customers) > topCustomers {
		customers = customers[:topCustomers]
	}

	heading(fmt.Sprintf("TOP %d CUSTOMERS", topCustomers))
	add("%4s  %-12s%15s  %12s", "Rank", "Customer ID", "Total Spent", "Order Count")
	for i, c := range customers {
		add("%4d  %-12s%15s  %12d", i+1, c.CustomerID, money(c.TotalSpent), c.PurchaseCount)
	}

	// Daily trend
	heading("DAILY SALES TREND")
	add("%-12s%15s  %7s  %14s", "Date", "Revenue", "Trans", "Unique Cust.")
	for _, d := range analytics.DailyTrend(valid) {
		add("%-12s%15s  %7d  %14d", d.Date, money(d.Revenue), d.TransactionCount, d.UniqueCustomers)
	}

	// Product performance
	heading("PRODUCT PERFORMANCE ANALYSIS")
	if peak, ok := analytics.PeakDay(valid); ok {
		add("Best Selling Day: %s  (Revenue: %s, Transactions: %d)", peak.Date, money(peak.Revenue), peak.TransactionCount)
	} else {
		add("Best Selling Day: N/A")
	}

	if low := analytics.LowPerformers(valid, opts.LowThreshold); len(low) > 0 {
		add("Low Performing Products (< threshold)")
		add("%-30s%6s  %15s", "Product", "Qty", "Revenue")
		for _, p := range low {
			add("%-30s%6d  %15s", p.Name, p.Quantity, money(p.Revenue))
		}
	} else {
		add("Low Performing Products: None")
	}

	add("Average Transaction Value per Region")
	add("%-12s%15s", "Region", "Avg Value")
	for _, r := range analytics.AverageByRegion(regions) {
		add("%-12s%15s", r.Region, money(r.Average))
	}

	// Enrichment summary
	matched, attempted, rate, failures := enrichmentSummary(enriched)

	heading("API ENRICHMENT SUMMARY")
	add("Total products enriched: %d of %d", matched, attempted)
	add("Success rate: %.2f%%", rate)
	if len(failures) > 0 {
		add("Products not enriched:")
		for _, label := range failures {
			add(" - %s", label)
		}
	} else {
		add("All products enriched successfully (or enrichment not attempted).")
	}

	return strings.Join(lines, "\n") + "\n"
}

// dateRange returns the lexicographic min and max non-blank dates, or
// "N/A" for both when there are none.
func dateRange(records []types.ValidatedTransaction) (string, string) {
	lo, hi := "", ""
	for _, r := range records {
		d := strings.TrimSpace(r.Date)
		if d == "" {
			continue
		}
		if lo == "" || d < lo {
			lo = d
		}
		if hi == "" || d > hi {
			hi = d
		}
	}
	if lo == "" {
		return "N/A", "N/A"
	}
	return lo, hi
}

// enrichmentSummary counts matches and collects the sorted, distinct
// "ProductID:ProductName" labels of unmatched records.
func enrichmentSummary(enriched []types.EnrichedTransaction) (matched, total int, rate float64, failures []string) {
	total = len(enriched)
	seen := make(map[string]struct{})

	for _, e := range enriched {
		if e.APIMatch {
			matched++
			continue
		}
		label := strings.Trim(e.ProductID+":"+e.ProductName, ":")
		if label == "" {
			continue
		}
		if _, dup := seen[label]; !dup {
			seen[label] = struct{}{}
			failures = append(failures, label)
		}
	}

	if total > 0 {
		rate = float64(matched) / float64(total) * 100
	}
	sort.Strings(failures)
	return matched, total, rate, failures
}

// =============================================================================
// OUTPUT
// =============================================================================

// Write writes report text to path, creating parent directories.
func Write(path, text string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Generate renders the report, writes it to path and returns the absolute
// path together with the text.
func Generate(path string, valid []types.ValidatedTransaction, enriched []types.EnrichedTransaction, opts Options) (string, string, error) {
	text := Render(valid, enriched, opts)
	if err := Write(path, text); err != nil {
		return "", text, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, text, nil
	}
	return abs, text, nil
}
