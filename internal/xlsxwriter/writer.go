// =============================================================================
// Sales Analytics - Workbook Export
// =============================================================================
//
// This module exports the analytic views to an XLSX workbook, one sheet per
// view, for readers who want the numbers rather than the text report.
//
// WORKBOOK STRUCTURE:
//   Summary    key/value rows (generated, revenue, transactions, date range)
//   Regions    Region | Sales | % of Total | Transactions
//   Products   Rank | Product Name | Qty | Revenue
//   Customers  Rank | Customer ID | Total Spent | Order Count | Avg Order | Products
//   Daily      Date | Revenue | Transactions | Unique Customers
//   Enriched   the enriched side-file columns
//
// Numbers are written as numeric cells, not pre-formatted text.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/analytics"
	"github.com/ginjaninja78/sales-analytics/internal/enrichment"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetSummary   = "Summary"
	SheetRegions   = "Regions"
	SheetProducts  = "Products"
	SheetCustomers = "Customers"
	SheetDaily     = "Daily"
	SheetEnriched  = "Enriched"
)

// Sheets lists every sheet the export creates.
var Sheets = []string{SheetSummary, SheetRegions, SheetProducts, SheetCustomers, SheetDaily, SheetEnriched}

// =============================================================================
// EXPORT DATA
// =============================================================================

// Data is everything the workbook shows.
type Data struct {
	GeneratedAt  time.Time
	TotalRevenue float64
	Transactions int
	DateRange    [2]string
	Regions      []analytics.RegionStat
	Products     []analytics.ProductStat
	Customers    []analytics.CustomerStat
	Daily        []analytics.DailyStat
	Enriched     []types.EnrichedTransaction
}

// Build computes the workbook data from the validated and enriched records.
func Build(valid []types.ValidatedTransaction, enriched []types.EnrichedTransaction, topN int, now time.Time) Data {
	data := Data{
		GeneratedAt:  now,
		TotalRevenue: analytics.TotalRevenue(valid),
		Transactions: len(valid),
		DateRange:    [2]string{"N/A", "N/A"},
		Regions:      analytics.RegionSales(valid),
		Products:     analytics.TopProducts(valid, topN),
		Customers:    analytics.CustomerAnalysis(valid),
		Daily:        analytics.DailyTrend(valid),
		Enriched:     enriched,
	}
	if len(data.Daily) > 0 {
		data.DateRange = [2]string{data.Daily[0].Date, data.Daily[len(data.Daily)-1].Date}
	}
	return data
}

// =============================================================================
// WRITING
// =============================================================================

// Export writes data to a new workbook at path, replacing any existing file.
//
// PARAMETERS:
//   - path: Target .xlsx path. Parent directories are created.
//   - data: The views to export.
//
// RETURNS:
//   - An error if any sheet cannot be written or the file cannot be saved.
func Export(path string, data Data) error {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes Summary; the rest are appended in order.
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	w := &sheetWriter{file: f, headerStyle: headerStyle}
	w.writeSummary(data)
	w.writeRegions(data.Regions)
	w.writeProducts(data.Products)
	w.writeCustomers(data.Customers)
	w.writeDaily(data.Daily)
	w.writeEnriched(data.Enriched)
	if w.err != nil {
		return w.err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create workbook directory: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// sheetWriter keeps the first error so each sheet can be written without
// checking after every cell.
type sheetWriter struct {
	file        *excelize.File
	headerStyle int
	err         error
}

func (w *sheetWriter) header(sheet string, columns ...any) {
	w.row(sheet, 1, columns...)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		w.err = err
		return
	}
	if err := w.file.SetCellStyle(sheet, "A1", last, w.headerStyle); err != nil {
		w.err = fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
}

func (w *sheetWriter) row(sheet string, rowNum int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		w.err = err
		return
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("failed to write %s row %d: %w", sheet, rowNum, err)
	}
}

func (w *sheetWriter) writeSummary(data Data) {
	w.header(SheetSummary, "Metric", "Value")
	w.row(SheetSummary, 2, "Generated", data.GeneratedAt.Format("2006-01-02 15:04:05"))
	w.row(SheetSummary, 3, "Total Revenue", data.TotalRevenue)
	w.row(SheetSummary, 4, "Total Transactions", data.Transactions)
	w.row(SheetSummary, 5, "First Date", data.DateRange[0])
	w.row(SheetSummary, 6, "Last Date", data.DateRange[1])
}

func (w *sheetWriter) writeRegions(regions []analytics.RegionStat) {
	w.header(SheetRegions, "Region", "Sales", "% of Total", "Transactions")
	for i, r := range regions {
		w.row(SheetRegions, i+2, r.Region, r.TotalSales, r.Percentage, r.TransactionCount)
	}
}

func (w *sheetWriter) writeProducts(products []analytics.ProductStat) {
	w.header(SheetProducts, "Rank", "Product Name", "Qty", "Revenue")
	for i, p := range products {
		w.row(SheetProducts, i+2, i+1, p.Name, p.Quantity, p.Revenue)
	}
}

func (w *sheetWriter) writeCustomers(customers []analytics.CustomerStat) {
	w.header(SheetCustomers, "Rank", "Customer ID", "Total Spent", "Order Count", "Avg Order", "Products")
	for i, c := range customers {
		w.row(SheetCustomers, i+2, i+1, c.CustomerID, c.TotalSpent, c.PurchaseCount, c.AvgOrderValue,
			strings.Join(c.ProductsBought, ", "))
	}
}

func (w *sheetWriter) writeDaily(days []analytics.DailyStat) {
	w.header(SheetDaily, "Date", "Revenue", "Transactions", "Unique Customers")
	for i, d := range days {
		w.row(SheetDaily, i+2, d.Date, d.Revenue, d.TransactionCount, d.UniqueCustomers)
	}
}

func (w *sheetWriter) writeEnriched(records []types.EnrichedTransaction) {
	columns := make([]any, len(enrichment.SideFileHeader))
	for i, h := range enrichment.SideFileHeader {
		columns[i] = h
	}
	w.header(SheetEnriched, columns...)

	for i, r := range records {
		var rating any = ""
		if r.APIRating != nil {
			rating = *r.APIRating
		}
		w.row(SheetEnriched, i+2,
			r.TransactionID, r.Date, r.ProductID, r.ProductName,
			r.Quantity, r.UnitPrice, r.CustomerID, r.Region,
			deref(r.APICategory), deref(r.APIBrand), rating,
			enrichment.FormatBool(r.APIMatch),
		)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
