package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/logger"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/xuri/excelize/v2"
)

// XLSXColumns are the header names recognised in an offline catalog workbook.
// Matching is case-insensitive; column order is free.
var XLSXColumns = []string{"id", "title", "category", "brand", "price", "rating"}

// XLSXSource reads products from the first sheet of a workbook.
//
// WORKBOOK STRUCTURE:
//
//	| id | title          | category | brand   | price | rating |
//	|----|----------------|----------|---------|-------|--------|
//	| 1  | Essence Mascara| beauty   | Essence | 9.99  | 4.94   |
//
// Only the id column is required. Blank cells become absent values.
type XLSXSource struct {
	Path string
}

// NewXLSXSource creates a source for the workbook at path.
func NewXLSXSource(path string) *XLSXSource {
	return &XLSXSource{Path: path}
}

// FetchProducts reads up to limit product rows. A limit <= 0 reads every row.
// Any failure to open or read the workbook yields Unavailable.
func (s *XLSXSource) FetchProducts(ctx context.Context, limit int) Result {
	log := logger.FromContext(ctx)

	products, err := s.readProducts(limit)
	if err != nil {
		return Unavailable(err.Error())
	}

	log.Debug().Str("file", s.Path).Int("products", len(products)).Msg("Loaded offline product catalog")
	return Ok(products)
}

func (s *XLSXSource) readProducts(limit int) ([]types.Product, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("no catalog workbook configured")
	}

	// Open the XLSX file.
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("catalog workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return []types.Product{}, nil
	}

	columns := headerIndex(rows[0])
	if _, ok := columns["id"]; !ok {
		return nil, fmt.Errorf("catalog workbook has no id column")
	}

	products := []types.Product{}
	for _, row := range rows[1:] {
		if limit > 0 && len(products) >= limit {
			break
		}
		if isRowEmpty(row) {
			continue
		}

		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		products = append(products, types.Product{
			ID:       parseIntCell(cell("id")),
			Title:    stringCell(cell("title")),
			Category: stringCell(cell("category")),
			Brand:    stringCell(cell("brand")),
			Price:    parseFloatCell(cell("price")),
			Rating:   parseFloatCell(cell("rating")),
		})
	}

	return products, nil
}

// headerIndex maps each recognised lower-cased header to its column index.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		for _, known := range XLSXColumns {
			if name == known {
				if _, dup := index[name]; !dup {
					index[name] = i
				}
			}
		}
	}
	return index
}

func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func stringCell(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func parseIntCell(v string) *int {
	id, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &id
}

func parseFloatCell(v string) *float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}
