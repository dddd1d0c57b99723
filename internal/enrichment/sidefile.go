package enrichment

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// SideFileHeader is the column layout of the enriched side-file.
var SideFileHeader = append(append([]string{}, types.Header...),
	"API_Category", "API_Brand", "API_Rating", "API_Match")

// WriteSideFile overwrites path with the enriched records, one LF-terminated
// pipe-delimited line per record after the header. Parent directories are
// created as needed.
func WriteSideFile(path string, records []types.EnrichedTransaction) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create side-file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if _, err := writer.WriteString(strings.Join(SideFileHeader, "|") + "\n"); err != nil {
		return fmt.Errorf("failed to write side-file header: %w", err)
	}

	for _, r := range records {
		if _, err := writer.WriteString(FormatSideFileLine(r) + "\n"); err != nil {
			return fmt.Errorf("failed to write side-file: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush side-file: %w", err)
	}
	return file.Close()
}

// FormatSideFileLine renders one record without the trailing newline.
func FormatSideFileLine(r types.EnrichedTransaction) string {
	fields := []string{
		r.TransactionID,
		r.Date,
		r.ProductID,
		r.ProductName,
		strconv.Itoa(r.Quantity),
		FormatFloat(r.UnitPrice),
		r.CustomerID,
		r.Region,
		derefString(r.APICategory),
		derefString(r.APIBrand),
		"",
		FormatBool(r.APIMatch),
	}
	if r.APIRating != nil {
		fields[10] = FormatFloat(*r.APIRating)
	}
	return strings.Join(fields, "|")
}

// FormatFloat renders f the way the side-file expects: the shortest decimal
// that round-trips, with ".0" on integral values ("10.0", "12.5") and
// scientific notation below 1e-4 or from 1e16 on ("1e-05", "1e+16").
func FormatFloat(f float64) string {
	if f == 0 {
		return "0.0"
	}

	sci := strconv.FormatFloat(f, 'e', -1, 64)
	mark := strings.LastIndexByte(sci, 'e')
	if mark < 0 {
		return sci
	}
	exp, err := strconv.Atoi(sci[mark+1:])
	if err != nil {
		return sci
	}
	if exp < -4 || exp >= 16 {
		return sci
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatBool renders a match flag as "True" or "False".
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// =============================================================================
// READING
// =============================================================================

// ReadSideFile parses a side-file written by WriteSideFile.
// Blank lines are skipped. A line with the wrong number of fields or an
// unparseable number is an error naming the line.
func ReadSideFile(path string) ([]types.EnrichedTransaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read side-file: %w", err)
	}

	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != strings.Join(SideFileHeader, "|") {
		return nil, fmt.Errorf("side-file %s has an unexpected header", path)
	}

	records := []types.EnrichedTransaction{}
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		record, err := parseSideFileLine(line)
		if err != nil {
			return nil, fmt.Errorf("side-file line %d: %w", i+2, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func parseSideFileLine(line string) (types.EnrichedTransaction, error) {
	parts := strings.Split(line, "|")
	if len(parts) != len(SideFileHeader) {
		return types.EnrichedTransaction{}, fmt.Errorf("expected %d fields, got %d", len(SideFileHeader), len(parts))
	}

	qty, err := strconv.Atoi(parts[4])
	if err != nil {
		return types.EnrichedTransaction{}, fmt.Errorf("invalid quantity %q", parts[4])
	}
	price, err := strconv.ParseFloat(parts[5], 64)
	if err != nil {
		return types.EnrichedTransaction{}, fmt.Errorf("invalid unit price %q", parts[5])
	}

	record := types.EnrichedTransaction{
		ValidatedTransaction: types.NewValidatedTransaction(types.Transaction{
			TransactionID: parts[0],
			Date:          parts[1],
			ProductID:     parts[2],
			ProductName:   parts[3],
			Quantity:      qty,
			UnitPrice:     price,
			CustomerID:    parts[6],
			Region:        parts[7],
		}),
		APICategory: optionalString(parts[8]),
		APIBrand:    optionalString(parts[9]),
		APIMatch:    parts[11] == "True",
	}

	if parts[10] != "" {
		rating, err := strconv.ParseFloat(parts[10], 64)
		if err != nil {
			return types.EnrichedTransaction{}, fmt.Errorf("invalid rating %q", parts[10])
		}
		record.APIRating = &rating
	}

	return record, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
