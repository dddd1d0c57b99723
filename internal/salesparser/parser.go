// =============================================================================
// Sales Analytics - Ledger Parser Module
// =============================================================================
//
// This module reads the pipe-delimited sales ledger and turns its lines into
// typed transaction records. It is tolerant of the noise legacy exports carry:
//   - Unknown text encodings (UTF-8, Latin-1, Windows-1252 are tried in order)
//   - A UTF-8 byte-order marker on the first line
//   - Leading blank lines and an optional header row
//   - Grouping separators and currency glyphs inside numeric fields
//
// Two classes of bad input are kept apart:
//   - Structurally unparseable lines (wrong column count, non-numeric
//     quantity or price) are dropped here and never counted.
//   - Business-invalid records are passed on and counted by validation.
//
// =============================================================================

package salesparser

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ginjaninja78/sales-analytics/internal/sanitize"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrNotFound is returned (wrapped) by Read when the ledger file does not exist.
var ErrNotFound = errors.New("sales data file not found")

// byteOrderMark is stripped from the start of the first line.
const byteOrderMark = "\ufeff"

// minHeaderHits is how many header names a line must mention to be treated
// as a header when it is not an exact match.
const minHeaderHits = 4

// =============================================================================
// ENCODING DETECTION
// =============================================================================

// candidate is one encoding tried, in order, when decoding the ledger.
type candidate struct {
	name    string
	decoder *encoding.Decoder // nil means UTF-8
}

var candidates = []candidate{
	{name: "utf-8"},
	{name: "latin-1", decoder: charmap.ISO8859_1.NewDecoder()},
	{name: "cp1252", decoder: charmap.Windows1252.NewDecoder()},
}

// Decode converts raw ledger bytes to text.
//
// RETURNS:
//   - The decoded text.
//   - The name of the encoding that was used. When no candidate decodes
//     strictly, Latin-1 with replacement characters is used and the name is
//     reported as "latin-1 (lossy)".
func Decode(data []byte) (string, string) {
	for _, c := range candidates {
		if text, ok := decodeStrict(data, c); ok {
			return text, c.name
		}
	}

	text, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return strings.ToValidUTF8(string(text), "\ufffd"), "latin-1 (lossy)"
}

// decodeStrict reports false when the bytes are not valid in the encoding.
// The charmap decoders substitute U+FFFD for undefined bytes, so a
// replacement character that was not already in the input means failure.
func decodeStrict(data []byte, c candidate) (string, bool) {
	if c.decoder == nil {
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	}

	out, err := c.decoder.Bytes(data)
	if err != nil {
		return "", false
	}
	if strings.ContainsRune(string(out), utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

// =============================================================================
// READING
// =============================================================================

// Read loads the ledger file and returns its data lines.
//
// PARAMETERS:
//   - path: The path to the pipe-delimited ledger.
//
// RETURNS:
//   - The non-blank, right-trimmed lines following the optional header.
//   - An error wrapping ErrNotFound if the path does not exist, or the
//     underlying I/O error if it cannot be read.
//
// READING PROCESS:
//  1. Decode the bytes, trying each candidate encoding
//  2. Split on any newline convention (\n, \r\n, \r)
//  3. Strip a leading byte-order marker
//  4. Skip leading blank lines and a header row, if present
//  5. Keep every remaining non-blank line
func Read(path string) ([]string, error) {
	lines, _, err := ReadWithEncoding(path)
	return lines, err
}

// ReadWithEncoding is Read that also reports which encoding decoded the file.
func ReadWithEncoding(path string) ([]string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", fmt.Errorf("%w at: %s", ErrNotFound, path)
		}
		return nil, "", fmt.Errorf("failed to read sales data: %w", err)
	}

	text, encoding := Decode(data)
	return SplitLines(text), encoding, nil
}

// SplitLines applies the header and blank-line rules of Read to decoded text.
func SplitLines(text string) []string {
	raw := splitUniversal(text)
	if len(raw) > 0 {
		raw[0] = strings.TrimPrefix(raw[0], byteOrderMark)
	}

	idx := 0
	for idx < len(raw) && strings.TrimSpace(raw[idx]) == "" {
		idx++
	}

	if idx < len(raw) && LooksLikeHeader(raw[idx]) {
		idx++
	}

	lines := make([]string, 0, len(raw)-idx)
	for _, line := range raw[idx:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, strings.TrimRightFunc(line, unicode.IsSpace))
	}
	return lines
}

// splitUniversal splits on \r\n, \r and \n alike.
func splitUniversal(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// LooksLikeHeader reports whether line is the ledger header row.
//
// A line is a header if, with whitespace removed, it equals the expected
// pipe-joined header exactly, or if at least four of the eight header names
// appear in it case-insensitively.
func LooksLikeHeader(line string) bool {
	expected := strings.Join(types.Header, "|")
	compact := strings.ReplaceAll(strings.TrimSpace(line), " ", "")
	if compact == expected {
		return true
	}

	lowered := strings.ToLower(line)
	hits := 0
	for _, name := range types.Header {
		if strings.Contains(lowered, strings.ToLower(name)) {
			hits++
		}
	}
	return hits >= minHeaderHits
}

// =============================================================================
// PARSING
// =============================================================================

// Parse converts raw ledger lines into transactions.
//
// Lines without exactly eight pipe-separated fields, and lines whose quantity
// or price cannot be converted to a finite number, are silently dropped.
// An empty quantity or price is read as zero and left for validation to
// reject.
func Parse(lines []string) []types.Transaction {
	records := make([]types.Transaction, 0, len(lines))

	for i, line := range lines {
		if line == "" || !strings.Contains(line, "|") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != len(types.Header) {
			continue
		}
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}

		qty, ok := parseQuantity(parts[4])
		if !ok {
			continue
		}
		price, ok := parsePrice(parts[5])
		if !ok {
			continue
		}

		records = append(records, types.Transaction{
			TransactionID: parts[0],
			Date:          parts[1],
			ProductID:     parts[2],
			ProductName:   sanitize.ProductName(parts[3]),
			Quantity:      qty,
			UnitPrice:     price,
			CustomerID:    parts[6],
			Region:        parts[7],
			LineNumber:    i + 1,
		})
	}

	return records
}

// parseQuantity reads a quantity through float, so "5.0" is accepted.
// The fractional part is truncated toward zero.
func parseQuantity(raw string) (int, bool) {
	f, ok := parseNumber(raw)
	if !ok {
		return 0, false
	}
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return 0, false
	}
	return int(f), true
}

func parsePrice(raw string) (float64, bool) {
	return parseNumber(raw)
}

// parseNumber sanitizes raw and converts it to a finite float.
// An empty value after sanitation reads as zero.
func parseNumber(raw string) (float64, bool) {
	cleaned := sanitize.Number(raw)
	if cleaned == "" {
		cleaned = "0"
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
