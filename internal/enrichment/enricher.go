// =============================================================================
// Sales Analytics - Catalog Enricher
// =============================================================================
//
// This module merges catalog metadata into validated transactions.
//
// MATCHING:
//   Every digit in a ProductID is concatenated ("P1-0X7" -> 107) and looked up
//   in the catalog mapping. A hit copies category, brand and rating and sets
//   APIMatch. A miss, or an id without digits, leaves the metadata empty.
//   A single record can never fail the whole enrichment.
//
// SIDE-FILE:
//   The enriched set is also written to a pipe-delimited side-file. A failure
//   to write it is logged and the enriched records are still returned.
//
// =============================================================================

package enrichment

import (
	"context"
	"strconv"

	"github.com/ginjaninja78/sales-analytics/internal/logger"
	"github.com/ginjaninja78/sales-analytics/internal/sanitize"
	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// DefaultSideFile is where the enriched records are written by default.
const DefaultSideFile = "data/enriched_sales_data.txt"

// Enricher merges catalog metadata and persists the result.
type Enricher struct {
	sideFilePath string
}

// NewEnricher creates an enricher that writes its side-file to sideFilePath.
// An empty path disables the side-file.
func NewEnricher(sideFilePath string) *Enricher {
	return &Enricher{sideFilePath: sideFilePath}
}

// SideFilePath returns the configured side-file path.
func (e *Enricher) SideFilePath() string {
	return e.sideFilePath
}

// Enrich merges mapping into records and writes the side-file.
//
// PARAMETERS:
//   - ctx: Carries the logger used to report a side-file failure.
//   - records: The validated transactions.
//   - mapping: Catalog metadata keyed by integer product id.
//
// RETURNS:
//   - One enriched transaction per input record, in input order.
func (e *Enricher) Enrich(ctx context.Context, records []types.ValidatedTransaction, mapping map[int]types.ProductInfo) []types.EnrichedTransaction {
	enriched := Enrich(records, mapping)
	e.Save(ctx, enriched)
	return enriched
}

// Save writes enriched to the side-file. A write failure is logged and
// reported as false, never returned.
func (e *Enricher) Save(ctx context.Context, enriched []types.EnrichedTransaction) bool {
	if e.sideFilePath == "" {
		return false
	}

	log := logger.FromContext(ctx)
	if err := WriteSideFile(e.sideFilePath, enriched); err != nil {
		log.Warn().Err(err).Str("file", e.sideFilePath).Msg("Failed to save enriched data")
		return false
	}

	log.Debug().Str("file", e.sideFilePath).Int("records", len(enriched)).Msg("Enriched data saved")
	return true
}

// Enrich merges mapping into records without touching the filesystem.
func Enrich(records []types.ValidatedTransaction, mapping map[int]types.ProductInfo) []types.EnrichedTransaction {
	enriched := make([]types.EnrichedTransaction, 0, len(records))

	for _, r := range records {
		e := types.EnrichedTransaction{ValidatedTransaction: r}

		if id, ok := NumericID(r.ProductID); ok {
			if info, found := mapping[id]; found {
				e.APICategory = info.Category
				e.APIBrand = info.Brand
				e.APIRating = info.Rating
				e.APIMatch = true
			}
		}

		enriched = append(enriched, e)
	}

	return enriched
}

// NumericID concatenates every digit of productID and parses the result.
// ok is false when there are no digits or the number does not fit an int.
func NumericID(productID string) (int, bool) {
	digits := sanitize.Digits(productID)
	if digits == "" {
		return 0, false
	}
	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return id, true
}

// MatchRate returns the number of matched records and the match percentage.
// The percentage is 0 for an empty set.
func MatchRate(enriched []types.EnrichedTransaction) (int, float64) {
	matched := 0
	for _, e := range enriched {
		if e.APIMatch {
			matched++
		}
	}
	if len(enriched) == 0 {
		return 0, 0
	}
	return matched, float64(matched) / float64(len(enriched)) * 100
}
