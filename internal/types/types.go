// =============================================================================
// Sales Analytics - Shared Types
// =============================================================================
//
// This package contains the record types that flow through the pipeline.
// They live here, and not in the stage packages, to avoid import cycles:
//   - salesparser produces Transaction
//   - validation produces ValidatedTransaction
//   - enrichment produces EnrichedTransaction
//   - catalog produces Product and ProductInfo
//
// Records are never mutated after creation. Each stage returns new values.
//
// =============================================================================

package types

// Header is the expected 8-column layout of the input ledger.
var Header = []string{
	"TransactionID",
	"Date",
	"ProductID",
	"ProductName",
	"Quantity",
	"UnitPrice",
	"CustomerID",
	"Region",
}

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// Transaction is a parsed ledger line with typed numeric fields.
// It has not been checked against any business rule yet.
type Transaction struct {
	TransactionID string
	Date          string
	ProductID     string
	ProductName   string
	Quantity      int
	UnitPrice     float64
	CustomerID    string
	Region        string

	// Missing lists required field names the producer could not supply.
	// The line parser never fills it (short lines are dropped), but records
	// built by other producers may.
	Missing []string

	// LineNumber is the 1-based position of the source line among the
	// returned raw lines. Zero when the record did not come from a file.
	LineNumber int
}

// Amount returns Quantity x UnitPrice.
func (t Transaction) Amount() float64 {
	return float64(t.Quantity) * t.UnitPrice
}

// ValidatedTransaction is a transaction that passed every business rule.
// Amount is always populated.
type ValidatedTransaction struct {
	Transaction
	Amount float64
}

// NewValidatedTransaction wraps t and derives its amount.
func NewValidatedTransaction(t Transaction) ValidatedTransaction {
	return ValidatedTransaction{Transaction: t, Amount: t.Amount()}
}

// EnrichedTransaction is a validated transaction plus catalog metadata.
// The metadata pointers are nil when the catalog had no entry.
type EnrichedTransaction struct {
	ValidatedTransaction

	APICategory *string
	APIBrand    *string
	APIRating   *float64
	APIMatch    bool
}

// =============================================================================
// CATALOG TYPES
// =============================================================================

// Product is one entry returned by the external product catalog.
// ID is nil when the source did not carry an integer id.
type Product struct {
	ID       *int
	Title    *string
	Category *string
	Brand    *string
	Price    *float64
	Rating   *float64
}

// ProductInfo is the metadata kept per product id in a catalog mapping.
type ProductInfo struct {
	Title    *string
	Category *string
	Brand    *string
	Rating   *float64
}
