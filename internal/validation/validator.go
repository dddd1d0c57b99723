// =============================================================================
// Sales Analytics - Validation Engine
// =============================================================================
//
// This module checks parsed transactions against the business rules and then
// applies the optional region and amount filters.
//
// VALIDATION STRATEGY:
//   Rules are checked in a fixed order and the first failing rule decides
//   why a record is rejected:
//   1. Required fields missing from the record
//   2. Required string fields blank after trimming
//   3. Quantity or unit price not positive (or not a finite number)
//   4. Identifier prefixes: TransactionID "T", ProductID "P", CustomerID "C"
//
//   Filters run only over the records that passed every rule:
//   1. Exact region match
//   2. Inclusive minimum amount
//   3. Inclusive maximum amount
//
// ERROR HANDLING:
//   - Rejections are collected as values, never returned as Go errors
//   - Each rejection carries the rule, field, value and source line
//   - A single bad record never stops validation of the rest
//
// =============================================================================

package validation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// Rule names used in ValidationError.Rule.
const (
	RuleMissingField = "missing_field"
	RuleBlankField   = "blank_field"
	RuleNonPositive  = "non_positive"
	RulePrefix       = "prefix"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError describes why a single record was rejected.
type ValidationError struct {
	// Rule is the validation rule that was violated.
	Rule string

	// Field is the name of the field that failed validation.
	Field string

	// Value is the offending value, as text.
	Value string

	// Message is a human-readable explanation.
	Message string

	// TransactionID of the rejected record, possibly blank.
	TransactionID string

	// Row is the source line number of the record (0 if unknown).
	Row int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] Row %d, Transaction '%s', Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Rule),
		e.Row,
		e.TransactionID,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// FILTERS AND SUMMARY
// =============================================================================

// Filters are the optional post-validation filters. A zero value applies none.
type Filters struct {
	// Region keeps only records whose region equals it exactly. Empty = no filter.
	Region string

	// MinAmount keeps records with Amount >= *MinAmount. Nil = no filter.
	MinAmount *float64

	// MaxAmount keeps records with Amount <= *MaxAmount. Nil = no filter.
	MaxAmount *float64
}

// Active reports whether any filter is set.
func (f Filters) Active() bool {
	return f.Region != "" || f.MinAmount != nil || f.MaxAmount != nil
}

// Summary counts what happened to the input at each stage.
// Each count is the number of records removed at that stage only.
type Summary struct {
	TotalInput       int `json:"total_input" yaml:"total_input"`
	Invalid          int `json:"invalid" yaml:"invalid"`
	FilteredByRegion int `json:"filtered_by_region" yaml:"filtered_by_region"`
	FilteredByAmount int `json:"filtered_by_amount" yaml:"filtered_by_amount"`
	FinalCount       int `json:"final_count" yaml:"final_count"`
}

// Result is the full outcome of a validation run.
type Result struct {
	Valid      []types.ValidatedTransaction
	Invalid    int
	Summary    Summary
	Rejections []*ValidationError
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator validates transactions and applies filters.
type Validator struct {
	filters Filters
}

// NewValidator creates a validator with the given filters.
func NewValidator(filters Filters) *Validator {
	return &Validator{filters: filters}
}

// Validate is a convenience function that validates and filters records.
//
// RETURNS:
//   - The records that passed every rule and every filter.
//   - The number of records rejected by a rule.
//   - The per-stage summary.
func Validate(records []types.Transaction, filters Filters) ([]types.ValidatedTransaction, int, Summary) {
	result := NewValidator(filters).ValidateAll(records)
	return result.Valid, result.Invalid, result.Summary
}

// ValidateAll runs every rule over every record, then applies the filters.
func (v *Validator) ValidateAll(records []types.Transaction) *Result {
	result := &Result{
		Valid: make([]types.ValidatedTransaction, 0, len(records)),
	}

	for _, record := range records {
		if rejection := ValidateRecord(record); rejection != nil {
			result.Invalid++
			result.Rejections = append(result.Rejections, rejection)
			continue
		}
		result.Valid = append(result.Valid, types.NewValidatedTransaction(record))
	}

	beforeRegion := len(result.Valid)
	if v.filters.Region != "" {
		result.Valid = keep(result.Valid, func(r types.ValidatedTransaction) bool {
			return strings.TrimSpace(r.Region) == v.filters.Region
		})
	}
	filteredByRegion := beforeRegion - len(result.Valid)

	beforeAmount := len(result.Valid)
	if v.filters.MinAmount != nil {
		lo := *v.filters.MinAmount
		result.Valid = keep(result.Valid, func(r types.ValidatedTransaction) bool {
			return r.Amount >= lo
		})
	}
	if v.filters.MaxAmount != nil {
		hi := *v.filters.MaxAmount
		result.Valid = keep(result.Valid, func(r types.ValidatedTransaction) bool {
			return r.Amount <= hi
		})
	}
	filteredByAmount := beforeAmount - len(result.Valid)

	result.Summary = Summary{
		TotalInput:       len(records),
		Invalid:          result.Invalid,
		FilteredByRegion: filteredByRegion,
		FilteredByAmount: filteredByAmount,
		FinalCount:       len(result.Valid),
	}

	return result
}

// ValidateRecord checks a single record and returns the first rule it
// violates, or nil if it is valid.
func ValidateRecord(t types.Transaction) *ValidationError {
	reject := func(rule, field, value, message string) *ValidationError {
		return &ValidationError{
			Rule:          rule,
			Field:         field,
			Value:         value,
			Message:       message,
			TransactionID: t.TransactionID,
			Row:           t.LineNumber,
		}
	}

	// Rule 1
	if len(t.Missing) > 0 {
		return reject(RuleMissingField, t.Missing[0], "", "required field is missing")
	}

	// Rule 2
	for _, f := range stringFields(t) {
		if strings.TrimSpace(f.value) == "" {
			return reject(RuleBlankField, f.name, f.value, "required field is blank")
		}
	}

	// Rule 3
	if t.Quantity <= 0 {
		return reject(RuleNonPositive, "Quantity", fmt.Sprintf("%d", t.Quantity), "quantity must be greater than zero")
	}
	if math.IsNaN(t.UnitPrice) || math.IsInf(t.UnitPrice, 0) || t.UnitPrice <= 0 {
		return reject(RuleNonPositive, "UnitPrice", fmt.Sprintf("%v", t.UnitPrice), "unit price must be greater than zero")
	}

	// Rule 4
	for _, p := range []struct{ field, value, prefix string }{
		{"TransactionID", t.TransactionID, "T"},
		{"ProductID", t.ProductID, "P"},
		{"CustomerID", t.CustomerID, "C"},
	} {
		if !strings.HasPrefix(p.value, p.prefix) {
			return reject(RulePrefix, p.field, p.value, fmt.Sprintf("must start with '%s'", p.prefix))
		}
	}

	return nil
}

type namedValue struct {
	name  string
	value string
}

func stringFields(t types.Transaction) []namedValue {
	return []namedValue{
		{"TransactionID", t.TransactionID},
		{"Date", t.Date},
		{"ProductID", t.ProductID},
		{"ProductName", t.ProductName},
		{"CustomerID", t.CustomerID},
		{"Region", t.Region},
	}
}

func keep(records []types.ValidatedTransaction, pred func(types.ValidatedTransaction) bool) []types.ValidatedTransaction {
	out := make([]types.ValidatedTransaction, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// =============================================================================
// FILTER OPTIONS
// =============================================================================

// Options describes the values a user can filter on.
type Options struct {
	// Regions are the distinct non-blank regions, sorted.
	Regions []string

	// MinAmount and MaxAmount bound the transaction amounts (0 when empty).
	MinAmount float64
	MaxAmount float64
}

// FilterOptions inspects parsed (not yet validated) records and reports the
// available regions and the amount range.
func FilterOptions(records []types.Transaction) Options {
	seen := make(map[string]struct{})
	opts := Options{Regions: []string{}}

	for i, r := range records {
		if region := strings.TrimSpace(r.Region); region != "" {
			if _, ok := seen[region]; !ok {
				seen[region] = struct{}{}
				opts.Regions = append(opts.Regions, region)
			}
		}

		amount := r.Amount()
		if i == 0 || amount < opts.MinAmount {
			opts.MinAmount = amount
		}
		if i == 0 || amount > opts.MaxAmount {
			opts.MaxAmount = amount
		}
	}

	sort.Strings(opts.Regions)
	return opts
}

// =============================================================================
// ERROR REPORTING
// =============================================================================

// FormatErrors formats rejections for display.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d rejected record(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// FormatSummary renders the summary counts, one per line.
func FormatSummary(s Summary) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Total input:         %d\n", s.TotalInput))
	builder.WriteString(fmt.Sprintf("Invalid:             %d\n", s.Invalid))
	builder.WriteString(fmt.Sprintf("Filtered by region:  %d\n", s.FilteredByRegion))
	builder.WriteString(fmt.Sprintf("Filtered by amount:  %d\n", s.FilteredByAmount))
	builder.WriteString(fmt.Sprintf("Final count:         %d\n", s.FinalCount))
	return builder.String()
}
