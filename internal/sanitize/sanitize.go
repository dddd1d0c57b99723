// =============================================================================
// Sales Analytics - Field Sanitation
// =============================================================================
//
// This module cleans raw ledger field values before they are converted to
// typed values. Sanitation is expressed as ordered chains of small actions,
// so each field has an explicit, testable recipe:
//   - Product names: commas become spaces, runs of spaces collapse to one
//   - Quantities / prices: grouping separators and currency glyphs removed
//   - Product ids: every digit character extracted for catalog lookups
//
// =============================================================================

package sanitize

import (
	"fmt"
	"strings"
)

// =============================================================================
// ACTIONS
// =============================================================================

// ActionType names a single sanitation step.
type ActionType string

const (
	// Trim removes leading and trailing whitespace.
	Trim ActionType = "trim"

	// Replace replaces every occurrence of Value with Replacement.
	Replace ActionType = "replace"

	// RemoveChars deletes every character listed in Value.
	RemoveChars ActionType = "remove_chars"

	// CollapseSpaces replaces runs of spaces with a single space.
	CollapseSpaces ActionType = "collapse_spaces"

	// ExtractDigits keeps only the ASCII digit characters, in order.
	ExtractDigits ActionType = "extract_digits"
)

// Action is one sanitation step.
type Action struct {
	Type        ActionType
	Value       string
	Replacement string
}

// NumericStrippers are removed from quantity and price strings.
const NumericStrippers = ",$€£ "

// ProductNameChain cleans a product name.
var ProductNameChain = []Action{
	{Type: Replace, Value: ",", Replacement: " "},
	{Type: Trim},
	{Type: CollapseSpaces},
}

// NumberChain cleans a quantity or price string.
var NumberChain = []Action{
	{Type: Trim},
	{Type: RemoveChars, Value: NumericStrippers},
}

// DigitsChain reduces a product id to its digits.
var DigitsChain = []Action{
	{Type: ExtractDigits},
}

// =============================================================================
// APPLICATION
// =============================================================================

// Apply runs the actions over value in order.
func Apply(value string, actions ...Action) (string, error) {
	result := value
	for _, action := range actions {
		var err error
		result, err = applyAction(result, action)
		if err != nil {
			return "", fmt.Errorf("sanitation '%s' failed: %w", action.Type, err)
		}
	}
	return result, nil
}

// MustApply is Apply for the built-in chains, which cannot fail.
func MustApply(value string, actions ...Action) string {
	result, err := Apply(value, actions...)
	if err != nil {
		panic(err)
	}
	return result
}

func applyAction(value string, action Action) (string, error) {
	switch action.Type {
	case Trim:
		return strings.TrimSpace(value), nil

	case Replace:
		if action.Value == "" {
			return "", fmt.Errorf("replace requires a value")
		}
		return strings.ReplaceAll(value, action.Value, action.Replacement), nil

	case RemoveChars:
		return strings.Map(func(r rune) rune {
			if strings.ContainsRune(action.Value, r) {
				return -1
			}
			return r
		}, value), nil

	case CollapseSpaces:
		for strings.Contains(value, "  ") {
			value = strings.ReplaceAll(value, "  ", " ")
		}
		return value, nil

	case ExtractDigits:
		var b strings.Builder
		for _, r := range value {
			if r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String(), nil

	default:
		return "", fmt.Errorf("unknown action type: %s", action.Type)
	}
}

// =============================================================================
// CONVENIENCE WRAPPERS
// =============================================================================

// ProductName cleans a raw product name.
func ProductName(name string) string {
	return MustApply(name, ProductNameChain...)
}

// Number strips grouping separators and currency glyphs from a numeric string.
func Number(value string) string {
	return MustApply(value, NumberChain...)
}

// Digits returns every ASCII digit in value, concatenated.
func Digits(value string) string {
	return MustApply(value, DigitsChain...)
}
