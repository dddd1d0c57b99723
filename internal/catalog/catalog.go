// =============================================================================
// Sales Analytics - Product Catalog
// =============================================================================
//
// This module supplies the external product catalog used for enrichment.
// A catalog fetch never fails the run. It has exactly two outcomes:
//   - Ok: a (possibly empty) list of products
//   - Unavailable: the source could not be used, with a reason for the log
//
// SOURCES:
//   - HTTPSource   the remote products endpoint (one bounded call, no retry)
//   - XLSXSource   an offline workbook export of the same products
//   - NoneSource   enrichment disabled
//
// =============================================================================

package catalog

import (
	"context"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// Source fetches up to limit products from a catalog.
type Source interface {
	FetchProducts(ctx context.Context, limit int) Result
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the outcome of a catalog fetch.
type Result struct {
	products  []types.Product
	reason    string
	available bool
}

// Ok wraps a successfully fetched product list.
func Ok(products []types.Product) Result {
	if products == nil {
		products = []types.Product{}
	}
	return Result{products: products, available: true}
}

// Unavailable records that the catalog could not be used.
func Unavailable(reason string) Result {
	return Result{reason: reason}
}

// Available reports whether the fetch succeeded.
func (r Result) Available() bool {
	return r.available
}

// Products returns the fetched products. It is empty when unavailable.
func (r Result) Products() []types.Product {
	if !r.available {
		return []types.Product{}
	}
	return r.products
}

// Reason explains why the catalog is unavailable. Empty on success.
func (r Result) Reason() string {
	return r.reason
}

// =============================================================================
// MAPPING
// =============================================================================

// BuildMapping indexes products by integer id. Products without an id are
// skipped, and a later duplicate id replaces an earlier one.
func BuildMapping(products []types.Product) map[int]types.ProductInfo {
	mapping := make(map[int]types.ProductInfo, len(products))
	for _, p := range products {
		if p.ID == nil {
			continue
		}
		mapping[*p.ID] = types.ProductInfo{
			Title:    p.Title,
			Category: p.Category,
			Brand:    p.Brand,
			Rating:   p.Rating,
		}
	}
	return mapping
}

// =============================================================================
// NONE SOURCE
// =============================================================================

// NoneSource is used when enrichment is switched off.
type NoneSource struct{}

// FetchProducts always reports the catalog as unavailable.
func (NoneSource) FetchProducts(context.Context, int) Result {
	return Unavailable("catalog source disabled")
}
