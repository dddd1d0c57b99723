// =============================================================================
// Sales Analytics - Aggregation Engine
// =============================================================================
//
// This module computes the analytic views over a validated record set:
//   - TotalRevenue      sum of every record amount
//   - RegionSales       revenue, count and share per region
//   - TopProducts       best sellers by quantity, then revenue
//   - CustomerAnalysis  spend, order count and basket per customer
//   - DailyTrend        revenue, count and distinct customers per date
//   - PeakDay           the date with the highest revenue
//   - LowPerformers     products whose total quantity is below a threshold
//
// ORDERING:
//   Groups are accumulated in first-seen order and then sorted with a stable
//   sort by the documented key, so equal keys keep their encounter order.
//   Map iteration order never reaches the output.
//
// None of these functions mutates its input.
//
// =============================================================================

package analytics

import (
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/types"
)

// UnknownKey replaces a blank grouping key.
const UnknownKey = "Unknown"

// =============================================================================
// RESULT TYPES
// =============================================================================

// RegionStat is one row of the regional split.
type RegionStat struct {
	Region           string
	TotalSales       float64
	TransactionCount int

	// Percentage of the grand total, rounded to 2 decimals.
	Percentage float64
}

// ProductStat aggregates one product name.
type ProductStat struct {
	Name     string
	Quantity int
	Revenue  float64
}

// CustomerStat aggregates one customer.
type CustomerStat struct {
	CustomerID     string
	TotalSpent     float64
	PurchaseCount  int
	AvgOrderValue  float64
	ProductsBought []string
}

// DailyStat aggregates one date.
type DailyStat struct {
	Date             string
	Revenue          float64
	TransactionCount int
	UniqueCustomers  int
}

// Peak is the best selling day.
type Peak struct {
	Date             string
	Revenue          float64
	TransactionCount int
}

// =============================================================================
// AGGREGATIONS
// =============================================================================

// TotalRevenue sums the amount of every record.
func TotalRevenue(records []types.ValidatedTransaction) float64 {
	total := 0.0
	for _, r := range records {
		total += r.Amount
	}
	return total
}

// RegionSales groups records by region and sorts the groups by total sales,
// highest first.
func RegionSales(records []types.ValidatedTransaction) []RegionStat {
	groups := newOrderedGroups[RegionStat]()
	for _, r := range records {
		key := keyOrUnknown(r.Region)
		g := groups.get(key, func() RegionStat { return RegionStat{Region: key} })
		g.TotalSales += r.Amount
		g.TransactionCount++
	}

	stats := groups.values()

	grand := 0.0
	for _, s := range stats {
		grand += s.TotalSales
	}
	for i := range stats {
		if grand > 0 {
			stats[i].Percentage = Round2(stats[i].TotalSales / grand * 100)
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalSales > stats[j].TotalSales
	})
	return stats
}

// TopProducts returns the n best selling products by quantity, with revenue
// breaking ties. n <= 0 yields an empty slice.
func TopProducts(records []types.ValidatedTransaction, n int) []ProductStat {
	if n <= 0 {
		return []ProductStat{}
	}

	stats := productTotals(records)
	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].Quantity != stats[j].Quantity {
			return stats[i].Quantity > stats[j].Quantity
		}
		return stats[i].Revenue > stats[j].Revenue
	})

	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}

// CustomerAnalysis groups records by customer and sorts by total spent,
// highest first.
func CustomerAnalysis(records []types.ValidatedTransaction) []CustomerStat {
	type acc struct {
		stat     CustomerStat
		products map[string]struct{}
	}

	groups := newOrderedGroups[acc]()
	for _, r := range records {
		key := keyOrUnknown(r.CustomerID)
		g := groups.get(key, func() acc {
			return acc{stat: CustomerStat{CustomerID: key}, products: map[string]struct{}{}}
		})
		g.stat.TotalSpent += r.Amount
		g.stat.PurchaseCount++
		g.products[keyOrUnknown(r.ProductName)] = struct{}{}
	}

	accs := groups.values()
	stats := make([]CustomerStat, 0, len(accs))
	for _, a := range accs {
		s := a.stat
		if s.PurchaseCount > 0 {
			s.AvgOrderValue = Round2(s.TotalSpent / float64(s.PurchaseCount))
		}
		s.ProductsBought = make([]string, 0, len(a.products))
		for name := range a.products {
			s.ProductsBought = append(s.ProductsBought, name)
		}
		sort.Strings(s.ProductsBought)
		stats = append(stats, s)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalSpent > stats[j].TotalSpent
	})
	return stats
}

// DailyTrend groups records by date, skipping blank dates, in ascending date
// order. Revenue is rounded to 2 decimals.
func DailyTrend(records []types.ValidatedTransaction) []DailyStat {
	type acc struct {
		stat      DailyStat
		customers map[string]struct{}
	}

	groups := newOrderedGroups[acc]()
	for _, r := range records {
		date := strings.TrimSpace(r.Date)
		if date == "" {
			continue
		}
		g := groups.get(date, func() acc {
			return acc{stat: DailyStat{Date: date}, customers: map[string]struct{}{}}
		})
		g.stat.Revenue += r.Amount
		g.stat.TransactionCount++
		if cust := strings.TrimSpace(r.CustomerID); cust != "" {
			g.customers[cust] = struct{}{}
		}
	}

	accs := groups.values()
	stats := make([]DailyStat, 0, len(accs))
	for _, a := range accs {
		s := a.stat
		s.Revenue = Round2(s.Revenue)
		s.UniqueCustomers = len(a.customers)
		stats = append(stats, s)
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Date < stats[j].Date
	})
	return stats
}

// PeakDay returns the date with the highest daily revenue. When several dates
// share the maximum, the earliest wins. ok is false when no record has a date.
func PeakDay(records []types.ValidatedTransaction) (peak Peak, ok bool) {
	for i, d := range DailyTrend(records) {
		if i == 0 || d.Revenue > peak.Revenue {
			peak = Peak{Date: d.Date, Revenue: d.Revenue, TransactionCount: d.TransactionCount}
			ok = true
		}
	}
	return peak, ok
}

// LowPerformers returns products whose total quantity is strictly below
// threshold, ordered by quantity, then revenue, then name, ascending.
func LowPerformers(records []types.ValidatedTransaction, threshold int) []ProductStat {
	all := productTotals(records)
	stats := make([]ProductStat, 0, len(all))
	for _, s := range all {
		if s.Quantity < threshold {
			stats = append(stats, s)
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		a, b := stats[i], stats[j]
		if a.Quantity != b.Quantity {
			return a.Quantity < b.Quantity
		}
		if a.Revenue != b.Revenue {
			return a.Revenue < b.Revenue
		}
		return a.Name < b.Name
	})
	return stats
}

// RegionAverage is the mean transaction value of one region.
type RegionAverage struct {
	Region  string
	Average float64
}

// AverageByRegion returns total / count per region, in the given order.
// A region with no records averages 0.
func AverageByRegion(regions []RegionStat) []RegionAverage {
	out := make([]RegionAverage, 0, len(regions))
	for _, r := range regions {
		avg := 0.0
		if r.TransactionCount > 0 {
			avg = r.TotalSales / float64(r.TransactionCount)
		}
		out = append(out, RegionAverage{Region: r.Region, Average: avg})
	}
	return out
}

// =============================================================================
// HELPERS
// =============================================================================

// Round2 rounds to 2 decimal places, half to even on the exact binary value.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return r
}

func productTotals(records []types.ValidatedTransaction) []ProductStat {
	groups := newOrderedGroups[ProductStat]()
	for _, r := range records {
		key := keyOrUnknown(r.ProductName)
		g := groups.get(key, func() ProductStat { return ProductStat{Name: key} })
		g.Quantity += r.Quantity
		g.Revenue += r.Amount
	}
	return groups.values()
}

func keyOrUnknown(s string) string {
	if s = strings.TrimSpace(s); s == "" {
		return UnknownKey
	}
	return s
}

// orderedGroups accumulates values by key, remembering first-seen order.
type orderedGroups[V any] struct {
	index map[string]int
	items []*V
}

func newOrderedGroups[V any]() *orderedGroups[V] {
	return &orderedGroups[V]{index: make(map[string]int)}
}

// get returns the accumulator for key, creating it with init on first use.
func (g *orderedGroups[V]) get(key string, init func() V) *V {
	if i, ok := g.index[key]; ok {
		return g.items[i]
	}
	v := init()
	g.index[key] = len(g.items)
	g.items = append(g.items, &v)
	return &v
}

// values copies the accumulators out in first-seen order.
func (g *orderedGroups[V]) values() []V {
	out := make([]V, len(g.items))
	for i, v := range g.items {
		out[i] = *v
	}
	return out
}
