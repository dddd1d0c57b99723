package analytics

import (
	"testing"

	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(date, product, customer, region string, qty int, price float64) types.ValidatedTransaction {
	return types.NewValidatedTransaction(types.Transaction{
		TransactionID: "T1",
		Date:          date,
		ProductID:     "P1",
		ProductName:   product,
		Quantity:      qty,
		UnitPrice:     price,
		CustomerID:    customer,
		Region:        region,
	})
}

func sample() []types.ValidatedTransaction {
	return []types.ValidatedTransaction{
		rec("2024-01-02", "Widget", "C1", "North", 2, 10), // 20
		rec("2024-01-01", "Gadget", "C2", "South", 1, 40), // 40
		rec("2024-01-02", "Gizmo", "C1", "East", 3, 10),   // 30
		rec("2024-01-03", "Widget", "C3", "South", 5, 5),  // 25
		rec("2024-01-02", "Gadget", "C2", "North", 1, 30), // 30
		rec("2024-01-03", "Doohickey", "C4", "", 20, 1.5), // 30
	}
}

func TestTotalRevenue(t *testing.T) {
	assert.InDelta(t, 175.0, TotalRevenue(sample()), 1e-9)
	assert.Equal(t, 0.0, TotalRevenue(nil))
}

func TestRegionSales(t *testing.T) {
	records := sample()
	stats := RegionSales(records)

	require.Len(t, stats, 4)
	assert.Equal(t, "South", stats[0].Region)
	assert.InDelta(t, 65.0, stats[0].TotalSales, 1e-9)
	assert.Equal(t, 2, stats[0].TransactionCount)

	assert.Equal(t, "North", stats[1].Region)
	// East and Unknown tie at 30: encounter order is kept.
	assert.Equal(t, "East", stats[2].Region)
	assert.Equal(t, UnknownKey, stats[3].Region)

	sum := 0.0
	pct := 0.0
	for i, s := range stats {
		sum += s.TotalSales
		pct += s.Percentage
		if i > 0 {
			assert.GreaterOrEqual(t, stats[i-1].TotalSales, s.TotalSales)
		}
	}
	assert.InDelta(t, TotalRevenue(records), sum, 1e-9)
	assert.InDelta(t, 100.0, pct, 0.05)
}

func TestRegionSales_ZeroRevenue(t *testing.T) {
	stats := RegionSales(nil)
	assert.Empty(t, stats)
}

func TestTopProducts(t *testing.T) {
	records := sample()

	top := TopProducts(records, 3)
	require.Len(t, top, 3)
	assert.Equal(t, ProductStat{Name: "Doohickey", Quantity: 20, Revenue: 30}, top[0])
	assert.Equal(t, "Widget", top[1].Name)
	assert.Equal(t, 7, top[1].Quantity)
	assert.Equal(t, "Gizmo", top[2].Name)

	// Highest revenue, lowest quantity.
	all := TopProducts(records, 10)
	require.Len(t, all, 4)
	assert.Equal(t, "Gadget", all[3].Name)

	assert.Empty(t, TopProducts(records, 0))
	assert.Empty(t, TopProducts(records, -1))
}

func TestTopProducts_RevenueBreaksTies(t *testing.T) {
	records := []types.ValidatedTransaction{
		rec("2024-01-01", "Cheap", "C1", "N", 2, 1),
		rec("2024-01-01", "Pricey", "C1", "N", 2, 9),
	}
	top := TopProducts(records, 5)
	require.Len(t, top, 2)
	assert.Equal(t, "Pricey", top[0].Name)
}

func TestCustomerAnalysis(t *testing.T) {
	stats := CustomerAnalysis(sample())

	require.Len(t, stats, 4)
	assert.Equal(t, "C2", stats[0].CustomerID)
	assert.InDelta(t, 70.0, stats[0].TotalSpent, 1e-9)
	assert.Equal(t, 2, stats[0].PurchaseCount)
	assert.Equal(t, 35.0, stats[0].AvgOrderValue)
	assert.Equal(t, []string{"Gadget"}, stats[0].ProductsBought)

	assert.Equal(t, "C1", stats[1].CustomerID)
	assert.Equal(t, []string{"Gizmo", "Widget"}, stats[1].ProductsBought)

	// C3 (25) < C4 (30)
	assert.Equal(t, "C4", stats[2].CustomerID)
	assert.Equal(t, "C3", stats[3].CustomerID)
}

func TestCustomerAnalysis_RoundsAverage(t *testing.T) {
	records := []types.ValidatedTransaction{
		rec("2024-01-01", "A", "C1", "N", 1, 10),
		rec("2024-01-01", "A", "C1", "N", 1, 10),
		rec("2024-01-01", "A", "C1", "N", 1, 0.01),
	}
	stats := CustomerAnalysis(records)
	require.Len(t, stats, 1)
	assert.Equal(t, 6.67, stats[0].AvgOrderValue)
}

func TestDailyTrend(t *testing.T) {
	records := append(sample(), rec("  ", "Ghost", "C9", "N", 1, 1))
	trend := DailyTrend(records)

	require.Len(t, trend, 3)
	assert.Equal(t, DailyStat{Date: "2024-01-01", Revenue: 40, TransactionCount: 1, UniqueCustomers: 1}, trend[0])
	assert.Equal(t, DailyStat{Date: "2024-01-02", Revenue: 80, TransactionCount: 3, UniqueCustomers: 2}, trend[1])
	assert.Equal(t, DailyStat{Date: "2024-01-03", Revenue: 55, TransactionCount: 2, UniqueCustomers: 2}, trend[2])
}

func TestPeakDay(t *testing.T) {
	records := []types.ValidatedTransaction{
		rec("2024-01-02", "A", "C1", "N", 1, 50),
		rec("2024-01-02", "B", "C2", "N", 1, 30),
		rec("2024-01-01", "C", "C3", "N", 1, 40),
	}

	peak, ok := PeakDay(records)
	require.True(t, ok)
	assert.Equal(t, Peak{Date: "2024-01-02", Revenue: 80, TransactionCount: 2}, peak)
}

func TestPeakDay_EarliestWinsTie(t *testing.T) {
	records := []types.ValidatedTransaction{
		rec("2024-01-05", "A", "C1", "N", 1, 50),
		rec("2024-01-03", "B", "C2", "N", 1, 50),
	}

	peak, ok := PeakDay(records)
	require.True(t, ok)
	assert.Equal(t, "2024-01-03", peak.Date)
}

func TestPeakDay_NoDates(t *testing.T) {
	_, ok := PeakDay(nil)
	assert.False(t, ok)

	_, ok = PeakDay([]types.ValidatedTransaction{rec("", "A", "C1", "N", 1, 1)})
	assert.False(t, ok)
}

func TestLowPerformers(t *testing.T) {
	records := sample()

	low := LowPerformers(records, 10)
	require.Len(t, low, 3)
	assert.Equal(t, "Gadget", low[0].Name) // qty 2
	assert.Equal(t, "Gizmo", low[1].Name)  // qty 3
	assert.Equal(t, "Widget", low[2].Name) // qty 7
	for _, p := range low {
		assert.Less(t, p.Quantity, 10)
	}

	// Raising the threshold only grows the set.
	assert.Len(t, LowPerformers(records, 3), 1)
	assert.Len(t, LowPerformers(records, 8), 3)
	assert.Len(t, LowPerformers(records, 21), 4)
	assert.Empty(t, LowPerformers(records, 0))
}

func TestLowPerformers_TieBreaks(t *testing.T) {
	records := []types.ValidatedTransaction{
		rec("2024-01-01", "Zeta", "C1", "N", 1, 5),
		rec("2024-01-01", "Alpha", "C1", "N", 1, 5),
		rec("2024-01-01", "Beta", "C1", "N", 1, 2),
	}
	low := LowPerformers(records, 10)
	require.Len(t, low, 3)
	assert.Equal(t, []string{"Beta", "Alpha", "Zeta"}, []string{low[0].Name, low[1].Name, low[2].Name})
}

func TestSingleRecordExample(t *testing.T) {
	records := []types.ValidatedTransaction{rec("2024-01-01", "Widget", "C1", "North", 2, 10)}

	low := LowPerformers(records, 10)
	require.Len(t, low, 1)
	assert.Equal(t, 20.0, low[0].Revenue)

	regions := RegionSales(records)
	require.Len(t, regions, 1)
	assert.Equal(t, 20.0, regions[0].TotalSales)
	assert.Equal(t, 100.0, regions[0].Percentage)
}

func TestAverageByRegion(t *testing.T) {
	avgs := AverageByRegion([]RegionStat{
		{Region: "North", TotalSales: 50, TransactionCount: 2},
		{Region: "Empty", TotalSales: 0, TransactionCount: 0},
	})
	assert.Equal(t, []RegionAverage{{Region: "North", Average: 25}, {Region: "Empty", Average: 0}}, avgs)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 6.67, Round2(6.67))
	assert.Equal(t, 2.67, Round2(2.675)) // 2.675 is stored just below the half
	assert.Equal(t, 0.12, Round2(0.125))
	assert.Equal(t, 33.33, Round2(100.0/3))
	assert.Equal(t, 0.0, Round2(0))
}
