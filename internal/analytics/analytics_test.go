package analytics

import (
	"testing"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sale(id, date, customer, product, region string, qty int, price string) types.SalesTransaction {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	p := decimal.RequireFromString(price)
	return types.SalesTransaction{
		TransactionID: id,
		Date:          d,
		CustomerID:    customer,
		ProductName:   product,
		Region:        region,
		Quantity:      qty,
		UnitPrice:     p,
		Amount:        p.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func names(products []ProductStats) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

// fixture revenue: Widget 230 (qty 23), Gadget 50 (qty 1), Gizmo 15 (qty 5).
func fixture() []types.SalesTransaction {
	return []types.SalesTransaction{
		sale("T1", "2024-01-02", "C1", "Widget", "North", 2, "10.00"),
		sale("T2", "2024-01-01", "C2", "Gadget", "South", 1, "50.00"),
		sale("T3", "2024-01-02", "C1", "Gizmo", "North", 5, "3.00"),
		sale("T4", "2024-01-03", "C3", "Widget", "East", 20, "10.00"),
		sale("T5", "2024-01-01", "C2", "Widget", "South", 1, "10.00"),
	}
}

func TestAnalyze_Totals(t *testing.T) {
	s := Analyze(fixture(), DefaultOptions())

	assert.Equal(t, "295", s.TotalRevenue.String())
	assert.Equal(t, 5, s.TransactionCount)
	assert.Equal(t, "59", s.AverageOrderValue.String())
	assert.Equal(t, "2024-01-01", s.FirstDate.Format("2006-01-02"))
	assert.Equal(t, "2024-01-03", s.LastDate.Format("2006-01-02"))
}

func TestAnalyze_Regions(t *testing.T) {
	s := Analyze(fixture(), DefaultOptions())

	sum := decimal.Zero
	seen := make(map[string]bool)
	for _, r := range s.Regions {
		assert.False(t, seen[r.Region], "region %s listed twice", r.Region)
		seen[r.Region] = true
		sum = sum.Add(r.Revenue)
	}
	assert.True(t, sum.Equal(s.TotalRevenue), "region sum %s != total %s", sum, s.TotalRevenue)

	require.Len(t, s.Regions, 3)
	assert.Equal(t, "East", s.Regions[0].Region)
	assert.Equal(t, "200", s.Regions[0].Revenue.String())
	assert.Equal(t, "67.80", s.Regions[0].SharePercent.StringFixed(2))
	assert.Equal(t, "South", s.Regions[1].Region)
	assert.Equal(t, 2, s.Regions[1].Count)
	assert.Equal(t, "30", s.Regions[1].AverageValue.String())
	assert.Equal(t, "North", s.Regions[2].Region)
	assert.Equal(t, "17.5", s.Regions[2].AverageValue.String())
}

func TestAnalyze_RegionTieBrokenByName(t *testing.T) {
	s := Analyze([]types.SalesTransaction{
		sale("T1", "2024-01-01", "C1", "A", "West", 1, "5"),
		sale("T2", "2024-01-01", "C1", "A", "East", 1, "5"),
	}, DefaultOptions())

	require.Len(t, s.Regions, 2)
	assert.Equal(t, "East", s.Regions[0].Region)
	assert.Equal(t, "West", s.Regions[1].Region)
	assert.Equal(t, "50", s.Regions[0].SharePercent.String())
}

func TestAnalyze_ProductRanking(t *testing.T) {
	s := Analyze(fixture(), DefaultOptions())

	assert.Equal(t, []string{"Widget", "Gadget", "Gizmo"}, names(s.TopProducts))
	assert.Equal(t, []string{"Gizmo", "Gadget", "Widget"}, names(s.BottomProducts))
	assert.Equal(t, 23, s.TopProducts[0].Quantity)
	assert.Equal(t, "230", s.TopProducts[0].Revenue.String())

	s = Analyze(fixture(), Options{TopN: 2, LowPerformerThreshold: 10})
	assert.Equal(t, []string{"Widget", "Gadget"}, names(s.TopProducts))
	assert.Equal(t, []string{"Gizmo", "Gadget"}, names(s.BottomProducts))
}

func TestAnalyze_PenBeatsPencil(t *testing.T) {
	s := Analyze([]types.SalesTransaction{
		sale("T1", "2024-01-01", "C1", "Pen", "North", 10, "2.00"),
		sale("T2", "2024-01-01", "C2", "Pencil", "North", 10, "1.00"),
	}, Options{TopN: 1})

	assert.Equal(t, []string{"Pen"}, names(s.TopProducts))
	assert.Equal(t, []string{"Pencil"}, names(s.BottomProducts))
}

func TestAnalyze_ProductTiesBrokenByName(t *testing.T) {
	s := Analyze([]types.SalesTransaction{
		sale("T1", "2024-01-01", "C1", "Zeta", "North", 1, "10"),
		sale("T2", "2024-01-01", "C1", "Alpha", "North", 2, "5"),
		sale("T3", "2024-01-01", "C1", "Mid", "North", 1, "1"),
	}, Options{TopN: 2})

	assert.Equal(t, []string{"Alpha", "Zeta"}, names(s.TopProducts))
	assert.Equal(t, []string{"Mid", "Alpha"}, names(s.BottomProducts))
}

func TestAnalyze_Customers(t *testing.T) {
	s := Analyze(fixture(), DefaultOptions())

	require.Len(t, s.Customers, 3)
	assert.Equal(t, "C3", s.Customers[0].CustomerID)
	assert.Equal(t, "C2", s.Customers[1].CustomerID)
	assert.Equal(t, "C1", s.Customers[2].CustomerID)

	c1 := s.Customers[2]
	assert.Equal(t, "35", c1.TotalSpent.String())
	assert.Equal(t, 2, c1.Count)
	assert.Equal(t, "17.5", c1.AverageOrderValue.String())
	assert.Equal(t, []string{"Gizmo", "Widget"}, c1.Products)
}

func TestAnalyze_DailyTrendAndPeak(t *testing.T) {
	s := Analyze(fixture(), DefaultOptions())

	require.Len(t, s.Daily, 3)
	for i := 1; i < len(s.Daily); i++ {
		assert.True(t, s.Daily[i-1].Date.Before(s.Daily[i].Date), "daily trend must be chronological")
	}

	first := s.Daily[0]
	assert.Equal(t, "2024-01-01", first.Date.Format("2006-01-02"))
	assert.Equal(t, "60", first.Revenue.String())
	assert.Equal(t, 2, first.Count)
	assert.Equal(t, 1, first.UniqueCustomers)

	require.NotNil(t, s.PeakDay)
	assert.Equal(t, "2024-01-03", s.PeakDay.Date.Format("2006-01-02"))
	assert.Equal(t, "200", s.PeakDay.Revenue.String())
}

func TestAnalyze_PeakDayTiePicksEarliest(t *testing.T) {
	s := Analyze([]types.SalesTransaction{
		sale("T1", "2024-03-05", "C1", "A", "North", 1, "10"),
		sale("T2", "2024-03-01", "C2", "A", "North", 1, "10"),
	}, DefaultOptions())

	require.NotNil(t, s.PeakDay)
	assert.Equal(t, "2024-03-01", s.PeakDay.Date.Format("2006-01-02"))
}

func TestAnalyze_LowPerformers(t *testing.T) {
	s := Analyze(fixture(), DefaultOptions())
	assert.Equal(t, []string{"Gadget", "Gizmo"}, names(s.LowPerformers))

	s = Analyze(fixture(), Options{LowPerformerThreshold: 0})
	assert.Empty(t, s.LowPerformers)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	s := Analyze(nil, DefaultOptions())

	assert.True(t, s.TotalRevenue.IsZero())
	assert.True(t, s.AverageOrderValue.IsZero())
	assert.Zero(t, s.TransactionCount)
	assert.True(t, s.FirstDate.IsZero())
	assert.Empty(t, s.Regions)
	assert.Empty(t, s.TopProducts)
	assert.Empty(t, s.BottomProducts)
	assert.Empty(t, s.Customers)
	assert.Empty(t, s.Daily)
	assert.Empty(t, s.LowPerformers)
	assert.Nil(t, s.PeakDay)
}

func TestAnalyze_Deterministic(t *testing.T) {
	a := Analyze(fixture(), DefaultOptions())
	b := Analyze(fixture(), DefaultOptions())
	assert.Equal(t, a, b)
}

func TestAnalyze_DoesNotModifyInput(t *testing.T) {
	records := fixture()
	Analyze(records, DefaultOptions())
	assert.Equal(t, fixture(), records)
}
