// =============================================================================
// Sales Analytics - Analytics Engine
// =============================================================================
//
// This module computes descriptive statistics over validated, filtered sales
// transactions:
//   - Overall totals (revenue, count, average order value, date range)
//   - Region breakdown with revenue share
//   - Product ranking (top and bottom by revenue) and low performers
//   - Customer insights
//   - Daily trend and peak day
//
// ORDERING:
//   Every slice in the summary has a total order so that two runs over the
//   same records produce identical output. Ties are always broken by name
//   (or id, or date) ascending.
//
// =============================================================================

package analytics

import (
	"sort"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/shopspring/decimal"
)

// Default option values.
const (
	DefaultTopN                  = 5
	DefaultLowPerformerThreshold = 10
)

var hundred = decimal.NewFromInt(100)

// Options controls ranking sizes and thresholds.
type Options struct {
	// TopN is the size of the top and bottom product lists. Default: 5.
	TopN int

	// LowPerformerThreshold flags products whose total quantity is below it.
	// Default: 10.
	LowPerformerThreshold int
}

// DefaultOptions returns the default analytics options.
func DefaultOptions() Options {
	return Options{TopN: DefaultTopN, LowPerformerThreshold: DefaultLowPerformerThreshold}
}

// =============================================================================
// SUMMARY STRUCTURES
// =============================================================================

// RegionStats is the aggregate for one region.
type RegionStats struct {
	Region       string
	Revenue      decimal.Decimal
	Count        int
	SharePercent decimal.Decimal
	AverageValue decimal.Decimal
}

// ProductStats is the aggregate for one product name.
type ProductStats struct {
	Name     string
	Quantity int
	Revenue  decimal.Decimal
}

// CustomerStats is the aggregate for one customer.
type CustomerStats struct {
	CustomerID        string
	TotalSpent        decimal.Decimal
	Count             int
	AverageOrderValue decimal.Decimal

	// Products lists the distinct product names bought, sorted.
	Products []string
}

// DailyStats is the aggregate for one calendar date.
type DailyStats struct {
	Date            time.Time
	Revenue         decimal.Decimal
	Count           int
	UniqueCustomers int
}

// Summary is the full analytics result. It is not modified after Analyze
// returns.
type Summary struct {
	TotalRevenue      decimal.Decimal
	TransactionCount  int
	AverageOrderValue decimal.Decimal

	// FirstDate and LastDate are zero when there are no records.
	FirstDate time.Time
	LastDate  time.Time

	Regions        []RegionStats
	TopProducts    []ProductStats
	BottomProducts []ProductStats
	Customers      []CustomerStats
	Daily          []DailyStats

	// PeakDay is the highest-revenue day, nil when there are no records.
	PeakDay *DailyStats

	LowPerformers []ProductStats

	// Options records the options the summary was computed with.
	Options Options
}

// =============================================================================
// MAIN ENTRY POINT
// =============================================================================

// Analyze computes the summary for records.
//
// PARAMETERS:
//   - records: Validated transactions. The slice is only read.
//   - opts: Ranking options. Non-positive values fall back to the defaults,
//     except a zero LowPerformerThreshold which disables low performers.
//
// RETURNS:
//   - A summary. Empty input yields zero totals and empty slices.
func Analyze(records []types.SalesTransaction, opts Options) *Summary {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.LowPerformerThreshold < 0 {
		opts.LowPerformerThreshold = DefaultLowPerformerThreshold
	}

	s := &Summary{
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		Regions:           []RegionStats{},
		TopProducts:       []ProductStats{},
		BottomProducts:    []ProductStats{},
		Customers:         []CustomerStats{},
		Daily:             []DailyStats{},
		LowPerformers:     []ProductStats{},
		Options:           opts,
	}

	if len(records) == 0 {
		return s
	}

	for _, txn := range records {
		s.TotalRevenue = s.TotalRevenue.Add(txn.Amount)
		if s.FirstDate.IsZero() || txn.Date.Before(s.FirstDate) {
			s.FirstDate = txn.Date
		}
		if txn.Date.After(s.LastDate) {
			s.LastDate = txn.Date
		}
	}
	s.TransactionCount = len(records)
	s.AverageOrderValue = average(s.TotalRevenue, s.TransactionCount)

	s.Regions = regionBreakdown(records, s.TotalRevenue)

	products := productTotals(records)
	s.TopProducts = rankProducts(products, opts.TopN, true)
	s.BottomProducts = rankProducts(products, opts.TopN, false)
	s.LowPerformers = lowPerformers(products, opts.LowPerformerThreshold)

	s.Customers = customerInsights(records)

	s.Daily = dailyTrend(records)
	s.PeakDay = peakDay(s.Daily)

	return s
}

// =============================================================================
// REGIONS
// =============================================================================

func regionBreakdown(records []types.SalesTransaction, total decimal.Decimal) []RegionStats {
	index := make(map[string]int)
	var regions []RegionStats

	for _, txn := range records {
		i, ok := index[txn.Region]
		if !ok {
			i = len(regions)
			index[txn.Region] = i
			regions = append(regions, RegionStats{Region: txn.Region, Revenue: decimal.Zero})
		}
		regions[i].Revenue = regions[i].Revenue.Add(txn.Amount)
		regions[i].Count++
	}

	for i := range regions {
		regions[i].AverageValue = average(regions[i].Revenue, regions[i].Count)
		if total.IsZero() {
			regions[i].SharePercent = decimal.Zero
		} else {
			regions[i].SharePercent = regions[i].Revenue.Mul(hundred).Div(total)
		}
	}

	sort.SliceStable(regions, func(a, b int) bool {
		if !regions[a].Revenue.Equal(regions[b].Revenue) {
			return regions[a].Revenue.GreaterThan(regions[b].Revenue)
		}
		return regions[a].Region < regions[b].Region
	})

	return regions
}

// =============================================================================
// PRODUCTS
// =============================================================================

// productTotals groups records by product name, sorted by name.
func productTotals(records []types.SalesTransaction) []ProductStats {
	index := make(map[string]int)
	var products []ProductStats

	for _, txn := range records {
		i, ok := index[txn.ProductName]
		if !ok {
			i = len(products)
			index[txn.ProductName] = i
			products = append(products, ProductStats{Name: txn.ProductName, Revenue: decimal.Zero})
		}
		products[i].Quantity += txn.Quantity
		products[i].Revenue = products[i].Revenue.Add(txn.Amount)
	}

	sort.Slice(products, func(a, b int) bool { return products[a].Name < products[b].Name })
	return products
}

// rankProducts returns the first n products by revenue, descending when desc
// is set. Ties are broken by name ascending in both directions.
func rankProducts(products []ProductStats, n int, desc bool) []ProductStats {
	ranked := make([]ProductStats, len(products))
	copy(ranked, products)

	sort.SliceStable(ranked, func(a, b int) bool {
		cmp := ranked[a].Revenue.Cmp(ranked[b].Revenue)
		if cmp == 0 {
			return ranked[a].Name < ranked[b].Name
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func lowPerformers(products []ProductStats, threshold int) []ProductStats {
	low := []ProductStats{}
	for _, p := range products {
		if p.Quantity < threshold {
			low = append(low, p)
		}
	}

	sort.SliceStable(low, func(a, b int) bool {
		if low[a].Quantity != low[b].Quantity {
			return low[a].Quantity < low[b].Quantity
		}
		return low[a].Name < low[b].Name
	})
	return low
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func customerInsights(records []types.SalesTransaction) []CustomerStats {
	index := make(map[string]int)
	var customers []CustomerStats
	bought := make(map[string]map[string]bool)

	for _, txn := range records {
		i, ok := index[txn.CustomerID]
		if !ok {
			i = len(customers)
			index[txn.CustomerID] = i
			customers = append(customers, CustomerStats{CustomerID: txn.CustomerID, TotalSpent: decimal.Zero})
			bought[txn.CustomerID] = make(map[string]bool)
		}
		customers[i].TotalSpent = customers[i].TotalSpent.Add(txn.Amount)
		customers[i].Count++
		bought[txn.CustomerID][txn.ProductName] = true
	}

	for i := range customers {
		c := &customers[i]
		c.AverageOrderValue = average(c.TotalSpent, c.Count)
		c.Products = make([]string, 0, len(bought[c.CustomerID]))
		for name := range bought[c.CustomerID] {
			c.Products = append(c.Products, name)
		}
		sort.Strings(c.Products)
	}

	sort.SliceStable(customers, func(a, b int) bool {
		if !customers[a].TotalSpent.Equal(customers[b].TotalSpent) {
			return customers[a].TotalSpent.GreaterThan(customers[b].TotalSpent)
		}
		return customers[a].CustomerID < customers[b].CustomerID
	})

	return customers
}

// =============================================================================
// DAILY TREND
// =============================================================================

func dailyTrend(records []types.SalesTransaction) []DailyStats {
	index := make(map[string]int)
	var days []DailyStats
	customers := make(map[string]map[string]bool)

	for _, txn := range records {
		key := txn.Date.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			y, m, d := txn.Date.Date()
			days = append(days, DailyStats{
				Date:    time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
				Revenue: decimal.Zero,
			})
			customers[key] = make(map[string]bool)
		}
		days[i].Revenue = days[i].Revenue.Add(txn.Amount)
		days[i].Count++
		customers[key][txn.CustomerID] = true
	}

	for i := range days {
		days[i].UniqueCustomers = len(customers[days[i].Date.Format("2006-01-02")])
	}

	sort.Slice(days, func(a, b int) bool { return days[a].Date.Before(days[b].Date) })
	return days
}

// peakDay expects days in chronological order, so the first maximum is the
// earliest.
func peakDay(days []DailyStats) *DailyStats {
	if len(days) == 0 {
		return nil
	}
	peak := days[0]
	for _, d := range days[1:] {
		if d.Revenue.GreaterThan(peak.Revenue) {
			peak = d
		}
	}
	return &peak
}

func average(total decimal.Decimal, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(count)))
}
