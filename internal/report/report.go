// =============================================================================
// Sales Analytics - Report Module
// =============================================================================
//
// This module renders the human-readable sales report and writes the
// enriched dataset. The report sections are:
//   - Overall summary
//   - Region-wise performance
//   - Top and bottom products
//   - Top customers
//   - Daily sales trend
//   - Product performance (peak day, low performers, per-region averages)
//   - API enrichment summary
//   - Data quality (rows read, rejected, filtered)
//
// FORMATTING:
//   Money and counts use English digit grouping ("1,234.50"). Product names
//   are cut to the column width so the tables stay aligned.
//
// =============================================================================

package report

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/analytics"
	"github.com/ginjaninja78/sales-analytics/internal/enrichment"
	"github.com/ginjaninja78/sales-analytics/internal/validation"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ruleWidth    = 60
	nameWidth    = 22
	topCustomers = 5
)

// Input collects everything the report shows.
type Input struct {
	Summary    *analytics.Summary
	Enrichment enrichment.Stats
	Filter     validation.FilterStats

	RowsRead         int
	Rejected         int
	RejectedByReason map[string]int
	AmountMismatches int

	SourceFile  string
	RunID       string
	GeneratedAt time.Time
	Currency    string
}

type renderer struct {
	b        strings.Builder
	p        *message.Printer
	currency string
}

func (r *renderer) line(format string, args ...interface{}) {
	r.b.WriteString(r.p.Sprintf(format, args...))
	r.b.WriteByte('\n')
}

func (r *renderer) blank() {
	r.b.WriteByte('\n')
}

func (r *renderer) section(title string) {
	r.line("%s", title)
	r.line("%s", strings.Repeat("-", ruleWidth))
}

// money formats a non-negative amount with two decimals and digit grouping.
func (r *renderer) money(d decimal.Decimal) string {
	rounded := d.Round(2)
	fixed := rounded.StringFixed(2)
	frac := fixed[len(fixed)-2:]
	return r.currency + r.p.Sprintf("%d", rounded.IntPart()) + "." + frac
}

func (r *renderer) count(n int) string {
	return r.p.Sprintf("%d", n)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}

// Render builds the report text.
func Render(in Input) string {
	r := &renderer{p: message.NewPrinter(language.English), currency: in.Currency}
	s := in.Summary
	if s == nil {
		s = analytics.Analyze(nil, analytics.DefaultOptions())
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}

	// =========================================================================
	// HEADER
	// =========================================================================

	r.line("%s", strings.Repeat("=", ruleWidth))
	r.line("       SALES ANALYTICS REPORT")
	r.line("     Generated: %s", in.GeneratedAt.Format("2006-01-02 15:04:05"))
	if in.RunID != "" {
		r.line("     Run ID: %s", in.RunID)
	}
	if in.SourceFile != "" {
		r.line("     Source: %s", in.SourceFile)
	}
	r.line("     Records Processed: %s", r.count(s.TransactionCount))
	r.line("%s", strings.Repeat("=", ruleWidth))
	r.blank()

	// =========================================================================
	// OVERALL SUMMARY
	// =========================================================================

	r.section("OVERALL SUMMARY")
	r.line("Total Revenue:        %s", r.money(s.TotalRevenue))
	r.line("Total Transactions:   %s", r.count(s.TransactionCount))
	r.line("Average Order Value:  %s", r.money(s.AverageOrderValue))
	if s.TransactionCount > 0 {
		r.line("Date Range:           %s to %s", s.FirstDate.Format("2006-01-02"), s.LastDate.Format("2006-01-02"))
	} else {
		r.line("Date Range:           N/A")
	}
	r.blank()

	// =========================================================================
	// REGIONS
	// =========================================================================

	r.section("REGION-WISE PERFORMANCE")
	r.line("%-14s%16s  %10s  %12s", "Region", "Sales", "% of Total", "Transactions")
	if len(s.Regions) == 0 {
		r.line("No region data available.")
	}
	for _, rs := range s.Regions {
		r.line("%-14s%16s  %10s  %12s",
			truncate(rs.Region, 14), r.money(rs.Revenue), rs.SharePercent.StringFixed(2)+"%", r.count(rs.Count))
	}
	r.blank()

	// =========================================================================
	// PRODUCTS
	// =========================================================================

	r.productTable(fmt.Sprintf("TOP %d PRODUCTS", s.Options.TopN), s.TopProducts)
	r.productTable(fmt.Sprintf("BOTTOM %d PRODUCTS", s.Options.TopN), s.BottomProducts)

	// =========================================================================
	// CUSTOMERS
	// =========================================================================

	r.section(fmt.Sprintf("TOP %d CUSTOMERS", topCustomers))
	r.line("%-6s%-14s%16s%12s%16s", "Rank", "Customer ID", "Total Spent", "Orders", "Avg Order")
	if len(s.Customers) == 0 {
		r.line("No customer data available.")
	}
	for i, c := range s.Customers {
		if i == topCustomers {
			break
		}
		r.line("%-6d%-14s%16s%12s%16s",
			i+1, truncate(c.CustomerID, 14), r.money(c.TotalSpent), r.count(c.Count), r.money(c.AverageOrderValue))
		r.line("      bought: %s", strings.Join(c.Products, ", "))
	}
	r.blank()

	// =========================================================================
	// DAILY TREND
	// =========================================================================

	r.section("DAILY SALES TREND")
	r.line("%-12s%16s%14s%18s", "Date", "Revenue", "Transactions", "Unique Customers")
	if len(s.Daily) == 0 {
		r.line("No daily trend data available.")
	}
	for _, d := range s.Daily {
		r.line("%-12s%16s%14s%18s",
			d.Date.Format("2006-01-02"), r.money(d.Revenue), r.count(d.Count), r.count(d.UniqueCustomers))
	}
	r.blank()

	// =========================================================================
	// PRODUCT PERFORMANCE
	// =========================================================================

	r.section("PRODUCT PERFORMANCE ANALYSIS")
	if s.PeakDay != nil {
		r.line("Best Selling Day: %s | Revenue: %s | Transactions: %s",
			s.PeakDay.Date.Format("2006-01-02"), r.money(s.PeakDay.Revenue), r.count(s.PeakDay.Count))
	} else {
		r.line("Best Selling Day: N/A")
	}

	if len(s.LowPerformers) > 0 {
		r.blank()
		r.line("Low Performing Products (Total Qty < %d)", s.Options.LowPerformerThreshold)
		r.line("%-22s%8s%16s", "Product Name", "Qty", "Revenue")
		for _, p := range s.LowPerformers {
			r.line("%-22s%8s%16s", truncate(p.Name, nameWidth), r.count(p.Quantity), r.money(p.Revenue))
		}
	} else {
		r.line("Low Performing Products: None")
	}
	r.blank()

	r.line("Average Transaction Value per Region")
	if len(s.Regions) == 0 {
		r.line("No region averages available.")
	}
	for _, rs := range regionsByAverage(s.Regions) {
		r.line("- %s: %s", rs.Region, r.money(rs.AverageValue))
	}
	r.blank()

	// =========================================================================
	// ENRICHMENT
	// =========================================================================

	e := in.Enrichment
	r.section("API ENRICHMENT SUMMARY")
	if e.Degraded {
		r.line("WARNING: product catalog unavailable; no records were enriched.")
	}
	r.line("Total records checked for enrichment: %s", r.count(e.Total))
	r.line("Successful enrichments:              %s", r.count(e.Matched))
	r.line("  exact matches:                     %s", r.count(e.ByExact))
	r.line("  contains matches:                  %s", r.count(e.ByContains))
	r.line("Success rate:                        %.2f%%", e.MatchRate())
	r.blank()
	r.line("Products that couldn't be enriched:")
	if len(e.UnmatchedProducts) == 0 {
		r.line("- None")
	}
	for _, p := range e.UnmatchedProducts {
		r.line("- %s", p)
	}
	r.blank()

	// =========================================================================
	// DATA QUALITY
	// =========================================================================

	r.section("DATA QUALITY")
	r.line("Rows read:              %s", r.count(in.RowsRead))
	r.line("Rows rejected:          %s", r.count(in.Rejected))
	reasons := make([]string, 0, len(in.RejectedByReason))
	for reason := range in.RejectedByReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		r.line("  %-22s%s", reason+":", r.count(in.RejectedByReason[reason]))
	}
	r.line("Amount mismatches:      %s", r.count(in.AmountMismatches))
	r.line("Removed by region:      %s", r.count(in.Filter.RemovedByRegion))
	r.line("Removed by amount:      %s", r.count(in.Filter.RemovedByAmount))

	return r.b.String()
}

func (r *renderer) productTable(title string, products []analytics.ProductStats) {
	r.section(title)
	r.line("%-6s%-22s%14s%16s", "Rank", "Product Name", "Quantity Sold", "Revenue")
	if len(products) == 0 {
		r.line("No product data available.")
	}
	for i, p := range products {
		r.line("%-6d%-22s%14s%16s", i+1, truncate(p.Name, nameWidth), r.count(p.Quantity), r.money(p.Revenue))
	}
	r.blank()
}

// regionsByAverage orders regions by average transaction value, highest first.
func regionsByAverage(regions []analytics.RegionStats) []analytics.RegionStats {
	out := make([]analytics.RegionStats, len(regions))
	copy(out, regions)
	sort.SliceStable(out, func(a, b int) bool {
		if !out[a].AverageValue.Equal(out[b].AverageValue) {
			return out[a].AverageValue.GreaterThan(out[b].AverageValue)
		}
		return out[a].Region < out[b].Region
	})
	return out
}

// WriteReport renders the report and writes it to path.
func WriteReport(path string, in Input) error {
	if err := os.WriteFile(path, []byte(Render(in)), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
