package validation

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/shopspring/decimal"
)

// =============================================================================
// FILTERS
// =============================================================================

// Filter is the optional region/amount predicate applied after validation.
// The zero value keeps every record.
type Filter struct {
	// Regions is the allowed region set, compared trimmed and case-insensitively.
	// Empty means any region.
	Regions []string

	// MinAmount and MaxAmount are inclusive bounds; nil means unbounded.
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// IsZero reports whether the filter keeps everything.
func (f Filter) IsZero() bool {
	return len(f.Regions) == 0 && f.MinAmount == nil && f.MaxAmount == nil
}

// FilterStats summarizes what a filter removed.
type FilterStats struct {
	Input           int
	RemovedByRegion int
	RemovedByAmount int
	Kept            int
}

// ApplyFilter returns the subsequence of records that pass the filter, in
// their original order. The input slice is not modified.
func ApplyFilter(records []types.SalesTransaction, f Filter) ([]types.SalesTransaction, FilterStats) {
	stats := FilterStats{Input: len(records)}

	allowed := make(map[string]bool, len(f.Regions))
	for _, r := range f.Regions {
		if key := normalizeRegion(r); key != "" {
			allowed[key] = true
		}
	}

	kept := make([]types.SalesTransaction, 0, len(records))
	for _, txn := range records {
		if len(allowed) > 0 && !allowed[normalizeRegion(txn.Region)] {
			stats.RemovedByRegion++
			continue
		}
		if f.MinAmount != nil && txn.Amount.LessThan(*f.MinAmount) {
			stats.RemovedByAmount++
			continue
		}
		if f.MaxAmount != nil && txn.Amount.GreaterThan(*f.MaxAmount) {
			stats.RemovedByAmount++
			continue
		}
		kept = append(kept, txn)
	}

	stats.Kept = len(kept)
	return kept, stats
}

// Regions returns the distinct region names present in records, sorted.
func Regions(records []types.SalesTransaction) []string {
	seen := make(map[string]bool)
	var out []string
	for _, txn := range records {
		if !seen[txn.Region] {
			seen[txn.Region] = true
			out = append(out, txn.Region)
		}
	}
	sort.Strings(out)
	return out
}

// AmountRange returns the smallest and largest amount in records.
// ok is false when records is empty.
func AmountRange(records []types.SalesTransaction) (min, max decimal.Decimal, ok bool) {
	if len(records) == 0 {
		return decimal.Zero, decimal.Zero, false
	}
	min, max = records[0].Amount, records[0].Amount
	for _, txn := range records[1:] {
		if txn.Amount.LessThan(min) {
			min = txn.Amount
		}
		if txn.Amount.GreaterThan(max) {
			max = txn.Amount
		}
	}
	return min, max, true
}

func normalizeRegion(r string) string {
	return strings.ToLower(strings.TrimSpace(r))
}
