package validation

import (
	"testing"

	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func txn(id, region, amount string) types.SalesTransaction {
	a := decimal.RequireFromString(amount)
	return types.SalesTransaction{TransactionID: id, Region: region, Quantity: 1, UnitPrice: a, Amount: a}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func ids(records []types.SalesTransaction) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.TransactionID
	}
	return out
}

func TestApplyFilter(t *testing.T) {
	records := []types.SalesTransaction{
		txn("T1", "North", "100"),
		txn("T2", "South", "250"),
		txn("T3", "north ", "500"),
		txn("T4", "East", "1000"),
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
		stats  FilterStats
	}{
		{
			name:   "zero filter is identity",
			filter: Filter{},
			want:   []string{"T1", "T2", "T3", "T4"},
			stats:  FilterStats{Input: 4, Kept: 4},
		},
		{
			name:   "region set is case insensitive",
			filter: Filter{Regions: []string{"NORTH", "East"}},
			want:   []string{"T1", "T3", "T4"},
			stats:  FilterStats{Input: 4, RemovedByRegion: 1, Kept: 3},
		},
		{
			name:   "inclusive amount bounds",
			filter: Filter{MinAmount: dec("250"), MaxAmount: dec("500")},
			want:   []string{"T2", "T3"},
			stats:  FilterStats{Input: 4, RemovedByAmount: 2, Kept: 2},
		},
		{
			name:   "region then amount",
			filter: Filter{Regions: []string{"north"}, MinAmount: dec("200")},
			want:   []string{"T3"},
			stats:  FilterStats{Input: 4, RemovedByRegion: 2, RemovedByAmount: 1, Kept: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, stats := ApplyFilter(records, tt.filter)
			assert.Equal(t, tt.want, ids(got))
			assert.Equal(t, tt.stats, stats)
		})
	}

	assert.Len(t, records, 4, "input must not be modified")
}

func TestFilter_IsZero(t *testing.T) {
	assert.True(t, Filter{}.IsZero())
	assert.False(t, Filter{Regions: []string{"North"}}.IsZero())
	assert.False(t, Filter{MaxAmount: dec("1")}.IsZero())
}

func TestRegionsAndAmountRange(t *testing.T) {
	records := []types.SalesTransaction{
		txn("T1", "West", "5"),
		txn("T2", "East", "50"),
		txn("T3", "West", "0.5"),
	}

	assert.Equal(t, []string{"East", "West"}, Regions(records))

	min, max, ok := AmountRange(records)
	assert.True(t, ok)
	assert.Equal(t, "0.5", min.String())
	assert.Equal(t, "50", max.String())

	_, _, ok = AmountRange(nil)
	assert.False(t, ok)
}
