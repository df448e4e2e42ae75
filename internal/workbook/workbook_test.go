package workbook

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/analytics"
	"github.com/ginjaninja78/sales-analytics/internal/enrichment"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sale(id, date, customer, product, region string, qty int, price string) types.SalesTransaction {
	d, _ := time.Parse("2006-01-02", date)
	p := decimal.RequireFromString(price)
	return types.SalesTransaction{
		TransactionID: id, Date: d, CustomerID: customer, ProductName: product, Region: region,
		Quantity: qty, UnitPrice: p, Amount: p.Mul(decimal.NewFromInt(int64(qty))),
	}
}

func TestWrite(t *testing.T) {
	records := []types.SalesTransaction{
		sale("T1", "2024-01-01", "C1", "Widget", "North", 2, "10.50"),
		sale("T2", "2024-01-02", "C2", "Gadget", "South", 1, "99"),
	}
	rating := 4.5
	catalog := []types.CatalogEntry{{ProductID: 1, Name: "Widget", Category: "tools", Brand: "Acme", Rating: &rating}}
	enriched, _ := enrichment.NewResolver(catalog, enrichment.Options{}, nil).Enrich(records)

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, Write(path, Input{
		Enriched: enriched,
		Summary:  analytics.Analyze(records, analytics.Options{TopN: 1, LowPerformerThreshold: 10}),
	}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetEnriched, SheetRegions, SheetProducts, SheetCustomers, SheetDaily}, f.GetSheetList())

	rows, err := f.GetRows(SheetEnriched)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "API_Match", rows[0][11])
	assert.Equal(t, []string{"T1", "2024-01-01", "C1", "Widget", "North", "2", "10.5", "21", "tools", "Acme", "4.5", "True"}, rows[1])
	assert.Equal(t, "N/A", rows[2][10])
	assert.Equal(t, "False", rows[2][11])

	regions, err := f.GetRows(SheetRegions)
	require.NoError(t, err)
	require.Len(t, regions, 3)
	assert.Equal(t, "South", regions[1][0], "regions keep revenue order")

	products, err := f.GetRows(SheetProducts)
	require.NoError(t, err)
	// header + top 1 + bottom 1 + two low performers
	require.Len(t, products, 5)
	assert.Equal(t, []string{"Top 1", "1", "Gadget", "1", "99"}, products[1])
	assert.Equal(t, []string{"Bottom 1", "1", "Widget", "2", "21"}, products[2])

	daily, err := f.GetRows(SheetDaily)
	require.NoError(t, err)
	require.Len(t, daily, 3)
	assert.Equal(t, "*", daily[2][4], "peak day is flagged")
}

func TestWrite_EmptyRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, Write(path, Input{}))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetCustomers)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Customer ID", rows[0][0])
}

func TestWrite_BadPath(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "missing", "x.xlsx"), Input{})
	assert.Error(t, err)
}
