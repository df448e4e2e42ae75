// =============================================================================
// Sales Analytics - Workbook Export
// =============================================================================
//
// This module writes the run results to a single XLSX workbook so they can be
// opened in a spreadsheet. Sheets:
//   - Enriched:  one row per enriched transaction
//   - Regions:   region breakdown
//   - Products:  top and bottom products plus low performers
//   - Customers: customer insights
//   - Daily:     daily trend
//
// Money values are written as numbers, not text, so spreadsheet formulas work
// on them. Each sheet has a bold, frozen header row.
//
// =============================================================================

package workbook

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/analytics"
	"github.com/ginjaninja78/sales-analytics/internal/report"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	SheetEnriched  = "Enriched"
	SheetRegions   = "Regions"
	SheetProducts  = "Products"
	SheetCustomers = "Customers"
	SheetDaily     = "Daily"
)

// Input is the data exported to the workbook.
type Input struct {
	Enriched   []types.EnrichedTransaction
	Summary    *analytics.Summary
	DateLayout string
}

type sheetWriter struct {
	f           *excelize.File
	headerStyle int
}

// Write creates the workbook at path, replacing any existing file.
func Write(path string, in Input) error {
	if in.Summary == nil {
		in.Summary = analytics.Analyze(nil, analytics.DefaultOptions())
	}
	if in.DateLayout == "" {
		in.DateLayout = "2006-01-02"
	}

	f := excelize.NewFile()
	defer f.Close()

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	w := &sheetWriter{f: f, headerStyle: style}

	// The default sheet becomes the first export sheet.
	if err := f.SetSheetName(f.GetSheetName(0), SheetEnriched); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{SheetRegions, SheetProducts, SheetCustomers, SheetDaily} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	steps := []func(Input) error{
		w.enriched,
		w.regions,
		w.products,
		w.customers,
		w.daily,
	}
	for _, step := range steps {
		if err := step(in); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// =============================================================================
// SHEET HELPERS
// =============================================================================

func (w *sheetWriter) header(sheet string, cols ...string) error {
	row := make([]interface{}, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	if err := w.f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := w.f.SetRowStyle(sheet, 1, 1, w.headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	return w.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// row writes values at the 1-based row index.
func (w *sheetWriter) row(sheet string, index int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, index)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, index, err)
	}
	return nil
}

// =============================================================================
// SHEETS
// =============================================================================

func (w *sheetWriter) enriched(in Input) error {
	if err := w.header(SheetEnriched, report.EnrichedHeader()...); err != nil {
		return err
	}
	for i, e := range in.Enriched {
		var rating interface{} = report.NotAvailable
		if e.APIRating != nil {
			rating = *e.APIRating
		}
		err := w.row(SheetEnriched, i+2,
			e.TransactionID,
			e.Date.Format(in.DateLayout),
			e.CustomerID,
			e.ProductName,
			e.Region,
			e.Quantity,
			e.UnitPrice.InexactFloat64(),
			e.Amount.InexactFloat64(),
			e.APICategory,
			e.APIBrand,
			rating,
			report.FormatMatch(e.APIMatch),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *sheetWriter) regions(in Input) error {
	if err := w.header(SheetRegions, "Region", "Revenue", "Transactions", "Share %", "Average Value"); err != nil {
		return err
	}
	for i, r := range in.Summary.Regions {
		err := w.row(SheetRegions, i+2,
			r.Region,
			r.Revenue.InexactFloat64(),
			r.Count,
			r.SharePercent.Round(2).InexactFloat64(),
			r.AverageValue.Round(2).InexactFloat64(),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *sheetWriter) products(in Input) error {
	if err := w.header(SheetProducts, "List", "Rank", "Product", "Quantity", "Revenue"); err != nil {
		return err
	}

	next := 2
	lists := []struct {
		name     string
		products []analytics.ProductStats
	}{
		{fmt.Sprintf("Top %d", in.Summary.Options.TopN), in.Summary.TopProducts},
		{fmt.Sprintf("Bottom %d", in.Summary.Options.TopN), in.Summary.BottomProducts},
		{"Low performer", in.Summary.LowPerformers},
	}
	for _, list := range lists {
		for rank, p := range list.products {
			if err := w.row(SheetProducts, next, list.name, rank+1, p.Name, p.Quantity, p.Revenue.InexactFloat64()); err != nil {
				return err
			}
			next++
		}
	}
	return nil
}

func (w *sheetWriter) customers(in Input) error {
	if err := w.header(SheetCustomers, "Customer ID", "Total Spent", "Orders", "Average Order Value", "Products"); err != nil {
		return err
	}
	for i, c := range in.Summary.Customers {
		err := w.row(SheetCustomers, i+2,
			c.CustomerID,
			c.TotalSpent.InexactFloat64(),
			c.Count,
			c.AverageOrderValue.Round(2).InexactFloat64(),
			strings.Join(c.Products, ", "),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *sheetWriter) daily(in Input) error {
	if err := w.header(SheetDaily, "Date", "Revenue", "Transactions", "Unique Customers", "Peak"); err != nil {
		return err
	}
	for i, d := range in.Summary.Daily {
		peak := ""
		if in.Summary.PeakDay != nil && d.Date.Equal(in.Summary.PeakDay.Date) {
			peak = "*"
		}
		err := w.row(SheetDaily, i+2,
			d.Date.Format("2006-01-02"),
			d.Revenue.InexactFloat64(),
			d.Count,
			d.UniqueCustomers,
			peak,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
