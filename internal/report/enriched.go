package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/ginjaninja78/sales-analytics/internal/validation"
	"github.com/shopspring/decimal"
)

// EnrichedColumns are appended to the ledger columns in the enriched dataset.
var EnrichedColumns = []string{"API_Category", "API_Brand", "API_Rating", "API_Match"}

// NotAvailable is written for a missing rating.
const NotAvailable = "N/A"

// EnrichedHeader returns the full enriched dataset header.
func EnrichedHeader() []string {
	header := make([]string, 0, len(validation.Columns)+len(EnrichedColumns))
	header = append(header, validation.Columns...)
	return append(header, EnrichedColumns...)
}

// EnrichedRow renders one enriched record as dataset cells, in header order.
func EnrichedRow(e types.EnrichedTransaction, dateLayout string) []string {
	return []string{
		e.TransactionID,
		e.Date.Format(dateLayout),
		e.CustomerID,
		e.ProductName,
		e.Region,
		strconv.Itoa(e.Quantity),
		FormatDecimal(e.UnitPrice),
		FormatDecimal(e.Amount),
		e.APICategory,
		e.APIBrand,
		FormatRating(e.APIRating),
		FormatMatch(e.APIMatch),
	}
}

// FormatDecimal renders d with at least two decimals and never fewer than d
// carries, so sub-cent prices survive and amount == quantity * unit_price
// holds on the written values.
func FormatDecimal(d decimal.Decimal) string {
	places := int32(2)
	if exp := -d.Exponent(); exp > places {
		places = exp
	}
	return d.StringFixed(places)
}

// FormatRating renders a rating, or N/A when it is missing.
func FormatRating(r *float64) string {
	if r == nil {
		return NotAvailable
	}
	return strconv.FormatFloat(*r, 'f', -1, 64)
}

// FormatMatch renders the match flag as True/False.
func FormatMatch(ok bool) string {
	if ok {
		return "True"
	}
	return "False"
}

// WriteEnriched writes the pipe-delimited enriched dataset to w. Cell values
// containing the delimiter have it replaced with "/" so the row shape holds.
func WriteEnriched(w io.Writer, records []types.EnrichedTransaction, dateLayout string) error {
	if dateLayout == "" {
		dateLayout = validation.DefaultParseOptions().DateLayout
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(EnrichedHeader(), "|") + "\n"); err != nil {
		return err
	}

	for _, e := range records {
		cells := EnrichedRow(e, dateLayout)
		for i, c := range cells {
			cells[i] = strings.ReplaceAll(c, "|", "/")
		}
		if _, err := bw.WriteString(strings.Join(cells, "|") + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteEnrichedFile writes the enriched dataset to path.
func WriteEnrichedFile(path string, records []types.EnrichedTransaction, dateLayout string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create enriched file: %w", err)
	}

	if err := WriteEnriched(file, records, dateLayout); err != nil {
		file.Close()
		return fmt.Errorf("failed to write enriched file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close enriched file: %w", err)
	}
	return nil
}
