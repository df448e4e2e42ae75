// =============================================================================
// Sales Analytics - Ledger Validation Engine
// =============================================================================
//
// This module turns raw ledger text into typed, validated SalesTransaction
// records. It validates:
//   - Row shape (column count must match the header)
//   - Dates (one accepted layout)
//   - Required identifier and name fields
//   - Optional ID prefix rules
//   - Quantity (positive integer) and unit price (non-negative decimal)
//
// VALIDATION STRATEGY:
//   Rows are validated one at a time. The first failed check rejects the row
//   and validation moves on to the next row; nothing aborts the batch. A
//   rejected row is reported once and never repaired.
//
// ERROR HANDLING:
//   - Errors are collected, not thrown
//   - Each error carries the source line, the failed field and the raw value
//   - The only returned error is an unrecognizable header
//
// =============================================================================

package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/ledgerparser"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/shopspring/decimal"
)

// plainDecimal matches an unsigned decimal without exponent.
var plainDecimal = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ErrInvalidHeader is returned when the first line is not a ledger header.
var ErrInvalidHeader = errors.New("invalid ledger header")

// Columns is the fixed ledger column order. The amount column is optional.
var Columns = []string{
	"transaction_id", "date", "customer_id", "product_name",
	"region", "quantity", "unit_price", "amount",
}

const (
	colTransactionID = iota
	colDate
	colCustomerID
	colProductName
	colRegion
	colQuantity
	colUnitPrice
	colAmount
)

// Rejection reasons.
const (
	ReasonMalformedRow    = "malformed row"
	ReasonInvalidDate     = "invalid date"
	ReasonInvalidQuantity = "invalid quantity"
	ReasonInvalidPrice    = "invalid price"
	reasonMissingPrefix   = "missing field: "
	reasonInvalidPrefix   = "invalid "
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ErrorKind separates row-shape failures from field failures.
type ErrorKind string

const (
	// KindRowParse is a row with the wrong column count.
	KindRowParse ErrorKind = "RowParseError"

	// KindFieldValidation is a row whose typed fields failed a constraint.
	KindFieldValidation ErrorKind = "FieldValidationError"
)

// ValidationError describes one rejected ledger row.
type ValidationError struct {
	Kind ErrorKind

	// Line is the 1-based line number in the ledger.
	Line int

	// Field is the column that failed. Empty for malformed rows.
	Field string

	// Value is the raw value that failed (or the raw line for malformed rows).
	Value string

	// Reason is the short, stable rejection reason, e.g. "invalid date".
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s (field %s, value %q)", e.Line, e.Reason, e.Field, e.Value)
}

// =============================================================================
// PARSE OPTIONS AND RESULT
// =============================================================================

// ParseOptions controls field parsing.
type ParseOptions struct {
	// DateLayout is the accepted date layout. Default: "2006-01-02".
	DateLayout string

	// TransactionIDPrefix and CustomerIDPrefix are optional required prefixes.
	TransactionIDPrefix string
	CustomerIDPrefix    string
}

// DefaultParseOptions returns the default parse options.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{DateLayout: "2006-01-02"}
}

// ParseResult contains the outcome of parsing one ledger.
type ParseResult struct {
	// Valid holds the accepted records in ledger order.
	Valid []types.SalesTransaction

	// Rejections holds one entry per rejected row, in ledger order.
	Rejections []*ValidationError

	// RowsRead is the number of non-blank data rows (header excluded).
	RowsRead int

	// HasAmountColumn reports whether the header carried an amount column.
	HasAmountColumn bool

	// AmountMismatches counts valid rows whose source amount disagreed with
	// quantity * unit_price. The computed value was kept.
	AmountMismatches int
}

// RejectedCount returns the number of rejected rows.
func (r *ParseResult) RejectedCount() int {
	return len(r.Rejections)
}

// RejectionsByReason groups rejection counts by reason.
func (r *ParseResult) RejectionsByReason() map[string]int {
	counts := make(map[string]int)
	for _, rej := range r.Rejections {
		counts[rej.Reason]++
	}
	return counts
}

// =============================================================================
// MAIN PARSING FUNCTION
// =============================================================================

// ParseLedger parses and validates raw ledger text.
//
// PARAMETERS:
//   - content: The full ledger text. The first non-blank line is the header.
//   - opts: Parse options. A zero DateLayout falls back to the default.
//
// RETURNS:
//   - The parse result. len(Rejections) == RowsRead - len(Valid).
//   - ErrInvalidHeader (wrapped) if the header is not a ledger header.
//
// The function is pure: calling it twice on the same input yields the same
// result.
func ParseLedger(content string, opts ParseOptions) (*ParseResult, error) {
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultParseOptions().DateLayout
	}

	result := &ParseResult{
		Valid:      make([]types.SalesTransaction, 0),
		Rejections: make([]*ValidationError, 0),
	}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	width := 0
	for i, line := range lines {
		lineNo := i + 1
		if strings.TrimSpace(line) == "" {
			continue
		}

		cells := ledgerparser.SplitRow(line)

		// The first non-blank line is the header.
		if width == 0 {
			if err := checkHeader(cells); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			width = len(cells)
			result.HasAmountColumn = width == len(Columns)
			continue
		}

		result.RowsRead++

		if len(cells) != width {
			result.Rejections = append(result.Rejections, &ValidationError{
				Kind:   KindRowParse,
				Line:   lineNo,
				Value:  line,
				Reason: ReasonMalformedRow,
			})
			continue
		}

		txn, verr := validateRow(cells, lineNo, opts)
		if verr != nil {
			result.Rejections = append(result.Rejections, verr)
			continue
		}

		if result.HasAmountColumn && amountMismatch(txn) {
			result.AmountMismatches++
		}

		result.Valid = append(result.Valid, txn)
	}

	return result, nil
}

// checkHeader accepts the seven fixed columns with an optional trailing amount.
func checkHeader(cells []string) error {
	if len(cells) != len(Columns) && len(cells) != len(Columns)-1 {
		return fmt.Errorf("%w: expected %d or %d columns, got %d",
			ErrInvalidHeader, len(Columns)-1, len(Columns), len(cells))
	}
	for i, cell := range cells {
		if !strings.EqualFold(cell, Columns[i]) {
			return fmt.Errorf("%w: column %d is %q, expected %q", ErrInvalidHeader, i+1, cell, Columns[i])
		}
	}
	return nil
}

// =============================================================================
// ROW VALIDATION
// =============================================================================

// validateRow converts one well-shaped row, short-circuiting on the first
// failed constraint.
func validateRow(cells []string, lineNo int, opts ParseOptions) (types.SalesTransaction, *ValidationError) {
	fail := func(field, value, reason string) (types.SalesTransaction, *ValidationError) {
		return types.SalesTransaction{}, &ValidationError{
			Kind:   KindFieldValidation,
			Line:   lineNo,
			Field:  field,
			Value:  value,
			Reason: reason,
		}
	}

	date, err := time.Parse(opts.DateLayout, cells[colDate])
	if err != nil {
		return fail(Columns[colDate], cells[colDate], ReasonInvalidDate)
	}

	for _, col := range []int{colTransactionID, colCustomerID, colProductName, colRegion} {
		if cells[col] == "" {
			return fail(Columns[col], cells[col], reasonMissingPrefix+Columns[col])
		}
	}

	if opts.TransactionIDPrefix != "" && !strings.HasPrefix(cells[colTransactionID], opts.TransactionIDPrefix) {
		return fail(Columns[colTransactionID], cells[colTransactionID], reasonInvalidPrefix+Columns[colTransactionID])
	}
	if opts.CustomerIDPrefix != "" && !strings.HasPrefix(cells[colCustomerID], opts.CustomerIDPrefix) {
		return fail(Columns[colCustomerID], cells[colCustomerID], reasonInvalidPrefix+Columns[colCustomerID])
	}

	qty, ok := parseQuantity(cells[colQuantity])
	if !ok {
		return fail(Columns[colQuantity], cells[colQuantity], ReasonInvalidQuantity)
	}

	price, ok := parsePrice(cells[colUnitPrice])
	if !ok {
		return fail(Columns[colUnitPrice], cells[colUnitPrice], ReasonInvalidPrice)
	}

	txn := types.SalesTransaction{
		TransactionID: cells[colTransactionID],
		Date:          date,
		CustomerID:    cells[colCustomerID],
		ProductName:   cells[colProductName],
		Region:        cells[colRegion],
		Quantity:      qty,
		UnitPrice:     price,
		Amount:        price.Mul(decimal.NewFromInt(int64(qty))),
		Line:          lineNo,
	}
	if len(cells) > colAmount {
		txn.SourceAmount = cells[colAmount]
	}

	return txn, nil
}

// parseQuantity accepts a positive integer, ignoring thousands separators.
func parseQuantity(raw string) (int, bool) {
	qty, err := strconv.Atoi(stripThousands(raw))
	if err != nil || qty <= 0 {
		return 0, false
	}
	return qty, true
}

// parsePrice accepts a non-negative decimal, ignoring thousands separators.
func parsePrice(raw string) (decimal.Decimal, bool) {
	return parsePlainDecimal(stripThousands(raw))
}

// parsePlainDecimal accepts digits with an optional fraction only. Exponent
// forms are refused: an exponent such as 1e300000000 makes every later
// rescale of the value grow with the exponent.
func parsePlainDecimal(s string) (decimal.Decimal, bool) {
	if !plainDecimal.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func stripThousands(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}

// amountMismatch reports whether a present, parsable source amount differs
// from the recomputed amount. Unparsable or non-plain source amounts count as mismatches.
func amountMismatch(txn types.SalesTransaction) bool {
	if txn.SourceAmount == "" {
		return false
	}
	src, ok := parsePlainDecimal(stripThousands(txn.SourceAmount))
	if !ok {
		return true
	}
	return !src.Equal(txn.Amount)
}
