// =============================================================================
// Sales Analytics - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - validation   (produces SalesTransaction)
//   - analytics    (consumes SalesTransaction)
//   - catalog      (produces CatalogEntry)
//   - enrichment   (produces EnrichedTransaction)
//   - report, workbook (render all of the above)
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnknownValue is written into text enrichment fields when no catalog entry
// matched the transaction.
const UnknownValue = "Unknown"

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// SalesTransaction is one validated row of the sales ledger.
type SalesTransaction struct {
	// TransactionID identifies the row within a run. Duplicates pass through.
	TransactionID string

	// Date is the calendar date of the sale (time component is always zero).
	Date time.Time

	CustomerID  string
	ProductName string
	Region      string

	// Quantity is always > 0.
	Quantity int

	// UnitPrice is always >= 0.
	UnitPrice decimal.Decimal

	// Amount is Quantity * UnitPrice, recomputed during validation.
	Amount decimal.Decimal

	// SourceAmount is the raw amount column, kept for diagnostics only.
	SourceAmount string

	// Line is the 1-based line number in the source ledger.
	Line int
}

// =============================================================================
// CATALOG TYPES
// =============================================================================

// CatalogEntry is one product from the external catalog API.
type CatalogEntry struct {
	ProductID int
	Name      string
	Category  string
	Brand     string

	// Rating is nil when the API did not supply one.
	Rating *float64
}

// =============================================================================
// ENRICHMENT TYPES
// =============================================================================

// MatchKind records which strategy resolved a transaction against the catalog.
type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchContains MatchKind = "contains"
	MatchNone     MatchKind = "none"
)

// EnrichedTransaction is a SalesTransaction with catalog fields merged in.
type EnrichedTransaction struct {
	SalesTransaction

	APICategory string
	APIBrand    string

	// APIRating is nil when unmatched or when the matched entry had no rating.
	APIRating *float64

	APIMatch  bool
	MatchedBy MatchKind
}
