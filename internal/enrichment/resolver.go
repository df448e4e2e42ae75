// =============================================================================
// Sales Analytics - Enrichment Resolver
// =============================================================================
//
// This module joins sales transactions to catalog entries by product name.
//
// MATCHING:
//   Names are compared after trimming and lower-casing.
//   - exact:    normalized names are equal
//   - contains: one normalized name contains the other (fuzzy strategy only)
//   Within each stage the first catalog entry in fetch order wins. Contains
//   matching can mis-pair nested names such as "Pen" and "Pencil"; every match
//   is logged with the stage that produced it so such pairings can be audited.
//
// =============================================================================

package enrichment

import (
	"sort"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"go.uber.org/zap"
)

// Options controls matching.
type Options struct {
	// Strategy is config.StrategyExact or config.StrategyFuzzy.
	// Empty means fuzzy.
	Strategy string

	// Degraded marks the catalog as the empty fallback of a failed fetch.
	// It is only reported in Stats.
	Degraded bool
}

// Stats summarizes one enrichment pass.
type Stats struct {
	Total      int
	Matched    int
	ByExact    int
	ByContains int
	Unmatched  int

	// UnmatchedProducts lists distinct unmatched product names, sorted.
	UnmatchedProducts []string

	Degraded bool
}

// MatchRate returns Matched/Total as a percentage, 0 for an empty pass.
func (s Stats) MatchRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Matched) * 100 / float64(s.Total)
}

type indexedEntry struct {
	key   string
	entry types.CatalogEntry
}

// Resolver matches product names against a fixed catalog snapshot.
// It is safe for concurrent use once built.
type Resolver struct {
	entries []indexedEntry
	exact   map[string]int
	fuzzy   bool
	opts    Options
	logger  *zap.Logger
}

// NewResolver indexes catalog. A nil or empty catalog is valid and matches
// nothing.
func NewResolver(catalog []types.CatalogEntry, opts Options, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := &Resolver{
		entries: make([]indexedEntry, 0, len(catalog)),
		exact:   make(map[string]int, len(catalog)),
		fuzzy:   opts.Strategy != config.StrategyExact,
		opts:    opts,
		logger:  logger,
	}

	for _, e := range catalog {
		key := normalize(e.Name)
		if key == "" {
			continue
		}
		if _, dup := r.exact[key]; !dup {
			r.exact[key] = len(r.entries)
		}
		r.entries = append(r.entries, indexedEntry{key: key, entry: e})
	}

	return r
}

// Resolve finds the catalog entry for one product name.
func (r *Resolver) Resolve(productName string) (types.CatalogEntry, types.MatchKind, bool) {
	key := normalize(productName)
	if key == "" {
		return types.CatalogEntry{}, types.MatchNone, false
	}

	if i, ok := r.exact[key]; ok {
		return r.entries[i].entry, types.MatchExact, true
	}

	if r.fuzzy {
		for _, ie := range r.entries {
			if strings.Contains(ie.key, key) || strings.Contains(key, ie.key) {
				return ie.entry, types.MatchContains, true
			}
		}
	}

	return types.CatalogEntry{}, types.MatchNone, false
}

// Enrich returns one enriched record per input record, in input order.
func (r *Resolver) Enrich(records []types.SalesTransaction) ([]types.EnrichedTransaction, Stats) {
	out := make([]types.EnrichedTransaction, len(records))
	stats := Stats{Total: len(records), Degraded: r.opts.Degraded}
	unmatched := make(map[string]bool)

	for i, txn := range records {
		entry, kind, ok := r.Resolve(txn.ProductName)
		if !ok {
			out[i] = types.EnrichedTransaction{
				SalesTransaction: txn,
				APICategory:      types.UnknownValue,
				APIBrand:         types.UnknownValue,
				APIMatch:         false,
				MatchedBy:        types.MatchNone,
			}
			stats.Unmatched++
			unmatched[txn.ProductName] = true
			continue
		}

		out[i] = types.EnrichedTransaction{
			SalesTransaction: txn,
			APICategory:      orUnknown(entry.Category),
			APIBrand:         orUnknown(entry.Brand),
			APIRating:        entry.Rating,
			APIMatch:         true,
			MatchedBy:        kind,
		}
		stats.Matched++
		if kind == types.MatchExact {
			stats.ByExact++
		} else {
			stats.ByContains++
		}

		r.logger.Debug("product matched",
			zap.String("transaction_id", txn.TransactionID),
			zap.String("product", txn.ProductName),
			zap.String("catalog_name", entry.Name),
			zap.Int("catalog_id", entry.ProductID),
			zap.String("strategy", string(kind)))
	}

	stats.UnmatchedProducts = make([]string, 0, len(unmatched))
	for name := range unmatched {
		stats.UnmatchedProducts = append(stats.UnmatchedProducts, name)
	}
	sort.Strings(stats.UnmatchedProducts)

	return out, stats
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return types.UnknownValue
	}
	return s
}
