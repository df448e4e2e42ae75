// =============================================================================
// Sales Analytics - Product Catalog Module
// =============================================================================
//
// This module fetches the product catalog used to enrich sales transactions.
// Two sources are provided:
//   - HTTPSource: a JSON catalog API (DummyJSON payload shape)
//   - FileSource: a local snapshot of the same payload, for offline runs
//
// FAILURE POLICY:
//   Sources return errors. Load turns any error into an empty catalog with the
//   Degraded flag set, so callers never see transport failures; the run
//   continues with every transaction unmatched.
//
// =============================================================================

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"go.uber.org/zap"
	"resty.dev/v3"
)

var (
	// ErrBadStatus is returned when the catalog API answers with a non-2xx status.
	ErrBadStatus = errors.New("catalog API returned an error status")

	// ErrBadPayload is returned when the catalog body is not the expected JSON.
	ErrBadPayload = errors.New("malformed catalog payload")
)

// Source fetches catalog entries.
type Source interface {
	Fetch(ctx context.Context) ([]types.CatalogEntry, error)
}

// =============================================================================
// PAYLOAD
// =============================================================================

type payload struct {
	Products []product `json:"products"`
}

type product struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Category string   `json:"category"`
	Brand    string   `json:"brand"`
	Rating   *float64 `json:"rating"`
}

// Decode parses a catalog payload. Products without a title are skipped;
// the remaining entries keep payload order.
func Decode(data []byte) ([]types.CatalogEntry, error) {
	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	if p.Products == nil {
		return nil, fmt.Errorf("%w: missing products array", ErrBadPayload)
	}

	entries := make([]types.CatalogEntry, 0, len(p.Products))
	for _, prod := range p.Products {
		name := strings.TrimSpace(prod.Title)
		if name == "" {
			continue
		}
		entries = append(entries, types.CatalogEntry{
			ProductID: prod.ID,
			Name:      name,
			Category:  prod.Category,
			Brand:     prod.Brand,
			Rating:    prod.Rating,
		})
	}
	return entries, nil
}

// =============================================================================
// HTTP SOURCE
// =============================================================================

// HTTPOptions configures an HTTPSource.
type HTTPOptions struct {
	URL     string
	Limit   int
	Timeout time.Duration
	Retries int

	// RetryWait is the initial wait between retries. Zero keeps the client default.
	RetryWait time.Duration

	Logger *zap.Logger
}

// HTTPSource fetches the catalog from a JSON API with resty.
type HTTPSource struct {
	client *resty.Client
	url    string
	limit  int
}

// NewHTTPSource creates an HTTPSource. Call Close when done.
func NewHTTPSource(opts HTTPOptions) *HTTPSource {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.Retries).
		SetHeader("Accept", "application/json")

	if opts.RetryWait > 0 {
		client.SetRetryWaitTime(opts.RetryWait).SetRetryMaxWaitTime(opts.RetryWait * 4)
	}
	if opts.Logger != nil {
		client.SetLogger(opts.Logger.Sugar())
	}

	return &HTTPSource{client: client, url: opts.URL, limit: opts.Limit}
}

// Fetch performs one GET against the catalog URL.
func (s *HTTPSource) Fetch(ctx context.Context) ([]types.CatalogEntry, error) {
	req := s.client.R().SetContext(ctx)
	if s.limit > 0 {
		req.SetQueryParam("limit", fmt.Sprint(s.limit))
	}

	resp, err := req.Get(s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog from %s: %w", s.url, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s", ErrBadStatus, resp.Status())
	}

	return Decode(resp.Bytes())
}

// Close releases the underlying HTTP client.
func (s *HTTPSource) Close() error {
	return s.client.Close()
}

// =============================================================================
// FILE SOURCE
// =============================================================================

// FileSource reads a catalog snapshot from disk.
type FileSource struct {
	Path string
}

// Fetch reads and decodes the snapshot file.
func (s FileSource) Fetch(ctx context.Context) ([]types.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog snapshot: %w", err)
	}
	return Decode(data)
}

// FromConfig picks the configured source. A snapshot file takes precedence
// over the URL. The returned close function is never nil.
func FromConfig(cfg config.CatalogConfig, logger *zap.Logger) (Source, func() error) {
	if cfg.File != "" {
		return FileSource{Path: cfg.File}, func() error { return nil }
	}
	src := NewHTTPSource(HTTPOptions{
		URL:     cfg.URL,
		Limit:   cfg.Limit,
		Timeout: cfg.Timeout,
		Retries: cfg.Retries,
		Logger:  logger,
	})
	return src, src.Close
}

// =============================================================================
// LOADING
// =============================================================================

// Result is the outcome of a catalog load.
type Result struct {
	Entries []types.CatalogEntry

	// Degraded is set when the source failed and Entries is empty because of it.
	Degraded bool

	// Err is the source error behind a degraded load.
	Err error

	Duration time.Duration
}

// Load fetches the catalog once. Any failure yields an empty, degraded result.
// A nil logger discards log output.
func Load(ctx context.Context, src Source, logger *zap.Logger) Result {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	entries, err := src.Fetch(ctx)
	if err != nil {
		logger.Warn("catalog unavailable, continuing without enrichment",
			zap.Error(err),
			zap.Duration("elapsed", time.Since(start)))
		return Result{Entries: []types.CatalogEntry{}, Degraded: true, Err: err, Duration: time.Since(start)}
	}

	logger.Info("catalog loaded",
		zap.Int("entries", len(entries)),
		zap.Duration("elapsed", time.Since(start)))

	return Result{Entries: entries, Duration: time.Since(start)}
}
