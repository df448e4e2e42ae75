// =============================================================================
// Sales Analytics - Pipeline Module
// =============================================================================
//
// This module orchestrates one batch run, from ledger file to outputs.
//
// PIPELINE:
//   1. Read the ledger (text or XLSX, with encoding fallback)
//   2. Parse and validate rows; write the rejection log
//   3. Apply the configured region/amount filter
//   4. Fetch the product catalog and compute analytics, concurrently
//   5. Enrich the filtered records
//   6. Write the enriched dataset, the report and (optionally) the workbook
//   7. Write the metrics textfile
//
// CONCURRENCY:
//   The catalog fetch runs in its own goroutine while analytics runs on the
//   calling goroutine. Both only read the filtered records. The fetch is
//   bounded by the configured catalog timeout; when it fails or times out the
//   run continues with an empty catalog.
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ginjaninja78/sales-analytics/internal/analytics"
	"github.com/ginjaninja78/sales-analytics/internal/catalog"
	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/enrichment"
	"github.com/ginjaninja78/sales-analytics/internal/ledgerparser"
	"github.com/ginjaninja78/sales-analytics/internal/metrics"
	"github.com/ginjaninja78/sales-analytics/internal/report"
	"github.com/ginjaninja78/sales-analytics/internal/types"
	"github.com/ginjaninja78/sales-analytics/internal/validation"
	"github.com/ginjaninja78/sales-analytics/internal/workbook"
	"github.com/ginjaninja78/sales-analytics/pkg/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Outputs lists the files a run wrote. Empty fields were not written.
type Outputs struct {
	Enriched  string
	Report    string
	Workbook  string
	RejectLog string
	Metrics   string
}

// Stats contains run statistics.
type Stats struct {
	RowsRead         int
	Rejected         int
	Valid            int
	Kept             int
	AmountMismatches int
	CatalogEntries   int
	Matched          int
	ProcessingTime   time.Duration
}

// Result is the outcome of a full run.
type Result struct {
	RunID      string
	Ledger     *ledgerparser.Ledger
	Parse      *validation.ParseResult
	Filter     validation.FilterStats
	Records    []types.SalesTransaction
	Summary    *analytics.Summary
	Catalog    catalog.Result
	Enriched   []types.EnrichedTransaction
	Enrichment enrichment.Stats
	Outputs    Outputs
	Stats      Stats
}

// CheckResult is the outcome of a validate-only run.
type CheckResult struct {
	RunID     string
	Ledger    *ledgerparser.Ledger
	Parse     *validation.ParseResult
	Filter    validation.FilterStats
	Kept      []types.SalesTransaction
	Regions   []string
	RejectLog string
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline runs the configured steps.
type Pipeline struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Registry
	source  catalog.Source
	runID   string
	now     func() time.Time
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithCatalogSource replaces the catalog source built from the configuration.
func WithCatalogSource(src catalog.Source) Option {
	return func(p *Pipeline) { p.source = src }
}

// WithMetrics records run metrics into reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(p *Pipeline) { p.metrics = reg }
}

// WithRunID fixes the run id instead of generating one.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline for cfg.
//
// PARAMETERS:
//   - cfg: A loaded and validated configuration.
//   - logger: The run logger. Every message carries the run id.
//   - opts: Optional overrides, mostly for tests.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.runID == "" {
		p.runID = uuid.New().String()
	}
	if p.metrics == nil {
		p.metrics = metrics.NewRegistry()
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.With(zap.String("run_id", p.runID))
	return p
}

// RunID returns the id stamped on logs and output names.
func (p *Pipeline) RunID() string {
	return p.runID
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the full pipeline.
//
// RETURNS:
//   - The run result.
//   - An error only for fatal problems: unreadable input, an unrecognizable
//     header, or an output that cannot be written. Row rejections and catalog
//     failures are reported in the result instead.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := p.now()
	cfg := p.cfg
	result := &Result{RunID: p.runID}

	// =========================================================================
	// STEP 1-3: READ, VALIDATE, FILTER
	// =========================================================================

	check, err := p.Check(ctx)
	if err != nil {
		return nil, err
	}
	result.Ledger = check.Ledger
	result.Parse = check.Parse
	result.Filter = check.Filter
	result.Outputs.RejectLog = check.RejectLog

	records := check.Kept
	result.Records = records

	// =========================================================================
	// STEP 4: CATALOG FETCH || ANALYTICS
	// =========================================================================

	src, closeSrc := p.catalogSource()
	defer func() {
		if err := closeSrc(); err != nil {
			p.logger.Warn("failed to close catalog client", zap.Error(err))
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		fetchCtx, cancel := context.WithTimeout(ctx, cfg.Catalog.Timeout)
		defer cancel()
		result.Catalog = catalog.Load(fetchCtx, src, p.logger)
	}()

	result.Summary = analytics.Analyze(records, analytics.Options{
		TopN:                  cfg.Analytics.TopN,
		LowPerformerThreshold: cfg.Analytics.LowPerformerThreshold,
	})
	p.logger.Info("analytics computed",
		zap.Int("records", result.Summary.TransactionCount),
		zap.String("revenue", result.Summary.TotalRevenue.StringFixed(2)),
		zap.Int("regions", len(result.Summary.Regions)))

	wg.Wait()
	p.metrics.ObserveCatalog(len(result.Catalog.Entries), result.Catalog.Degraded, result.Catalog.Duration)

	// =========================================================================
	// STEP 5: ENRICH
	// =========================================================================

	resolver := enrichment.NewResolver(result.Catalog.Entries, enrichment.Options{
		Strategy: cfg.Enrichment.Strategy,
		Degraded: result.Catalog.Degraded,
	}, p.logger)
	result.Enriched, result.Enrichment = resolver.Enrich(records)

	p.logger.Info("enrichment complete",
		zap.Int("matched", result.Enrichment.Matched),
		zap.Int("exact", result.Enrichment.ByExact),
		zap.Int("contains", result.Enrichment.ByContains),
		zap.Int("unmatched", result.Enrichment.Unmatched),
		zap.Bool("degraded", result.Enrichment.Degraded))

	// =========================================================================
	// STEP 6: WRITE OUTPUTS
	// =========================================================================

	if err := p.writeOutputs(result, start); err != nil {
		return nil, err
	}

	// =========================================================================
	// STEP 7: METRICS
	// =========================================================================

	end := p.now()
	p.recordMetrics(result, start, end)
	if cfg.MetricsFile != "" {
		path := cfg.MetricsFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.OutputDir, path)
		}
		if err := p.metrics.WriteTextfile(path); err != nil {
			return nil, err
		}
		result.Outputs.Metrics = path
	}

	result.Stats = Stats{
		RowsRead:         result.Parse.RowsRead,
		Rejected:         result.Parse.RejectedCount(),
		Valid:            len(result.Parse.Valid),
		Kept:             len(records),
		AmountMismatches: result.Parse.AmountMismatches,
		CatalogEntries:   len(result.Catalog.Entries),
		Matched:          result.Enrichment.Matched,
		ProcessingTime:   end.Sub(start),
	}

	p.logger.Info("run complete",
		zap.Duration("elapsed", result.Stats.ProcessingTime),
		zap.String("enriched_file", result.Outputs.Enriched),
		zap.String("report_file", result.Outputs.Report))

	return result, nil
}

// Check reads, validates and filters the ledger without enrichment or
// analytics. The rejection log is written when rows were rejected.
func (p *Pipeline) Check(ctx context.Context) (*CheckResult, error) {
	cfg := p.cfg
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter, err := p.filter()
	if err != nil {
		return nil, err
	}

	if err := utils.EnsureDirectories(cfg.OutputDir); err != nil {
		return nil, err
	}

	if size, err := utils.GetFileSize(cfg.InputFile); err == nil {
		p.logger.Info("reading ledger", zap.String("file", cfg.InputFile), zap.Int64("bytes", size))
	}

	ledger, err := ledgerparser.Read(cfg.InputFile, cfg.Parsing.Encoding)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("ledger decoded", zap.String("encoding", ledger.Encoding), zap.String("format", ledger.Format))

	parsed, err := validation.ParseLedger(ledger.Content, validation.ParseOptions{
		DateLayout:          cfg.Parsing.DateLayout,
		TransactionIDPrefix: cfg.Parsing.TransactionIDPrefix,
		CustomerIDPrefix:    cfg.Parsing.CustomerIDPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", cfg.InputFile, err)
	}

	for _, rej := range parsed.Rejections {
		p.logger.Warn("row rejected",
			zap.Int("line", rej.Line),
			zap.String("kind", string(rej.Kind)),
			zap.String("reason", rej.Reason),
			zap.String("field", rej.Field),
			zap.String("value", rej.Value))
	}

	check := &CheckResult{
		RunID:   p.runID,
		Ledger:  ledger,
		Parse:   parsed,
		Regions: validation.Regions(parsed.Valid),
	}

	check.RejectLog, err = utils.WriteErrorLog(rejectionEntries(parsed.Rejections), cfg.OutputDir, cfg.RejectLogFormat, cfg.InputFile)
	if err != nil {
		return nil, err
	}

	check.Kept, check.Filter = validation.ApplyFilter(parsed.Valid, filter)

	p.logger.Info("ledger validated",
		zap.Int("rows", parsed.RowsRead),
		zap.Int("valid", len(parsed.Valid)),
		zap.Int("rejected", parsed.RejectedCount()),
		zap.Int("amount_mismatches", parsed.AmountMismatches),
		zap.Int("kept", check.Filter.Kept))

	return check, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func (p *Pipeline) filter() (validation.Filter, error) {
	lo, hi, err := p.cfg.Filters.Bounds()
	if err != nil {
		return validation.Filter{}, err
	}
	return validation.Filter{Regions: p.cfg.Filters.Regions, MinAmount: lo, MaxAmount: hi}, nil
}

func (p *Pipeline) catalogSource() (catalog.Source, func() error) {
	if p.source != nil {
		return p.source, func() error { return nil }
	}
	return catalog.FromConfig(p.cfg.Catalog, p.logger)
}

func (p *Pipeline) writeOutputs(result *Result, start time.Time) error {
	cfg := p.cfg

	enrichedPath := filepath.Join(cfg.OutputDir, cfg.EnrichedFile)
	p.warnOverwrite(enrichedPath)
	if err := report.WriteEnrichedFile(enrichedPath, result.Enriched, cfg.Parsing.DateLayout); err != nil {
		return err
	}
	result.Outputs.Enriched = enrichedPath

	reportPath := filepath.Join(cfg.OutputDir, cfg.ReportFile)
	p.warnOverwrite(reportPath)
	err := report.WriteReport(reportPath, report.Input{
		Summary:          result.Summary,
		Enrichment:       result.Enrichment,
		Filter:           result.Filter,
		RowsRead:         result.Parse.RowsRead,
		Rejected:         result.Parse.RejectedCount(),
		RejectedByReason: result.Parse.RejectionsByReason(),
		AmountMismatches: result.Parse.AmountMismatches,
		SourceFile:       cfg.InputFile,
		RunID:            p.runID,
		GeneratedAt:      start,
		Currency:         cfg.Currency,
	})
	if err != nil {
		return err
	}
	result.Outputs.Report = reportPath

	if cfg.WorkbookEnabled {
		name := utils.GenerateOutputFileName(cfg.WorkbookFile, map[string]string{"run": p.runID})
		workbookPath := filepath.Join(cfg.OutputDir, name)
		err := workbook.Write(workbookPath, workbook.Input{
			Enriched:   result.Enriched,
			Summary:    result.Summary,
			DateLayout: cfg.Parsing.DateLayout,
		})
		if err != nil {
			return err
		}
		result.Outputs.Workbook = workbookPath
	}

	return nil
}

// warnOverwrite logs when a fixed-name output from an earlier run is about
// to be replaced.
func (p *Pipeline) warnOverwrite(path string) {
	if utils.FileExists(path) {
		p.logger.Warn("overwriting existing output", zap.String("file", path))
	}
}

func (p *Pipeline) recordMetrics(result *Result, start, end time.Time) {
	m := p.metrics
	m.RowsRead.Add(float64(result.Parse.RowsRead))
	for reason, n := range result.Parse.RejectionsByReason() {
		m.RowsRejected.WithLabelValues(reason).Add(float64(n))
	}
	m.RecordsValid.Add(float64(len(result.Parse.Valid)))
	m.RecordsFiltered.WithLabelValues("region").Add(float64(result.Filter.RemovedByRegion))
	m.RecordsFiltered.WithLabelValues("amount").Add(float64(result.Filter.RemovedByAmount))
	m.AmountMismatches.Add(float64(result.Parse.AmountMismatches))
	m.Revenue.Set(result.Summary.TotalRevenue.InexactFloat64())
	m.Enriched.WithLabelValues(string(types.MatchExact)).Add(float64(result.Enrichment.ByExact))
	m.Enriched.WithLabelValues(string(types.MatchContains)).Add(float64(result.Enrichment.ByContains))
	m.Unmatched.Add(float64(result.Enrichment.Unmatched))
	m.Finish(start, end)
}

func rejectionEntries(rejections []*validation.ValidationError) []utils.ErrorLogEntry {
	entries := make([]utils.ErrorLogEntry, len(rejections))
	for i, rej := range rejections {
		entries[i] = utils.ErrorLogEntry{
			Line:   rej.Line,
			Kind:   string(rej.Kind),
			Reason: rej.Reason,
			Field:  rej.Field,
			Value:  rej.Value,
		}
	}
	return entries
}
