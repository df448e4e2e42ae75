// Package metrics records per-run pipeline metrics in a private Prometheus
// registry. Batch runs have no scrape endpoint, so the registry is written to
// a node-exporter textfile at the end of the run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sales"

// Registry holds the collectors of one run, registered on a private
// prometheus.Registry so runs in the same process never share counters.
type Registry struct {
	reg *prometheus.Registry

	RowsRead         prometheus.Counter
	RowsRejected     *prometheus.CounterVec
	RecordsValid     prometheus.Counter
	RecordsFiltered  *prometheus.CounterVec
	AmountMismatches prometheus.Counter

	Revenue prometheus.Gauge

	CatalogEntries  prometheus.Gauge
	CatalogDegraded prometheus.Gauge
	CatalogFetchSec prometheus.Histogram

	Enriched  *prometheus.CounterVec
	Unmatched prometheus.Counter

	RunDurationSec prometheus.Gauge
	LastRunUnix    prometheus.Gauge
}

// NewRegistry creates and registers every run collector.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	rowsRead := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "rows_read_total",
		Help: "Non-blank data rows read from the ledger.",
	})
	rowsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "rows_rejected_total",
		Help: "Ledger rows rejected by validation.",
	}, []string{"reason"})
	valid := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "records_valid_total",
		Help: "Records that passed validation.",
	})
	filtered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "records_filtered_total",
		Help: "Valid records removed by the region/amount filter.",
	}, []string{"cause"})
	mismatches := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "amount_mismatches_total",
		Help: "Valid rows whose source amount disagreed with quantity * unit_price.",
	})
	revenue := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "revenue",
		Help: "Total revenue of the filtered records.",
	})
	catalogEntries := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "catalog_entries",
		Help: "Catalog entries available for enrichment.",
	})
	catalogDegraded := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "catalog_degraded",
		Help: "1 when the catalog fetch failed and enrichment ran without it.",
	})
	catalogFetch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "catalog_fetch_seconds",
		Help:    "Catalog fetch latency.",
		Buckets: prometheus.DefBuckets,
	})
	enriched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "enriched_total",
		Help: "Records matched to a catalog entry.",
	}, []string{"strategy"})
	unmatched := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "unmatched_total",
		Help: "Records without a catalog match.",
	})
	runDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "run_duration_seconds",
		Help: "Wall time of the last run.",
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "last_run_timestamp_seconds",
		Help: "Unix time the last run finished.",
	})

	r.MustRegister(rowsRead, rowsRejected, valid, filtered, mismatches, revenue,
		catalogEntries, catalogDegraded, catalogFetch, enriched, unmatched, runDuration, lastRun)

	return &Registry{
		reg:              r,
		RowsRead:         rowsRead,
		RowsRejected:     rowsRejected,
		RecordsValid:     valid,
		RecordsFiltered:  filtered,
		AmountMismatches: mismatches,
		Revenue:          revenue,
		CatalogEntries:   catalogEntries,
		CatalogDegraded:  catalogDegraded,
		CatalogFetchSec:  catalogFetch,
		Enriched:         enriched,
		Unmatched:        unmatched,
		RunDurationSec:   runDuration,
		LastRunUnix:      lastRun,
	}
}

// ObserveCatalog records the outcome of one catalog load.
func (r *Registry) ObserveCatalog(entries int, degraded bool, elapsed time.Duration) {
	r.CatalogEntries.Set(float64(entries))
	if degraded {
		r.CatalogDegraded.Set(1)
	} else {
		r.CatalogDegraded.Set(0)
	}
	r.CatalogFetchSec.Observe(elapsed.Seconds())
}

// Finish stamps the run duration and completion time.
func (r *Registry) Finish(start, end time.Time) {
	r.RunDurationSec.Set(end.Sub(start).Seconds())
	r.LastRunUnix.Set(float64(end.Unix()))
}

// Gatherer exposes the private registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile writes every metric in the Prometheus text format. The file
// is replaced atomically.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
