// =============================================================================
// Sales Analytics - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the run configuration.
// A single YAML file describes where the ledger lives, where outputs go, how
// rows are parsed, which filters apply, and how the product catalog is reached.
//
// CONFIGURATION FILE:
//   config.yaml (override with --config). Every key is optional; missing keys
//   fall back to the defaults in applyDefaults. CLI flags override the file.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Match strategy names accepted by enrichment.strategy.
const (
	StrategyExact = "exact"
	StrategyFuzzy = "fuzzy"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the configuration for one pipeline run.
type Config struct {
	// =========================================================================
	// FILE SETTINGS
	// =========================================================================

	// InputFile is the pipe-delimited ledger (or an .xlsx workbook).
	// Default: "./data/sales_data.txt"
	InputFile string `yaml:"input_file"`

	// OutputDir receives every artifact the run produces.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// EnrichedFile is the enriched dataset file name inside OutputDir.
	// Default: "enriched_sales_data.txt"
	EnrichedFile string `yaml:"enriched_file"`

	// ReportFile is the text report file name inside OutputDir.
	// Default: "sales_report.txt"
	ReportFile string `yaml:"report_file"`

	// Currency is the symbol printed before money values in the report.
	// Default: "₹"
	Currency string `yaml:"currency"`

	// WorkbookEnabled turns on the XLSX export.
	WorkbookEnabled bool `yaml:"workbook_enabled"`

	// WorkbookFile is the XLSX export name format inside OutputDir.
	// Placeholders are expanded by utils.GenerateOutputFileName.
	// Default: "sales_{date}_{run}.xlsx"
	WorkbookFile string `yaml:"workbook_file"`

	// RejectLogFormat is the rejection log name format inside OutputDir.
	// Default: "rejected_rows_{timestamp}.txt"
	RejectLogFormat string `yaml:"reject_log_format"`

	// MetricsFile, when set, receives a Prometheus textfile after the run.
	MetricsFile string `yaml:"metrics_file"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional extra log destination. Stderr is always used.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	Parsing    ParsingConfig    `yaml:"parsing"`
	Filters    FilterConfig     `yaml:"filters"`
	Analytics  AnalyticsConfig  `yaml:"analytics"`
	Catalog    CatalogConfig    `yaml:"catalog"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
}

// ParsingConfig controls how ledger rows are read and validated.
type ParsingConfig struct {
	// DateLayout is the single accepted date layout (Go reference time).
	// Default: "2006-01-02"
	DateLayout string `yaml:"date_layout"`

	// Encoding of the ledger file.
	// Valid values: "auto", "utf-8", "windows-1252", "latin-1"
	// Default: "auto" (UTF-8, falling back to Windows-1252)
	Encoding string `yaml:"encoding"`

	// TransactionIDPrefix and CustomerIDPrefix, when set, are required
	// prefixes for the respective ID columns (for example "T" and "C").
	TransactionIDPrefix string `yaml:"transaction_id_prefix"`
	CustomerIDPrefix    string `yaml:"customer_id_prefix"`
}

// FilterConfig is the optional region/amount predicate applied after validation.
type FilterConfig struct {
	Regions []string `yaml:"regions"`

	// MinAmount and MaxAmount are decimal strings; empty means unbounded.
	MinAmount string `yaml:"min_amount"`
	MaxAmount string `yaml:"max_amount"`
}

// AnalyticsConfig controls ranking sizes.
type AnalyticsConfig struct {
	// TopN is the length of the top and bottom product lists.
	// Default: 5
	TopN int `yaml:"top_n"`

	// LowPerformerThreshold flags products whose total quantity is below it.
	// Default: 10
	LowPerformerThreshold int `yaml:"low_performer_threshold"`
}

// CatalogConfig describes how the product catalog is fetched.
type CatalogConfig struct {
	// URL of the products endpoint.
	// Default: "https://dummyjson.com/products"
	URL string `yaml:"url"`

	// File, when set, loads a catalog snapshot from disk instead of the API.
	File string `yaml:"file"`

	// Limit is passed as the "limit" query parameter.
	// Default: 100
	Limit int `yaml:"limit"`

	// Timeout bounds the whole fetch, retries included.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// Retries is the number of retries after the first attempt.
	Retries int `yaml:"retries"`
}

// EnrichmentConfig selects the name matching strategy.
type EnrichmentConfig struct {
	// Strategy is "exact" or "fuzzy" (exact, then substring in either direction).
	// Default: "fuzzy"
	Strategy string `yaml:"strategy"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file. An empty path, or a
//     path that does not exist when allowMissing is true, yields defaults.
//
// RETURNS:
//   - A pointer to the Config struct with defaults applied.
//   - An error if the file cannot be read, parsed, or fails validation.
func Load(configPath string, allowMissing bool) (*Config, error) {
	var cfg Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		case errors.Is(err, os.ErrNotExist) && allowMissing:
			// Defaults only.
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.InputFile == "" {
		cfg.InputFile = "./data/sales_data.txt"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.EnrichedFile == "" {
		cfg.EnrichedFile = "enriched_sales_data.txt"
	}
	if cfg.ReportFile == "" {
		cfg.ReportFile = "sales_report.txt"
	}
	if cfg.Currency == "" {
		cfg.Currency = "₹"
	}
	if cfg.WorkbookFile == "" {
		cfg.WorkbookFile = "sales_{date}_{run}.xlsx"
	}
	if cfg.RejectLogFormat == "" {
		cfg.RejectLogFormat = "rejected_rows_{timestamp}.txt"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Parsing.DateLayout == "" {
		cfg.Parsing.DateLayout = "2006-01-02"
	}
	if cfg.Parsing.Encoding == "" {
		cfg.Parsing.Encoding = "auto"
	}
	if cfg.Analytics.TopN == 0 {
		cfg.Analytics.TopN = 5
	}
	if cfg.Analytics.LowPerformerThreshold == 0 {
		cfg.Analytics.LowPerformerThreshold = 10
	}
	if cfg.Catalog.URL == "" {
		cfg.Catalog.URL = "https://dummyjson.com/products"
	}
	if cfg.Catalog.Limit == 0 {
		cfg.Catalog.Limit = 100
	}
	if cfg.Catalog.Timeout == 0 {
		cfg.Catalog.Timeout = 10 * time.Second
	}
	if cfg.Enrichment.Strategy == "" {
		cfg.Enrichment.Strategy = StrategyFuzzy
	}
}

// Validate checks value ranges. It is called by Load and again by the CLI
// after flags have been merged in.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}

	switch strings.ToLower(c.Parsing.Encoding) {
	case "auto", "utf-8", "utf8", "windows-1252", "cp1252", "latin-1", "iso-8859-1":
	default:
		return fmt.Errorf("unknown parsing.encoding %q", c.Parsing.Encoding)
	}

	if c.Analytics.TopN < 1 {
		return fmt.Errorf("analytics.top_n must be at least 1, got %d", c.Analytics.TopN)
	}
	if c.Analytics.LowPerformerThreshold < 0 {
		return fmt.Errorf("analytics.low_performer_threshold must not be negative")
	}

	if c.Catalog.Limit < 0 {
		return fmt.Errorf("catalog.limit must not be negative")
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("catalog.timeout must be positive")
	}
	if c.Catalog.Retries < 0 {
		return fmt.Errorf("catalog.retries must not be negative")
	}

	switch c.Enrichment.Strategy {
	case StrategyExact, StrategyFuzzy:
	default:
		return fmt.Errorf("unknown enrichment.strategy %q (want %q or %q)",
			c.Enrichment.Strategy, StrategyExact, StrategyFuzzy)
	}

	min, max, err := c.Filters.Bounds()
	if err != nil {
		return err
	}
	if min != nil && max != nil && min.GreaterThan(*max) {
		return fmt.Errorf("filters.min_amount %s is greater than filters.max_amount %s", min, max)
	}

	return nil
}

// Bounds parses the amount bounds. A nil pointer means unbounded.
func (f FilterConfig) Bounds() (min, max *decimal.Decimal, err error) {
	min, err = parseBound("filters.min_amount", f.MinAmount)
	if err != nil {
		return nil, nil, err
	}
	max, err = parseBound("filters.max_amount", f.MaxAmount)
	if err != nil {
		return nil, nil, err
	}
	return min, max, nil
}

func parseBound(name, raw string) (*decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return nil, nil
	}
	if strings.ContainsAny(raw, "eE") {
		return nil, fmt.Errorf("invalid %s %q: exponent notation is not accepted", name, raw)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return &d, nil
}
