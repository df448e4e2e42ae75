package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	require.NoError(t, err)

	assert.Equal(t, "./data/sales_data.txt", cfg.InputFile)
	assert.Equal(t, "2006-01-02", cfg.Parsing.DateLayout)
	assert.Equal(t, 5, cfg.Analytics.TopN)
	assert.Equal(t, 10, cfg.Analytics.LowPerformerThreshold)
	assert.Equal(t, 10*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, StrategyFuzzy, cfg.Enrichment.Strategy)
	assert.Equal(t, "₹", cfg.Currency)
}

func TestLoad_MissingFileNotAllowed(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	assert.Error(t, err)
}

func TestLoad_OverridesAndDurations(t *testing.T) {
	path := writeConfig(t, `
input_file: ledger.txt
output_dir: out
log_level: debug
filters:
  regions: [North, South]
  min_amount: "1,000"
  max_amount: "5000.50"
analytics:
  top_n: 3
catalog:
  timeout: 2s
  retries: 1
enrichment:
  strategy: exact
`)

	cfg, err := Load(path, false)
	require.NoError(t, err)

	assert.Equal(t, "ledger.txt", cfg.InputFile)
	assert.Equal(t, []string{"North", "South"}, cfg.Filters.Regions)
	assert.Equal(t, 3, cfg.Analytics.TopN)
	assert.Equal(t, 2*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, StrategyExact, cfg.Enrichment.Strategy)

	min, max, err := cfg.Filters.Bounds()
	require.NoError(t, err)
	require.NotNil(t, min)
	require.NotNil(t, max)
	assert.Equal(t, "1000", min.String())
	assert.Equal(t, "5000.5", max.String())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"unknown strategy", func(c *Config) { c.Enrichment.Strategy = "soundex" }},
		{"bad top n", func(c *Config) { c.Analytics.TopN = -1 }},
		{"bad encoding", func(c *Config) { c.Parsing.Encoding = "ebcdic" }},
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }},
		{"min above max", func(c *Config) { c.Filters.MinAmount = "10"; c.Filters.MaxAmount = "5" }},
		{"unparsable bound", func(c *Config) { c.Filters.MinAmount = "ten" }},
		{"exponent bound", func(c *Config) { c.Filters.MaxAmount = "1e300000000" }},
		{"negative retries", func(c *Config) { c.Catalog.Retries = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "analytics: [unclosed")
	_, err := Load(path, false)
	assert.Error(t, err)
}
