package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "data/sales_data.txt", cfg.InputFile)
	assert.Equal(t, "data/enriched_sales_data.txt", cfg.EnrichedFile)
	assert.Equal(t, "output/sales_report.txt", cfg.ReportFile)
	assert.Empty(t, cfg.XLSXFile)
	assert.Empty(t, cfg.ArchiveDir)
	assert.True(t, cfg.ErrorLogEnabled())
	assert.Equal(t, "₹", cfg.CurrencySymbol)
	assert.Equal(t, 10, *cfg.LowThreshold)
	assert.Equal(t, 5, *cfg.TopN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, CatalogHTTP, cfg.Catalog.Source)
	assert.Equal(t, "https://dummyjson.com/products", cfg.Catalog.BaseURL)
	assert.Equal(t, 100, cfg.Catalog.Limit)
	assert.Equal(t, 15*time.Second, cfg.Catalog.Timeout)
	assert.Nil(t, cfg.Filters.MinAmount)
	assert.NoError(t, cfg.Validate())
}

func TestLoadMainConfig(t *testing.T) {
	path := writeConfig(t, `
input_file: ledger/sales.txt
currency_symbol: "$"
low_threshold: 0
top_n: 3
error_log: false
filters:
  region: North
  min_amount: 100
catalog:
  source: xlsx
  xlsx_file: catalog.xlsx
  timeout: 2s
`)

	cfg, err := LoadMainConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ledger/sales.txt", cfg.InputFile)
	assert.Equal(t, "$", cfg.CurrencySymbol)
	assert.Equal(t, 0, *cfg.LowThreshold)
	assert.Equal(t, 3, *cfg.TopN)
	assert.False(t, cfg.ErrorLogEnabled())
	assert.Equal(t, "North", cfg.Filters.Region)
	require.NotNil(t, cfg.Filters.MinAmount)
	assert.Equal(t, 100.0, *cfg.Filters.MinAmount)
	assert.Nil(t, cfg.Filters.MaxAmount)
	assert.Equal(t, CatalogXLSX, cfg.Catalog.Source)
	assert.Equal(t, 2*time.Second, cfg.Catalog.Timeout)
	assert.Equal(t, "output/sales_report.txt", cfg.ReportFile)
}

func TestLoadMainConfig_Errors(t *testing.T) {
	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadMainConfig(writeConfig(t, "top_n: [1, 2"))
	assert.ErrorContains(t, err, "failed to parse config file")

	_, err = LoadMainConfig(writeConfig(t, "catalog:\n  source: ftp\n"))
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	neg := -1
	lo, hi := 500.0, 100.0

	tests := []struct {
		name   string
		mutate func(*MainConfig)
		want   string
	}{
		{"negative threshold", func(c *MainConfig) { c.LowThreshold = &neg }, "low_threshold"},
		{"negative top n", func(c *MainConfig) { c.TopN = &neg }, "top_n"},
		{"inverted amounts", func(c *MainConfig) { c.Filters.MinAmount, c.Filters.MaxAmount = &lo, &hi }, "min_amount"},
		{"unknown source", func(c *MainConfig) { c.Catalog.Source = "ftp" }, "catalog.source"},
		{"xlsx without file", func(c *MainConfig) { c.Catalog.Source = CatalogXLSX }, "catalog.xlsx_file"},
		{"blank currency", func(c *MainConfig) { c.CurrencySymbol = "  " }, "currency_symbol"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := Default()
	input := "other.txt"
	region := "South"
	minAmount := 10.0
	topN := 2

	require.NoError(t, cfg.ApplyOverrides(Overrides{
		InputFile: &input,
		Region:    &region,
		MinAmount: &minAmount,
		TopN:      &topN,
	}))

	assert.Equal(t, "other.txt", cfg.InputFile)
	assert.Equal(t, "South", cfg.Filters.Region)
	assert.Equal(t, 10.0, *cfg.Filters.MinAmount)
	assert.Equal(t, 2, *cfg.TopN)
	assert.Equal(t, "output/sales_report.txt", cfg.ReportFile)

	bad := "ftp"
	assert.Error(t, cfg.ApplyOverrides(Overrides{CatalogSource: &bad}))
}

func TestLoadMainConfig_Example(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
