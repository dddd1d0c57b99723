// =============================================================================
// Sales Analytics - Configuration Module
// =============================================================================
//
// This module loads the main configuration file and merges command-line and
// environment overrides into it.
//
// PRECEDENCE (highest first):
//   1. Command-line flags
//   2. SALES_* environment variables (including a .env file)
//   3. config.yaml
//   4. Built-in defaults
//
// The flag and environment layers are resolved by the CLI and handed to
// ApplyOverrides. This package only knows about the file and the defaults.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no --config flag is given.
const DefaultConfigFile = "config.yaml"

// Catalog source names.
const (
	CatalogHTTP = "http"
	CatalogXLSX = "xlsx"
	CatalogNone = "none"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// DataDir holds the input ledger and the enriched side-file.
	// Default: "data"
	DataDir string `yaml:"data_dir"`

	// OutputDir holds the report, the workbook and the run logs.
	// Default: "output"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir receives a timestamped copy of the previous report before it
	// is overwritten. Empty disables archiving.
	ArchiveDir string `yaml:"archive_dir"`

	// =========================================================================
	// FILE SETTINGS
	// =========================================================================

	// InputFile is the pipe-delimited sales ledger.
	// Default: "data/sales_data.txt"
	InputFile string `yaml:"input_file"`

	// EnrichedFile is the enriched side-file written after enrichment.
	// Default: "data/enriched_sales_data.txt"
	EnrichedFile string `yaml:"enriched_file"`

	// ReportFile is the text report.
	// Default: "output/sales_report.txt"
	ReportFile string `yaml:"report_file"`

	// XLSXFile is the optional workbook export. Empty disables it.
	XLSXFile string `yaml:"xlsx_file"`

	// ErrorLog writes rejected records to output/error_log_*.txt.
	// Default: true
	ErrorLog *bool `yaml:"error_log"`

	// =========================================================================
	// REPORT SETTINGS
	// =========================================================================

	// CurrencySymbol prefixes money values in the report.
	// Default: "₹"
	CurrencySymbol string `yaml:"currency_symbol"`

	// LowThreshold is the quantity below which a product is a low performer.
	// Default: 10
	LowThreshold *int `yaml:"low_threshold"`

	// TopN is how many products the report ranks.
	// Default: 5
	TopN *int `yaml:"top_n"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// NESTED SETTINGS
	// =========================================================================

	Filters FilterConfig  `yaml:"filters"`
	Catalog CatalogConfig `yaml:"catalog"`
}

// FilterConfig holds the optional record filters. Unset means no filter.
type FilterConfig struct {
	Region    string   `yaml:"region"`
	MinAmount *float64 `yaml:"min_amount"`
	MaxAmount *float64 `yaml:"max_amount"`
}

// CatalogConfig selects and configures the product catalog source.
type CatalogConfig struct {
	// Source is "http", "xlsx" or "none".
	// Default: "http"
	Source string `yaml:"source"`

	// BaseURL is the products endpoint for the http source.
	// Default: "https://dummyjson.com/products"
	BaseURL string `yaml:"base_url"`

	// Limit is the maximum number of products requested.
	// Default: 100
	Limit int `yaml:"limit"`

	// Timeout bounds the single catalog request.
	// Default: 15s
	Timeout time.Duration `yaml:"timeout"`

	// XLSXFile is the offline catalog workbook for the xlsx source.
	XLSXFile string `yaml:"xlsx_file"`
}

// =============================================================================
// LOADING
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse the YAML.
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply default values.
	applyDefaults(&config)

	// Validate the configuration.
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Load is LoadMainConfig, except that a missing file yields the defaults.
func Load(configPath string) (*MainConfig, error) {
	cfg, err := LoadMainConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(config *MainConfig) {
	if config.DataDir == "" {
		config.DataDir = "data"
	}
	if config.OutputDir == "" {
		config.OutputDir = "output"
	}
	if config.InputFile == "" {
		config.InputFile = "data/sales_data.txt"
	}
	if config.EnrichedFile == "" {
		config.EnrichedFile = "data/enriched_sales_data.txt"
	}
	if config.ReportFile == "" {
		config.ReportFile = "output/sales_report.txt"
	}
	if config.ErrorLog == nil {
		enabled := true
		config.ErrorLog = &enabled
	}
	if config.CurrencySymbol == "" {
		config.CurrencySymbol = "₹"
	}
	if config.LowThreshold == nil {
		threshold := 10
		config.LowThreshold = &threshold
	}
	if config.TopN == nil {
		topN := 5
		config.TopN = &topN
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	// Catalog defaults.
	if config.Catalog.Source == "" {
		config.Catalog.Source = CatalogHTTP
	}
	if config.Catalog.BaseURL == "" {
		config.Catalog.BaseURL = "https://dummyjson.com/products"
	}
	if config.Catalog.Limit == 0 {
		config.Catalog.Limit = 100
	}
	if config.Catalog.Timeout == 0 {
		config.Catalog.Timeout = 15 * time.Second
	}
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *MainConfig) Validate() error {
	var problems []string

	if c.LowThreshold != nil && *c.LowThreshold < 0 {
		problems = append(problems, "low_threshold must not be negative")
	}
	if c.TopN != nil && *c.TopN < 0 {
		problems = append(problems, "top_n must not be negative")
	}
	if c.Filters.MinAmount != nil && c.Filters.MaxAmount != nil && *c.Filters.MinAmount > *c.Filters.MaxAmount {
		problems = append(problems, "filters.min_amount must not exceed filters.max_amount")
	}
	switch c.Catalog.Source {
	case CatalogHTTP, CatalogNone:
	case CatalogXLSX:
		if c.Catalog.XLSXFile == "" {
			problems = append(problems, "catalog.xlsx_file is required for the xlsx source")
		}
	default:
		problems = append(problems, fmt.Sprintf("catalog.source %q is not one of http, xlsx, none", c.Catalog.Source))
	}
	if c.Catalog.Limit < 0 {
		problems = append(problems, "catalog.limit must not be negative")
	}
	if c.Catalog.Timeout < 0 {
		problems = append(problems, "catalog.timeout must not be negative")
	}
	if strings.TrimSpace(c.CurrencySymbol) == "" {
		problems = append(problems, "currency_symbol must not be blank")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// ErrorLogEnabled reports whether rejected records are logged to a file.
func (c *MainConfig) ErrorLogEnabled() bool {
	return c.ErrorLog == nil || *c.ErrorLog
}

// =============================================================================
// OVERRIDES
// =============================================================================

// Overrides are values set on the command line or in the environment.
// Nil fields leave the file value untouched.
type Overrides struct {
	InputFile      *string
	EnrichedFile   *string
	ReportFile     *string
	XLSXFile       *string
	ArchiveDir     *string
	CurrencySymbol *string
	LogLevel       *string
	CatalogSource  *string
	CatalogXLSX    *string
	Region         *string
	MinAmount      *float64
	MaxAmount      *float64
	LowThreshold   *int
	TopN           *int
}

// ApplyOverrides merges o into the configuration and re-validates it.
func (c *MainConfig) ApplyOverrides(o Overrides) error {
	setString(&c.InputFile, o.InputFile)
	setString(&c.EnrichedFile, o.EnrichedFile)
	setString(&c.ReportFile, o.ReportFile)
	setString(&c.XLSXFile, o.XLSXFile)
	setString(&c.ArchiveDir, o.ArchiveDir)
	setString(&c.CurrencySymbol, o.CurrencySymbol)
	setString(&c.LogLevel, o.LogLevel)
	setString(&c.Catalog.Source, o.CatalogSource)
	setString(&c.Catalog.XLSXFile, o.CatalogXLSX)
	setString(&c.Filters.Region, o.Region)

	if o.MinAmount != nil {
		c.Filters.MinAmount = o.MinAmount
	}
	if o.MaxAmount != nil {
		c.Filters.MaxAmount = o.MaxAmount
	}
	if o.LowThreshold != nil {
		c.LowThreshold = o.LowThreshold
	}
	if o.TopN != nil {
		c.TopN = o.TopN
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
