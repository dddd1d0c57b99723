// =============================================================================
// Sales Analytics - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (like 'process', 'validate') are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesreport)
//   ├── processCmd (salesreport process)
//   ├── validateCmd (salesreport validate)
//   └── versionCmd (salesreport version)
//
// CONFIGURATION:
//   Before any subcommand runs, the root command:
//   1. Loads an optional .env file into the environment
//   2. Loads the YAML configuration file (defaults when it is missing)
//   3. Applies SALES_* environment variables and command-line flags on top
//   4. Builds the logger and attaches it to the command context
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sales-analytics/internal/config"
	"github.com/ginjaninja78/sales-analytics/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of every environment override (SALES_REGION, ...).
const envPrefix = "SALES"

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile is the dotenv file loaded before reading the environment.
var envFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig is the merged configuration, set before any subcommand runs.
var appConfig *config.MainConfig

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesreport",
	Short: "Sales Analytics - Analyze a pipe-delimited sales ledger",
	Long: `Sales Analytics reads a pipe-delimited sales ledger, cleans and validates
it, computes revenue, regional, product, customer and daily views, enriches
each transaction from a product catalog and writes a fixed-layout text report.

Example Usage:
  salesreport process                          # Run with config.yaml (or defaults)
  salesreport process --region North           # Only North transactions
  salesreport process --interactive            # Choose filters at a prompt
  salesreport validate --input data/sales.txt  # Check the ledger without a report`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "An error occurred. Please check your input files and configuration.")
		fmt.Fprintf(os.Stderr, "Details: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	flags := rootCmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", config.DefaultConfigFile, "Path to the main configuration file")
	flags.StringVar(&envFile, "env-file", ".env", "Dotenv file loaded before reading SALES_* variables")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	flags.String("input", "", "Sales ledger to read (overrides input_file)")
	flags.String("region", "", "Keep only transactions from this region")
	flags.Float64("min-amount", 0, "Keep only transactions with amount >= this value")
	flags.Float64("max-amount", 0, "Keep only transactions with amount <= this value")
}

// initConfig merges the configuration layers and sets up logging.
func initConfig(cmd *cobra.Command) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	v, err := newViper(cmd.Flags())
	if err != nil {
		return err
	}
	overrides, err := collectOverrides(v)
	if err != nil {
		return err
	}
	if err := cfg.ApplyOverrides(overrides); err != nil {
		return err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.New(level)
	cmd.SetContext(logger.WithContext(cmd.Context(), log))

	log.Debug().Str("config", cfgFile).Str("input", cfg.InputFile).Str("catalog", cfg.Catalog.Source).Msg("Configuration loaded")

	appConfig = cfg
	return nil
}

// =============================================================================
// FLAG AND ENVIRONMENT OVERRIDES
// =============================================================================

// overrideKeys are the flag names that may also come from SALES_* variables.
// A dash becomes an underscore in the variable name (SALES_MIN_AMOUNT).
var overrideKeys = []string{
	"input", "region", "min-amount", "max-amount",
	"report", "enriched", "xlsx", "archive-dir",
	"currency", "low-threshold", "top-n", "log-level",
	"catalog", "catalog-xlsx",
}

// newViper binds the command's flags and the SALES_* environment.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	for _, key := range overrideKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
		if f := flags.Lookup(key); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", key, err)
			}
		}
	}
	return v, nil
}

// collectOverrides turns the values set in v into config overrides.
func collectOverrides(v *viper.Viper) (config.Overrides, error) {
	var o config.Overrides
	var err error

	o.InputFile = stringValue(v, "input")
	o.Region = stringValue(v, "region")
	o.ReportFile = stringValue(v, "report")
	o.EnrichedFile = stringValue(v, "enriched")
	o.XLSXFile = stringValue(v, "xlsx")
	o.ArchiveDir = stringValue(v, "archive-dir")
	o.CurrencySymbol = stringValue(v, "currency")
	o.LogLevel = stringValue(v, "log-level")
	o.CatalogSource = stringValue(v, "catalog")
	o.CatalogXLSX = stringValue(v, "catalog-xlsx")

	if o.MinAmount, err = floatValue(v, "min-amount"); err != nil {
		return o, err
	}
	if o.MaxAmount, err = floatValue(v, "max-amount"); err != nil {
		return o, err
	}
	if o.LowThreshold, err = intValue(v, "low-threshold"); err != nil {
		return o, err
	}
	if o.TopN, err = intValue(v, "top-n"); err != nil {
		return o, err
	}
	return o, nil
}

func stringValue(v *viper.Viper, key string) *string {
	if !v.IsSet(key) {
		return nil
	}
	s := v.GetString(key)
	return &s
}

func floatValue(v *viper.Viper, key string) (*float64, error) {
	if !v.IsSet(key) {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.GetString(key)), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid value for %s: %q", key, v.GetString(key))
	}
	return &f, nil
}

func intValue(v *viper.Viper, key string) (*int, error) {
	if !v.IsSet(key) {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return nil, fmt.Errorf("invalid value for %s: %q", key, v.GetString(key))
	}
	return &n, nil
}
