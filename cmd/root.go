// =============================================================================
// Campaign Insights - Root Command
// =============================================================================
//
// This file defines the root command and the setup shared by every
// subcommand: configuration loading and the structured logger.
//
// GLOBAL FLAGS:
//   --config   : Path to the main configuration file (default config.yaml)
//   --verbose  : Log at debug level regardless of log_level
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/campaign-insights/internal/config"
	"github.com/ginjaninja78/campaign-insights/internal/headermap"
	"github.com/ginjaninja78/campaign-insights/internal/xlsxparser"
)

// =============================================================================
// GLOBAL FLAGS AND STATE
// =============================================================================

// cfgFile is the path to the main configuration file.
var cfgFile string

// verbose forces debug logging.
var verbose bool

// mainConfig and logger are set before any subcommand runs.
var (
	mainConfig *config.MainConfig
	logger     *slog.Logger
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Campaign Insights - normalize and summarize ad platform exports",
	Long: `Campaign Insights ingests campaign exports from ad platforms (Meta,
Google Ads, LinkedIn, TikTok, Twitter and others), in CSV or XLSX, in any
of the common European or US number formats, and turns them into canonical
records with per-platform KPIs.

Key Features:
  - Delimiter, encoding and header language detection
  - Fuzzy, multilingual header mapping with configurable variants
  - Platform inference from header vocabulary
  - JSON and XLSX reports with per-file diagnostics

Example Usage:
  campaigns process                      # Process every export in the input directory
  campaigns process --file may.csv       # Process one export
  campaigns inspect may.csv              # Show how an export would be parsed
  campaigns validate --config ./my.yaml  # Check configuration, profiles and templates`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		cfg, err := config.LoadMainConfig(cfgFile, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		mainConfig = cfg
		logger = newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat, verbose)
		slog.SetDefault(logger)
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. It is called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultConfigPath,
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// newLogger builds the process-wide logger.
func newLogger(w io.Writer, level, format string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// loadHeaderTemplates merges the header variants of every configured
// template workbook.
func loadHeaderTemplates(paths []string) (map[headermap.Field][]string, error) {
	variants := make(map[headermap.Field][]string)
	for _, path := range paths {
		tmpl, err := xlsxparser.LoadHeaderTemplate(path)
		if err != nil {
			return nil, fmt.Errorf("header template %s: %w", path, err)
		}
		for f, vs := range tmpl.Variants() {
			variants[f] = append(variants[f], vs...)
		}
		logger.Debug("loaded header template", "path", path, "entries", len(tmpl.Entries))
	}
	return variants, nil
}
