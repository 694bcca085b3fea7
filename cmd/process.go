// =============================================================================
// Campaign Insights - Process Command
// =============================================================================
//
// This file defines the 'process' command, which parses campaign exports and
// writes their reports.
//
// COMMAND USAGE:
//   campaigns process [flags]
//
// FLAGS:
//   --file     : Process one file instead of scanning the input directory
//   --dry-run  : Parse and summarize without writing reports or archiving
//   --format   : Report formats, overriding report_formats (json, xlsx)
//
// PROCESSING PIPELINE:
//   1. Load source profiles and header templates
//   2. Discover exports in the input directory (or take --file)
//   3. For each file, one after another:
//      a. Match a source profile
//      b. Parse the export
//      c. Aggregate per platform
//      d. Write the reports
//      e. Archive the input when enabled
//   4. Print the run summary and write it to the output directory
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/campaign-insights/internal/config"
	"github.com/ginjaninja78/campaign-insights/internal/converter"
	"github.com/ginjaninja78/campaign-insights/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	dryRun        bool
	filePath      string
	reportFormats []string
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Parse campaign exports and write reports",
	Long: `The process command scans the input directory for campaign exports
(.csv, .tsv, .txt, .xlsx), parses each one into canonical records, aggregates
them per platform and writes the configured reports.

Files are processed one after another. A file that cannot be parsed is
reported and left in place; with continue_on_error: false the run stops
there.

On success:
  - Reports are written to the output directory
  - The export is moved to the input archive when archive_inputs is set
  - A processing summary is written to the output directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Parse and summarize without writing reports or archiving",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Process only this file",
	)

	processCmd.Flags().StringSliceVar(
		&reportFormats,
		"format",
		nil,
		"Report formats to write (json, xlsx); overrides report_formats",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(out io.Writer) error {
	formats, err := resolveFormats(reportFormats, mainConfig.ReportFormats)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: LOAD PROFILES AND TEMPLATES
	// =========================================================================

	if !dryRun {
		if err := config.EnsureDirectories(mainConfig); err != nil {
			return err
		}
	}

	profiles, err := config.LoadProfiles(mainConfig.ProfilesDir)
	if err != nil {
		return fmt.Errorf("failed to load source profiles: %w", err)
	}
	logger.Debug("loaded source profiles", "count", len(profiles))

	variants, err := loadHeaderTemplates(mainConfig.HeaderTemplates)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 2: DISCOVER FILES
	// =========================================================================

	var files []string
	if filePath != "" {
		if !utils.FileExists(filePath) {
			return fmt.Errorf("input file not found: %s", filePath)
		}
		files = []string{filePath}
	} else {
		fm := utils.NewFileManager(mainConfig.InputDir, mainConfig.OutputDir, mainConfig.InputArchiveDir)
		files, err = fm.DiscoverInputFiles()
		if err != nil {
			return err
		}
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No campaign exports found in %s\n", mainConfig.InputDir)
		return nil
	}
	logger.Info("processing exports", "count", len(files), "dry_run", dryRun)

	// =========================================================================
	// STEP 3: PROCESS
	// =========================================================================

	batch := &converter.Batch{
		MainConfig: mainConfig,
		Profiles:   profiles,
		Logger:     logger,
		Options: []converter.Option{
			converter.WithHeaderVariants(variants),
			converter.WithFormats(formats),
			converter.WithDryRun(dryRun),
		},
	}
	results, summary := batch.Run(files)

	// =========================================================================
	// STEP 4: REPORT
	// =========================================================================

	for _, r := range results {
		printResult(out, r)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Files:      %d (ok %d, warnings %d, failed %d)\n",
		summary.TotalFiles, summary.SuccessfulFiles-summary.WarningFiles, summary.WarningFiles, summary.FailedFiles)
	fmt.Fprintf(out, "Records:    %d (skipped rows %d, revenue estimated %d)\n",
		summary.TotalRecords, summary.SkippedRows, summary.RevenueEstimated)
	fmt.Fprintf(out, "Elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if !dryRun {
		path, err := utils.WriteSummaryLog(summary, mainConfig.OutputDir)
		if err != nil {
			logger.Warn("failed to write processing summary", "error", err)
		} else {
			fmt.Fprintf(out, "Summary:    %s\n", path)
		}
	}

	if summary.FailedFiles > 0 {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

func printResult(out io.Writer, r converter.Result) {
	name := filepath.Base(r.FilePath)
	if !r.Success {
		fmt.Fprintf(out, "  %-9s %s: %v\n", r.Status, name, r.Error)
		for _, path := range r.OutputFiles {
			fmt.Fprintf(out, "            kept %s\n", path)
		}
		return
	}
	line := fmt.Sprintf("  %-9s %s (%d records, %s)", r.Status, name, r.Stats.RowsParsed, strings.Join(r.Stats.Platforms, ", "))
	if len(r.OutputFiles) > 0 {
		line += " -> " + strings.Join(r.OutputFiles, ", ")
	}
	fmt.Fprintln(out, line)
}

// resolveFormats validates --format, falling back to the configured list.
func resolveFormats(flag, configured []string) ([]string, error) {
	if len(flag) == 0 {
		return configured, nil
	}
	formats := make([]string, 0, len(flag))
	for _, f := range flag {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != config.FormatJSON && f != config.FormatXLSX {
			return nil, fmt.Errorf("unsupported report format %q (use json or xlsx)", f)
		}
		formats = append(formats, f)
	}
	return formats, nil
}
