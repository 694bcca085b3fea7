// =============================================================================
// Campaign Insights - Converter Module
// =============================================================================
//
// This module orchestrates the pipeline for a single campaign export, from
// reading the file to writing its reports.
//
// PIPELINE:
//   1. Resolve parsing settings (main config + matching source profile)
//   2. Read the export (CSV/TSV/TXT as text, XLSX as a workbook)
//   3. Parse it into canonical records
//   4. Aggregate per platform and overall
//   5. Write the configured reports (JSON, XLSX)
//   6. Archive the input when enabled
//
// CONCURRENCY:
//   A Converter handles one file and is not shared. The CLI runs files one
//   after another.
//
// =============================================================================

package converter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/campaign-insights/internal/aggregate"
	"github.com/ginjaninja78/campaign-insights/internal/config"
	"github.com/ginjaninja78/campaign-insights/internal/headermap"
	"github.com/ginjaninja78/campaign-insights/internal/ingest"
	"github.com/ginjaninja78/campaign-insights/internal/reportwriter"
	"github.com/ginjaninja78/campaign-insights/internal/types"
	"github.com/ginjaninja78/campaign-insights/internal/xlsxparser"
	"github.com/ginjaninja78/campaign-insights/pkg/utils"
)

// EncodingXLSX is recorded as the encoding of workbook input.
const EncodingXLSX = "xlsx"

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// Profile is the name of the source profile applied, if any.
	Profile string

	// OutputFiles are the reports written. Empty on failure or dry run.
	OutputFiles []string

	// ArchivePath is where the input was moved, if archiving ran.
	ArchivePath string

	// Success indicates whether the export was parsed.
	Success bool

	// Status is "ok", "warnings" or "failed".
	Status string

	// Error contains the error if processing failed.
	Error error

	Diagnostics types.Diagnostics
	Summary     types.Summary

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// StatusFailed is the Result status of a file that could not be processed.
const StatusFailed = "failed"

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	RowsTotal        int
	RowsParsed       int
	RowsSkipped      int
	RevenueEstimated int

	// Platforms lists the platforms found, in first-appearance order.
	Platforms []string

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the pipeline for one export.
type Converter struct {
	path       string
	profile    *config.SourceProfile
	mainConfig *config.MainConfig

	// headerVariants come from XLSX header templates.
	headerVariants map[headermap.Field][]string
	formats        []string
	dryRun         bool

	fileManager *utils.FileManager
	logger      *slog.Logger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithHeaderVariants adds header variants loaded from templates.
func WithHeaderVariants(v map[headermap.Field][]string) Option {
	return func(c *Converter) { c.headerVariants = v }
}

// WithFormats overrides the configured report formats.
func WithFormats(formats []string) Option {
	return func(c *Converter) { c.formats = formats }
}

// WithDryRun parses and aggregates without writing or archiving anything.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// New creates a Converter for path. profile may be nil.
func New(path string, profile *config.SourceProfile, mainConfig *config.MainConfig, opts ...Option) *Converter {
	c := &Converter{
		path:       path,
		profile:    profile,
		mainConfig: mainConfig,
		formats:    mainConfig.ReportFormats,
		fileManager: utils.NewFileManager(
			mainConfig.InputDir,
			mainConfig.OutputDir,
			mainConfig.InputArchiveDir,
		),
		logger: slog.Default(),
	}
	c.fileManager.UseTimestampSubdirs = mainConfig.ArchiveByDate
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("file", filepath.Base(path))
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the file.
func (c *Converter) Run() Result {
	startTime := time.Now()
	result := Result{FilePath: c.path, Status: StatusFailed}
	fail := func(err error) Result {
		result.Error = err
		result.Stats.ProcessingTime = time.Since(startTime)
		return result
	}

	// =========================================================================
	// STEP 1: RESOLVE SETTINGS
	// =========================================================================

	settings := c.mainConfig.Parsing
	if c.profile != nil {
		var err error
		settings, err = c.profile.Apply(settings)
		if err != nil {
			return fail(err)
		}
		result.Profile = c.profile.ProfileName
		c.logger.Debug("applying source profile", "profile", c.profile.ProfileName)
	}

	opts, err := settings.Options(c.headerVariants)
	if err != nil {
		return fail(fmt.Errorf("invalid parsing settings: %w", err))
	}
	opts.Source = filepath.Base(c.path)

	// =========================================================================
	// STEPS 2-3: READ AND PARSE
	// =========================================================================

	parsed, err := c.parse(opts)
	if err != nil {
		return fail(err)
	}
	diag := parsed.Diagnostics
	result.Diagnostics = diag
	c.logDiagnostics(diag)

	// =========================================================================
	// STEP 4: AGGREGATE
	// =========================================================================

	summary := aggregate.Aggregate(parsed.Records)
	result.Summary = summary
	result.Stats = ProcessingStats{
		RowsTotal:        diag.RowsTotal,
		RowsParsed:       diag.RowsParsed,
		RowsSkipped:      diag.RowsSkipped,
		RevenueEstimated: diag.RevenueEstimated,
	}
	for _, p := range summary.ByPlatform {
		result.Stats.Platforms = append(result.Stats.Platforms, p.Platform)
	}

	// =========================================================================
	// STEP 5: WRITE REPORTS
	// =========================================================================

	if !c.dryRun {
		report := reportwriter.New(filepath.Base(c.path), diag, summary, parsed.Records)
		outputs, err := c.writeReports(report)
		// Reports written before a failing format stay on disk and are listed.
		result.OutputFiles = outputs
		if err != nil {
			return fail(err)
		}

		// =====================================================================
		// STEP 6: ARCHIVE INPUT
		// =====================================================================

		if c.mainConfig.ArchiveInputs {
			archived, err := c.fileManager.ArchiveInputFile(c.path)
			if err != nil {
				// The reports exist; a failed move is not a failed parse.
				c.logger.Warn("failed to archive input", "error", err)
			} else {
				result.ArchivePath = archived
			}
		}
	}

	result.Success = true
	result.Status = diag.Status()
	result.Stats.ProcessingTime = time.Since(startTime)
	c.logger.Info("processed export",
		"status", result.Status,
		"records", diag.RowsParsed,
		"skipped", diag.RowsSkipped,
		"platforms", len(summary.ByPlatform),
		"duration", result.Stats.ProcessingTime,
	)
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// parse reads the file and runs the ingestion pipeline on it.
func (c *Converter) parse(opts ingest.Options) (*ingest.Result, error) {
	if utils.IsSpreadsheet(c.path) {
		export, err := xlsxparser.ReadExport(c.path)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("read workbook", "sheet", export.Sheet, "header_row", export.HeaderRow)
		opts.HeaderRow = export.HeaderRow
		res, err := ingest.ParseTable(export.Headers, export.Rows, opts)
		if err != nil {
			return nil, err
		}
		res.Diagnostics.Encoding = EncodingXLSX
		return res, nil
	}

	raw, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return ingest.ParseBytes(raw, opts)
}

// logDiagnostics reports what the parser decided. The parser itself never
// logs.
func (c *Converter) logDiagnostics(d types.Diagnostics) {
	c.logger.Debug("parsed export",
		"encoding", d.Encoding,
		"delimiter", d.Delimiter,
		"language", d.Language,
		"platform_source", d.PlatformSource,
		"detected_platform", d.DetectedPlatform,
		"fingerprint", d.HeaderFingerprint,
	)
	for field, col := range d.ColumnMap {
		c.logger.Debug("mapped column", "field", field, "header", col.Header, "strategy", col.Strategy)
	}
	if len(d.Unmapped) > 0 {
		c.logger.Debug("unmapped headers", "headers", d.Unmapped)
	}
	for _, w := range d.Warnings {
		c.logger.Warn(w)
	}
	if d.RowsSkipped > 0 {
		c.logger.Warn("skipped rows",
			"short", d.SkippedShort,
			"header_like", d.SkippedHeaderLike,
			"zero_metric", d.SkippedZeroMetric,
		)
	}
	if d.RevenueEstimated > 0 {
		c.logger.Info("revenue estimated from conversions", "rows", d.RevenueEstimated)
	}
}

// writeReports writes one report per configured format.
func (c *Converter) writeReports(report reportwriter.Report) ([]string, error) {
	params := map[string]string{"name": utils.BaseName(c.path)}
	var outputs []string
	for _, format := range c.formats {
		name := utils.GenerateOutputFileName(c.mainConfig.OutputNameFormat, params, format)
		outputPath := filepath.Join(c.mainConfig.OutputDir, name)

		var err error
		switch format {
		case config.FormatJSON:
			err = reportwriter.WriteJSONFile(outputPath, report)
		case config.FormatXLSX:
			err = reportwriter.WriteXLSX(outputPath, report)
		default:
			err = fmt.Errorf("unsupported report format %q", format)
		}
		if err != nil {
			return outputs, fmt.Errorf("failed to write %s report: %w", format, err)
		}
		c.logger.Debug("wrote report", "path", outputPath)
		outputs = append(outputs, outputPath)
	}
	return outputs, nil
}
