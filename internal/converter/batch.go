package converter

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/campaign-insights/internal/config"
	"github.com/ginjaninja78/campaign-insights/internal/types"
	"github.com/ginjaninja78/campaign-insights/pkg/utils"
)

// Batch processes several exports with shared settings.
type Batch struct {
	MainConfig *config.MainConfig
	Profiles   []*config.SourceProfile

	// Options are passed to every Converter.
	Options []Option

	Logger *slog.Logger
}

// Run processes files one after another and returns every result plus the
// run summary. When ContinueOnError is off, the first failure stops the run
// and the remaining files are left untouched.
func (b *Batch) Run(files []string) ([]Result, utils.ProcessingSummary) {
	logger := b.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts := append([]Option{WithLogger(logger)}, b.Options...)

	summary := utils.ProcessingSummary{StartTime: time.Now(), TotalFiles: len(files)}
	results := make([]Result, 0, len(files))

	for _, file := range files {
		profile := config.MatchProfile(b.Profiles, file)
		result := New(file, profile, b.MainConfig, opts...).Run()
		results = append(results, result)
		record(&summary, result)

		if !result.Success {
			logger.Error("failed to process export", "file", filepath.Base(file), "error", result.Error)
			if !b.MainConfig.ContinueOnError {
				logger.Warn("stopping after first failure", "remaining", len(files)-len(results))
				break
			}
		}
	}

	summary.EndTime = time.Now()
	return results, summary
}

func record(summary *utils.ProcessingSummary, r Result) {
	if !r.Success {
		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    r.FilePath,
			ErrorMessage: r.Error.Error(),
			OutputFiles:  r.OutputFiles,
		})
		return
	}

	summary.SuccessfulFiles++
	if r.Status == types.StatusWarnings {
		summary.WarningFiles++
	}
	summary.TotalRecords += r.Stats.RowsParsed
	summary.SkippedRows += r.Stats.RowsSkipped
	summary.RevenueEstimated += r.Stats.RevenueEstimated
	summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
		InputFile:   r.FilePath,
		OutputFiles: r.OutputFiles,
		ArchivePath: r.ArchivePath,
		Status:      r.Status,
		Records:     r.Stats.RowsParsed,
		Skipped:     r.Stats.RowsSkipped,
		Platforms:   r.Stats.Platforms,
		ProcessTime: r.Stats.ProcessingTime,
	})
}
