// =============================================================================
// Campaign Insights - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for batch processing:
//   - Discovery of campaign exports in the input directory
//   - Archival of processed exports
//   - Report file naming
//   - The per-run processing summary
//
// ARCHIVAL STRATEGY:
//   - Exports are moved to input_archive after successful processing, when
//     archiving is enabled, optionally under YYYY/MM/DD
//   - Failed exports stay where they are so they can be fixed and retried
//   - The processing summary is written to the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SupportedExtensions are the input file types picked up by discovery.
var SupportedExtensions = []string{".csv", ".tsv", ".txt", ".xlsx"}

// IsSupported reports whether path has a supported extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsSpreadsheet reports whether path is read as a workbook rather than text.
func IsSpreadsheet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// =============================================================================
// FILE MANAGER STRUCTURE
// =============================================================================

// FileManager handles discovery and archival of campaign exports.
type FileManager struct {
	// InputDir is scanned for exports.
	InputDir string

	// OutputDir receives reports and the processing summary.
	OutputDir string

	// InputArchiveDir receives processed exports.
	InputArchiveDir string

	// UseTimestampSubdirs archives into YYYY/MM/DD subdirectories.
	UseTimestampSubdirs bool
}

// NewFileManager creates a new FileManager with the given directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
	}
}

// DiscoverInputFiles returns the supported files directly inside InputDir,
// sorted by name. Hidden files and Excel lock files ("~$...") are skipped.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
			continue
		}
		if IsSupported(name) {
			result = append(result, filepath.Join(fm.InputDir, name))
		}
	}
	sort.Strings(result)
	return result, nil
}

// ArchiveInputFile moves a processed export into InputArchiveDir and returns
// its new path. An existing file of the same name is not overwritten; the
// archived copy gets a timestamp suffix instead.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.archivePath(filePath)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if FileExists(archivePath) {
		ext := filepath.Ext(archivePath)
		archivePath = strings.TrimSuffix(archivePath, ext) + "_" + time.Now().Format("20060102_150405") + ext
	}

	// Rename fails across devices; fall back to copy and remove.
	if err := os.Rename(filePath, archivePath); err != nil {
		if err := copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := os.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove archived input: %w", err)
		}
	}
	return archivePath, nil
}

// archivePath places the archived file in InputArchiveDir, or in a dated
// subdirectory of it.
func (fm *FileManager) archivePath(filePath string) string {
	dir := fm.InputArchiveDir
	if fm.UseTimestampSubdirs {
		dir = filepath.Join(dir, filepath.FromSlash(time.Now().Format("2006/01/02")))
	}
	return filepath.Join(dir, filepath.Base(filePath))
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName expands a name format and appends ext.
//
// PLACEHOLDERS:
//   {uuid}      - a random UUID
//   {name}      - the input file name without extension
//   {timestamp} - 20060102_150405
//   {date}      - 20060102
//   {time}      - 150405
//
// params adds or overrides placeholders ("name" -> "{name}").
func GenerateOutputFileName(format string, params map[string]string, ext string) string {
	now := time.Now()
	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary describes one batch run.
type ProcessingSummary struct {
	StartTime time.Time
	EndTime   time.Time

	TotalFiles      int
	SuccessfulFiles int
	WarningFiles    int
	FailedFiles     int

	TotalRecords     int
	SkippedRows      int
	RevenueEstimated int

	ProcessedFiles  []ProcessedFileInfo
	FailedFilesList []FailedFileInfo
}

// ProcessedFileInfo describes one successfully parsed export.
type ProcessedFileInfo struct {
	InputFile   string
	OutputFiles []string
	ArchivePath string
	Status      string
	Records     int
	Skipped     int
	Platforms   []string
	ProcessTime time.Duration
}

// FailedFileInfo describes one export that could not be processed.
// OutputFiles lists reports written before the failure.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	OutputFiles  []string
}

// WriteSummaryLog writes a human-readable run summary to outputDir and
// returns its path.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	if err := writeSummary(file, summary); err != nil {
		return "", err
	}
	return summaryPath, nil
}

func writeSummary(w io.Writer, summary ProcessingSummary) error {
	writer := bufio.NewWriter(w)
	rule := strings.Repeat("=", 80) + "\n"
	thin := strings.Repeat("-", 80) + "\n"

	fmt.Fprintf(writer, "Campaign Insights - Processing Summary\n%s\n", rule)
	fmt.Fprintf(writer, "Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String())
	fmt.Fprintf(writer, "Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Successful:         %d\n"+
		"  With Warnings:      %d\n"+
		"  Failed:             %d\n"+
		"  Records:            %d\n"+
		"  Skipped Rows:       %d\n"+
		"  Revenue Estimated:  %d\n\n",
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.WarningFiles,
		summary.FailedFiles,
		summary.TotalRecords,
		summary.SkippedRows,
		summary.RevenueEstimated)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Processed Files:\n" + thin)
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Status:       %s\n", pf.Status)
			for _, out := range pf.OutputFiles {
				fmt.Fprintf(writer, "  Output:       %s\n", out)
			}
			if pf.ArchivePath != "" {
				fmt.Fprintf(writer, "  Archived To:  %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(writer, "  Records:      %d\n", pf.Records)
			fmt.Fprintf(writer, "  Skipped:      %d\n", pf.Skipped)
			fmt.Fprintf(writer, "  Platforms:    %s\n", strings.Join(pf.Platforms, ", "))
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n" + thin)
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:   %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error:  %s\n", ff.ErrorMessage)
			for _, out := range ff.OutputFiles {
				fmt.Fprintf(writer, "  Output: %s\n", out)
			}
			writer.WriteString("\n")
		}
	}

	writer.WriteString(rule + "End of Summary\n")
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
