package converter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/campaign-insights/internal/config"
	"github.com/ginjaninja78/campaign-insights/internal/ingest"
	"github.com/ginjaninja78/campaign-insights/internal/reportwriter"
	"github.com/ginjaninja78/campaign-insights/internal/types"
	"github.com/ginjaninja78/campaign-insights/pkg/utils"
)

const sampleCSV = "Campaign;Platform;Impressions;Clicks;Conversions;Cost;Revenue\n" +
	"Spring;Facebook;1.000;50;5;100;200\n" +
	"Summer;Google;2.000;40;2;80,5;\n"

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "archive")
	cfg.OutputNameFormat = "{name}_{uuid}"
	for _, dir := range []string{cfg.InputDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return cfg
}

func writeInput(t *testing.T, cfg *config.MainConfig, name, content string) string {
	t.Helper()
	path := filepath.Join(cfg.InputDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunWritesReportsAndArchives(t *testing.T) {
	cfg := testConfig(t)
	cfg.ReportFormats = []string{config.FormatJSON, config.FormatXLSX}
	cfg.ArchiveInputs = true
	input := writeInput(t, cfg, "may.csv", sampleCSV)

	result := New(input, nil, cfg, WithLogger(quietLogger())).Run()
	if !result.Success {
		t.Fatalf("run failed: %v", result.Error)
	}
	if result.Status != types.StatusWarnings {
		t.Errorf("status = %s (revenue was estimated)", result.Status)
	}
	if result.Stats.RowsParsed != 2 || result.Stats.RevenueEstimated != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if len(result.Stats.Platforms) != 2 || result.Stats.Platforms[1] != "Google Ads" {
		t.Errorf("platforms = %v", result.Stats.Platforms)
	}
	if result.Diagnostics.Source != "may.csv" || result.Diagnostics.Delimiter == "" {
		t.Errorf("diagnostics = %+v", result.Diagnostics)
	}

	if len(result.OutputFiles) != 2 {
		t.Fatalf("outputs = %v", result.OutputFiles)
	}
	data, err := os.ReadFile(result.OutputFiles[0])
	if err != nil {
		t.Fatal(err)
	}
	var report reportwriter.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Records) != 2 || report.Summary.Overall.Records != 2 {
		t.Errorf("json report = %+v", report.Summary.Overall)
	}
	if filepath.Ext(result.OutputFiles[1]) != ".xlsx" || !utils.FileExists(result.OutputFiles[1]) {
		t.Errorf("xlsx report = %s", result.OutputFiles[1])
	}

	if result.ArchivePath == "" || utils.FileExists(input) || !utils.FileExists(result.ArchivePath) {
		t.Errorf("input not archived: %s", result.ArchivePath)
	}
}

func TestRunXLSXInput(t *testing.T) {
	cfg := testConfig(t)
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Meta campaign export"},
		{"Campaign name", "Ad set name", "Impressions", "Link clicks", "Amount spent (EUR)", "Results"},
		{"Spring", "Broad", 1000, 40, 120.5, 4},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		row := row
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	input := filepath.Join(cfg.InputDir, "meta.xlsx")
	if err := f.SaveAs(input); err != nil {
		t.Fatal(err)
	}

	result := New(input, nil, cfg, WithLogger(quietLogger())).Run()
	if !result.Success {
		t.Fatalf("run failed: %v", result.Error)
	}
	if result.Diagnostics.Encoding != EncodingXLSX || result.Diagnostics.Delimiter != "" {
		t.Errorf("diagnostics = %+v", result.Diagnostics)
	}
	if len(result.Summary.ByPlatform) != 1 || result.Summary.ByPlatform[0].Platform != "Meta" {
		t.Fatalf("platforms = %+v", result.Summary.ByPlatform)
	}
	if o := result.Summary.Overall; o.Clicks != 40 || o.Cost != 120.5 {
		t.Errorf("overall = %+v", o)
	}

	// The title row pushes the header to sheet row 2.
	if len(result.OutputFiles) != 1 {
		t.Fatalf("outputs = %v", result.OutputFiles)
	}
	data, err := os.ReadFile(result.OutputFiles[0])
	if err != nil {
		t.Fatal(err)
	}
	var report reportwriter.Report
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Records) != 1 || report.Records[0].Row != 3 {
		t.Errorf("records = %+v, want one from sheet row 3", report.Records)
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	cfg.ArchiveInputs = true
	input := writeInput(t, cfg, "may.csv", sampleCSV)

	result := New(input, nil, cfg, WithLogger(quietLogger()), WithDryRun(true)).Run()
	if !result.Success || len(result.OutputFiles) != 0 || result.ArchivePath != "" {
		t.Fatalf("result = %+v", result)
	}
	entries, err := os.ReadDir(cfg.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 || !utils.FileExists(input) {
		t.Errorf("dry run touched files: %v", entries)
	}
}

func TestRunFailure(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "empty.csv", "")

	result := New(input, nil, cfg, WithLogger(quietLogger())).Run()
	if result.Success || result.Status != StatusFailed {
		t.Fatalf("result = %+v", result)
	}
	if !errors.Is(result.Error, ingest.ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", result.Error)
	}
}

func TestRunKeepsReportsWrittenBeforeFailure(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "may.csv", sampleCSV)

	formats := []string{config.FormatJSON, "pdf"}
	result := New(input, nil, cfg, WithLogger(quietLogger()), WithFormats(formats)).Run()
	if result.Success || result.Error == nil {
		t.Fatalf("result = %+v", result)
	}
	if len(result.OutputFiles) != 1 || !utils.FileExists(result.OutputFiles[0]) {
		t.Fatalf("outputs = %v", result.OutputFiles)
	}

	batch := &Batch{MainConfig: cfg, Logger: quietLogger(), Options: []Option{WithFormats(formats)}}
	_, summary := batch.Run([]string{input})
	if summary.FailedFiles != 1 || len(summary.FailedFilesList[0].OutputFiles) != 1 {
		t.Errorf("failed files = %+v", summary.FailedFilesList)
	}
}

func TestRunAppliesProfile(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "shop_may.csv", "Campaign,Clicks,Spend,Orders\nSpring,10,50,2\n")
	noImputation := false
	profile := &config.SourceProfile{
		ProfileName:          "shop",
		FileMatchingPatterns: []string{"shop_*.csv"},
		FallbackPlatform:     "Shopify Ads",
		ImputeRevenue:        &noImputation,
		HeaderVariants:       map[string][]string{"conversions": {"Orders"}},
	}

	result := New(input, profile, cfg, WithLogger(quietLogger()), WithDryRun(true)).Run()
	if !result.Success {
		t.Fatal(result.Error)
	}
	if result.Profile != "shop" {
		t.Errorf("profile = %q", result.Profile)
	}
	o := result.Summary.Overall
	if result.Summary.ByPlatform[0].Platform != "Shopify Ads" || o.Conversions != 2 || o.Revenue != 0 {
		t.Errorf("summary = %+v", result.Summary)
	}
}

func TestBatch(t *testing.T) {
	cfg := testConfig(t)
	files := []string{
		writeInput(t, cfg, "a.csv", sampleCSV),
		writeInput(t, cfg, "b.csv", "only a header line\n"),
		writeInput(t, cfg, "c.csv", sampleCSV),
	}

	batch := &Batch{MainConfig: cfg, Logger: quietLogger(), Options: []Option{WithDryRun(true)}}
	results, summary := batch.Run(files)
	if len(results) != 3 || summary.SuccessfulFiles != 2 || summary.FailedFiles != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if summary.TotalRecords != 4 || summary.WarningFiles != 2 || summary.RevenueEstimated != 2 {
		t.Errorf("summary totals = %+v", summary)
	}
	if !errors.Is(results[1].Error, ingest.ErrNoDataRows) {
		t.Errorf("b.csv err = %v", results[1].Error)
	}

	cfg.ContinueOnError = false
	results, summary = batch.Run(files)
	if len(results) != 2 || summary.TotalFiles != 3 || summary.FailedFiles != 1 {
		t.Fatalf("stop on error: %d results, summary %+v", len(results), summary)
	}
}

func TestBatchMatchesProfiles(t *testing.T) {
	cfg := testConfig(t)
	input := writeInput(t, cfg, "meta_may.csv", "Campaign,Impressions,Clicks\nSpring,100,5\n")
	batch := &Batch{
		MainConfig: cfg,
		Profiles: []*config.SourceProfile{
			{ProfileName: "meta", FileMatchingPatterns: []string{"meta_*"}, FallbackPlatform: "Facebook"},
		},
		Logger:  quietLogger(),
		Options: []Option{WithDryRun(true)},
	}
	results, _ := batch.Run([]string{input})
	if results[0].Profile != "meta" || results[0].Summary.ByPlatform[0].Platform != "Facebook" {
		t.Errorf("result = %+v", results[0])
	}
}
