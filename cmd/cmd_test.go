package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfgFile, verbose = "config.yaml", false
	dryRun, filePath, reportFormats, rankBy = false, "", nil, "cost"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeWorkspace(t *testing.T) (cfgPath, inputDir, outputDir string) {
	t.Helper()
	root := t.TempDir()
	inputDir = filepath.Join(root, "input")
	outputDir = filepath.Join(root, "output")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg := "input_dir: " + inputDir + "\n" +
		"output_dir: " + outputDir + "\n" +
		"profiles_dir: " + filepath.Join(root, "profiles") + "\n" +
		"log_level: error\n"
	cfgPath = filepath.Join(root, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	csv := "Campaign;Platform;Impressions;Clicks;Conversions;Cost;Revenue\n" +
		"Spring;Facebook;1.000;50;5;100;200\n" +
		"Summer;Google;2.000;40;2;80,5;120\n"
	if err := os.WriteFile(filepath.Join(inputDir, "may.csv"), []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, inputDir, outputDir
}

func TestProcessCommand(t *testing.T) {
	cfgPath, _, outputDir := writeWorkspace(t)

	out, err := execute(t, "process", "--config", cfgPath, "--format", "json,xlsx")
	if err != nil {
		t.Fatalf("process: %v\n%s", err, out)
	}
	if !strings.Contains(out, "ok") || !strings.Contains(out, "may.csv (2 records, Facebook, Google Ads)") {
		t.Errorf("output:\n%s", out)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	var json, xlsx, summary int
	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.Name(), "processing_summary_"):
			summary++
		case strings.HasSuffix(e.Name(), ".json"):
			json++
		case strings.HasSuffix(e.Name(), ".xlsx"):
			xlsx++
		}
	}
	if json != 1 || xlsx != 1 || summary != 1 {
		t.Errorf("output dir = %v", entries)
	}
}

func TestProcessRejectsUnknownFormat(t *testing.T) {
	cfgPath, _, _ := writeWorkspace(t)
	if _, err := execute(t, "process", "--config", cfgPath, "--format", "pdf"); err == nil {
		t.Fatal("pdf format must be rejected")
	}
}

func TestProcessReportsFailures(t *testing.T) {
	cfgPath, inputDir, _ := writeWorkspace(t)
	bad := filepath.Join(inputDir, "empty.csv")
	if err := os.WriteFile(bad, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "process", "--config", cfgPath, "--dry-run")
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(out, "failed") || !strings.Contains(out, "empty.csv") {
		t.Errorf("output:\n%s", out)
	}
}

func TestInspectCommand(t *testing.T) {
	cfgPath, inputDir, outputDir := writeWorkspace(t)

	out, err := execute(t, "inspect", filepath.Join(inputDir, "may.csv"), "--config", cfgPath, "--rank", "roi")
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, out)
	}
	if !regexp.MustCompile(`Delimiter:\s+;`).MatchString(out) {
		t.Errorf("delimiter not reported:\n%s", out)
	}
	for _, want := range []string{"campaign_name", "Platforms (by roi)", "Google Ads", "All"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
	// Facebook ROI 100% beats Google Ads ROI ~49%.
	if strings.Index(out, "  Facebook") > strings.Index(out, "  Google Ads") {
		t.Errorf("platforms not ranked by roi:\n%s", out)
	}
	if _, err := os.Stat(outputDir); !os.IsNotExist(err) {
		t.Error("inspect must not create the output directory")
	}

	if _, err := execute(t, "inspect", filepath.Join(inputDir, "may.csv"), "--config", cfgPath, "--rank", "reach"); err == nil {
		t.Error("unknown rank metric must fail")
	}
}

func TestValidateCommand(t *testing.T) {
	cfgPath, _, _ := writeWorkspace(t)
	out, err := execute(t, "validate", "--config", cfgPath)
	if err != nil || !strings.Contains(out, "Configuration OK") {
		t.Fatalf("validate: %v\n%s", err, out)
	}

	if _, err := execute(t, "validate", "--config", filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("explicit missing config must fail")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil || !strings.Contains(out, "Version:") {
		t.Fatalf("version: %v\n%s", err, out)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "warn", "json", false)
	l.Info("hidden")
	l.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("json logger output = %s", buf.String())
	}

	buf.Reset()
	l = newLogger(&buf, "error", "text", true)
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("--verbose must enable debug")
	}
}
