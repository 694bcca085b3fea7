package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/campaign-insights/internal/headermap"
	"github.com/ginjaninja78/campaign-insights/internal/ingest"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMainConfigMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadMainConfig(missing, false)
	if err != nil {
		t.Fatalf("implicit missing config should fall back to defaults: %v", err)
	}
	if cfg.OutputDir != "./output" || !cfg.ContinueOnError || !cfg.Parsing.ImputeRevenue {
		t.Errorf("defaults = %+v", cfg)
	}

	if _, err := LoadMainConfig(missing, true); err == nil {
		t.Error("explicit missing config must fail")
	}
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	p := cfg.Parsing
	if p.Delimiter != "auto" || p.SemicolonThreshold != 1 || p.EstimatedValuePerConversion != 30 ||
		p.FallbackPlatform != "Unknown" || p.ZeroMetricRows != "keep" || p.MinTokens != 3 {
		t.Errorf("parsing defaults = %+v", p)
	}
	if len(cfg.ReportFormats) != 1 || cfg.ReportFormats[0] != FormatJSON {
		t.Errorf("report formats = %v", cfg.ReportFormats)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging = %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadMainConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
input_dir: ./exports
archive_by_date: true
report_formats: [JSON, xlsx]
continue_on_error: false
parsing:
  delimiter: semicolon
  semicolon_threshold: 3
  estimated_value_per_conversion: 45.5
  impute_revenue: false
  fallback_platform: Meta
  zero_metric_rows: drop
  header_variants:
    cost: ["Spend (USD)"]
  platform_aliases:
    "meta ads manager": Facebook
`)
	cfg, err := LoadMainConfig(path, true)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.InputDir != "./exports" || cfg.OutputDir != "./output" {
		t.Errorf("dirs = %s, %s", cfg.InputDir, cfg.OutputDir)
	}
	if cfg.ContinueOnError || !cfg.ArchiveByDate {
		t.Errorf("flags = continue %v, by date %v", cfg.ContinueOnError, cfg.ArchiveByDate)
	}
	if strings.Join(cfg.ReportFormats, ",") != "json,xlsx" {
		t.Errorf("report formats = %v", cfg.ReportFormats)
	}

	p := cfg.Parsing
	if p.Delimiter != "semicolon" || p.SemicolonThreshold != 3 || p.EstimatedValuePerConversion != 45.5 ||
		p.ImputeRevenue || p.FallbackPlatform != "Meta" || p.ZeroMetricRows != "drop" || p.MinTokens != 3 {
		t.Errorf("parsing = %+v", p)
	}
}

func TestLoadMainConfigInvalid(t *testing.T) {
	tests := []struct {
		name, yaml, want string
	}{
		{"log level", "log_level: loud", "log_level"},
		{"log format", "log_format: xml", "log_format"},
		{"report format", "report_formats: [pdf]", "report format"},
		{"name format", "output_name_format: report", "placeholder"},
		{"delimiter", "parsing: {delimiter: '#'}", "delimiter"},
		{"negative value", "parsing: {estimated_value_per_conversion: -1}", "estimated_value_per_conversion"},
		{"zero rows", "parsing: {zero_metric_rows: hide}", "zero_metric_rows"},
		{"field", "parsing: {header_variants: {reach: [Reach]}}", "reach"},
		{"yaml", "parsing: [", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tt.yaml)
			_, err := LoadMainConfig(path, true)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestParsingSettingsOptions(t *testing.T) {
	p := Default().Parsing
	opts, err := p.Options(nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Mapper != nil {
		t.Error("settings without extensions should use the shared mapper")
	}
	if opts.NoRevenueImputation || opts.EstimatedValuePerConversion != 30 || opts.ZeroMetricRows != ingest.KeepZeroRows {
		t.Errorf("opts = %+v", opts)
	}

	p.HeaderVariants = map[string][]string{"cost": {"Spend (USD)"}}
	p.PlatformAliases = map[string]string{"ads manager": "Facebook"}
	p.ImputeRevenue = false
	opts, err = p.Options(map[headermap.Field][]string{headermap.FieldRevenue: {"Umsatz brutto"}})
	if err != nil {
		t.Fatal(err)
	}
	if !opts.NoRevenueImputation || opts.Mapper == nil {
		t.Fatalf("opts = %+v", opts)
	}
	cols := opts.Mapper.Map([]string{"Campaign", "Spend (USD)", "Umsatz brutto"})
	if idx, ok := cols.Index(headermap.FieldCost); !ok || idx != 1 {
		t.Errorf("cost column = %d, %v", idx, ok)
	}
	if idx, ok := cols.Index(headermap.FieldRevenue); !ok || idx != 2 {
		t.Errorf("revenue column = %d, %v", idx, ok)
	}
	if got := opts.Mapper.CanonicalPlatform("Ads Manager"); got != "Facebook" {
		t.Errorf("alias = %q", got)
	}
}

func TestProfiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "meta.yaml", `
profile_name: Meta exports
file_matching_patterns: ["meta_*.csv", "*_facebook_*"]
delimiter: semicolon
impute_revenue: false
fallback_platform: Meta
header_variants:
  cost: ["Importe gastado total"]
`)
	writeFile(t, dir, "google.yml", `
file_matching_patterns: ["google_*"]
estimated_value_per_conversion: 12
min_tokens: 2
`)
	writeFile(t, dir, "notes.txt", "ignored")

	profiles, err := LoadProfiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(profiles) != 2 {
		t.Fatalf("profiles = %d", len(profiles))
	}
	if profiles[0].ProfileName != "google" {
		t.Errorf("unnamed profile should take its file name, got %q", profiles[0].ProfileName)
	}

	if p := MatchProfile(profiles, "exports/META_2024-05.csv"); p == nil || p.ProfileName != "Meta exports" {
		t.Fatalf("match = %+v", p)
	}
	if p := MatchProfile(profiles, "q2_facebook_spend.xlsx"); p == nil || p.ProfileName != "Meta exports" {
		t.Fatalf("match = %+v", p)
	}
	if p := MatchProfile(profiles, "tiktok.csv"); p != nil {
		t.Fatalf("unexpected match %s", p.ProfileName)
	}

	base := Default().Parsing
	base.HeaderVariants = map[string][]string{"cost": {"Spend"}}
	meta, err := profiles[1].Apply(base)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Delimiter != "semicolon" || meta.ImputeRevenue || meta.FallbackPlatform != "Meta" ||
		meta.EstimatedValuePerConversion != 30 || meta.MinTokens != 3 {
		t.Errorf("meta settings = %+v", meta)
	}
	if len(meta.HeaderVariants["cost"]) != 2 || len(base.HeaderVariants["cost"]) != 1 {
		t.Errorf("variants must merge into a copy: %v / %v", meta.HeaderVariants, base.HeaderVariants)
	}

	google, err := profiles[0].Apply(base)
	if err != nil {
		t.Fatal(err)
	}
	if google.EstimatedValuePerConversion != 12 || !google.ImputeRevenue || google.MinTokens != 2 {
		t.Errorf("google settings = %+v", google)
	}

	negative := -1
	bad := &SourceProfile{ProfileName: "broken", MinTokens: &negative}
	if _, err := bad.Apply(base); err == nil || !strings.Contains(err.Error(), "min_tokens") {
		t.Errorf("negative min_tokens = %v", err)
	}
}

func TestLoadProfilesErrors(t *testing.T) {
	if profiles, err := LoadProfiles(filepath.Join(t.TempDir(), "none")); err != nil || profiles != nil {
		t.Fatalf("missing dir = %v, %v", profiles, err)
	}

	dir := t.TempDir()
	writeFile(t, dir, "empty.yaml", "profile_name: nothing\n")
	if _, err := LoadProfiles(dir); err == nil {
		t.Error("profile without patterns must fail")
	}

	dir = t.TempDir()
	writeFile(t, dir, "bad.yaml", "file_matching_patterns: ['[']\n")
	if _, err := LoadProfiles(dir); err == nil {
		t.Error("malformed glob must fail")
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.OutputDir = filepath.Join(root, "out", "reports")
	cfg.InputArchiveDir = filepath.Join(root, "archive")

	if err := EnsureDirectories(cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfg.OutputDir); err != nil {
		t.Errorf("output dir: %v", err)
	}
	if _, err := os.Stat(cfg.InputArchiveDir); !os.IsNotExist(err) {
		t.Error("archive dir created although archiving is off")
	}

	cfg.ArchiveInputs = true
	if err := EnsureDirectories(cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfg.InputArchiveDir); err != nil {
		t.Errorf("archive dir: %v", err)
	}
}
