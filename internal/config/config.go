// =============================================================================
// Campaign Insights - Configuration Module
// =============================================================================
//
// This module loads the application configuration. It handles the main
// configuration file and the optional per-source parsing profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, logging, reports and the
//      default parsing settings
//   2. Source Profiles (profiles/*.yaml): parsing overrides for exports whose
//      file name matches a glob pattern (e.g. "meta_*.csv")
//
// A missing main config is only an error when the caller named it
// explicitly; otherwise the built-in defaults apply.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/campaign-insights/internal/csvparser"
	"github.com/ginjaninja78/campaign-insights/internal/headermap"
	"github.com/ginjaninja78/campaign-insights/internal/ingest"
)

// DefaultConfigPath is where the CLI looks when --config is not given.
const DefaultConfigPath = "config.yaml"

// Report formats accepted in report_formats.
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for campaign exports (.csv, .tsv, .txt, .xlsx).
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated reports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives processed exports when ArchiveInputs is set.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ArchiveInputs moves each successfully processed export into
	// InputArchiveDir. Default: false
	ArchiveInputs bool `yaml:"archive_inputs"`

	// ArchiveByDate files archived exports under YYYY/MM/DD. Default: false
	ArchiveByDate bool `yaml:"archive_by_date"`

	// ProfilesDir holds the source profile YAML files. A missing directory
	// means no profiles. Default: "./profiles"
	ProfilesDir string `yaml:"profiles_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error". Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the slog handler: "text" or "json". Default: "text"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat names report files. Placeholders: {uuid}, {name}
	// (input file name without extension), {timestamp}, {date}. The
	// extension of each report format is appended.
	// Default: "{name}_{timestamp}"
	OutputNameFormat string `yaml:"output_name_format"`

	// ReportFormats lists the reports written per input file.
	// Valid values: "json", "xlsx". Default: ["json"]
	ReportFormats []string `yaml:"report_formats"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// ContinueOnError keeps processing the remaining files after one fails.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`

	// HeaderTemplates lists XLSX workbooks with extra header variants
	// (columns: Canonical Field | Header Variant | Language | Platform).
	HeaderTemplates []string `yaml:"header_templates"`

	// Parsing holds the default parsing settings for every file.
	Parsing ParsingSettings `yaml:"parsing"`
}

// =============================================================================
// PARSING SETTINGS STRUCTURE
// =============================================================================

// ParsingSettings configures how one export is parsed.
type ParsingSettings struct {
	// Delimiter forces a separator. Valid values: "auto", "comma",
	// "semicolon", "tab" or the character itself. Default: "auto"
	Delimiter string `yaml:"delimiter"`

	// SemicolonThreshold is the semicolon count at which detection prefers
	// semicolons over commas. Default: 1
	SemicolonThreshold int `yaml:"semicolon_threshold"`

	// EstimatedValuePerConversion is multiplied by conversions when an export
	// has no revenue. Default: 30
	EstimatedValuePerConversion float64 `yaml:"estimated_value_per_conversion"`

	// ImputeRevenue enables revenue estimation. Default: true
	ImputeRevenue bool `yaml:"impute_revenue"`

	// FallbackPlatform labels rows whose platform cannot be determined.
	// Default: "Unknown"
	FallbackPlatform string `yaml:"fallback_platform"`

	// ZeroMetricRows is "keep" or "drop". Default: "keep"
	ZeroMetricRows string `yaml:"zero_metric_rows"`

	// MinTokens is the fewest cells a data row may have. Default: 3
	MinTokens int `yaml:"min_tokens"`

	// HeaderVariants adds header spellings per canonical field, e.g.
	//   header_variants:
	//     cost: ["Spend (USD)"]
	HeaderVariants map[string][]string `yaml:"header_variants"`

	// PlatformAliases maps raw platform values to canonical names, e.g.
	//   platform_aliases:
	//     "meta ads manager": "Facebook"
	PlatformAliases map[string]string `yaml:"platform_aliases"`
}

// =============================================================================
// SOURCE PROFILE STRUCTURE
// =============================================================================

// SourceProfile overrides parsing settings for exports from one source.
// Unset fields keep the main configuration's value.
type SourceProfile struct {
	// ProfileName is used in logs.
	ProfileName string `yaml:"profile_name"`

	// FileMatchingPatterns are glob patterns matched against the base file
	// name, case-insensitively. Examples:
	//   - "meta_*.csv"
	//   - "*_google_ads_*.xlsx"
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	Delimiter                   string   `yaml:"delimiter"`
	SemicolonThreshold          *int     `yaml:"semicolon_threshold"`
	EstimatedValuePerConversion *float64 `yaml:"estimated_value_per_conversion"`
	ImputeRevenue               *bool    `yaml:"impute_revenue"`
	FallbackPlatform            string   `yaml:"fallback_platform"`
	ZeroMetricRows              string   `yaml:"zero_metric_rows"`
	MinTokens                   *int     `yaml:"min_tokens"`

	// HeaderVariants and PlatformAliases are added to the main tables.
	HeaderVariants  map[string][]string `yaml:"header_variants"`
	PlatformAliases map[string]string   `yaml:"platform_aliases"`

	// path is the file the profile was loaded from.
	path string
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// Default returns the configuration used when no file exists.
func Default() *MainConfig {
	config := newMainConfig()
	applyMainConfigDefaults(config)
	return config
}

// newMainConfig seeds the boolean defaults, which YAML leaves untouched
// when a key is absent.
func newMainConfig() *MainConfig {
	return &MainConfig{
		ContinueOnError: true,
		Parsing:         ParsingSettings{ImputeRevenue: true},
	}
}

// LoadMainConfig loads the main configuration file.
//
// PARAMETERS:
//   - configPath: path to the YAML file.
//   - explicit: whether the user named the file. When false, a missing file
//     yields Default().
//
// RETURNS:
//   - The validated configuration.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string, explicit bool) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := newMainConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(config)

	if err := validateMainConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.ProfilesDir == "" {
		config.ProfilesDir = "./profiles"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{name}_{timestamp}"
	}
	if len(config.ReportFormats) == 0 {
		config.ReportFormats = []string{FormatJSON}
	}

	p := &config.Parsing
	if p.Delimiter == "" {
		p.Delimiter = "auto"
	}
	if p.SemicolonThreshold == 0 {
		p.SemicolonThreshold = 1
	}
	if p.EstimatedValuePerConversion == 0 {
		p.EstimatedValuePerConversion = ingest.DefaultEstimatedValuePerConversion
	}
	if p.FallbackPlatform == "" {
		p.FallbackPlatform = ingest.DefaultFallbackPlatform
	}
	if p.ZeroMetricRows == "" {
		p.ZeroMetricRows = string(ingest.KeepZeroRows)
	}
	if p.MinTokens == 0 {
		p.MinTokens = ingest.DefaultMinTokens
	}
}

// validateMainConfig validates the main configuration. Directories are not
// touched here; see EnsureDirectories.
func validateMainConfig(config *MainConfig) error {
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", config.LogLevel)
	}
	switch config.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", config.LogFormat)
	}
	for i, f := range config.ReportFormats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != FormatJSON && f != FormatXLSX {
			return fmt.Errorf("unsupported report format %q (use json or xlsx)", config.ReportFormats[i])
		}
		config.ReportFormats[i] = f
	}
	if !strings.Contains(config.OutputNameFormat, "{") {
		return fmt.Errorf("output_name_format %q has no placeholder; every report would overwrite the last", config.OutputNameFormat)
	}
	return validateParsing(config.Parsing)
}

func validateParsing(p ParsingSettings) error {
	if _, _, err := csvparser.DelimiterFromSetting(p.Delimiter); err != nil {
		return err
	}
	if p.SemicolonThreshold < 0 {
		return fmt.Errorf("semicolon_threshold must not be negative, got %d", p.SemicolonThreshold)
	}
	if p.EstimatedValuePerConversion < 0 {
		return fmt.Errorf("estimated_value_per_conversion must not be negative, got %v", p.EstimatedValuePerConversion)
	}
	if p.MinTokens < 0 {
		return fmt.Errorf("min_tokens must not be negative, got %d", p.MinTokens)
	}
	switch ingest.ZeroRowPolicy(p.ZeroMetricRows) {
	case ingest.KeepZeroRows, ingest.DropZeroRows:
	default:
		return fmt.Errorf("zero_metric_rows must be keep or drop, got %q", p.ZeroMetricRows)
	}
	if _, err := fieldVariants(p.HeaderVariants); err != nil {
		return err
	}
	return nil
}

// EnsureDirectories creates the output directory, and the archive directory
// when archiving is enabled.
func EnsureDirectories(config *MainConfig) error {
	dirs := []string{config.OutputDir}
	if config.ArchiveInputs {
		dirs = append(dirs, config.InputArchiveDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LoadProfiles loads every source profile in profilesDir, sorted by file
// name. A missing directory yields no profiles.
func LoadProfiles(profilesDir string) ([]*SourceProfile, error) {
	if _, err := os.Stat(profilesDir); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	files, err := filepath.Glob(filepath.Join(profilesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	ymlFiles, err := filepath.Glob(filepath.Join(profilesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list profile files: %w", err)
	}
	files = append(files, ymlFiles...)
	sort.Strings(files)

	profiles := make([]*SourceProfile, 0, len(files))
	for _, file := range files {
		profile, err := loadProfile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

func loadProfile(filePath string) (*SourceProfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile SourceProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}
	profile.path = filePath
	if profile.ProfileName == "" {
		profile.ProfileName = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}
	if len(profile.FileMatchingPatterns) == 0 {
		return nil, errors.New("file_matching_patterns is empty")
	}
	for _, pattern := range profile.FileMatchingPatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
	}
	return &profile, nil
}

// =============================================================================
// PROFILE RESOLUTION
// =============================================================================

// Matches reports whether the profile applies to fileName.
func (p *SourceProfile) Matches(fileName string) bool {
	base := strings.ToLower(filepath.Base(fileName))
	for _, pattern := range p.FileMatchingPatterns {
		if ok, _ := filepath.Match(strings.ToLower(pattern), base); ok {
			return true
		}
	}
	return false
}

// MatchProfile returns the first profile matching fileName, or nil.
func MatchProfile(profiles []*SourceProfile, fileName string) *SourceProfile {
	for _, p := range profiles {
		if p.Matches(fileName) {
			return p
		}
	}
	return nil
}

// Apply returns base with the profile's overrides applied. The variant and
// alias maps are merged into copies.
func (p *SourceProfile) Apply(base ParsingSettings) (ParsingSettings, error) {
	out := base
	if p.Delimiter != "" {
		out.Delimiter = p.Delimiter
	}
	if p.SemicolonThreshold != nil {
		out.SemicolonThreshold = *p.SemicolonThreshold
	}
	if p.EstimatedValuePerConversion != nil {
		out.EstimatedValuePerConversion = *p.EstimatedValuePerConversion
	}
	if p.ImputeRevenue != nil {
		out.ImputeRevenue = *p.ImputeRevenue
	}
	if p.FallbackPlatform != "" {
		out.FallbackPlatform = p.FallbackPlatform
	}
	if p.ZeroMetricRows != "" {
		out.ZeroMetricRows = p.ZeroMetricRows
	}
	if p.MinTokens != nil {
		out.MinTokens = *p.MinTokens
	}

	out.HeaderVariants = make(map[string][]string, len(base.HeaderVariants)+len(p.HeaderVariants))
	for k, v := range base.HeaderVariants {
		out.HeaderVariants[k] = append([]string(nil), v...)
	}
	for k, v := range p.HeaderVariants {
		out.HeaderVariants[k] = append(out.HeaderVariants[k], v...)
	}
	out.PlatformAliases = make(map[string]string, len(base.PlatformAliases)+len(p.PlatformAliases))
	for k, v := range base.PlatformAliases {
		out.PlatformAliases[k] = v
	}
	for k, v := range p.PlatformAliases {
		out.PlatformAliases[k] = v
	}

	if err := validateParsing(out); err != nil {
		return out, fmt.Errorf("profile %s: %w", p.ProfileName, err)
	}
	return out, nil
}

// =============================================================================
// CONVERSION TO PARSER OPTIONS
// =============================================================================

// Options builds ingest options from the settings. extra carries header
// variants loaded from XLSX templates and is merged with HeaderVariants.
func (s ParsingSettings) Options(extra map[headermap.Field][]string) (ingest.Options, error) {
	variants, err := fieldVariants(s.HeaderVariants)
	if err != nil {
		return ingest.Options{}, err
	}
	for f, vs := range extra {
		variants[f] = append(variants[f], vs...)
	}

	opts := ingest.Options{
		Delimiter:                   s.Delimiter,
		SemicolonThreshold:          s.SemicolonThreshold,
		EstimatedValuePerConversion: s.EstimatedValuePerConversion,
		NoRevenueImputation:         !s.ImputeRevenue,
		FallbackPlatform:            s.FallbackPlatform,
		ZeroMetricRows:              ingest.ZeroRowPolicy(s.ZeroMetricRows),
		MinTokens:                   s.MinTokens,
	}

	// The shared mapper is reused when nothing extends the built-in tables.
	if len(variants) == 0 && len(s.PlatformAliases) == 0 {
		return opts, nil
	}
	mapper, err := headermap.New(headermap.Config{
		Variants: variants,
		Aliases:  s.PlatformAliases,
	})
	if err != nil {
		return ingest.Options{}, err
	}
	opts.Mapper = mapper
	return opts, nil
}

func fieldVariants(raw map[string][]string) (map[headermap.Field][]string, error) {
	out := make(map[headermap.Field][]string, len(raw))
	for name, vs := range raw {
		f, ok := headermap.ParseField(name)
		if !ok {
			return nil, fmt.Errorf("header_variants: unknown canonical field %q", name)
		}
		out[f] = append(out[f], vs...)
	}
	return out, nil
}
