package ingest

import (
	"fmt"

	"github.com/ginjaninja78/campaign-insights/internal/headermap"
)

// Defaults applied to zero-valued Options fields.
const (
	DefaultEstimatedValuePerConversion = 30.0
	DefaultFallbackPlatform            = "Unknown"
	DefaultMinTokens                   = 3
)

// ZeroRowPolicy decides what happens to rows whose metrics are all zero.
type ZeroRowPolicy string

const (
	// KeepZeroRows emits all-zero rows like any other row.
	KeepZeroRows ZeroRowPolicy = "keep"
	// DropZeroRows skips them and counts them in Diagnostics.SkippedZeroMetric.
	DropZeroRows ZeroRowPolicy = "drop"
)

// Options tunes one parse. The zero value is usable.
type Options struct {
	// Delimiter forces a separator: "auto" (or empty), "comma", "semicolon",
	// "tab", or the character itself.
	Delimiter string

	// SemicolonThreshold is passed to delimiter detection. 0 means 1.
	SemicolonThreshold int

	// EstimatedValuePerConversion is the unit value used to impute missing
	// revenue. 0 means DefaultEstimatedValuePerConversion.
	EstimatedValuePerConversion float64

	// NoRevenueImputation leaves revenue at 0 when the source has none.
	NoRevenueImputation bool

	// FallbackPlatform is used when there is no platform column and no
	// keyword cluster matches the headers. Empty means "Unknown".
	FallbackPlatform string

	// ZeroMetricRows is the all-zero row policy. Empty means KeepZeroRows.
	ZeroMetricRows ZeroRowPolicy

	// MinTokens is the fewest cells a data row may have. 0 means 3.
	MinTokens int

	// Mapper resolves headers and platform aliases. Nil means the built-in
	// tables.
	Mapper *headermap.Mapper

	// Source names the input in diagnostics only; it never affects parsing.
	Source string

	// HeaderRow is the 1-based sheet row holding the headers passed to
	// ParseTable, so record rows match the sheet. 0 means 1. Parse numbers
	// text lines itself and ignores it.
	HeaderRow int
}

func (o Options) withDefaults() (Options, error) {
	if o.EstimatedValuePerConversion < 0 {
		return o, fmt.Errorf("estimated value per conversion must not be negative, got %v", o.EstimatedValuePerConversion)
	}
	if o.EstimatedValuePerConversion == 0 {
		o.EstimatedValuePerConversion = DefaultEstimatedValuePerConversion
	}
	if o.FallbackPlatform == "" {
		o.FallbackPlatform = DefaultFallbackPlatform
	}
	switch o.ZeroMetricRows {
	case "":
		o.ZeroMetricRows = KeepZeroRows
	case KeepZeroRows, DropZeroRows:
	default:
		return o, fmt.Errorf("unknown zero metric row policy %q (use keep or drop)", o.ZeroMetricRows)
	}
	if o.MinTokens <= 0 {
		o.MinTokens = DefaultMinTokens
	}
	if o.Mapper == nil {
		o.Mapper = headermap.Default()
	}
	return o, nil
}
