// =============================================================================
// Campaign Insights - Shared Types
// =============================================================================
//
// This package contains the types shared by the ingestion pipeline and its
// consumers. Types defined here are used by:
//   - ingest       (produces CanonicalRecord and Diagnostics)
//   - aggregate    (produces PlatformAggregate and Summary)
//   - reportwriter (serialises all of the above)
//   - converter    (carries them in per-file results)
//
// Records are created once per parsed file and never mutated afterwards.
//
// =============================================================================

package types

// =============================================================================
// CANONICAL RECORD
// =============================================================================

// CanonicalRecord is one normalized data row of a campaign export.
type CanonicalRecord struct {
	// Platform is the resolved ad platform or channel ("Facebook", "Google Ads",
	// "Meta", "Unknown", ...).
	Platform string `json:"platform"`

	// Free-form identifiers, passed through without validation.
	CampaignName string `json:"campaign_name,omitempty"`
	AdSetName    string `json:"ad_set_name,omitempty"`
	Date         string `json:"date,omitempty"`

	// Status is the delivery status column when present ("active", "completed",
	// ...). It is informational only and never used to filter rows.
	Status string `json:"status,omitempty"`

	// Measured quantities. Always finite and non-negative. Clicks and Cost
	// hold the effective values: LinkClicks and AmountSpentLocal win when
	// positive, and the raw generic columns are not kept separately.
	Impressions      float64 `json:"impressions"`
	Clicks           float64 `json:"clicks"`
	LinkClicks       float64 `json:"link_clicks,omitempty"`
	Conversions      float64 `json:"conversions"`
	Cost             float64 `json:"cost"`
	AmountSpentLocal float64 `json:"amount_spent_local,omitempty"`
	Revenue          float64 `json:"revenue"`

	// Ratios, read from the source when a column exists, otherwise derived.
	CTR float64 `json:"ctr"`
	CPC float64 `json:"cpc"`
	CPM float64 `json:"cpm"`
	ROI float64 `json:"roi"`

	// Derived lists the ratio fields (ctr, cpc, cpm, roi) that were computed
	// instead of read from the file.
	Derived []string `json:"derived,omitempty"`

	// RevenueEstimated is set when Revenue was imputed from Conversions.
	RevenueEstimated bool `json:"revenue_estimated,omitempty"`

	// Row is the 1-based line (or sheet row) the record came from.
	Row int `json:"row"`
}

// EffectiveClicks returns LinkClicks when it is positive, otherwise Clicks.
func (r CanonicalRecord) EffectiveClicks() float64 {
	if r.LinkClicks > 0 {
		return r.LinkClicks
	}
	return r.Clicks
}

// EffectiveCost returns AmountSpentLocal when it is positive, otherwise Cost.
func (r CanonicalRecord) EffectiveCost() float64 {
	if r.AmountSpentLocal > 0 {
		return r.AmountSpentLocal
	}
	return r.Cost
}

// IsDerived reports whether the named ratio field was computed.
func (r CanonicalRecord) IsDerived(field string) bool {
	for _, f := range r.Derived {
		if f == field {
			return true
		}
	}
	return false
}

// =============================================================================
// AGGREGATES
// =============================================================================

// PlatformAggregate holds summed totals and ratios derived from those totals.
type PlatformAggregate struct {
	Platform string `json:"platform"`
	Records  int    `json:"records"`

	Impressions float64 `json:"impressions"`
	Clicks      float64 `json:"clicks"`
	Conversions float64 `json:"conversions"`
	Cost        float64 `json:"cost"`
	Revenue     float64 `json:"revenue"`

	CTR            float64 `json:"ctr"`
	CPC            float64 `json:"cpc"`
	CPM            float64 `json:"cpm"`
	ROI            float64 `json:"roi"`
	ConversionRate float64 `json:"conversion_rate"`

	// AvgROI and AvgCTR are plain means of the per-record ratios. They are the
	// only averaged values; everything above is computed from the sums.
	AvgROI float64 `json:"avg_roi"`
	AvgCTR float64 `json:"avg_ctr"`
}

// Summary is the two-level result of aggregation.
type Summary struct {
	Overall    PlatformAggregate   `json:"overall"`
	ByPlatform []PlatformAggregate `json:"by_platform"`
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// Platform sources recorded in Diagnostics.PlatformSource.
const (
	PlatformFromColumn   = "column"
	PlatformFromInferred = "inferred"
	PlatformFromFallback = "fallback"
)

// Parse outcomes returned by Diagnostics.Status.
const (
	StatusOK       = "ok"
	StatusWarnings = "warnings"
)

// MappedColumn describes the header a canonical field was resolved to.
type MappedColumn struct {
	Index    int    `json:"index"`
	Header   string `json:"header"`
	Strategy string `json:"strategy"`
}

// Diagnostics describes how a file was parsed. It replaces per-row logging:
// the pipeline stays side-effect free and callers decide what to report.
type Diagnostics struct {
	RunID    string `json:"run_id"`
	Source   string `json:"source,omitempty"`
	Encoding string `json:"encoding,omitempty"`

	// Delimiter is empty for spreadsheet input.
	Delimiter string `json:"delimiter,omitempty"`

	Headers           []string                `json:"headers"`
	HeaderFingerprint string                  `json:"header_fingerprint"`
	ColumnMap         map[string]MappedColumn `json:"column_map"`
	Unmapped          []string                `json:"unmapped,omitempty"`
	Language          string                  `json:"language,omitempty"`

	DetectedPlatform string `json:"detected_platform,omitempty"`
	PlatformSource   string `json:"platform_source"`

	RowsTotal         int `json:"rows_total"`
	RowsParsed        int `json:"rows_parsed"`
	RowsSkipped       int `json:"rows_skipped"`
	SkippedShort      int `json:"skipped_short"`
	SkippedHeaderLike int `json:"skipped_header_like"`
	SkippedZeroMetric int `json:"skipped_zero_metric"`
	RevenueEstimated  int `json:"revenue_estimated"`

	Warnings []string `json:"warnings,omitempty"`
}

// Warn appends a warning message.
func (d *Diagnostics) Warn(msg string) {
	d.Warnings = append(d.Warnings, msg)
}

// Status distinguishes a clean parse from one with skipped rows, estimated
// fields or warnings. Fatal failures are reported as errors, not statuses.
func (d Diagnostics) Status() string {
	if d.RowsSkipped > 0 || d.RevenueEstimated > 0 || len(d.Warnings) > 0 {
		return StatusWarnings
	}
	return StatusOK
}
