// =============================================================================
// Campaign Insights - Report Writer Module
// =============================================================================
//
// This module serialises the outcome of one parsed export. Two formats are
// supported:
//   - JSON: one indented document with diagnostics, summary and records
//   - XLSX: a workbook with Summary, Platforms, Records and Diagnostics sheets
//
// Both writers take the same Report value, so the formats never disagree on
// content. Chart, PDF and narrative insight rendering are not done here; the
// JSON document is the hand-off to those consumers.
//
// =============================================================================

package reportwriter

import (
	"time"

	"github.com/ginjaninja78/campaign-insights/internal/types"
)

// Report is everything written for one input file.
type Report struct {
	// Source is the input file name.
	Source string `json:"source"`

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at"`

	// Status is "ok" or "warnings", from Diagnostics.Status.
	Status string `json:"status"`

	Diagnostics types.Diagnostics       `json:"diagnostics"`
	Summary     types.Summary           `json:"summary"`
	Records     []types.CanonicalRecord `json:"records"`
}

// New assembles a Report.
func New(source string, diag types.Diagnostics, summary types.Summary, records []types.CanonicalRecord) Report {
	if records == nil {
		records = []types.CanonicalRecord{}
	}
	return Report{
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Status:      diag.Status(),
		Diagnostics: diag,
		Summary:     summary,
		Records:     records,
	}
}
