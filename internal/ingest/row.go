package ingest

import (
	"strings"

	"github.com/ginjaninja78/campaign-insights/internal/headermap"
	"github.com/ginjaninja78/campaign-insights/internal/kpi"
	"github.com/ginjaninja78/campaign-insights/internal/numparse"
	"github.com/ginjaninja78/campaign-insights/internal/textnorm"
	"github.com/ginjaninja78/campaign-insights/internal/types"
)

// =============================================================================
// ROW PARSER
// =============================================================================

type rowParser struct {
	columns         headermap.ColumnMap
	mapper          *headermap.Mapper
	opts            Options
	headerKeys      []string
	defaultPlatform string
	diag            *types.Diagnostics
}

// parse converts one tokenized data row. ok is false when the row is skipped;
// the reason is counted in diagnostics.
//
// STEPS:
//  1. fewer than MinTokens cells       -> skip (short)
//  2. repeated header or total row     -> skip (header-like)
//  3. platform: column, else default
//  4. metrics, link clicks and local spend take precedence
//  5. revenue imputed from conversions when missing
//  6. ratios read from the source or derived
//  7. all-zero rows follow the ZeroMetricRows policy
func (p *rowParser) parse(tokens []string, line int) (types.CanonicalRecord, bool) {
	if len(tokens) < p.opts.MinTokens {
		p.diag.SkippedShort++
		return types.CanonicalRecord{}, false
	}
	if isHeaderLike(tokens, p.headerKeys) {
		p.diag.SkippedHeaderLike++
		return types.CanonicalRecord{}, false
	}

	rec := types.CanonicalRecord{
		Platform:     p.platform(tokens),
		CampaignName: p.text(tokens, headermap.FieldCampaignName),
		AdSetName:    p.text(tokens, headermap.FieldAdSetName),
		Date:         p.text(tokens, headermap.FieldDate),
		Status:       p.text(tokens, headermap.FieldStatus),
		Impressions:  p.measure(tokens, headermap.FieldImpressions),
		LinkClicks:   p.measure(tokens, headermap.FieldLinkClicks),
		Conversions:  p.measure(tokens, headermap.FieldConversions),
		Revenue:      p.measure(tokens, headermap.FieldRevenue),
		Row:          line,
	}

	rec.Clicks = p.measure(tokens, headermap.FieldClicks)
	if rec.LinkClicks > 0 {
		rec.Clicks = rec.LinkClicks
	}
	rec.AmountSpentLocal = p.measure(tokens, headermap.FieldAmountSpentLocal)
	rec.Cost = p.measure(tokens, headermap.FieldCost)
	if rec.AmountSpentLocal > 0 {
		rec.Cost = rec.AmountSpentLocal
	}

	if rec.Revenue == 0 && rec.Conversions > 0 && !p.opts.NoRevenueImputation {
		rec.Revenue = numparse.Finite(rec.Conversions * p.opts.EstimatedValuePerConversion)
		rec.RevenueEstimated = true
		p.diag.RevenueEstimated++
	}

	p.ratios(tokens, &rec)

	if p.opts.ZeroMetricRows == DropZeroRows && allZero(rec) {
		p.diag.SkippedZeroMetric++
		return types.CanonicalRecord{}, false
	}
	return rec, true
}

// cell returns the trimmed cell for f. ok is false when the field is unmapped
// or the row is too short to contain it.
func (p *rowParser) cell(tokens []string, f headermap.Field) (string, bool) {
	idx, ok := p.columns.Index(f)
	if !ok || idx >= len(tokens) {
		return "", false
	}
	return strings.TrimSpace(tokens[idx]), true
}

func (p *rowParser) text(tokens []string, f headermap.Field) string {
	v, _ := p.cell(tokens, f)
	return v
}

// measure parses a measured quantity; negative values clamp to 0.
func (p *rowParser) measure(tokens []string, f headermap.Field) float64 {
	return numparse.NonNegative(numparse.Parse(p.cell(tokens, f)))
}

func (p *rowParser) platform(tokens []string) string {
	if raw, ok := p.cell(tokens, headermap.FieldPlatform); ok {
		if name := p.mapper.CanonicalPlatform(raw); name != "" {
			return name
		}
	}
	return p.defaultPlatform
}

// ratios fills ctr, cpc, cpm and roi. A ratio with a non-empty source cell is
// taken as-is; otherwise it is derived from the record's effective totals and
// listed in rec.Derived.
func (p *rowParser) ratios(tokens []string, rec *types.CanonicalRecord) {
	derived := kpi.Compute(rec.Impressions, rec.Clicks, rec.Cost, rec.Revenue)

	fill := func(f headermap.Field, dst *float64, computed float64, clamp bool) {
		if raw, ok := p.cell(tokens, f); ok && raw != "" {
			v := numparse.ParseLocaleNumeric(raw)
			if clamp {
				v = numparse.NonNegative(v)
			}
			*dst = v
			return
		}
		*dst = computed
		rec.Derived = append(rec.Derived, string(f))
	}

	fill(headermap.FieldCTR, &rec.CTR, derived.CTR, true)
	fill(headermap.FieldCPC, &rec.CPC, derived.CPC, true)
	fill(headermap.FieldCPM, &rec.CPM, derived.CPM, true)
	// ROI is legitimately negative.
	fill(headermap.FieldROI, &rec.ROI, derived.ROI, false)
}

func allZero(rec types.CanonicalRecord) bool {
	return rec.Impressions == 0 && rec.Clicks == 0 && rec.Conversions == 0 &&
		rec.Cost == 0 && rec.Revenue == 0
}

// =============================================================================
// HEADER-LIKE ROWS
// =============================================================================

// headerMarkers are cell values that only appear in header rows.
var headerMarkers = map[string]bool{
	"campaign":          true,
	"campaign name":     true,
	"campana":           true,
	"nombre de campana": true,
	"campagne":          true,
	"kampagne":          true,
	"date":              true,
	"fecha":             true,
	"datum":             true,
	"platform":          true,
	"plataforma":        true,
}

// totalMarkers start summary rows.
var totalMarkers = map[string]bool{
	"total": true, "totals": true, "totales": true, "totaux": true,
	"gesamt": true, "summe": true,
}

func headerKeys(headers []string) []string {
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = textnorm.Key(h)
	}
	return keys
}

// isHeaderLike detects repeated header rows and total rows inside the data.
// A row is header-like when any cell is exactly a header marker, when its
// first non-empty cell starts with a total marker word, or when two or more
// cells repeat the header text at the same position.
//
// This is a heuristic: a campaign literally named "Total" is skipped.
func isHeaderLike(tokens []string, headerKeys []string) bool {
	firstSeen := false
	repeats := 0
	for i, tok := range tokens {
		key := textnorm.Key(tok)
		if key == "" {
			continue
		}
		if headerMarkers[key] {
			return true
		}
		if !firstSeen {
			firstSeen = true
			if words := strings.Fields(key); totalMarkers[words[0]] || strings.HasPrefix(key, "grand total") {
				return true
			}
		}
		if i < len(headerKeys) && headerKeys[i] == key {
			repeats++
		}
	}
	return repeats >= 2
}
