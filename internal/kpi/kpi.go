// Package kpi holds the advertising ratio formulas shared by the row parser
// and the aggregator, so per-record and rolled-up values always agree.
package kpi

import "math"

// Ratios are the derived performance indicators of a set of totals.
type Ratios struct {
	CTR float64 // clicks / impressions * 100
	CPC float64 // cost / clicks
	CPM float64 // cost / impressions * 1000
	ROI float64 // (revenue - cost) / cost * 100
}

// Compute derives ratios from totals. Any ratio whose denominator is not
// positive, or whose value is not finite, is 0.
func Compute(impressions, clicks, cost, revenue float64) Ratios {
	return Ratios{
		CTR: ratio(clicks, impressions, 100),
		CPC: ratio(cost, clicks, 1),
		CPM: ratio(cost, impressions, 1000),
		ROI: ratio(revenue-cost, cost, 100),
	}
}

// ConversionRate is conversions / clicks * 100, or 0 without clicks.
func ConversionRate(conversions, clicks float64) float64 {
	return ratio(conversions, clicks, 100)
}

// ratio is a / b * scale. A denormal denominator can push the quotient past
// the float64 range, which reads as "undefined" like a zero one.
func ratio(a, b, scale float64) float64 {
	if b <= 0 {
		return 0
	}
	v := a / b * scale
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
