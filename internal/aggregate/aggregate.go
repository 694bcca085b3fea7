// =============================================================================
// Campaign Insights - Aggregator
// =============================================================================
//
// Rolls canonical records up into per-platform and overall totals.
//
// RULES:
//   - Sums use each record's effective clicks (link clicks when positive) and
//     effective cost (local spend when positive)
//   - CTR, CPC, CPM, ROI and conversion rate are recomputed from the summed
//     totals; they are never averages of per-record ratios
//   - AvgROI and AvgCTR are the only averaged values, kept for dashboards
//     that show "average campaign ROI"
//   - Platforms are listed in order of first appearance
//   - Sums saturate at the float64 range instead of overflowing to Inf
//
// =============================================================================

package aggregate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ginjaninja78/campaign-insights/internal/kpi"
	"github.com/ginjaninja78/campaign-insights/internal/numparse"
	"github.com/ginjaninja78/campaign-insights/internal/types"
)

// OverallPlatform names the aggregate across all records.
const OverallPlatform = "All"

// Aggregate computes the overall and per-platform rollups.
func Aggregate(records []types.CanonicalRecord) types.Summary {
	return types.Summary{
		Overall:    Totals(records),
		ByPlatform: ByPlatform(records),
	}
}

// Totals aggregates every record into one PlatformAggregate named "All".
func Totals(records []types.CanonicalRecord) types.PlatformAggregate {
	acc := &accumulator{platform: OverallPlatform}
	for _, r := range records {
		acc.add(r)
	}
	return acc.result()
}

// ByPlatform groups records by platform in first-appearance order.
func ByPlatform(records []types.CanonicalRecord) []types.PlatformAggregate {
	groups := make(map[string]*accumulator)
	var order []string
	for _, r := range records {
		acc, ok := groups[r.Platform]
		if !ok {
			acc = &accumulator{platform: r.Platform}
			groups[r.Platform] = acc
			order = append(order, r.Platform)
		}
		acc.add(r)
	}

	out := make([]types.PlatformAggregate, 0, len(order))
	for _, p := range order {
		out = append(out, groups[p].result())
	}
	return out
}

type accumulator struct {
	platform    string
	records     int
	impressions float64
	clicks      float64
	conversions float64
	cost        float64
	revenue     float64
	sumROI      float64
	sumCTR      float64
}

func (a *accumulator) add(r types.CanonicalRecord) {
	a.records++
	a.impressions = numparse.Finite(a.impressions + r.Impressions)
	a.clicks = numparse.Finite(a.clicks + r.EffectiveClicks())
	a.conversions = numparse.Finite(a.conversions + r.Conversions)
	a.cost = numparse.Finite(a.cost + r.EffectiveCost())
	a.revenue = numparse.Finite(a.revenue + r.Revenue)
	a.sumROI = numparse.Finite(a.sumROI + r.ROI)
	a.sumCTR = numparse.Finite(a.sumCTR + r.CTR)
}

func (a *accumulator) result() types.PlatformAggregate {
	ratios := kpi.Compute(a.impressions, a.clicks, a.cost, a.revenue)
	agg := types.PlatformAggregate{
		Platform:       a.platform,
		Records:        a.records,
		Impressions:    a.impressions,
		Clicks:         a.clicks,
		Conversions:    a.conversions,
		Cost:           a.cost,
		Revenue:        a.revenue,
		CTR:            ratios.CTR,
		CPC:            ratios.CPC,
		CPM:            ratios.CPM,
		ROI:            ratios.ROI,
		ConversionRate: kpi.ConversionRate(a.conversions, a.clicks),
	}
	if a.records > 0 {
		agg.AvgROI = a.sumROI / float64(a.records)
		agg.AvgCTR = a.sumCTR / float64(a.records)
	}
	return agg
}

// =============================================================================
// RANKING
// =============================================================================

// ErrUnknownMetric is returned by Rank for an unsupported sort key.
var ErrUnknownMetric = errors.New("unknown ranking metric")

var rankKeys = map[string]func(types.PlatformAggregate) float64{
	"roi":             func(a types.PlatformAggregate) float64 { return a.ROI },
	"ctr":             func(a types.PlatformAggregate) float64 { return a.CTR },
	"cpc":             func(a types.PlatformAggregate) float64 { return a.CPC },
	"cpm":             func(a types.PlatformAggregate) float64 { return a.CPM },
	"conversion_rate": func(a types.PlatformAggregate) float64 { return a.ConversionRate },
	"cost":            func(a types.PlatformAggregate) float64 { return a.Cost },
	"revenue":         func(a types.PlatformAggregate) float64 { return a.Revenue },
	"conversions":     func(a types.PlatformAggregate) float64 { return a.Conversions },
	"impressions":     func(a types.PlatformAggregate) float64 { return a.Impressions },
	"clicks":          func(a types.PlatformAggregate) float64 { return a.Clicks },
}

// RankMetrics lists the keys accepted by Rank.
func RankMetrics() []string {
	keys := make([]string, 0, len(rankKeys))
	for k := range rankKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Rank returns a copy of the per-platform list sorted by metric, highest
// first. Platforms with equal values keep their original order.
func Rank(summary types.Summary, metric string) ([]types.PlatformAggregate, error) {
	key, ok := rankKeys[metric]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownMetric, metric)
	}
	out := append([]types.PlatformAggregate(nil), summary.ByPlatform...)
	sort.SliceStable(out, func(i, j int) bool { return key(out[i]) > key(out[j]) })
	return out, nil
}
