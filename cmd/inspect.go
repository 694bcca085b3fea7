// =============================================================================
// Campaign Insights - Inspect Command
// =============================================================================
//
// This file defines the 'inspect' command, which shows how an export would be
// parsed without writing anything: encoding, delimiter, header mapping,
// platform detection, row counts and a ranked platform summary.
//
// COMMAND USAGE:
//   campaigns inspect FILE [--rank roi]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/campaign-insights/internal/aggregate"
	"github.com/ginjaninja78/campaign-insights/internal/config"
	"github.com/ginjaninja78/campaign-insights/internal/converter"
	"github.com/ginjaninja78/campaign-insights/internal/headermap"
	"github.com/ginjaninja78/campaign-insights/internal/types"
)

var rankBy string

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE",
	Short: "Show how an export would be parsed",
	Long: `The inspect command parses one export with the current configuration and
prints the detection results, column mapping and per-platform totals.
Nothing is written or archived.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(cmd.OutOrStdout(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(
		&rankBy,
		"rank",
		"cost",
		"Sort platforms by this metric ("+strings.Join(aggregate.RankMetrics(), ", ")+")",
	)
}

func runInspect(out io.Writer, path string) error {
	profiles, err := config.LoadProfiles(mainConfig.ProfilesDir)
	if err != nil {
		return fmt.Errorf("failed to load source profiles: %w", err)
	}
	variants, err := loadHeaderTemplates(mainConfig.HeaderTemplates)
	if err != nil {
		return err
	}

	result := converter.New(path, config.MatchProfile(profiles, path), mainConfig,
		converter.WithLogger(logger),
		converter.WithHeaderVariants(variants),
		converter.WithDryRun(true),
	).Run()
	if !result.Success {
		return result.Error
	}

	ranked, err := aggregate.Rank(result.Summary, rankBy)
	if err != nil {
		return err
	}

	printDiagnostics(out, result)
	return printPlatforms(out, ranked, result.Summary.Overall)
}

func printDiagnostics(out io.Writer, r converter.Result) {
	d := r.Diagnostics
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "File:\t%s\n", d.Source)
	if r.Profile != "" {
		fmt.Fprintf(tw, "Profile:\t%s\n", r.Profile)
	}
	fmt.Fprintf(tw, "Status:\t%s\n", r.Status)
	fmt.Fprintf(tw, "Encoding:\t%s\n", d.Encoding)
	if d.Delimiter != "" {
		fmt.Fprintf(tw, "Delimiter:\t%s\n", d.Delimiter)
	}
	fmt.Fprintf(tw, "Language:\t%s\n", orDash(d.Language))
	fmt.Fprintf(tw, "Fingerprint:\t%s\n", d.HeaderFingerprint)
	fmt.Fprintf(tw, "Platform:\t%s (%s)\n", orDash(d.DetectedPlatform), d.PlatformSource)
	fmt.Fprintf(tw, "Rows:\t%d parsed, %d skipped (short %d, header-like %d, zero %d), %d revenue estimated\n",
		d.RowsParsed, d.RowsSkipped, d.SkippedShort, d.SkippedHeaderLike, d.SkippedZeroMetric, d.RevenueEstimated)
	tw.Flush()

	fmt.Fprintln(out, "\nColumns:")
	tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, f := range headermap.Fields {
		col, ok := d.ColumnMap[string(f)]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "  %s\t<- %q\t%s\n", f, col.Header, col.Strategy)
	}
	for _, h := range d.Unmapped {
		fmt.Fprintf(tw, "  (unmapped)\t%q\t\n", h)
	}
	tw.Flush()

	if len(d.Warnings) > 0 {
		fmt.Fprintln(out, "\nWarnings:")
		for _, w := range d.Warnings {
			fmt.Fprintf(out, "  - %s\n", w)
		}
	}
}

func printPlatforms(out io.Writer, ranked []types.PlatformAggregate, overall types.PlatformAggregate) error {
	fmt.Fprintf(out, "\nPlatforms (by %s):\n", rankBy)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "  Platform\tRecords\tImpressions\tClicks\tConv.\tCost\tRevenue\tCTR %\tCPC\tCPM\tROI %\t")
	for _, a := range append(ranked, overall) {
		fmt.Fprintf(tw, "  %s\t%d\t%.0f\t%.0f\t%.0f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f\t\n",
			a.Platform, a.Records, a.Impressions, a.Clicks, a.Conversions, a.Cost, a.Revenue,
			a.CTR, a.CPC, a.CPM, a.ROI)
	}
	return tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
