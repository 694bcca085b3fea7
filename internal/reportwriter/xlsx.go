package reportwriter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/campaign-insights/internal/types"
)

// Sheet names of the XLSX report, in workbook order.
const (
	SheetSummary     = "Summary"
	SheetPlatforms   = "Platforms"
	SheetRecords     = "Records"
	SheetDiagnostics = "Diagnostics"
)

var (
	platformHeaders = []interface{}{
		"Platform", "Records", "Impressions", "Clicks", "Conversions", "Cost", "Revenue",
		"CTR %", "CPC", "CPM", "ROI %", "Conversion Rate %", "Avg ROI %", "Avg CTR %",
	}
	recordHeaders = []interface{}{
		"Row", "Platform", "Campaign", "Ad Set", "Date", "Status",
		"Impressions", "Clicks", "Link Clicks", "Conversions", "Cost", "Amount Spent (Local)",
		"Revenue", "Revenue Estimated", "CTR %", "CPC", "CPM", "ROI %", "Derived",
	}
)

// WriteXLSX writes r as a workbook at path.
func WriteXLSX(path string, r Report) error {
	f, err := BuildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteXLSXTo writes r as a workbook to w.
func WriteXLSXTo(w io.Writer, r Report) error {
	f, err := BuildWorkbook(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook renders r into a new workbook. The caller closes it.
func BuildWorkbook(r Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetPlatforms, SheetRecords, SheetDiagnostics} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	steps := []func(*excelize.File, int, Report) error{
		writeSummary,
		writePlatforms,
		writeRecords,
		writeDiagnostics,
	}
	for _, step := range steps {
		if err := step(f, bold, r); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// sheetWriter appends rows to one worksheet.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	bold  int
	row   int
}

func newSheetWriter(f *excelize.File, sheet string, bold int) *sheetWriter {
	return &sheetWriter{f: f, sheet: sheet, bold: bold}
}

func (w *sheetWriter) add(values ...interface{}) error {
	w.row++
	cell, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(w.sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", w.sheet, w.row, err)
	}
	return nil
}

func (w *sheetWriter) heading(values ...interface{}) error {
	if err := w.add(values...); err != nil {
		return err
	}
	return w.f.SetRowStyle(w.sheet, w.row, w.row, w.bold)
}

func (w *sheetWriter) blank() { w.row++ }

// freezeHeader keeps the first row visible while scrolling.
func (w *sheetWriter) freezeHeader() error {
	return w.f.SetPanes(w.sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// =============================================================================
// SHEETS
// =============================================================================

func writeSummary(f *excelize.File, bold int, r Report) error {
	w := newSheetWriter(f, SheetSummary, bold)
	o := r.Summary.Overall
	rows := [][]interface{}{
		{"Source", r.Source},
		{"Generated At", r.GeneratedAt.Format(time.RFC3339)},
		{"Status", r.Status},
		{"Platforms", len(r.Summary.ByPlatform)},
		{"Records", o.Records},
		{"Impressions", o.Impressions},
		{"Clicks", o.Clicks},
		{"Conversions", o.Conversions},
		{"Cost", o.Cost},
		{"Revenue", o.Revenue},
		{"CTR %", o.CTR},
		{"CPC", o.CPC},
		{"CPM", o.CPM},
		{"ROI %", o.ROI},
		{"Conversion Rate %", o.ConversionRate},
	}
	if err := w.heading("Metric", "Value"); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.add(row...); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "B", 22)
}

func writePlatforms(f *excelize.File, bold int, r Report) error {
	w := newSheetWriter(f, SheetPlatforms, bold)
	if err := w.heading(platformHeaders...); err != nil {
		return err
	}
	for _, a := range r.Summary.ByPlatform {
		if err := w.add(aggregateRow(a)...); err != nil {
			return err
		}
	}
	if err := w.heading(aggregateRow(r.Summary.Overall)...); err != nil {
		return err
	}
	return w.freezeHeader()
}

func aggregateRow(a types.PlatformAggregate) []interface{} {
	return []interface{}{
		a.Platform, a.Records, a.Impressions, a.Clicks, a.Conversions, a.Cost, a.Revenue,
		a.CTR, a.CPC, a.CPM, a.ROI, a.ConversionRate, a.AvgROI, a.AvgCTR,
	}
}

func writeRecords(f *excelize.File, bold int, r Report) error {
	w := newSheetWriter(f, SheetRecords, bold)
	if err := w.heading(recordHeaders...); err != nil {
		return err
	}
	for _, rec := range r.Records {
		estimated := ""
		if rec.RevenueEstimated {
			estimated = "yes"
		}
		if err := w.add(
			rec.Row, rec.Platform, rec.CampaignName, rec.AdSetName, rec.Date, rec.Status,
			rec.Impressions, rec.Clicks, rec.LinkClicks, rec.Conversions, rec.Cost, rec.AmountSpentLocal,
			rec.Revenue, estimated, rec.CTR, rec.CPC, rec.CPM, rec.ROI, strings.Join(rec.Derived, ", "),
		); err != nil {
			return err
		}
	}
	return w.freezeHeader()
}

func writeDiagnostics(f *excelize.File, bold int, r Report) error {
	w := newSheetWriter(f, SheetDiagnostics, bold)
	d := r.Diagnostics
	rows := [][]interface{}{
		{"Run ID", d.RunID},
		{"Encoding", d.Encoding},
		{"Delimiter", d.Delimiter},
		{"Header Fingerprint", d.HeaderFingerprint},
		{"Language", d.Language},
		{"Detected Platform", d.DetectedPlatform},
		{"Platform Source", d.PlatformSource},
		{"Rows Total", d.RowsTotal},
		{"Rows Parsed", d.RowsParsed},
		{"Rows Skipped", d.RowsSkipped},
		{"Skipped (short)", d.SkippedShort},
		{"Skipped (header-like)", d.SkippedHeaderLike},
		{"Skipped (zero metrics)", d.SkippedZeroMetric},
		{"Revenue Estimated", d.RevenueEstimated},
	}
	if err := w.heading("Item", "Value"); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.add(row...); err != nil {
			return err
		}
	}

	w.blank()
	if err := w.heading("Field", "Column", "Header", "Strategy"); err != nil {
		return err
	}
	fields := make([]string, 0, len(d.ColumnMap))
	for field := range d.ColumnMap {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		c := d.ColumnMap[field]
		if err := w.add(field, c.Index+1, c.Header, c.Strategy); err != nil {
			return err
		}
	}
	for _, h := range d.Unmapped {
		if err := w.add("(unmapped)", "", h, ""); err != nil {
			return err
		}
	}

	if len(d.Warnings) > 0 {
		w.blank()
		if err := w.heading("Warnings"); err != nil {
			return err
		}
		for _, msg := range d.Warnings {
			if err := w.add(msg); err != nil {
				return err
			}
		}
	}
	return f.SetColWidth(SheetDiagnostics, "A", "C", 24)
}
