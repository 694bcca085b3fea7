// =============================================================================
// Campaign Insights - Ingestion Pipeline
// =============================================================================
//
// Parse turns the raw text of one campaign export into canonical records.
//
// PIPELINE:
//   decode -> detect delimiter -> tokenize -> map headers -> resolve platform
//   -> parse rows -> diagnostics
//
// Parsing is synchronous, pure and independent per call: no shared state, no
// logging. Everything worth reporting ends up in Result.Diagnostics.
//
// FAILURES:
//   - ErrEmptyInput, ErrNoDataRows, ErrNoHeader and csvparser.ErrUndecodable
//     are fatal and returned as errors
//   - malformed rows are skipped and counted
//   - unparsable cells become 0
//
// =============================================================================

package ingest

import (
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ginjaninja78/campaign-insights/internal/csvparser"
	"github.com/ginjaninja78/campaign-insights/internal/headermap"
	"github.com/ginjaninja78/campaign-insights/internal/types"
)

// Fatal parse errors.
var (
	ErrEmptyInput = errors.New("input is empty")
	ErrNoDataRows = errors.New("input has no data rows (fewer than 2 non-empty lines)")
	ErrNoHeader   = errors.New("no header row detected")
)

// Result is the outcome of a successful parse.
type Result struct {
	Records     []types.CanonicalRecord
	Diagnostics types.Diagnostics
}

// ParseBytes decodes raw file content and parses it.
func ParseBytes(raw []byte, opts Options) (*Result, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyInput
	}
	text, encoding, err := csvparser.Decode(raw)
	if err != nil {
		return nil, err
	}
	res, err := Parse(text, opts)
	if err != nil {
		return nil, err
	}
	res.Diagnostics.Encoding = encoding
	return res, nil
}

// Parse parses decoded export text.
func Parse(raw string, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	lines := csvparser.NonEmptyLines(raw)
	if len(lines) == 0 {
		return nil, ErrEmptyInput
	}
	if len(lines) < 2 {
		return nil, ErrNoDataRows
	}

	var warnings []string
	delim, forced, err := csvparser.DelimiterFromSetting(opts.Delimiter)
	if err != nil {
		return nil, err
	}
	if !forced {
		var warning string
		delim, warning = csvparser.DetectDelimiter(raw, csvparser.DetectOptions{SemicolonThreshold: opts.SemicolonThreshold})
		if warning != "" {
			warnings = append(warnings, warning)
		}
	}

	table := csvparser.Parse(raw, delim)
	if !table.HasHeader() {
		return nil, ErrNoHeader
	}

	res := parseRows(table.Headers, table.Rows, table.LineNumbers, opts)
	res.Diagnostics.Delimiter = csvparser.DelimiterName(delim)
	res.Diagnostics.Warnings = append(warnings, res.Diagnostics.Warnings...)
	return res, nil
}

// ParseTable parses an already tokenized export, such as a spreadsheet sheet.
// Rows follow the header directly and are numbered from opts.HeaderRow. Rows
// whose cells are all blank are ignored.
func ParseTable(headers []string, rows [][]string, opts Options) (*Result, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, len(headers))
	hasHeader := false
	for i, h := range headers {
		cleaned[i] = strings.TrimSpace(h)
		if cleaned[i] != "" {
			hasHeader = true
		}
	}
	if len(headers) == 0 && len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	if !hasHeader {
		return nil, ErrNoHeader
	}

	headerRow := opts.HeaderRow
	if headerRow < 1 {
		headerRow = 1
	}

	var (
		data    [][]string
		numbers []int
	)
	for i, row := range rows {
		if blankRow(row) {
			continue
		}
		trimmed := make([]string, len(row))
		for j, cell := range row {
			trimmed[j] = strings.TrimSpace(cell)
		}
		data = append(data, trimmed)
		numbers = append(numbers, headerRow+1+i)
	}
	if len(data) == 0 {
		return nil, ErrNoDataRows
	}

	return parseRows(cleaned, data, numbers, opts), nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRows maps headers, resolves the file-level platform and runs the row
// parser over every data row.
func parseRows(headers []string, rows [][]string, lineNumbers []int, opts Options) *Result {
	mapper := opts.Mapper
	columns := mapper.Map(headers)

	diag := types.Diagnostics{
		RunID:             uuid.NewString(),
		Source:            opts.Source,
		Headers:           headers,
		HeaderFingerprint: headermap.Fingerprint(headers),
		ColumnMap:         columns.Describe(),
		Unmapped:          columns.Unmapped(headers),
		Language:          mapper.DetectLanguage(headers),
		RowsTotal:         len(rows),
	}

	// Rows without a usable platform cell get the inferred platform, or the
	// fallback when no keyword cluster matched.
	defaultPlatform := opts.FallbackPlatform
	inferred, _ := headermap.InferPlatform(headers)
	if inferred != "" {
		defaultPlatform = inferred
		diag.DetectedPlatform = inferred
	}
	switch {
	case columns.Has(headermap.FieldPlatform):
		diag.PlatformSource = types.PlatformFromColumn
	case inferred != "":
		diag.PlatformSource = types.PlatformFromInferred
	default:
		diag.PlatformSource = types.PlatformFromFallback
	}

	if !hasMetricColumn(columns) {
		diag.Warn("no metric columns recognised; numeric fields default to 0")
	}

	p := &rowParser{
		columns:         columns,
		mapper:          mapper,
		opts:            opts,
		headerKeys:      headerKeys(headers),
		defaultPlatform: defaultPlatform,
		diag:            &diag,
	}

	records := make([]types.CanonicalRecord, 0, len(rows))
	for i, tokens := range rows {
		rec, ok := p.parse(tokens, lineNumbers[i])
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	diag.RowsParsed = len(records)
	diag.RowsSkipped = diag.SkippedShort + diag.SkippedHeaderLike + diag.SkippedZeroMetric
	return &Result{Records: records, Diagnostics: diag}
}

// metricFields are the numeric canonical fields.
var metricFields = []headermap.Field{
	headermap.FieldImpressions,
	headermap.FieldClicks,
	headermap.FieldLinkClicks,
	headermap.FieldConversions,
	headermap.FieldCost,
	headermap.FieldAmountSpentLocal,
	headermap.FieldRevenue,
	headermap.FieldCTR,
	headermap.FieldCPC,
	headermap.FieldCPM,
	headermap.FieldROI,
}

func hasMetricColumn(columns headermap.ColumnMap) bool {
	for _, f := range metricFields {
		if columns.Has(f) {
			return true
		}
	}
	return false
}
