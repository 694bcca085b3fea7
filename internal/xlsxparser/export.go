// =============================================================================
// Campaign Insights - XLSX Export Reader
// =============================================================================
//
// Ad platforms offer their reports as .xlsx as well as CSV. This module reads
// such a workbook into a header row plus data rows so it can go through the
// same pipeline as a CSV export (ingest.ParseTable).
//
// SHEET SELECTION:
//   The first visible sheet that contains a header row is used. Hidden
//   sheets and sheets whose name starts with "_" are skipped.
//
// HEADER ROW:
//   The first row with at least two non-empty cells. Exports often start
//   with a title or a date-range line, which is skipped this way.
//
// CELL VALUES:
//   Text and date cells are read as displayed. Numeric cells are read from
//   their stored value, since display formats add grouping separators and
//   round. They are written with a comma decimal ("2345,5") and no grouping,
//   the one form the locale-aware numeric parser reads without ambiguity.
//   Percent-formatted cells are scaled to percent ("0.1234" -> "12,34").
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheetData is returned when no usable sheet is found.
var ErrNoSheetData = errors.New("workbook has no sheet with a header row")

// minHeaderCells is the fewest non-empty cells a header row must have.
const minHeaderCells = 2

// Export is one worksheet of a campaign export.
type Export struct {
	// Sheet is the worksheet name.
	Sheet string

	// HeaderRow is the 1-based row number of the header.
	HeaderRow int

	// Headers are the header cells, trailing blanks trimmed.
	Headers []string

	// Rows are the rows after the header, padded to len(Headers).
	Rows [][]string
}

// ReadExport opens the workbook at path and returns its export sheet.
func ReadExport(path string) (*Export, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readExport(f)
}

// ReadExportFrom reads a workbook from r.
func ReadExportFrom(r io.Reader) (*Export, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readExport(f)
}

func readExport(f *excelize.File) (*Export, error) {
	for _, sheetName := range f.GetSheetList() {
		if strings.HasPrefix(sheetName, "_") {
			continue
		}
		visible, err := f.GetSheetVisible(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet '%s': %w", sheetName, err)
		}
		if !visible {
			continue
		}

		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of sheet '%s': %w", sheetName, err)
		}
		raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of sheet '%s': %w", sheetName, err)
		}
		values := &cellValues{f: f, sheet: sheetName, formats: make(map[int]formatKind)}
		values.resolve(rows, raw)

		header := findHeaderRow(rows)
		if header < 0 {
			continue
		}
		return buildExport(sheetName, rows, header), nil
	}
	return nil, ErrNoSheetData
}

func findHeaderRow(rows [][]string) int {
	for i, row := range rows {
		if nonEmptyCells(row) >= minHeaderCells {
			return i
		}
	}
	return -1
}

func buildExport(sheetName string, rows [][]string, header int) *Export {
	headers := trimTrailingBlanks(rows[header])
	export := &Export{
		Sheet:     sheetName,
		HeaderRow: header + 1,
		Headers:   headers,
		Rows:      make([][]string, 0, len(rows)-header-1),
	}
	for _, row := range rows[header+1:] {
		width := len(headers)
		if len(row) > width {
			width = len(row)
		}
		padded := make([]string, width)
		copy(padded, row)
		export.Rows = append(export.Rows, padded)
	}
	return export
}

func nonEmptyCells(row []string) int {
	n := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			n++
		}
	}
	return n
}

func trimTrailingBlanks(row []string) []string {
	end := len(row)
	for end > 0 && strings.TrimSpace(row[end-1]) == "" {
		end--
	}
	return append([]string(nil), row[:end]...)
}

// =============================================================================
// NUMERIC CELLS
// =============================================================================

type formatKind int

const (
	formatNumber formatKind = iota
	formatPercent
	formatDate
)

// cellValues swaps displayed numbers for their stored values. formats caches
// the kind of number format per style ID.
type cellValues struct {
	f       *excelize.File
	sheet   string
	formats map[int]formatKind
}

func (c *cellValues) resolve(display, raw [][]string) {
	for i, row := range display {
		if i >= len(raw) {
			return
		}
		for j := range row {
			if j >= len(raw[i]) {
				break
			}
			stored := strings.TrimSpace(raw[i][j])
			v, err := strconv.ParseFloat(stored, 64)
			if stored == "" || err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				continue
			}
			if !c.isNumeric(cell) {
				continue
			}
			switch c.kind(cell) {
			case formatDate:
				// dates stay as displayed
			case formatPercent:
				row[j] = numberText(v * 100)
			default:
				row[j] = numberText(v)
			}
		}
	}
}

// isNumeric reports whether cell stores a number rather than text.
func (c *cellValues) isNumeric(cell string) bool {
	t, err := c.f.GetCellType(c.sheet, cell)
	if err != nil {
		return false
	}
	return t == excelize.CellTypeNumber || t == excelize.CellTypeUnset
}

func (c *cellValues) kind(cell string) formatKind {
	styleID, err := c.f.GetCellStyle(c.sheet, cell)
	if err != nil {
		return formatNumber
	}
	if k, ok := c.formats[styleID]; ok {
		return k
	}
	k := formatNumber
	if style, err := c.f.GetStyle(styleID); err == nil && style != nil {
		k = classifyFormat(style)
	}
	c.formats[styleID] = k
	return k
}

// builtInDateFormats are the built-in number format IDs that render dates or
// times, including the East Asian and Thai variants.
var builtInDateFormats = func() map[int]bool {
	ids := make(map[int]bool)
	for _, r := range [][2]int{{14, 22}, {27, 36}, {45, 47}, {50, 58}, {71, 81}} {
		for id := r[0]; id <= r[1]; id++ {
			ids[id] = true
		}
	}
	return ids
}()

func classifyFormat(style *excelize.Style) formatKind {
	if style.CustomNumFmt != nil {
		return classifyFormatCode(*style.CustomNumFmt)
	}
	switch {
	case builtInDateFormats[style.NumFmt]:
		return formatDate
	case style.NumFmt == 9 || style.NumFmt == 10:
		return formatPercent
	}
	return formatNumber
}

// classifyFormatCode looks for date or percent tokens in a format code,
// skipping quoted text and [bracketed] sections. The character after an
// escape, padding or fill marker (\ _ *) is skipped as well.
func classifyFormatCode(code string) formatKind {
	percent := false
	quoted, bracket, skip := false, false, false
	for _, r := range code {
		switch {
		case skip:
			skip = false
		case quoted:
			quoted = r != '"'
		case bracket:
			bracket = r != ']'
		case r == '"':
			quoted = true
		case r == '[':
			bracket = true
		case r == '\\' || r == '_' || r == '*':
			skip = true
		case r == '%':
			percent = true
		case strings.ContainsRune("yYmMdDhHsS", r):
			return formatDate
		}
	}
	if percent {
		return formatPercent
	}
	return formatNumber
}

// numberText formats v with a comma decimal and no grouping. Fifteen
// significant digits drop float noise such as 12.340000000000002.
func numberText(v float64) string {
	if rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', 15, 64), 64); err == nil {
		v = rounded
	}
	return strings.Replace(strconv.FormatFloat(v, 'f', -1, 64), ".", ",", 1)
}
