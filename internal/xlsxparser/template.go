// =============================================================================
// Campaign Insights - XLSX Header Template Parser
// =============================================================================
//
// Header templates let analysts teach the mapper new column spellings
// without touching code. A template is a workbook with one variant per row.
//
// TEMPLATE STRUCTURE (Expected Columns):
//
//   | Column A        | Column B              | Column C | Column D   |
//   |-----------------|-----------------------|----------|------------|
//   | Canonical Field | Header Variant        | Language | Platform   |
//   | cost            | Spend (USD)           | en       | Google Ads |
//   | revenue         | Umsatz brutto         | de       |            |
//   | link_clicks     | Clics sur le lien     | fr       | Meta       |
//
// Every sheet not starting with "_" is read. Language and Platform are
// informational and kept on each entry.
//
// =============================================================================

package xlsxparser

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/campaign-insights/internal/headermap"
)

// =============================================================================
// TEMPLATE STRUCTURE
// =============================================================================

// TemplateEntry is one row of a header template.
type TemplateEntry struct {
	Field    headermap.Field
	Variant  string
	Language string
	Platform string

	// Sheet and Row locate the entry for error messages (Row is 1-based).
	Sheet string
	Row   int
}

// HeaderTemplate is a parsed header-variant workbook.
type HeaderTemplate struct {
	// TemplateFile is the path to the source workbook.
	TemplateFile string

	Entries []TemplateEntry
}

// Variants groups the entries by canonical field, in row order.
func (t *HeaderTemplate) Variants() map[headermap.Field][]string {
	out := make(map[headermap.Field][]string)
	for _, e := range t.Entries {
		out[e.Field] = append(out[e.Field], e.Variant)
	}
	return out
}

// =============================================================================
// TEMPLATE COLUMN CONFIGURATION
// =============================================================================

// TemplateColumns defines which columns hold which data (0-based).
type TemplateColumns struct {
	FieldColumn    int
	VariantColumn  int
	LanguageColumn int
	PlatformColumn int

	// DataStartRow is the first 0-based row holding entries.
	DataStartRow int
}

// DefaultTemplateColumns returns the layout shown in the module header.
func DefaultTemplateColumns() TemplateColumns {
	return TemplateColumns{
		FieldColumn:    0, // Column A
		VariantColumn:  1, // Column B
		LanguageColumn: 2, // Column C
		PlatformColumn: 3, // Column D
		DataStartRow:   1, // Row 2
	}
}

// =============================================================================
// PARSING FUNCTIONS
// =============================================================================

// LoadHeaderTemplate parses a header template with the default layout.
func LoadHeaderTemplate(templatePath string) (*HeaderTemplate, error) {
	return LoadHeaderTemplateWithConfig(templatePath, DefaultTemplateColumns())
}

// LoadHeaderTemplateWithConfig parses a header template.
//
// RETURNS:
//   - The template entries of every sheet.
//   - An error if the workbook cannot be read or a row names an unknown
//     canonical field.
func LoadHeaderTemplateWithConfig(templatePath string, columns TemplateColumns) (*HeaderTemplate, error) {
	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open template file: %w", err)
	}
	defer f.Close()

	template := &HeaderTemplate{TemplateFile: templatePath}
	for _, sheetName := range f.GetSheetList() {
		if strings.HasPrefix(sheetName, "_") {
			continue
		}
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("failed to read rows of sheet '%s': %w", sheetName, err)
		}
		for i := columns.DataStartRow; i < len(rows); i++ {
			entry, ok, err := parseTemplateRow(rows[i], columns)
			if err != nil {
				return nil, fmt.Errorf("sheet '%s' row %d: %w", sheetName, i+1, err)
			}
			if !ok {
				continue
			}
			entry.Sheet = sheetName
			entry.Row = i + 1
			template.Entries = append(template.Entries, entry)
		}
	}
	return template, nil
}

// parseTemplateRow returns ok=false for rows without a field or variant.
func parseTemplateRow(row []string, columns TemplateColumns) (TemplateEntry, bool, error) {
	getCell := func(index int) string {
		if index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	name := getCell(columns.FieldColumn)
	variant := getCell(columns.VariantColumn)
	if name == "" || variant == "" {
		return TemplateEntry{}, false, nil
	}
	field, ok := headermap.ParseField(name)
	if !ok {
		return TemplateEntry{}, false, fmt.Errorf("unknown canonical field %q", name)
	}
	return TemplateEntry{
		Field:    field,
		Variant:  variant,
		Language: strings.ToLower(getCell(columns.LanguageColumn)),
		Platform: getCell(columns.PlatformColumn),
	}, true, nil
}
