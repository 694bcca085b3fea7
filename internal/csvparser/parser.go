// =============================================================================
// Campaign Insights - CSV Parser Module
// =============================================================================
//
// This module turns decoded export text into a header row plus data rows. It
// handles the formats ad platforms and spreadsheet tools actually produce:
//   - Comma, semicolon or tab delimiters (auto-detected or configured)
//   - Quoted fields containing the delimiter
//   - CRLF and LF line endings, blank lines, a leading BOM
//
// FEATURES:
//   - DetectDelimiter prefers ';' because European exports use ',' inside
//     decimal numbers
//   - SplitLine is a quote-toggling tokenizer; it never fails
//   - Table keeps the original line number of every row for diagnostics
//
// The whole file is held in memory; there is no streaming mode.
//
// =============================================================================

package csvparser

import (
	"fmt"
	"strings"
)

// =============================================================================
// DELIMITER DETECTION
// =============================================================================

// Candidate delimiters.
const (
	Comma     = ','
	Semicolon = ';'
	Tab       = '\t'
)

// sampleLines is how many non-empty lines DetectDelimiter looks at.
const sampleLines = 5

// DetectOptions tunes delimiter detection.
type DetectOptions struct {
	// SemicolonThreshold is the number of ';' in the first line needed to
	// choose ';'. 1 by default; 3 is the stricter variant.
	SemicolonThreshold int
}

// DetectDelimiter chooses the field separator from the first non-empty line.
//
// DECISION POLICY (first match wins):
//  1. ';' count >= SemicolonThreshold -> ';'
//  2. tab count > comma count         -> '\t'
//  3. otherwise                       -> ','
//
// Empty input returns ',' and a warning; it is never an error here.
func DetectDelimiter(text string, opts DetectOptions) (rune, string) {
	lines := NonEmptyLines(text)
	if len(lines) > sampleLines {
		lines = lines[:sampleLines]
	}
	if len(lines) == 0 {
		return Comma, "no content to detect a delimiter from, defaulting to ','"
	}

	threshold := opts.SemicolonThreshold
	if threshold <= 0 {
		threshold = 1
	}

	first := lines[0]
	commas := strings.Count(first, ",")
	semicolons := strings.Count(first, ";")
	tabs := strings.Count(first, "\t")

	switch {
	case semicolons >= threshold:
		return Semicolon, ""
	case tabs > commas:
		return Tab, ""
	}
	return Comma, ""
}

// DelimiterFromSetting resolves a configured delimiter name. ok is false for
// "auto" or an empty setting, meaning detection should run.
func DelimiterFromSetting(setting string) (rune, bool, error) {
	if setting == "\t" {
		return Tab, true, nil
	}
	switch strings.ToLower(strings.TrimSpace(setting)) {
	case "", "auto":
		return 0, false, nil
	case ",", "comma":
		return Comma, true, nil
	case ";", "semicolon":
		return Semicolon, true, nil
	case "\\t", "tab":
		return Tab, true, nil
	}
	return 0, false, fmt.Errorf("unsupported delimiter %q (use auto, comma, semicolon or tab)", setting)
}

// DelimiterName returns a printable name for a delimiter.
func DelimiterName(d rune) string {
	switch d {
	case Tab:
		return "tab"
	case 0:
		return ""
	}
	return string(d)
}

// =============================================================================
// TOKENIZER
// =============================================================================

// SplitLine splits one line on delim. A '"' toggles quoting; delimiters inside
// a quoted segment are literal. A doubled quote inside a quoted segment is an
// escaped quote. Surrounding whitespace is trimmed from every field.
func SplitLine(line string, delim rune) []string {
	var (
		fields   []string
		current  strings.Builder
		inQuotes bool
	)
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				current.WriteRune('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			fields = append(fields, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(current.String()))
	return fields
}

// =============================================================================
// TABLE
// =============================================================================

// Table is the tokenized content of an export.
type Table struct {
	// Headers is the first non-empty line, tokenized and trimmed.
	Headers []string

	// Rows holds every following non-empty line, tokenized.
	Rows [][]string

	// LineNumbers holds the 1-based source line of each entry in Rows.
	LineNumbers []int

	// HeaderLine is the 1-based source line of the header row.
	HeaderLine int

	Delimiter rune
}

// NonEmptyLines splits text on LF or CRLF and drops blank lines. A leading
// BOM is removed.
func NonEmptyLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Parse tokenizes text using delim. It does not decide whether the result is
// usable; callers check the row count.
func Parse(text string, delim rune) *Table {
	table := &Table{Delimiter: delim}
	text = strings.TrimPrefix(text, "\ufeff")

	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := SplitLine(line, delim)
		if table.Headers == nil {
			table.Headers = cleanHeaders(fields)
			table.HeaderLine = i + 1
			continue
		}
		table.Rows = append(table.Rows, fields)
		table.LineNumbers = append(table.LineNumbers, i+1)
	}
	return table
}

// cleanHeaders trims headers and strips stray quotes left by lenient exports.
// Empty headers stay empty so column positions are preserved.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		cleaned[i] = strings.TrimSpace(strings.Trim(strings.TrimSpace(header), `"'`))
	}
	return cleaned
}

// HasHeader reports whether at least one header cell is non-empty.
func (t *Table) HasHeader() bool {
	for _, h := range t.Headers {
		if h != "" {
			return true
		}
	}
	return false
}
