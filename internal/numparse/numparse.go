// =============================================================================
// Campaign Insights - Locale-Aware Numeric Parser
// =============================================================================
//
// Converts raw cell text from campaign exports into float64 values. Exports
// come from tools configured for Spain, France, Germany or the US, so the same
// quantity may arrive as "1.234,56", "1234,56", "1 234,56", "€45" or "12%".
//
// PARSING RULES (in order):
//   1. Empty or placeholder tokens ("", "-", "--", "N/A", en/em dash) -> 0
//   2. Strip currency and percent symbols and whitespace
//   3. Both '.' and ',' present -> '.' is thousands, ',' is decimal
//   4. Only ',' present          -> ',' is decimal
//   5. Only '.' present in 3-digit groups ("1.500", "12.345.678") -> '.' is
//      thousands
//   6. Parse the longest numeric prefix; anything unparsable -> 0
//
// European precedence is deliberate: "1,234.56" is NOT read as 1234.56.
//
// =============================================================================

package numparse

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// placeholders are tokens exports use for "no value".
var placeholders = map[string]bool{
	"":     true,
	"-":    true,
	"--":   true,
	"n/a":  true,
	"na":   true,
	"n.a.": true,
	"–":    true,
	"—":    true,
}

// symbols are stripped before separator handling.
var symbols = strings.NewReplacer("€", "", "$", "", "%", "", "£", "")

// numericPrefix mirrors a lenient parseFloat: leading sign, digits, optional
// fraction and exponent.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// dotGrouped matches integers written with '.' thousands separators.
var dotGrouped = regexp.MustCompile(`^[+-]?\d{1,3}(\.\d{3})+$`)

// ParseLocaleNumeric converts a raw token into a finite number. It is pure and
// total: every input maps to a finite value, with 0 as the fallback.
func ParseLocaleNumeric(raw string) float64 {
	value := strings.TrimSpace(raw)
	if placeholders[strings.ToLower(value)] {
		return 0
	}

	cleaned := symbols.Replace(value)

	// Spaces (including NBSP and narrow NBSP) only ever act as thousands
	// separators in these exports.
	cleaned = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, cleaned)

	hasDot := strings.Contains(cleaned, ".")
	hasComma := strings.Contains(cleaned, ",")
	switch {
	case hasDot && hasComma:
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case hasComma:
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	case dotGrouped.MatchString(cleaned):
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}

	return parsePrefix(cleaned)
}

// Parse is ParseLocaleNumeric for optional tokens: ok is false when the token
// is absent.
func Parse(raw string, ok bool) float64 {
	if !ok {
		return 0
	}
	return ParseLocaleNumeric(raw)
}

// NonNegative clamps measured quantities (impressions, cost, ...) at zero.
func NonNegative(f float64) float64 {
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Finite saturates sums and products that overflowed the float64 range at
// ±math.MaxFloat64. NaN becomes 0.
func Finite(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return 0
	case math.IsInf(f, 1):
		return math.MaxFloat64
	case math.IsInf(f, -1):
		return -math.MaxFloat64
	}
	return f
}

func parsePrefix(s string) float64 {
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
