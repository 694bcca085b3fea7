package headermap

import (
	"strings"

	"github.com/ginjaninja78/campaign-insights/internal/textnorm"
)

// Strategy names recorded in the column map.
const (
	StrategyExact     = "exact"
	StrategySubstring = "substring"
	StrategyPrefix    = "prefix"
)

// Matcher is one header matching strategy. Match returns the index of the
// first header, not present in claimed, that matches any of variants.
type Matcher interface {
	Name() string
	Match(headers []string, variants []string, claimed map[int]bool) (int, bool)
}

// DefaultMatchers returns the strategies in the order they are tried.
func DefaultMatchers() []Matcher {
	return []Matcher{ExactMatcher{}, SubstringMatcher{}, PrefixMatcher{}}
}

// header is a header cell prepared for comparison.
type header struct {
	key    string
	tokens []string
	ratio  bool
}

func prepare(raw string) header {
	tokens := textnorm.Tokens(raw)
	return header{
		key:    strings.Join(tokens, " "),
		tokens: tokens,
		ratio:  isRatioHeader(raw, tokens),
	}
}

func prepareAll(raw []string) []header {
	out := make([]header, len(raw))
	for i, r := range raw {
		out[i] = prepare(r)
	}
	return out
}

// ratioAbbrevs are abbreviations that make a variant describe a rate.
var ratioAbbrevs = map[string]bool{"ctr": true, "cpc": true, "cpm": true, "cpa": true, "roi": true}

// isRatioVariant reports whether a variant may match ratio-like headers.
func isRatioVariant(v header) bool {
	if v.ratio {
		return true
	}
	for _, t := range v.tokens {
		if ratioAbbrevs[t] {
			return true
		}
	}
	return false
}

func compact(key string) string {
	return strings.ReplaceAll(key, " ", "")
}

// scan calls match for every unclaimed, non-empty header in order and
// returns the first index for which it reports true.
func scan(headers []string, variants []string, claimed map[int]bool, match func(h, v header) bool) (int, bool) {
	hs := prepareAll(headers)
	vs := prepareAll(variants)
	for i, h := range hs {
		if claimed[i] || h.key == "" {
			continue
		}
		for _, v := range vs {
			if v.key != "" && match(h, v) {
				return i, true
			}
		}
	}
	return -1, false
}

// =============================================================================
// EXACT
// =============================================================================

// ExactMatcher matches when the normalized header equals a normalized variant.
// Punctuation and separators are ignored: "Amount_Spent" equals "amount spent"
// and "Impr." equals "impr".
type ExactMatcher struct{}

func (ExactMatcher) Name() string { return StrategyExact }

func (ExactMatcher) Match(headers []string, variants []string, claimed map[int]bool) (int, bool) {
	return scan(headers, variants, claimed, func(h, v header) bool {
		return h.key == v.key
	})
}

// =============================================================================
// SUBSTRING
// =============================================================================

// minCompactSubstring is the shortest variant matched inside concatenated
// words ("totalimpressions").
const minCompactSubstring = 5

// minReverseKey is the shortest header accepted when the header is contained
// in the variant rather than the other way round.
const minReverseKey = 4

// SubstringMatcher matches when the header contains a variant or a variant
// contains the header. Containment is token-aligned, so "red" does not match
// "ordered"; long variants also match inside concatenated words. Ratio-like
// headers ("Cost per result") only match ratio variants.
type SubstringMatcher struct{}

func (SubstringMatcher) Name() string { return StrategySubstring }

func (SubstringMatcher) Match(headers []string, variants []string, claimed map[int]bool) (int, bool) {
	return scan(headers, variants, claimed, func(h, v header) bool {
		if h.ratio && !isRatioVariant(v) {
			return false
		}
		if textnorm.ContainsTokens(h.tokens, v.tokens) {
			return true
		}
		if len(h.key) >= minReverseKey && textnorm.ContainsTokens(v.tokens, h.tokens) {
			return true
		}
		cv := compact(v.key)
		return len(cv) >= minCompactSubstring && strings.Contains(compact(h.key), cv)
	})
}

// =============================================================================
// PREFIX
// =============================================================================

// prefixLen is how many leading characters of a header are compared.
const prefixLen = 4

// minPrefixHeader is the shortest header word treated as an abbreviation.
const minPrefixHeader = 3

// PrefixMatcher handles truncated or abbreviated headers: a variant matches
// when it begins with the first few characters of the header, so "Impre" and
// "Conversi" resolve to impressions and conversions. Ratio-like headers are
// never matched by prefix.
type PrefixMatcher struct{}

func (PrefixMatcher) Name() string { return StrategyPrefix }

func (PrefixMatcher) Match(headers []string, variants []string, claimed map[int]bool) (int, bool) {
	return scan(headers, variants, claimed, func(h, v header) bool {
		if h.ratio {
			return false
		}
		first := []rune(h.tokens[0])
		if len(first) < minPrefixHeader {
			return false
		}
		if len(first) > prefixLen {
			first = first[:prefixLen]
		}
		return strings.HasPrefix(v.tokens[0], string(first))
	})
}
