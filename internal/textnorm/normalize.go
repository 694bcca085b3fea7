// Package textnorm folds strings for case- and accent-insensitive comparison.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases s and strips combining diacritical marks, so that
// "Impresiones", "IMPRESIONES" and "Ímpresiones" all compare equal. Surrounding
// whitespace is trimmed. It never fails: if the transform errors, the
// lowercased input is returned.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.TrimSpace(strings.ToLower(out))
}

// Tokens splits a normalized string into letter/digit runs.
//
//	Tokens("cpc (cost per link click) (eur)") == []string{"cpc", "cost", "per", "link", "click", "eur"}
func Tokens(s string) []string {
	return strings.FieldsFunc(Normalize(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Key collapses a string to its tokens joined by single spaces. Headers like
// "Amount_Spent", "amount spent" and "Amount-spent " share the key
// "amount spent".
func Key(s string) string {
	return strings.Join(Tokens(s), " ")
}

// ContainsTokens reports whether needle's tokens appear as a contiguous run
// inside haystack's tokens.
func ContainsTokens(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		match := true
		for j := range needle {
			if haystack[i+j] != needle[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
