// =============================================================================
// Campaign Insights - Header Mapper
// =============================================================================
//
// The Mapper resolves an export's header row to canonical fields.
//
// MATCHING POLICY:
//   Strategies run in order (exact, substring, prefix). Each strategy pass
//   visits every still-unmapped field in priority order (see Fields) before
//   the next strategy runs, and a column claimed by one field is never
//   offered to another. An exact match anywhere therefore beats a fuzzy match
//   anywhere, and "Link clicks" cannot be claimed by both link_clicks and
//   clicks.
//
// Mapping is deterministic: the same headers always yield the same map.
//
// =============================================================================

package headermap

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ginjaninja78/campaign-insights/internal/textnorm"
	"github.com/ginjaninja78/campaign-insights/internal/types"
)

// Column is the header a field was resolved to.
type Column struct {
	Index    int
	Header   string
	Strategy string
}

// ColumnMap is the partial mapping from canonical field to column.
type ColumnMap map[Field]Column

// Index returns the column index for f.
func (m ColumnMap) Index(f Field) (int, bool) {
	c, ok := m[f]
	if !ok {
		return -1, false
	}
	return c.Index, true
}

// Has reports whether f was mapped.
func (m ColumnMap) Has(f Field) bool {
	_, ok := m[f]
	return ok
}

// Unmapped returns the non-empty headers no field claimed, in column order.
func (m ColumnMap) Unmapped(headers []string) []string {
	claimed := make(map[int]bool, len(m))
	for _, c := range m {
		claimed[c.Index] = true
	}
	var out []string
	for i, h := range headers {
		if !claimed[i] && strings.TrimSpace(h) != "" {
			out = append(out, h)
		}
	}
	return out
}

// Describe converts the map into the diagnostics representation.
func (m ColumnMap) Describe() map[string]types.MappedColumn {
	out := make(map[string]types.MappedColumn, len(m))
	for f, c := range m {
		out[string(f)] = types.MappedColumn{Index: c.Index, Header: c.Header, Strategy: c.Strategy}
	}
	return out
}

// Config extends the built-in tables. Additions never replace defaults.
type Config struct {
	// Variants adds header spellings per field.
	Variants map[Field][]string

	// Aliases maps extra raw platform values to canonical platform names.
	// They take precedence over the built-in alias table.
	Aliases map[string]string

	// Matchers overrides the strategy chain. Nil means DefaultMatchers.
	Matchers []Matcher
}

// Mapper maps header rows to canonical fields. It is immutable after
// construction and safe for concurrent use.
type Mapper struct {
	variants map[Field][]string
	langs    map[string][]string // variant key -> languages
	matchers []Matcher
	aliases  []alias
}

// New builds a Mapper from the built-in tables plus cfg.
func New(cfg Config) (*Mapper, error) {
	m := &Mapper{
		variants: make(map[Field][]string, len(Fields)),
		langs:    make(map[string][]string),
		matchers: cfg.Matchers,
	}
	if len(m.matchers) == 0 {
		m.matchers = DefaultMatchers()
	}

	for _, f := range Fields {
		for _, group := range defaultVariants[f] {
			m.variants[f] = append(m.variants[f], group.variants...)
			if group.lang == LangNeutral {
				continue
			}
			for _, v := range group.variants {
				m.addLang(textnorm.Key(v), group.lang)
			}
		}
	}

	// Sorted for a deterministic variant order.
	extra := make([]Field, 0, len(cfg.Variants))
	for f := range cfg.Variants {
		extra = append(extra, f)
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	for _, f := range extra {
		if _, ok := defaultVariants[f]; !ok {
			return nil, fmt.Errorf("unknown canonical field %q", f)
		}
		for _, v := range cfg.Variants[f] {
			if textnorm.Key(v) == "" {
				return nil, fmt.Errorf("empty header variant for field %q", f)
			}
			m.variants[f] = append(m.variants[f], v)
		}
	}

	aliases, err := buildAliases(cfg.Aliases)
	if err != nil {
		return nil, err
	}
	m.aliases = aliases
	return m, nil
}

var defaultMapper = sync.OnceValue(func() *Mapper {
	m, err := New(Config{})
	if err != nil {
		panic(err)
	}
	return m
})

// Default returns the shared Mapper with only the built-in tables.
func Default() *Mapper {
	return defaultMapper()
}

func (m *Mapper) addLang(key, lang string) {
	for _, l := range m.langs[key] {
		if l == lang {
			return
		}
	}
	m.langs[key] = append(m.langs[key], lang)
}

// Variants returns a copy of the header spellings known for f.
func (m *Mapper) Variants(f Field) []string {
	return append([]string(nil), m.variants[f]...)
}

// Map resolves headers to canonical fields.
func (m *Mapper) Map(headers []string) ColumnMap {
	result := make(ColumnMap)
	claimed := make(map[int]bool)

	for _, matcher := range m.matchers {
		for _, f := range Fields {
			if result.Has(f) {
				continue
			}
			idx, ok := matcher.Match(headers, m.variants[f], claimed)
			if !ok {
				continue
			}
			claimed[idx] = true
			result[f] = Column{Index: idx, Header: headers[idx], Strategy: matcher.Name()}
		}
	}
	return result
}

// DetectLanguage returns the language whose variants exactly match the most
// headers, or "" when no header carries a language. Ties go to en, es, fr, de
// in that order. The result is informational only.
func (m *Mapper) DetectLanguage(headers []string) string {
	hits := make(map[string]int)
	for _, h := range headers {
		for _, lang := range m.langs[textnorm.Key(h)] {
			hits[lang]++
		}
	}
	best, bestHits := "", 0
	for _, lang := range languages {
		if hits[lang] > bestHits {
			best, bestHits = lang, hits[lang]
		}
	}
	return best
}

// Fingerprint identifies a header layout independent of case, accents and
// punctuation. Exports from the same report template share a fingerprint.
func Fingerprint(headers []string) string {
	keys := make([]string, len(headers))
	for i, h := range headers {
		keys[i] = textnorm.Key(h)
	}
	sum := sha256.Sum256([]byte(strings.Join(keys, "|")))
	return hex.EncodeToString(sum[:])[:16]
}
