package headermap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/campaign-insights/internal/textnorm"
)

// =============================================================================
// PLATFORM INFERENCE
// =============================================================================

// Canonical platform names.
const (
	PlatformFacebook  = "Facebook"
	PlatformMeta      = "Meta"
	PlatformInstagram = "Instagram"
	PlatformGoogleAds = "Google Ads"
	PlatformYouTube   = "YouTube"
	PlatformTwitter   = "Twitter"
	PlatformLinkedIn  = "LinkedIn"
	PlatformTikTok    = "TikTok"
	PlatformMicrosoft = "Microsoft Ads"
	PlatformPinterest = "Pinterest"
	PlatformSnapchat  = "Snapchat"
)

type cluster struct {
	platform string
	keywords []string
}

// clusters hold header terms that only one platform's exports use. Order
// breaks ties.
var clusters = []cluster{
	{PlatformMeta, []string{
		"amount spent", "reach", "frequency", "cost per result", "result indicator",
		"link clicks", "ad set name", "adset name", "reporting starts", "reporting ends",
		"delivery platform", "purchases conversion value",
		"importe gastado", "alcance", "frecuencia", "clics en el enlace", "conjunto de anuncios",
		"montant depense", "couverture", "ausgegebener betrag", "reichweite",
	}},
	{PlatformGoogleAds, []string{
		"impr", "avg cpc", "avg cpm", "conv", "conv value", "cost conv", "all conv",
		"interactions", "interaction rate", "search impr share", "ad group", "campaign type",
	}},
	{PlatformTwitter, []string{
		"engagements", "engagement rate", "retweets", "replies", "tweet", "promoted tweet",
		"billed engagements", "follows", "media engagements",
	}},
	{PlatformLinkedIn, []string{
		"total spent", "campaign group", "leads", "sponsored content", "one click leads",
		"lead generation mail", "clicks to landing page", "average cpc",
	}},
	{PlatformTikTok, []string{
		"video views", "2 second video views", "6 second video views", "video views at 100",
		"ad group name", "cost per 1000 people reached", "paid likes", "profile visits",
		"average play time per video view",
	}},
}

var clusterTokens = func() [][][]string {
	out := make([][][]string, len(clusters))
	for i, c := range clusters {
		for _, k := range c.keywords {
			out[i] = append(out[i], textnorm.Tokens(k))
		}
	}
	return out
}()

// InferPlatform guesses the platform of an export without a platform column
// from platform-specific header terms. It returns the platform with the most
// keyword hits and the hit count, or "" and 0 when nothing matches.
func InferPlatform(headers []string) (string, int) {
	tokens := make([][]string, len(headers))
	for i, h := range headers {
		tokens[i] = textnorm.Tokens(h)
	}

	best, bestHits := "", 0
	for i, c := range clusters {
		hits := 0
		for _, kw := range clusterTokens[i] {
			for _, ht := range tokens {
				if textnorm.ContainsTokens(ht, kw) {
					hits++
					break
				}
			}
		}
		if hits > bestHits {
			best, bestHits = c.platform, hits
		}
	}
	return best, bestHits
}

// =============================================================================
// PLATFORM ALIASES
// =============================================================================

type alias struct {
	tokens   []string
	compact  string
	platform string
}

var defaultAliases = []struct {
	platform string
	names    []string
}{
	{PlatformFacebook, []string{"fb", "facebook", "facebook ads"}},
	{PlatformMeta, []string{"meta", "meta ads"}},
	{PlatformInstagram, []string{"instagram", "ig", "instagram ads"}},
	{PlatformGoogleAds, []string{"google", "google ads", "adwords", "google adwords"}},
	{PlatformYouTube, []string{"youtube", "youtube ads"}},
	{PlatformTwitter, []string{"twitter", "twitter ads", "x", "x ads"}},
	{PlatformLinkedIn, []string{"linkedin", "linkedin ads"}},
	{PlatformTikTok, []string{"tiktok", "tiktok ads"}},
	{PlatformMicrosoft, []string{"bing", "bing ads", "microsoft ads", "microsoft advertising"}},
	{PlatformPinterest, []string{"pinterest", "pinterest ads"}},
	{PlatformSnapchat, []string{"snapchat", "snapchat ads"}},
}

// minCompactAlias is the shortest alias matched inside concatenated words
// ("facebookads", "googlesearch").
const minCompactAlias = 6

func newAlias(name, platform string) alias {
	tokens := textnorm.Tokens(name)
	return alias{tokens: tokens, compact: strings.Join(tokens, ""), platform: platform}
}

func buildAliases(extra map[string]string) ([]alias, error) {
	var out []alias

	names := make([]string, 0, len(extra))
	for name := range extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		platform := strings.TrimSpace(extra[name])
		if textnorm.Key(name) == "" || platform == "" {
			return nil, fmt.Errorf("invalid platform alias %q -> %q", name, extra[name])
		}
		out = append(out, newAlias(name, platform))
	}

	for _, group := range defaultAliases {
		for _, name := range group.names {
			out = append(out, newAlias(name, group.platform))
		}
	}

	// Longer aliases first so "facebook ads" beats "facebook"; the stable
	// sort keeps configured aliases ahead of built-ins of equal length.
	sort.SliceStable(out, func(i, j int) bool { return len(out[i].tokens) > len(out[j].tokens) })
	return out, nil
}

// CanonicalPlatform maps a raw platform cell to a canonical name.
//
//   - Only the part before the first ';' or '|' is considered.
//   - An alias matches when its tokens appear in the value ("FB - Retargeting"
//     is Facebook, "Box" is not X).
//   - Unknown values are returned trimmed, unchanged.
//
// An empty value returns "".
func (m *Mapper) CanonicalPlatform(raw string) string {
	value := raw
	if i := strings.IndexAny(value, ";|"); i >= 0 {
		value = value[:i]
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	tokens := textnorm.Tokens(value)
	key := strings.Join(tokens, " ")
	for _, a := range m.aliases {
		if strings.Join(a.tokens, " ") == key {
			return a.platform
		}
	}
	for _, a := range m.aliases {
		if textnorm.ContainsTokens(tokens, a.tokens) {
			return a.platform
		}
	}
	joined := strings.Join(tokens, "")
	for _, a := range m.aliases {
		if len(a.compact) >= minCompactAlias && strings.Contains(joined, a.compact) {
			return a.platform
		}
	}
	return value
}
