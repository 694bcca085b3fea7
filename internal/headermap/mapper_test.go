package headermap

import (
	"reflect"
	"testing"
)

func indexOf(t *testing.T, m ColumnMap, f Field) int {
	t.Helper()
	idx, ok := m.Index(f)
	if !ok {
		t.Fatalf("field %s not mapped; map = %v", f, m)
	}
	return idx
}

func TestMapExactHeaders(t *testing.T) {
	headers := []string{"platform", "impressions", "clicks", "cost", "revenue"}
	m := Default().Map(headers)

	want := map[Field]int{
		FieldPlatform:    0,
		FieldImpressions: 1,
		FieldClicks:      2,
		FieldCost:        3,
		FieldRevenue:     4,
	}
	if len(m) != len(want) {
		t.Fatalf("mapped %d fields, want %d: %v", len(m), len(want), m)
	}
	for f, idx := range want {
		if got := indexOf(t, m, f); got != idx {
			t.Errorf("%s -> %d, want %d", f, got, idx)
		}
		if m[f].Strategy != StrategyExact {
			t.Errorf("%s strategy = %s, want exact", f, m[f].Strategy)
		}
	}
}

func TestMapCaseAndAccentInsensitive(t *testing.T) {
	headers := []string{"PLATAFORMA", "Impresiones", "Clics", "Coste", "Ingresos", "Campaña"}
	m := Default().Map(headers)
	for f, idx := range map[Field]int{
		FieldPlatform:     0,
		FieldImpressions:  1,
		FieldClicks:       2,
		FieldCost:         3,
		FieldRevenue:      4,
		FieldCampaignName: 5,
	} {
		if got := indexOf(t, m, f); got != idx {
			t.Errorf("%s -> %d, want %d", f, got, idx)
		}
	}
}

func TestMapMetaExport(t *testing.T) {
	headers := []string{
		"Reporting starts", "Reporting ends", "Campaign name", "Ad set name", "Delivery",
		"Results", "Result indicator", "Reach", "Impressions", "Cost per result",
		"Amount spent (EUR)", "Link clicks", "CPC (cost per link click) (EUR)",
		"CPM (cost per 1,000 impressions) (EUR)", "CTR (link click-through rate)",
	}
	m := Default().Map(headers)

	want := map[Field]int{
		FieldDate:             0,
		FieldCampaignName:     2,
		FieldAdSetName:        3,
		FieldStatus:           4,
		FieldConversions:      5,
		FieldImpressions:      8,
		FieldAmountSpentLocal: 10,
		FieldLinkClicks:       11,
		FieldCPC:              12,
		FieldCPM:              13,
		FieldCTR:              14,
	}
	for f, idx := range want {
		if got := indexOf(t, m, f); got != idx {
			t.Errorf("%s -> %d (%s), want %d", f, got, m[f].Header, idx)
		}
	}
	// "Cost per result" is a rate; it must not become the cost column.
	if c, ok := m[FieldCost]; ok {
		t.Errorf("cost mapped to %q", c.Header)
	}
	if m.Has(FieldClicks) {
		t.Errorf("clicks mapped to %q; link clicks must not be claimed twice", m[FieldClicks].Header)
	}
}

func TestMapGoogleAdsExport(t *testing.T) {
	headers := []string{"Campaign", "Ad group", "Impr.", "Clicks", "CTR", "Avg. CPC", "Cost", "Conversions", "Conv. value", "Cost / conv."}
	m := Default().Map(headers)
	want := map[Field]int{
		FieldCampaignName: 0,
		FieldAdSetName:    1,
		FieldImpressions:  2,
		FieldClicks:       3,
		FieldCTR:          4,
		FieldCPC:          5,
		FieldCost:         6,
		FieldConversions:  7,
		FieldRevenue:      8,
	}
	for f, idx := range want {
		if got := indexOf(t, m, f); got != idx {
			t.Errorf("%s -> %d (%s), want %d", f, got, m[f].Header, idx)
		}
	}
}

func TestMapFuzzyStrategies(t *testing.T) {
	tests := []struct {
		name     string
		headers  []string
		field    Field
		index    int
		strategy string
	}{
		{"header contains variant", []string{"id", "Total Impressions (All)", "x"}, FieldImpressions, 1, StrategySubstring},
		{"concatenated words", []string{"id", "linkclicks", "x"}, FieldLinkClicks, 1, StrategySubstring},
		{"variant contains header", []string{"id", "Gastado"}, FieldAmountSpentLocal, 1, StrategySubstring},
		{"abbreviation", []string{"id", "Impre"}, FieldImpressions, 1, StrategyPrefix},
		{"truncated", []string{"id", "Conversi"}, FieldConversions, 1, StrategyPrefix},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Default().Map(tt.headers)
			c, ok := m[tt.field]
			if !ok {
				t.Fatalf("%s not mapped: %v", tt.field, m)
			}
			if c.Index != tt.index || c.Strategy != tt.strategy {
				t.Fatalf("%s -> %d via %s, want %d via %s", tt.field, c.Index, c.Strategy, tt.index, tt.strategy)
			}
		})
	}
}

func TestMapExactBeatsEarlierFuzzy(t *testing.T) {
	// "Link clicks" contains the clicks variant; it must still go to link_clicks.
	headers := []string{"Link clicks", "Clicks"}
	m := Default().Map(headers)
	if indexOf(t, m, FieldLinkClicks) != 0 || indexOf(t, m, FieldClicks) != 1 {
		t.Fatalf("map = %v", m)
	}

	m = Default().Map([]string{"Campaign", "Cost / conv.", "Cost"})
	if m.Has(FieldCPM) || m.Has(FieldCPC) {
		t.Fatalf("a cost-per-conversion column must not map to cpc or cpm: %v", m)
	}
	if indexOf(t, m, FieldCost) != 2 {
		t.Fatalf("map = %v", m)
	}
}

func TestMapUnmappable(t *testing.T) {
	headers := []string{"alpha", "beta", "gamma"}
	m := Default().Map(headers)
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}
	if got := m.Unmapped(headers); !reflect.DeepEqual(got, headers) {
		t.Fatalf("Unmapped = %v", got)
	}
}

func TestMapIsIdempotent(t *testing.T) {
	inputs := [][]string{
		{"platform", "impressions", "clicks", "cost", "revenue"},
		{"Campaign", "Ad group", "Impr.", "Clicks", "Cost", "Conv. value"},
		{"Plateforme", "Affichages", "Clics", "Coût", "Revenus"},
		{"Kampagne", "Impressionen", "Klicks", "Kosten", "Umsatz"},
		{"", "alpha", "Impr", ""},
	}
	mapper := Default()
	for _, headers := range inputs {
		first := mapper.Map(headers)
		for i := 0; i < 5; i++ {
			if again := mapper.Map(headers); !reflect.DeepEqual(first, again) {
				t.Fatalf("Map(%v) not deterministic: %v vs %v", headers, first, again)
			}
		}
	}
}

func TestMapNeverClaimsColumnTwice(t *testing.T) {
	headers := []string{"Cost", "Spend", "Costo", "Clicks", "Clics", "Impressions"}
	m := Default().Map(headers)
	seen := map[int]Field{}
	for f, c := range m {
		if other, dup := seen[c.Index]; dup {
			t.Fatalf("column %d claimed by %s and %s", c.Index, f, other)
		}
		seen[c.Index] = f
	}
}

func TestNewWithExtraVariants(t *testing.T) {
	mapper, err := New(Config{Variants: map[Field][]string{FieldRevenue: {"Umsatzerlöse brutto"}}})
	if err != nil {
		t.Fatal(err)
	}
	m := mapper.Map([]string{"Plattform", "Umsatzerlose Brutto"})
	if indexOf(t, m, FieldRevenue) != 1 {
		t.Fatalf("map = %v", m)
	}

	if _, err := New(Config{Variants: map[Field][]string{"budget_total": {"x"}}}); err == nil {
		t.Fatal("unknown field must be rejected")
	}
	if _, err := New(Config{Variants: map[Field][]string{FieldCost: {" - "}}}); err == nil {
		t.Fatal("empty variant must be rejected")
	}
}

func TestParseField(t *testing.T) {
	tests := map[string]Field{
		"impressions":        FieldImpressions,
		"Amount Spent Local": FieldAmountSpentLocal,
		"amount_spent_eur":   FieldAmountSpentLocal,
		"ad-set-name":        FieldAdSetName,
	}
	for in, want := range tests {
		got, ok := ParseField(in)
		if !ok || got != want {
			t.Errorf("ParseField(%q) = %q,%v want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseField("reach"); ok {
		t.Error("reach is not a canonical field")
	}
}

func TestDetectLanguage(t *testing.T) {
	mapper := Default()
	tests := []struct {
		headers []string
		want    string
	}{
		{[]string{"plataforma", "impresiones", "clics", "coste"}, LangSpanish},
		{[]string{"platform", "impressions", "clicks", "cost"}, LangEnglish},
		{[]string{"plateforme", "affichages", "clics", "coût"}, LangFrench},
		{[]string{"plattform", "impressionen", "klicks", "kosten"}, LangGerman},
		{[]string{"ctr", "cpc"}, ""},
		{[]string{"alpha"}, ""},
	}
	for _, tt := range tests {
		if got := mapper.DetectLanguage(tt.headers); got != tt.want {
			t.Errorf("DetectLanguage(%v) = %q, want %q", tt.headers, got, tt.want)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]string{"Campaña", "Impr."})
	b := Fingerprint([]string{"campana", "IMPR"})
	c := Fingerprint([]string{"Impr.", "Campaña"})
	if a != b {
		t.Fatalf("fingerprint should ignore case, accents and punctuation: %s vs %s", a, b)
	}
	if a == c {
		t.Fatal("fingerprint should depend on column order")
	}
	if len(a) != 16 {
		t.Fatalf("fingerprint length = %d", len(a))
	}
}
