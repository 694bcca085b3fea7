package numparse

import (
	"math"
	"testing"
)

func TestParseLocaleNumeric(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want float64
	}{
		{"european thousands and decimal", "1.234,56", 1234.56},
		{"comma decimal", "1234,56", 1234.56},
		{"comma decimal short", "50,50", 50.5},
		{"dot thousands", "1.500", 1500},
		{"dot thousands multiple groups", "12.345.678", 12345678},
		{"dot decimal", "1.5", 1.5},
		{"dot decimal two places", "12.50", 12.5},
		{"plain integer", "1000", 1000},
		{"plain decimal", "12.5", 12.5},
		{"empty", "", 0},
		{"dashes", "--", 0},
		{"single dash", "-", 0},
		{"n/a", "N/A", 0},
		{"en dash", "–", 0},
		{"percent", "12%", 12},
		{"euro prefix", "€45", 45},
		{"euro suffix with space", "45,30 €", 45.3},
		{"dollar", "$1.000,00", 1000},
		{"space thousands", "1 234", 1234},
		{"space thousands with comma decimal", "1 234,56", 1234.56},
		{"nbsp thousands", "12\u00a0500", 12500},
		{"narrow nbsp thousands", "12\u202f500,5", 12500.5},
		{"negative", "-5,5", -5.5},
		{"trailing text", "12 clics", 12},
		{"garbage", "abc", 0},
		{"overflow", "1e400", 0},
		{"padded", "  7  ", 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLocaleNumeric(tt.in)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("ParseLocaleNumeric(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseLocaleNumericIsTotal(t *testing.T) {
	inputs := []string{
		"NaN", "Inf", "-Inf", "+Infinity", "1e309", "..", ",,", ".,", "€", "%%",
		"\x00", "ñ", "1,2,3", "1.2.3", "--5", "+-3", "0x1p-2", "1_000", "∞",
	}
	for _, in := range inputs {
		got := ParseLocaleNumeric(in)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Errorf("ParseLocaleNumeric(%q) = %v, want finite", in, got)
		}
	}
}

func TestNonNegative(t *testing.T) {
	if NonNegative(-3) != 0 {
		t.Fatal("negative values must clamp to 0")
	}
	if NonNegative(math.NaN()) != 0 || NonNegative(math.Inf(1)) != 0 {
		t.Fatal("non-finite values must clamp to 0")
	}
	if NonNegative(4.5) != 4.5 {
		t.Fatal("positive values must pass through")
	}
}

func TestParseAbsent(t *testing.T) {
	if Parse("12", false) != 0 {
		t.Fatal("absent token must be 0")
	}
	if Parse("12", true) != 12 {
		t.Fatal("present token must parse")
	}
}

func TestFinite(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{12.5, 12.5},
		{-3, -3},
		{math.Inf(1), math.MaxFloat64},
		{math.Inf(-1), -math.MaxFloat64},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Finite(tt.in); got != tt.want {
			t.Errorf("Finite(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
