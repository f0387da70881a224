package util

import "testing"

func TestNormalizeItemNameEquivalence(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Black Tassel", "black tassel"},
		{"black_tassel", "black tassel"},
		{"BLACK-TASSEL!!", "black tassel"},
		{"black__tassel", "black tassel"},
		{"  Black   Tassel  ", "black tassel"},
		{"Sword of Descension", "sword of descension"},
		{"The Flute", "the flute"},
		{"'Tulaytullah's Remembrance'", "tulaytullahs remembrance"},
		{"", ""},
		{"!!!", ""},
		{"___", ""},
	}

	for _, tc := range cases {
		got := NormalizeItemName(tc.raw)
		if got != tc.want {
			t.Errorf("NormalizeItemName(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestNormalizeItemNameIdempotent(t *testing.T) {
	inputs := []string{
		"Black Tassel",
		"black_tassel",
		"BLACK-TASSEL!!",
		"Primordial Jade Winged-Spear",
		"아를레키노",
		"",
	}

	for _, raw := range inputs {
		once := NormalizeItemName(raw)
		twice := NormalizeItemName(once)
		if once != twice {
			t.Errorf("not idempotent for %q: once=%q twice=%q", raw, once, twice)
		}
	}
}

func TestFirstToken(t *testing.T) {
	if got := FirstToken("black tassel"); got != "black" {
		t.Errorf("FirstToken = %q, want %q", got, "black")
	}
	if got := FirstToken(""); got != "" {
		t.Errorf("FirstToken empty = %q, want empty", got)
	}
	if got := FirstToken("   "); got != "" {
		t.Errorf("FirstToken blank = %q, want empty", got)
	}
}
