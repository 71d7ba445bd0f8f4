package fieldnames

import (
	"strings"
	"testing"
)

func TestCurrencyLookups(t *testing.T) {
	cases := []struct {
		alpha, numeric string
	}{
		{"USD", "840"},
		{"EUR", "978"},
		{"GBP", "826"},
		{"JPY", "392"},
		{"XAF", "950"},
	}
	for _, tc := range cases {
		n, ok := NumericCurrency(tc.alpha)
		if !ok || n != tc.numeric {
			t.Fatalf("NumericCurrency(%s) = %q, %v", tc.alpha, n, ok)
		}
		a, ok := AlphaCurrency(tc.numeric)
		if !ok || a != tc.alpha {
			t.Fatalf("AlphaCurrency(%s) = %q, %v", tc.numeric, a, ok)
		}
	}

	if _, ok := NumericCurrency("usd"); ok {
		t.Fatal("lookup is case sensitive")
	}
	if _, ok := AlphaCurrency("999"); ok {
		t.Fatal("999 is not in the table")
	}
}

func TestCurrencyTableConsistent(t *testing.T) {
	all := Currencies()
	if len(all) < 150 {
		t.Fatalf("currency table looks truncated: %d rows", len(all))
	}
	for i, c := range all {
		if i > 0 && all[i-1].Alpha >= c.Alpha {
			t.Fatalf("currencies not sorted at %s", c.Alpha)
		}
		if a, _ := AlphaCurrency(c.Numeric); a != c.Alpha {
			t.Fatalf("reverse lookup of %s gave %s, want %s", c.Numeric, a, c.Alpha)
		}
		if c.Name == "" {
			t.Fatalf("%s has no name", c.Alpha)
		}
	}

	row, ok := LookupCurrency("978")
	if !ok || row.Alpha != "EUR" || row.Name != "Euro" {
		t.Fatalf("LookupCurrency(978) = %+v, %v", row, ok)
	}
	row, ok = LookupCurrency("USD")
	if !ok || row.Numeric != "840" {
		t.Fatalf("LookupCurrency(USD) = %+v, %v", row, ok)
	}
}

func TestLoadCurrenciesRejectsBadTables(t *testing.T) {
	cases := map[string]string{
		"short alpha":   `US: {numeric: "840", name: "x"}`,
		"short numeric": `USD: {numeric: "84", name: "x"}`,
		"dup numeric":   "USD: {numeric: \"840\", name: \"x\"}\nUSN: {numeric: \"840\", name: \"y\"}",
		"not yaml":      "[",
	}
	for name, data := range cases {
		if _, err := loadCurrencies([]byte(data)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	table, err := loadCurrencies([]byte(strings.TrimSpace(`
USD: {numeric: "840", name: "US Dollar"}
EUR: {numeric: "978", name: "Euro"}
`)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if table["EUR"].Alpha != "EUR" || table["EUR"].Numeric != "978" {
		t.Fatalf("unexpected row: %+v", table["EUR"])
	}
}
