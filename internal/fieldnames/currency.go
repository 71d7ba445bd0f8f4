package fieldnames

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed currencies.yaml
var currencyData []byte

// Currency is one row of the ISO 4217 table.
type Currency struct {
	Alpha   string `yaml:"-"`
	Numeric string `yaml:"numeric"`
	Name    string `yaml:"name"`
}

var (
	currencyByAlpha   map[string]Currency
	currencyByNumeric map[string]Currency
)

func init() {
	byAlpha, err := loadCurrencies(currencyData)
	if err != nil {
		panic(fmt.Sprintf("fieldnames: embedded currency table: %v", err))
	}
	currencyByAlpha = byAlpha
	currencyByNumeric = make(map[string]Currency, len(byAlpha))
	for _, c := range byAlpha {
		currencyByNumeric[c.Numeric] = c
	}
}

// loadCurrencies parses the alpha-keyed YAML currency table.
func loadCurrencies(data []byte) (map[string]Currency, error) {
	var raw map[string]Currency
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse currency table: %w", err)
	}

	seen := make(map[string]string, len(raw))
	for alpha, c := range raw {
		if len(alpha) != 3 || len(c.Numeric) != 3 {
			return nil, fmt.Errorf("malformed currency entry %q -> %q", alpha, c.Numeric)
		}
		if prev, dup := seen[c.Numeric]; dup {
			return nil, fmt.Errorf("numeric code %s used by %s and %s", c.Numeric, prev, alpha)
		}
		seen[c.Numeric] = alpha
		c.Alpha = alpha
		raw[alpha] = c
	}
	return raw, nil
}

// NumericCurrency returns the numeric code for an uppercase alphabetic code.
func NumericCurrency(alpha string) (string, bool) {
	c, ok := currencyByAlpha[alpha]
	return c.Numeric, ok
}

// AlphaCurrency returns the alphabetic code for a numeric code.
func AlphaCurrency(numeric string) (string, bool) {
	c, ok := currencyByNumeric[numeric]
	return c.Alpha, ok
}

// LookupCurrency returns the full table row for an alphabetic or numeric code.
func LookupCurrency(code string) (Currency, bool) {
	if c, ok := currencyByAlpha[code]; ok {
		return c, true
	}
	c, ok := currencyByNumeric[code]
	return c, ok
}

// Currencies returns every table row sorted by alphabetic code.
func Currencies() []Currency {
	out := make([]Currency, 0, len(currencyByAlpha))
	for _, c := range currencyByAlpha {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Alpha < out[j].Alpha })
	return out
}
