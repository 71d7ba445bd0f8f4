package fieldnames

import (
	"errors"
	"strings"

	"github.com/mono57/emvqr/internal/tlv"
)

// ErrUnsupportedCurrency is returned when an alphabetic currency code has no
// entry in the currency table.
var ErrUnsupportedCurrency = errors.New("unsupported currency code")

// CurrencyError names the offending currency code.
type CurrencyError struct {
	Code string
}

func (e *CurrencyError) Error() string {
	return "unsupported currency code: " + e.Code
}

func (e *CurrencyError) Unwrap() error { return ErrUnsupportedCurrency }

// friendlyMarkers are the keys whose presence marks an input map as keyed by
// friendly names rather than raw tag ids.
var friendlyMarkers = map[string]struct{}{
	"initiation_method":      {},
	"merchant_name":          {},
	"merchant_city":          {},
	"country_code":           {},
	"currency":               {},
	"amount":                 {},
	"merchant_category_code": {},
}

// IsFriendly reports whether any of keys is one of the marker friendly names.
// A map that only uses other friendly names (postal_code, ...) is treated as
// raw-id keyed.
func IsFriendly(keys []string) bool {
	for _, k := range keys {
		if _, ok := friendlyMarkers[k]; ok {
			return true
		}
	}
	return false
}

// IsFriendlyMap is IsFriendly over the keys of m.
func IsFriendlyMap(m map[string]string) bool {
	for k := range m {
		if _, ok := friendlyMarkers[k]; ok {
			return true
		}
	}
	return false
}

// FromFriendly translates a friendly-named map into a raw tag-id map.
//
//   - initiation_method: "dynamic" -> 01=11, "static" -> 01=12 (any case);
//     other values are dropped.
//   - currency: alphabetic codes are upper-cased and looked up; an unknown
//     code fails with a *CurrencyError. Non-alphabetic values pass through.
//   - Other known names map to their tag; unknown keys are dropped.
//
// The returned map always carries 00=01.
func FromFriendly(in map[string]string) (map[string]string, error) {
	out := map[string]string{TagPayloadFormat: "01"}

	for name, value := range in {
		switch name {
		case "initiation_method":
			switch strings.ToLower(value) {
			case "dynamic":
				out[TagInitiationMethod] = InitiationDynamic
			case "static":
				out[TagInitiationMethod] = InitiationStatic
			}
			continue
		case "currency":
			if isAlpha(value) {
				code := strings.ToUpper(value)
				numeric, ok := NumericCurrency(code)
				if !ok {
					return nil, &CurrencyError{Code: code}
				}
				value = numeric
			}
		}

		if tag, ok := fieldToTag[name]; ok {
			out[tag] = value
		}
	}

	return out, nil
}

// ToFriendly renames the keys of a parsed field map to friendly names. Tags
// without a friendly name keep their id as key. A known numeric currency in
// tag 53 is replaced by its alphabetic code; unknown codes pass through.
func ToFriendly(fields *tlv.Fields) *tlv.Fields {
	out := tlv.NewFields()
	fields.Range(func(tag, value string) bool {
		out.Set(FieldName(tag), friendlyValue(tag, value))
		return true
	})
	return out
}

// ToNamed is like ToFriendly but drops every tag that has no friendly name.
func ToNamed(fields *tlv.Fields) *tlv.Fields {
	out := tlv.NewFields()
	fields.Range(func(tag, value string) bool {
		if name, ok := tagToField[tag]; ok {
			out.Set(name, friendlyValue(tag, value))
		}
		return true
	})
	return out
}

func friendlyValue(tag, value string) string {
	if tag != TagCurrency {
		return value
	}
	if alpha, ok := AlphaCurrency(value); ok {
		return alpha
	}
	return value
}

// isAlpha reports whether s is non-empty and made only of ASCII letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

