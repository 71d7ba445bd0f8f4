package fieldnames

import (
	"errors"
	"reflect"
	"testing"

	"github.com/mono57/emvqr/internal/tlv"
)

func TestIsFriendly(t *testing.T) {
	cases := []struct {
		keys []string
		want bool
	}{
		{[]string{"merchant_name"}, true},
		{[]string{"01", "currency"}, true},
		{[]string{"amount"}, true},
		{[]string{"00", "01", "59"}, false},
		{[]string{"postal_code", "additional_data"}, false},
		{nil, false},
	}
	for _, tc := range cases {
		if got := IsFriendly(tc.keys); got != tc.want {
			t.Fatalf("IsFriendly(%v) = %v, want %v", tc.keys, got, tc.want)
		}
		m := make(map[string]string, len(tc.keys))
		for _, k := range tc.keys {
			m[k] = "x"
		}
		if got := IsFriendlyMap(m); got != tc.want {
			t.Fatalf("IsFriendlyMap(%v) = %v, want %v", m, got, tc.want)
		}
	}
}

func TestFromFriendly(t *testing.T) {
	cases := []struct {
		name string
		in   map[string]string
		want map[string]string
	}{
		{
			name: "full merchant",
			in: map[string]string{
				"initiation_method":      "static",
				"merchant_category_code": "5311",
				"currency":               "usd",
				"amount":                 "12.34",
				"country_code":           "US",
				"merchant_name":          "CoffeeShop",
				"merchant_city":          "NewYork",
			},
			want: map[string]string{
				"00": "01",
				"01": "12",
				"52": "5311",
				"53": "840",
				"54": "12.34",
				"58": "US",
				"59": "CoffeeShop",
				"60": "NewYork",
			},
		},
		{
			name: "initiation method is case insensitive",
			in:   map[string]string{"initiation_method": "DYNAMIC"},
			want: map[string]string{"00": "01", "01": "11"},
		},
		{
			name: "unknown initiation method is dropped",
			in:   map[string]string{"initiation_method": "sometimes", "merchant_name": "A"},
			want: map[string]string{"00": "01", "59": "A"},
		},
		{
			name: "numeric currency passes through",
			in:   map[string]string{"currency": "999"},
			want: map[string]string{"00": "01", "53": "999"},
		},
		{
			name: "unknown keys are dropped",
			in:   map[string]string{"amount": "1", "tip": "2", "26": "x"},
			want: map[string]string{"00": "01", "54": "1"},
		},
		{
			name: "format indicator name maps to tag 00",
			in:   map[string]string{"amount": "1", "payload_format_indicator": "02"},
			want: map[string]string{"00": "02", "54": "1"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FromFriendly(tc.in)
			if err != nil {
				t.Fatalf("FromFriendly: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFromFriendlyUnknownCurrency(t *testing.T) {
	_, err := FromFriendly(map[string]string{"merchant_name": "A", "currency": "xyz"})
	if !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
	var cerr *CurrencyError
	if !errors.As(err, &cerr) || cerr.Code != "XYZ" {
		t.Fatalf("expected *CurrencyError for XYZ, got %#v", err)
	}
	if err.Error() != "unsupported currency code: XYZ" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestToFriendly(t *testing.T) {
	fields := tlv.NewFields()
	fields.Set("00", "01")
	fields.Set("01", "12")
	fields.Set("26", "0014A000000000")
	fields.Set("53", "840")
	fields.Set("59", "CoffeeShop")
	fields.Set("63", "B637")

	got := ToFriendly(fields)
	wantKeys := []string{"payload_format_indicator", "initiation_method", "26", "currency", "merchant_name", "63"}
	if !reflect.DeepEqual(got.Keys(), wantKeys) {
		t.Fatalf("keys = %v, want %v", got.Keys(), wantKeys)
	}
	if got.Value("currency") != "USD" {
		t.Fatalf("currency = %q, want USD", got.Value("currency"))
	}
	if got.Value("26") != "0014A000000000" {
		t.Fatalf("unknown tag value lost: %q", got.Value("26"))
	}

	named := ToNamed(fields)
	wantNamed := []string{"payload_format_indicator", "initiation_method", "currency", "merchant_name"}
	if !reflect.DeepEqual(named.Keys(), wantNamed) {
		t.Fatalf("named keys = %v, want %v", named.Keys(), wantNamed)
	}
}

func TestToFriendlyKeepsUnknownCurrency(t *testing.T) {
	fields := tlv.NewFields()
	fields.Set("53", "999")
	if got := ToFriendly(fields).Value("currency"); got != "999" {
		t.Fatalf("currency = %q, want 999", got)
	}
	fields.Set("59", "Shop")
	if got := ToFriendly(fields).Value("59"); got != "" {
		t.Fatalf("tag 59 should be renamed, got raw key value %q", got)
	}
}
