package tlv

import (
	"reflect"
	"strings"
	"testing"
)

func TestSerializeCanonicalOrder(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{
			name: "static merchant",
			fields: map[string]string{
				"01": "12",
				"52": "5311",
				"53": "840",
				"54": "12.34",
				"58": "US",
				"59": "CoffeeShop",
				"60": "NewYork",
			},
			want: "0002010102125204531153038405802US5910CoffeeShop6007NewYork540512.346304CF98",
		},
		{
			name: "dynamic merchant",
			fields: map[string]string{
				"01": "11",
				"52": "5812",
				"53": "978",
				"54": "42.00",
				"58": "FR",
				"59": "RIEI",
				"60": "Paris",
			},
			want: "0002010102115204581253039785802FR5904RIEI6005Paris540542.006304BF8C",
		},
		{
			name:   "empty input",
			fields: map[string]string{},
			want:   "0002016304AAE6",
		},
		{
			name:   "empty value is emitted",
			fields: map[string]string{"00": "01", "02": ""},
			want:   "00020102006304C527",
		},
		{
			name:   "account information ascending",
			fields: map[string]string{"51": "test51", "03": "test3", "02": "test2"},
			want:   "0002010205test20305test35106test516304E6F7",
		},
		{
			name: "optional group",
			fields: map[string]string{
				"64": "merchant info",
				"62": "additional",
				"61": "75001",
				"57": "1",
				"56": "10.00",
				"55": "1",
				"54": "42.00",
			},
			want: "000201540542.0055011560510.00570116105750016210additional6413merchant info63042D78",
		},
		{
			name: "tags past 64 are not emitted",
			fields: map[string]string{
				"01": "11",
				"52": "5812",
				"53": "950",
				"54": "100000",
				"58": "CM",
				"59": "AMONO AYMAR",
				"60": "YAOUNDE",
				"80": "fr",
				"81": "Orange",
				"82": "123",
				"99": "x",
			},
			want: "0002010102115204581253039505802CM5911AMONO AYMAR6007YAOUNDE54061000006304D520",
		},
		{
			name:   "length counts characters",
			fields: map[string]string{"59": "café"},
			want:   "0002015904café6304CEF9",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Serialize(tc.fields); got != tc.want {
				t.Fatalf("Serialize\n got: %s\nwant: %s", got, tc.want)
			}
		})
	}
}

func TestSerializeIgnoresCallerFormatIndicator(t *testing.T) {
	got := Serialize(map[string]string{"00": "99", "63": "FFFF"})
	if got != "0002016304AAE6" {
		t.Fatalf("unexpected payload %s", got)
	}
}

func TestSerializeParseRoundTrip(t *testing.T) {
	in := map[string]string{
		"01": "11",
		"26": "0014A000000000010203040506",
		"52": "5311",
		"53": "840",
		"54": "12.34",
		"58": "US",
		"59": "CoffeeShop",
		"60": "NewYork",
		"62": "0503***",
	}

	payload := Serialize(in)
	fields, err := Parse(payload)
	if err != nil {
		t.Fatalf("parse %s: %v", payload, err)
	}

	got := fields.Map()
	if got["63"] != payload[len(payload)-4:] {
		t.Fatalf("checksum field %q does not match payload %s", got["63"], payload)
	}
	delete(got, "63")

	want := map[string]string{"00": "01"}
	for k, v := range in {
		want[k] = v
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch\n got: %v\nwant: %v", got, want)
	}
}

func TestSerializeEmbeddedMarkerStillVerifies(t *testing.T) {
	payload := Serialize(map[string]string{"59": "AB6304CD"})
	if payload != "0002015908AB6304CD6304F86B" {
		t.Fatalf("unexpected payload %s", payload)
	}
	fields, err := Parse(payload)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if fields.Value("59") != "AB6304CD" {
		t.Fatalf("merchant name = %q", fields.Value("59"))
	}
}

func TestFormatRecord(t *testing.T) {
	cases := []struct {
		id, value, want string
	}{
		{"59", "Shop", "5904Shop"},
		{"02", "", "0200"},
		{"60", "Zürich", "6006Zürich"},
	}
	for _, tc := range cases {
		if got := FormatRecord(tc.id, tc.value); got != tc.want {
			t.Fatalf("FormatRecord(%q, %q) = %q, want %q", tc.id, tc.value, got, tc.want)
		}
	}

	long := strings.Repeat("a", 100)
	if got := FormatRecord("59", long); got != "59100"+long {
		t.Fatalf("three digit length not rendered: %q", got[:8])
	}
}

func TestEmissionOrder(t *testing.T) {
	order := EmissionOrder()
	if len(order) != 63 {
		t.Fatalf("expected 63 tags, got %d", len(order))
	}
	if order[0] != "01" || order[1] != "02" || order[50] != "51" || order[51] != "52" {
		t.Fatalf("unexpected head of order: %v", order[:4])
	}
	wantTail := []string{"52", "53", "58", "59", "60", "54", "55", "56", "57", "61", "62", "64"}
	if !reflect.DeepEqual(order[51:], wantTail) {
		t.Fatalf("tail = %v, want %v", order[51:], wantTail)
	}

	order[0] = "zz"
	if EmissionOrder()[0] != "01" {
		t.Fatal("EmissionOrder must return a copy")
	}

	for _, tag := range []string{"00", "63", "65", "80", "99"} {
		if Emitted(tag) {
			t.Fatalf("tag %s should not be emitted", tag)
		}
	}
	for _, tag := range []string{"01", "26", "51", "54", "64"} {
		if !Emitted(tag) {
			t.Fatalf("tag %s should be emitted", tag)
		}
	}
}
