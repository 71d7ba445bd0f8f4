package writer

import (
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/mono57/emvqr/internal/tlv"
)

func sampleFields() *tlv.Fields {
	f := tlv.NewFields()
	f.Set("00", "01")
	f.Set("59", "Shop")
	f.Set("53", "840")
	f.Set("63", "E90D")
	return f
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{
		"":        FormatJSON,
		"JSON":    FormatJSON,
		"yml":     FormatYAML,
		"yaml":    FormatYAML,
		"toml":    FormatTOML,
		"mpk":     FormatMsgpack,
		"msgpack": FormatMsgpack,
		"cbor":    FormatCBOR,
	}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for xml")
	}
}

func TestMarshalJSONKeepsOrder(t *testing.T) {
	out, err := Marshal(sampleFields(), FormatJSON)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := "{\n  \"00\": \"01\",\n  \"59\": \"Shop\",\n  \"53\": \"840\",\n  \"63\": \"E90D\"\n}\n"
	if string(out) != want {
		t.Fatalf("json output:\n%s\nwant:\n%s", out, want)
	}
}

func TestMarshalYAMLQuotesNumericStrings(t *testing.T) {
	out, err := Marshal(sampleFields(), FormatYAML)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	m, err := ReadFieldMap(out, FormatYAML)
	if err != nil {
		t.Fatalf("ReadFieldMap: %v", err)
	}
	if m["00"] != "01" || m["53"] != "840" {
		t.Fatalf("yaml values changed: %v", m)
	}
	if strings.Index(string(out), "\"59\"") > strings.Index(string(out), "\"53\"") {
		t.Fatalf("yaml output not in insertion order:\n%s", out)
	}
}

func TestMarshalTOML(t *testing.T) {
	out, err := Marshal(sampleFields(), FormatTOML)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]string
	if _, err := toml.Decode(string(out), &m); err != nil {
		t.Fatalf("decode toml: %v\n%s", err, out)
	}
	if m["59"] != "Shop" || m["00"] != "01" || len(m) != 4 {
		t.Fatalf("toml round trip = %v", m)
	}
}

func TestMarshalMsgpackKeepsOrder(t *testing.T) {
	out, err := Marshal(sampleFields(), FormatMsgpack)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	dec := msgpack.NewDecoder(strings.NewReader(string(out)))
	n, err := dec.DecodeMapLen()
	if err != nil {
		t.Fatalf("DecodeMapLen: %v", err)
	}
	if n != 4 {
		t.Fatalf("map len = %d, want 4", n)
	}
	var keys []string
	for i := 0; i < n; i++ {
		k, err := dec.DecodeString()
		if err != nil {
			t.Fatalf("key %d: %v", i, err)
		}
		if _, err := dec.DecodeString(); err != nil {
			t.Fatalf("value %d: %v", i, err)
		}
		keys = append(keys, k)
	}
	if strings.Join(keys, ",") != "00,59,53,63" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestMarshalCBORDeterministic(t *testing.T) {
	a, err := Marshal(sampleFields(), FormatCBOR)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	reordered := tlv.NewFields()
	reordered.Set("63", "E90D")
	reordered.Set("53", "840")
	reordered.Set("00", "01")
	reordered.Set("59", "Shop")
	b, err := Marshal(reordered, FormatCBOR)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Fatalf("cbor output depends on insertion order")
	}

	var m map[string]string
	if err := cbor.Unmarshal(a, &m); err != nil {
		t.Fatalf("cbor.Unmarshal: %v", err)
	}
	if m["53"] != "840" || len(m) != 4 {
		t.Fatalf("cbor round trip = %v", m)
	}
}

func TestBinaryFormats(t *testing.T) {
	for _, f := range Formats {
		want := f == FormatMsgpack || f == FormatCBOR
		if f.Binary() != want {
			t.Fatalf("%s.Binary() = %v", f, f.Binary())
		}
	}
}
