// =============================================================================
// EMV QR Payload Toolkit - Field Map Formats
// =============================================================================
//
// Encoders for decoded field maps, used by "emvqr decode --format".
//
//   json    - indented, payload order
//   yaml    - payload order, every scalar a string
//   toml    - keys sorted (the encoder sorts map keys)
//   msgpack - map in payload order
//   cbor    - RFC 8949 core deterministic encoding (keys sorted)
//
// =============================================================================

package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/mono57/emvqr/internal/tlv"
)

// Format names a serialization format.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatTOML    Format = "toml"
	FormatMsgpack Format = "msgpack"
	FormatCBOR    Format = "cbor"
)

// Formats lists every output format.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML, FormatMsgpack, FormatCBOR}

// ParseFormat resolves a format name, accepting "yml" and "mpk" aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "msgpack", "mpk":
		return FormatMsgpack, nil
	case "cbor":
		return FormatCBOR, nil
	default:
		return "", fmt.Errorf("unknown format %q", name)
	}
}

// Binary reports whether f produces non-text output.
func (f Format) Binary() bool {
	return f == FormatMsgpack || f == FormatCBOR
}

// Encoder renders a field set.
type Encoder interface {
	Encode(fields *tlv.Fields) ([]byte, error)
}

// NewEncoder returns the encoder for f.
func NewEncoder(f Format) (Encoder, error) {
	switch f {
	case FormatJSON:
		return jsonEncoder{}, nil
	case FormatYAML:
		return yamlEncoder{}, nil
	case FormatTOML:
		return tomlEncoder{}, nil
	case FormatMsgpack:
		return msgpackEncoder{}, nil
	case FormatCBOR:
		return newCBOREncoder()
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
}

// Marshal renders fields in format f.
func Marshal(fields *tlv.Fields, f Format) ([]byte, error) {
	enc, err := NewEncoder(f)
	if err != nil {
		return nil, err
	}
	return enc.Encode(fields)
}

type jsonEncoder struct{}

func (jsonEncoder) Encode(fields *tlv.Fields) ([]byte, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

type yamlEncoder struct{}

func (yamlEncoder) Encode(fields *tlv.Fields) ([]byte, error) {
	return yaml.Marshal(fields)
}

type tomlEncoder struct{}

func (tomlEncoder) Encode(fields *tlv.Fields) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(fields.Map()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type msgpackEncoder struct{}

func (msgpackEncoder) Encode(fields *tlv.Fields) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	if err := enc.EncodeMapLen(fields.Len()); err != nil {
		return nil, err
	}

	var err error
	fields.Range(func(k, v string) bool {
		if err = enc.EncodeString(k); err != nil {
			return false
		}
		err = enc.EncodeString(v)
		return err == nil
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type cborEncoder struct {
	enc cbor.EncMode
}

func newCBOREncoder() (cborEncoder, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return cborEncoder{}, err
	}
	return cborEncoder{enc: em}, nil
}

func (c cborEncoder) Encode(fields *tlv.Fields) ([]byte, error) {
	return c.enc.Marshal(fields.Map())
}
