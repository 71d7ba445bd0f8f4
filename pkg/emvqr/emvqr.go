// Package emvqr encodes and decodes EMV merchant-presented QR payloads.
//
// A payload is a string of tag-length-value records closed by a CRC-16
// checksum record:
//
//	payload, err := emvqr.Encode(map[string]string{
//		"merchant_name": "CoffeeShop",
//		"merchant_city": "NewYork",
//		"currency":      "USD",
//	})
//
// Encode accepts maps keyed by raw two-digit tag ids or by friendly field
// names. The decoders return ordered field sets that marshal to JSON and YAML
// in payload order.
package emvqr

import (
	"errors"

	"github.com/mono57/emvqr/internal/crc"
	"github.com/mono57/emvqr/internal/fieldnames"
	"github.com/mono57/emvqr/internal/logging"
	"github.com/mono57/emvqr/internal/tlv"
)

// Errors returned by the codec.
var (
	ErrInvalidCRC          = tlv.ErrInvalidCRC
	ErrUnsupportedCurrency = fieldnames.ErrUnsupportedCurrency
)

type (
	// Fields is an insertion-ordered field map.
	Fields = tlv.Fields

	// Record is one scanned TLV record.
	Record = tlv.Record

	// CurrencyError reports an alphabetic currency code with no numeric code.
	CurrencyError = fieldnames.CurrencyError

	// Logger receives the codec's debug traces.
	Logger = logging.Logger

	// LogFields is the structured field map passed to a Logger.
	LogFields = logging.Fields
)

// Codec encodes and decodes payloads. The zero value is usable and logs
// nothing.
type Codec struct {
	log logging.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets the logger used for debug traces.
func WithLogger(l Logger) Option {
	return func(c *Codec) { c.log = l }
}

// New returns a Codec configured by opts.
func New(opts ...Option) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) logger() logging.Logger {
	if c == nil {
		return logging.NopLogger{}
	}
	return logging.OrNop(c.log)
}

// Encode renders fields as a payload. Maps using any of the friendly marker
// names are translated first; the only error is an unknown alphabetic
// currency.
func (c *Codec) Encode(fields map[string]string) (string, error) {
	raw := fields
	if fieldnames.IsFriendlyMap(fields) {
		var err error
		raw, err = fieldnames.FromFriendly(fields)
		if err != nil {
			c.logger().Warn("friendly field translation failed", logging.Fields{"error": err.Error()})
			return "", err
		}
		c.logger().Debug("translated friendly fields", logging.Fields{"fields": len(raw)})
	}

	payload := tlv.Serialize(raw)
	c.logger().Debug("encoded payload", logging.Fields{"length": len(payload), "crc": payload[len(payload)-4:]})
	return payload, nil
}

// DecodeRaw parses payload and returns its fields keyed by tag id.
func (c *Codec) DecodeRaw(payload string) (*Fields, error) {
	c.logger().Debug("decoding payload", logging.Fields{"length": len(payload)})

	fields, err := tlv.Parse(payload)
	if err != nil {
		if errors.Is(err, tlv.ErrInvalidCRC) {
			c.logger().Warn("checksum verification failed", logging.Fields{"payload": payload})
		}
		return nil, err
	}

	c.logger().Debug("parsed result", logging.Fields{"fields": fields.Len()})
	return fields, nil
}

// DecodeFriendly parses payload and renames known tags to friendly names.
// Tags without a name keep their id.
func (c *Codec) DecodeFriendly(payload string) (*Fields, error) {
	fields, err := c.DecodeRaw(payload)
	if err != nil {
		return nil, err
	}
	return fieldnames.ToFriendly(fields), nil
}

// Decode parses payload and returns only the tags that have a friendly name.
func (c *Codec) Decode(payload string) (*Fields, error) {
	fields, err := c.DecodeRaw(payload)
	if err != nil {
		return nil, err
	}
	return fieldnames.ToNamed(fields), nil
}

// Inspect scans payload without rejecting a bad checksum. It returns every
// record, duplicates included, and whether the checksum verifies.
func (c *Codec) Inspect(payload string) ([]Record, bool) {
	records := tlv.Scan(payload)
	valid := crc.Verify(payload)
	c.logger().Debug("inspected payload", logging.Fields{"records": len(records), "valid": valid})
	return records, valid
}

var std = New()

// Encode renders fields with the default codec.
func Encode(fields map[string]string) (string, error) { return std.Encode(fields) }

// DecodeRaw parses payload with the default codec.
func DecodeRaw(payload string) (*Fields, error) { return std.DecodeRaw(payload) }

// DecodeFriendly parses payload with the default codec.
func DecodeFriendly(payload string) (*Fields, error) { return std.DecodeFriendly(payload) }

// Decode parses payload with the default codec.
func Decode(payload string) (*Fields, error) { return std.Decode(payload) }

// Inspect scans payload with the default codec.
func Inspect(payload string) ([]Record, bool) { return std.Inspect(payload) }

// Checksum returns the four-digit uppercase CRC-16 of payload.
func Checksum(payload string) string { return crc.Checksum(payload) }

// Verify reports whether the checksum record at the end of payload matches.
func Verify(payload string) bool { return crc.Verify(payload) }
