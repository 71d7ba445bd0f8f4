// =============================================================================
// EMV QR Payload Toolkit - TLV Parser
// =============================================================================
//
// The parser walks a payload string record by record:
//
//   | id (2 chars) | length (2 chars, decimal) | value (length chars) |
//
// PARSING RULES:
//   1. The checksum record is verified first; a mismatch aborts parsing.
//   2. Records are read while more than four characters remain. The trailing
//      four characters of the checksum value end the loop on their own, so
//      tag 63 is not special-cased.
//   3. Malformed length fields never fail the parse. Each shape has a fixed
//      recovery, see LengthOutcome.
//
// CHARACTERS:
//   Lengths count Unicode code points, not bytes.
//
// =============================================================================

package tlv

import (
	"errors"
	"unicode"

	"github.com/mono57/emvqr/internal/crc"
)

// ErrInvalidCRC is returned by Parse when the checksum record is missing or
// does not match the payload.
var ErrInvalidCRC = errors.New("invalid CRC")

// =============================================================================
// LENGTH OUTCOMES
// =============================================================================

// LengthOutcome classifies a two-character length field.
type LengthOutcome int

const (
	// LengthOK: the value is the next n characters.
	LengthOK LengthOutcome = iota

	// LengthNaN: no leading decimal digits. The raw length text becomes the
	// value and nothing further is consumed.
	LengthNaN

	// LengthNegative: a negative number. Same recovery as LengthNaN.
	LengthNegative

	// LengthZero: zero (including "-0"). The value is empty.
	LengthZero

	// LengthOverflow: positive but longer than what is left. The value is the
	// rest of the payload and the scan ends.
	LengthOverflow
)

func (o LengthOutcome) String() string {
	switch o {
	case LengthOK:
		return "ok"
	case LengthNaN:
		return "nan"
	case LengthNegative:
		return "negative"
	case LengthZero:
		return "zero"
	case LengthOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// classifyLength parses raw the way a JavaScript parseInt(raw, 10) would and
// classifies the result against the number of characters remaining.
func classifyLength(raw string, remaining int) (int, LengthOutcome) {
	n, ok := parseIntPrefix(raw)
	switch {
	case !ok:
		return 0, LengthNaN
	case n < 0:
		return n, LengthNegative
	case n == 0:
		return 0, LengthZero
	case n > remaining:
		return n, LengthOverflow
	default:
		return n, LengthOK
	}
}

// parseIntPrefix skips leading white space, accepts an optional sign and
// reads the longest run of ASCII digits. It fails when no digit follows.
// "-0" yields 0, which is what makes it a zero length and not a negative one.
func parseIntPrefix(s string) (int, bool) {
	rs := []rune(s)
	i := 0
	for i < len(rs) && isSpace(rs[i]) {
		i++
	}

	neg := false
	if i < len(rs) && (rs[i] == '+' || rs[i] == '-') {
		neg = rs[i] == '-'
		i++
	}

	n, digits := 0, 0
	for ; i < len(rs) && rs[i] >= '0' && rs[i] <= '9'; i++ {
		n = n*10 + int(rs[i]-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// isSpace matches the white space and line terminators parseInt skips.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\ufeff', '\u2028', '\u2029':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}

// =============================================================================
// SCANNER
// =============================================================================

// Record is one TLV record as read from a payload.
type Record struct {
	// ID is the tag id, normally two characters.
	ID string

	// Length is the raw two-character length text.
	Length string

	// Value is the value stored for the record after applying the recovery
	// rule for Outcome.
	Value string

	// Outcome is how the length field was classified.
	Outcome LengthOutcome

	// Offset is the character offset of the record's id.
	Offset int
}

// Scan reads every record of payload in order, without checking the
// checksum. Repeated ids are all returned.
func Scan(payload string) []Record {
	chars := []rune(payload)
	n := len(chars)

	var records []Record
	i := 0
	for i < n-4 {
		start := i

		id := string(chars[i:min(i+2, n)])
		if id == "" {
			break
		}
		i += 2

		if i+2 > n {
			break
		}
		rawLength := string(chars[i : i+2])
		i += 2

		length, outcome := classifyLength(rawLength, n-i)
		rec := Record{ID: id, Length: rawLength, Outcome: outcome, Offset: start}

		switch outcome {
		case LengthNaN, LengthNegative:
			rec.Value = rawLength
		case LengthZero:
			rec.Value = ""
		case LengthOverflow:
			rec.Value = string(chars[i:])
			i = n
		default:
			rec.Value = string(chars[i : i+length])
			i += length
		}

		records = append(records, rec)
	}

	return records
}

// =============================================================================
// PARSER
// =============================================================================

// Parse verifies the checksum of payload and returns its fields keyed by tag
// id. A later record with the same id overwrites an earlier one.
func Parse(payload string) (*Fields, error) {
	if !crc.Verify(payload) {
		return nil, ErrInvalidCRC
	}
	return Collect(Scan(payload)), nil
}

// Collect folds records into Fields with last-write-wins semantics.
func Collect(records []Record) *Fields {
	fields := NewFields()
	for _, rec := range records {
		fields.Set(rec.ID, rec.Value)
	}
	return fields
}
