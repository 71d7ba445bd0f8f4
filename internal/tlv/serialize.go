// =============================================================================
// EMV QR Payload Toolkit - TLV Serializer
// =============================================================================
//
// EMISSION ORDER (fixed, independent of input map order):
//   1. 00 = "01" (payload format indicator, caller input ignored)
//   2. 01 (initiation method)
//   3. 02 .. 51 ascending (merchant account information)
//   4. 52, 53, 58, 59, 60 (required group)
//   5. 54, 55, 56, 57, 61, 62, 64 (optional group)
//   6. 63 = checksum over everything before it, "6304" included
//
// Tags outside these groups are not emitted.
//
// =============================================================================

package tlv

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mono57/emvqr/internal/crc"
)

// FormatIndicator is the fixed value of tag 00.
const FormatIndicator = "01"

var (
	requiredTags = []string{"52", "53", "58", "59", "60"}
	optionalTags = []string{"54", "55", "56", "57", "61", "62", "64"}
)

// emissionOrder lists every tag Serialize may write, in order, excluding
// the format indicator and the checksum.
var emissionOrder = buildEmissionOrder()

func buildEmissionOrder() []string {
	order := []string{"01"}
	for i := 2; i <= 51; i++ {
		order = append(order, fmt.Sprintf("%02d", i))
	}
	order = append(order, requiredTags...)
	order = append(order, optionalTags...)
	return order
}

// EmissionOrder returns the tags Serialize writes between the format
// indicator and the checksum, in wire order.
func EmissionOrder() []string {
	out := make([]string, len(emissionOrder))
	copy(out, emissionOrder)
	return out
}

// Emitted reports whether Serialize writes tag when present in its input.
// Tags 00 and 63 are always produced by Serialize itself and report false.
func Emitted(tag string) bool {
	for _, t := range emissionOrder {
		if t == tag {
			return true
		}
	}
	return false
}

// FormatRecord renders one record: id, the value's character count padded
// to two digits, then the value. Values longer than 99 characters get a
// three-digit length, which readers will not parse back.
func FormatRecord(id, value string) string {
	return fmt.Sprintf("%s%02d%s", id, utf8.RuneCountInString(value), value)
}

// Serialize renders fields, keyed by raw tag id, as a payload string in the
// canonical order with the checksum record appended.
func Serialize(fields map[string]string) string {
	var b strings.Builder
	b.WriteString(FormatRecord("00", FormatIndicator))

	for _, tag := range emissionOrder {
		if value, ok := fields[tag]; ok {
			b.WriteString(FormatRecord(tag, value))
		}
	}

	return crc.Append(b.String())
}
