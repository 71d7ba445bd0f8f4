// =============================================================================
// EMV QR Payload Toolkit - Checksum Engine
// =============================================================================
//
// Every payload ends with a checksum record (tag 63, length 04) holding a
// CRC-16/CCITT-FALSE value computed over all characters before it, including
// the "6304" prefix of the checksum record itself.
//
// =============================================================================

package crc

import (
	"fmt"
	"strings"
)

// Marker is the id+length prefix of the checksum record.
const Marker = "6304"

const (
	initial    uint16 = 0xFFFF
	polynomial uint16 = 0x1021
)

// Checksum returns the CRC-16/CCITT-FALSE of the UTF-8 bytes of payload as
// four uppercase hexadecimal digits.
func Checksum(payload string) string {
	reg := initial

	// Ranging over []byte keeps multi-byte characters as several iterations.
	for _, b := range []byte(payload) {
		reg ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if reg&0x8000 != 0 {
				reg = reg<<1 ^ polynomial
			} else {
				reg <<= 1
			}
		}
	}

	return fmt.Sprintf("%04X", reg)
}

// Verify reports whether the checksum record at the end of payload matches
// the checksum of everything up to and including the last Marker.
//
// The checksum record is assumed to be the last record: the search runs from
// the end, so a "6304" inside an earlier value does not confuse it.
func Verify(payload string) bool {
	idx := strings.LastIndex(payload, Marker)
	if idx == -1 {
		return false
	}

	end := idx + len(Marker)
	expected := payload[end:]
	computed := Checksum(payload[:end])

	return strings.ToUpper(expected) == computed
}

// Append returns payload followed by a complete checksum record.
func Append(payload string) string {
	withMarker := payload + Marker
	return withMarker + Checksum(withMarker)
}
