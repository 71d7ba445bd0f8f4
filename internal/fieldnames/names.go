// =============================================================================
// EMV QR Payload Toolkit - Field Name Tables
// =============================================================================
//
// This package holds the static lookup tables that translate between the
// two-digit EMV tag ids found on the wire and the snake_case names used by
// callers, plus the ISO 4217 currency table used for tag 53.
//
// TABLES:
//   - Field names: tag id <-> friendly name (fixed vocabulary)
//   - Currencies:  alphabetic code <-> numeric code (embedded data file)
//
// Both tables are built during package initialization and never mutated, so
// they are safe for concurrent reads without locking.
//
// =============================================================================

package fieldnames

import "sort"

// =============================================================================
// TAG IDS
// =============================================================================

// Tag ids with a special meaning to the codec.
const (
	TagPayloadFormat    = "00"
	TagInitiationMethod = "01"
	TagCurrency         = "53"
	TagChecksum         = "63"
)

// Initiation method values carried in tag 01.
const (
	InitiationDynamic = "11"
	InitiationStatic  = "12"
)

// =============================================================================
// FIELD NAME TABLE
// =============================================================================

// fieldToTag maps each friendly name to its tag id.
var fieldToTag = map[string]string{
	"payload_format_indicator":            "00",
	"initiation_method":                   "01",
	"merchant_category_code":              "52",
	"currency":                            "53",
	"amount":                              "54",
	"tip_or_convenience_indicator":        "55",
	"value_of_convenience_fee_fixed":      "56",
	"value_of_convenience_fee_percentage": "57",
	"country_code":                        "58",
	"merchant_name":                       "59",
	"merchant_city":                       "60",
	"postal_code":                         "61",
	"additional_data":                     "62",
	"merchant_information":                "64",
	"merchant_code":                       "80",
	"merchant_profile_picture":            "81",
	"merchant_phone_number":               "82",
}

// tagToField is the reverse of fieldToTag.
var tagToField = invert(fieldToTag)

// TagForField returns the tag id for a friendly field name.
func TagForField(name string) (string, bool) {
	tag, ok := fieldToTag[name]
	return tag, ok
}

// FieldForTag returns the friendly name for a tag id.
func FieldForTag(tag string) (string, bool) {
	name, ok := tagToField[tag]
	return name, ok
}

// FieldName returns the friendly name for a tag id, or the id itself when
// the table has no entry for it.
func FieldName(tag string) string {
	if name, ok := tagToField[tag]; ok {
		return name
	}
	return tag
}

// FieldNames returns every friendly name, sorted.
func FieldNames() []string {
	names := make([]string, 0, len(fieldToTag))
	for name := range fieldToTag {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
