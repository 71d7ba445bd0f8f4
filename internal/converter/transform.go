// =============================================================================
// EMV QR Payload Toolkit - Transformation Engine
// =============================================================================
//
// Normalises merchant record values before they are validated and encoded.
// Rules come from the "transformations" section of the configuration; each
// rule names a record key (raw tag id or friendly name) and a list of actions
// applied in order.
//
// TYPICAL RULES:
//   - Amounts exported as "1234.5" formatted to "1234.50"
//   - Category codes exported as numbers ("742") padded to "0742"
//   - Country codes upper-cased, merchant names truncated to 25 characters
//   - Internal status codes mapped to initiation methods with a lookup table
//
// A value that ends up empty is removed from the record, the same as an empty
// cell, so it never produces an empty TLV record.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mono57/emvqr/internal/config"
)

var (
	nonDigits   = regexp.MustCompile(`\D+`)
	nonAlnum    = regexp.MustCompile(`[^a-zA-Z0-9]`)
	runsOfSpace = regexp.MustCompile(`\s+`)
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies configured rules to merchant records.
type Transformer struct {
	rules []config.TransformationRule

	// patterns holds compiled regex_replace patterns keyed by pattern text.
	patterns map[string]*regexp.Regexp
}

// NewTransformer compiles rules. It fails on an unknown action type or an
// invalid regular expression, so a bad configuration is reported before any
// record is read.
func NewTransformer(rules []config.TransformationRule) (*Transformer, error) {
	t := &Transformer{rules: rules, patterns: make(map[string]*regexp.Regexp)}

	for _, rule := range rules {
		for _, action := range rule.Actions {
			if !KnownAction(action.Type) {
				return nil, fmt.Errorf("field %s: unknown transformation type: %s", rule.Field, action.Type)
			}
			if action.Type != "regex_replace" {
				continue
			}
			if _, ok := t.patterns[action.Find]; ok {
				continue
			}
			re, err := regexp.Compile(action.Find)
			if err != nil {
				return nil, fmt.Errorf("field %s: invalid pattern %q: %w", rule.Field, action.Find, err)
			}
			t.patterns[action.Find] = re
		}
	}
	return t, nil
}

// TransformRecord applies every rule to fields in place. Rules run in
// configuration order, so later rules see the output of earlier ones.
func (t *Transformer) TransformRecord(fields map[string]string) error {
	for _, rule := range t.rules {
		value, present := fields[rule.Field]

		result := value
		for _, action := range rule.Actions {
			var err error
			result, err = t.apply(result, action, fields)
			if err != nil {
				return fmt.Errorf("transformation '%s' on field '%s' failed: %w", action.Type, rule.Field, err)
			}
		}

		switch {
		case result != "":
			fields[rule.Field] = result
		case present:
			delete(fields, rule.Field)
		}
	}
	return nil
}

func (t *Transformer) apply(value string, action config.TransformationAction, fields map[string]string) (string, error) {
	if action.Type == "regex_replace" {
		return t.patterns[action.Find].ReplaceAllString(value, action.Value), nil
	}
	return ApplyTransformation(value, action, fields)
}

// =============================================================================
// ACTIONS
// =============================================================================

var knownActions = []string{
	"prepend_string", "append_string",
	"trim", "trim_left", "trim_right",
	"uppercase", "lowercase",
	"replace", "regex_replace",
	"truncate", "pad_zeros_to_length", "remove_leading_zeros",
	"format_amount",
	"lookup", "lookup_with_default",
	"if_empty_use_default", "if_empty_use_field",
	"extract_digits", "remove_special_chars", "normalize_whitespace",
}

// KnownAction reports whether name is a supported action type.
func KnownAction(name string) bool {
	for _, a := range knownActions {
		if a == name {
			return true
		}
	}
	return false
}

// ApplyTransformation applies a single action. fields is the whole record,
// read by if_empty_use_field. regex_replace compiles its pattern on every
// call here; Transformer caches it.
func ApplyTransformation(value string, action config.TransformationAction, fields map[string]string) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "trim":
		return strings.TrimSpace(value), nil

	case "trim_left":
		// value: characters to strip, whitespace when empty
		if action.Value == "" {
			return strings.TrimLeft(value, " \t\r\n"), nil
		}
		return strings.TrimLeft(value, action.Value), nil

	case "trim_right":
		if action.Value == "" {
			return strings.TrimRight(value, " \t\r\n"), nil
		}
		return strings.TrimRight(value, action.Value), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "replace":
		// find -> value
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return "", fmt.Errorf("invalid pattern %q: %w", action.Find, err)
		}
		return re.ReplaceAllString(value, action.Value), nil

	// =========================================================================
	// LENGTH AND NUMBERS
	// =========================================================================

	case "truncate":
		// Keeps the first n characters. TLV lengths count characters, so
		// this never splits a multi-byte character.
		n, err := positiveInt(action.Value)
		if err != nil {
			return "", err
		}
		if utf8.RuneCountInString(value) <= n {
			return value, nil
		}
		return string([]rune(value)[:n]), nil

	case "pad_zeros_to_length":
		// "742" with 4 becomes "0742"
		n, err := positiveInt(action.Value)
		if err != nil {
			return "", err
		}
		if value == "" {
			return value, nil
		}
		return PadLeft(value, n, '0'), nil

	case "remove_leading_zeros":
		result := strings.TrimLeft(value, "0")
		if result == "" && value != "" {
			return "0", nil
		}
		return result, nil

	case "format_amount":
		// value: decimal places, default 2. "1,234.5" becomes "1234.50".
		// Values that are not numbers are left for validation to report.
		places := 2
		if action.Value != "" {
			p, err := strconv.Atoi(action.Value)
			if err != nil || p < 0 || p > 6 {
				return "", fmt.Errorf("decimal places must be 0-6, got %q", action.Value)
			}
			places = p
		}
		cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
		if cleaned == "" {
			return value, nil
		}
		num, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return value, nil
		}
		return strconv.FormatFloat(num, 'f', places, 64), nil

	// =========================================================================
	// LOOKUPS AND DEFAULTS
	// =========================================================================

	case "lookup":
		if replacement, ok := action.LookupTable[value]; ok {
			return replacement, nil
		}
		return value, nil

	case "lookup_with_default":
		if replacement, ok := action.LookupTable[value]; ok {
			return replacement, nil
		}
		return action.Value, nil

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return action.Value, nil
		}
		return value, nil

	case "if_empty_use_field":
		// value: the other record key
		if strings.TrimSpace(value) == "" {
			if other, ok := fields[action.Value]; ok {
				return other, nil
			}
		}
		return value, nil

	// =========================================================================
	// CLEANUP
	// =========================================================================

	case "extract_digits":
		// "+1 (555) 010-0199" becomes "15550100199"
		return nonDigits.ReplaceAllString(value, ""), nil

	case "remove_special_chars":
		return nonAlnum.ReplaceAllString(value, ""), nil

	case "normalize_whitespace":
		return strings.TrimSpace(runsOfSpace.ReplaceAllString(value, " ")), nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads s on the left with padChar to length characters.
func PadLeft(s string, length int, padChar rune) string {
	n := utf8.RuneCountInString(s)
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("length must be a positive integer, got %q", s)
	}
	return n, nil
}
