// =============================================================================
// EMV QR Payload Toolkit - Record Validation
// =============================================================================
//
// Checks merchant records before they are encoded. The codec itself never
// rejects a field map except for an unknown currency; these checks catch the
// records that would encode to a payload a wallet rejects or that would lose
// data silently.
//
// SEVERITIES:
//   error   - the row is not encoded
//   warning - the row is encoded, the warning is reported
//
// CHECKS:
//   - Keys: two-digit tag ids or known friendly names
//   - Tags the serializer drops (00, 63, 65-99)
//   - Raw ids mixed into a friendly-named record (they are dropped)
//   - Value length over 99 characters (length field overflow)
//   - Currency codes, initiation method, country code, category code, amount
//   - Fields EMV requires for a merchant-presented payload
//
// =============================================================================

package validation

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mono57/emvqr/internal/fieldnames"
	"github.com/mono57/emvqr/internal/tlv"
	"github.com/mono57/emvqr/internal/types"
)

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// MaxValueLength is the longest value a two-digit length field can describe.
const MaxValueLength = 99

// requiredTags must be present for a wallet to accept the payload.
var requiredTags = []string{"52", "53", "58", "59", "60"}

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError is one problem found in a record.
type ValidationError struct {
	Severity string

	// Field is the record key as written in the input.
	Field string

	// Value is the offending value.
	Value string

	// Rule names the violated check.
	Rule string

	Message string

	// RowNumber is the source row, 0 when unknown.
	RowNumber int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", strings.ToUpper(e.Severity))
	if e.RowNumber > 0 {
		fmt.Fprintf(&b, " row %d,", e.RowNumber)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field '%s':", e.Field)
	}
	b.WriteString(" " + e.Message)
	if e.Value != "" {
		fmt.Fprintf(&b, " (value: '%s')", e.Value)
	}
	return b.String()
}

// IsFatal reports whether the error stops the record from being encoded.
func (e *ValidationError) IsFatal() bool {
	return e.Severity == SeverityError
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult collects the outcome of validating records.
type ValidationResult struct {
	// IsValid is true when there are no fatal errors.
	IsValid bool

	Errors       []*ValidationError
	ErrorCount   int
	WarningCount int

	RecordsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions tunes a Validator.
type ValidationOptions struct {
	// TreatWarningsAsErrors makes every warning fatal.
	TreatWarningsAsErrors bool

	// SkipRequiredFields disables the required-field warnings, for files
	// whose static fields are merged in later.
	SkipRequiredFields bool
}

// Validator checks merchant records.
type Validator struct {
	options ValidationOptions
}

// NewValidator returns a Validator with default options.
func NewValidator() *Validator {
	return &Validator{}
}

// NewValidatorWithOptions returns a Validator with the given options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	return &Validator{options: options}
}

// Validate checks records with default options and returns every problem.
func Validate(records []types.MerchantRecord) []*ValidationError {
	return NewValidator().ValidateAll(records).Errors
}

// ValidateAll checks every record.
func (v *Validator) ValidateAll(records []types.MerchantRecord) *ValidationResult {
	result := &ValidationResult{IsValid: true, RecordsValidated: len(records)}

	for _, rec := range records {
		for _, err := range v.ValidateRecord(rec) {
			result.Errors = append(result.Errors, err)
			if err.IsFatal() {
				result.ErrorCount++
				result.IsValid = false
			} else {
				result.WarningCount++
			}
		}
	}
	return result
}

// ValidateRecord checks one record. Problems are returned sorted by field
// key, required-field warnings last.
func (v *Validator) ValidateRecord(rec types.MerchantRecord) []*ValidationError {
	c := &checker{row: rec.Row}

	friendly := fieldnames.IsFriendlyMap(rec.Fields)
	present := make(map[string]bool)

	for _, key := range sortedKeys(rec.Fields) {
		value := rec.Fields[key]

		tag, ok := c.resolveKey(key, value, friendly)
		if !ok {
			continue
		}
		present[tag] = true

		if n := utf8.RuneCountInString(value); n > MaxValueLength {
			c.fail(key, value, "max_length",
				fmt.Sprintf("value is %d characters, a TLV record holds at most %d", n, MaxValueLength))
		}
		c.checkValue(key, tag, value, friendly)
	}

	if !v.options.SkipRequiredFields {
		for _, tag := range requiredTags {
			if !present[tag] {
				c.warn(fieldnames.FieldName(tag), "", "required",
					fmt.Sprintf("tag %s is required for a merchant-presented payload", tag))
			}
		}
	}

	if v.options.TreatWarningsAsErrors {
		for _, e := range c.errs {
			e.Severity = SeverityError
		}
	}
	return c.errs
}

// =============================================================================
// CHECKS
// =============================================================================

type checker struct {
	row  int
	errs []*ValidationError
}

func (c *checker) add(severity, field, value, rule, msg string) {
	c.errs = append(c.errs, &ValidationError{
		Severity:  severity,
		Field:     field,
		Value:     value,
		Rule:      rule,
		Message:   msg,
		RowNumber: c.row,
	})
}

func (c *checker) fail(field, value, rule, msg string) {
	c.add(SeverityError, field, value, rule, msg)
}

func (c *checker) warn(field, value, rule, msg string) {
	c.add(SeverityWarning, field, value, rule, msg)
}

// resolveKey maps a record key to the tag it will be encoded under. The
// second result is false when the key is not encoded at all.
func (c *checker) resolveKey(key, value string, friendly bool) (string, bool) {
	if isTagID(key) {
		if friendly {
			c.warn(key, value, "mixed_keys", "raw tag id in a record keyed by friendly names is ignored")
			return "", false
		}
		if !tlv.Emitted(key) {
			c.warn(key, value, "not_emitted", fmt.Sprintf("tag %s is not written to payloads", key))
			return "", false
		}
		return key, true
	}

	tag, known := fieldnames.TagForField(key)
	switch {
	case !known:
		c.warn(key, value, "unknown_field", "unknown field name is ignored")
		return "", false
	case !friendly:
		c.warn(key, value, "mixed_keys", "friendly name in a record keyed by tag ids is ignored")
		return "", false
	case !tlv.Emitted(tag):
		c.warn(key, value, "not_emitted", fmt.Sprintf("%s (tag %s) is not written to payloads", key, tag))
		return "", false
	}
	return tag, true
}

func (c *checker) checkValue(key, tag, value string, friendly bool) {
	switch tag {
	case fieldnames.TagInitiationMethod:
		c.checkInitiation(key, value, friendly)
	case fieldnames.TagCurrency:
		c.checkCurrency(key, value)
	case "52":
		if !isDigits(value, 4) {
			c.warn(key, value, "format", "merchant category code should be 4 digits")
		}
	case "54":
		c.checkAmount(key, value)
	case "58":
		if len(value) != 2 || !isUpperAlpha(value) {
			c.warn(key, value, "format", "country code should be 2 uppercase letters")
		}
	}
}

func (c *checker) checkInitiation(key, value string, friendly bool) {
	if friendly {
		switch strings.ToLower(value) {
		case "dynamic", "static":
		default:
			c.warn(key, value, "initiation_method", "initiation method must be dynamic or static; the field is dropped")
		}
		return
	}
	if value != fieldnames.InitiationDynamic && value != fieldnames.InitiationStatic {
		c.warn(key, value, "initiation_method", "initiation method should be 11 or 12")
	}
}

func (c *checker) checkCurrency(key, value string) {
	if isAlphaASCII(value) {
		if _, ok := fieldnames.NumericCurrency(strings.ToUpper(value)); !ok {
			c.fail(key, value, "currency", "unsupported currency code: "+strings.ToUpper(value))
		}
		return
	}
	if _, ok := fieldnames.AlphaCurrency(value); !ok {
		c.warn(key, value, "currency", "numeric currency code is not in the ISO 4217 table")
	}
}

func (c *checker) checkAmount(key, value string) {
	if len(value) > 13 {
		c.warn(key, value, "format", "amount should be at most 13 characters")
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || strings.ContainsAny(value, "eE+ ") {
		c.fail(key, value, "format", "amount is not a decimal number")
		return
	}
	if f <= 0 {
		c.warn(key, value, "format", "amount should be positive")
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func isTagID(s string) bool {
	return isDigits(s, 2)
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isAlphaASCII(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

func isUpperAlpha(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return s != ""
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FormatErrors renders errs for display, one per line.
func FormatErrors(errs []*ValidationError) string {
	if len(errs) == 0 {
		return "No validation errors."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Validation completed with %d problem(s):\n\n", len(errs))
	for i, err := range errs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Summary joins the messages of errs into one line for a result sheet.
func Summary(errs []*ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Field != "" {
			parts = append(parts, e.Field+": "+e.Message)
		} else {
			parts = append(parts, e.Message)
		}
	}
	return strings.Join(parts, "; ")
}
