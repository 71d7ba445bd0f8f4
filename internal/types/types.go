// =============================================================================
// EMV QR Payload Toolkit - Shared Batch Types
// =============================================================================
//
// Types shared by the batch pipeline packages, kept here to avoid import
// cycles:
//   - csvparser / xlsxparser produce RecordSets
//   - validation checks MerchantRecords
//   - converter turns them into Results
//   - writer renders Results
//
// =============================================================================

package types

// =============================================================================
// INPUT TYPES
// =============================================================================

// MerchantRecord is one data row of a merchant record file.
type MerchantRecord struct {
	// Row is the 1-based row number in the source file, for error reports.
	Row int

	// Fields maps a header key (raw tag id or friendly name) to the cell
	// value. Empty cells are omitted.
	Fields map[string]string
}

// RecordSet is the parsed content of one merchant record file.
type RecordSet struct {
	// SourceFile is the path the records were read from.
	SourceFile string

	// Headers are the header row keys in column order, blanks dropped.
	Headers []string

	// Records are the non-empty data rows in file order.
	Records []MerchantRecord
}

// =============================================================================
// OUTPUT TYPES
// =============================================================================

// Row status values written to result files.
const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

// PayloadRow is the encoding outcome for one MerchantRecord.
type PayloadRow struct {
	Record MerchantRecord

	// Payload is the encoded payload string, empty on failure.
	Payload string

	// CRC is the payload's checksum value.
	CRC string

	// Status is one of StatusOK, StatusInvalid, StatusError.
	Status string

	// Error describes why the row failed or what it was warned about.
	Error string
}
