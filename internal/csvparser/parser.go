// =============================================================================
// EMV QR Payload Toolkit - CSV Record Reader
// =============================================================================
//
// Reads merchant record files in CSV form.
//
// FILE LAYOUT:
//   - Rows before the header row are ignored (titles, notes).
//   - The header row holds one field key per column: a raw tag id ("59") or
//     a friendly name ("merchant_name"). Blank header cells drop the column.
//   - Every later row with at least one non-blank cell is a record.
//
// Values are trimmed. Empty cells are left out of the record so that an
// empty column never produces an empty TLV record.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mono57/emvqr/internal/config"
	"github.com/mono57/emvqr/internal/types"
)

// ErrNoHeader is returned when the file ends before the header row.
var ErrNoHeader = errors.New("csvparser: header row not found")

// Parse reads the merchant record file at filePath.
func Parse(filePath string, settings config.CSVSettings, headerRow int) (*types.RecordSet, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	set, err := ParseReader(bufio.NewReader(file), settings, headerRow)
	if err != nil {
		return nil, err
	}
	set.SourceFile = filePath
	return set, nil
}

// ParseReader reads merchant records from r. headerRow is 1-based and counts
// CSV records, not physical lines.
func ParseReader(r io.Reader, settings config.CSVSettings, headerRow int) (*types.RecordSet, error) {
	if headerRow < 1 {
		headerRow = 1
	}

	reader := newReader(r, settings)

	var header []string
	for i := 1; i <= headerRow; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			return nil, ErrNoHeader
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		header = row
	}

	columns := headerColumns(header)
	set := &types.RecordSet{}
	for _, c := range columns {
		set.Headers = append(set.Headers, c.key)
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}

		line, _ := reader.FieldPos(0)
		fields := make(map[string]string, len(columns))
		for _, c := range columns {
			if c.index >= len(row) {
				continue
			}
			if value := strings.TrimSpace(row[c.index]); value != "" {
				fields[c.key] = value
			}
		}
		if len(fields) == 0 {
			continue
		}
		set.Records = append(set.Records, types.MerchantRecord{Row: line, Fields: fields})
	}

	return set, nil
}

func newReader(r io.Reader, settings config.CSVSettings) *csv.Reader {
	reader := csv.NewReader(r)
	if comma := settings.Comma(); comma != 0 {
		reader.Comma = comma
	}
	reader.Comment = settings.CommentRune()

	// Allow ragged rows and sloppy quoting from spreadsheet exports.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	return reader
}

type column struct {
	index int
	key   string
}

// headerColumns returns the non-blank header cells with their column index.
// A repeated key keeps its first column.
func headerColumns(header []string) []column {
	seen := make(map[string]bool, len(header))
	var cols []column
	for i, cell := range header {
		key := strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff"))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		cols = append(cols, column{index: i, key: key})
	}
	return cols
}

// =============================================================================
// WRITING
// =============================================================================

// Write renders rows as CSV with the given delimiter. The first row is
// normally the header.
func Write(w io.Writer, settings config.CSVSettings, rows [][]string) error {
	cw := csv.NewWriter(w)
	if comma := settings.Comma(); comma != 0 {
		cw.Comma = comma
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}
