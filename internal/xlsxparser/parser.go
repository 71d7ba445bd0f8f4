// =============================================================================
// EMV QR Payload Toolkit - XLSX Record Reader
// =============================================================================
//
// Reads merchant record files in XLSX form. The sheet layout matches the CSV
// reader: optional title rows, one header row of field keys, then one record
// per non-empty row.
//
// SHEET SELECTION:
//   The configured sheet name when set and present, otherwise the first
//   sheet of the workbook.
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mono57/emvqr/internal/types"
)

var (
	// ErrNoSheets is returned for a workbook without sheets.
	ErrNoSheets = errors.New("xlsxparser: workbook has no sheets")

	// ErrNoHeader is returned when the sheet ends before the header row.
	ErrNoHeader = errors.New("xlsxparser: header row not found")
)

// Parse reads the merchant records of the workbook at filePath.
func Parse(filePath, sheetName string, headerRow int) (*types.RecordSet, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet, err := resolveSheet(f, sheetName)
	if err != nil {
		return nil, err
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows of %s: %w", sheet, err)
	}

	set, err := FromRows(rows, headerRow)
	if err != nil {
		return nil, err
	}
	set.SourceFile = filePath
	return set, nil
}

// resolveSheet picks the sheet to read.
func resolveSheet(f *excelize.File, name string) (string, error) {
	if name != "" {
		if idx, err := f.GetSheetIndex(name); err == nil && idx >= 0 {
			return name, nil
		}
	}
	first := f.GetSheetName(0)
	if first == "" {
		return "", ErrNoSheets
	}
	return first, nil
}

// FromRows builds a RecordSet from sheet rows. headerRow is 1-based.
func FromRows(rows [][]string, headerRow int) (*types.RecordSet, error) {
	if headerRow < 1 {
		headerRow = 1
	}
	if len(rows) < headerRow {
		return nil, ErrNoHeader
	}

	header := rows[headerRow-1]
	set := &types.RecordSet{}

	keys := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, cell := range header {
		key := strings.TrimSpace(cell)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys[i] = key
		set.Headers = append(set.Headers, key)
	}

	for i := headerRow; i < len(rows); i++ {
		fields := make(map[string]string)
		for col, cell := range rows[i] {
			if col >= len(keys) || keys[col] == "" {
				continue
			}
			if value := strings.TrimSpace(cell); value != "" {
				fields[keys[col]] = value
			}
		}
		if len(fields) == 0 {
			continue
		}
		set.Records = append(set.Records, types.MerchantRecord{Row: i + 1, Fields: fields})
	}

	return set, nil
}
