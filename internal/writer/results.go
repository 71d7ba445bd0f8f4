// =============================================================================
// EMV QR Payload Toolkit - Result Sheet Writer
// =============================================================================
//
// Writes the outcome of a batch run as a table: the input columns in their
// original order followed by the generated columns.
//
//   | merchant_name | ... | payload | crc | status | error |
//
// xlsx output puts the table on one sheet with a bold header row and a frozen
// header pane. csv output honours the configured delimiter.
//
// =============================================================================

package writer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/mono57/emvqr/internal/config"
	"github.com/mono57/emvqr/internal/csvparser"
	"github.com/mono57/emvqr/internal/types"
)

// ResultColumns are appended after the input headers.
var ResultColumns = []string{"payload", "crc", "status", "error"}

// DefaultSheetName is used for xlsx results when none is configured.
const DefaultSheetName = "Payloads"

// ResultOptions controls result rendering.
type ResultOptions struct {
	// OutputType is "xlsx" or "csv".
	OutputType string

	// SheetName names the xlsx sheet.
	SheetName string

	// CSV carries the delimiter for csv output.
	CSV config.CSVSettings
}

// ResultTable lays rows out as a header line plus one line per row.
func ResultTable(headers []string, rows []types.PayloadRow) [][]string {
	table := make([][]string, 0, len(rows)+1)

	head := make([]string, 0, len(headers)+len(ResultColumns))
	head = append(head, headers...)
	head = append(head, ResultColumns...)
	table = append(table, head)

	for _, r := range rows {
		line := make([]string, 0, len(head))
		for _, h := range headers {
			line = append(line, r.Record.Fields[h])
		}
		line = append(line, r.Payload, r.CRC, r.Status, r.Error)
		table = append(table, line)
	}
	return table
}

// WriteResults writes the result table to path.
func WriteResults(path string, opts ResultOptions, headers []string, rows []types.PayloadRow) error {
	table := ResultTable(headers, rows)

	switch opts.OutputType {
	case "csv":
		var buf bytes.Buffer
		if err := csvparser.Write(&buf, opts.CSV, table); err != nil {
			return err
		}
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		return nil
	case "xlsx", "":
		return writeWorkbook(path, opts.SheetName, table)
	default:
		return fmt.Errorf("unsupported output type %q", opts.OutputType)
	}
}

func writeWorkbook(path, sheet string, table [][]string) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	for i, line := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(line))
		for j, v := range line {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(table) > 0 && len(table[0]) > 0 {
		style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(table[0]), 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return err
		}
		err = f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
		if err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
