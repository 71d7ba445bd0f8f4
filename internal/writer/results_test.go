package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mono57/emvqr/internal/config"
	"github.com/mono57/emvqr/internal/types"
)

func sampleRows() ([]string, []types.PayloadRow) {
	headers := []string{"merchant_name", "merchant_city"}
	rows := []types.PayloadRow{
		{
			Record:  types.MerchantRecord{Row: 2, Fields: map[string]string{"merchant_name": "Shop", "merchant_city": "Paris"}},
			Payload: "000201...",
			CRC:     "ABCD",
			Status:  types.StatusOK,
		},
		{
			Record: types.MerchantRecord{Row: 3, Fields: map[string]string{"merchant_name": "Bad"}},
			Status: types.StatusInvalid,
			Error:  "missing merchant_city",
		},
	}
	return headers, rows
}

func TestResultTable(t *testing.T) {
	headers, rows := sampleRows()
	table := ResultTable(headers, rows)
	if len(table) != 3 {
		t.Fatalf("table rows = %d, want 3", len(table))
	}
	if got := strings.Join(table[0], ","); got != "merchant_name,merchant_city,payload,crc,status,error" {
		t.Fatalf("header = %s", got)
	}
	if got := strings.Join(table[2], ","); got != "Bad,,,,invalid,missing merchant_city" {
		t.Fatalf("row = %s", got)
	}
}

func TestWriteResultsCSV(t *testing.T) {
	headers, rows := sampleRows()
	path := filepath.Join(t.TempDir(), "out.csv")
	opts := ResultOptions{OutputType: "csv", CSV: config.CSVSettings{Delimiter: ";"}}
	if err := WriteResults(path, opts, headers, rows); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "merchant_name;merchant_city;payload;crc;status;error\n" +
		"Shop;Paris;000201...;ABCD;ok;\n" +
		"Bad;;;;invalid;missing merchant_city\n"
	if string(data) != want {
		t.Fatalf("csv =\n%s\nwant\n%s", data, want)
	}
}

func TestWriteResultsXLSX(t *testing.T) {
	headers, rows := sampleRows()
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := WriteResults(path, ResultOptions{OutputType: "xlsx"}, headers, rows); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(DefaultSheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("rows = %d, want 3", len(got))
	}
	if got[1][2] != "000201..." || got[1][3] != "ABCD" || got[1][4] != "ok" {
		t.Fatalf("row 2 = %v", got[1])
	}
}

func TestWriteResultsUnknownType(t *testing.T) {
	headers, rows := sampleRows()
	path := filepath.Join(t.TempDir(), "out.xml")
	if err := WriteResults(path, ResultOptions{OutputType: "xml"}, headers, rows); err == nil {
		t.Fatalf("expected error")
	}
}
