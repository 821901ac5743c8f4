package export

import (
	"bytes"
	"testing"
	"time"

	"dispatch-ledger/internal/models"

	"github.com/xuri/excelize/v2"
)

func testRecords() []models.SaleRecord {
	return []models.SaleRecord{
		{
			ID: "1", Date: "2024-01-01", Supplier: "Acme", DCNumber: "DC-1",
			Items: []models.SaleItem{{SerialNumber: "T-1", KVA: 500}, {SerialNumber: "T-2", KVA: 250}},
		},
		{ID: "2", Date: "2024-02-01", Supplier: "Beta", DCNumber: "DC-2", Items: []models.SaleItem{}},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(testRecords())
	if len(rows) != 3 {
		t.Fatalf("Rows() returned %d rows, want 3", len(rows))
	}
	if rows[1][5] != "T-2" || rows[1][6] != 250.0 {
		t.Errorf("second item row = %v", rows[1])
	}
	if rows[2][1] != "Beta" || rows[2][5] != "" || rows[2][6] != "" {
		t.Errorf("itemless record row = %v", rows[2])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, testRecords()); err != nil {
		t.Fatalf("WriteXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if name := f.GetSheetName(0); name != SheetName {
		t.Errorf("sheet name = %q, want %q", name, SheetName)
	}

	cells := map[string]string{
		"A1": "Date",
		"F1": "Serial Number",
		"H1": "Remarks",
		"B2": "Acme",
		"F2": "T-1",
		"F3": "T-2",
		"B4": "Beta",
		"F4": "",
	}
	for cell, want := range cells {
		got, err := f.GetCellValue(SheetName, cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", cell, err)
		}
		if got != want {
			t.Errorf("cell %s = %q, want %q", cell, got, want)
		}
	}
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 4, 0, 0, time.UTC)
	if got := FileName(now); got != "Sales_2024-03-09.xlsx" {
		t.Errorf("FileName() = %q", got)
	}
}
