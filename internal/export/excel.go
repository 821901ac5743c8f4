// Package export renders the register as an Excel workbook, one row per
// transformer.
package export

import (
	"fmt"
	"io"
	"time"

	"dispatch-ledger/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Sales"

var (
	Header       = []string{"Date", "Supplier", "GST Number", "DC Number", "Manufacturer", "Serial Number", "KVA", "Remarks"}
	columnWidths = []float64{12, 24, 18, 14, 18, 18, 8, 30}
)

// Rows flattens records into sheet rows. A record without items still gets
// one row, with blank serial and KVA cells.
func Rows(recs []models.SaleRecord) [][]any {
	rows := make([][]any, 0, len(recs))
	for _, r := range recs {
		if len(r.Items) == 0 {
			rows = append(rows, []any{r.Date, r.Supplier, r.GSTNumber, r.DCNumber, r.Manufacturer, "", "", r.Remarks})
			continue
		}
		for _, it := range r.Items {
			rows = append(rows, []any{r.Date, r.Supplier, r.GSTNumber, r.DCNumber, r.Manufacturer, it.SerialNumber, it.KVA, r.Remarks})
		}
	}
	return rows
}

// WriteXLSX writes the workbook for recs to w.
func WriteXLSX(w io.Writer, recs []models.SaleRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return err
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, row := range Rows(recs) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(SheetName, col, col, width); err != nil {
			return err
		}
	}

	_, err := f.WriteTo(w)
	return err
}

// FileName is the download name for an export made at now.
func FileName(now time.Time) string {
	return "Sales_" + now.Format(time.DateOnly) + ".xlsx"
}

