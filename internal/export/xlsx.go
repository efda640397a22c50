package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"billextract/internal/domain"
)

// SheetName is the worksheet holding the exported items.
const SheetName = "Bill Items"

// XLSXWriter renders extraction responses as an Excel workbook.
type XLSXWriter struct{}

// NewXLSXWriter creates an XLSXWriter.
func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// Write renders resp and writes the workbook to out. The last row holds the
// item count and the reconciled amount.
func (x *XLSXWriter) Write(out io.Writer, resp *domain.BillExtractionResponse) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	row := 2
	if resp != nil && resp.Data != nil {
		for _, page := range resp.Data.PagewiseLineItems {
			for i := range page.BillItems {
				it := &page.BillItems[i]
				values := []interface{}{page.PageNo, it.Name, it.Quantity, it.Rate, it.Amount}
				cell, _ := excelize.CoordinatesToCellName(1, row)
				if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
					return fmt.Errorf("writing row %d: %w", row, err)
				}
				row++
			}
		}
	}

	count, amount := 0, 0.0
	if resp != nil && resp.Data != nil {
		count, amount = resp.Data.TotalItemCount, resp.Data.ReconciledAmount
	}
	totals := []interface{}{"Total", fmt.Sprintf("%d items", count), nil, nil, amount}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(SheetName, cell, &totals); err != nil {
		return fmt.Errorf("writing totals: %w", err)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 8)  // page
	_ = f.SetColWidth(SheetName, "B", "B", 40) // item
	_ = f.SetColWidth(SheetName, "C", "E", 14) // numbers

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
