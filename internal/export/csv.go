package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"billextract/internal/domain"
)

// BOM is the UTF-8 byte order mark written for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the header row shared by the CSV and XLSX exports.
var columns = []string{"Page", "Item Name", "Quantity", "Rate", "Amount"}

// CSVWriter wraps csv.Writer for exporting extracted line items.
type CSVWriter struct {
	out io.Writer
	csv *csv.Writer
}

// NewCSVWriter creates a CSVWriter that writes to w.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{out: w, csv: csv.NewWriter(w)}
}

// WriteBOM writes the UTF-8 byte order mark. Call it before anything else.
func (w *CSVWriter) WriteBOM() error {
	_, err := w.out.Write(BOM)
	return err
}

// WriteHeader writes the header row.
func (w *CSVWriter) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteResponse writes one row per line item in page order. A failed response writes nothing.
func (w *CSVWriter) WriteResponse(resp *domain.BillExtractionResponse) error {
	for _, row := range Rows(resp) {
		if err := w.csv.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *CSVWriter) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *CSVWriter) Error() error {
	return w.csv.Error()
}

// WriteCSV writes a complete export of resp: BOM, header and item rows.
func WriteCSV(out io.Writer, resp *domain.BillExtractionResponse) error {
	w := NewCSVWriter(out)
	if err := w.WriteBOM(); err != nil {
		return err
	}
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteResponse(resp); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// Rows converts the items of resp to string rows matching the header.
func Rows(resp *domain.BillExtractionResponse) [][]string {
	if resp == nil || resp.Data == nil {
		return nil
	}
	var rows [][]string
	for _, page := range resp.Data.PagewiseLineItems {
		for i := range page.BillItems {
			it := &page.BillItems[i]
			rows = append(rows, []string{
				page.PageNo,
				it.Name,
				formatQuantity(it.Quantity),
				formatMoney(it.Rate),
				formatMoney(it.Amount),
			})
		}
	}
	return rows
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatQuantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
