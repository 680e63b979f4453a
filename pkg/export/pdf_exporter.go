package export

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
)

// ContentTypePDF is the MIME type of rendered PDF files.
const ContentTypePDF = "application/pdf"

// ErrFontRequired is returned when no UTF-8 font is configured. The core PDF fonts cannot
// render Japanese text.
var ErrFontRequired = errors.New("pdf export requires a UTF-8 TrueType font")

const fontFamily = "body"

// PDFExporter renders datasets into a basic tabular PDF.
type PDFExporter struct {
	fontPath string
}

// NewPDFExporter constructs a PDF exporter using the TrueType font at fontPath.
func NewPDFExporter(fontPath string) *PDFExporter {
	return &PDFExporter{fontPath: fontPath}
}

// Enabled reports whether a font file is configured and readable.
func (e *PDFExporter) Enabled() bool {
	if e == nil || e.fontPath == "" {
		return false
	}
	_, err := os.Stat(e.fontPath)
	return err == nil
}

// Render creates a landscape PDF document with a title, an optional subtitle and a table body.
// The first column is twice as wide as the others.
func (e *PDFExporter) Render(data Dataset, title, subtitle string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	if !e.Enabled() {
		return nil, ErrFontRequired
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddUTF8Font(fontFamily, "", e.fontPath)
	pdf.AddUTF8Font(fontFamily, "B", e.fontPath)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load pdf font: %w", err)
	}
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont(fontFamily, "B", 14)
		pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	}
	if subtitle != "" {
		pdf.SetFont(fontFamily, "", 10)
		pdf.CellFormat(0, 7, subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	const usable = 277.0
	unit := usable / float64(len(data.Headers)+1)
	widths := make([]float64, len(data.Headers))
	for i := range widths {
		widths[i] = unit
	}
	widths[0] = unit * 2

	pdf.SetFont(fontFamily, "B", 10)
	pdf.SetFillColor(217, 234, 211)
	for i, header := range data.Headers {
		pdf.CellFormat(widths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(fontFamily, "", 9)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			align := "C"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 7, row[header], "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
