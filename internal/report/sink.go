package report

import (
	"github.com/noah-isme/rgb-survey-api/pkg/export"
)

// Sink receives cell writes for one sheet. Rows and columns are zero-based.
type Sink interface {
	SetCell(row, col int, value interface{}, f export.Format) error
	MergeCells(r1, c1, r2, c2 int, value interface{}, f export.Format) error
	AddChart(spec export.ChartSpec) error
	SetColumnWidth(first, last int, width float64) error
}

// WorkbookSink collects sheets into one serialisable document.
type WorkbookSink interface {
	AddSheet(name string) (Sink, error)
	Bytes() ([]byte, error)
	Close() error
}

// TemplateSheet is a pre-authored sheet that only allows bounded numeric overwrites.
type TemplateSheet interface {
	Text(row, col int) (string, error)
	RowCount() (int, error)
	SetNumber(row, col int, v float64, numFmt string) error
}

// NewWorkbook returns an xlsx-backed WorkbookSink.
func NewWorkbook() WorkbookSink {
	return &xlsxWorkbook{wb: export.NewWorkbook()}
}

type xlsxWorkbook struct {
	wb *export.Workbook
}

func (w *xlsxWorkbook) AddSheet(name string) (Sink, error) {
	sheet, err := w.wb.AddSheet(name)
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

func (w *xlsxWorkbook) Bytes() ([]byte, error) {
	return w.wb.Bytes()
}

func (w *xlsxWorkbook) Close() error {
	return w.wb.Close()
}

var (
	_ Sink          = (*export.Sheet)(nil)
	_ TemplateSheet = (*export.TemplateSheet)(nil)
)
