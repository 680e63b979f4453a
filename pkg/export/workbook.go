package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ContentTypeXLSX is the MIME type of rendered workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Format names a cell style. Workbooks translate each tag into one shared excelize style.
type Format string

const (
	FormatNone             Format = ""
	FormatHeader           Format = "header"
	FormatCategory         Format = "category"
	FormatQuestion         Format = "question"
	FormatAverage1         Format = "average1"
	FormatAverage2         Format = "average2"
	FormatPercent          Format = "percent"
	FormatDashboardPercent Format = "dashboard_percent"
	FormatBold             Format = "bold"
	FormatWrap             Format = "wrap"
)

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

func styleFor(f Format) *excelize.Style {
	percent := `0.00"%"`
	oneDecimal := "0.0"
	twoDecimals := "0.00"
	centered := &excelize.Alignment{Horizontal: "center", Vertical: "center"}

	switch f {
	case FormatHeader:
		return &excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9EAD3"}, Pattern: 1},
			Border:    thinBorder,
			Alignment: centered,
		}
	case FormatCategory:
		return &excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Color: []string{"E2EFDA"}, Pattern: 1},
			Border:    thinBorder,
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		}
	case FormatQuestion:
		return &excelize.Style{
			Border:    thinBorder,
			Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
		}
	case FormatAverage1:
		return &excelize.Style{CustomNumFmt: &oneDecimal, Border: thinBorder, Alignment: centered}
	case FormatAverage2:
		return &excelize.Style{CustomNumFmt: &twoDecimals}
	case FormatPercent:
		return &excelize.Style{CustomNumFmt: &percent}
	case FormatDashboardPercent:
		return &excelize.Style{CustomNumFmt: &percent, Border: thinBorder, Alignment: centered}
	case FormatBold:
		return &excelize.Style{Font: &excelize.Font{Bold: true}}
	case FormatWrap:
		return &excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}}
	default:
		return nil
	}
}

// Workbook is an in-memory xlsx document built sheet by sheet.
type Workbook struct {
	file   *excelize.File
	styles map[Format]int
	sheets int
}

// NewWorkbook creates an empty workbook. The default sheet is renamed by the first AddSheet.
func NewWorkbook() *Workbook {
	return &Workbook{file: excelize.NewFile(), styles: make(map[Format]int)}
}

// AddSheet appends a sheet. Names must be unique within the workbook.
func (w *Workbook) AddSheet(name string) (*Sheet, error) {
	if w.sheets == 0 {
		first := w.file.GetSheetName(0)
		if err := w.file.SetSheetName(first, name); err != nil {
			return nil, fmt.Errorf("rename sheet %q: %w", name, err)
		}
	} else {
		if idx, _ := w.file.GetSheetIndex(name); idx != -1 {
			return nil, fmt.Errorf("sheet %q already exists", name)
		}
		if _, err := w.file.NewSheet(name); err != nil {
			return nil, fmt.Errorf("add sheet %q: %w", name, err)
		}
	}
	w.sheets++
	return &Sheet{wb: w, name: name}, nil
}

// SheetNames lists sheets in workbook order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

// Bytes serialises the workbook with the first sheet active.
func (w *Workbook) Bytes() ([]byte, error) {
	w.file.SetActiveSheet(0)
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Close releases the underlying file resources.
func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) style(f Format) (int, bool, error) {
	if f == FormatNone {
		return 0, false, nil
	}
	if id, ok := w.styles[f]; ok {
		return id, true, nil
	}
	st := styleFor(f)
	if st == nil {
		return 0, false, fmt.Errorf("unknown format %q", f)
	}
	id, err := w.file.NewStyle(st)
	if err != nil {
		return 0, false, fmt.Errorf("create style %q: %w", f, err)
	}
	w.styles[f] = id
	return id, true, nil
}

// Sheet writes cells using zero-based row and column coordinates.
type Sheet struct {
	wb   *Workbook
	name string
}

// Name returns the sheet name.
func (s *Sheet) Name() string {
	return s.name
}

// SetCell writes value at (row, col). A nil value leaves the cell blank but still styled.
func (s *Sheet) SetCell(row, col int, value interface{}, f Format) error {
	cell, err := CellName(row, col)
	if err != nil {
		return err
	}
	if value != nil {
		if err := s.wb.file.SetCellValue(s.name, cell, value); err != nil {
			return fmt.Errorf("set %s!%s: %w", s.name, cell, err)
		}
	}
	return s.applyStyle(cell, cell, f)
}

// MergeCells writes value into the top-left cell and merges the inclusive range.
// A single-cell range is written as a plain cell.
func (s *Sheet) MergeCells(r1, c1, r2, c2 int, value interface{}, f Format) error {
	if r1 == r2 && c1 == c2 {
		return s.SetCell(r1, c1, value, f)
	}
	if r2 < r1 || c2 < c1 {
		return fmt.Errorf("invalid merge range (%d,%d)-(%d,%d)", r1, c1, r2, c2)
	}

	topLeft, err := CellName(r1, c1)
	if err != nil {
		return err
	}
	bottomRight, err := CellName(r2, c2)
	if err != nil {
		return err
	}
	if value != nil {
		if err := s.wb.file.SetCellValue(s.name, topLeft, value); err != nil {
			return fmt.Errorf("set %s!%s: %w", s.name, topLeft, err)
		}
	}
	if err := s.wb.file.MergeCell(s.name, topLeft, bottomRight); err != nil {
		return fmt.Errorf("merge %s!%s:%s: %w", s.name, topLeft, bottomRight, err)
	}
	return s.applyStyle(topLeft, bottomRight, f)
}

// SetColumnWidth sets the width of the inclusive zero-based column range.
func (s *Sheet) SetColumnWidth(first, last int, width float64) error {
	start, err := excelize.ColumnNumberToName(first + 1)
	if err != nil {
		return err
	}
	end, err := excelize.ColumnNumberToName(last + 1)
	if err != nil {
		return err
	}
	return s.wb.file.SetColWidth(s.name, start, end, width)
}

func (s *Sheet) applyStyle(from, to string, f Format) error {
	id, ok, err := s.wb.style(f)
	if err != nil || !ok {
		return err
	}
	return s.wb.file.SetCellStyle(s.name, from, to, id)
}

// CellName converts zero-based coordinates to an A1 reference.
func CellName(row, col int) (string, error) {
	return excelize.CoordinatesToCellName(col+1, row+1)
}

// absoluteRange renders an absolute, sheet-qualified reference such as '学年別比較'!$A$2:$A$9.
func absoluteRange(sheet string, r1, c1, r2, c2 int) (string, error) {
	from, err := excelize.CoordinatesToCellName(c1+1, r1+1, true)
	if err != nil {
		return "", err
	}
	if r1 == r2 && c1 == c2 {
		return fmt.Sprintf("'%s'!%s", sheet, from), nil
	}
	to, err := excelize.CoordinatesToCellName(c2+1, r2+1, true)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("'%s'!%s:%s", sheet, from, to), nil
}
