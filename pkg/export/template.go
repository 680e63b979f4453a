package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned when a template does not contain the requested sheet.
var ErrSheetNotFound = errors.New("sheet not found")

// Template is an existing workbook opened for bounded in-place edits.
type Template struct {
	file      *excelize.File
	numFmtIDs map[numFmtKey]int
}

type numFmtKey struct {
	base   int
	format string
}

// OpenTemplate reads a workbook from r.
func OpenTemplate(r io.Reader) (*Template, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	return &Template{file: f, numFmtIDs: make(map[numFmtKey]int)}, nil
}

// Sheet returns the named sheet. An empty name selects the active sheet.
func (t *Template) Sheet(name string) (*TemplateSheet, error) {
	if name == "" {
		name = t.file.GetSheetName(t.file.GetActiveSheetIndex())
	}
	idx, err := t.file.GetSheetIndex(name)
	if err != nil {
		return nil, fmt.Errorf("lookup sheet %q: %w", name, err)
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return &TemplateSheet{tpl: t, name: name}, nil
}

// Bytes serialises the edited workbook.
func (t *Template) Bytes() ([]byte, error) {
	buf, err := t.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write template: %w", err)
	}
	return buf.Bytes(), nil
}

// Close releases the underlying file resources.
func (t *Template) Close() error {
	return t.file.Close()
}

// TemplateSheet reads cells and overwrites numeric cells, zero-based like Sheet.
type TemplateSheet struct {
	tpl  *Template
	name string
}

// Name returns the sheet name.
func (s *TemplateSheet) Name() string {
	return s.name
}

// Text returns the displayed text of a cell.
func (s *TemplateSheet) Text(row, col int) (string, error) {
	cell, err := CellName(row, col)
	if err != nil {
		return "", err
	}
	v, err := s.tpl.file.GetCellValue(s.name, cell)
	if err != nil {
		return "", fmt.Errorf("read %s!%s: %w", s.name, cell, err)
	}
	return v, nil
}

// RowCount returns the number of rows up to the last non-empty one.
func (s *TemplateSheet) RowCount() (int, error) {
	rows, err := s.tpl.file.GetRows(s.name)
	if err != nil {
		return 0, fmt.Errorf("read rows of %s: %w", s.name, err)
	}
	return len(rows), nil
}

// SetNumber writes v and applies numFmt on top of the cell's existing style, so borders,
// fonts and fills authored in the template survive.
func (s *TemplateSheet) SetNumber(row, col int, v float64, numFmt string) error {
	cell, err := CellName(row, col)
	if err != nil {
		return err
	}
	if err := s.tpl.file.SetCellFloat(s.name, cell, v, -1, 64); err != nil {
		return fmt.Errorf("set %s!%s: %w", s.name, cell, err)
	}
	if numFmt == "" {
		return nil
	}

	base, err := s.tpl.file.GetCellStyle(s.name, cell)
	if err != nil {
		return fmt.Errorf("read style %s!%s: %w", s.name, cell, err)
	}
	id, err := s.tpl.withNumFmt(base, numFmt)
	if err != nil {
		return err
	}
	return s.tpl.file.SetCellStyle(s.name, cell, cell, id)
}

func (t *Template) withNumFmt(base int, numFmt string) (int, error) {
	key := numFmtKey{base: base, format: numFmt}
	if id, ok := t.numFmtIDs[key]; ok {
		return id, nil
	}

	style, err := t.file.GetStyle(base)
	if err != nil || style == nil {
		style = &excelize.Style{}
	}
	format := numFmt
	style.NumFmt = 0
	style.CustomNumFmt = &format

	id, err := t.file.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("create number format %q: %w", numFmt, err)
	}
	t.numFmtIDs[key] = id
	return id, nil
}
