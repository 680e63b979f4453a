package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ChartType selects the chart family.
type ChartType string

const (
	ChartRadar ChartType = "radar"
	ChartLine  ChartType = "line"
)

// CellRange is an inclusive zero-based range on the sheet the chart is added to.
type CellRange struct {
	FirstRow, FirstCol int
	LastRow, LastCol   int
}

// Column is a single-column range.
func Column(col, firstRow, lastRow int) CellRange {
	return CellRange{FirstRow: firstRow, FirstCol: col, LastRow: lastRow, LastCol: col}
}

// ChartSeries plots Values against Categories; (NameRow, NameCol) holds the series name.
type ChartSeries struct {
	NameRow, NameCol int
	Categories       CellRange
	Values           CellRange
	Color            string
	Marker           bool
}

// ChartSpec describes one chart anchored at (AnchorRow, AnchorCol).
type ChartSpec struct {
	Type      ChartType
	Title     string
	Series    []ChartSeries
	AnchorRow int
	AnchorCol int
	YMin      *float64
	YMax      *float64
	YTitle    string
	XTitle    string
	Legend    string
	Width     uint
	Height    uint
}

// AddChart renders spec over ranges of this sheet. Blank cells are plotted as gaps.
func (s *Sheet) AddChart(spec ChartSpec) error {
	if len(spec.Series) == 0 {
		return fmt.Errorf("chart %q has no series", spec.Title)
	}

	chart := &excelize.Chart{
		Title:        []excelize.RichTextRun{{Text: spec.Title, Font: &excelize.Font{Bold: true, Size: 14}}},
		Legend:       excelize.ChartLegend{Position: legendOrDefault(spec.Legend)},
		ShowBlanksAs: "gap",
		YAxis: excelize.ChartAxis{
			MajorGridLines: true,
			Minimum:        spec.YMin,
			Maximum:        spec.YMax,
		},
		Dimension: excelize.ChartDimension{Width: spec.Width, Height: spec.Height},
	}
	if spec.YTitle != "" {
		chart.YAxis.Title = []excelize.RichTextRun{{Text: spec.YTitle}}
	}
	if spec.XTitle != "" {
		chart.XAxis.Title = []excelize.RichTextRun{{Text: spec.XTitle}}
	}

	switch spec.Type {
	case ChartRadar:
		chart.Type = excelize.Radar
	case ChartLine:
		chart.Type = excelize.Line
	default:
		return fmt.Errorf("unsupported chart type %q", spec.Type)
	}

	for _, series := range spec.Series {
		name, err := absoluteRange(s.name, series.NameRow, series.NameCol, series.NameRow, series.NameCol)
		if err != nil {
			return err
		}
		cats, err := absoluteRange(s.name, series.Categories.FirstRow, series.Categories.FirstCol, series.Categories.LastRow, series.Categories.LastCol)
		if err != nil {
			return err
		}
		vals, err := absoluteRange(s.name, series.Values.FirstRow, series.Values.FirstCol, series.Values.LastRow, series.Values.LastCol)
		if err != nil {
			return err
		}

		cs := excelize.ChartSeries{Name: name, Categories: cats, Values: vals}
		if series.Color != "" {
			cs.Line = excelize.ChartLine{Width: 1.5}
			cs.Fill = excelize.Fill{Type: "pattern", Color: []string{series.Color}, Pattern: 1}
		}
		if series.Marker {
			cs.Marker = excelize.ChartMarker{Symbol: "circle", Size: 5}
			if series.Color != "" {
				cs.Marker.Fill = excelize.Fill{Type: "pattern", Color: []string{series.Color}, Pattern: 1}
			}
		}
		chart.Series = append(chart.Series, cs)
	}

	anchor, err := CellName(spec.AnchorRow, spec.AnchorCol)
	if err != nil {
		return err
	}
	if err := s.wb.file.AddChart(s.name, anchor, chart); err != nil {
		return fmt.Errorf("add chart to %s: %w", s.name, err)
	}
	return nil
}

func legendOrDefault(position string) string {
	if position == "" {
		return "right"
	}
	return position
}
