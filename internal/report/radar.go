package report

import (
	"fmt"
	"math"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/pkg/export"
)

// Radar sheet names.
const (
	RadarOverallSheet    = "Overall"
	RadarComparisonSheet = "学年別比較"
)

var (
	radarSingleColors     = []string{"6D9B4F", "5B9BD5"}
	radarComparisonColors = []string{"4F81BD", "C0504D", "9ABA60", "F79646", "8064A2"}
)

// RadarSeries is one named polygon on a radar chart.
type RadarSeries struct {
	Name   string
	Values []float64
}

// RadarDataset is the data behind one radar sheet. Categories are competency names in
// configured order.
type RadarDataset struct {
	Sheet      string
	Categories []string
	Series     []RadarSeries
	Comparison bool
}

// BuildRadarDatasets returns the overall dataset, one per grade with respondents and the
// grade comparison dataset. Per-grade and comparison datasets need an identifier column.
func BuildRadarDatasets(in Input) []RadarDataset {
	cats := in.Config.Competencies.Names()
	current := in.Config.CurrentPeriod

	datasets := []RadarDataset{{
		Sheet:      RadarOverallSheet,
		Categories: cats,
		Series:     []RadarSeries{{Name: current + "_Overall", Values: competencyValues(cats, in.Breakdown.Overall)}},
	}}

	if !in.Responses.HasIdentifier {
		return datasets
	}

	for _, g := range in.Breakdown.NonEmptyGrades() {
		datasets = append(datasets, RadarDataset{
			Sheet:      fmt.Sprintf("Grade_%d", g.Grade),
			Categories: cats,
			Series: []RadarSeries{{
				Name:   fmt.Sprintf("%s_Grade_%d", current, g.Grade),
				Values: competencyValues(cats, g.Aggregate),
			}},
		})
	}

	comparison := RadarDataset{Sheet: RadarComparisonSheet, Categories: cats, Comparison: true}
	for _, g := range in.Breakdown.Grades {
		comparison.Series = append(comparison.Series, RadarSeries{Name: g.Label, Values: competencyValues(cats, g.Aggregate)})
	}
	return append(datasets, comparison)
}

func competencyValues(names []string, agg models.Aggregate) []float64 {
	values := make([]float64, len(names))
	for i, name := range names {
		values[i] = round1(agg.Competency(name))
	}
	return values
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RenderRadarWorkbook writes each dataset as a table with a radar chart beside it.
func RenderRadarWorkbook(datasets []RadarDataset) ([]byte, error) {
	wb := NewWorkbook()
	for _, ds := range datasets {
		sheet, err := wb.AddSheet(ds.Sheet)
		if err != nil {
			wb.Close()
			return nil, err
		}
		if err := writeRadarSheet(sheet, ds); err != nil {
			wb.Close()
			return nil, fmt.Errorf("radar sheet %s: %w", ds.Sheet, err)
		}
	}
	return render(wb)
}

func writeRadarSheet(sink Sink, ds RadarDataset) error {
	if err := sink.SetCell(0, 0, "Competency", export.FormatNone); err != nil {
		return err
	}
	for i, s := range ds.Series {
		if err := sink.SetCell(0, i+1, s.Name, export.FormatNone); err != nil {
			return err
		}
	}
	for r, cat := range ds.Categories {
		if err := sink.SetCell(r+1, 0, cat, export.FormatNone); err != nil {
			return err
		}
		for i, s := range ds.Series {
			if err := sink.SetCell(r+1, i+1, s.Values[r], export.FormatNone); err != nil {
				return err
			}
		}
	}
	if err := sink.SetColumnWidth(0, 0, 15); err != nil {
		return err
	}

	if len(ds.Categories) == 0 || len(ds.Series) == 0 {
		return nil
	}

	palette := radarSingleColors
	anchorCol := 4
	if ds.Comparison {
		palette = radarComparisonColors
		anchorCol = len(ds.Series) + 2
	}

	lo, hi := float64(models.MinScore), float64(models.MaxScore)
	spec := export.ChartSpec{
		Type:      export.ChartRadar,
		Title:     "RGB Competency Radar Chart - " + ds.Sheet,
		AnchorRow: 1,
		AnchorCol: anchorCol,
		YMin:      &lo,
		YMax:      &hi,
		Legend:    "right",
		Width:     720,
		Height:    432,
	}
	last := len(ds.Categories)
	for i := range ds.Series {
		spec.Series = append(spec.Series, export.ChartSeries{
			NameRow:    0,
			NameCol:    i + 1,
			Categories: export.Column(0, 1, last),
			Values:     export.Column(i+1, 1, last),
			Color:      palette[i%len(palette)],
		})
	}
	return sink.AddChart(spec)
}

// BuildRadarReport renders the radar chart workbook artifact.
func BuildRadarReport(in Input) (Artifact, error) {
	data, err := RenderRadarWorkbook(BuildRadarDatasets(in))
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Name:        "radar",
		Kind:        models.ArtifactRadarChart,
		Filename:    RadarFilename(in),
		ContentType: export.ContentTypeXLSX,
		Data:        data,
	}, nil
}
