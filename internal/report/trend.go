package report

import (
	"fmt"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/pkg/export"
)

// TrendSheetName is the only sheet of the trend workbook.
const TrendSheetName = "TrendData"

var trendColors = []string{"4F81BD", "C0504D", "9ABA60", "F79646", "8064A2", "4BACC6", "B2A1C7", "7F7F7F"}

// TrendSeries is one period line. A nil value is a gap.
type TrendSeries struct {
	Period string
	Values []*float64
}

// TrendDataset lines up historical benchmarks and the current period per competency.
type TrendDataset struct {
	Categories []string
	Series     []TrendSeries
}

// BuildTrendDataset takes benchmark values verbatim, leaving absent pairs as gaps, and
// appends the current period from the overall aggregate rounded to one decimal.
func BuildTrendDataset(in Input) TrendDataset {
	cats := in.Config.Competencies.Names()
	ds := TrendDataset{Categories: cats}

	for _, period := range in.Config.Benchmarks.Periods {
		series := TrendSeries{Period: period, Values: make([]*float64, len(cats))}
		for i, comp := range cats {
			if v, ok := in.Config.Benchmarks.Value(comp, period); ok {
				value := v
				series.Values[i] = &value
			}
		}
		ds.Series = append(ds.Series, series)
	}

	current := TrendSeries{Period: in.Config.CurrentPeriod, Values: make([]*float64, len(cats))}
	for i, comp := range cats {
		value := round1(in.Breakdown.Overall.Competency(comp))
		current.Values[i] = &value
	}
	ds.Series = append(ds.Series, current)

	return ds
}

// RenderTrendWorkbook writes the dataset table and a line chart with a 1..4 axis.
func RenderTrendWorkbook(ds TrendDataset) ([]byte, error) {
	wb := NewWorkbook()
	sheet, err := wb.AddSheet(TrendSheetName)
	if err != nil {
		wb.Close()
		return nil, err
	}
	if err := writeTrendSheet(sheet, ds); err != nil {
		wb.Close()
		return nil, fmt.Errorf("trend sheet: %w", err)
	}
	return render(wb)
}

func writeTrendSheet(sink Sink, ds TrendDataset) error {
	if err := sink.SetCell(0, 0, "Competency", export.FormatNone); err != nil {
		return err
	}
	for i, s := range ds.Series {
		if err := sink.SetCell(0, i+1, s.Period, export.FormatNone); err != nil {
			return err
		}
	}
	for r, cat := range ds.Categories {
		if err := sink.SetCell(r+1, 0, cat, export.FormatNone); err != nil {
			return err
		}
		for i, s := range ds.Series {
			if s.Values[r] == nil {
				continue
			}
			if err := sink.SetCell(r+1, i+1, *s.Values[r], export.FormatNone); err != nil {
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

	lo, hi := float64(models.MinScore), float64(models.MaxScore)
	spec := export.ChartSpec{
		Type:      export.ChartLine,
		Title:     fmt.Sprintf("RGB Competency Trends (%s-%s)", ds.Series[0].Period, ds.Series[len(ds.Series)-1].Period),
		AnchorRow: 1,
		AnchorCol: len(ds.Series) + 2,
		YMin:      &lo,
		YMax:      &hi,
		XTitle:    "Competency",
		YTitle:    "Average Score",
		Legend:    "bottom",
		Width:     864,
		Height:    518,
	}
	last := len(ds.Categories)
	for i := range ds.Series {
		spec.Series = append(spec.Series, export.ChartSeries{
			NameRow:    0,
			NameCol:    i + 1,
			Categories: export.Column(0, 1, last),
			Values:     export.Column(i+1, 1, last),
			Color:      trendColors[i%len(trendColors)],
			Marker:     true,
		})
	}
	return sink.AddChart(spec)
}

// BuildTrendReport renders the trend chart workbook artifact.
func BuildTrendReport(in Input) (Artifact, error) {
	data, err := RenderTrendWorkbook(BuildTrendDataset(in))
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{
		Name:        "trend",
		Kind:        models.ArtifactTrendChart,
		Filename:    TrendFilename(in),
		ContentType: export.ContentTypeXLSX,
		Data:        data,
	}, nil
}
