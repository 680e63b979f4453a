package report

import (
	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/pkg/export"
)

// DashboardSheetName is the summary sheet appended to every grade report.
const DashboardSheetName = "集計結果表示"

var dashboardHeaders = []string{"大分類", "能力指標", "質問項目", "平均値", "4(%)", "3(%)", "2(%)", "1(%)"}

// WriteDashboard lays out one row per configured question, grouped by competency. The
// category and competency cells of each competency block are merged. Questions missing
// from the upload keep their label with blank statistics.
func WriteDashboard(sink Sink, cm models.CompetencyMap, agg models.Aggregate) error {
	for col, h := range dashboardHeaders {
		if err := sink.SetCell(0, col, h, export.FormatHeader); err != nil {
			return err
		}
	}

	row := 1
	for _, comp := range cm {
		start := row
		for _, q := range comp.Questions {
			if err := writeDashboardRow(sink, row, q, agg); err != nil {
				return err
			}
			row++
		}
		if row == start {
			continue
		}
		if err := sink.MergeCells(start, 0, row-1, 0, comp.Category, export.FormatCategory); err != nil {
			return err
		}
		if err := sink.MergeCells(start, 1, row-1, 1, comp.Name, export.FormatCategory); err != nil {
			return err
		}
	}

	widths := []struct {
		first, last int
		width       float64
	}{
		{0, 1, 15},
		{2, 2, 60},
		{3, 3, 10},
		{4, 7, 8},
	}
	for _, w := range widths {
		if err := sink.SetColumnWidth(w.first, w.last, w.width); err != nil {
			return err
		}
	}
	return nil
}

func writeDashboardRow(sink Sink, row int, question string, agg models.Aggregate) error {
	if err := sink.SetCell(row, 2, question, export.FormatQuestion); err != nil {
		return err
	}

	stat, ok := agg.Question(question)
	if !ok {
		if err := sink.SetCell(row, 3, nil, export.FormatAverage1); err != nil {
			return err
		}
		for col := 4; col <= 7; col++ {
			if err := sink.SetCell(row, col, nil, export.FormatDashboardPercent); err != nil {
				return err
			}
		}
		return nil
	}

	if err := sink.SetCell(row, 3, stat.Average, export.FormatAverage1); err != nil {
		return err
	}
	for i, score := range scoresDescending {
		if err := sink.SetCell(row, 4+i, stat.Distribution[score], export.FormatDashboardPercent); err != nil {
			return err
		}
	}
	return nil
}

var scoresDescending = []int{4, 3, 2, 1}
