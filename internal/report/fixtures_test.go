package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/internal/survey"
	"github.com/noah-isme/rgb-survey-api/pkg/export"
)

const idColumn = "ID"

func testConfig() *models.SurveyConfig {
	return &models.SurveyConfig{
		IdentifierColumn: idColumn,
		OverallLabel:     "全体",
		CurrentPeriod:    "R7",
		Periods:          []string{"4月(第一回)", "9月(第二回)", "1月(第三回)"},
		DefaultPeriod:    "9月(第二回)",
		Grades: []models.GradeLevel{
			{Value: 1, Label: "1年"},
			{Value: 2, Label: "2年"},
			{Value: 3, Label: "3年"},
		},
		Competencies: models.CompetencyMap{
			{Category: "R(つながる力)", Name: "協働力", Questions: []string{"友達と協力できる。", "意見を受け止められる。"}},
			{Category: "R(つながる力)", Name: "発信力", Questions: []string{"考えを伝えられる。"}},
			{Category: "G(伸びる力)", Name: "探究力", Questions: []string{"自分で調べられる。"}},
		},
		Scores: models.ScoreMap{"とてもそう思う": 4, "どちらかといえばそう思う": 3, "どちらかといえばそう思わない": 2, "そう思わない": 1},
		Benchmarks: models.Benchmarks{
			Periods: []string{"R5", "R6"},
			Values: map[string]map[string]float64{
				"協働力": {"R5": 3.1, "R6": 3.2},
				"発信力": {"R6": 2.8},
			},
		},
		Rounds: []models.Round{
			{Name: "第一回", Columns: models.RoundColumns{1: 4, 2: 7, 3: 10}},
			{Name: "第二回", Columns: models.RoundColumns{1: 13, 2: 16, 3: 19}},
			{Name: "第三回", Columns: models.RoundColumns{1: 22, 2: 25, 3: 28}},
		},
		Template: models.TemplateLayout{
			SheetName:          "意識調査",
			QuestionColumn:     3,
			QuestionStartRow:   2,
			CompetencyColumn:   31,
			CompetencyStartRow: 3,
			CompetencyColumns:  map[int]int{1: 32, 2: 33, 3: 34},
			NumberFormat:       "0.0",
		},
	}
}

// testSet has two grade-1 rows, one grade-2 row and one row without a grade.
// "自分で調べられる。" is not part of the upload.
func testSet(withIdentifier bool) *models.ResponseSet {
	cfg := testConfig()
	headers := []string{"友達と協力できる。", "意見を受け止められる。", "考えを伝えられる。", "名前"}
	if withIdentifier {
		headers = append([]string{idColumn}, headers...)
	}

	rows := []struct {
		id      string
		answers []string
	}{
		{"1101", []string{"とてもそう思う", "3", "", "A"}},
		{"1202", []string{"そう思わない", "", "", "B"}},
		{"2301", []string{"どちらかといえばそう思う", "4", "", "C"}},
		{"x", []string{"4", "4", "", "D"}},
	}

	ds := &models.Dataset{Filename: "survey.xlsx", Headers: headers, IdentifierColumn: idColumn, HasIdentifier: withIdentifier}
	for i, r := range rows {
		answers := map[string]string{
			"友達と協力できる。":   r.answers[0],
			"意見を受け止められる。": r.answers[1],
			"考えを伝えられる。":   r.answers[2],
			"名前":          r.answers[3],
		}
		raw := models.RawResponse{Row: i + 2, Answers: answers}
		if withIdentifier {
			answers[idColumn] = r.id
			raw.Identifier = r.id
		}
		ds.Rows = append(ds.Rows, raw)
	}
	return survey.NormalizeDataset(ds, cfg)
}

func testInput(t *testing.T, withIdentifier bool, period string) Input {
	t.Helper()
	in, err := NewInput(testConfig(), testSet(withIdentifier), period)
	require.NoError(t, err)
	return in
}

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func cellValue(t *testing.T, f *excelize.File, sheet string, row, col int) string {
	t.Helper()
	cell, err := export.CellName(row, col)
	require.NoError(t, err)
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

type mergeCall struct {
	r1, c1, r2, c2 int
	value          interface{}
}

type cellKey struct{ row, col int }

// recordingSink keeps every write in memory.
type recordingSink struct {
	cells  map[cellKey]interface{}
	merges []mergeCall
	charts []export.ChartSpec
}

func newRecordingSink() *recordingSink {
	return &recordingSink{cells: make(map[cellKey]interface{})}
}

func (s *recordingSink) SetCell(row, col int, value interface{}, _ export.Format) error {
	s.cells[cellKey{row, col}] = value
	return nil
}

func (s *recordingSink) MergeCells(r1, c1, r2, c2 int, value interface{}, _ export.Format) error {
	s.merges = append(s.merges, mergeCall{r1, c1, r2, c2, value})
	return nil
}

func (s *recordingSink) AddChart(spec export.ChartSpec) error {
	s.charts = append(s.charts, spec)
	return nil
}

func (s *recordingSink) SetColumnWidth(int, int, float64) error { return nil }
