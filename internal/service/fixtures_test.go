package service

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/rgb-survey-api/internal/models"
)

const testPeriod = "9月(第二回)"

func testSurveyConfig() *models.SurveyConfig {
	return &models.SurveyConfig{
		IdentifierColumn: "ID",
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
		},
		Scores: models.ScoreMap{
			"とてもそう思う":        4,
			"どちらかといえばそう思う":   3,
			"どちらかといえばそう思わない": 2,
			"そう思わない":         1,
		},
		Benchmarks: models.Benchmarks{
			Periods: []string{"R5", "R6"},
			Values:  map[string]map[string]float64{"協働力": {"R5": 3.1, "R6": 3.2}},
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

const testSurveyCSV = "ID,友達と協力できる。,意見を受け止められる。,考えを伝えられる。\n" +
	"1101,とてもそう思う,3,\n" +
	"1202,そう思わない,,\n" +
	"2301,どちらかといえばそう思う,4,\n"

func testResponses(t *testing.T) *models.ResponseSet {
	t.Helper()
	set, err := ReadResponses("survey.csv", strings.NewReader(testSurveyCSV), testSurveyConfig())
	require.NoError(t, err)
	return set
}

// writeTemplate saves a minimal template workbook and returns its path.
func writeTemplate(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "意識調査"))
	require.NoError(t, f.SetCellValue("意識調査", "C2", "質問項目"))
	require.NoError(t, f.SetCellValue("意識調査", "C3", "友達と協力できる。"))
	require.NoError(t, f.SetCellValue("意識調査", "AE3", "協働力"))

	path := filepath.Join(t.TempDir(), "template.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}
