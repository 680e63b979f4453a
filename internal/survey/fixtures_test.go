package survey

import (
	"github.com/noah-isme/rgb-survey-api/internal/models"
)

const testIDColumn = "ID"

func testConfig() *models.SurveyConfig {
	return &models.SurveyConfig{
		IdentifierColumn: testIDColumn,
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
			{Category: "R", Name: "協働力", Questions: []string{"Q1", "Q2"}},
			{Category: "R", Name: "発信力", Questions: []string{"Q3"}},
			{Category: "G", Name: "探究力", Questions: []string{"Q4"}},
		},
		Scores: models.ScoreMap{
			"とてもそう思う":        4,
			"どちらかといえばそう思う":   3,
			"どちらかといえばそう思わない": 2,
			"そう思わない":         1,
		},
		Rounds: []models.Round{
			{Name: "第一回", Columns: models.RoundColumns{1: 4, 2: 7, 3: 10}},
			{Name: "第二回", Columns: models.RoundColumns{1: 13, 2: 16, 3: 19}},
			{Name: "第三回", Columns: models.RoundColumns{1: 22, 2: 25, 3: 28}},
		},
	}
}

func raw(row int, id string, answers map[string]string) models.RawResponse {
	a := map[string]string{testIDColumn: id}
	for k, v := range answers {
		a[k] = v
	}
	return models.RawResponse{Row: row, Identifier: id, Answers: a}
}
