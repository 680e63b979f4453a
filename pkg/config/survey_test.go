package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSurveyDefaults(t *testing.T) {
	cfg, err := LoadSurvey("")
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, cfg.GradeValues())
	assert.Equal(t, "9月(第二回)", cfg.DefaultPeriod)
	assert.True(t, cfg.HasPeriod("1月(第三回)"))
	assert.Equal(t, "全体", cfg.OverallLabel)
	assert.Equal(t, "R7", cfg.CurrentPeriod)

	score, ok := cfg.Scores.Lookup("とてもそう思う")
	require.True(t, ok)
	assert.Equal(t, 4, score)

	require.NotEmpty(t, cfg.Competencies)
	assert.Equal(t, "協働力", cfg.Competencies[0].Name)

	_, ok = cfg.Benchmarks.Value("主体性", "R4")
	assert.False(t, ok)
	v, ok := cfg.Benchmarks.Value("協働力", "R6")
	require.True(t, ok)
	assert.InDelta(t, 3.2, v, 1e-9)

	require.Len(t, cfg.Rounds, 3)
	assert.Equal(t, 13, cfg.Rounds[1].Columns[1])
	assert.Equal(t, "意識調査", cfg.Template.SheetName)
	assert.Equal(t, 31, cfg.Template.CompetencyColumn)
	assert.Equal(t, "0.0", cfg.Template.NumberFormat)
}

func TestLoadSurveyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "survey.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalTables), 0o600))

	cfg, err := LoadSurvey(path)
	require.NoError(t, err)
	assert.Equal(t, "ID", cfg.IdentifierColumn)
	assert.Equal(t, []string{"Q1", "Q2"}, cfg.Competencies.Questions())
	assert.Equal(t, "0.0", cfg.Template.NumberFormat)
}

func TestLoadSurveyMissingFile(t *testing.T) {
	_, err := LoadSurvey(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParseSurveyRejectsInvalidTables(t *testing.T) {
	cases := map[string]string{
		"score out of range": `
identifierColumn: ID
overallLabel: 全体
currentPeriod: R7
periods: [a]
defaultPeriod: a
grades: [{value: 1, label: 1年}]
scores: {yes: 5}
competencies: [{category: C, name: N, questions: [Q1]}]
rounds: [{name: 第二回, columns: {1: 13}}]
template: {questionColumn: 3, questionStartRow: 2, competencyColumn: 31, competencyStartRow: 3, competencyColumns: {1: 32}}
`,
		"default period unknown": `
identifierColumn: ID
overallLabel: 全体
currentPeriod: R7
periods: [a]
defaultPeriod: b
grades: [{value: 1, label: 1年}]
scores: {yes: 4}
competencies: [{category: C, name: N, questions: [Q1]}]
rounds: [{name: 第二回, columns: {1: 13}}]
template: {questionColumn: 3, questionStartRow: 2, competencyColumn: 31, competencyStartRow: 3, competencyColumns: {1: 32}}
`,
		"round missing grade column": `
identifierColumn: ID
overallLabel: 全体
currentPeriod: R7
periods: [a]
defaultPeriod: a
grades: [{value: 1, label: 1年}, {value: 2, label: 2年}]
scores: {yes: 4}
competencies: [{category: C, name: N, questions: [Q1]}]
rounds: [{name: 第二回, columns: {1: 13}}]
template: {questionColumn: 3, questionStartRow: 2, competencyColumn: 31, competencyStartRow: 3, competencyColumns: {1: 32, 2: 33}}
`,
		"benchmark for unknown competency": `
identifierColumn: ID
overallLabel: 全体
currentPeriod: R7
periods: [a]
defaultPeriod: a
grades: [{value: 1, label: 1年}]
scores: {yes: 4}
competencies: [{category: C, name: N, questions: [Q1]}]
benchmarks: {periods: [R6], values: {Other: {R6: 3.0}}}
rounds: [{name: 第二回, columns: {1: 13}}]
template: {questionColumn: 3, questionStartRow: 2, competencyColumn: 31, competencyStartRow: 3, competencyColumns: {1: 32}}
`,
		"not yaml": "::::",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSurvey([]byte(doc))
			require.Error(t, err)
		})
	}
}

const minimalTables = `
identifierColumn: " ID "
overallLabel: 全体
currentPeriod: R7
periods: [9月(第二回)]
defaultPeriod: 9月(第二回)
grades:
  - {value: 1, label: 1年}
scores: {はい: 4, いいえ: 1}
competencies:
  - {category: C, name: N, questions: [Q1, Q2]}
  - {category: C, name: M, questions: [Q2]}
rounds:
  - {name: 第二回, columns: {1: 13}}
template:
  sheetName: 意識調査
  questionColumn: 3
  questionStartRow: 2
  competencyColumn: 31
  competencyStartRow: 3
  competencyColumns: {1: 32}
`
