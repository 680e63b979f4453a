package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testSurveyYAML = `identifierColumn: ID
overallLabel: 全体
currentPeriod: R7
periods: [4月(第一回), 9月(第二回), 1月(第三回)]
defaultPeriod: 9月(第二回)
grades:
  - {value: 1, label: 1年}
  - {value: 2, label: 2年}
  - {value: 3, label: 3年}
scores:
  とてもそう思う: 4
  どちらかといえばそう思う: 3
  どちらかといえばそう思わない: 2
  そう思わない: 1
competencies:
  - category: R(つながる力)
    name: 協働力
    questions: [友達と協力できる。, 意見を受け止められる。]
  - category: R(つながる力)
    name: 発信力
    questions: [考えを伝えられる。]
benchmarks:
  periods: [R5, R6]
  values:
    協働力: {R5: 3.1, R6: 3.2}
rounds:
  - {name: 第一回, columns: {1: 4, 2: 7, 3: 10}}
  - {name: 第二回, columns: {1: 13, 2: 16, 3: 19}}
  - {name: 第三回, columns: {1: 22, 2: 25, 3: 28}}
template:
  sheetName: 意識調査
  questionColumn: 3
  questionStartRow: 2
  competencyColumn: 31
  competencyStartRow: 3
  competencyColumns: {1: 32, 2: 33, 3: 34}
  numberFormat: "0.0"
`

const testSurveyCSV = "ID,友達と協力できる。,意見を受け止められる。,考えを伝えられる。\n" +
	"1101,とてもそう思う,3,\n" +
	"1202,そう思わない,,\n" +
	"2301,どちらかといえばそう思う,4,\n"

type cliFixture struct {
	dir      string
	survey   string
	template string
}

func newCLIFixture(t *testing.T) cliFixture {
	t.Helper()
	dir := t.TempDir()

	surveyPath := filepath.Join(dir, "survey.yaml")
	require.NoError(t, os.WriteFile(surveyPath, []byte(testSurveyYAML), 0o644))

	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", "意識調査"))
	require.NoError(t, f.SetCellValue("意識調査", "C2", "質問項目"))
	require.NoError(t, f.SetCellValue("意識調査", "C3", "友達と協力できる。"))
	require.NoError(t, f.SetCellValue("意識調査", "AE3", "協働力"))
	templatePath := filepath.Join(dir, "template.xlsx")
	require.NoError(t, f.SaveAs(templatePath))

	return cliFixture{dir: dir, survey: surveyPath, template: templatePath}
}

func (f cliFixture) writeExport(t *testing.T, rel string) string {
	t.Helper()
	path := filepath.Join(f.dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(testSurveyCSV), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("SURVEY_CONFIG_PATH", "")
	t.Setenv("SURVEY_TEMPLATE_PATH", "")
	t.Setenv("REPORTS_PDF_FONT_PATH", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateWritesEveryArtifact(t *testing.T) {
	fx := newCLIFixture(t)
	input := fx.writeExport(t, "exports/survey.csv")
	out := filepath.Join(fx.dir, "reports")

	stdout, err := execute(t, "generate", "--survey-config", fx.survey, "--input", input, "--template", fx.template, "--out", out)
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	// three grade reports, radar, trend, template and csv; no pdf without a font
	assert.Len(t, entries, 7)
	assert.FileExists(t, filepath.Join(out, "1.RGB意識調査R7.9月結果（1年・分布あり）.xlsx"))
	assert.FileExists(t, filepath.Join(out, "RGB意識調査R7.9月正規化データ.csv"))

	assert.Contains(t, stdout, "rows 3  graded 3  questions 3")
	assert.Contains(t, stdout, "template_report")
	assert.Contains(t, stdout, "competency_pdf skipped")
}

func TestGenerateBatchUsesSubdirectories(t *testing.T) {
	fx := newCLIFixture(t)
	fx.writeExport(t, "exports/a/first.csv")
	fx.writeExport(t, "exports/b/second.csv")
	fx.writeExport(t, "exports/b/notes.txt")
	out := filepath.Join(fx.dir, "reports")

	_, err := execute(t, "generate", "--survey-config", fx.survey, "--input", filepath.Join(fx.dir, "exports", "**", "*"), "--template", fx.template, "--out", out, "--period", "1月(第三回)")
	require.NoError(t, err)

	for _, sub := range []string{"first", "second"} {
		entries, err := os.ReadDir(filepath.Join(out, sub))
		require.NoError(t, err, sub)
		assert.Len(t, entries, 7, sub)
	}
	assert.NoDirExists(t, filepath.Join(out, "notes"))
	assert.FileExists(t, filepath.Join(out, "first", "1.RGB意識調査R7.1月結果（1年・分布あり）.xlsx"))
}

func TestGenerateRejectsUnknownPeriod(t *testing.T) {
	fx := newCLIFixture(t)
	input := fx.writeExport(t, "survey.csv")

	_, err := execute(t, "generate", "--survey-config", fx.survey, "--input", input, "--template", fx.template, "--period", "6月")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown survey period")
}

func TestGenerateFailsWithoutTemplate(t *testing.T) {
	fx := newCLIFixture(t)
	input := fx.writeExport(t, "survey.csv")
	out := filepath.Join(fx.dir, "reports")

	stdout, err := execute(t, "generate", "--survey-config", fx.survey, "--input", input, "--template", filepath.Join(fx.dir, "missing.xlsx"), "--out", out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 inputs failed")
	assert.Contains(t, stdout, "✗")
	assert.NoDirExists(t, out)
}

func TestGenerateNoMatches(t *testing.T) {
	fx := newCLIFixture(t)
	_, err := execute(t, "generate", "--survey-config", fx.survey, "--input", filepath.Join(fx.dir, "*.xlsx"), "--template", fx.template)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no survey exports match")
}

func TestPeriodsMarksDefault(t *testing.T) {
	fx := newCLIFixture(t)
	stdout, err := execute(t, "periods", "--survey-config", fx.survey)
	require.NoError(t, err)
	assert.Contains(t, stdout, "4月(第一回)")
	assert.Contains(t, stdout, "* 9月(第二回)")
}

func TestInspectSummarisesExport(t *testing.T) {
	fx := newCLIFixture(t)
	input := fx.writeExport(t, "survey.csv")

	stdout, err := execute(t, "inspect", "--survey-config", fx.survey, "--input", input)
	require.NoError(t, err)
	assert.Contains(t, stdout, "survey.csv")
	assert.Contains(t, stdout, "rows 3  questions 3")
	assert.Contains(t, stdout, "1年")
	assert.NotContains(t, stdout, "questions missing")
}

func TestOutputDirsDisambiguates(t *testing.T) {
	dirs := outputDirs("out", []string{"a/survey.csv", "b/survey.xlsx", "c/other.csv"})
	assert.Equal(t, []string{
		filepath.Join("out", "survey"),
		filepath.Join("out", "survey-2"),
		filepath.Join("out", "other"),
	}, dirs)
	assert.Equal(t, []string{"out"}, outputDirs("out", []string{"one.csv"}))
}
