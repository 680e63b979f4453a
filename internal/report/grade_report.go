package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/internal/survey"
	"github.com/noah-isme/rgb-survey-api/pkg/export"
)

// Grade sheet layout rows.
const (
	rowCountsTitle    = 0
	rowCountsFirst    = 1
	rowAnswered       = 5
	rowPercentTitle   = 7
	rowPercentFirst   = 8
	rowAverage        = 13
	rowQuestionText   = 15
	rowRawDump        = 17
	firstQuestionCol  = 2
	labelCol          = 1
	gradeColumnHeader = "学年"
	classColumnHeader = "クラス"
)

var answerLabels = []string{"とてもそう思う", "どちらかといえばそう思う", "どちらかといえばそう思わない", "そう思わない"}

type gradeTarget struct {
	label  string
	filter survey.Filter
	agg    models.Aggregate
}

// BuildGradeReports renders one workbook per grade with respondents plus the overall
// workbook, which is always produced.
func BuildGradeReports(in Input) ([]Artifact, error) {
	targets := make([]gradeTarget, 0, len(in.Breakdown.Grades)+1)
	for _, g := range in.Breakdown.NonEmptyGrades() {
		targets = append(targets, gradeTarget{label: g.Label, filter: survey.ByGrade(g.Grade), agg: g.Aggregate})
	}
	targets = append(targets, gradeTarget{label: in.Config.OverallLabel, filter: survey.AllRespondents(), agg: in.Breakdown.Overall})

	artifacts := make([]Artifact, 0, len(targets))
	for _, target := range targets {
		data, err := renderGradeWorkbook(in, target)
		if err != nil {
			return nil, fmt.Errorf("grade report %s: %w", target.label, err)
		}
		artifacts = append(artifacts, Artifact{
			Name:        target.label,
			Kind:        models.ArtifactGradeReport,
			Filename:    GradeReportFilename(in, target.label),
			ContentType: export.ContentTypeXLSX,
			Data:        data,
		})
	}
	return artifacts, nil
}

func renderGradeWorkbook(in Input, target gradeTarget) ([]byte, error) {
	wb := NewWorkbook()

	sheet, err := wb.AddSheet(safeSheetName(in.Round.Name + target.label))
	if err != nil {
		wb.Close()
		return nil, err
	}
	if err := WriteGradeSheet(sheet, in.Responses, target.agg, target.filter); err != nil {
		wb.Close()
		return nil, err
	}

	dashboard, err := wb.AddSheet(DashboardSheetName)
	if err != nil {
		wb.Close()
		return nil, err
	}
	if err := WriteDashboard(dashboard, in.Config.Competencies, in.Breakdown.Overall); err != nil {
		wb.Close()
		return nil, err
	}

	return render(wb)
}

// WriteGradeSheet writes the counts, percentages and averages block for the questions
// present in the upload, in configured order, followed by the filtered rows.
func WriteGradeSheet(sink Sink, set *models.ResponseSet, agg models.Aggregate, filter survey.Filter) error {
	titles := []struct {
		row   int
		col   int
		value string
		f     export.Format
	}{
		{rowCountsTitle, 0, "人数", export.FormatBold},
		{rowAnswered, labelCol, "回答人数", export.FormatBold},
		{rowPercentTitle, 0, "割合", export.FormatBold},
		{rowAverage, 0, "4件法による平均値", export.FormatBold},
	}
	for _, t := range titles {
		if err := sink.SetCell(t.row, t.col, t.value, t.f); err != nil {
			return err
		}
	}
	for i, label := range answerLabels {
		if err := sink.SetCell(rowCountsFirst+i, labelCol, label, export.FormatNone); err != nil {
			return err
		}
		if err := sink.SetCell(rowPercentFirst+i, labelCol, label, export.FormatNone); err != nil {
			return err
		}
	}

	for i, q := range set.Questions {
		col := firstQuestionCol + i
		stat, ok := agg.Question(q)
		if !ok {
			continue
		}
		for j, score := range scoresDescending {
			if err := sink.SetCell(rowCountsFirst+j, col, stat.Counts[score], export.FormatNone); err != nil {
				return err
			}
			if err := sink.SetCell(rowPercentFirst+j, col, stat.Distribution[score], export.FormatPercent); err != nil {
				return err
			}
		}
		if err := sink.SetCell(rowAnswered, col, stat.Responses, export.FormatNone); err != nil {
			return err
		}
		if err := sink.SetCell(rowAverage, col, stat.Average, export.FormatAverage2); err != nil {
			return err
		}
		if err := sink.SetCell(rowQuestionText, col, q, export.FormatWrap); err != nil {
			return err
		}
	}

	if err := writeRawDump(sink, set, filter); err != nil {
		return err
	}

	if err := sink.SetColumnWidth(0, 1, 15); err != nil {
		return err
	}
	if len(set.Questions) > 0 {
		return sink.SetColumnWidth(firstQuestionCol, firstQuestionCol+len(set.Questions)-1, 15)
	}
	return nil
}

func writeRawDump(sink Sink, set *models.ResponseSet, filter survey.Filter) error {
	columns := dumpColumns(set)
	for col, h := range columns {
		if err := sink.SetCell(rowRawDump, col, h, export.FormatBold); err != nil {
			return err
		}
	}

	row := rowRawDump + 1
	for _, r := range set.Rows {
		if !filter(r) {
			continue
		}
		for col, h := range columns {
			v := dumpValue(set, r, h)
			if v == nil {
				continue
			}
			if err := sink.SetCell(row, col, v, export.FormatNone); err != nil {
				return err
			}
		}
		row++
	}
	return nil
}

// dumpColumns lists the upload headers followed by the derived grade and class columns.
func dumpColumns(set *models.ResponseSet) []string {
	columns := append([]string(nil), set.Headers...)
	if set.HasIdentifier {
		columns = append(columns, gradeColumnHeader, classColumnHeader)
	}
	return columns
}

// dumpValue returns the cell value for one normalized row; nil means blank.
func dumpValue(set *models.ResponseSet, r models.NormalizedResponse, column string) interface{} {
	if set.HasIdentifier {
		switch column {
		case gradeColumnHeader:
			if r.Grade == nil {
				return nil
			}
			return *r.Grade
		case classColumnHeader:
			if r.ClassLabel == "" {
				return nil
			}
			return r.ClassLabel
		}
	}
	if score, ok := r.Scores[column]; ok {
		if v, present := score.Value(); present {
			return v
		}
		return nil
	}
	if v, ok := r.Extra[column]; ok && v != "" {
		return v
	}
	return nil
}

// dumpText is dumpValue rendered as text for CSV output.
func dumpText(set *models.ResponseSet, r models.NormalizedResponse, column string) string {
	switch v := dumpValue(set, r, column).(type) {
	case nil:
		return ""
	case int:
		return fmt.Sprintf("%d", v)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

const maxSheetNameRunes = 31

// safeSheetName drops characters xlsx forbids in sheet names and truncates to 31 runes.
func safeSheetName(name string) string {
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return -1
		}
		return r
	}, name)
	name = strings.Trim(name, "'")
	if utf8.RuneCountInString(name) <= maxSheetNameRunes {
		return name
	}
	return string([]rune(name)[:maxSheetNameRunes])
}
