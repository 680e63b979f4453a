package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/internal/survey"
	"github.com/noah-isme/rgb-survey-api/pkg/export"
)

// ErrTemplateUnavailable wraps every failure to open or read the template workbook.
var ErrTemplateUnavailable = errors.New("report template unavailable")

// FillResult summarises one template fill.
type FillResult struct {
	Sheet               string
	Round               string
	RoundMatched        bool
	UsedDefaultColumns  bool
	MatchedQuestions    int
	UnmatchedRows       int
	MatchedCompetencies int
	Skipped             bool
	SheetFallback       bool
}

// FillTemplate writes per-grade question averages into the active round's columns and
// per-grade competency averages into the competency columns. Only rows whose label
// matches are written, and only in those columns. Without an identifier column no grade is
// resolvable and the template is left as authored.
func FillTemplate(tpl TemplateSheet, in Input, layout models.TemplateLayout) (FillResult, error) {
	res := FillResult{Round: in.Round.Name, RoundMatched: in.Round.Matched}
	if !in.Responses.HasIdentifier {
		res.Skipped = true
		return res, nil
	}

	cols, ok := survey.RoundColumnsFor(in.Round.Name, in.Config.Rounds)
	res.UsedDefaultColumns = !ok

	rows, err := tpl.RowCount()
	if err != nil {
		return res, err
	}

	index := survey.NewQuestionIndex(in.Responses.Questions)
	for r := layout.QuestionStartRow - 1; r < rows; r++ {
		text, err := tpl.Text(r, layout.QuestionColumn-1)
		if err != nil {
			return res, err
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		q, ok := index.Lookup(text)
		if !ok {
			res.UnmatchedRows++
			continue
		}
		for _, g := range in.Breakdown.Grades {
			col, ok := cols[g.Grade]
			if !ok {
				continue
			}
			stat, _ := g.Aggregate.Question(q)
			if err := tpl.SetNumber(r, col-1, stat.Average, layout.NumberFormat); err != nil {
				return res, err
			}
		}
		res.MatchedQuestions++
	}

	first := layout.CompetencyStartRow - 1
	for r := first; r < first+len(in.Config.Competencies); r++ {
		text, err := tpl.Text(r, layout.CompetencyColumn-1)
		if err != nil {
			return res, err
		}
		name := competencyLabel(text)
		if name == "" || !hasCompetency(in.Config.Competencies, name) {
			continue
		}
		for _, g := range in.Breakdown.Grades {
			col, ok := layout.CompetencyColumns[g.Grade]
			if !ok {
				continue
			}
			if err := tpl.SetNumber(r, col-1, g.Aggregate.Competency(name), layout.NumberFormat); err != nil {
				return res, err
			}
		}
		res.MatchedCompetencies++
	}

	return res, nil
}

// competencyLabel cuts a template label such as "協働力(R)" down to the competency name.
func competencyLabel(text string) string {
	if i := strings.IndexAny(text, "(（"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

func hasCompetency(cm models.CompetencyMap, name string) bool {
	for _, c := range cm {
		if c.Name == name {
			return true
		}
	}
	return false
}

// BuildTemplateReport opens the template from r, fills the configured sheet (the active
// sheet when it is absent) and returns the edited workbook.
func BuildTemplateReport(r io.Reader, in Input) (Artifact, FillResult, error) {
	layout := in.Config.Template

	tpl, err := export.OpenTemplate(r)
	if err != nil {
		return Artifact{}, FillResult{}, fmt.Errorf("%w: %v", ErrTemplateUnavailable, err)
	}
	defer tpl.Close()

	fallback := false
	sheet, err := tpl.Sheet(layout.SheetName)
	if errors.Is(err, export.ErrSheetNotFound) {
		fallback = true
		sheet, err = tpl.Sheet("")
	}
	if err != nil {
		return Artifact{}, FillResult{}, fmt.Errorf("%w: %v", ErrTemplateUnavailable, err)
	}

	res, err := FillTemplate(sheet, in, layout)
	if err != nil {
		return Artifact{}, res, fmt.Errorf("fill template: %w", err)
	}
	res.Sheet = sheet.Name()
	res.SheetFallback = fallback

	data, err := tpl.Bytes()
	if err != nil {
		return Artifact{}, res, err
	}
	return Artifact{
		Name:        "template",
		Kind:        models.ArtifactTemplateReport,
		Filename:    TemplateReportFilename,
		ContentType: export.ContentTypeXLSX,
		Data:        data,
	}, res, nil
}
