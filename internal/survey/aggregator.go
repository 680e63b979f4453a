package survey

import (
	"github.com/noah-isme/rgb-survey-api/internal/models"
)

// Filter selects the respondents an aggregation runs over.
type Filter func(models.NormalizedResponse) bool

// AllRespondents matches every row.
func AllRespondents() Filter {
	return func(models.NormalizedResponse) bool { return true }
}

// ByGrade matches rows whose identifier resolved to grade. Rows without a grade never match.
func ByGrade(grade int) Filter {
	return func(r models.NormalizedResponse) bool { return r.HasGrade(grade) }
}

// Aggregate computes per-question statistics and per-competency averages over the rows
// accepted by filter. The set is only read.
func Aggregate(set *models.ResponseSet, cm models.CompetencyMap, filter Filter) models.Aggregate {
	if filter == nil {
		filter = AllRespondents()
	}

	agg := models.Aggregate{
		Questions:    make(map[string]models.QuestionStat),
		Competencies: make(map[string]float64, len(cm)),
	}
	if set == nil {
		for _, c := range cm {
			agg.Competencies[c.Name] = 0
		}
		return agg
	}

	rows := make([]models.NormalizedResponse, 0, len(set.Rows))
	for _, row := range set.Rows {
		if filter(row) {
			rows = append(rows, row)
		}
	}
	agg.Respondents = len(rows)

	for _, q := range set.Questions {
		agg.Questions[q] = questionStat(q, rows)
	}

	for _, c := range cm {
		agg.Competencies[c.Name] = competencyAverage(c, agg.Questions)
	}

	return agg
}

func questionStat(question string, rows []models.NormalizedResponse) models.QuestionStat {
	stat := models.QuestionStat{
		Question:     question,
		Counts:       make(map[int]int, models.MaxScore),
		Distribution: make(map[int]float64, models.MaxScore),
	}
	for s := models.MinScore; s <= models.MaxScore; s++ {
		stat.Counts[s] = 0
		stat.Distribution[s] = 0
	}

	sum := 0
	for _, row := range rows {
		v, ok := row.Scores[question].Value()
		if !ok {
			continue
		}
		stat.Counts[v]++
		stat.Responses++
		sum += v
	}

	if stat.Responses == 0 {
		return stat
	}

	stat.Average = float64(sum) / float64(stat.Responses)
	for s := models.MinScore; s <= models.MaxScore; s++ {
		stat.Distribution[s] = float64(stat.Counts[s]) / float64(stat.Responses) * 100
	}
	return stat
}

// competencyAverage is the mean of the question averages that have at least one answer.
func competencyAverage(c models.Competency, stats map[string]models.QuestionStat) float64 {
	total := 0.0
	valid := 0
	for _, q := range c.Questions {
		stat, ok := stats[q]
		if !ok || stat.Responses == 0 {
			continue
		}
		total += stat.Average
		valid++
	}
	if valid == 0 {
		return 0
	}
	return total / float64(valid)
}

// Breakdown is the overall aggregate plus one aggregate per configured grade, computed once
// per run and shared by every report.
type Breakdown struct {
	Overall models.Aggregate
	Grades  []GradeAggregate
}

// GradeAggregate pairs a grade with its aggregate.
type GradeAggregate struct {
	Grade     int
	Label     string
	Aggregate models.Aggregate
}

// NewBreakdown aggregates the set once without a filter and once per configured grade.
func NewBreakdown(set *models.ResponseSet, cfg *models.SurveyConfig) Breakdown {
	b := Breakdown{Overall: Aggregate(set, cfg.Competencies, AllRespondents())}
	b.Overall.Label = cfg.OverallLabel

	for _, g := range cfg.Grades {
		agg := Aggregate(set, cfg.Competencies, ByGrade(g.Value))
		agg.Label = g.Label
		b.Grades = append(b.Grades, GradeAggregate{Grade: g.Value, Label: g.Label, Aggregate: agg})
	}
	return b
}

// Grade returns the aggregate for a configured grade.
func (b Breakdown) Grade(grade int) (models.Aggregate, bool) {
	for _, g := range b.Grades {
		if g.Grade == grade {
			return g.Aggregate, true
		}
	}
	return models.Aggregate{}, false
}

// NonEmptyGrades lists the configured grades that have at least one respondent.
func (b Breakdown) NonEmptyGrades() []GradeAggregate {
	out := make([]GradeAggregate, 0, len(b.Grades))
	for _, g := range b.Grades {
		if g.Aggregate.Respondents > 0 {
			out = append(out, g)
		}
	}
	return out
}
