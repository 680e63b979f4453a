package models

import "fmt"

// Competency groups the questions of one competency under its big category.
type Competency struct {
	Category  string   `json:"category"`
	Name      string   `json:"name"`
	Questions []string `json:"questions"`
}

// CompetencyMap is the ordered category → competency → question tree. Order drives layout.
type CompetencyMap []Competency

// Names lists competency names in configured order.
func (m CompetencyMap) Names() []string {
	names := make([]string, 0, len(m))
	for _, c := range m {
		names = append(names, c.Name)
	}
	return names
}

// Questions flattens the map into configured question order, first occurrence wins.
func (m CompetencyMap) Questions() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, c := range m {
		for _, q := range c.Questions {
			if _, ok := seen[q]; ok {
				continue
			}
			seen[q] = struct{}{}
			out = append(out, q)
		}
	}
	return out
}

// ScoreMap maps textual answer variants to scores.
type ScoreMap map[string]int

// Lookup returns the score for a textual answer.
func (m ScoreMap) Lookup(answer string) (int, bool) {
	v, ok := m[answer]
	return v, ok
}

// Benchmarks holds historical competency averages per period label.
type Benchmarks struct {
	Periods []string                      `json:"periods"`
	Values  map[string]map[string]float64 `json:"values"`
}

// Value returns the benchmark for a competency and period; absent pairs report false.
func (b Benchmarks) Value(competency, period string) (float64, bool) {
	byPeriod, ok := b.Values[competency]
	if !ok {
		return 0, false
	}
	v, ok := byPeriod[period]
	return v, ok
}

// GradeLevel names one school grade.
type GradeLevel struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// RoundColumns maps grade → 1-based template column for one survey round.
type RoundColumns map[int]int

// Round is one survey administration period within a school year.
type Round struct {
	Name    string       `json:"name"`
	Columns RoundColumns `json:"columns"`
}

// TemplateLayout locates the cells the template filler reads and overwrites.
// Rows and columns are 1-based, matching spreadsheet coordinates.
type TemplateLayout struct {
	SheetName          string      `json:"sheetName"`
	QuestionColumn     int         `json:"questionColumn"`
	QuestionStartRow   int         `json:"questionStartRow"`
	CompetencyColumn   int         `json:"competencyColumn"`
	CompetencyStartRow int         `json:"competencyStartRow"`
	CompetencyColumns  map[int]int `json:"competencyColumns"`
	NumberFormat       string      `json:"numberFormat"`
}

// SurveyConfig is the static configuration for one deployment. Treat as read-only once loaded.
type SurveyConfig struct {
	IdentifierColumn string         `json:"identifierColumn"`
	Grades           []GradeLevel   `json:"grades"`
	OverallLabel     string         `json:"overallLabel"`
	Periods          []string       `json:"periods"`
	DefaultPeriod    string         `json:"defaultPeriod"`
	CurrentPeriod    string         `json:"currentPeriod"`
	Competencies     CompetencyMap  `json:"competencies"`
	Scores           ScoreMap       `json:"scores"`
	Benchmarks       Benchmarks     `json:"benchmarks"`
	Rounds           []Round        `json:"rounds"`
	Template         TemplateLayout `json:"template"`
}

// GradeValues lists the configured grade numbers in order.
func (c *SurveyConfig) GradeValues() []int {
	out := make([]int, 0, len(c.Grades))
	for _, g := range c.Grades {
		out = append(out, g.Value)
	}
	return out
}

// GradeLabel returns the display label for a grade, "<n>年" when unconfigured.
func (c *SurveyConfig) GradeLabel(grade int) string {
	for _, g := range c.Grades {
		if g.Value == grade {
			return g.Label
		}
	}
	return fmt.Sprintf("%d年", grade)
}

// HasPeriod reports whether the label is one of the configured survey periods.
func (c *SurveyConfig) HasPeriod(period string) bool {
	for _, p := range c.Periods {
		if p == period {
			return true
		}
	}
	return false
}
