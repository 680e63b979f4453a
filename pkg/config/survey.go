package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/rgb-survey-api/internal/models"
)

//go:embed survey_default.yaml
var defaultSurveyTables []byte

type surveyFile struct {
	IdentifierColumn string            `yaml:"identifierColumn" validate:"required"`
	OverallLabel     string            `yaml:"overallLabel" validate:"required"`
	CurrentPeriod    string            `yaml:"currentPeriod" validate:"required"`
	Periods          []string          `yaml:"periods" validate:"required,min=1,dive,required"`
	DefaultPeriod    string            `yaml:"defaultPeriod" validate:"required"`
	Grades           []gradeEntry      `yaml:"grades" validate:"required,min=1,dive"`
	Scores           map[string]int    `yaml:"scores" validate:"required,min=1,dive,keys,required,endkeys,min=1,max=4"`
	Competencies     []competencyEntry `yaml:"competencies" validate:"required,min=1,dive"`
	Benchmarks       benchmarkEntry    `yaml:"benchmarks"`
	Rounds           []roundEntry      `yaml:"rounds" validate:"required,min=1,dive"`
	Template         templateEntry     `yaml:"template"`
}

type gradeEntry struct {
	Value int    `yaml:"value" validate:"gte=0,lte=9"`
	Label string `yaml:"label" validate:"required"`
}

type competencyEntry struct {
	Category  string   `yaml:"category" validate:"required"`
	Name      string   `yaml:"name" validate:"required"`
	Questions []string `yaml:"questions" validate:"required,min=1,dive,required"`
}

type benchmarkEntry struct {
	Periods []string                      `yaml:"periods" validate:"omitempty,dive,required"`
	Values  map[string]map[string]float64 `yaml:"values"`
}

type roundEntry struct {
	Name    string      `yaml:"name" validate:"required"`
	Columns map[int]int `yaml:"columns" validate:"required,min=1,dive,gt=0"`
}

type templateEntry struct {
	SheetName          string      `yaml:"sheetName"`
	QuestionColumn     int         `yaml:"questionColumn" validate:"gt=0"`
	QuestionStartRow   int         `yaml:"questionStartRow" validate:"gt=0"`
	CompetencyColumn   int         `yaml:"competencyColumn" validate:"gt=0"`
	CompetencyStartRow int         `yaml:"competencyStartRow" validate:"gt=0"`
	CompetencyColumns  map[int]int `yaml:"competencyColumns" validate:"required,min=1,dive,gt=0"`
	NumberFormat       string      `yaml:"numberFormat"`
}

// LoadSurvey reads the survey tables from path, or the embedded defaults when path is empty.
func LoadSurvey(path string) (*models.SurveyConfig, error) {
	data := defaultSurveyTables
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read survey tables: %w", err)
		}
		data = raw
	}
	return ParseSurvey(data)
}

// ParseSurvey decodes and validates YAML survey tables.
func ParseSurvey(data []byte) (*models.SurveyConfig, error) {
	var file surveyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode survey tables: %w", err)
	}

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("validate survey tables: %w", err)
	}
	if err := file.check(); err != nil {
		return nil, fmt.Errorf("validate survey tables: %w", err)
	}

	return file.toModel(), nil
}

func (f surveyFile) check() error {
	periods := make(map[string]struct{}, len(f.Periods))
	for _, p := range f.Periods {
		if _, dup := periods[p]; dup {
			return fmt.Errorf("duplicate period %q", p)
		}
		periods[p] = struct{}{}
	}
	if _, ok := periods[f.DefaultPeriod]; !ok {
		return fmt.Errorf("default period %q is not a configured period", f.DefaultPeriod)
	}

	grades := make(map[int]struct{}, len(f.Grades))
	for _, g := range f.Grades {
		if _, dup := grades[g.Value]; dup {
			return fmt.Errorf("duplicate grade %d", g.Value)
		}
		grades[g.Value] = struct{}{}
	}

	names := make(map[string]struct{}, len(f.Competencies))
	for _, c := range f.Competencies {
		if _, dup := names[c.Name]; dup {
			return fmt.Errorf("duplicate competency %q", c.Name)
		}
		names[c.Name] = struct{}{}
	}
	for name := range f.Benchmarks.Values {
		if _, ok := names[name]; !ok {
			return fmt.Errorf("benchmark for unknown competency %q", name)
		}
	}

	for _, r := range f.Rounds {
		for g := range grades {
			if _, ok := r.Columns[g]; !ok {
				return fmt.Errorf("round %q has no column for grade %d", r.Name, g)
			}
		}
	}
	for g := range grades {
		if _, ok := f.Template.CompetencyColumns[g]; !ok {
			return fmt.Errorf("template has no competency column for grade %d", g)
		}
	}

	return nil
}

func (f surveyFile) toModel() *models.SurveyConfig {
	cfg := &models.SurveyConfig{
		IdentifierColumn: strings.TrimSpace(f.IdentifierColumn),
		OverallLabel:     f.OverallLabel,
		CurrentPeriod:    f.CurrentPeriod,
		Periods:          append([]string(nil), f.Periods...),
		DefaultPeriod:    f.DefaultPeriod,
		Scores:           make(models.ScoreMap, len(f.Scores)),
		Benchmarks: models.Benchmarks{
			Periods: append([]string(nil), f.Benchmarks.Periods...),
			Values:  make(map[string]map[string]float64, len(f.Benchmarks.Values)),
		},
	}

	for _, g := range f.Grades {
		cfg.Grades = append(cfg.Grades, models.GradeLevel{Value: g.Value, Label: g.Label})
	}
	for answer, score := range f.Scores {
		cfg.Scores[strings.TrimSpace(answer)] = score
	}
	for _, c := range f.Competencies {
		cfg.Competencies = append(cfg.Competencies, models.Competency{
			Category:  c.Category,
			Name:      c.Name,
			Questions: append([]string(nil), c.Questions...),
		})
	}
	for comp, byPeriod := range f.Benchmarks.Values {
		values := make(map[string]float64, len(byPeriod))
		for period, v := range byPeriod {
			values[period] = v
		}
		cfg.Benchmarks.Values[comp] = values
	}
	for _, r := range f.Rounds {
		cols := make(models.RoundColumns, len(r.Columns))
		for g, c := range r.Columns {
			cols[g] = c
		}
		cfg.Rounds = append(cfg.Rounds, models.Round{Name: r.Name, Columns: cols})
	}

	compCols := make(map[int]int, len(f.Template.CompetencyColumns))
	for g, c := range f.Template.CompetencyColumns {
		compCols[g] = c
	}
	numFmt := f.Template.NumberFormat
	if numFmt == "" {
		numFmt = "0.0"
	}
	cfg.Template = models.TemplateLayout{
		SheetName:          f.Template.SheetName,
		QuestionColumn:     f.Template.QuestionColumn,
		QuestionStartRow:   f.Template.QuestionStartRow,
		CompetencyColumn:   f.Template.CompetencyColumn,
		CompetencyStartRow: f.Template.CompetencyStartRow,
		CompetencyColumns:  compCols,
		NumberFormat:       numFmt,
	}

	return cfg
}
