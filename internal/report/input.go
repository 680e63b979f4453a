package report

import (
	"fmt"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/internal/survey"
)

// Input is everything an assembler reads. It is shared read-only between assemblers.
type Input struct {
	Config    *models.SurveyConfig
	Responses *models.ResponseSet
	Breakdown survey.Breakdown
	Period    string
	Round     survey.RoundResolution
}

// NewInput aggregates the response set once and resolves the survey round.
func NewInput(cfg *models.SurveyConfig, set *models.ResponseSet, period string) (Input, error) {
	if cfg == nil {
		return Input{}, fmt.Errorf("survey config is required")
	}
	if set == nil {
		return Input{}, fmt.Errorf("response set is required")
	}
	return Input{
		Config:    cfg,
		Responses: set,
		Breakdown: survey.NewBreakdown(set, cfg),
		Period:    period,
		Round:     survey.ResolveRound(period, cfg.Rounds),
	}, nil
}

// Artifact is one rendered output document.
type Artifact struct {
	Name        string
	Kind        models.ArtifactKind
	Filename    string
	ContentType string
	Data        []byte
}

func render(wb WorkbookSink) ([]byte, error) {
	defer wb.Close()
	return wb.Bytes()
}
