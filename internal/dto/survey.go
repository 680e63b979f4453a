package dto

import "time"

// GradeCount is the number of respondents resolved to one grade.
type GradeCount struct {
	Grade int    `json:"grade"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SurveySessionResponse summarises an uploaded survey file.
type SurveySessionResponse struct {
	ID               string       `json:"id"`
	Filename         string       `json:"filename"`
	UploadedAt       time.Time    `json:"uploadedAt"`
	ExpiresAt        time.Time    `json:"expiresAt"`
	Rows             int          `json:"rows"`
	HasIdentifier    bool         `json:"hasIdentifier"`
	UngradedRows     int          `json:"ungradedRows"`
	Grades           []GradeCount `json:"grades"`
	Questions        int          `json:"questions"`
	MissingQuestions []string     `json:"missingQuestions,omitempty"`
}

// SurveyPeriodsResponse lists the selectable survey periods.
type SurveyPeriodsResponse struct {
	Periods       []string `json:"periods"`
	DefaultPeriod string   `json:"defaultPeriod"`
	CurrentPeriod string   `json:"currentPeriod"`
}
