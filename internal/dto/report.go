package dto

import (
	"time"

	"github.com/noah-isme/rgb-survey-api/internal/models"
)

// ReportRequest captures POST /reports/generate payload. An empty survey period selects
// the configured default.
type ReportRequest struct {
	SessionID    string `json:"sessionId" validate:"required"`
	SurveyPeriod string `json:"surveyPeriod"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID           string              `json:"id"`
	SurveyPeriod string              `json:"surveyPeriod"`
	Status       models.ReportStatus `json:"status"`
	Progress     int                 `json:"progress"`
}

// ReportArtifactResponse describes one downloadable document.
type ReportArtifactResponse struct {
	Name        string              `json:"name"`
	Kind        models.ArtifactKind `json:"kind"`
	Filename    string              `json:"filename"`
	ContentType string              `json:"contentType"`
	SizeBytes   int64               `json:"sizeBytes"`
	URL         string              `json:"url"`
	ExpiresAt   *time.Time          `json:"expiresAt,omitempty"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID           string                   `json:"id"`
	SurveyPeriod string                   `json:"surveyPeriod"`
	Status       models.ReportStatus      `json:"status"`
	Progress     int                      `json:"progress"`
	Artifacts    []ReportArtifactResponse `json:"artifacts,omitempty"`
	Error        *string                  `json:"error,omitempty"`
}
