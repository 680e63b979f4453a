package models

import "time"

// ArtifactKind enumerates the generated report documents.
type ArtifactKind string

const (
	ArtifactGradeReport    ArtifactKind = "grade_report"
	ArtifactRadarChart     ArtifactKind = "radar_chart"
	ArtifactTrendChart     ArtifactKind = "trend_chart"
	ArtifactTemplateReport ArtifactKind = "template_report"
	ArtifactNormalizedCSV  ArtifactKind = "normalized_csv"
	ArtifactCompetencyPDF  ArtifactKind = "competency_pdf"
)

// ReportStatus captures background job lifecycle states.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportArtifact describes one stored output document.
type ReportArtifact struct {
	Name        string       `json:"name"`
	Kind        ArtifactKind `json:"kind"`
	Filename    string       `json:"filename"`
	ContentType string       `json:"contentType"`
	Path        string       `json:"-"`
	SizeBytes   int64        `json:"sizeBytes"`
	URL         string       `json:"url,omitempty"`
	ExpiresAt   *time.Time   `json:"expiresAt,omitempty"`
}

// ReportJob is the in-memory record of one generation request.
type ReportJob struct {
	ID           string           `json:"id"`
	SessionID    string           `json:"sessionId"`
	SurveyPeriod string           `json:"surveyPeriod"`
	Status       ReportStatus     `json:"status"`
	Progress     int              `json:"progress"`
	Artifacts    []ReportArtifact `json:"artifacts,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	FinishedAt   *time.Time       `json:"finishedAt,omitempty"`
	ErrorMessage *string          `json:"errorMessage,omitempty"`
}

// Artifact finds a stored artifact by its storage path.
func (j *ReportJob) Artifact(path string) (*ReportArtifact, bool) {
	if j == nil {
		return nil, false
	}
	for i := range j.Artifacts {
		if j.Artifacts[i].Path == path {
			return &j.Artifacts[i], true
		}
	}
	return nil, false
}

// SurveySession is the cached state for one uploaded file.
type SurveySession struct {
	ID         string       `json:"id"`
	Filename   string       `json:"filename"`
	UploadedAt time.Time    `json:"uploadedAt"`
	Responses  *ResponseSet `json:"responses"`
}
