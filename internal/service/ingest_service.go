package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/rgb-survey-api/internal/dto"
	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/internal/survey"
	appErrors "github.com/noah-isme/rgb-survey-api/pkg/errors"
)

// UploadInput is one uploaded survey export.
type UploadInput struct {
	Filename string
	Size     int64
	Reader   io.Reader
}

// IngestService reads uploads into normalized response sets and keeps them as sessions.
type IngestService struct {
	cfg      *models.SurveyConfig
	sessions *SessionService
	metrics  *MetricsService
	logger   *zap.Logger
	maxBytes int64
	now      func() time.Time
}

// NewIngestService constructs an IngestService.
func NewIngestService(cfg *models.SurveyConfig, sessions *SessionService, metrics *MetricsService, maxBytes int64, logger *zap.Logger) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &IngestService{cfg: cfg, sessions: sessions, metrics: metrics, logger: logger, maxBytes: maxBytes, now: time.Now}
}

// Ingest loads and normalizes the upload once and stores the result as a new session.
func (s *IngestService) Ingest(ctx context.Context, upload UploadInput) (*dto.SurveySessionResponse, error) {
	if upload.Reader == nil || upload.Filename == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.maxBytes {
		return nil, appErrors.ErrPayloadTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(upload.Reader, s.maxBytes+1))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, appErrors.ErrPayloadTooLarge
	}

	start := time.Now()
	set, err := ReadResponses(upload.Filename, bytes.NewReader(data), s.cfg)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveStage("ingest", time.Since(start))
	s.metrics.RecordRowsIngested(len(set.Rows))

	session := &models.SurveySession{
		ID:         uuid.NewString(),
		Filename:   filepath.Base(upload.Filename),
		UploadedAt: s.now().UTC(),
		Responses:  set,
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Sugar().Infow("survey uploaded",
		"session_id", session.ID,
		"filename", session.Filename,
		"rows", len(set.Rows),
		"missing_questions", len(set.Missing),
	)
	resp := Summarize(session, s.cfg, session.UploadedAt.Add(s.sessions.TTL()))
	return &resp, nil
}

// Get summarises a live session.
func (s *IngestService) Get(ctx context.Context, id string) (*dto.SurveySessionResponse, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := Summarize(session, s.cfg, session.UploadedAt.Add(s.sessions.TTL()))
	return &resp, nil
}

// Delete discards a session.
func (s *IngestService) Delete(ctx context.Context, id string) error {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return err
	}
	return s.sessions.Discard(ctx, id)
}

// Periods lists the selectable survey periods.
func (s *IngestService) Periods() dto.SurveyPeriodsResponse {
	return dto.SurveyPeriodsResponse{
		Periods:       append([]string(nil), s.cfg.Periods...),
		DefaultPeriod: s.cfg.DefaultPeriod,
		CurrentPeriod: s.cfg.CurrentPeriod,
	}
}

// ReadResponses loads a survey export and normalizes it, translating read failures into
// typed errors.
func ReadResponses(filename string, r io.Reader, cfg *models.SurveyConfig) (*models.ResponseSet, error) {
	ds, err := survey.Load(filename, r, cfg.IdentifierColumn)
	if err != nil {
		switch {
		case errors.Is(err, survey.ErrUnsupportedFormat):
			return nil, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, appErrors.ErrUnsupportedFormat.Message)
		case errors.Is(err, survey.ErrNotTabular):
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidWorkbook.Code, appErrors.ErrInvalidWorkbook.Status, appErrors.ErrInvalidWorkbook.Message)
		default:
			return nil, appErrors.Wrap(fmt.Errorf("load %s: %w", filename, err), appErrors.ErrInvalidWorkbook.Code, appErrors.ErrInvalidWorkbook.Status, appErrors.ErrInvalidWorkbook.Message)
		}
	}
	return survey.NormalizeDataset(ds, cfg), nil
}

// Summarize describes a session for clients.
func Summarize(session *models.SurveySession, cfg *models.SurveyConfig, expiresAt time.Time) dto.SurveySessionResponse {
	set := session.Responses
	resp := dto.SurveySessionResponse{
		ID:         session.ID,
		Filename:   session.Filename,
		UploadedAt: session.UploadedAt,
		ExpiresAt:  expiresAt,
		Grades:     make([]dto.GradeCount, 0, len(cfg.Grades)),
	}
	if set == nil {
		return resp
	}

	counts := set.GradeCounts()
	graded := 0
	for _, g := range cfg.Grades {
		resp.Grades = append(resp.Grades, dto.GradeCount{Grade: g.Value, Label: g.Label, Count: counts[g.Value]})
	}
	for _, n := range counts {
		graded += n
	}

	resp.Rows = len(set.Rows)
	resp.HasIdentifier = set.HasIdentifier
	resp.UngradedRows = resp.Rows - graded
	resp.Questions = len(set.Questions)
	resp.MissingQuestions = append([]string(nil), set.Missing...)
	return resp
}
