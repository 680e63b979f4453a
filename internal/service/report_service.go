package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/rgb-survey-api/internal/dto"
	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/internal/repository"
	appErrors "github.com/noah-isme/rgb-survey-api/pkg/errors"
	"github.com/noah-isme/rgb-survey-api/pkg/jobs"
	"github.com/noah-isme/rgb-survey-api/pkg/storage"
)

// JobTypeSurveyReport tags queue jobs produced by the report service.
const JobTypeSurveyReport = "survey_report"

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	Delete(ctx context.Context, id string) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type sessionSource interface {
	Get(ctx context.Context, id string) (*models.SurveySession, error)
	Discard(ctx context.Context, id string) error
}

type reportGenerator interface {
	Generate(ctx context.Context, req GenerateInput) (*GenerationResult, error)
}

type artifactAccess interface {
	ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
	Open(ctx context.Context, relPath string) (io.ReadCloser, error)
	Delete(ctx context.Context, relPath string) error
	Cleanup(ctx context.Context, ttl time.Duration) ([]string, error)
}

// ReportService orchestrates report job lifecycle management.
type ReportService struct {
	repo      reportJobStore
	sessions  sessionSource
	queue     jobDispatcher
	artifacts artifactAccess
	survey    *models.SurveyConfig
	validate  *validator.Validate
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// ReportServiceConfig governs cleanup.
type ReportServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportDownload aggregates resolved download data. Callers close Reader.
type ReportDownload struct {
	Reader      io.ReadCloser
	Filename    string
	ContentType string
	SizeBytes   int64
	ExpiresAt   time.Time
}

// NewReportService constructs the report service.
func NewReportService(repo reportJobStore, sessions sessionSource, queue jobDispatcher, artifacts artifactAccess, survey *models.SurveyConfig, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ReportService{
		repo:      repo,
		sessions:  sessions,
		queue:     queue,
		artifacts: artifacts,
		survey:    survey,
		validate:  validator.New(),
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateJob validates request, persists job, and enqueues processing.
func (s *ReportService) CreateJob(ctx context.Context, req dto.ReportRequest) (*dto.ReportJobResponse, error) {
	period, err := s.validateRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	job := &models.ReportJob{
		SessionID:    req.SessionID,
		SurveyPeriod: period,
		Status:       models.ReportStatusQueued,
		Progress:     0,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: JobTypeSurveyReport}); err != nil {
		status := models.ReportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
			Status:       &status,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	s.logger.Sugar().Infow("report job queued", "job_id", job.ID, "session_id", job.SessionID, "period", period)
	return &dto.ReportJobResponse{ID: job.ID, SurveyPeriod: period, Status: job.Status, Progress: job.Progress}, nil
}

// GetStatus exposes job metadata and, once finished, the download links.
func (s *ReportService) GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error) {
	job, err := s.loadJob(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := &dto.ReportStatusResponse{
		ID:           job.ID,
		SurveyPeriod: job.SurveyPeriod,
		Status:       job.Status,
		Progress:     job.Progress,
	}
	if job.Status == models.ReportStatusFinished {
		resp.Artifacts = make([]dto.ReportArtifactResponse, 0, len(job.Artifacts))
		for _, a := range job.Artifacts {
			resp.Artifacts = append(resp.Artifacts, dto.ReportArtifactResponse{
				Name:        a.Name,
				Kind:        a.Kind,
				Filename:    a.Filename,
				ContentType: a.ContentType,
				SizeBytes:   a.SizeBytes,
				URL:         a.URL,
				ExpiresAt:   a.ExpiresAt,
			})
		}
	}
	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		resp.Error = job.ErrorMessage
	}
	return resp, nil
}

// ResolveDownload validates token and opens the stored artifact.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	jobID, relPath, expiresAt, err := s.artifacts.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.ReportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report not ready")
	}
	artifact, ok := job.Artifact(relPath)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	rc, err := s.artifacts.Open(ctx, relPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report artifact no longer available")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report artifact")
	}
	return &ReportDownload{
		Reader:      rc,
		Filename:    artifact.Filename,
		ContentType: artifact.ContentType,
		SizeBytes:   artifact.SizeBytes,
		ExpiresAt:   expiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired artifacts periodically.
func (s *ReportService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ReportService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	removed := 0
	for {
		expired, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Sugar().Warnw("cleanup list failed", "error", err)
			return
		}
		for _, job := range expired {
			for _, a := range job.Artifacts {
				if err := s.artifacts.Delete(ctx, a.Path); err != nil {
					s.logger.Sugar().Warnw("cleanup delete failed", "job_id", job.ID, "path", a.Path, "error", err)
				}
			}
			if err := s.repo.Delete(ctx, job.ID); err != nil {
				s.logger.Sugar().Warnw("cleanup job delete failed", "job_id", job.ID, "error", err)
				continue
			}
			removed++
		}
		if len(expired) < 100 {
			break
		}
	}
	orphans, err := s.artifacts.Cleanup(ctx, s.cfg.ResultTTL)
	if err != nil {
		s.logger.Sugar().Warnw("storage cleanup failed", "error", err)
	}
	if removed > 0 || len(orphans) > 0 {
		s.logger.Sugar().Infow("expired reports removed", "jobs", removed, "objects", len(orphans))
	}
}

func (s *ReportService) validateRequest(ctx context.Context, req dto.ReportRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "sessionId is required")
	}
	period := strings.TrimSpace(req.SurveyPeriod)
	if period == "" {
		period = s.survey.DefaultPeriod
	}
	if !s.survey.HasPeriod(period) {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown survey period %q", period))
	}
	if _, err := s.sessions.Get(ctx, req.SessionID); err != nil {
		return "", err
	}
	return period, nil
}

func (s *ReportService) loadJob(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	return job, nil
}

// ReportWorker bridges queue jobs to GenerationService.
type ReportWorker struct {
	repo       reportJobStore
	sessions   sessionSource
	generator  reportGenerator
	metrics    *MetricsService
	logger     *zap.Logger
	maxRetries int
	now        func() time.Time
}

// NewReportWorker constructs a worker.
func NewReportWorker(repo reportJobStore, sessions sessionSource, generator reportGenerator, metrics *MetricsService, maxRetries int, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &ReportWorker{
		repo:       repo,
		sessions:   sessions,
		generator:  generator,
		metrics:    metrics,
		logger:     logger,
		maxRetries: maxRetries,
		now:        time.Now,
	}
}

// Handle processes a queue job. Unrecoverable failures, and failures on the last attempt,
// mark the job FAILED and discard the session so no partial output survives.
func (w *ReportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ReportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:   &processing,
		Progress: &progress,
	}); err != nil {
		return err
	}

	session, err := w.sessions.Get(ctx, record.SessionID)
	if err != nil {
		w.fail(ctx, record, err)
		return jobs.Permanent(err)
	}

	progress = 30
	_ = w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Progress: &progress})

	result, err := w.generator.Generate(ctx, GenerateInput{
		JobID:     record.ID,
		Period:    record.SurveyPeriod,
		Responses: session.Responses,
	})
	if err != nil {
		if permanentFailure(err) {
			w.fail(ctx, record, err)
			return jobs.Permanent(err)
		}
		if job.Attempt >= w.maxRetries {
			w.fail(ctx, record, err)
			return err
		}
		msg := err.Error()
		queued := models.ReportStatusQueued
		reset := 0
		if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
			Status:       &queued,
			Progress:     &reset,
			ErrorMessage: &msg,
		}); updateErr != nil {
			w.logger.Sugar().Warnw("failed to mark job queued", "job_id", job.ID, "error", updateErr)
		}
		return err
	}

	finished := models.ReportStatusFinished
	progress = 100
	now := w.now().UTC()
	clear := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:       &finished,
		Progress:     &progress,
		Artifacts:    result.Artifacts,
		ErrorMessage: &clear,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job finished", "job_id", job.ID, "error", err)
		return err
	}
	w.metrics.RecordJobCompletion(finished)
	w.logger.Sugar().Infow("report job finished",
		"job_id", job.ID,
		"artifacts", len(result.Artifacts),
		"template_sheet", result.Template.Sheet,
		"template_unmatched_rows", result.Template.UnmatchedRows,
	)
	return nil
}

func (w *ReportWorker) fail(ctx context.Context, record *models.ReportJob, cause error) {
	msg := appErrors.FromError(cause).Message
	failed := models.ReportStatusFailed
	progress := 100
	now := w.now().UTC()
	if err := w.repo.Update(ctx, record.ID, repository.UpdateReportJobParams{
		Status:       &failed,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Sugar().Warnw("failed to mark job failed", "job_id", record.ID, "error", err)
	}
	if !appErrors.HasCode(cause, appErrors.ErrSessionExpired.Code) {
		if err := w.sessions.Discard(ctx, record.SessionID); err != nil {
			w.logger.Sugar().Warnw("failed to discard session", "job_id", record.ID, "session_id", record.SessionID, "error", err)
		}
	}
	w.metrics.RecordJobCompletion(failed)
	w.logger.Sugar().Errorw("report job failed", "job_id", record.ID, "session_id", record.SessionID, "error", cause)
}

func permanentFailure(err error) bool {
	return appErrors.HasCode(err, appErrors.ErrTemplateUnavailable.Code) ||
		appErrors.HasCode(err, appErrors.ErrValidation.Code) ||
		appErrors.HasCode(err, appErrors.ErrSessionExpired.Code)
}
