package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/rgb-survey-api/internal/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ReportRepository keeps report job metadata in process memory. Jobs live only as long as
// the process and are pruned by the cleanup loop.
type ReportRepository struct {
	mu   sync.RWMutex
	jobs map[string]*models.ReportJob
}

// NewReportRepository constructs the repository.
func NewReportRepository() *ReportRepository {
	return &ReportRepository{jobs: make(map[string]*models.ReportJob)}
}

// Create stores a new job with generated defaults.
func (r *ReportRepository) Create(_ context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ReportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("create report job %s: already exists", job.ID)
	}
	r.jobs[job.ID] = cloneJob(job)
	return nil
}

// GetByID returns a copy of the job.
func (r *ReportRepository) GetByID(_ context.Context, id string) (*models.ReportJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, fmt.Errorf("get report job %s: %w", id, ErrNotFound)
	}
	return cloneJob(job), nil
}

// UpdateReportJobParams defines the mutable fields.
type UpdateReportJobParams struct {
	Status       *models.ReportStatus
	Progress     *int
	Artifacts    []models.ReportArtifact
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update applies the provided changes to a job.
func (r *ReportRepository) Update(_ context.Context, id string, params UpdateReportJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("update report job %s: %w", id, ErrNotFound)
	}

	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.Artifacts != nil {
		job.Artifacts = append([]models.ReportArtifact(nil), params.Artifacts...)
	}
	if params.ErrorMessage != nil {
		msg := *params.ErrorMessage
		job.ErrorMessage = &msg
	}
	if params.FinishedAt != nil {
		at := *params.FinishedAt
		job.FinishedAt = &at
	}
	return nil
}

// Delete forgets a job.
func (r *ReportRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	return nil
}

// ListFinishedBefore returns terminal jobs that finished prior to cutoff, oldest first.
func (r *ReportRepository) ListFinishedBefore(_ context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	if limit <= 0 {
		limit = 50
	}

	r.mu.RLock()
	jobs := make([]models.ReportJob, 0)
	for _, job := range r.jobs {
		if job.FinishedAt == nil || !job.FinishedAt.Before(cutoff) {
			continue
		}
		if job.Status != models.ReportStatusFinished && job.Status != models.ReportStatusFailed {
			continue
		}
		jobs = append(jobs, *cloneJob(job))
	}
	r.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].FinishedAt.Before(*jobs[j].FinishedAt) })
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func cloneJob(job *models.ReportJob) *models.ReportJob {
	out := *job
	out.Artifacts = append([]models.ReportArtifact(nil), job.Artifacts...)
	if job.FinishedAt != nil {
		at := *job.FinishedAt
		out.FinishedAt = &at
	}
	if job.ErrorMessage != nil {
		msg := *job.ErrorMessage
		out.ErrorMessage = &msg
	}
	return &out
}
