package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/rgb-survey-api/internal/models"
	"github.com/noah-isme/rgb-survey-api/internal/report"
	appErrors "github.com/noah-isme/rgb-survey-api/pkg/errors"
	"github.com/noah-isme/rgb-survey-api/pkg/export"
)

type fileStorage interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	CleanupOlderThan(ctx context.Context, ttl time.Duration) ([]string, error)
}

type tokenSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
}

// GenerationConfig tunes generation behaviour.
type GenerationConfig struct {
	APIPrefix    string
	TemplatePath string
	ResultTTL    time.Duration
}

// GenerateInput names the response set and survey period of one run.
type GenerateInput struct {
	JobID     string
	Period    string
	Responses *models.ResponseSet
}

// Assembly is the in-memory output of one pipeline run.
type Assembly struct {
	Artifacts  []report.Artifact
	Template   report.FillResult
	PDFSkipped bool
}

// GenerationResult captures stored artifacts of a successful run.
type GenerationResult struct {
	Artifacts []models.ReportArtifact
	Template  report.FillResult
}

// GenerationService runs the report assemblers over one aggregation and persists the
// rendered documents.
type GenerationService struct {
	survey       *models.SurveyConfig
	storage      fileStorage
	signer       tokenSigner
	csv          *export.CSVExporter
	pdf          *export.PDFExporter
	metrics      *MetricsService
	logger       *zap.Logger
	cfg          GenerationConfig
	openTemplate func() (io.ReadCloser, error)
}

// NewGenerationService constructs a GenerationService.
func NewGenerationService(survey *models.SurveyConfig, storage fileStorage, signer tokenSigner, cfg GenerationConfig, metrics *MetricsService, logger *zap.Logger, csv *export.CSVExporter, pdf *export.PDFExporter) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter(true)
	}
	if pdf == nil {
		pdf = export.NewPDFExporter("")
	}
	s := &GenerationService{
		survey:  survey,
		storage: storage,
		signer:  signer,
		csv:     csv,
		pdf:     pdf,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}
	s.openTemplate = func() (io.ReadCloser, error) {
		return os.Open(s.cfg.TemplatePath)
	}
	return s
}

type assembler struct {
	name string
	run  func() ([]report.Artifact, error)
}

// Assemble renders every artifact in memory. Assemblers share the read-only input and run
// concurrently; any failure fails the whole run.
func (s *GenerationService) Assemble(ctx context.Context, set *models.ResponseSet, period string) (*Assembly, error) {
	start := time.Now()
	in, err := report.NewInput(s.survey, set, period)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	s.metrics.ObserveStage("aggregate", time.Since(start))

	templateData, err := s.readTemplate()
	if err != nil {
		return nil, err
	}

	out := &Assembly{}
	assemblers := []assembler{
		{name: "grade_reports", run: func() ([]report.Artifact, error) { return report.BuildGradeReports(in) }},
		{name: "radar", run: single(func() (report.Artifact, error) { return report.BuildRadarReport(in) })},
		{name: "trend", run: single(func() (report.Artifact, error) { return report.BuildTrendReport(in) })},
		{name: "template", run: func() ([]report.Artifact, error) {
			artifact, res, err := report.BuildTemplateReport(bytes.NewReader(templateData), in)
			out.Template = res
			if err != nil {
				return nil, err
			}
			return []report.Artifact{artifact}, nil
		}},
		{name: "normalized_csv", run: single(func() (report.Artifact, error) { return report.BuildNormalizedCSV(in, s.csv) })},
		{name: "competency_pdf", run: func() ([]report.Artifact, error) {
			artifact, ok, err := report.BuildCompetencyPDF(in, s.pdf)
			if err != nil {
				return nil, err
			}
			if !ok {
				out.PDFSkipped = true
				return nil, nil
			}
			return []report.Artifact{artifact}, nil
		}},
	}

	results := make([][]report.Artifact, len(assemblers))
	errs := make([]error, len(assemblers))
	var wg sync.WaitGroup
	for i, a := range assemblers {
		wg.Add(1)
		go func(i int, a assembler) {
			defer wg.Done()
			started := time.Now()
			results[i], errs[i] = a.run()
			s.metrics.ObserveStage(a.name, time.Since(started))
		}(i, a)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for i, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, report.ErrTemplateUnavailable) {
			return nil, appErrors.Wrap(err, appErrors.ErrTemplateUnavailable.Code, appErrors.ErrTemplateUnavailable.Status, appErrors.ErrTemplateUnavailable.Message)
		}
		return nil, appErrors.Wrap(fmt.Errorf("%s: %w", assemblers[i].name, err), appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assemble reports")
	}
	for _, arts := range results {
		out.Artifacts = append(out.Artifacts, arts...)
	}

	s.logger.Sugar().Infow("reports assembled",
		"period", period,
		"round", in.Round.Name,
		"round_matched", in.Round.Matched,
		"artifacts", len(out.Artifacts),
		"template_matched_questions", out.Template.MatchedQuestions,
		"template_unmatched_rows", out.Template.UnmatchedRows,
		"template_skipped", out.Template.Skipped,
		"pdf_skipped", out.PDFSkipped,
		"duration", time.Since(start),
	)
	if !in.Round.Matched {
		s.logger.Sugar().Warnw("survey round not recognised, using default template columns", "period", period, "round", in.Round.Name)
	}
	return out, nil
}

func single(fn func() (report.Artifact, error)) func() ([]report.Artifact, error) {
	return func() ([]report.Artifact, error) {
		artifact, err := fn()
		if err != nil {
			return nil, err
		}
		return []report.Artifact{artifact}, nil
	}
}

func (s *GenerationService) readTemplate() ([]byte, error) {
	rc, err := s.openTemplate()
	if err != nil {
		return nil, appErrors.Wrap(fmt.Errorf("%w: %v", report.ErrTemplateUnavailable, err), appErrors.ErrTemplateUnavailable.Code, appErrors.ErrTemplateUnavailable.Status, appErrors.ErrTemplateUnavailable.Message)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, appErrors.Wrap(fmt.Errorf("%w: %v", report.ErrTemplateUnavailable, err), appErrors.ErrTemplateUnavailable.Code, appErrors.ErrTemplateUnavailable.Status, appErrors.ErrTemplateUnavailable.Message)
	}
	return data, nil
}

// Generate assembles every artifact, stores them under the job id and signs download
// tokens. A storage failure removes what was already stored.
func (s *GenerationService) Generate(ctx context.Context, req GenerateInput) (*GenerationResult, error) {
	if req.JobID == "" {
		return nil, fmt.Errorf("job id required")
	}
	assembly, err := s.Assemble(ctx, req.Responses, req.Period)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	stored := make([]models.ReportArtifact, 0, len(assembly.Artifacts))
	rollback := func() {
		for _, a := range stored {
			if err := s.storage.Delete(ctx, a.Path); err != nil {
				s.logger.Sugar().Warnw("failed to remove partial artifact", "job_id", req.JobID, "path", a.Path, "error", err)
			}
		}
	}

	for _, artifact := range assembly.Artifacts {
		key := path.Join(req.JobID, SanitizeFilename(artifact.Filename))
		relPath, err := s.storage.Save(ctx, key, artifact.Data, artifact.ContentType)
		if err != nil {
			rollback()
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report artifact")
		}
		stored = append(stored, models.ReportArtifact{
			Name:        artifact.Name,
			Kind:        artifact.Kind,
			Filename:    artifact.Filename,
			ContentType: artifact.ContentType,
			Path:        relPath,
			SizeBytes:   int64(len(artifact.Data)),
		})

		token, expiresAt, err := s.signer.Generate(req.JobID, relPath)
		if err != nil {
			rollback()
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
		}
		last := &stored[len(stored)-1]
		last.URL = s.downloadURL(token)
		last.ExpiresAt = &expiresAt
	}
	s.metrics.ObserveStage("store", time.Since(start))
	for _, a := range stored {
		s.metrics.RecordArtifact(a.Kind)
	}

	return &GenerationResult{Artifacts: stored, Template: assembly.Template}, nil
}

func (s *GenerationService) downloadURL(token string) string {
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return fmt.Sprintf("%s/export/%s", prefix, token)
}

// ParseToken validates download token metadata.
func (s *GenerationService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to a stored artifact.
func (s *GenerationService) Open(ctx context.Context, relPath string) (io.ReadCloser, error) {
	return s.storage.Open(ctx, relPath)
}

// Delete removes a stored artifact.
func (s *GenerationService) Delete(ctx context.Context, relPath string) error {
	return s.storage.Delete(ctx, relPath)
}

// Cleanup removes stored artifacts older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *GenerationService) Cleanup(ctx context.Context, ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ctx, ttl)
}

// SanitizeFilename makes an artifact filename safe as a single storage path segment.
func SanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer("/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if runes := []rune(result); len(runes) > 120 {
		return string(runes[:120])
	}
	return result
}
