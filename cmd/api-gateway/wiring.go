package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/rgb-survey-api/internal/repository"
	"github.com/noah-isme/rgb-survey-api/internal/service"
	"github.com/noah-isme/rgb-survey-api/pkg/cache"
	"github.com/noah-isme/rgb-survey-api/pkg/config"
	"github.com/noah-isme/rgb-survey-api/pkg/export"
	"github.com/noah-isme/rgb-survey-api/pkg/jobs"
	"github.com/noah-isme/rgb-survey-api/pkg/storage"
)

type application struct {
	metrics *service.MetricsService
	ingest  *service.IngestService
	reports *service.ReportService
	queue   *jobs.Queue
	closers []func() error
	logger  *zap.Logger
}

func (a *application) close() {
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Sugar().Warnw("shutdown cleanup failed", "error", err)
		}
	}
}

func build(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*application, error) {
	survey, err := config.LoadSurvey(cfg.Survey.TablesPath)
	if err != nil {
		return nil, err
	}

	app := &application{metrics: service.NewMetricsService(), logger: logr}

	var sessionStore service.SessionStore
	if cfg.Sessions.RedisEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		repo := repository.NewSessionRepository(client, cfg.Sessions.KeyPrefix, logr)
		app.closers = append(app.closers, repo.Close)
		sessionStore = repo
	} else {
		sessionStore = repository.NewMemorySessionRepository()
	}
	sessions := service.NewSessionService(sessionStore, app.metrics, cfg.Sessions.TTL, logr)

	backend, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	generation := service.NewGenerationService(survey, backend, signer, service.GenerationConfig{
		APIPrefix:    cfg.APIPrefix,
		TemplatePath: cfg.Survey.TemplatePath,
		ResultTTL:    cfg.Reports.SignedURLTTL,
	}, app.metrics, logr, export.NewCSVExporter(true), export.NewPDFExporter(cfg.Reports.PDFFontPath))

	reportRepo := repository.NewReportRepository()
	worker := service.NewReportWorker(reportRepo, sessions, generation, app.metrics, cfg.Reports.WorkerRetries, logr)
	app.queue = jobs.NewQueue("survey-reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})

	app.ingest = service.NewIngestService(survey, sessions, app.metrics, cfg.Uploads.MaxBytes, logr)
	app.reports = service.NewReportService(reportRepo, sessions, app.queue, generation, survey, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	return app, nil
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	switch cfg.Reports.StorageDriver {
	case config.StorageDriverMinio:
		store, err := storage.NewMinioStorage(ctx, storage.MinioOptions{
			Endpoint:  cfg.Minio.Endpoint,
			AccessKey: cfg.Minio.AccessKey,
			SecretKey: cfg.Minio.SecretKey,
			Bucket:    cfg.Minio.Bucket,
			UseSSL:    cfg.Minio.UseSSL,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageDriverLocal, "":
		store, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown reports storage driver %q", cfg.Reports.StorageDriver)
	}
}
