package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/rgb-survey-api/api/swagger"
	"github.com/noah-isme/rgb-survey-api/internal/handler"
	"github.com/noah-isme/rgb-survey-api/internal/middleware"
	"github.com/noah-isme/rgb-survey-api/pkg/config"
	"github.com/noah-isme/rgb-survey-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/rgb-survey-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/rgb-survey-api/pkg/middleware/requestid"
)

// @title RGB Survey Report API
// @version 1.0.0
// @description Uploads student self-assessment survey exports and generates the grade, chart and template reports.
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to build application", "error", err)
	}
	defer app.close()

	app.queue.Start(ctx)
	defer app.queue.Stop()
	app.reports.StartCleanup(ctx)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(app.metrics))
	r.MaxMultipartMemory = cfg.Uploads.MaxBytes

	metricsHandler := handler.NewMetricsHandler(app.metrics, app.queue)
	surveyHandler := handler.NewSurveyHandler(app.ingest)
	reportHandler := handler.NewReportHandler(app.reports)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		surveys := api.Group("/surveys")
		surveys.POST("", surveyHandler.Upload)
		surveys.GET("/periods", surveyHandler.Periods)
		surveys.GET("/:id", surveyHandler.GetSession)
		surveys.DELETE("/:id", surveyHandler.DeleteSession)

		reports := api.Group("/reports")
		reports.POST("/generate", reportHandler.GenerateReport)
		reports.GET("/status/:id", reportHandler.ReportStatus)

		api.GET("/export/:token", reportHandler.DownloadReport)
		api.GET("/system/metrics", metricsHandler.System)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Reports.StorageDriver, "redis_sessions", cfg.Sessions.RedisEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server forced to shutdown", "error", err)
	}
}
