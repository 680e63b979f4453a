package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/rgb-survey-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	sessionLatency     prometheus.Observer
	sessionWrite       prometheus.Observer
	sessionHitRatio    prometheus.Gauge
	sessionHits        prometheus.Counter
	sessionMisses      prometheus.Counter
	stageDuration      *prometheus.HistogramVec
	artifactsGenerated *prometheus.CounterVec
	rowsIngested       prometheus.Counter
	jobsCompleted      *prometheus.CounterVec

	sessionHitCount      uint64
	sessionMissCount     uint64
	requestCount         uint64
	requestDurationTotal uint64
	rowsIngestedCount    uint64

	mu             sync.Mutex
	artifactCounts map[string]uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	sessionLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "survey_session_lookup_seconds",
		Help:    "Latency for survey session lookups",
		Buckets: prometheus.DefBuckets,
	})

	sessionWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "survey_session_write_seconds",
		Help:    "Latency for survey session writes",
		Buckets: prometheus.DefBuckets,
	})

	sessionHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "survey_session_hit_ratio",
		Help: "Ratio of session hits to total session lookups",
	})

	sessionHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "survey_session_hits_total",
		Help: "Total session lookups that found a live session",
	})

	sessionMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "survey_session_misses_total",
		Help: "Total session lookups for unknown or expired sessions",
	})

	stageDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "survey_pipeline_stage_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: prometheus.DefBuckets,
	}, []string{"stage"})

	artifactsGenerated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "survey_artifacts_generated_total",
		Help: "Generated report artifacts by kind",
	}, []string{"kind"})

	rowsIngested := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "survey_rows_ingested_total",
		Help: "Survey response rows accepted from uploads",
	})

	jobsCompleted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "survey_report_jobs_total",
		Help: "Report jobs reaching a terminal state",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, sessionLatency, sessionWrite, sessionHitRatio, sessionHits, sessionMisses,
		stageDuration, artifactsGenerated, rowsIngested, jobsCompleted, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:           registry,
		handler:            handler,
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		sessionLatency:     sessionLatency,
		sessionWrite:       sessionWrite,
		sessionHitRatio:    sessionHitRatio,
		sessionHits:        sessionHits,
		sessionMisses:      sessionMisses,
		stageDuration:      stageDuration,
		artifactsGenerated: artifactsGenerated,
		rowsIngested:       rowsIngested,
		jobsCompleted:      jobsCompleted,
		artifactCounts:     make(map[string]uint64),
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordSessionLookup records session hit/miss metrics and updates the hit ratio.
func (m *MetricsService) RecordSessionLookup(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.sessionLatency.Observe(duration.Seconds())
	if hit {
		m.sessionHits.Inc()
		atomic.AddUint64(&m.sessionHitCount, 1)
	} else {
		m.sessionMisses.Inc()
		atomic.AddUint64(&m.sessionMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.sessionHitCount)
	misses := atomic.LoadUint64(&m.sessionMissCount)
	total := hits + misses
	if total > 0 {
		m.sessionHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveSessionWrite tracks the duration for session writes.
func (m *MetricsService) ObserveSessionWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.sessionWrite.Observe(duration.Seconds())
}

// ObserveStage records how long one pipeline stage took.
func (m *MetricsService) ObserveStage(stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordArtifact counts one generated artifact.
func (m *MetricsService) RecordArtifact(kind models.ArtifactKind) {
	if m == nil {
		return
	}
	m.artifactsGenerated.WithLabelValues(string(kind)).Inc()
	m.mu.Lock()
	m.artifactCounts[string(kind)]++
	m.mu.Unlock()
}

// RecordRowsIngested counts accepted response rows.
func (m *MetricsService) RecordRowsIngested(rows int) {
	if m == nil || rows <= 0 {
		return
	}
	m.rowsIngested.Add(float64(rows))
	atomic.AddUint64(&m.rowsIngestedCount, uint64(rows))
}

// RecordJobCompletion counts a job reaching a terminal status.
func (m *MetricsService) RecordJobCompletion(status models.ReportStatus) {
	if m == nil {
		return
	}
	m.jobsCompleted.WithLabelValues(string(status)).Inc()
}

// Snapshot returns aggregated metrics suitable for the system endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.sessionHitCount)
	misses := atomic.LoadUint64(&m.sessionMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var hitRatio float64
	if lookups := hits + misses; lookups > 0 {
		hitRatio = float64(hits) / float64(lookups)
	}

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	m.mu.Lock()
	artifacts := make(map[string]uint64, len(m.artifactCounts))
	for kind, n := range m.artifactCounts {
		artifacts[kind] = n
	}
	m.mu.Unlock()

	return models.SystemMetrics{
		SessionHitRatio:          hitRatio,
		SessionHits:              hits,
		SessionMisses:            misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		RowsIngested:             atomic.LoadUint64(&m.rowsIngestedCount),
		ArtifactsGenerated:       artifacts,
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
