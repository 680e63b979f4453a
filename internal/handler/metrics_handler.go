package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/rgb-survey-api/internal/service"
	"github.com/noah-isme/rgb-survey-api/pkg/jobs"
	"github.com/noah-isme/rgb-survey-api/pkg/response"
)

type queueInspector interface {
	Stats() jobs.Stats
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	queue   queueInspector
}

// NewMetricsHandler constructs a metrics handler. queue may be nil.
func NewMetricsHandler(metrics *service.MetricsService, queue queueInspector) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, queue: queue}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health responds with a generic OK payload for liveness usage.
func (h *MetricsHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the report queue accepts work.
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.queue == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	stats := h.queue.Stats()
	if !stats.Started {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting", "queue": stats})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "queue": stats})
}

// System godoc
// @Summary Pipeline and session statistics
// @Tags System
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /system/metrics [get]
func (h *MetricsHandler) System(c *gin.Context) {
	meta := map[string]interface{}{}
	if h.queue != nil {
		meta["queue"] = h.queue.Stats()
	}
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), meta)
}
