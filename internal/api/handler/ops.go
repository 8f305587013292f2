// Package handler provides HTTP handlers for the AirSentry API.
package handler

import (
	"net/http"
	"time"

	"github.com/airsentry/airsentry/internal/api/models"
	"github.com/airsentry/airsentry/internal/api/response"
	"github.com/airsentry/airsentry/internal/pollution"
)

// PipelineStats exposes refresh pipeline counters to the ops surface.
// Implemented by the worker's refresh job.
type PipelineStats interface {
	MetricsSnapshot() map[string]interface{}
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	store     *pollution.Store
	pipeline  PipelineStats
}

// NewOpsHandler creates a new OpsHandler. Pipeline may be nil when the
// process serves from a store it does not refresh itself.
func NewOpsHandler(version, buildTime string, store *pollution.Store, pipeline PipelineStats) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		store:     store,
		pipeline:  pipeline,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready. The service is ready once the
// first refresh cycle has published a snapshot; an empty snapshot still
// counts as ready, it just means the sources had nothing.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Current()
	if snap == nil {
		ready := models.Readiness{
			Status: models.HealthStatusFail,
			Time:   models.Timestamp(time.Now()),
		}
		response.JSON(w, r, http.StatusServiceUnavailable, ready)
		return
	}

	fetchedAt := models.Timestamp(snap.FetchedAt)
	ready := models.Readiness{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(time.Now()),
		FetchedAt: &fetchedAt,
		Rows:      len(snap.Measurements),
	}
	response.JSON(w, r, http.StatusOK, ready)
}

// PipelineMetrics handles GET /v1/ops/metrics - refresh pipeline counters.
func (h *OpsHandler) PipelineMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{}
	if h.pipeline != nil {
		metrics = h.pipeline.MetricsSnapshot()
	}
	response.JSON(w, r, http.StatusOK, models.PipelineMetrics{
		Time:    models.Timestamp(time.Now()),
		Metrics: metrics,
	})
}
