package handler

import (
	"net/http"
	"time"

	"github.com/blueflaggreece/shorecast/internal/api/models"
	"github.com/blueflaggreece/shorecast/internal/api/response"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version string
	cache   CacheLoader
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version string, cache CacheLoader) *OpsHandler {
	return &OpsHandler{version: version, cache: cache}
}

// HealthCheck handles GET /v1/ops/health.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: models.HealthStatusOK,
		Time:   time.Now().UTC(),
		Details: map[string]interface{}{
			"version": h.version,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready. Ready means the cache has
// at least one entry to serve; an empty cache is degraded but the
// process is still up.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	size := len(h.cache.Load())
	status := models.HealthStatusOK
	if size == 0 {
		status = models.HealthStatusDegraded
	}
	response.JSON(w, r, http.StatusOK, models.Health{
		Status: status,
		Time:   time.Now().UTC(),
		Details: map[string]interface{}{
			"cache_entries": size,
		},
	})
}
