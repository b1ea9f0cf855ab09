package handlers

import (
	"net/http"
	"time"

	"github.com/apsx/clinic-api/internal/database"
	"github.com/apsx/clinic-api/internal/utils"
)

// HealthHandler reports service liveness and the state of all four pools.
type HealthHandler struct {
	pools     *database.Pools
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(pools *database.Pools, version string) *HealthHandler {
	return &HealthHandler{
		pools:     pools,
		startTime: time.Now(),
		version:   version,
	}
}

// Check handles GET /health. A failing pool turns the response into a 503
// so load balancers take the instance out of rotation.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	statusCode := http.StatusOK

	var dbError string
	if err := h.pools.HealthCheck(r.Context()); err != nil {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
		dbError = err.Error()
	}

	payload := map[string]interface{}{
		"status":  status,
		"version": h.version,
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	}
	if dbError != "" {
		payload["database"] = dbError
	}

	utils.JSON(w, statusCode, payload)
}
