// Package handler provides HTTP handlers for the ProdTrack API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/prodtrack/prodtrack/internal/api/models"
	"github.com/prodtrack/prodtrack/internal/api/response"
)

// ReadinessChecker reports whether a dependency is ready to serve.
type ReadinessChecker func(ctx context.Context) error

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	host      string
	port      int
	startedAt time.Time
	checks    map[string]ReadinessChecker
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, host string, port int, checks map[string]ReadinessChecker) *OpsHandler {
	return &OpsHandler{
		version:   version,
		host:      host,
		port:      port,
		startedAt: time.Now(),
		checks:    checks,
	}
}

// HealthCheck handles GET /api/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version": h.version,
			"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /api/ready - readiness check. Reports DEGRADED
// with a 200 when a dependency is down; the terminals keep working against
// the in-memory fallback, so not-ready must not flap the whole service.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	details := map[string]interface{}{}
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			status = models.HealthStatusDegraded
			details[name] = err.Error()
		} else {
			details[name] = "ok"
		}
	}

	health := models.Health{
		Status:  status,
		Time:    models.Timestamp(time.Now()),
		Details: details,
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ServerInfo handles GET /server_info.json - the discovery document the
// terminals fetch to locate the API on the LAN.
func (h *OpsHandler) ServerInfo(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.ServerInfo{
		Name:      "prodtrack",
		Version:   h.version,
		Host:      h.host,
		Port:      h.port,
		StartedAt: models.Timestamp(h.startedAt),
	})
}
