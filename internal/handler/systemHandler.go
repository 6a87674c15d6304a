package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kettlegourmet/hrm/internal/healthcheck"
)

// HealthReporter is implemented by healthcheck.Checker
type HealthReporter interface {
	Statuses() []healthcheck.Status
	Overall() healthcheck.HealthStatus
}

// Handles system-related endpoints
type SystemHandler struct {
	health  HealthReporter
	started time.Time
}

func NewSystemHandler(health HealthReporter) *SystemHandler {
	return &SystemHandler{
		health:  health,
		started: time.Now(),
	}
}

// Handles GET /health
func (h *SystemHandler) Health(c *gin.Context) {
	overall := h.health.Overall()

	statusCode := http.StatusOK
	if overall != healthcheck.Healthy {
		statusCode = http.StatusServiceUnavailable
	}

	checks := gin.H{}
	statuses := h.health.Statuses()
	for _, s := range statuses {
		checks[s.Name] = s.Healthy
	}

	c.JSON(statusCode, gin.H{
		"status":       overall.String(),
		"service":      "hrm",
		"uptime":       time.Since(h.started).Seconds(),
		"timestamp":    time.Now().Unix(),
		"checks":       checks,
		"dependencies": statuses,
	})
}
