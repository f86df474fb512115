package handlers

import (
	"net/http"
	"time"

	"github.com/Ayash-Bera/aidline/internal/health"
	"github.com/Ayash-Bera/aidline/internal/models"
	"github.com/gin-gonic/gin"
)

const serviceName = "aidline"

type HealthHandler struct {
	checker *health.HealthChecker
	maxAge  time.Duration
}

func NewHealthHandler(checker *health.HealthChecker) *HealthHandler {
	return &HealthHandler{checker: checker, maxAge: 30 * time.Second}
}

// HandleHealth reports dependency status. Only an unhealthy system answers 503.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	resp := models.HealthResponse{
		Status:    health.StatusHealthy,
		Service:   serviceName,
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  map[string]string{},
	}

	if h.checker != nil {
		overall := h.checker.CheckCached(c.Request.Context(), h.maxAge)
		resp.Status = overall.Status
		for _, s := range overall.Services {
			resp.Services[s.Name] = s.Status
		}
	}

	code := http.StatusOK
	if resp.Status == health.StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
