package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slidecast/presentation-service/internal/service"
)

// HealthHandler handles health and ready checks.
type HealthHandler struct {
	svc *service.PresentationService
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(svc *service.PresentationService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Health responds to GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Health())
}

// Ready responds to GET /ready (for k8s readiness).
func (h *HealthHandler) Ready(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
