package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/carecompanion/carecompanion-api/internal/models"
)

// HealthHandler serves GET /health
type HealthHandler struct {
	db      HealthChecker
	version string
}

// NewHealthHandler creates a new health handler instance
func NewHealthHandler(db HealthChecker, version string) *HealthHandler {
	return &HealthHandler{db: db, version: version}
}

// Health reports service and database status
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := models.HealthResponse{
		Status:     "healthy",
		Database:   "connected",
		Version:    h.version,
		Disclaimer: models.Disclaimer,
	}
	status := http.StatusOK

	if err := h.db.HealthCheck(ctx); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, resp)
}
