package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is implemented by backends that can report their reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports liveness and, when a backend is configured, its reachability
type HealthHandler struct {
	backend Pinger
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler creates a health handler. backend may be nil.
func NewHealthHandler(logger *slog.Logger, backend Pinger) *HealthHandler {
	return &HealthHandler{
		backend: backend,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if h.backend != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		if err := h.backend.Ping(ctx); err != nil {
			h.logger.Warn("Health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "timestamp": time.Now().UTC()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
}
