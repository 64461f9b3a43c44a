package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check HTTP requests
type HealthHandler struct {
	service string
	deps    map[string]Pinger
}

// NewHealthHandler creates a HealthHandler; nil dependencies are skipped
func NewHealthHandler(service string, deps map[string]Pinger) *HealthHandler {
	checked := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			checked[name] = p
		}
	}
	return &HealthHandler{service: service, deps: checked}
}

// Health returns basic health status
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": h.service,
	})
}

// Ready checks every dependency
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	body := gin.H{"service": h.service}
	ready := true
	for name, p := range h.deps {
		if err := p.Ping(c.Request.Context()); err != nil {
			ready = false
			body[name] = "disconnected"
			continue
		}
		body[name] = "connected"
	}

	if !ready {
		body["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "ready"
	c.JSON(http.StatusOK, body)
}
