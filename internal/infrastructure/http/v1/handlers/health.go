package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tradebook/internal/infrastructure/storage/postgres"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	pool    *postgres.Pool
	version string
	started time.Time
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(pool *postgres.Pool, version string) *HealthHandler {
	return &HealthHandler{
		pool:    pool,
		version: version,
		started: time.Now(),
	}
}

// RegisterRoutes attaches health routes to the group.
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/live", h.Live)
	rg.GET("/ready", h.Ready)
	rg.GET("/info", h.Info)
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports whether the service can serve traffic.
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	status := http.StatusOK

	if err := h.pool.Ping(c.Request.Context()); err != nil {
		checks["database"] = "down: " + err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"checks": checks,
	})
}

// Info reports build and runtime details.
func (h *HealthHandler) Info(c *gin.Context) {
	stats := postgres.GetPoolStats(h.pool.Unwrap())
	c.JSON(http.StatusOK, gin.H{
		"app":     "tradebook",
		"version": h.version,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
		"database": gin.H{
			"totalConns":    stats.TotalConns,
			"acquiredConns": stats.AcquiredConns,
			"idleConns":     stats.IdleConns,
			"maxConns":      stats.MaxConns,
		},
	})
}
