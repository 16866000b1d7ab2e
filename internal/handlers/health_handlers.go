package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"elevate2/internal/caching"
	"elevate2/internal/jobs/background"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        *pgxpool.Pool
	redisSvc  caching.CacheService
	scheduler *background.JobScheduler
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db *pgxpool.Pool, redisSvc caching.CacheService, scheduler *background.JobScheduler) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		redisSvc:  redisSvc,
		scheduler: scheduler,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
	Version   string            `json:"version"`
}

// HealthCheck performs dependency health checks
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
		Version:   "1.0.0",
	}

	if err := h.checkDatabase(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["database"] = "healthy"
	}

	if err := h.checkRedis(ctx); err != nil {
		health.Services["redis"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["redis"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusPartialContent
	}

	return c.JSON(statusCode, health)
}

func (h *HealthHandlers) checkDatabase(ctx context.Context) error {
	_, err := h.db.Exec(ctx, "SELECT 1")
	return err
}

func (h *HealthHandlers) checkRedis(ctx context.Context) error {
	// A read against a known-missing key exercises the connection.
	_, err := h.redisSvc.GetString(ctx, "elevate:healthcheck")
	return err
}

// ReadinessCheck determines if the application is ready to serve traffic
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.checkDatabase(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status":  "not_ready",
			"message": "Critical services unavailable",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ready",
		"message": "All systems operational",
	})
}

// LivenessCheck determines if the application is running
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetMetrics provides basic runtime and job scheduler metrics
func (h *HealthHandlers) GetMetrics(c echo.Context) error {
	metrics := map[string]interface{}{
		"timestamp":  time.Now().UTC(),
		"version":    "1.0.0",
		"goroutines": runtime.NumGoroutine(),
		"database_connections": map[string]interface{}{
			"max": h.db.Config().MaxConns,
		},
	}
	if h.scheduler != nil {
		metrics["jobs"] = h.scheduler.GetJobStatus()
	}

	return c.JSON(http.StatusOK, metrics)
}
