package handlers

import (
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// HealthCheck reports liveness.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck reports readiness without touching dependencies.
func ReadinessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

// HealthCheckDetailed verifies database connectivity.
func HealthCheckDetailed(c echo.Context, pool *pgxpool.Pool) error {
	services := map[string]string{"database": "healthy"}
	status := "healthy"

	if err := pool.Ping(c.Request().Context()); err != nil {
		services["database"] = "unhealthy"
		status = "degraded"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{
		"status":    status,
		"services":  services,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
