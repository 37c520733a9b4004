package db

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health with the reference data versions in
// use. A nil pinger means history is disabled and the database is not checked.
func HealthHandler(pool Pinger, versions map[string]string) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := map[string]interface{}{
			"status":         "ok",
			"reference_data": versions,
			"database":       "disabled",
		}
		if pool == nil {
			return c.JSON(http.StatusOK, body)
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["database"] = "unreachable"
			body["error"] = err.Error()
			return c.JSON(http.StatusServiceUnavailable, body)
		}
		body["database"] = "ok"
		return c.JSON(http.StatusOK, body)
	}
}
