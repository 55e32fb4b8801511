package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/cmd/custody/container"
	"github.com/vaultrack/custody/cmd/custody/handlers"
	commonmiddleware "github.com/vaultrack/custody/common/middleware"
)

// RegisterScanRoutes registers the checkpoint scan routes. When rate
// limiting is enabled, the per-checkpoint limit applies to scans only; the
// rest of the API is covered by the global limit.
func RegisterScanRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewScanHandler(c.Components, c.ScanService, c.CredentialService)

	scan := e.Group("/api/v1/scan")
	if c.RateLimiter != nil {
		scan.Use(commonmiddleware.CheckpointRateLimitMiddleware(
			c.RateLimiter,
			c.Components.Config.RateLimit.CheckpointPerMinute,
		))
	}
	{
		scan.POST("", h.Reconcile)    // POST /api/v1/scan
		scan.POST("/apply", h.Apply)  // POST /api/v1/scan/apply
	}
}
