package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/cmd/custody/container"
	"github.com/vaultrack/custody/cmd/custody/handlers"
)

// RegisterAlertRoutes registers the compliance alert routes
func RegisterAlertRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAlertHandler(c.Components, c.AlertService)

	e.GET("/api/v1/alerts", h.ListAlerts) // GET /api/v1/alerts?now=...
}
