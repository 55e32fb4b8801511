package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/cmd/custody/container"
	"github.com/vaultrack/custody/cmd/custody/handlers"
)

// RegisterExportRoutes registers the custody ledger export routes
func RegisterExportRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewExportHandler(c.Components, c.ExportService)

	export := e.Group("/api/v1/export")
	{
		export.GET("/custody.csv", h.ExportCSV)   // GET /api/v1/export/custody.csv
		export.GET("/custody.xlsx", h.ExportXLSX) // GET /api/v1/export/custody.xlsx
	}
}
