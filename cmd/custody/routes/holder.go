package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/cmd/custody/container"
	"github.com/vaultrack/custody/cmd/custody/handlers"
)

// RegisterHolderRoutes registers all holder-related routes
func RegisterHolderRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewHolderHandler(c.Components, c.HolderService, c.AssetService)

	holders := e.Group("/api/v1/holders")
	{
		holders.POST("", h.CreateHolder)        // POST   /api/v1/holders
		holders.GET("", h.ListHolders)          // GET    /api/v1/holders
		holders.GET("/:code", h.GetHolder)      // GET    /api/v1/holders/H-100
		holders.PUT("/:code", h.UpdateHolder)   // PUT    /api/v1/holders/H-100
		holders.DELETE("/:code", h.DeleteHolder) // DELETE /api/v1/holders/H-100
	}
}
