package routes

import (
	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/cmd/custody/container"
	"github.com/vaultrack/custody/cmd/custody/handlers"
)

// RegisterAssetRoutes registers all asset-related routes
func RegisterAssetRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAssetHandler(c.Components, c.AssetService, c.AssignmentService, c.CredentialService)

	assets := e.Group("/api/v1/assets")
	{
		assets.POST("", h.RegisterAsset)                    // POST   /api/v1/assets
		assets.GET("", h.ListAssets)                        // GET    /api/v1/assets?category=ORGANIZATION_OWNED
		assets.GET("/:serial", h.GetAsset)                  // GET    /api/v1/assets/SN-001
		assets.PUT("/:serial", h.UpdateAsset)               // PUT    /api/v1/assets/SN-001
		assets.DELETE("/:serial", h.RetireAsset)            // DELETE /api/v1/assets/SN-001
		assets.POST("/:serial/assign", h.AssignAsset)       // POST   /api/v1/assets/SN-001/assign
		assets.POST("/:serial/unassign", h.UnassignAsset)   // POST   /api/v1/assets/SN-001/unassign
		assets.GET("/:serial/events", h.GetHistory)         // GET    /api/v1/assets/SN-001/events
		assets.GET("/:serial/credential", h.GetCredential)  // GET    /api/v1/assets/SN-001/credential
	}
}
