package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/cmd/custody/service"
	"github.com/vaultrack/custody/common/bootstrap"
)

// AssetHandler handles asset-related requests
type AssetHandler struct {
	components  *bootstrap.Components
	assets      *service.AssetService
	assignment  *service.AssignmentService
	credentials *service.CredentialService
}

// NewAssetHandler creates a new asset handler
func NewAssetHandler(components *bootstrap.Components, assets *service.AssetService, assignment *service.AssignmentService, credentials *service.CredentialService) *AssetHandler {
	return &AssetHandler{
		components:  components,
		assets:      assets,
		assignment:  assignment,
		credentials: credentials,
	}
}

// RegisterAsset registers a new asset
// POST /api/v1/assets
func (h *AssetHandler) RegisterAsset(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.RegisterAssetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	asset, err := h.assets.Register(ctx, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, asset)
}

// GetAsset retrieves an asset with its derived custody status
// GET /api/v1/assets/:serial
func (h *AssetHandler) GetAsset(c echo.Context) error {
	ctx := c.Request().Context()
	serial := c.Param("serial")

	view, err := h.assets.Get(ctx, serial)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, view)
}

// ListAssets lists assets, optionally filtered by category
// GET /api/v1/assets?category=ORGANIZATION_OWNED
func (h *AssetHandler) ListAssets(c echo.Context) error {
	ctx := c.Request().Context()

	var category *models.Category
	if raw := c.QueryParam("category"); raw != "" {
		cat := models.Category(raw)
		if !cat.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "unknown category",
			})
		}
		category = &cat
	}

	views, err := h.assets.List(ctx, category)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"assets": views,
		"count":  len(views),
	})
}

// UpdateAsset mutates descriptive fields and, when holder_code is present,
// rebinds the asset
// PUT /api/v1/assets/:serial
func (h *AssetHandler) UpdateAsset(c echo.Context) error {
	ctx := c.Request().Context()
	serial := c.Param("serial")

	var req struct {
		Make       string  `json:"make"`
		Model      string  `json:"model"`
		Color      string  `json:"color"`
		HolderCode *string `json:"holder_code,omitempty"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	asset, err := h.assets.UpdateDescriptive(ctx, serial, req.Make, req.Model, req.Color)
	if err != nil {
		return respondError(c, err)
	}

	if req.HolderCode != nil {
		if *req.HolderCode == "" {
			err = h.assignment.Unassign(ctx, serial)
		} else {
			err = h.assignment.Rebind(ctx, serial, *req.HolderCode)
		}
		if err != nil {
			return respondError(c, err)
		}

		view, err := h.assets.Get(ctx, serial)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, view)
	}

	return c.JSON(http.StatusOK, asset)
}

// AssignAsset binds an asset to a holder
// POST /api/v1/assets/:serial/assign
func (h *AssetHandler) AssignAsset(c echo.Context) error {
	ctx := c.Request().Context()
	serial := c.Param("serial")

	var req struct {
		HolderCode string `json:"holder_code"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	if err := h.assignment.Assign(ctx, serial, req.HolderCode); err != nil {
		return respondError(c, err)
	}

	view, err := h.assets.Get(ctx, serial)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, view)
}

// UnassignAsset clears an asset's holder
// POST /api/v1/assets/:serial/unassign
func (h *AssetHandler) UnassignAsset(c echo.Context) error {
	ctx := c.Request().Context()
	serial := c.Param("serial")

	if err := h.assignment.Unassign(ctx, serial); err != nil {
		return respondError(c, err)
	}

	view, err := h.assets.Get(ctx, serial)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, view)
}

// RetireAsset hard-deletes an asset record
// DELETE /api/v1/assets/:serial
func (h *AssetHandler) RetireAsset(c echo.Context) error {
	ctx := c.Request().Context()
	serial := c.Param("serial")

	if err := h.assets.Retire(ctx, serial); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetHistory retrieves the asset's custody events, newest first
// GET /api/v1/assets/:serial/events?limit=50
func (h *AssetHandler) GetHistory(c echo.Context) error {
	ctx := c.Request().Context()
	serial := c.Param("serial")

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "limit must be a positive integer",
			})
		}
		limit = parsed
	}

	events, err := h.assets.History(ctx, serial, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"serial": serial,
		"events": events,
		"count":  len(events),
	})
}

// GetCredential encodes (or returns the cached) credential token
// GET /api/v1/assets/:serial/credential
func (h *AssetHandler) GetCredential(c echo.Context) error {
	ctx := c.Request().Context()
	serial := c.Param("serial")

	token, payload, err := h.credentials.Encode(ctx, serial)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"serial":  serial,
		"token":   token,
		"payload": payload,
	})
}
