package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/cmd/custody/service"
	"github.com/vaultrack/custody/common/bootstrap"
)

// HolderHandler handles holder-related requests
type HolderHandler struct {
	components *bootstrap.Components
	holders    *service.HolderService
	assets     *service.AssetService
}

// NewHolderHandler creates a new holder handler
func NewHolderHandler(components *bootstrap.Components, holders *service.HolderService, assets *service.AssetService) *HolderHandler {
	return &HolderHandler{
		components: components,
		holders:    holders,
		assets:     assets,
	}
}

// CreateHolder registers a new holder
// POST /api/v1/holders
func (h *HolderHandler) CreateHolder(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.CreateHolderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	holder, err := h.holders.Create(ctx, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, holder)
}

// GetHolder retrieves a holder by code
// GET /api/v1/holders/:code
func (h *HolderHandler) GetHolder(c echo.Context) error {
	ctx := c.Request().Context()
	code := c.Param("code")

	holder, err := h.holders.Get(ctx, code)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, holder)
}

// ListHolders lists all holders
// GET /api/v1/holders
func (h *HolderHandler) ListHolders(c echo.Context) error {
	ctx := c.Request().Context()

	holders, err := h.holders.List(ctx)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"holders": holders,
		"count":   len(holders),
	})
}

// UpdateHolder mutates a holder's name, unit and portrait
// PUT /api/v1/holders/:code
func (h *HolderHandler) UpdateHolder(c echo.Context) error {
	ctx := c.Request().Context()
	code := c.Param("code")

	var req service.CreateHolderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	holder, err := h.holders.Update(ctx, code, &req)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, holder)
}

// DeleteHolder removes a holder, refused while assets reference it
// DELETE /api/v1/holders/:code
func (h *HolderHandler) DeleteHolder(c echo.Context) error {
	ctx := c.Request().Context()
	code := c.Param("code")

	if err := h.holders.Delete(ctx, code); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}
