package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/cmd/custody/middleware"
	"github.com/vaultrack/custody/cmd/custody/models"
	"github.com/vaultrack/custody/cmd/custody/service"
	"github.com/vaultrack/custody/common/bootstrap"
)

// ScanHandler handles checkpoint scan requests
type ScanHandler struct {
	components  *bootstrap.Components
	scans       *service.ScanService
	credentials *service.CredentialService
}

// NewScanHandler creates a new scan handler
func NewScanHandler(components *bootstrap.Components, scans *service.ScanService, credentials *service.CredentialService) *ScanHandler {
	return &ScanHandler{
		components:  components,
		scans:       scans,
		credentials: credentials,
	}
}

// Reconcile decodes a scanned token and returns the reconciled live view
// POST /api/v1/scan
func (h *ScanHandler) Reconcile(c echo.Context) error {
	ctx := c.Request().Context()

	operator, err := middleware.RequireOperator(c)
	if err != nil {
		return err
	}

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "token is required",
		})
	}

	payload, err := h.credentials.Decode(req.Token)
	if err != nil {
		return respondError(c, err)
	}

	h.components.Logger.Info("scan received",
		"serial", payload.Serial,
		"operator", operator,
	)

	view, err := h.scans.Reconcile(ctx, *payload)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, view)
}

// Apply commits a custody transition
// POST /api/v1/scan/apply
func (h *ScanHandler) Apply(c echo.Context) error {
	ctx := c.Request().Context()

	operator, err := middleware.RequireOperator(c)
	if err != nil {
		return err
	}

	var req struct {
		Serial string               `json:"serial"`
		Action models.CustodyAction `json:"action"`
	}
	if err := c.Bind(&req); err != nil || req.Serial == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "serial and action are required",
		})
	}

	event, err := h.scans.Apply(ctx, req.Serial, req.Action, operator)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, event)
}
