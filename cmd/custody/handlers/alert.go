package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/cmd/custody/service"
	"github.com/vaultrack/custody/common/bootstrap"
)

// AlertHandler handles compliance alert requests
type AlertHandler struct {
	components *bootstrap.Components
	alerts     *service.AlertService
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(components *bootstrap.Components, alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{
		components: components,
		alerts:     alerts,
	}
}

// ListAlerts runs the compliance detector on demand. The optional `now`
// parameter (RFC3339) fixes the evaluation time, which makes the result
// reproducible for review tooling.
// GET /api/v1/alerts?now=2026-01-05T08:00:00Z
func (h *AlertHandler) ListAlerts(c echo.Context) error {
	ctx := c.Request().Context()

	now := time.Now()
	if raw := c.QueryParam("now"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "now must be an RFC3339 timestamp",
			})
		}
		now = parsed
	}

	alerts, err := h.alerts.Detect(ctx, now)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"evaluated_at": now,
		"alerts":       alerts,
		"count":        len(alerts),
	})
}
