package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/cmd/custody/service"
	"github.com/vaultrack/custody/common/bootstrap"
)

// ExportHandler handles custody ledger export requests
type ExportHandler struct {
	components *bootstrap.Components
	exports    *service.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(components *bootstrap.Components, exports *service.ExportService) *ExportHandler {
	return &ExportHandler{
		components: components,
		exports:    exports,
	}
}

// ExportCSV streams the full ledger as CSV
// GET /api/v1/export/custody.csv
func (h *ExportHandler) ExportCSV(c echo.Context) error {
	ctx := c.Request().Context()

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="custody.csv"`)
	c.Response().WriteHeader(http.StatusOK)

	if err := h.exports.WriteCSV(ctx, c.Response()); err != nil {
		// Headers are already out; log and cut the stream
		h.components.Logger.Error("CSV export failed", "error", err)
		return err
	}

	return nil
}

// ExportXLSX returns the full ledger as an XLSX workbook
// GET /api/v1/export/custody.xlsx
func (h *ExportHandler) ExportXLSX(c echo.Context) error {
	ctx := c.Request().Context()

	data, err := h.exports.BuildXLSX(ctx)
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="custody.xlsx"`)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
