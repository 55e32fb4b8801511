package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/cmd/custody/models"
)

// respondError maps domain errors to HTTP responses. Every engine failure
// is typed; anything unrecognized is treated as an internal error.
func respondError(c echo.Context, err error) error {
	var (
		policy    *models.PolicyViolationError
		conflict  *models.ConflictingAssignmentError
		redundant *models.RedundantActionError
		notFound  *models.NotFoundError
		duplicate *models.DuplicateKeyError
	)

	switch {
	case errors.As(err, &notFound):
		return c.JSON(http.StatusNotFound, map[string]interface{}{
			"error": "not_found",
			"kind":  notFound.Kind,
			"key":   notFound.Key,
		})

	case errors.As(err, &conflict):
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":              "conflicting_assignment",
			"message":            conflict.Error(),
			"holder_code":        conflict.HolderCode,
			"category":           conflict.Category,
			"conflicting_serial": conflict.ConflictingSerial,
		})

	case errors.As(err, &duplicate):
		// Permanent integrity conflict; retrying can never succeed
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":   "duplicate_key",
			"message": duplicate.Error(),
			"kind":    duplicate.Kind,
			"key":     duplicate.Key,
		})

	case errors.As(err, &redundant):
		// Blocking, not transient: the state has already converged and the
		// caller must not retry.
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":   "redundant_action",
			"message": redundant.Error(),
			"serial":  redundant.Serial,
			"action":  redundant.Action,
		})

	case errors.As(err, &policy):
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "policy_violation",
			"message": policy.Reason,
		})

	case errors.Is(err, models.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"error":   "store_unavailable",
			"message": "entity store is unavailable; retry with backoff",
		})

	default:
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "internal_error",
		})
	}
}
