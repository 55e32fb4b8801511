package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// OperatorKey is the context key for storing the checkpoint operator
	OperatorKey ContextKey = "operator"
)

// ExtractOperator is a middleware that extracts the X-Operator-ID header
// and stores it in the request context. Every accepted custody transition
// records which checkpoint operator committed it.
//
// Usage:
//
//	e := echo.New()
//	e.Use(middleware.ExtractOperator())
//
// Accessing in handlers:
//
//	operator := middleware.GetOperator(c)
func ExtractOperator() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			operator := c.Request().Header.Get("X-Operator-ID")

			if operator != "" {
				c.Set(string(OperatorKey), operator)
			}

			return next(c)
		}
	}
}

// GetOperator retrieves the operator from the request context
// Returns empty string if not set
func GetOperator(c echo.Context) string {
	operator := c.Get(string(OperatorKey))
	if operator == nil {
		return ""
	}
	return operator.(string)
}

// RequireOperator ensures an operator identity exists in context
// Returns an error response if not found
func RequireOperator(c echo.Context) (string, error) {
	operator := GetOperator(c)
	if operator == "" {
		err := c.JSON(http.StatusUnauthorized, map[string]interface{}{
			"error": "operator identity required (X-Operator-ID header missing)",
		})
		return "", err
	}
	return operator, nil
}
