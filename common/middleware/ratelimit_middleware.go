package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/vaultrack/custody/common/ratelimit"
)

// GlobalRateLimitMiddleware checks the global service-wide rate limit.
// Protects the service from being overwhelmed during shift changes when
// every checkpoint scans at once.
func GlobalRateLimitMiddleware(rateLimiter *ratelimit.RateLimiter, limit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			result, err := rateLimiter.CheckGlobalLimit(c.Request().Context(), limit)
			if err != nil {
				// On error, allow request (fail open for availability)
				return next(c)
			}

			if !result.Allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":   "global_rate_limit_exceeded",
					"message": "Service is experiencing high load. Please try again later.",
					"details": map[string]interface{}{
						"limit":               result.Limit,
						"window":              "60 seconds",
						"retry_after_seconds": result.RetryAfterSeconds,
					},
				})
			}

			return next(c)
		}
	}
}

// CheckpointRateLimitMiddleware checks per-operator scan rate limits.
// Requires the operator to be set in context by the ExtractOperator
// middleware; requests without an operator are not limited here because
// they are rejected by the scan handlers anyway.
func CheckpointRateLimitMiddleware(rateLimiter *ratelimit.RateLimiter, limit int64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			operator, ok := c.Get("operator").(string)
			if !ok || operator == "" {
				return next(c)
			}

			result, err := rateLimiter.CheckCheckpointLimit(c.Request().Context(), operator, limit, 60)
			if err != nil {
				// On error, allow request (fail open for availability)
				return next(c)
			}

			if !result.Allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":   "checkpoint_rate_limit_exceeded",
					"message": "This checkpoint has exceeded its scan quota. Please wait before trying again.",
					"details": map[string]interface{}{
						"operator":            operator,
						"limit":               result.Limit,
						"window":              "60 seconds",
						"current_count":       result.CurrentCount,
						"retry_after_seconds": result.RetryAfterSeconds,
					},
				})
			}

			return next(c)
		}
	}
}
