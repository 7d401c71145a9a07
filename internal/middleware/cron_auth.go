package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireCronSecret authenticates scheduled external callers with a shared
// bearer token.
func RequireCronSecret(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Cron endpoints are not configured")
			}

			authHeader := c.Request().Header.Get("Authorization")
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader || token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid bearer token")
			}

			return next(c)
		}
	}
}
