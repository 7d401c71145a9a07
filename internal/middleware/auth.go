package middleware

import (
	"net/http"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
)

// Context keys set for downstream handlers.
const (
	ContextUserUID   = "userUID"
	ContextUserEmail = "userEmail"
	ContextBranchID  = "branchID"
)

// RequireAuth verifies the Firebase session cookie and resolves the caller's
// branch from the token claims. Every request is scoped to exactly one branch.
func RequireAuth(authClient *auth.Client) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if authClient == nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Authentication is not configured")
			}

			cookie, err := c.Cookie("session")
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Please log in to continue")
			}

			decodedToken, err := authClient.VerifySessionCookie(c.Request().Context(), cookie.Value)
			if err != nil {
				clearCookie := &http.Cookie{
					Name:     "session",
					Value:    "",
					MaxAge:   -1,
					HttpOnly: true,
					Path:     "/",
				}
				c.SetCookie(clearCookie)
				return echo.NewHTTPError(http.StatusUnauthorized, "Session expired, please log in again")
			}

			c.Set(ContextUserUID, decodedToken.UID)
			if email, ok := decodedToken.Claims["email"].(string); ok {
				c.Set(ContextUserEmail, email)
			}

			// The branch claim is set by the admin console when a user is
			// attached to a branch; requests without it cannot touch tenant
			// data.
			branchID, ok := decodedToken.Claims["branch_id"].(float64)
			if !ok || branchID <= 0 {
				return echo.NewHTTPError(http.StatusForbidden, "Account is not attached to a branch")
			}
			c.Set(ContextBranchID, uint(branchID))

			return next(c)
		}
	}
}

// BranchID reads the authenticated branch id out of the request context.
func BranchID(c echo.Context) uint {
	if val, ok := c.Get(ContextBranchID).(uint); ok {
		return val
	}
	return 0
}
