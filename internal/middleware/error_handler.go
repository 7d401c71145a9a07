package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONErrorHandler is Echo's centralized error handler. Handlers raise
// echo.HTTPError with a user-facing message; anything else is logged and
// collapsed to a generic 500 so internals never leak to clients.
func JSONErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Something went wrong. Please try again later."

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if msg, ok := he.Message.(string); ok && msg != "" {
			message = msg
		} else {
			switch code {
			case http.StatusNotFound:
				message = "The resource you're looking for doesn't exist."
			case http.StatusForbidden:
				message = "You don't have permission to access this resource."
			case http.StatusUnauthorized:
				message = "Please log in to continue."
			case http.StatusBadRequest:
				message = "The request could not be processed."
			}
		}
	}

	c.Logger().Error(err)

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, map[string]string{"error": message})
}
