package handler // handler defines the HTTP handlers for the API

import (
	"errors" // sentinel for the getUserID helper
	"net/http"

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/medialog/medialog/internal/middleware"
)

// getUserID extracts the authenticated user's id from echo.Context.
// The JWT (or demo) middleware stores it as a string; anything else
// means the route was registered without auth by mistake.
func getUserID(c echo.Context) (string, error) {
	if s, ok := c.Get(middleware.CtxUserID).(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("no user in context")
}

// respond helpers keep the {success, ...} envelope uniform across
// handlers.

func okData(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func okList(c echo.Context, data any, count int) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data, "count": count})
}

func okMessage(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": message})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "error": message})
}
