package middleware

// identity.go defines helpers shared across middleware files. Cache
// and rate-limit keys need a stable per-user component; anonymous
// requests all share the "guest" identity.

import "github.com/labstack/echo/v4"

// currentUserID returns the authenticated user's id from context or
// "guest" when the request is anonymous.
func currentUserID(c echo.Context) string {
	if v := c.Get(CtxUserID); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "guest"
}
