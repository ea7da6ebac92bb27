package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/medialog/medialog/internal/utils"
)

// Context keys the auth middleware populates for downstream handlers.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxEmail    = "email"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's identity claims into the request
// context. The provided secret must match the one used when issuing
// tokens. Requests with a missing, malformed, expired or otherwise
// invalid token are rejected with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "missing bearer token",
				})
			}
			id, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false, "error": "invalid or expired token",
				})
			}
			setIdentity(c, id)
			return next(c)
		}
	}
}

// OptionalJWTAuth attaches the identity when a valid bearer token is
// present but never rejects: anonymous and badly-authenticated
// requests both proceed, simply without an identity in context.
func OptionalJWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if raw, ok := bearerToken(c); ok {
				if id, err := utils.ParseAccessToken(secret, raw); err == nil {
					setIdentity(c, id)
				}
			}
			return next(c)
		}
	}
}

// DemoUser pins every request to a fixed user id. Used by the demo
// deployment variant where the media routes run without auth.
func DemoUser(userID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(CtxUserID, userID)
			return next(c)
		}
	}
}

// bearerToken extracts the raw token from an "Authorization: Bearer"
// header. The bool is false when the header is absent or malformed.
func bearerToken(c echo.Context) (string, bool) {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	return raw, raw != ""
}

func setIdentity(c echo.Context, id utils.Identity) {
	c.Set(CtxUserID, id.UserID)
	c.Set(CtxUsername, id.Username)
	c.Set(CtxEmail, id.Email)
}
