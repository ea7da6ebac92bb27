package router // route registration for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/medialog/medialog/internal/config"
	"github.com/medialog/medialog/internal/handler"
	"github.com/medialog/medialog/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check for load balancers and
// monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register, login,
// refresh and logout are open; the /api/auth/me operations require a
// valid access token. Extra middleware on the /me group runs after the
// JWT check so it sees the authenticated identity.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	g := e.Group("/api/auth", extra...)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)

	mw := append([]echo.MiddlewareFunc{middleware.JWTAuth(jwtSecret)}, extra...)
	me := e.Group("/api/auth", mw...)
	me.GET("/me", a.Me)
	me.PUT("/me", a.UpdateMe)
	me.DELETE("/me", a.DeleteMe)
}

// RegisterMedia registers the media item endpoints. In normal operation
// every route requires a valid access token. In demo mode the JWT check
// is replaced by a middleware that pins the identity to the configured
// demo user, so the same handlers serve both variants. Extra middleware
// runs after the guard, so rate keys and cache keys see the user id.
func RegisterMedia(e *echo.Echo, m *handler.MediaHandler, cfg config.Config, extra ...echo.MiddlewareFunc) {
	guard := middleware.JWTAuth(cfg.JWTSecret)
	if cfg.DemoMode {
		guard = middleware.DemoUser(cfg.DemoUserID)
	}

	mw := append([]echo.MiddlewareFunc{guard}, extra...)
	g := e.Group("/api/media", mw...)

	g.POST("", m.Create)
	g.GET("", m.List)
	g.GET("/grouped", m.Grouped)
	g.GET("/stats", m.Stats)
	g.GET("/search", m.Search)
	g.GET("/:id", m.GetByID)
	g.PUT("/:id", m.Update)
	g.POST("/:id/watch", m.Watch)
	g.DELETE("/:id", m.Delete)
	g.GET("/:id/genres", m.ItemGenres)
	g.PUT("/:id/genres", m.SetItemGenres)
}

// RegisterMeta registers the public lookup-table endpoints. They accept
// but do not require a bearer token.
func RegisterMeta(e *echo.Echo, h *handler.MetaHandler, jwtSecret string, extra ...echo.MiddlewareFunc) {
	mw := append([]echo.MiddlewareFunc{middleware.OptionalJWTAuth(jwtSecret)}, extra...)
	g := e.Group("/api/meta", mw...)
	g.GET("/types", h.MediaTypes)
	g.GET("/ratings", h.RatingScale)
	g.GET("/genres", h.Genres)
}
