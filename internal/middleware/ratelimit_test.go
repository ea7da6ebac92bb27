package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medialog/medialog/internal/config"
)

func rateCtx(t *testing.T, userID string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/media/grouped", nil)
	req.RemoteAddr = "203.0.113.7:5000"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/api/media/grouped")
	if userID != "" {
		c.Set(CtxUserID, userID)
	}
	return c
}

// The limiter is registered behind the auth guard, so the key must
// carry the authenticated user id rather than the guest fallback.
func TestRateKeyScopesToUser(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}

	authed := buildRateKey(cfg, rateCtx(t, "u1"))
	anon := buildRateKey(cfg, rateCtx(t, ""))

	if !strings.Contains(authed, "user:u1") {
		t.Errorf("key = %q, want user id in it", authed)
	}
	if !strings.Contains(anon, "user:guest") {
		t.Errorf("key = %q, want guest fallback", anon)
	}
	if authed == anon {
		t.Error("authenticated and anonymous requests share a rate key")
	}
}

func TestRateKeyStrategies(t *testing.T) {
	c := rateCtx(t, "u1")
	cases := []struct {
		strategy string
		want     []string
	}{
		{"ip", []string{"ip:203.0.113.7"}},
		{"user", []string{"user:u1"}},
		{"ip_user", []string{"ip:203.0.113.7", "user:u1"}},
		{"user_route", []string{"user:u1", "route:GET /api/media/grouped"}},
		{"ip_user_route", []string{"ip:203.0.113.7", "user:u1", "route:GET /api/media/grouped"}},
	}
	for _, tc := range cases {
		key := buildRateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: tc.strategy}, c)
		for _, part := range tc.want {
			if !strings.Contains(key, part) {
				t.Errorf("strategy %s: key = %q, missing %q", tc.strategy, key, part)
			}
		}
	}
}

func TestTokenBucketDisabledPassesThrough(t *testing.T) {
	for _, cfg := range []config.RateLimitConfig{
		{Enabled: false},
		{Enabled: true}, // no redis client
	} {
		mw := NewTokenBucket(cfg, nil)
		called := false
		h := mw(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})
		c := rateCtx(t, "u1")
		if err := h(c); err != nil {
			t.Fatalf("handler: %v", err)
		}
		if !called {
			t.Error("next handler not reached")
		}
	}
}
