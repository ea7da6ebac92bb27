package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medialog/medialog/internal/config"
)

func cacheCtx(userID, path, query string) echo.Context {
	e := echo.New()
	target := path
	if query != "" {
		target += "?" + query
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath(path)
	if userID != "" {
		c.Set(CtxUserID, userID)
	}
	return c
}

func TestCacheKeySeparatesUsers(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_route_query"}

	a := cacheKeyFrom(cfg, cacheCtx("u1", "/api/media/grouped", ""))
	b := cacheKeyFrom(cfg, cacheCtx("u2", "/api/media/grouped", ""))
	if a == b {
		t.Fatal("two users share a cache key")
	}

	// Same user, same route, same query: stable key.
	c := cacheKeyFrom(cfg, cacheCtx("u1", "/api/media/grouped", ""))
	if a != c {
		t.Error("cache key is not deterministic")
	}

	// Query string participates in the key.
	d := cacheKeyFrom(cfg, cacheCtx("u1", "/api/media", "type=movie"))
	e := cacheKeyFrom(cfg, cacheCtx("u1", "/api/media", "type=game"))
	if d == e {
		t.Error("different queries share a cache key")
	}
}

// Mutations purge by the plain-text scope segment, so every key a
// user's GETs produce must sit under that user's scope prefix.
func TestCacheKeyScopeIsMatchable(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_route_query"}

	for _, route := range []string{"/api/media", "/api/media/grouped", "/api/media/stats"} {
		key := cacheKeyFrom(cfg, cacheCtx("u1", route, ""))
		if !strings.HasPrefix(key, "cache:u1:") {
			t.Errorf("key %q not under scope cache:u1:", key)
		}
	}

	shared := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
	key := cacheKeyFrom(shared, cacheCtx("u1", "/api/meta/genres", ""))
	if !strings.HasPrefix(key, "cache:shared:") {
		t.Errorf("key %q not under the shared scope", key)
	}
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	body := []byte(`{"success":true}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	status, gotHdr, gotBody, ok := decodePayload(payload)
	if !ok {
		t.Fatal("decode rejected its own encoding")
	}
	if status != http.StatusOK || gotHdr.Get("Content-Type") != "application/json" || string(gotBody) != string(body) {
		t.Errorf("round trip: status=%d hdr=%v body=%s", status, gotHdr, gotBody)
	}

	if _, _, _, ok := decodePayload([]byte("short")); ok {
		t.Error("truncated payload should be rejected")
	}
}

func TestCacheDisabledPassesThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/media", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := mw(func(c echo.Context) error {
		called = true
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil || !called || rec.Code != http.StatusOK {
		t.Errorf("pass-through broken: err=%v called=%v status=%d", err, called, rec.Code)
	}
	if rec.Header().Get("X-Cache") != "" {
		t.Error("disabled cache should not tag responses")
	}
}
