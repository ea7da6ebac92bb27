package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medialog/medialog/internal/config"
	"github.com/medialog/medialog/internal/handler"
	"github.com/medialog/medialog/internal/repository/memory"
)

func testServer(demo bool) (*echo.Echo, config.Config) {
	cfg := config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4,
		DemoMode:       demo,
		DemoUserID:     "demo-user-001",
	}
	media := memory.NewMediaStore()
	users := memory.NewUserStore(media)
	tokens := memory.NewTokenStore()

	e := echo.New()
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	RegisterMedia(e, handler.NewMediaHandler(media, media), cfg)
	RegisterMeta(e, handler.NewMetaHandler(media), cfg.JWTSecret)
	return e, cfg
}

func request(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("bad JSON: %v\n%s", err, rec.Body.String())
	}
	return env
}

func TestHealthz(t *testing.T) {
	e, _ := testServer(false)
	rec := request(e, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestFullUserJourney(t *testing.T) {
	e, _ := testServer(false)

	// The media routes demand a token.
	rec := request(e, http.MethodGet, "/api/media", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous list: status = %d, want 401", rec.Code)
	}

	rec = request(e, http.MethodPost, "/api/auth/register",
		`{"username":"ada","email":"ada@example.com","password":"secret1"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d: %s", rec.Code, rec.Body.String())
	}
	token := decode(t, rec)["data"].(map[string]any)["token"].(string)

	rec = request(e, http.MethodPost, "/api/media",
		`{"title":"Dune","media_type":"movie"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d: %s", rec.Code, rec.Body.String())
	}
	itemID := decode(t, rec)["data"].(map[string]any)["id"].(string)

	rec = request(e, http.MethodPost, "/api/media/"+itemID+"/watch", `{"rating":3}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("watch: status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = request(e, http.MethodGet, "/api/media/grouped", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("groups: status = %d", rec.Code)
	}
	movies := decode(t, rec)["data"].(map[string]any)["movie"].(map[string]any)
	if loved := movies["loved"].([]any); len(loved) != 1 {
		t.Errorf("loved bucket size = %d, want 1", len(loved))
	}

	rec = request(e, http.MethodGet, "/api/media/stats", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: status = %d", rec.Code)
	}
	stats := decode(t, rec)["data"].(map[string]any)
	if stats["total_items"].(float64) != 1 || stats["loved_count"].(float64) != 1 {
		t.Errorf("stats = %+v", stats)
	}

	// A second account cannot see or touch the first one's item.
	rec = request(e, http.MethodPost, "/api/auth/register",
		`{"username":"grace","email":"grace@example.com","password":"secret1"}`, "")
	other := decode(t, rec)["data"].(map[string]any)["token"].(string)
	rec = request(e, http.MethodGet, "/api/media/"+itemID, "", other)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user get: status = %d, want 404", rec.Code)
	}
	rec = request(e, http.MethodDelete, "/api/media/"+itemID, "", other)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-user delete: status = %d, want 404", rec.Code)
	}
}

func TestDemoModeSkipsAuth(t *testing.T) {
	e, cfg := testServer(true)

	rec := request(e, http.MethodPost, "/api/media",
		`{"title":"Hades","media_type":"game"}`, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("demo create: status = %d: %s", rec.Code, rec.Body.String())
	}
	item := decode(t, rec)["data"].(map[string]any)
	if item["user_id"] != cfg.DemoUserID {
		t.Errorf("demo item owner = %v, want %s", item["user_id"], cfg.DemoUserID)
	}

	rec = request(e, http.MethodGet, "/api/media", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("demo list: status = %d", rec.Code)
	}
	if decode(t, rec)["count"].(float64) != 1 {
		t.Error("demo list should see the demo user's item")
	}

	// Auth endpoints still work normally in demo mode.
	rec = request(e, http.MethodGet, "/api/auth/me", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("demo /me without token: status = %d, want 401", rec.Code)
	}
}

func TestMetaRoutesArePublic(t *testing.T) {
	e, _ := testServer(false)

	for path, want := range map[string]int{
		"/api/meta/types":   3,
		"/api/meta/ratings": 4,
		"/api/meta/genres":  10,
	} {
		rec := request(e, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", path, rec.Code)
		}
		if n := decode(t, rec)["count"].(float64); int(n) != want {
			t.Errorf("%s: count = %v, want %d", path, n, want)
		}
	}
}
