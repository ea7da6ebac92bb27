package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medialog/medialog/internal/config"
	"github.com/medialog/medialog/internal/repository/memory"
	"github.com/medialog/medialog/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4, // minimum cost keeps the tests fast
	}
}

func newAuthHandler() *AuthHandler {
	media := memory.NewMediaStore()
	return NewAuthHandler(testConfig(), memory.NewUserStore(media), memory.NewTokenStore())
}

// do runs an unauthenticated request through a handler.
func do(t *testing.T, method, path, body string, h echo.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	return doAs(t, "", method, path, body, nil, h)
}

func register(t *testing.T, h *AuthHandler, username string) map[string]any {
	t.Helper()
	body := `{"username":"` + username + `","email":"` + username + `@example.com","password":"secret1"}`
	rec, env := do(t, http.MethodPost, "/api/auth/register", body, h.Register)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", rec.Code, rec.Body.String())
	}
	return env["data"].(map[string]any)
}

func TestRegisterReturnsTokens(t *testing.T) {
	h := newAuthHandler()
	data := register(t, h, "ada")

	user := data["user"].(map[string]any)
	if user["username"] != "ada" || user["email"] != "ada@example.com" {
		t.Errorf("user = %+v", user)
	}
	if _, ok := user["password_hash"]; ok {
		t.Error("password hash must never be serialized")
	}
	if data["token"] == "" || data["refresh_token"] == "" {
		t.Error("register should return a token pair")
	}

	id, err := utils.ParseAccessToken("test-secret", data["token"].(string))
	if err != nil {
		t.Fatalf("returned access token invalid: %v", err)
	}
	if id.Username != "ada" {
		t.Errorf("token identity = %+v", id)
	}
}

func TestRegisterValidation(t *testing.T) {
	h := newAuthHandler()

	cases := []struct {
		name string
		body string
	}{
		{"missing username", `{"email":"a@b.c","password":"secret1"}`},
		{"missing email", `{"username":"ada","password":"secret1"}`},
		{"missing password", `{"username":"ada","email":"a@b.c"}`},
		{"short password", `{"username":"ada","email":"a@b.c","password":"12345"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := do(t, http.MethodPost, "/api/auth/register", tc.body, h.Register)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestRegisterDuplicate(t *testing.T) {
	h := newAuthHandler()
	register(t, h, "ada")

	rec, env := do(t, http.MethodPost, "/api/auth/register",
		`{"username":"ada","email":"other@example.com","password":"secret1"}`, h.Register)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if env["success"].(bool) {
		t.Error("envelope success should be false")
	}
}

func TestLogin(t *testing.T) {
	h := newAuthHandler()
	register(t, h, "ada")

	rec, env := do(t, http.MethodPost, "/api/auth/login",
		`{"username":"ada","password":"secret1"}`, h.Login)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	data := env["data"].(map[string]any)
	if data["token"] == "" {
		t.Error("login should return an access token")
	}

	rec, _ = do(t, http.MethodPost, "/api/auth/login",
		`{"username":"ada","password":"wrong-password"}`, h.Login)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", rec.Code)
	}
	rec, _ = do(t, http.MethodPost, "/api/auth/login",
		`{"username":"nobody","password":"secret1"}`, h.Login)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: status = %d, want 401", rec.Code)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	h := newAuthHandler()
	data := register(t, h, "ada")
	refresh := data["refresh_token"].(string)

	rec, env := do(t, http.MethodPost, "/api/auth/refresh",
		`{"refresh_token":"`+refresh+`"}`, h.Refresh)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh status = %d: %s", rec.Code, rec.Body.String())
	}
	next := env["data"].(map[string]any)["refresh_token"].(string)
	if next == refresh {
		t.Error("refresh must rotate the token")
	}

	// The old token is spent.
	rec, _ = do(t, http.MethodPost, "/api/auth/refresh",
		`{"refresh_token":"`+refresh+`"}`, h.Refresh)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("replayed token: status = %d, want 401", rec.Code)
	}

	// The rotated one works.
	rec, _ = do(t, http.MethodPost, "/api/auth/refresh",
		`{"refresh_token":"`+next+`"}`, h.Refresh)
	if rec.Code != http.StatusOK {
		t.Errorf("rotated token: status = %d, want 200", rec.Code)
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	h := newAuthHandler()
	data := register(t, h, "ada")
	refresh := data["refresh_token"].(string)

	rec, _ := do(t, http.MethodPost, "/api/auth/logout",
		`{"refresh_token":"`+refresh+`"}`, h.Logout)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rec.Code)
	}

	rec, _ = do(t, http.MethodPost, "/api/auth/refresh",
		`{"refresh_token":"`+refresh+`"}`, h.Refresh)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh after logout: status = %d, want 401", rec.Code)
	}
}

func TestMe(t *testing.T) {
	h := newAuthHandler()
	data := register(t, h, "ada")
	userID := data["user"].(map[string]any)["id"].(string)

	rec, env := doAs(t, userID, http.MethodGet, "/api/auth/me", "", nil, h.Me)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	user := env["data"].(map[string]any)["user"].(map[string]any)
	if user["id"] != userID {
		t.Errorf("me returned user %v", user["id"])
	}

	rec, _ = doAs(t, "", http.MethodGet, "/api/auth/me", "", nil, h.Me)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous me: status = %d, want 401", rec.Code)
	}
}

func TestUpdateMe(t *testing.T) {
	h := newAuthHandler()
	userID := register(t, h, "ada")["user"].(map[string]any)["id"].(string)
	register(t, h, "grace")

	rec, env := doAs(t, userID, http.MethodPut, "/api/auth/me",
		`{"username":"ada2","avatar_url":"https://example.com/a.png"}`, nil, h.UpdateMe)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	user := env["data"].(map[string]any)["user"].(map[string]any)
	if user["username"] != "ada2" || user["avatar_url"] != "https://example.com/a.png" {
		t.Errorf("user = %+v", user)
	}

	rec, _ = doAs(t, userID, http.MethodPut, "/api/auth/me",
		`{"username":"grace"}`, nil, h.UpdateMe)
	if rec.Code != http.StatusConflict {
		t.Errorf("taken username: status = %d, want 409", rec.Code)
	}
	rec, _ = doAs(t, userID, http.MethodPut, "/api/auth/me",
		`{"username":"  "}`, nil, h.UpdateMe)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank username: status = %d, want 400", rec.Code)
	}
}

func TestDeleteMe(t *testing.T) {
	h := newAuthHandler()
	data := register(t, h, "ada")
	userID := data["user"].(map[string]any)["id"].(string)
	refresh := data["refresh_token"].(string)

	rec, env := doAs(t, userID, http.MethodDelete, "/api/auth/me", "", nil, h.DeleteMe)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if msg, _ := env["message"].(string); !strings.Contains(msg, "deleted") {
		t.Errorf("message = %q", msg)
	}

	rec, _ = doAs(t, userID, http.MethodGet, "/api/auth/me", "", nil, h.Me)
	if rec.Code != http.StatusNotFound {
		t.Errorf("me after delete: status = %d, want 404", rec.Code)
	}
	rec, _ = do(t, http.MethodPost, "/api/auth/refresh",
		`{"refresh_token":"`+refresh+`"}`, h.Refresh)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("refresh after delete: status = %d, want 401", rec.Code)
	}
}

func TestEnvelopeShape(t *testing.T) {
	h := newAuthHandler()
	rec, _ := do(t, http.MethodPost, "/api/auth/login", `{"username":"x","password":"y"}`, h.Login)

	var env struct {
		Success bool    `json:"success"`
		Error   *string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Success || env.Error == nil {
		t.Errorf("failure envelope = %s", rec.Body.String())
	}
}
