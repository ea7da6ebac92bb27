package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/medialog/medialog/internal/utils"
)

const testSecret = "test-secret"

// identityEcho is a terminal handler that reports what the middleware
// left in context.
func identityEcho(c echo.Context) error {
	id, _ := c.Get(CtxUserID).(string)
	return c.JSON(http.StatusOK, echo.Map{"user_id": id})
}

func runWith(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := mw(identityEcho)(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec
}

func validToken(t *testing.T) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, utils.Identity{UserID: "u1", Username: "ada", Email: "ada@example.com"}, 15)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok.Token
}

func TestJWTAuthValidToken(t *testing.T) {
	rec := runWith(t, JWTAuth(testSecret), "Bearer "+validToken(t))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if body := rec.Body.String(); !strings.Contains(body, `"user_id":"u1"`) {
		t.Errorf("identity not propagated: %s", body)
	}
}

func TestJWTAuthRejects(t *testing.T) {
	expired, err := utils.NewAccessToken(testSecret, utils.Identity{UserID: "u1"}, -5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	wrongSecret, err := utils.NewAccessToken("other-secret", utils.Identity{UserID: "u1"}, 15)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"empty bearer", "Bearer "},
		{"garbage token", "Bearer not.a.jwt"},
		{"expired", "Bearer " + expired.Token},
		{"wrong secret", "Bearer " + wrongSecret.Token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := runWith(t, JWTAuth(testSecret), tc.header)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
		})
	}
}

func TestOptionalJWTAuth(t *testing.T) {
	// Valid token attaches the identity.
	rec := runWith(t, OptionalJWTAuth(testSecret), "Bearer "+validToken(t))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"user_id":"u1"`) {
		t.Errorf("valid token: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	// Absent and invalid tokens both pass through anonymously.
	for _, header := range []string{"", "Bearer not.a.jwt"} {
		rec := runWith(t, OptionalJWTAuth(testSecret), header)
		if rec.Code != http.StatusOK {
			t.Errorf("header %q: status = %d, want 200", header, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"user_id":""`) {
			t.Errorf("header %q: unexpected identity: %s", header, rec.Body.String())
		}
	}
}

func TestDemoUserPinsIdentity(t *testing.T) {
	rec := runWith(t, DemoUser("demo-user-001"), "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"user_id":"demo-user-001"`) {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
