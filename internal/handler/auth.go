package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medialog/medialog/internal/config"
	"github.com/medialog/medialog/internal/model"
	"github.com/medialog/medialog/internal/repository"
	"github.com/medialog/medialog/internal/utils"
)

// UserStore is the persistence surface the auth handlers need. Both
// the MySQL repository and the in-memory store satisfy it.
type UserStore interface {
	Create(ctx context.Context, username, email, password string, cost int) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ValidateCredentials(ctx context.Context, username, password string) (*model.User, error)
	Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error)
	Delete(ctx context.Context, id string) error
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, users UserStore, tokens TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

const minPasswordLen = 6

// issueTokens creates an access/refresh pair for a user and stores
// the refresh hash.
func (h *AuthHandler) issueTokens(ctx context.Context, u *model.User) (utils.AccessToken, utils.RefreshToken, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret,
		utils.Identity{UserID: u.ID, Username: u.Username, Email: u.Email}, h.Cfg.AccessTTLMin)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	return access, refresh, nil
}

// Register creates a user and returns tokens immediately.
// POST /api/auth/register
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "username, email and password are required")
	}
	if len(req.Password) < minPasswordLen {
		return fail(c, http.StatusBadRequest, "password must be at least 6 characters")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fail(c, http.StatusConflict, "username or email already exists")
		}
		return fail(c, http.StatusInternalServerError, "could not create user")
	}

	access, refresh, err := h.issueTokens(ctx, u)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue tokens")
	}
	return okData(c, http.StatusCreated, echo.Map{
		"user":          u,
		"token":         access.Token,
		"refresh_token": refresh.Raw, // raw goes back to the client, only the hash is stored
	})
}

// Login verifies credentials and returns a fresh token pair.
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return fail(c, http.StatusBadRequest, "username and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.ValidateCredentials(ctx, req.Username, req.Password)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	if u == nil {
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	access, refresh, err := h.issueTokens(ctx, u)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue tokens")
	}
	return okData(c, http.StatusOK, echo.Map{
		"user":          u,
		"token":         access.Token,
		"refresh_token": refresh.Raw,
	})
}

// Refresh validates a refresh token by hash, revokes it and issues a
// new pair (rotation).
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "refresh_token required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}

	access, refresh, err := h.issueTokens(ctx, u)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not issue tokens")
	}
	return okData(c, http.StatusOK, echo.Map{
		"token":         access.Token,
		"refresh_token": refresh.Raw,
	})
}

// Logout revokes sessions. With a refresh token in the body the
// matching session is revoked; with only a valid bearer token every
// session of the user goes. 204 on success either way.
// POST /api/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken != "" {
		hash := utils.HashRefreshRaw(refreshToken)
		if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
			return fail(c, http.StatusUnauthorized, "invalid refresh token")
		}
		if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
			return fail(c, http.StatusInternalServerError, "logout failed")
		}
		return c.NoContent(http.StatusNoContent)
	}

	// No refresh token: fall back to the bearer identity and revoke
	// all sessions for that user.
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimPrefix(auth, "Bearer ")
		if id, err := utils.ParseAccessToken(h.Cfg.JWTSecret, raw); err == nil {
			if err := h.Tokens.RevokeAllForUser(ctx, id.UserID); err != nil {
				return fail(c, http.StatusInternalServerError, "logout failed")
			}
			return c.NoContent(http.StatusNoContent)
		}
		return fail(c, http.StatusUnauthorized, "invalid token")
	}
	return fail(c, http.StatusBadRequest, "provide Authorization header or refresh_token")
}

// Me returns the authenticated user's profile.
// GET /api/auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okData(c, http.StatusOK, echo.Map{"user": u})
}

// UpdateMe applies the profile whitelist (username, email,
// avatar_url) to the authenticated user.
// PUT /api/auth/me
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var patch model.UserPatch
	if err := c.Bind(&patch); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if patch.Username != nil && strings.TrimSpace(*patch.Username) == "" {
		return fail(c, http.StatusBadRequest, "username cannot be empty")
	}
	if patch.Email != nil && strings.TrimSpace(*patch.Email) == "" {
		return fail(c, http.StatusBadRequest, "email cannot be empty")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Update(ctx, userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return fail(c, http.StatusNotFound, "user not found")
		case errors.Is(err, repository.ErrConflict):
			return fail(c, http.StatusConflict, "username or email already exists")
		}
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	return okData(c, http.StatusOK, echo.Map{"user": u})
}

// DeleteMe removes the account. Owned media items and their genre
// links are deleted by the store-level cascade.
// DELETE /api/auth/me
func (h *AuthHandler) DeleteMe(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
	_ = h.Tokens.RevokeAllForUser(ctx, userID)
	return okMessage(c, "account deleted")
}
