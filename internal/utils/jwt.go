package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding functions
	"errors"        // sentinel for rejected tokens
	"time"          // expiry computation

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// AccessToken represents a signed JWT access token along with its
// expiry. Access tokens are short-lived and sent in the Authorization
// header when calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived token used to obtain new
// access tokens. Raw is returned to the client; only its SHA-256
// hash is persisted.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// Identity is the set of claims the access token carries about a
// user. Sub is the user's UUID; username and email ride along so
// handlers can answer /me-style requests without a lookup.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// ErrInvalidToken is returned when an access token fails signature,
// expiry or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT for a user. The JWT
// includes sub, username, email, exp and iat claims.
func NewAccessToken(secret string, id Identity, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":      id.UserID,
		"username": id.Username,
		"email":    id.Email,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of a raw access
// token and extracts the identity claims. Only HMAC-signed tokens
// are accepted.
func ParseAccessToken(secret, raw string) (Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return Identity{}, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Identity{}, ErrInvalidToken
	}
	username, _ := claims["username"].(string)
	email, _ := claims["email"].(string)
	return Identity{UserID: sub, Username: username, Email: email}, nil
}

// NewRefreshToken returns a cryptographically secure random token and
// its expiration time. ttlDays controls how long it stays valid.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48) // 48 bytes -> 96 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the SHA-256 hash of the raw refresh token
// as a hex string. Storing only the hash keeps stolen database rows
// from being replayed as sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
