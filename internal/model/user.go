package model

import "time"

// User represents an application user record as stored in the
// `users` table. PasswordHash is never serialized; handlers that
// need a public projection rely on the json tags here.
//
// Fields:
//
//	ID           – UUID primary key of the user.
//	Username     – unique display name used for login.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password (internal only).
//	AvatarURL    – optional profile image URL.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserPatch carries the profile fields a user may change. Nil
// pointers mean "leave untouched"; the whitelist is fixed here so
// no other column can be reached through the update path.
type UserPatch struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	AvatarURL *string `json:"avatar_url"`
}

// RefreshToken models an entry in the `refresh_tokens` table. Only
// the SHA-256 hash of the raw token is persisted.
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – owner of the token.
//	TokenHash – SHA-256 hex digest of the token value.
//	ExpiresAt – expiration timestamp of the token.
//	RevokedAt – when the token was revoked (null if still active).
//	CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
