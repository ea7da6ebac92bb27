package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/medialog/medialog/internal/model"
	"github.com/medialog/medialog/internal/utils"
)

// UserRepo provides persistence for the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, username, email, password_hash, avatar_url, created_at, updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	var avatar sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &avatar, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	return &u, nil
}

// Create inserts a user with a freshly generated UUID and a bcrypt
// hash of the password. Username and email are normalized before the
// insert; a duplicate of either yields ErrConflict.
func (r *UserRepo) Create(ctx context.Context, username, email, password string, cost int) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users (id, username, email, password_hash) VALUES (?,?,?,?)",
		id, username, email, hash)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username)))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		strings.ToLower(strings.TrimSpace(email))))
}

// ValidateCredentials looks a user up by username and compares the
// password against the stored bcrypt hash. A wrong username or
// password returns (nil, nil); errors are reserved for store
// failures so callers can't tell the two rejection cases apart.
func (r *UserRepo) ValidateCredentials(ctx context.Context, username, password string) (*model.User, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, nil
	}
	u.PasswordHash = ""
	return u, nil
}

// Update applies the profile whitelist (username, email, avatar_url)
// and bumps updated_at. Nil patch fields are skipped; an empty patch
// just re-reads the row. Uniqueness violations map to ErrConflict,
// a missing row to ErrNotFound.
func (r *UserRepo) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	set := []string{}
	args := []any{}
	if patch.Username != nil {
		set = append(set, "username=?")
		args = append(args, strings.TrimSpace(*patch.Username))
	}
	if patch.Email != nil {
		set = append(set, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*patch.Email)))
	}
	if patch.AvatarURL != nil {
		set = append(set, "avatar_url=?")
		args = append(args, *patch.AvatarURL)
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	set = append(set, "updated_at=CURRENT_TIMESTAMP")
	args = append(args, id)

	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	// RowsAffected is 0 both for a missing row and for identical
	// values; the re-read maps the former to ErrNotFound.
	return r.GetByID(ctx, id)
}

// Delete removes a user. Owned media items and their genre links go
// with it via ON DELETE CASCADE. Returns ErrNotFound when no row
// matched.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
