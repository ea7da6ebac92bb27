package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medialog/medialog/internal/model"
	"github.com/medialog/medialog/internal/repository"
	"github.com/medialog/medialog/internal/utils"
)

// UserStore keeps users in a map guarded by a RWMutex and enforces
// the same username/email uniqueness the MySQL schema does. An
// optional MediaStore link replays the user-delete cascade.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]model.User
	media *MediaStore // may be nil; set to cascade item deletion
}

func NewUserStore(media *MediaStore) *UserStore {
	return &UserStore{users: make(map[string]model.User), media: media}
}

func (s *UserStore) Create(ctx context.Context, username, email, password string, cost int) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.taken(username, email, "") {
		return nil, repository.ErrConflict
	}
	now := time.Now().UTC()
	u := model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	out := u
	return &out, nil
}

// taken assumes the lock is held; exclude skips one user id so
// updates don't conflict with themselves.
func (s *UserStore) taken(username, email, exclude string) bool {
	for id, u := range s.users {
		if id == exclude {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := u
	return &out, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	username = strings.TrimSpace(username)
	for _, u := range s.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *UserStore) ValidateCredentials(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, nil
	}
	u.PasswordHash = ""
	return u, nil
}

func (s *UserStore) Update(ctx context.Context, id string, patch model.UserPatch) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	username := u.Username
	email := u.Email
	if patch.Username != nil {
		username = strings.TrimSpace(*patch.Username)
	}
	if patch.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if s.taken(username, email, id) {
		return nil, repository.ErrConflict
	}
	u.Username = username
	u.Email = email
	if patch.AvatarURL != nil {
		v := *patch.AvatarURL
		u.AvatarURL = &v
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	out := u
	return &out, nil
}

func (s *UserStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if _, ok := s.users[id]; !ok {
		s.mu.Unlock()
		return repository.ErrNotFound
	}
	delete(s.users, id)
	s.mu.Unlock()

	if s.media != nil {
		s.media.DeleteAllForUser(ctx, id)
	}
	return nil
}
