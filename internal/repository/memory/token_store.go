package memory

import (
	"context"
	"sync"
	"time"

	"github.com/medialog/medialog/internal/repository"
)

// TokenStore keeps refresh token hashes in memory with the same
// validate/revoke semantics as the MySQL repository.
type TokenStore struct {
	mu     sync.Mutex
	tokens map[string]tokenEntry // hash -> entry
}

type tokenEntry struct {
	userID    string
	expiresAt time.Time
	revoked   bool
}

func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]tokenEntry)}
}

func (s *TokenStore) StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenHash] = tokenEntry{userID: userID, expiresAt: exp}
	return nil
}

func (s *TokenStore) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tokens[tokenHash]
	if !ok || e.revoked || time.Now().UTC().After(e.expiresAt) {
		return "", repository.ErrNotFound
	}
	return e.userID, nil
}

func (s *TokenStore) RevokeByHash(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.tokens[tokenHash]; ok {
		e.revoked = true
		s.tokens[tokenHash] = e
	}
	return nil
}

func (s *TokenStore) RevokeAllForUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, e := range s.tokens {
		if e.userID == userID {
			e.revoked = true
			s.tokens[h] = e
		}
	}
	return nil
}
