// Package memory provides map-backed implementations of the store
// interfaces. They mirror the MySQL repositories' semantics closely
// enough to drive handler and invariant tests without a database,
// and can serve as a throwaway backend for local experiments.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medialog/medialog/internal/model"
	"github.com/medialog/medialog/internal/repository"
)

// MediaStore keeps media items in a map guarded by a RWMutex.
// Insertion order is tracked separately so listings stay stable for
// equal sort keys, matching the SQL repositories' id tiebreaker.
type MediaStore struct {
	mu     sync.RWMutex
	items  map[string]model.MediaItem
	order  []string
	genres map[string][]int // item id -> linked genre ids
}

func NewMediaStore() *MediaStore {
	return &MediaStore{
		items:  make(map[string]model.MediaItem),
		genres: make(map[string][]int),
	}
}

func (s *MediaStore) Create(ctx context.Context, userID string, in model.NewMediaItem) (*model.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	m := model.MediaItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     strings.TrimSpace(in.Title),
		MediaType: in.MediaType,
		Note:      in.Note,
		Reason:    in.Reason,
		Rating:    in.Rating,
		Watched:   in.Watched,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Watched {
		t := now
		m.WatchDate = &t
	}
	s.items[m.ID] = m
	s.order = append(s.order, m.ID)
	out := m
	return &out, nil
}

func (s *MediaStore) GetByID(ctx context.Context, id, userID string) (*model.MediaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(id, userID)
}

// get assumes the lock is held.
func (s *MediaStore) get(id, userID string) (*model.MediaItem, error) {
	m, ok := s.items[id]
	if !ok || m.UserID != userID {
		return nil, repository.ErrNotFound
	}
	out := m
	return &out, nil
}

func (s *MediaStore) List(ctx context.Context, userID string, f model.MediaFilter) ([]model.MediaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.MediaItem{}
	for _, id := range s.order {
		m := s.items[id]
		if m.UserID != userID {
			continue
		}
		if f.MediaType != "" && m.MediaType != f.MediaType {
			continue
		}
		if f.Watched != nil && m.Watched != *f.Watched {
			continue
		}
		if f.Rating != nil && (m.Rating == nil || *m.Rating != *f.Rating) {
			continue
		}
		out = append(out, m)
	}
	sortItems(out, f.SortColumn(), f.SortDirection())
	return out, nil
}

// sortItems orders the slice by the whitelisted column. SliceStable
// preserves insertion order for equal keys.
func sortItems(items []model.MediaItem, column, direction string) {
	less := func(a, b model.MediaItem) bool {
		switch column {
		case "title":
			return a.Title < b.Title
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		case "rating":
			return ratingKey(a) < ratingKey(b)
		case "watched":
			return !a.Watched && b.Watched
		default: // created_at
			return a.CreatedAt.Before(b.CreatedAt)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if direction == "ASC" {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

// ratingKey sorts NULL ratings first the way MySQL does for ASC.
func ratingKey(m model.MediaItem) int {
	if m.Rating == nil {
		return -1
	}
	return *m.Rating
}

func (s *MediaStore) Grouped(ctx context.Context, userID string) (model.GroupedMedia, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Single pass partition; the SQL repository issues targeted
	// sub-queries instead, but the contract is only the output
	// shape and the bucket boundaries.
	grouped := model.NewGroupedMedia()
	newestFirst := make([]string, len(s.order))
	copy(newestFirst, s.order)
	for i, j := 0, len(newestFirst)-1; i < j; i, j = i+1, j-1 {
		newestFirst[i], newestFirst[j] = newestFirst[j], newestFirst[i]
	}
	for _, id := range newestFirst {
		m := s.items[id]
		if m.UserID != userID {
			continue
		}
		g, ok := grouped[m.MediaType]
		if !ok {
			continue
		}
		g.Counts.Total++
		switch m.Bucket() {
		case "loved":
			g.Loved = append(g.Loved, m)
			g.Counts.Loved++
		case "liked":
			g.Liked = append(g.Liked, m)
			g.Counts.Liked++
		case "disliked":
			g.Disliked = append(g.Disliked, m)
			g.Counts.Disliked++
		case "unrated":
			g.Unrated = append(g.Unrated, m)
			g.Counts.Unrated++
		case "watchlist":
			g.Watchlist = append(g.Watchlist, m)
			g.Counts.Watchlist++
		}
	}
	return grouped, nil
}

func (s *MediaStore) Stats(ctx context.Context, userID string) (*model.MediaStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var st model.MediaStats
	for _, m := range s.items {
		if m.UserID != userID {
			continue
		}
		st.Total++
		if !m.Watched {
			st.Watchlist++
			continue
		}
		st.Watched++
		switch m.Bucket() {
		case "loved":
			st.Loved++
		case "liked":
			st.Liked++
		case "disliked":
			st.Disliked++
		case "unrated":
			st.Unrated++
		}
	}
	return &st, nil
}

func (s *MediaStore) Search(ctx context.Context, userID, query string) ([]model.MediaItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	out := []model.MediaItem{}
	for i := len(s.order) - 1; i >= 0; i-- { // newest first
		m := s.items[s.order[i]]
		if m.UserID != userID {
			continue
		}
		if containsFold(m.Title, q) || containsFoldPtr(m.Note, q) || containsFoldPtr(m.Reason, q) {
			out = append(out, m)
		}
	}
	return out, nil
}

func containsFold(s, lowered string) bool {
	return strings.Contains(strings.ToLower(s), lowered)
}

func containsFoldPtr(s *string, lowered string) bool {
	return s != nil && containsFold(*s, lowered)
}

func (s *MediaStore) Update(ctx context.Context, id, userID string, patch model.MediaPatch) (*model.MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.items[id]
	if !ok || m.UserID != userID {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		m.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.MediaType != nil {
		m.MediaType = *patch.MediaType
	}
	if patch.Note != nil {
		v := *patch.Note
		m.Note = &v
	} else if patch.ClearNote {
		m.Note = nil
	}
	if patch.Reason != nil {
		v := *patch.Reason
		m.Reason = &v
	} else if patch.ClearReason {
		m.Reason = nil
	}
	if patch.Rating != nil {
		v := *patch.Rating
		m.Rating = &v
	} else if patch.ClearRating {
		m.Rating = nil
	}
	if patch.Watched != nil {
		m.Watched = *patch.Watched
		if m.Watched {
			if m.WatchDate == nil {
				t := time.Now().UTC()
				m.WatchDate = &t
			}
		} else {
			m.WatchDate = nil
		}
	}
	m.UpdatedAt = time.Now().UTC()
	s.items[id] = m
	out := m
	return &out, nil
}

func (s *MediaStore) MarkWatched(ctx context.Context, id, userID string, rating int) (*model.MediaItem, error) {
	watched := true
	return s.Update(ctx, id, userID, model.MediaPatch{Watched: &watched, Rating: &rating})
}

func (s *MediaStore) Delete(ctx context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.items[id]
	if !ok || m.UserID != userID {
		return false, nil
	}
	delete(s.items, id)
	delete(s.genres, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// DeleteAllForUser mirrors the store-level ON DELETE CASCADE that
// fires when a user account is removed.
func (s *MediaStore) DeleteAllForUser(ctx context.Context, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.order[:0]
	for _, id := range s.order {
		if s.items[id].UserID == userID {
			delete(s.items, id)
			delete(s.genres, id)
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}
