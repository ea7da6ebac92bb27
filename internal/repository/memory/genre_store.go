package memory

import (
	"context"
	"sort"

	"github.com/medialog/medialog/internal/model"
	"github.com/medialog/medialog/internal/repository"
)

// Seeded reference data, matching what database.InitSchema inserts.
var (
	seededTypes = []model.MediaType{
		{ID: 1, Name: model.MediaTypeMovie, DisplayName: "Movies"},
		{ID: 2, Name: model.MediaTypeSeries, DisplayName: "Series"},
		{ID: 3, Name: model.MediaTypeGame, DisplayName: "Games"},
	}
	seededRatings = []model.RatingLevel{
		{ID: 1, Value: 0, Label: "unrated", Description: "Watched but not rated yet"},
		{ID: 2, Value: 1, Label: "disliked", Description: "Did not enjoy it"},
		{ID: 3, Value: 2, Label: "liked", Description: "Enjoyed it"},
		{ID: 4, Value: 3, Label: "loved", Description: "Would recommend to anyone"},
	}
	seededGenres = []model.Genre{
		{ID: 1, Name: "action"}, {ID: 2, Name: "adventure"}, {ID: 3, Name: "comedy"},
		{ID: 4, Name: "drama"}, {ID: 5, Name: "fantasy"}, {ID: 6, Name: "horror"},
		{ID: 7, Name: "mystery"}, {ID: 8, Name: "sci-fi"}, {ID: 9, Name: "thriller"},
		{ID: 10, Name: "documentary"},
	}
)

func (s *MediaStore) ListMediaTypes(ctx context.Context) ([]model.MediaType, error) {
	out := make([]model.MediaType, len(seededTypes))
	copy(out, seededTypes)
	return out, nil
}

func (s *MediaStore) ListRatingScale(ctx context.Context) ([]model.RatingLevel, error) {
	out := make([]model.RatingLevel, len(seededRatings))
	copy(out, seededRatings)
	return out, nil
}

func (s *MediaStore) ListGenres(ctx context.Context) ([]model.Genre, error) {
	out := make([]model.Genre, len(seededGenres))
	copy(out, seededGenres)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MediaStore) ItemGenres(ctx context.Context, itemID, userID string) ([]model.Genre, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.get(itemID, userID); err != nil {
		return nil, err
	}
	out := []model.Genre{}
	for _, gid := range s.genres[itemID] {
		if g, ok := genreByID(gid); ok {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MediaStore) SetItemGenres(ctx context.Context, itemID, userID string, genreIDs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(itemID, userID); err != nil {
		return err
	}
	// Reject unknown ids up front, the way the foreign key would.
	seen := make(map[int]bool, len(genreIDs))
	links := make([]int, 0, len(genreIDs))
	for _, gid := range genreIDs {
		if _, ok := genreByID(gid); !ok {
			return repository.ErrNotFound
		}
		if !seen[gid] {
			seen[gid] = true
			links = append(links, gid)
		}
	}
	s.genres[itemID] = links
	return nil
}

func genreByID(id int) (model.Genre, bool) {
	for _, g := range seededGenres {
		if g.ID == id {
			return g, true
		}
	}
	return model.Genre{}, false
}
