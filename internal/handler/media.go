package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medialog/medialog/internal/model"
	"github.com/medialog/medialog/internal/queue"
	"github.com/medialog/medialog/internal/repository"
)

// MediaStore is the persistence surface for media items. The MySQL
// repository and the in-memory store both satisfy it.
type MediaStore interface {
	Create(ctx context.Context, userID string, in model.NewMediaItem) (*model.MediaItem, error)
	GetByID(ctx context.Context, id, userID string) (*model.MediaItem, error)
	List(ctx context.Context, userID string, f model.MediaFilter) ([]model.MediaItem, error)
	Grouped(ctx context.Context, userID string) (model.GroupedMedia, error)
	Stats(ctx context.Context, userID string) (*model.MediaStats, error)
	Search(ctx context.Context, userID, query string) ([]model.MediaItem, error)
	Update(ctx context.Context, id, userID string, patch model.MediaPatch) (*model.MediaItem, error)
	MarkWatched(ctx context.Context, id, userID string, rating int) (*model.MediaItem, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// GenreStore covers the seeded lookup tables and the item-genre
// junction.
type GenreStore interface {
	ListMediaTypes(ctx context.Context) ([]model.MediaType, error)
	ListRatingScale(ctx context.Context) ([]model.RatingLevel, error)
	ListGenres(ctx context.Context) ([]model.Genre, error)
	ItemGenres(ctx context.Context, itemID, userID string) ([]model.Genre, error)
	SetItemGenres(ctx context.Context, itemID, userID string, genreIDs []int) error
}

// MediaHandler bundles dependencies for the media item endpoints.
// PublishWatched is optional; when set it receives an event after a
// successful watch transition and its failures are only logged.
type MediaHandler struct {
	Items          MediaStore
	Genres         GenreStore
	PublishWatched func(ctx context.Context, ev queue.MediaWatchedEvent) error
}

func NewMediaHandler(items MediaStore, genres GenreStore) *MediaHandler {
	if items == nil || genres == nil {
		panic("nil store passed to NewMediaHandler")
	}
	return &MediaHandler{Items: items, Genres: genres}
}

// ----- DTOs -----

type createMediaReq struct {
	Title     string  `json:"title"`
	MediaType string  `json:"media_type"`
	Note      *string `json:"note"`
	Reason    *string `json:"reason"`
	Watched   bool    `json:"watched"`
	Rating    *int    `json:"rating"`
}

// updateMediaReq is the fixed external-to-internal field mapping for
// partial updates. Fields not present here are not updatable.
type updateMediaReq struct {
	Title     *string `json:"title"`
	MediaType *string `json:"media_type"`
	Note      *string `json:"note"`
	Reason    *string `json:"reason"`
	Rating    *int    `json:"rating"`
	Watched   *bool   `json:"watched"`
}

type watchReq struct {
	Rating *int `json:"rating"`
}

// explicitNulls reports which top-level fields arrived as a JSON
// null. The pointer DTO cannot tell null from absent, and for the
// nullable columns (note, reason, rating) null means "clear".
func explicitNulls(body []byte) map[string]bool {
	var raw map[string]json.RawMessage
	if json.Unmarshal(body, &raw) != nil {
		return nil
	}
	out := map[string]bool{}
	for k, v := range raw {
		if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			out[k] = true
		}
	}
	return out
}

// Create adds a new item to the user's list.
// POST /api/media
func (h *MediaHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req createMediaReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.MediaType == "" {
		return fail(c, http.StatusBadRequest, "title and media_type are required")
	}
	if !model.ValidMediaType(req.MediaType) {
		return fail(c, http.StatusBadRequest, "media_type must be one of: movie, series, game")
	}
	if req.Rating != nil && !model.ValidRating(*req.Rating) {
		return fail(c, http.StatusBadRequest, "rating must be between 0 and 3")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	item, err := h.Items.Create(ctx, userID, model.NewMediaItem{
		Title:     req.Title,
		MediaType: req.MediaType,
		Note:      req.Note,
		Reason:    req.Reason,
		Watched:   req.Watched,
		Rating:    req.Rating,
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "could not create media item")
	}
	return okData(c, http.StatusCreated, item)
}

// GetByID returns one item, scoped to its owner.
// GET /api/media/:id
func (h *MediaHandler) GetByID(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	item, err := h.Items.GetByID(ctx, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "media item not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okData(c, http.StatusOK, item)
}

// Update applies a partial update. Unknown JSON fields are dropped by
// the DTO, an explicit null clears note, reason or rating, and
// validation happens before any store mutation.
// PUT /api/media/:id
func (h *MediaHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	var req updateMediaReq
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return fail(c, http.StatusBadRequest, "invalid body")
		}
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return fail(c, http.StatusBadRequest, "title cannot be empty")
	}
	if req.MediaType != nil && !model.ValidMediaType(*req.MediaType) {
		return fail(c, http.StatusBadRequest, "media_type must be one of: movie, series, game")
	}
	if req.Rating != nil && !model.ValidRating(*req.Rating) {
		return fail(c, http.StatusBadRequest, "rating must be between 0 and 3")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	nulls := explicitNulls(body)
	item, err := h.Items.Update(ctx, c.Param("id"), userID, model.MediaPatch{
		Title:       req.Title,
		MediaType:   req.MediaType,
		Note:        req.Note,
		Reason:      req.Reason,
		Rating:      req.Rating,
		Watched:     req.Watched,
		ClearNote:   nulls["note"],
		ClearReason: nulls["reason"],
		ClearRating: nulls["rating"],
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "media item not found")
		}
		return fail(c, http.StatusInternalServerError, "update failed")
	}
	return okData(c, http.StatusOK, item)
}

// Watch marks an item watched with a required rating and emits a
// MediaWatchedEvent for downstream consumers.
// POST /api/media/:id/watch
func (h *MediaHandler) Watch(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req watchReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if req.Rating == nil {
		return fail(c, http.StatusBadRequest, "rating is required when marking as watched")
	}
	if !model.ValidRating(*req.Rating) {
		return fail(c, http.StatusBadRequest, "rating must be between 0 and 3")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	item, err := h.Items.MarkWatched(ctx, c.Param("id"), userID, *req.Rating)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "media item not found")
		}
		return fail(c, http.StatusInternalServerError, "update failed")
	}

	if h.PublishWatched != nil {
		ev := queue.MediaWatchedEvent{
			ItemID:    item.ID,
			UserID:    item.UserID,
			Title:     item.Title,
			MediaType: item.MediaType,
			Rating:    *req.Rating,
			WatchedAt: time.Now().UTC().Format(time.RFC3339),
		}
		// The broker must never fail the request; publish in the
		// background and only log errors.
		go func() {
			pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer pubCancel()
			if err := h.PublishWatched(pubCtx, ev); err != nil {
				log.Printf("publish media.watched failed: %v", err)
			}
		}()
	}
	return okData(c, http.StatusOK, item)
}

// Delete removes an item. A second delete of the same id reports not
// found rather than an error.
// DELETE /api/media/:id
func (h *MediaHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	deleted, err := h.Items.Delete(ctx, c.Param("id"), userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "delete failed")
	}
	if !deleted {
		return fail(c, http.StatusNotFound, "media item not found")
	}
	return okMessage(c, "media item deleted successfully")
}
