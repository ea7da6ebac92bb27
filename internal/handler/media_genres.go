package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medialog/medialog/internal/repository"
)

type setGenresReq struct {
	GenreIDs []int `json:"genre_ids"`
}

// ItemGenres lists the genres attached to one of the user's items.
// GET /api/media/:id/genres
func (h *MediaHandler) ItemGenres(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	genres, err := h.Genres.ItemGenres(ctx, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "media item not found")
		}
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, genres, len(genres))
}

// SetItemGenres replaces the item's genre set in one transaction. An
// empty genre_ids list clears it.
// PUT /api/media/:id/genres
func (h *MediaHandler) SetItemGenres(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	var req setGenresReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Genres.SetItemGenres(ctx, c.Param("id"), userID, req.GenreIDs); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fail(c, http.StatusNotFound, "media item or genre not found")
		}
		return fail(c, http.StatusInternalServerError, "update failed")
	}

	genres, err := h.Genres.ItemGenres(ctx, c.Param("id"), userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, genres, len(genres))
}
