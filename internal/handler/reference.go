package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// MetaHandler serves the seeded lookup tables. The routes are public.
type MetaHandler struct {
	Store GenreStore
}

func NewMetaHandler(store GenreStore) *MetaHandler {
	return &MetaHandler{Store: store}
}

// MediaTypes lists the supported media types.
// GET /api/meta/types
func (h *MetaHandler) MediaTypes(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	types, err := h.Store.ListMediaTypes(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, types, len(types))
}

// RatingScale lists the rating levels with their labels.
// GET /api/meta/ratings
func (h *MetaHandler) RatingScale(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	scale, err := h.Store.ListRatingScale(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, scale, len(scale))
}

// Genres lists the seeded genre catalogue.
// GET /api/meta/genres
func (h *MetaHandler) Genres(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	genres, err := h.Store.ListGenres(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, genres, len(genres))
}
