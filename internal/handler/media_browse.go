package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/medialog/medialog/internal/model"
)

// List returns the user's items with optional filters and sorting.
// GET /api/media?type=&watched=&rating=&sortBy=&sortOrder=
func (h *MediaHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	var f model.MediaFilter
	f.SortBy = c.QueryParam("sortBy")
	f.SortOrder = c.QueryParam("sortOrder")

	if t := c.QueryParam("type"); t != "" {
		if !model.ValidMediaType(t) {
			return fail(c, http.StatusBadRequest, "media_type must be one of: movie, series, game")
		}
		f.MediaType = t
	}
	if w := c.QueryParam("watched"); w != "" {
		b, err := strconv.ParseBool(w)
		if err != nil {
			return fail(c, http.StatusBadRequest, "watched must be true or false")
		}
		f.Watched = &b
	}
	if r := c.QueryParam("rating"); r != "" {
		n, err := strconv.Atoi(r)
		if err != nil || !model.ValidRating(n) {
			return fail(c, http.StatusBadRequest, "rating must be between 0 and 3")
		}
		f.Rating = &n
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Items.List(ctx, userID, f)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, items, len(items))
}

// Grouped returns every item partitioned by media type and bucket,
// plus the per-bucket counts.
// GET /api/media/grouped
func (h *MediaHandler) Grouped(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	grouped, err := h.Items.Grouped(ctx, userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okData(c, http.StatusOK, grouped)
}

// Stats returns aggregate counts for the user's collection.
// GET /api/media/stats
func (h *MediaHandler) Stats(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Items.Stats(ctx, userID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okData(c, http.StatusOK, stats)
}

// Search matches the query against title, note and reason,
// case-insensitively.
// GET /api/media/search?q=
func (h *MediaHandler) Search(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return fail(c, http.StatusUnauthorized, "unauthorized")
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return fail(c, http.StatusBadRequest, "search query is required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Items.Search(ctx, userID, q)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "query failed")
	}
	return okList(c, items, len(items))
}
