package model

import (
	"strings"
	"time"
)

// Media types accepted by the tracker. The `media_types` reference
// table mirrors these values.
const (
	MediaTypeMovie  = "movie"
	MediaTypeSeries = "series"
	MediaTypeGame   = "game"
)

// Rating scale values. 0 is a deliberate "watched but unrated"
// marker; NULL rating on a watched item means the same thing.
const (
	RatingUnrated  = 0
	RatingDisliked = 1
	RatingLiked    = 2
	RatingLoved    = 3
)

// MediaTypes lists the valid media types in display order.
var MediaTypes = []string{MediaTypeMovie, MediaTypeSeries, MediaTypeGame}

// ValidMediaType reports whether s is one of the known media types.
func ValidMediaType(s string) bool {
	switch s {
	case MediaTypeMovie, MediaTypeSeries, MediaTypeGame:
		return true
	}
	return false
}

// ValidRating reports whether n falls inside the 0..3 rating scale.
func ValidRating(n int) bool { return n >= RatingUnrated && n <= RatingLoved }

// MediaItem mirrors the `media_items` table. An item belongs to
// exactly one user and is either on the watchlist (watched=false)
// or in the watched bucket, optionally with a rating.
//
// Invariants:
//
//	watched=false ⇒ WatchDate is nil.
//	Rating, when set, is one of 0..3.
type MediaItem struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	MediaType string     `json:"media_type"`
	Note      *string    `json:"note"`
	Reason    *string    `json:"reason"`
	Rating    *int       `json:"rating"`
	Watched   bool       `json:"watched"`
	WatchDate *time.Time `json:"watch_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewMediaItem holds the fields accepted when adding an item.
// Watched and Rating default to the watchlist state.
type NewMediaItem struct {
	Title     string
	MediaType string
	Note      *string
	Reason    *string
	Watched   bool
	Rating    *int
}

// MediaPatch carries the mutable item fields for partial updates.
// Nil pointers mean "leave untouched". Anything outside this struct
// is simply not updatable, which is the whitelist the update path
// relies on. The Clear flags reset the nullable columns to NULL;
// they exist because a nil pointer cannot tell "absent" from an
// explicit JSON null.
type MediaPatch struct {
	Title       *string
	MediaType   *string
	Note        *string
	Reason      *string
	Rating      *int
	Watched     *bool
	ClearNote   bool
	ClearReason bool
	ClearRating bool
}

// MediaFilter narrows and orders a listing. Zero values mean "no
// filter". SortBy outside the whitelist silently falls back to
// created_at.
type MediaFilter struct {
	MediaType string
	Watched   *bool
	Rating    *int
	SortBy    string
	SortOrder string
}

// Sortable columns for List. Kept as an explicit whitelist so the
// ORDER BY clause is never built from raw client input.
var sortColumns = map[string]bool{
	"title":      true,
	"created_at": true,
	"updated_at": true,
	"rating":     true,
	"watched":    true,
}

// SortColumn resolves the filter's SortBy to a safe column name.
func (f MediaFilter) SortColumn() string {
	if sortColumns[f.SortBy] {
		return f.SortBy
	}
	return "created_at"
}

// SortDirection resolves the filter's order; DESC unless the caller
// explicitly asked for asc.
func (f MediaFilter) SortDirection() string {
	if strings.EqualFold(f.SortOrder, "asc") {
		return "ASC"
	}
	return "DESC"
}

// MediaGroup is one media type's view in the grouped listing. Every
// item of that type lands in exactly one bucket: the three rated
// buckets, unrated (watched with rating NULL or 0), or watchlist.
type MediaGroup struct {
	Loved     []MediaItem `json:"loved"`
	Liked     []MediaItem `json:"liked"`
	Disliked  []MediaItem `json:"disliked"`
	Unrated   []MediaItem `json:"unrated"`
	Watchlist []MediaItem `json:"watchlist"`
	Counts    GroupCounts `json:"counts"`
}

// GroupCounts aggregates one media type. The five bucket counts sum
// to Total.
type GroupCounts struct {
	Loved     int `json:"loved"`
	Liked     int `json:"liked"`
	Disliked  int `json:"disliked"`
	Unrated   int `json:"unrated"`
	Watchlist int `json:"watchlist"`
	Total     int `json:"total"`
}

// GroupedMedia maps media type name to its buckets. All three types
// are always present, empty or not.
type GroupedMedia map[string]*MediaGroup

// NewGroupedMedia returns a grouped view with all types pre-filled
// so the JSON shape is stable.
func NewGroupedMedia() GroupedMedia {
	g := make(GroupedMedia, len(MediaTypes))
	for _, t := range MediaTypes {
		g[t] = &MediaGroup{
			Loved:     []MediaItem{},
			Liked:     []MediaItem{},
			Disliked:  []MediaItem{},
			Unrated:   []MediaItem{},
			Watchlist: []MediaItem{},
		}
	}
	return g
}

// MediaStats summarizes a user's whole collection.
type MediaStats struct {
	Total     int `json:"total_items"`
	Watched   int `json:"watched_count"`
	Watchlist int `json:"watchlist_count"`
	Loved     int `json:"loved_count"`
	Liked     int `json:"liked_count"`
	Disliked  int `json:"disliked_count"`
	Unrated   int `json:"unrated_count"`
}

// Bucket returns the grouped-view bucket name for an item. Watched
// items with a NULL or 0 rating are unrated by definition.
func (m MediaItem) Bucket() string {
	if !m.Watched {
		return "watchlist"
	}
	if m.Rating == nil {
		return "unrated"
	}
	switch *m.Rating {
	case RatingLoved:
		return "loved"
	case RatingLiked:
		return "liked"
	case RatingDisliked:
		return "disliked"
	}
	return "unrated"
}
