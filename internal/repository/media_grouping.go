package repository

import (
	"context"
	"database/sql"

	"github.com/medialog/medialog/internal/model"
)

// bucketConditions maps grouped-view bucket names to their SQL
// predicates. The five predicates are disjoint and cover every row,
// so per-type bucket counts always sum to the type total. Watched
// rows with a NULL or 0 rating are the unrated bucket.
var bucketConditions = map[string]string{
	"loved":     "watched = 1 AND rating = 3",
	"liked":     "watched = 1 AND rating = 2",
	"disliked":  "watched = 1 AND rating = 1",
	"unrated":   "watched = 1 AND (rating IS NULL OR rating = 0)",
	"watchlist": "watched = 0",
}

// bucketOrder fixes the sequence of the per-bucket sub-queries.
var bucketOrder = []string{"loved", "liked", "disliked", "unrated", "watchlist"}

// Grouped returns the user's items partitioned per media type into
// the five buckets plus aggregate counts. One grouping query yields
// the counts; item lists come from one targeted sub-query per
// type/bucket pair. Deliberately denormalized for simplicity over a
// single pass in memory; the queries are all index-backed.
func (r *MediaRepo) Grouped(ctx context.Context, userID string) (model.GroupedMedia, error) {
	grouped := model.NewGroupedMedia()

	const countsQ = `SELECT media_type,
			SUM(CASE WHEN watched = 1 AND rating = 3 THEN 1 ELSE 0 END) AS loved_count,
			SUM(CASE WHEN watched = 1 AND rating = 2 THEN 1 ELSE 0 END) AS liked_count,
			SUM(CASE WHEN watched = 1 AND rating = 1 THEN 1 ELSE 0 END) AS disliked_count,
			SUM(CASE WHEN watched = 1 AND (rating IS NULL OR rating = 0) THEN 1 ELSE 0 END) AS unrated_count,
			SUM(CASE WHEN watched = 0 THEN 1 ELSE 0 END) AS watchlist_count,
			COUNT(*) AS total
		FROM media_items
		WHERE user_id = ?
		GROUP BY media_type`

	rows, err := r.DB.QueryContext(ctx, countsQ, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			mediaType string
			c         model.GroupCounts
		)
		if err := rows.Scan(&mediaType, &c.Loved, &c.Liked, &c.Disliked, &c.Unrated, &c.Watchlist, &c.Total); err != nil {
			return nil, err
		}
		if g, ok := grouped[mediaType]; ok {
			g.Counts = c
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, mediaType := range model.MediaTypes {
		g := grouped[mediaType]
		for _, bucket := range bucketOrder {
			items, err := r.itemsByBucket(ctx, userID, mediaType, bucket)
			if err != nil {
				return nil, err
			}
			switch bucket {
			case "loved":
				g.Loved = items
			case "liked":
				g.Liked = items
			case "disliked":
				g.Disliked = items
			case "unrated":
				g.Unrated = items
			case "watchlist":
				g.Watchlist = items
			}
		}
	}
	return grouped, nil
}

// itemsByBucket fetches one type/bucket slice, newest first.
func (r *MediaRepo) itemsByBucket(ctx context.Context, userID, mediaType, bucket string) ([]model.MediaItem, error) {
	q := "SELECT " + mediaColumns + " FROM media_items WHERE user_id = ? AND media_type = ? AND " +
		bucketConditions[bucket] + " ORDER BY created_at DESC"
	rows, err := r.DB.QueryContext(ctx, q, userID, mediaType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MediaItem{}
	for rows.Next() {
		m, err := scanMediaItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats aggregates the user's whole collection in one query.
func (r *MediaRepo) Stats(ctx context.Context, userID string) (*model.MediaStats, error) {
	const q = `SELECT
			COUNT(*) AS total_items,
			COALESCE(SUM(CASE WHEN watched = 1 THEN 1 ELSE 0 END), 0) AS watched_count,
			COALESCE(SUM(CASE WHEN watched = 0 THEN 1 ELSE 0 END), 0) AS watchlist_count,
			COALESCE(SUM(CASE WHEN watched = 1 AND rating = 3 THEN 1 ELSE 0 END), 0) AS loved_count,
			COALESCE(SUM(CASE WHEN watched = 1 AND rating = 2 THEN 1 ELSE 0 END), 0) AS liked_count,
			COALESCE(SUM(CASE WHEN watched = 1 AND rating = 1 THEN 1 ELSE 0 END), 0) AS disliked_count,
			COALESCE(SUM(CASE WHEN watched = 1 AND (rating IS NULL OR rating = 0) THEN 1 ELSE 0 END), 0) AS unrated_count
		FROM media_items
		WHERE user_id = ?`

	var s model.MediaStats
	err := r.DB.QueryRowContext(ctx, q, userID).
		Scan(&s.Total, &s.Watched, &s.Watchlist, &s.Loved, &s.Liked, &s.Disliked, &s.Unrated)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	return &s, nil
}
