package repository

import (
	"context"
	"strings"

	"github.com/medialog/medialog/internal/model"
)

// List returns the user's items with optional filters applied. The
// WHERE clause is assembled from a fixed set of conditions and every
// value travels as a bind parameter; the ORDER BY column comes from
// the model's whitelist, never from raw input. Ties on the sort key
// fall back to created_at so the order stays stable.
func (r *MediaRepo) List(ctx context.Context, userID string, f model.MediaFilter) ([]model.MediaItem, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}

	if f.MediaType != "" {
		where = append(where, "media_type = ?")
		args = append(args, f.MediaType)
	}
	if f.Watched != nil {
		where = append(where, "watched = ?")
		args = append(args, *f.Watched)
	}
	if f.Rating != nil {
		where = append(where, "rating = ?")
		args = append(args, *f.Rating)
	}

	q := "SELECT " + mediaColumns + " FROM media_items WHERE " + strings.Join(where, " AND ") +
		" ORDER BY " + f.SortColumn() + " " + f.SortDirection() + ", created_at ASC"

	rows, err := r.DB.QueryContext(ctx, q, args...)
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

// Search matches a case-insensitive substring against title, note
// and reason, newest first. LIKE wildcards in the query are escaped
// so they match literally.
func (r *MediaRepo) Search(ctx context.Context, userID, query string) ([]model.MediaItem, error) {
	term := "%" + escapeLike(strings.ToLower(query)) + "%"
	const q = `SELECT ` + mediaColumns + ` FROM media_items
		WHERE user_id = ?
		  AND (LOWER(title) LIKE ? OR LOWER(note) LIKE ? OR LOWER(reason) LIKE ?)
		ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, q, userID, term, term, term)
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

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}
