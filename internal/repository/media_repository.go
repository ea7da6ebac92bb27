package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/medialog/medialog/internal/model"
)

// MediaRepo provides persistence for the `media_items` table. Every
// operation is scoped by the owning user id so an item never leaks
// across accounts; an id that exists but belongs to someone else is
// reported as ErrNotFound.
type MediaRepo struct{ DB *sql.DB }

func NewMediaRepo(db *sql.DB) *MediaRepo { return &MediaRepo{DB: db} }

const mediaColumns = "id, user_id, title, media_type, note, reason, rating, watched, watch_date, created_at, updated_at"

// scannable is satisfied by both *sql.Row and *sql.Rows.
type scannable interface{ Scan(dest ...any) error }

func scanMediaItem(row scannable) (*model.MediaItem, error) {
	var (
		m         model.MediaItem
		note      sql.NullString
		reason    sql.NullString
		rating    sql.NullInt64
		watchDate sql.NullTime
	)
	err := row.Scan(&m.ID, &m.UserID, &m.Title, &m.MediaType, &note, &reason,
		&rating, &m.Watched, &watchDate, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if note.Valid {
		m.Note = &note.String
	}
	if reason.Valid {
		m.Reason = &reason.String
	}
	if rating.Valid {
		v := int(rating.Int64)
		m.Rating = &v
	}
	if watchDate.Valid {
		t := watchDate.Time
		m.WatchDate = &t
	}
	return &m, nil
}

// Create inserts a new item for the user and re-reads the row so the
// caller gets the database-assigned timestamps. Items created as
// watched get their watch date stamped immediately; watchlist items
// never carry one.
func (r *MediaRepo) Create(ctx context.Context, userID string, in model.NewMediaItem) (*model.MediaItem, error) {
	id := uuid.NewString()
	const q = `INSERT INTO media_items (id, user_id, title, media_type, note, reason, watched, rating, watch_date)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, CASE WHEN ? THEN NOW() ELSE NULL END)`
	_, err := r.DB.ExecContext(ctx, q,
		id, userID, strings.TrimSpace(in.Title), in.MediaType, in.Note, in.Reason,
		in.Watched, in.Rating, in.Watched)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id, userID)
}

// GetByID retrieves one item, scoped to its owner.
func (r *MediaRepo) GetByID(ctx context.Context, id, userID string) (*model.MediaItem, error) {
	return scanMediaItem(r.DB.QueryRowContext(ctx,
		"SELECT "+mediaColumns+" FROM media_items WHERE id=? AND user_id=? LIMIT 1", id, userID))
}

// Update applies a partial update over the mutable-field whitelist
// (title, media_type, note, reason, rating, watched). Absent fields
// stay untouched; the patch's Clear flags null out note, reason or
// rating. A watched transition to true stamps watch_date
// when the patch carries none; a transition to false clears it so
// watchlist items never keep a stale date. updated_at is always
// bumped. Returns ErrNotFound when no row matched the id+owner pair.
func (r *MediaRepo) Update(ctx context.Context, id, userID string, patch model.MediaPatch) (*model.MediaItem, error) {
	set := []string{}
	args := []any{}
	if patch.Title != nil {
		set = append(set, "title=?")
		args = append(args, strings.TrimSpace(*patch.Title))
	}
	if patch.MediaType != nil {
		set = append(set, "media_type=?")
		args = append(args, *patch.MediaType)
	}
	if patch.Note != nil {
		set = append(set, "note=?")
		args = append(args, *patch.Note)
	} else if patch.ClearNote {
		set = append(set, "note=NULL")
	}
	if patch.Reason != nil {
		set = append(set, "reason=?")
		args = append(args, *patch.Reason)
	} else if patch.ClearReason {
		set = append(set, "reason=NULL")
	}
	if patch.Rating != nil {
		set = append(set, "rating=?")
		args = append(args, *patch.Rating)
	} else if patch.ClearRating {
		set = append(set, "rating=NULL")
	}
	if patch.Watched != nil {
		set = append(set, "watched=?")
		args = append(args, *patch.Watched)
		if *patch.Watched {
			set = append(set, "watch_date=COALESCE(watch_date, NOW())")
		} else {
			set = append(set, "watch_date=NULL")
		}
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id, userID)
	}
	set = append(set, "updated_at=CURRENT_TIMESTAMP(6)")
	args = append(args, id, userID)

	_, err := r.DB.ExecContext(ctx,
		"UPDATE media_items SET "+strings.Join(set, ", ")+" WHERE id=? AND user_id=?", args...)
	if err != nil {
		return nil, err
	}
	// RowsAffected is 0 both for a missing row and for identical
	// values, so the re-read decides between item and ErrNotFound.
	return r.GetByID(ctx, id, userID)
}

// MarkWatched is the convenience transition: watched=true plus the
// given rating. Rating range checks happen at the handler boundary.
func (r *MediaRepo) MarkWatched(ctx context.Context, id, userID string, rating int) (*model.MediaItem, error) {
	watched := true
	return r.Update(ctx, id, userID, model.MediaPatch{Watched: &watched, Rating: &rating})
}

// Delete removes an item for its owner. The boolean reports whether
// a row was actually deleted; deleting twice is not an error, the
// second call just reports false.
func (r *MediaRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM media_items WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
