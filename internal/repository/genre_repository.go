package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/medialog/medialog/internal/model"
)

// GenreRepo reads the seeded lookup tables and manages the
// media_genres junction. The lookup tables are read-only from the
// application's point of view.
type GenreRepo struct{ DB *sql.DB }

func NewGenreRepo(db *sql.DB) *GenreRepo { return &GenreRepo{DB: db} }

// ListMediaTypes returns the seeded media type rows.
func (r *GenreRepo) ListMediaTypes(ctx context.Context) ([]model.MediaType, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name, display_name FROM media_types ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.MediaType{}
	for rows.Next() {
		var t model.MediaType
		if err := rows.Scan(&t.ID, &t.Name, &t.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListRatingScale returns the seeded rating rows in value order.
func (r *GenreRepo) ListRatingScale(ctx context.Context) ([]model.RatingLevel, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, value, label, COALESCE(description, '') FROM rating_scale ORDER BY value")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.RatingLevel{}
	for rows.Next() {
		var l model.RatingLevel
		if err := rows.Scan(&l.ID, &l.Value, &l.Label, &l.Description); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ListGenres returns all seeded genres alphabetically.
func (r *GenreRepo) ListGenres(ctx context.Context) ([]model.Genre, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT id, name FROM genres ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ItemGenres returns the genres linked to one item, scoped by owner.
func (r *GenreRepo) ItemGenres(ctx context.Context, itemID, userID string) ([]model.Genre, error) {
	// Verify ownership first so a foreign item reads as not found
	// rather than as an empty genre list.
	var exists int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM media_items WHERE id=? AND user_id=? LIMIT 1", itemID, userID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	const q = `SELECT g.id, g.name
		FROM media_genres mg
		JOIN genres g ON g.id = mg.genre_id
		WHERE mg.media_id = ?
		ORDER BY g.name`
	rows, err := r.DB.QueryContext(ctx, q, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// SetItemGenres replaces an item's genre links with the given set.
// Delete plus bulk insert run inside one transaction so a concurrent
// reader never observes a half-replaced set. Unknown genre ids fail
// the foreign key, roll the whole replacement back and read as
// ErrNotFound.
func (r *GenreRepo) SetItemGenres(ctx context.Context, itemID, userID string, genreIDs []int) error {
	var exists int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM media_items WHERE id=? AND user_id=? LIMIT 1", itemID, userID).Scan(&exists)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM media_genres WHERE media_id=?", itemID); err != nil {
		return err
	}
	if len(genreIDs) > 0 {
		q := "INSERT INTO media_genres (media_id, genre_id) VALUES "
		args := make([]any, 0, len(genreIDs)*2)
		placeholders := make([]string, 0, len(genreIDs))
		for _, gid := range genreIDs {
			placeholders = append(placeholders, "(?, ?)")
			args = append(args, itemID, gid)
		}
		if _, err := tx.ExecContext(ctx, q+strings.Join(placeholders, ","), args...); err != nil {
			if isForeignKeyViolation(err) {
				return ErrNotFound
			}
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
