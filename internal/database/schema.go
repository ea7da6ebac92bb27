package database

import (
	"context"
	"database/sql"
	"fmt"
)

// statements creating the application schema. Ordering matters:
// users before media_items, media_items and genres before the
// junction table. ON DELETE CASCADE on media_items.user_id and on
// both media_genres columns is what makes "deleting a user deletes
// all owned items and their genre links" a store-level guarantee.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36) PRIMARY KEY,
		username      VARCHAR(190) NOT NULL UNIQUE,
		email         VARCHAR(190) NOT NULL UNIQUE,
		password_hash VARCHAR(100) NOT NULL,
		avatar_url    VARCHAR(500) NULL,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
		user_id    CHAR(36) NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_hash (token_hash),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS media_types (
		id           INT PRIMARY KEY AUTO_INCREMENT,
		name         VARCHAR(20) NOT NULL UNIQUE,
		display_name VARCHAR(50) NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rating_scale (
		id          INT PRIMARY KEY AUTO_INCREMENT,
		value       TINYINT NOT NULL UNIQUE,
		label       VARCHAR(20) NOT NULL,
		description VARCHAR(200) NULL,
		CONSTRAINT chk_rating_value CHECK (value BETWEEN 0 AND 3)
	)`,
	`CREATE TABLE IF NOT EXISTS media_items (
		id         CHAR(36) PRIMARY KEY,
		user_id    CHAR(36) NOT NULL,
		title      VARCHAR(300) NOT NULL,
		media_type VARCHAR(20) NOT NULL,
		note       TEXT NULL,
		reason     TEXT NULL,
		rating     TINYINT NULL,
		watched    TINYINT(1) NOT NULL DEFAULT 0,
		watch_date DATETIME NULL,
		created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		CONSTRAINT fk_media_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		CONSTRAINT chk_media_type CHECK (media_type IN ('movie','series','game')),
		CONSTRAINT chk_media_rating CHECK (rating IS NULL OR rating BETWEEN 0 AND 3),
		INDEX idx_media_user (user_id),
		INDEX idx_media_user_type (user_id, media_type),
		INDEX idx_media_user_watched (user_id, watched),
		INDEX idx_media_user_rating (user_id, rating),
		INDEX idx_media_created_at (created_at)
	)`,
	`CREATE TABLE IF NOT EXISTS genres (
		id   INT PRIMARY KEY AUTO_INCREMENT,
		name VARCHAR(50) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS media_genres (
		media_id CHAR(36) NOT NULL,
		genre_id INT NOT NULL,
		PRIMARY KEY (media_id, genre_id),
		CONSTRAINT fk_mg_media FOREIGN KEY (media_id) REFERENCES media_items(id) ON DELETE CASCADE,
		CONSTRAINT fk_mg_genre FOREIGN KEY (genre_id) REFERENCES genres(id) ON DELETE CASCADE
	)`,
}

// InitSchema creates all tables when they do not exist yet and seeds
// the reference data. It is idempotent and safe to run on every boot.
func InitSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return seedReferenceData(ctx, db)
}

// seedReferenceData fills the static lookup tables. INSERT IGNORE
// keeps reruns cheap; the rows are read-only for the application.
func seedReferenceData(ctx context.Context, db *sql.DB) error {
	seeds := []struct {
		query string
		args  []any
	}{
		{`INSERT IGNORE INTO media_types (name, display_name) VALUES (?,?),(?,?),(?,?)`,
			[]any{"movie", "Movies", "series", "Series", "game", "Games"}},
		{`INSERT IGNORE INTO rating_scale (value, label, description) VALUES (?,?,?),(?,?,?),(?,?,?),(?,?,?)`,
			[]any{
				0, "unrated", "Watched but not rated yet",
				1, "disliked", "Did not enjoy it",
				2, "liked", "Enjoyed it",
				3, "loved", "Would recommend to anyone",
			}},
		{`INSERT IGNORE INTO genres (name) VALUES (?),(?),(?),(?),(?),(?),(?),(?),(?),(?)`,
			[]any{"action", "adventure", "comedy", "drama", "fantasy", "horror", "mystery", "sci-fi", "thriller", "documentary"}},
	}
	for _, s := range seeds {
		if _, err := db.ExecContext(ctx, s.query, s.args...); err != nil {
			return fmt.Errorf("seed reference data: %w", err)
		}
	}
	return nil
}

// EnsureDemoUser inserts the fixed demo account so media rows created
// in demo mode satisfy the user foreign key. The password hash is
// empty, which no bcrypt comparison ever matches, so the account
// cannot be logged into.
func EnsureDemoUser(ctx context.Context, db *sql.DB, userID string) error {
	const q = `INSERT IGNORE INTO users (id, username, email, password_hash) VALUES (?, ?, ?, '')`
	if _, err := db.ExecContext(ctx, q, userID, "demo", "demo@localhost"); err != nil {
		return fmt.Errorf("ensure demo user: %w", err)
	}
	return nil
}
