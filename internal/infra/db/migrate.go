package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS news (
    id           BIGSERIAL PRIMARY KEY,
    title        TEXT NOT NULL,
    description  TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL UNIQUE,
    image_url    TEXT,
    published_at TIMESTAMPTZ NOT NULL,
    source       TEXT NOT NULL,
    category     TEXT NOT NULL DEFAULT 'Genel',
    feed_key     TEXT NOT NULL DEFAULT '',
    keywords     TEXT[] NOT NULL DEFAULT '{}',
    is_active    BOOLEAN NOT NULL DEFAULT TRUE,
    scraped_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE INDEX IF NOT EXISTS idx_news_published_at ON news(published_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_news_category ON news(category)`,
	`CREATE INDEX IF NOT EXISTS idx_news_is_active ON news(is_active) WHERE is_active = TRUE`,
}

// MigrateUp creates the news table and its indexes. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
	}
	return nil
}

// MigrateDown drops the news table. All stored news is lost.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS news`); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}
