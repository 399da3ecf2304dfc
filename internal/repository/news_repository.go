// Package repository declares the storage ports used by the use cases.
package repository

import (
	"context"

	"haber-radar/internal/domain/entity"
)

// NewsRepository stores canonical news records keyed by URL.
type NewsRepository interface {
	// Upsert inserts n or, when a record with the same URL exists, overwrites
	// its mutable fields and keeps created_at. inserted reports which
	// of the two happened. A unique-violation surfaces as entity.ErrDuplicate.
	Upsert(ctx context.Context, n *entity.StoredNews) (inserted bool, err error)
	// GetByURL returns entity.ErrNotFound when no record has url.
	GetByURL(ctx context.Context, url string) (*entity.StoredNews, error)
	// ListRecent returns active records ordered by published_at DESC.
	// An empty category lists every category.
	ListRecent(ctx context.Context, category string, limit int) ([]*entity.StoredNews, error)
	CountActive(ctx context.Context) (int64, error)
}
