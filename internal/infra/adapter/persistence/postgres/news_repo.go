package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"haber-radar/internal/domain/entity"
	"haber-radar/internal/observability/metrics"
	"haber-radar/internal/repository"
	"haber-radar/internal/resilience/circuitbreaker"
	"haber-radar/internal/resilience/retry"
)

const uniqueViolation = "23505"

type NewsRepo struct {
	db    circuitbreaker.Querier
	retry retry.Config
}

// NewNewsRepo accepts a *sql.DB or a *circuitbreaker.DBCircuitBreaker.
func NewNewsRepo(db circuitbreaker.Querier) repository.NewsRepository {
	return &NewsRepo{db: db, retry: retry.DBConfig()}
}

// NewNewsRepoWithRetry is NewNewsRepo with a custom retry policy.
func NewNewsRepoWithRetry(db circuitbreaker.Querier, cfg retry.Config) repository.NewsRepository {
	return &NewsRepo{db: db, retry: cfg}
}

const newsColumns = `id, title, description, url, image_url, published_at, source, category,
feed_key, keywords, is_active, scraped_at, created_at`

func (repo *NewsRepo) Upsert(ctx context.Context, n *entity.StoredNews) (bool, error) {
	const query = `
INSERT INTO news (title, description, url, image_url, published_at, source, category,
                  feed_key, keywords, is_active, scraped_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, TRUE, $10, $11)
ON CONFLICT (url) DO UPDATE SET
    title        = EXCLUDED.title,
    description  = EXCLUDED.description,
    image_url    = EXCLUDED.image_url,
    published_at = EXCLUDED.published_at,
    source       = EXCLUDED.source,
    category     = EXCLUDED.category,
    feed_key     = EXCLUDED.feed_key,
    keywords     = EXCLUDED.keywords,
    scraped_at   = EXCLUDED.scraped_at,
    is_active    = TRUE
RETURNING (xmax = 0) AS inserted`

	start := time.Now()
	defer func() { metrics.RecordDBQuery("upsert", time.Since(start)) }()

	inserted, err := retry.Do(ctx, repo.retry, func() (bool, error) {
		var inserted bool
		err := repo.db.QueryRowContext(ctx, query,
			n.Title, n.Description, n.URL, nullString(n.ImageURL), n.PublishedAt,
			n.Source, n.Category, n.FeedKey, pq.Array(keywordsOrEmpty(n.Keywords)),
			n.ScrapedAt, n.CreatedAt,
		).Scan(&inserted)
		return inserted, err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, fmt.Errorf("Upsert: %w", entity.ErrDuplicate)
		}
		return false, fmt.Errorf("Upsert: %w", err)
	}
	return inserted, nil
}

func (repo *NewsRepo) GetByURL(ctx context.Context, url string) (*entity.StoredNews, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE url = $1 LIMIT 1`

	start := time.Now()
	defer func() { metrics.RecordDBQuery("get_by_url", time.Since(start)) }()

	n, err := scanNews(repo.db.QueryRowContext(ctx, query, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("GetByURL: %w", entity.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("GetByURL: %w", err)
	}
	return n, nil
}

func (repo *NewsRepo) ListRecent(ctx context.Context, category string, limit int) ([]*entity.StoredNews, error) {
	query := `SELECT ` + newsColumns + `
FROM news
WHERE is_active = TRUE AND ($1 = '' OR category = $1)
ORDER BY published_at DESC
LIMIT $2`

	start := time.Now()
	defer func() { metrics.RecordDBQuery("list_recent", time.Since(start)) }()

	rows, err := repo.db.QueryContext(ctx, query, category, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]*entity.StoredNews, 0, limit)
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRecent: Scan: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRecent: %w", err)
	}
	return result, nil
}

func (repo *NewsRepo) CountActive(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM news WHERE is_active = TRUE`

	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("CountActive: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNews(row rowScanner) (*entity.StoredNews, error) {
	var (
		n        entity.StoredNews
		imageURL sql.NullString
		keywords pq.StringArray
	)
	err := row.Scan(&n.ID, &n.Title, &n.Description, &n.URL, &imageURL, &n.PublishedAt,
		&n.Source, &n.Category, &n.FeedKey, &keywords, &n.IsActive, &n.ScrapedAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.ImageURL = imageURL.String
	n.Keywords = []string(keywords)
	return &n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func keywordsOrEmpty(k []string) []string {
	if k == nil {
		return []string{}
	}
	return k
}
