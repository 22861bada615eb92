package news

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps items in the news_items table created by the
// migrations package.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store on pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const uniqueViolation = "23505"

const itemColumns = `id, slug, title, summary, body, publish_at, published, created_at`

func (s *PostgresStore) Create(ctx context.Context, item *Item) error {
	if err := prepare(item, time.Now()); err != nil {
		return err
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO news_items (slug, title, summary, body, publish_at, published, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		item.Slug, item.Title, item.Summary, item.Body, item.PublishAt, item.Published, item.CreatedAt,
	).Scan(&item.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlugTaken
	}
	return err
}

func (s *PostgresStore) BySlug(ctx context.Context, slug string) (*Item, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+itemColumns+` FROM news_items WHERE slug = $1`, slug)
	if err != nil {
		return nil, err
	}
	it, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Item])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (s *PostgresStore) List(ctx context.Context, offset, limit int) ([]Item, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM news_items WHERE published`).Scan(&total); err != nil {
		return nil, 0, err
	}

	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+itemColumns+` FROM news_items
		 WHERE published
		 ORDER BY publish_at DESC, id DESC
		 LIMIT $1 OFFSET $2`,
		lim, max(offset, 0),
	)
	if err != nil {
		return nil, 0, err
	}
	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[Item])
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *PostgresStore) PublishDue(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE news_items SET published = TRUE WHERE NOT published AND publish_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
