package forms

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Submission is a completed form.
type Submission struct {
	ID        uuid.UUID      `json:"id"`
	Form      string         `json:"form"`
	Values    map[string]any `json:"values"`
	CreatedAt time.Time      `json:"created_at"`
}

// SubmissionStore persists submissions.
type SubmissionStore interface {
	Save(ctx context.Context, s *Submission) error
	Get(ctx context.Context, id uuid.UUID) (*Submission, error)
	// List returns the newest submissions of a form; limit <= 0 means all.
	List(ctx context.Context, form string, limit int) ([]Submission, error)
}

// MemoryStore keeps submissions in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Submission
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, sub *Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *sub)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.items, func(sub Submission) bool { return sub.ID == id })
	if i < 0 {
		return nil, ErrSubmissionNotFound
	}
	sub := s.items[i]
	return &sub, nil
}

func (s *MemoryStore) List(_ context.Context, form string, limit int) ([]Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Submission
	for _, sub := range slices.Backward(s.items) {
		if sub.Form != form {
			continue
		}
		out = append(out, sub)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// PostgresStore keeps submissions in the form_submissions table created by
// the migrations package, values as jsonb.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store on pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, sub *Submission) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO form_submissions (id, form_key, data, created_at) VALUES ($1, $2, $3, $4)`,
		sub.ID, sub.Form, sub.Values, sub.CreatedAt,
	)
	return err
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Submission, error) {
	sub := Submission{ID: id}
	err := s.pool.QueryRow(ctx,
		`SELECT form_key, data, created_at FROM form_submissions WHERE id = $1`, id,
	).Scan(&sub.Form, &sub.Values, &sub.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *PostgresStore) List(ctx context.Context, form string, limit int) ([]Submission, error) {
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, form_key, data, created_at FROM form_submissions
		 WHERE form_key = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		form, lim,
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Submission, error) {
		var sub Submission
		err := row.Scan(&sub.ID, &sub.Form, &sub.Values, &sub.CreatedAt)
		return sub, err
	})
}
