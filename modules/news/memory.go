package news

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps items in process memory. It backs sites without a
// database and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	items  []Item
	nextID int64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Create(_ context.Context, item *Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := prepare(item, time.Now()); err != nil {
		return err
	}
	if slices.ContainsFunc(s.items, func(it Item) bool { return it.Slug == item.Slug }) {
		return ErrSlugTaken
	}
	item.ID = s.nextID
	s.nextID++
	s.items = append(s.items, *item)
	return nil
}

func (s *MemoryStore) BySlug(_ context.Context, slug string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.items, func(it Item) bool { return it.Slug == slug })
	if i < 0 {
		return nil, ErrNotFound
	}
	it := s.items[i]
	return &it, nil
}

func (s *MemoryStore) List(_ context.Context, offset, limit int) ([]Item, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var published []Item
	for _, it := range s.items {
		if it.Published {
			published = append(published, it)
		}
	}
	slices.SortFunc(published, func(a, b Item) int {
		if c := b.PublishAt.Compare(a.PublishAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	total := len(published)
	offset = min(max(offset, 0), total)
	end := total
	if limit > 0 {
		end = min(offset+limit, total)
	}
	return slices.Clone(published[offset:end]), total, nil
}

func (s *MemoryStore) PublishDue(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for i := range s.items {
		if !s.items[i].Published && !s.items[i].PublishAt.After(now) {
			s.items[i].Published = true
			n++
		}
	}
	return n, nil
}
