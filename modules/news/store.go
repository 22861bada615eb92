package news

import (
	"context"
	"strings"
	"time"

	"github.com/sitegear/sitegear/pkg/slug"
)

// Item is a news article.
type Item struct {
	ID      int64  `json:"id" db:"id"`
	Slug    string `json:"slug" db:"slug"`
	Title   string `json:"title" db:"title"`
	Summary string `json:"summary" db:"summary"`
	Body    string `json:"body" db:"body"`
	// PublishAt is when the item becomes visible. Items created with a
	// future time stay unpublished until the news:publish task runs.
	PublishAt time.Time `json:"publish_at" db:"publish_at"`
	Published bool      `json:"published" db:"published"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Store persists news items. List and PublishDue only consider published
// items; BySlug returns drafts too.
type Store interface {
	// Create assigns the item's ID and a unique slug derived from the title
	// when none is set.
	Create(ctx context.Context, item *Item) error
	BySlug(ctx context.Context, slug string) (*Item, error)
	// List returns a page of published items, newest first, and the total
	// number of published items.
	List(ctx context.Context, offset, limit int) ([]Item, int, error)
	// PublishDue publishes unpublished items whose PublishAt is not after
	// now and reports how many changed.
	PublishDue(ctx context.Context, now time.Time) (int, error)
}

const maxSlugLen = 80

// prepare validates item and fills derived fields before it is stored.
func prepare(item *Item, now time.Time) error {
	item.Title = strings.TrimSpace(item.Title)
	if item.Title == "" {
		return ErrInvalidItem
	}
	source := item.Slug
	if source == "" {
		source = item.Title
	}
	item.Slug = slug.Make(source, slug.MaxLength(maxSlugLen))
	if item.Slug == "" {
		return ErrInvalidItem
	}
	if item.PublishAt.IsZero() {
		item.PublishAt = now
	}
	item.PublishAt = item.PublishAt.UTC()
	item.Published = !item.PublishAt.After(now)
	item.CreatedAt = now.UTC()
	return nil
}
