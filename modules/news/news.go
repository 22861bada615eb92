// Package news publishes dated articles.
//
// Items are kept in a Store: PostgreSQL when the engine has a database,
// memory otherwise. The module serves a paged index and one page per item,
// provides a "latest" component and runs the news:publish task, which
// publishes items whose publish time has come.
//
//	modules:
//	  news:
//	    per-page: 10
//	    publish-schedule: "@every 5m" # "off" disables scheduling
package news

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/spf13/cast"

	"github.com/sitegear/sitegear"
	"github.com/sitegear/sitegear/pkg/config"
	"github.com/sitegear/sitegear/pkg/job"
)

// TaskPublish is the name of the publishing task.
const TaskPublish = "news:publish"

const (
	defaultPerPage  = 10
	defaultSchedule = "@every 5m"
	defaultLatest   = 3
)

// Module is the news module.
type Module struct {
	store   Store
	auto    bool
	perPage int
	now     func() time.Time
	host    *sitegear.Host
}

// Option configures the module.
type Option func(*Module)

// WithStore sets the item store. Without it the module uses PostgreSQL
// when the engine has a database and memory otherwise.
func WithStore(s Store) Option {
	return func(m *Module) {
		if s != nil {
			m.store = s
			m.auto = false
		}
	}
}

// WithPerPage sets the default page size of the index. modules.news.per-page
// overrides it.
func WithPerPage(n int) Option {
	return func(m *Module) {
		if n > 0 {
			m.perPage = n
		}
	}
}

// WithClock sets the time source of the publishing task.
func WithClock(now func() time.Time) Option {
	return func(m *Module) { m.now = now }
}

// New creates the news module.
func New(opts ...Option) *Module {
	m := &Module{
		store:   NewMemoryStore(),
		auto:    true,
		perPage: defaultPerPage,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements sitegear.Module.
func (m *Module) Name() string { return "news" }

// Store returns the item store.
func (m *Module) Store() Store { return m.store }

// Start implements sitegear.Starter.
func (m *Module) Start(_ context.Context, h *sitegear.Host) error {
	m.host = h
	if m.auto && h.DB != nil {
		m.store = NewPostgresStore(h.DB)
		h.Logger.Info("news items stored in postgres")
	}
	return nil
}

// Routes implements sitegear.Mounter.
func (m *Module) Routes(r sitegear.Router) {
	r.Page("/", "index", m.index)
	r.Page("/{slug}", "item", m.item)
}

func (m *Module) index(c sitegear.Context) error {
	per := c.Config().Int("modules.news.per-page", m.perPage)
	if per <= 0 {
		per = m.perPage
	}
	page := max(sitegear.QueryDefault(c, "page", 1), 1)
	if page-1 > (math.MaxInt-per)/per {
		return sitegear.ErrNotFound(http.StatusText(http.StatusNotFound))
	}

	items, total, err := m.store.List(c, (page-1)*per, per)
	if err != nil {
		return err
	}
	if page > 1 && len(items) == 0 {
		return sitegear.ErrNotFound(http.StatusText(http.StatusNotFound))
	}

	pages := (total + per - 1) / per
	v := c.View()
	v.Set("items", items)
	v.Set("page", page)
	v.Set("pages", pages)
	v.Set("total", total)
	if page > 1 {
		v.Set("prev", page-1)
	}
	if page < pages {
		v.Set("next", page+1)
	}
	return nil
}

func (m *Module) item(c sitegear.Context) error {
	it, err := m.store.BySlug(c, c.Param("slug"))
	if errors.Is(err, ErrNotFound) || (err == nil && !it.Published) {
		return sitegear.ErrNotFound("News item not found")
	}
	if err != nil {
		return err
	}
	v := c.View()
	v.Set("item", it)
	v.Set("title", it.Title)
	return nil
}

// Component implements sitegear.ComponentProvider. "latest" lists the
// newest items; an optional argument sets how many.
func (m *Module) Component(c sitegear.Context, name string, args ...any) (sitegear.Component, error) {
	if name != "latest" {
		return nil, fmt.Errorf("%w: news/%s", sitegear.ErrUnknownComponent, name)
	}
	n := defaultLatest
	if len(args) > 0 {
		n = cast.ToInt(args[0])
	}
	items, _, err := m.store.List(c, 0, n)
	if err != nil {
		return nil, err
	}
	return latest(items, mountPath(c.Config())), nil
}

func latest(items []Item, mount string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<ul class="news-latest">`)
		for _, it := range items {
			b.WriteString(`<li><a href="` + templ.EscapeString(mount+"/"+it.Slug) + `">` +
				templ.EscapeString(it.Title) + `</a> <time datetime="` + it.PublishAt.Format(time.DateOnly) + `">` +
				it.PublishAt.Format("2 January 2006") + "</time></li>")
		}
		b.WriteString("</ul>")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Tasks implements sitegear.Tasker.
func (m *Module) Tasks(cfg *config.Container) []job.Option {
	spec := cfg.String("publish-schedule", defaultSchedule)
	if spec == "off" {
		spec = ""
	}
	return []job.Option{job.WithScheduledTask(job.Every(TaskPublish, spec, m.publish))}
}

func (m *Module) publish(ctx context.Context) error {
	n, err := m.store.PublishDue(ctx, m.now())
	if err != nil || n == 0 {
		return err
	}
	if m.host == nil {
		return nil
	}
	m.host.Logger.InfoContext(ctx, "news items published", slog.Int("count", n))
	return m.host.InvalidatePages(ctx, mountPath(m.host.Site))
}

// mountPath mirrors the engine's mount rules for this module.
func mountPath(cfg *config.Container) string {
	if !cfg.Has("modules.news.mount") {
		return "/news"
	}
	return strings.TrimSuffix("/"+strings.Trim(cfg.String("modules.news.mount", ""), "/"), "/")
}
