package internal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitegear/sitegear/pkg/cache"
	"github.com/sitegear/sitegear/pkg/config"
	"github.com/sitegear/sitegear/pkg/cookie"
	"github.com/sitegear/sitegear/pkg/job"
	"github.com/sitegear/sitegear/pkg/mailer"
	"github.com/sitegear/sitegear/pkg/storage"
	"github.com/sitegear/sitegear/pkg/view"
)

// Host is what a module receives when the engine starts it.
// Optional services are nil when the engine was built without them.
type Host struct {
	// Name is the module name.
	Name string
	// Config is the module's section, modules.<name>.
	Config *config.Container
	// Site is the whole site configuration.
	Site *config.Container

	Logger   *slog.Logger
	Renderer *view.Renderer
	Cookies  *cookie.Manager

	Pages   cache.Cache[cache.Page]
	Queue   job.Queue
	Mailer  *mailer.Mailer
	Storage storage.Storage
	DB      *pgxpool.Pool
}

// Enqueue adds a task to the engine's job queue.
func (h *Host) Enqueue(ctx context.Context, name string, payload any, opts ...job.EnqueueOption) error {
	if h.Queue == nil {
		return ErrNoQueue
	}
	return h.Queue.Enqueue(ctx, name, payload, opts...)
}

// InvalidatePages drops cached pages whose path starts with prefix.
// It is a no-op without a page cache.
func (h *Host) InvalidatePages(ctx context.Context, prefix string) error {
	if h.Pages == nil {
		return nil
	}
	return h.Pages.DeletePrefix(ctx, cache.PageKey(http.MethodGet, prefix))
}

func (e *Engine) host(m Module) *Host {
	name := m.Name()
	return &Host{
		Name:     name,
		Config:   e.config.Sub("modules." + name),
		Site:     e.config,
		Logger:   e.logger.With(slog.String("module", name)),
		Renderer: e.renderer,
		Cookies:  e.cookies,
		Pages:    e.pages,
		Queue:    e.queue,
		Mailer:   e.mailer,
		Storage:  e.storage,
		DB:       e.db,
	}
}
