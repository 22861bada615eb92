package internal

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitegear/sitegear/pkg/cache"
	"github.com/sitegear/sitegear/pkg/config"
	"github.com/sitegear/sitegear/pkg/cookie"
	"github.com/sitegear/sitegear/pkg/decorator"
	"github.com/sitegear/sitegear/pkg/job"
	"github.com/sitegear/sitegear/pkg/mailer"
	"github.com/sitegear/sitegear/pkg/storage"
	"github.com/sitegear/sitegear/pkg/view"
)

// Option configures the engine.
type Option func(*Engine)

// WithConfig sets the site configuration. The engine adds its own token
// processor for {{ engine:... }} tokens.
func WithConfig(c *config.Container) Option {
	return func(e *Engine) {
		e.config = c
	}
}

// WithRoot sets the site root directory exposed as {{ engine:root }}.
func WithRoot(dir string) Option {
	return func(e *Engine) {
		e.root = dir
	}
}

// WithLogger sets the engine logger. Modules get it with a "module" attribute.
//
// Example:
//
//	log := logger.MustNew(cfg, middlewares.RequestIDExtractor())
//	sitegear.New(sitegear.WithLogger(log))
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMiddleware adds global middleware to the engine.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(e *Engine) {
		e.mws = append(e.mws, mw...)
	}
}

// WithModules registers modules. Registration order is start order;
// modules stop in reverse. A duplicate name panics.
func WithModules(modules ...Module) Option {
	return func(e *Engine) {
		for _, m := range modules {
			e.register(m)
		}
	}
}

// WithTemplates sets the filesystem templates are loaded from.
// The renderer gets the engine's decorators and site config; opts are
// applied after those.
//
// Example:
//
//	sitegear.WithTemplates(os.DirFS("site/templates"), view.WithReload(true))
func WithTemplates(fsys fs.FS, opts ...view.RendererOption) Option {
	return func(e *Engine) {
		e.templates = fsys
		e.renderOpts = append(e.renderOpts, opts...)
	}
}

// WithRenderer sets a fully configured renderer instead of WithTemplates.
func WithRenderer(r *view.Renderer) Option {
	return func(e *Engine) {
		e.renderer = r
	}
}

// WithDecorators configures the decorator registry used by views.
func WithDecorators(opts ...decorator.Option) Option {
	return func(e *Engine) {
		e.decorators = decorator.New(opts...)
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled.
//
// Example:
//
//	sitegear.WithStaticFiles("/assets", os.DirFS("site"), "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(e *Engine) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}
		e.statics = append(e.statics, staticRoute{staticHandler(subFS), pattern})
	}
}

// staticHandler serves files from fsys with cache headers and no listings.
func staticHandler(fsys fs.FS) http.Handler {
	fileServer := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fileServer.ServeHTTP(w, r)
	})
}

// WithErrorHandler replaces the default error handler, which renders
// errors/<code> or errors/default templates.
func WithErrorHandler(h ErrorHandler) Option {
	return func(e *Engine) {
		e.errorHandler = h
	}
}

// WithCookieOptions configures the cookie manager. Invalid options panic.
//
// Example:
//
//	sitegear.WithCookieOptions(
//	    cookie.WithSecret(os.Getenv("SITEGEAR_COOKIE_SECRET")),
//	    cookie.WithSecure(true),
//	)
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(e *Engine) {
		m, err := cookie.New(opts...)
		if err != nil {
			panic(fmt.Sprintf("sitegear: cookies: %v", err))
		}
		e.cookies = m
	}
}

// WithPageCache caches GET pages registered with Router.Page.
// Only 200 responses that set no cookies are stored. ttl <= 0 uses five
// minutes.
func WithPageCache(c cache.Cache[cache.Page], ttl time.Duration) Option {
	return func(e *Engine) {
		e.pages = c
		if ttl > 0 {
			e.pageTTL = ttl
		}
	}
}

// WithDB shares a PostgreSQL pool with modules through Host.DB.
func WithDB(pool *pgxpool.Pool) Option {
	return func(e *Engine) {
		e.db = pool
	}
}

// WithJobs runs module tasks on River over pool. opts add tasks and
// queues beyond those modules declare. The pool is also shared as Host.DB
// unless WithDB set one.
func WithJobs(pool *pgxpool.Pool, opts ...job.Option) Option {
	return func(e *Engine) {
		e.jobs = &jobConfig{pool: pool, opts: opts}
	}
}

// WithInlineJobs runs tasks in-process. This is the default when modules
// declare tasks and WithJobs is not used.
func WithInlineJobs(opts ...job.Option) Option {
	return func(e *Engine) {
		e.jobs = &jobConfig{opts: opts}
	}
}

// WithMailer enables email through sender. Templates are rendered by the
// engine's renderer.
func WithMailer(sender mailer.Sender, cfg mailer.Config) Option {
	return func(e *Engine) {
		e.mailSender = sender
		e.mailConfig = cfg
	}
}

// WithStorage configures file storage. Local storage is also served at its
// base URL.
func WithStorage(s storage.Storage) Option {
	return func(e *Engine) {
		e.storage = s
	}
}
