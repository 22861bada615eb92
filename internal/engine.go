package internal

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitegear/sitegear/pkg/cache"
	"github.com/sitegear/sitegear/pkg/config"
	"github.com/sitegear/sitegear/pkg/cookie"
	"github.com/sitegear/sitegear/pkg/decorator"
	"github.com/sitegear/sitegear/pkg/health"
	"github.com/sitegear/sitegear/pkg/job"
	"github.com/sitegear/sitegear/pkg/logger"
	"github.com/sitegear/sitegear/pkg/mailer"
	"github.com/sitegear/sitegear/pkg/storage"
	"github.com/sitegear/sitegear/pkg/view"
)

// Defaults for the server section of the site configuration.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
	defaultPageTTL           = 5 * time.Minute
)

// DefaultLayout is used when site.layout is not set.
const DefaultLayout = "default"

// Engine mounts modules on a chi router and renders their views.
// It is immutable after New apart from module state.
type Engine struct {
	router       chi.Router
	config       *config.Container
	logger       *slog.Logger
	renderer     *view.Renderer
	decorators   *decorator.Registry
	cookies      *cookie.Manager
	pages        cache.Cache[cache.Page]
	queue        job.Queue
	mailer       *mailer.Mailer
	storage      storage.Storage
	db           *pgxpool.Pool
	health       *healthConfig
	errorHandler ErrorHandler

	modules []Module
	byName  map[string]Module
	started []Module
	running bool
	runMu   sync.Mutex
	root    string
	pageTTL time.Duration
	jobs    *jobConfig
	statics []staticRoute
	mws     []Middleware

	templates  fs.FS
	renderOpts []view.RendererOption
	mailSender mailer.Sender
	mailConfig mailer.Config
}

// emptyFS is the template filesystem of an engine without templates.
type emptyFS struct{}

func (emptyFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates an engine. Invalid options, a site.cookie-secret shorter than
// 32 bytes and duplicate module names panic.
//
// Example:
//
//	e := sitegear.New(
//	    sitegear.WithConfig(cfg),
//	    sitegear.WithTemplates(os.DirFS("site/templates")),
//	    sitegear.WithModules(pages.New(), news.New()),
//	)
//	err := e.Run(":8080")
func New(opts ...Option) *Engine {
	e := &Engine{
		router:  chi.NewRouter(),
		logger:  logger.NewNope(),
		byName:  make(map[string]Module),
		pageTTL: defaultPageTTL,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.config == nil {
		e.config = config.New()
	}
	if e.cookies == nil {
		e.cookies = cookie.MustNew(cookie.WithSecret(e.config.String("site.cookie-secret", "")))
	}
	if e.decorators == nil {
		e.decorators = decorator.New()
	}
	e.config.AddProcessor(e.tokenProcessor())
	if e.renderer == nil {
		e.renderer = e.newRenderer()
	}
	e.renderer.SetComponents(e.component)
	if e.mailSender != nil {
		e.mailer = mailer.New(e.mailSender, e.renderer, e.mailConfig)
	}

	if err := e.setupQueue(); err != nil {
		panic(fmt.Sprintf("sitegear: job queue: %v", err))
	}
	e.setupHealth()

	e.setupRoutes()
	return e
}

// ServeHTTP makes the engine an http.Handler.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	e.router.ServeHTTP(w, r)
}

// Router returns the underlying chi.Router.
func (e *Engine) Router() chi.Router {
	return e.router
}

// Config returns the site configuration.
func (e *Engine) Config() *config.Container {
	return e.config
}

// Logger returns the engine logger.
func (e *Engine) Logger() *slog.Logger {
	return e.logger
}

// Renderer returns the view renderer.
func (e *Engine) Renderer() *view.Renderer {
	return e.renderer
}

// Queue returns the job queue, or nil.
func (e *Engine) Queue() job.Queue {
	return e.queue
}

// Module returns a registered module by name.
func (e *Engine) Module(name string) (Module, error) {
	m, ok := e.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}
	return m, nil
}

// Modules returns the registered modules in registration order.
func (e *Engine) Modules() []Module {
	return slices.Clone(e.modules)
}

func (e *Engine) newRenderer() *view.Renderer {
	fsys := e.templates
	if fsys == nil {
		fsys = emptyFS{}
	}
	opts := []view.RendererOption{
		view.WithDecorator(e.decorators),
		view.WithConfig(e.config),
		view.WithReload(e.config.Bool("site.reload-templates", false)),
	}
	return view.NewRenderer(fsys, append(opts, e.renderOpts...)...)
}

// register adds a module; duplicates panic.
func (e *Engine) register(m Module) {
	name := m.Name()
	if name == "" {
		panic("sitegear: module with empty name")
	}
	if _, ok := e.byName[name]; ok {
		panic(fmt.Sprintf("sitegear: duplicate module %q", name))
	}
	e.byName[name] = m
	e.modules = append(e.modules, m)
}

// setupRoutes configures the router with middleware, modules and
// engine endpoints.
func (e *Engine) setupRoutes() {
	e.router.NotFound(e.wrapHandler(func(c Context) error {
		return ErrNotFound(http.StatusText(http.StatusNotFound))
	}))
	e.router.MethodNotAllowed(e.wrapHandler(func(c Context) error {
		return ErrMethodNotAllowed(http.StatusText(http.StatusMethodNotAllowed))
	}))

	for _, mw := range e.mws {
		e.router.Use(e.adaptMiddleware(mw))
	}

	if local, ok := e.storage.(*storage.Local); ok {
		e.statics = append(e.statics, staticRoute{staticHandler(local.FS()), local.BaseURL()})
	}
	for _, sr := range e.statics {
		prefix := "/" + strings.Trim(sr.pattern, "/")
		e.router.Mount(prefix, http.StripPrefix(prefix, sr.handler))
	}

	if e.health != nil {
		e.router.Get(e.health.livenessPath, health.LivenessHandler())
		e.router.Get(e.health.readinessPath, health.ReadinessHandler(e.health.checker))
	}

	// Root mounts go last so their catch-all routes sit behind every
	// prefixed module.
	var rootMounts []Module
	for _, m := range e.modules {
		mounter, ok := m.(Mounter)
		if !ok {
			continue
		}
		mount := e.mountPoint(m.Name())
		if mount == "/" {
			rootMounts = append(rootMounts, m)
			continue
		}
		e.router.Route(mount, func(cr chi.Router) {
			mounter.Routes(&routerAdapter{router: cr, engine: e, module: m.Name()})
		})
	}
	for _, m := range rootMounts {
		e.router.Group(func(cr chi.Router) {
			m.(Mounter).Routes(&routerAdapter{router: cr, engine: e, module: m.Name()})
		})
	}
}

// mountPoint returns the normalised mount path of a module.
func (e *Engine) mountPoint(name string) string {
	key := "modules." + name + ".mount"
	if !e.config.Has(key) {
		return "/" + name
	}
	mount := strings.Trim(e.config.String(key, ""), "/")
	return "/" + mount
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc using the engine's
// error handler.
func (e *Engine) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, e)
		if err := h(c); err != nil {
			e.handleError(c, err)
		}
	}
}

// handleError handles errors from handlers using the configured error handler.
func (e *Engine) handleError(c Context, err error) {
	if c.Written() {
		c.LogError("handler error after response was written", slog.Any("error", err))
		return
	}
	handler := e.errorHandler
	if handler == nil {
		handler = e.defaultErrorHandler
	}
	if herr := handler(c, err); herr != nil {
		c.LogError("error handler failed", slog.Any("error", herr))
		if !c.Written() {
			http.Error(c.Response(), http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
}

// component resolves a module component for the view renderer.
func (e *Engine) component(ctx context.Context, module, name string, args ...any) (view.Component, error) {
	m, err := e.Module(module)
	if err != nil {
		return nil, err
	}
	p, ok := m.(ComponentProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownComponent, module, name)
	}
	c := contextFrom(ctx)
	if c == nil {
		return nil, ErrNoRequest
	}
	return p.Component(c, name, args...)
}

// newView creates the per-request view: site layout, site data and the
// resources listed under site.resources.
func (e *Engine) newView(r *http.Request) *view.View {
	res := view.NewResources()
	for typ := range e.config.Map("site.resources") {
		res.Add(typ, e.config.Strings("site.resources."+typ)...)
	}
	return view.New(
		view.WithLayout(e.config.String("site.layout", DefaultLayout)),
		view.WithResources(res),
		view.WithData(map[string]any{
			"site": e.config.Map("site"),
			"path": r.URL.Path,
		}),
	)
}
