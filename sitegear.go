package sitegear

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitegear/sitegear/internal"
	"github.com/sitegear/sitegear/pkg/cache"
	"github.com/sitegear/sitegear/pkg/config"
	"github.com/sitegear/sitegear/pkg/cookie"
	"github.com/sitegear/sitegear/pkg/decorator"
	"github.com/sitegear/sitegear/pkg/health"
	"github.com/sitegear/sitegear/pkg/job"
	"github.com/sitegear/sitegear/pkg/mailer"
	"github.com/sitegear/sitegear/pkg/storage"
	"github.com/sitegear/sitegear/pkg/view"
)

// Type aliases - public API
type (
	// Engine mounts modules, renders views and runs the site.
	Engine = internal.Engine

	// Module is a named unit of site functionality.
	Module = internal.Module

	// Starter is implemented by modules that need setup before serving.
	Starter = internal.Starter

	// Stopper is implemented by modules that hold resources.
	Stopper = internal.Stopper

	// Mounter is implemented by modules that serve routes.
	Mounter = internal.Mounter

	// ComponentProvider is implemented by modules that render components.
	ComponentProvider = internal.ComponentProvider

	// Tasker is implemented by modules that run background tasks.
	Tasker = internal.Tasker

	// Host is what a module receives when the engine starts it.
	Host = internal.Host

	// Router is the interface modules use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the engine.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// Component is the interface for renderable components (templ.Component).
	Component = internal.Component

	// View is the per-request view model.
	View = view.View

	// HTTPError is an error with an HTTP status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ResponseWriter wraps http.ResponseWriter to track the response status.
	ResponseWriter = internal.ResponseWriter

	// Extractor reads a value from the first request source that has it.
	Extractor = internal.Extractor

	// ExtractorSource reads one value from the request.
	ExtractorSource = internal.ExtractorSource
)

// Engine errors.
var (
	ErrUnknownModule    = internal.ErrUnknownModule
	ErrUnknownComponent = internal.ErrUnknownComponent
	ErrNoRequest        = internal.ErrNoRequest
	ErrNoQueue          = internal.ErrNoQueue
	ErrNoStorage        = internal.ErrNoStorage
	ErrNoMailer         = internal.ErrNoMailer
	ErrAlreadyStarted   = internal.ErrAlreadyStarted
)

// DefaultLayout is used when site.layout is not set.
const DefaultLayout = internal.DefaultLayout

// New creates an engine.
//
// Example:
//
//	cfg := config.New(config.WithEnvironment("prod"))
//	if err := cfg.Load(os.DirFS("site/config"), "site"); err != nil {
//	    return err
//	}
//	e := sitegear.New(
//	    sitegear.WithConfig(cfg),
//	    sitegear.WithTemplates(os.DirFS("site/templates")),
//	    sitegear.WithModules(pages.New(), navigation.New(), news.New()),
//	)
//	err := e.Run(":8080")
func New(opts ...Option) *Engine {
	return internal.New(opts...)
}

// TokenProcessor resolves {{ engine:name }} tokens the way the engine does
// for a site rooted at root. Tools that read the configuration without
// building an engine add it themselves.
func TokenProcessor(root, env string) config.Processor {
	return internal.TokenProcessor(root, env)
}

// Engine options

// WithConfig sets the site configuration.
func WithConfig(c *config.Container) Option {
	return internal.WithConfig(c)
}

// WithRoot sets the site root directory exposed as {{ engine:root }}.
func WithRoot(dir string) Option {
	return internal.WithRoot(dir)
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// WithMiddleware adds global middleware to the engine.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithModules registers modules in start order.
func WithModules(modules ...Module) Option {
	return internal.WithModules(modules...)
}

// WithTemplates sets the filesystem templates are loaded from.
func WithTemplates(fsys fs.FS, opts ...view.RendererOption) Option {
	return internal.WithTemplates(fsys, opts...)
}

// WithRenderer sets a fully configured renderer.
func WithRenderer(r *view.Renderer) Option {
	return internal.WithRenderer(r)
}

// WithDecorators configures the decorator registry used by views.
func WithDecorators(opts ...decorator.Option) Option {
	return internal.WithDecorators(opts...)
}

// WithStaticFiles mounts a static file handler at the given pattern.
//
// Example:
//
//	sitegear.WithStaticFiles("/assets", os.DirFS("site"), "public")
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithCookieOptions configures the cookie manager.
func WithCookieOptions(opts ...cookie.Option) Option {
	return internal.WithCookieOptions(opts...)
}

// WithPageCache caches GET pages registered with Router.Page.
func WithPageCache(c cache.Cache[cache.Page], ttl time.Duration) Option {
	return internal.WithPageCache(c, ttl)
}

// WithDB shares a PostgreSQL pool with modules.
func WithDB(pool *pgxpool.Pool) Option {
	return internal.WithDB(pool)
}

// WithJobs runs module tasks on River over pool.
func WithJobs(pool *pgxpool.Pool, opts ...job.Option) Option {
	return internal.WithJobs(pool, opts...)
}

// WithInlineJobs runs tasks in-process.
func WithInlineJobs(opts ...job.Option) Option {
	return internal.WithInlineJobs(opts...)
}

// WithMailer enables email through sender.
func WithMailer(sender mailer.Sender, cfg mailer.Config) Option {
	return internal.WithMailer(sender, cfg)
}

// WithStorage sets file storage. Local storage is served at its base URL.
func WithStorage(s storage.Storage) Option {
	return internal.WithStorage(s)
}

// WithHealthChecks enables health check endpoints.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks.
//
// Example:
//
//	sitegear.WithHealthChecks(
//	    sitegear.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithHealthTimeout bounds the whole readiness run.
func WithHealthTimeout(d time.Duration) HealthOption {
	return internal.WithHealthTimeout(d)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithOptionalCheck adds a check whose failure only degrades readiness.
func WithOptionalCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithOptionalCheck(name, fn)
}

// Run options

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server logger.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// ShutdownHook registers a cleanup function to run after the engine stops.
//
// Example:
//
//	sitegear.ShutdownHook(db.Shutdown(pool))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Context helpers

// ContextValue retrieves a typed value stored with Context.Set.
//
// Example:
//
//	type sectionKey struct{}
//
//	section := sitegear.ContextValue[string](c, sectionKey{})
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a typed URL parameter.
func Param[T internal.Scalar](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns a typed query parameter.
func Query[T internal.Scalar](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a typed query parameter or defaultValue.
//
// Example:
//
//	page := sitegear.QueryDefault(c, "page", 1)
func QueryDefault[T internal.Scalar](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// Extractors

// NewExtractor creates an Extractor that tries the given sources in order.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return internal.NewExtractor(sources...)
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource { return internal.FromHeader(name) }

// FromQuery reads a query parameter.
func FromQuery(name string) ExtractorSource { return internal.FromQuery(name) }

// FromParam reads a URL parameter.
func FromParam(name string) ExtractorSource { return internal.FromParam(name) }

// FromForm reads a posted form field.
func FromForm(name string) ExtractorSource { return internal.FromForm(name) }

// HTTP errors

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// ErrBadRequest creates a 400 error.
func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrBadRequest(message, opts...)
}

// ErrForbidden creates a 403 error.
func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrForbidden(message, opts...)
}

// ErrNotFound creates a 404 error.
func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrNotFound(message, opts...)
}

// ErrUnprocessable creates a 422 error.
func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrUnprocessable(message, opts...)
}

// ErrInternal creates a 500 error.
func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.ErrInternal(message, opts...)
}

// WithTitle sets the error title.
func WithTitle(title string) HTTPErrorOption { return internal.WithTitle(title) }

// WithDetail sets the extended description.
func WithDetail(detail string) HTTPErrorOption { return internal.WithDetail(detail) }

// WithError attaches the underlying error.
func WithError(err error) HTTPErrorOption { return internal.WithError(err) }

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// StatusOf returns the status code an error is answered with.
func StatusOf(err error) int {
	if herr := internal.AsHTTPError(err); herr != nil {
		return herr.StatusCode()
	}
	return http.StatusInternalServerError
}
