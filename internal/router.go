package internal

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sitegear/sitegear/pkg/cache"
)

// Router is the interface modules use to declare routes.
type Router interface {
	// GET registers a handler for GET requests.
	GET(path string, h HandlerFunc, mw ...Middleware)

	// POST registers a handler for POST requests.
	POST(path string, h HandlerFunc, mw ...Middleware)

	// PUT registers a handler for PUT requests.
	PUT(path string, h HandlerFunc, mw ...Middleware)

	// PATCH registers a handler for PATCH requests.
	PATCH(path string, h HandlerFunc, mw ...Middleware)

	// DELETE registers a handler for DELETE requests.
	DELETE(path string, h HandlerFunc, mw ...Middleware)

	// HEAD registers a handler for HEAD requests.
	HEAD(path string, h HandlerFunc, mw ...Middleware)

	// OPTIONS registers a handler for OPTIONS requests.
	OPTIONS(path string, h HandlerFunc, mw ...Middleware)

	// Page registers a GET handler that renders the view. The targets
	// [module, name] are pushed before h runs; if h writes nothing the
	// view is rendered with status 200. h may be nil.
	Page(path, name string, h HandlerFunc, mw ...Middleware)

	// Group creates an inline route group.
	Group(fn func(r Router))

	// Route creates a route group with a pattern prefix.
	Route(pattern string, fn func(r Router))

	// Use appends middleware to the router's middleware stack.
	Use(mw ...Middleware)

	// Mount attaches an http.Handler at the given pattern.
	Mount(pattern string, h http.Handler)

	// Module returns the name of the module the router belongs to.
	Module() string
}

// routerAdapter wraps chi.Router to implement the Router interface.
type routerAdapter struct {
	router chi.Router
	engine *Engine
	module string
}

func (r *routerAdapter) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Get(path, r.wrap(h, mw...))
}

func (r *routerAdapter) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Post(path, r.wrap(h, mw...))
}

func (r *routerAdapter) PUT(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Put(path, r.wrap(h, mw...))
}

func (r *routerAdapter) PATCH(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Patch(path, r.wrap(h, mw...))
}

func (r *routerAdapter) DELETE(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Delete(path, r.wrap(h, mw...))
}

func (r *routerAdapter) HEAD(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Head(path, r.wrap(h, mw...))
}

func (r *routerAdapter) OPTIONS(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Options(path, r.wrap(h, mw...))
}

func (r *routerAdapter) Page(path, name string, h HandlerFunc, mw ...Middleware) {
	module := r.module
	page := func(c Context) error {
		if module != "" {
			c.View().PushTarget(module)
		}
		c.View().PushTarget(name)
		if h != nil {
			if err := h(c); err != nil {
				return err
			}
		}
		if c.Written() {
			return nil
		}
		return c.Page(http.StatusOK)
	}
	if r.engine.pages != nil {
		page = r.engine.cachePage(page)
	}
	r.GET(path, page, mw...)
}

func (r *routerAdapter) Group(fn func(Router)) {
	r.router.Group(func(cr chi.Router) {
		fn(&routerAdapter{router: cr, engine: r.engine, module: r.module})
	})
}

func (r *routerAdapter) Route(pattern string, fn func(Router)) {
	r.router.Route(pattern, func(cr chi.Router) {
		fn(&routerAdapter{router: cr, engine: r.engine, module: r.module})
	})
}

func (r *routerAdapter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.router.Use(r.engine.adaptMiddleware(m))
	}
}

func (r *routerAdapter) Mount(pattern string, h http.Handler) {
	r.router.Mount(pattern, h)
}

func (r *routerAdapter) Module() string {
	return r.module
}

func (r *routerAdapter) wrap(h HandlerFunc, mw ...Middleware) http.HandlerFunc {
	// Apply route-specific middleware in reverse order (last registered = first executed)
	for _, m := range slices.Backward(mw) {
		h = m(h)
	}
	return r.engine.wrapHandler(h)
}

// adaptMiddleware converts a Middleware to chi middleware.
func (e *Engine) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nextFunc := func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return nil
			}
			c := newContext(w, r, e)
			if err := mw(nextFunc)(c); err != nil {
				e.handleError(c, err)
			}
		})
	}
}

// cachePage serves GET pages from the page cache, rendering on a miss.
// Concurrent misses for one URL share a single render.
func (e *Engine) cachePage(next HandlerFunc) HandlerFunc {
	return func(c Context) error {
		rc, ok := c.(*requestContext)
		if !ok {
			return next(c)
		}

		key := cache.PageKey(http.MethodGet, c.Request().URL.RequestURI())
		p, err := cache.GetOrSet(c, e.pages, key, func(context.Context) (cache.Page, time.Duration, error) {
			rec := newPageRecorder()
			restore := rc.capture(rec)
			err := next(c)
			restore()
			if err != nil {
				return cache.Page{}, 0, err
			}
			page, shareable := rec.page()
			if !shareable {
				return page, -1, nil
			}
			return page, e.pageTTL, nil
		})
		if err != nil {
			return err
		}
		return p.Write(c.Response())
	}
}
