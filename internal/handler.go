package internal

import (
	"context"

	"github.com/sitegear/sitegear/pkg/config"
	"github.com/sitegear/sitegear/pkg/job"
	"github.com/sitegear/sitegear/pkg/view"
)

// HandlerFunc is the signature for route handlers.
// Returning a non-nil error triggers the engine's error handler.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
//
// Example:
//
//	func Private(next sitegear.HandlerFunc) sitegear.HandlerFunc {
//	    return func(c sitegear.Context) error {
//	        if c.Header("X-Internal") == "" {
//	            return c.Error(http.StatusForbidden, "Forbidden")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error

// Component renders itself to a writer. It is the templ.Component interface.
type Component = view.Component

// Module is a named unit of site functionality. Everything else a module
// can do is expressed through the optional interfaces below.
type Module interface {
	Name() string
}

// Starter is implemented by modules that need setup before serving.
type Starter interface {
	Start(ctx context.Context, h *Host) error
}

// Stopper is implemented by modules that hold resources.
type Stopper interface {
	Stop(ctx context.Context) error
}

// Mounter is implemented by modules that serve routes. Routes are mounted
// at modules.<name>.mount, "/<name>" by default.
type Mounter interface {
	Routes(r Router)
}

// ComponentProvider is implemented by modules that render components for
// the component template function.
type ComponentProvider interface {
	Component(c Context, name string, args ...any) (Component, error)
}

// Tasker is implemented by modules that run background tasks. The options
// are registered with the engine's job queue when the engine is built; cfg
// is the module's section, modules.<name>.
type Tasker interface {
	Tasks(cfg *config.Container) []job.Option
}
