package decorator

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Func transforms rendered content.
type Func func(ctx context.Context, content string, args ...string) (string, error)

// Registry maps decorator names to functions. It is safe for concurrent use.
type Registry struct {
	funcs map[string]Func
	mu    sync.RWMutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithDecorator registers fn under name.
func WithDecorator(name string, fn Func) Option {
	return func(r *Registry) {
		r.funcs[name] = fn
	}
}

// New creates a registry with the built-in decorators registered.
func New(opts ...Option) *Registry {
	r := &Registry{funcs: builtins()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds or replaces a decorator.
func (r *Registry) Register(name string, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.funcs[name]
	return ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.funcs))
}

// Apply runs the decorators named by specs over content, in order.
func (r *Registry) Apply(ctx context.Context, content string, specs ...string) (string, error) {
	for _, spec := range specs {
		name, args := Parse(spec)
		if name == "" {
			continue
		}

		r.mu.RLock()
		fn, ok := r.funcs[name]
		r.mu.RUnlock()
		if !ok {
			return "", fmt.Errorf("%w: %q", ErrUnknownDecorator, name)
		}

		out, err := fn(ctx, content, args...)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrDecorateFailed, name, err)
		}
		content = out
	}
	return content, nil
}

// Parse splits "name:arg1,arg2" into the name and trimmed arguments.
// A spec without ":" has no arguments.
func Parse(spec string) (string, []string) {
	name, rest, found := strings.Cut(strings.TrimSpace(spec), ":")
	name = strings.TrimSpace(name)
	if !found || strings.TrimSpace(rest) == "" {
		return name, nil
	}

	parts := strings.Split(rest, ",")
	args := make([]string, 0, len(parts))
	for _, p := range parts {
		args = append(args, strings.TrimSpace(p))
	}
	return name, args
}
