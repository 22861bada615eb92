package health

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultTimeout = 5 * time.Second

// Overall and per-check states.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// CheckFunc reports a dependency's health.
type CheckFunc func(ctx context.Context) error

// Response is the readiness report.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is one entry of a Response.
type Check struct {
	Status   string `json:"status"`
	Error    string `json:"error,omitempty"`
	Optional bool   `json:"optional,omitempty"`
}

type entry struct {
	fn       CheckFunc
	optional bool
}

// Checker holds named readiness checks. Failing required checks make the
// site unhealthy; failing optional checks (such as the page cache) only
// degrade it.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]entry
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Checker.
type Option func(*Checker)

// WithTimeout bounds the whole run. Default: 5s.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failing checks.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty Checker.
func New(opts ...Option) *Checker {
	c := &Checker{
		checks:  make(map[string]entry),
		timeout: defaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers a required check, replacing one with the same name.
func (c *Checker) Add(name string, fn CheckFunc) {
	c.add(name, entry{fn: fn})
}

// AddOptional registers a check whose failure only degrades the site.
func (c *Checker) AddOptional(name string, fn CheckFunc) {
	c.add(name, entry{fn: fn, optional: true})
}

func (c *Checker) add(name string, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = e
}

// Names lists registered checks in order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.checks))
}

// Run executes all checks concurrently under the configured timeout.
func (c *Checker) Run(ctx context.Context) *Response {
	c.mu.RLock()
	checks := maps.Clone(c.checks)
	c.mu.RUnlock()

	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var mu sync.Mutex
	resp := &Response{Status: StatusHealthy, Checks: make(map[string]Check, len(checks))}

	// Checks never return errors to the group so one failure does not
	// cancel the others.
	var g errgroup.Group
	for name, e := range checks {
		g.Go(func() error {
			res := Check{Status: StatusHealthy, Optional: e.optional}
			if err := run(ctx, e.fn); err != nil {
				res.Status, res.Error = StatusUnhealthy, err.Error()
				c.logger.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Bool("optional", e.optional),
					slog.Any("error", err),
				)
			}

			mu.Lock()
			defer mu.Unlock()
			resp.Checks[name] = res
			switch {
			case res.Status == StatusHealthy:
			case !e.optional:
				resp.Status = StatusUnhealthy
			case resp.Status == StatusHealthy:
				resp.Status = StatusDegraded
			}
			return nil
		})
	}
	_ = g.Wait()
	return resp
}

func run(ctx context.Context, fn CheckFunc) error {
	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			return errors.Join(ErrCheckFailed, err)
		}
		return nil
	case <-ctx.Done():
		return errors.Join(ErrCheckTimeout, ctx.Err())
	}
}
