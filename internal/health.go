package internal

import (
	"time"

	"github.com/sitegear/sitegear/pkg/db"
	"github.com/sitegear/sitegear/pkg/health"
	"github.com/sitegear/sitegear/pkg/job"
)

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checker       *health.Checker
	livenessPath  string
	readinessPath string
	timeout       time.Duration
	checks        []healthCheck
}

type healthCheck struct {
	fn       health.CheckFunc
	name     string
	optional bool
}

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithHealthTimeout bounds the whole readiness run.
func WithHealthTimeout(d time.Duration) HealthOption {
	return func(c *healthConfig) {
		c.timeout = d
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	sitegear.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		c.checks = append(c.checks, healthCheck{name: name, fn: fn})
	}
}

// WithOptionalCheck adds a check whose failure degrades readiness without
// failing it, e.g. a cache the site can run without.
func WithOptionalCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		c.checks = append(c.checks, healthCheck{name: name, fn: fn, optional: true})
	}
}

// WithHealthChecks enables health check endpoints.
// Liveness always answers OK while the process runs. Readiness runs the
// configured checks plus the database and job queue when the engine has them.
func WithHealthChecks(opts ...HealthOption) Option {
	return func(e *Engine) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		e.health = cfg
	}
}

// setupHealth builds the checker once the engine's services are known.
func (e *Engine) setupHealth() {
	if e.health == nil {
		return
	}
	hopts := []health.Option{health.WithLogger(e.logger)}
	if e.health.timeout > 0 {
		hopts = append(hopts, health.WithTimeout(e.health.timeout))
	}
	c := health.New(hopts...)

	if e.db != nil {
		c.Add("db", db.Healthcheck(e.db))
	}
	if e.queue != nil {
		c.Add("jobs", job.Healthcheck(e.queue))
	}
	for _, hc := range e.health.checks {
		if hc.optional {
			c.AddOptional(hc.name, hc.fn)
		} else {
			c.Add(hc.name, hc.fn)
		}
	}
	e.health.checker = c
}
