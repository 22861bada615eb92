package job

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

const defaultMaxWorkers = 50

type config struct {
	registry   *registry
	schedules  []schedule
	queues     map[string]int
	logger     *slog.Logger
	maxWorkers int
}

type schedule struct {
	name string
	spec cron.Schedule
	expr string
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		registry:   newRegistry(),
		queues:     make(map[string]int),
		logger:     slog.New(slog.DiscardHandler),
		maxWorkers: defaultMaxWorkers,
	}
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

// Option configures a Manager or an Inline runner.
type Option func(*config) error

// WithTask registers a task. The payload type is inferred from Handle.
//
//	job.WithTask(forms.NewNotifyTask(mailer))
func WithTask[P any](t Task[P]) Option {
	return func(c *config) error {
		c.registry.add(t.Name(), typed(t))
		return nil
	}
}

// WithScheduledTask registers a task that runs periodically.
// An empty schedule registers the task without scheduling it, so it can
// still be enqueued by name.
func WithScheduledTask(t ScheduledTask) Option {
	return func(c *config) error {
		c.registry.add(t.Name(), untyped(t.Handle))
		expr := t.Schedule()
		if expr == "" {
			return nil
		}
		spec, err := parseSchedule(expr)
		if err != nil {
			return err
		}
		c.schedules = append(c.schedules, schedule{name: t.Name(), spec: spec, expr: expr})
		return nil
	}
}

// WithQueue configures a named queue with its own worker count.
func WithQueue(name string, workers int) Option {
	return func(c *config) error {
		if workers > 0 {
			c.queues[name] = workers
		}
		return nil
	}
}

// WithLogger sets the logger used for task execution.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}

// WithMaxWorkers sets the worker count of the default queue. Default: 50.
func WithMaxWorkers(n int) Option {
	return func(c *config) error {
		if n > 0 {
			c.maxWorkers = n
		}
		return nil
	}
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func parseSchedule(expr string) (cron.Schedule, error) {
	s, err := cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, expr, err)
	}
	return s, nil
}
