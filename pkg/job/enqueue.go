package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/riverqueue/river"
)

type enqueueConfig struct {
	scheduledAt time.Time
	queue       string
	uniqueKey   string
	tags        []string
	maxAttempts int
	uniqueFor   time.Duration
	priority    int
}

// EnqueueOption configures a single enqueue call.
type EnqueueOption func(*enqueueConfig)

// InQueue selects a named queue instead of the default one.
func InQueue(name string) EnqueueOption {
	return func(c *enqueueConfig) {
		if name != "" {
			c.queue = name
		}
	}
}

// ScheduledAt delays the job until t.
func ScheduledAt(t time.Time) EnqueueOption {
	return func(c *enqueueConfig) { c.scheduledAt = t }
}

// ScheduledIn delays the job by d.
func ScheduledIn(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.scheduledAt = time.Now().Add(d) }
}

// MaxAttempts caps retries of a failing job.
func MaxAttempts(n int) EnqueueOption {
	return func(c *enqueueConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// UniqueFor skips the job when one with the same task and key was
// enqueued within d.
func UniqueFor(d time.Duration) EnqueueOption {
	return func(c *enqueueConfig) { c.uniqueFor = d }
}

// UniqueKey sets the deduplication key used with UniqueFor.
func UniqueKey(key string) EnqueueOption {
	return func(c *enqueueConfig) { c.uniqueKey = key }
}

// Priority orders jobs; lower runs first (1 to 4).
func Priority(p int) EnqueueOption {
	return func(c *enqueueConfig) { c.priority = p }
}

// Tags attaches labels for monitoring.
func Tags(tags ...string) EnqueueOption {
	return func(c *enqueueConfig) { c.tags = append(c.tags, tags...) }
}

func applyEnqueue(opts []EnqueueOption) enqueueConfig {
	var c enqueueConfig
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func marshalPayload(payload any) (json.RawMessage, error) {
	if payload == nil {
		return nil, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return raw, nil
}

// buildJobArgs converts an enqueue call into river insert arguments.
func buildJobArgs(name string, payload any, opts ...EnqueueOption) (*taskArgs, *river.InsertOpts, error) {
	raw, err := marshalPayload(payload)
	if err != nil {
		return nil, nil, err
	}

	c := applyEnqueue(opts)
	args := &taskArgs{Task: name, Payload: raw}
	ins := &river.InsertOpts{
		Queue:       c.queue,
		ScheduledAt: c.scheduledAt,
		MaxAttempts: c.maxAttempts,
		Tags:        c.tags,
	}
	if c.priority > 0 {
		ins.Priority = c.priority
	}
	if c.uniqueFor > 0 {
		ins.UniqueOpts = river.UniqueOpts{ByArgs: true, ByPeriod: c.uniqueFor}
		args.UniqueKey = c.uniqueKey
	}
	return args, ins, nil
}
