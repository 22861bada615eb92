package job

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Task is a named handler for payloads of type P.
type Task[P any] interface {
	Name() string
	Handle(ctx context.Context, payload P) error
}

// ScheduledTask runs on a cron schedule (five fields: min hour dom month dow).
type ScheduledTask interface {
	Name() string
	Schedule() string
	Handle(ctx context.Context) error
}

type executor func(ctx context.Context, raw json.RawMessage) error

// registry maps task names to type-erased executors.
type registry struct {
	mu    sync.RWMutex
	tasks map[string]executor
}

func newRegistry() *registry {
	return &registry{tasks: make(map[string]executor)}
}

func (r *registry) add(name string, ex executor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[name] = ex
}

func (r *registry) has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tasks[name]
	return ok
}

func (r *registry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.tasks))
}

func (r *registry) run(ctx context.Context, name string, raw json.RawMessage) error {
	r.mu.RLock()
	ex, ok := r.tasks[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	return ex(ctx, raw)
}

func typed[P any](t Task[P]) executor {
	return func(ctx context.Context, raw json.RawMessage) error {
		var p P
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &p); err != nil {
				return errors.Join(ErrInvalidPayload, err)
			}
		}
		return t.Handle(ctx, p)
	}
}

func untyped(fn func(context.Context) error) executor {
	return func(ctx context.Context, _ json.RawMessage) error { return fn(ctx) }
}

type funcTask[P any] struct {
	name string
	fn   func(context.Context, P) error
}

func (t funcTask[P]) Name() string { return t.name }
func (t funcTask[P]) Handle(ctx context.Context, p P) error { return t.fn(ctx, p) }

// Func adapts a function into a Task.
func Func[P any](name string, fn func(ctx context.Context, payload P) error) Task[P] {
	return funcTask[P]{name: name, fn: fn}
}

type scheduled struct {
	name, spec string
	fn         func(context.Context) error
}

func (s scheduled) Name() string { return s.name }
func (s scheduled) Schedule() string { return s.spec }
func (s scheduled) Handle(ctx context.Context) error { return s.fn(ctx) }

// Every adapts a function into a ScheduledTask.
func Every(name, spec string, fn func(ctx context.Context) error) ScheduledTask {
	return scheduled{name: name, spec: spec, fn: fn}
}
