package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Inline runs tasks in background goroutines of the current process.
// It backs sites without a database: nothing survives a restart and
// failed tasks are retried in place up to MaxAttempts.
type Inline struct {
	registry *registry
	logger   *slog.Logger
	cron     *cron.Cron

	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewInline creates an in-process queue. Scheduled tasks are driven by a
// cron scheduler started with Start.
func NewInline(opts ...Option) (*Inline, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	q := &Inline{
		registry: cfg.registry,
		logger:   cfg.logger,
		cron:     cron.New(cron.WithParser(cronParser)),
	}
	for _, s := range cfg.schedules {
		name := s.name
		q.cron.Schedule(s.spec, cron.FuncJob(func() {
			q.execute(context.Background(), name, nil, 1)
		}))
	}
	return q, nil
}

// Enqueue runs the task asynchronously, after the scheduled time if one
// is given. The request context's values are kept; its cancellation is not.
func (q *Inline) Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error {
	if !q.registry.has(name) {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}
	raw, err := marshalPayload(payload)
	if err != nil {
		return err
	}

	c := applyEnqueue(opts)
	ctx = context.WithoutCancel(ctx)
	attempts := max(c.maxAttempts, 1)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if d := time.Until(c.scheduledAt); !c.scheduledAt.IsZero() && d > 0 {
			time.Sleep(d)
		}
		q.execute(ctx, name, raw, attempts)
	}()
	return nil
}

// Run executes a task synchronously.
func (q *Inline) Run(ctx context.Context, name string, payload any) error {
	raw, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	return q.registry.run(ctx, name, raw)
}

func (q *Inline) execute(ctx context.Context, name string, raw []byte, attempts int) {
	log := q.logger.With(slog.String("task", name))
	for attempt := 1; attempt <= attempts; attempt++ {
		err := q.registry.run(ctx, name, raw)
		if err == nil {
			log.DebugContext(ctx, "task completed", slog.Int("attempt", attempt))
			return
		}
		log.ErrorContext(ctx, "task failed", slog.Int("attempt", attempt), slog.Any("error", err))
	}
}

func (q *Inline) Start(context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return ErrAlreadyStarted
	}
	q.cron.Start()
	q.running = true
	return nil
}

// Stop halts the scheduler and waits for in-flight tasks or ctx.
func (q *Inline) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return ErrNotStarted
	}
	q.running = false
	q.mu.Unlock()

	cronDone := q.cron.Stop().Done()
	done := make(chan struct{})
	go func() {
		<-cronDone
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until all enqueued tasks have finished.
func (q *Inline) Wait() { q.wg.Wait() }

func (q *Inline) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

func (q *Inline) Tasks() []string { return q.registry.names() }
