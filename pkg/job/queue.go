package job

import (
	"context"
	"errors"
)

// Queue runs tasks registered with WithTask and WithScheduledTask.
// Manager persists jobs in PostgreSQL; Inline runs them in-process.
type Queue interface {
	Enqueue(ctx context.Context, name string, payload any, opts ...EnqueueOption) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Running() bool
	Tasks() []string
}

var (
	_ Queue = (*Manager)(nil)
	_ Queue = (*Inline)(nil)
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Healthcheck reports whether q is running and, for database-backed
// queues, whether the database answers.
func Healthcheck(q Queue) func(context.Context) error {
	return func(ctx context.Context) error {
		if q == nil {
			return errors.Join(ErrHealthcheckFailed, errors.New("queue is nil"))
		}
		if !q.Running() {
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}
		if p, ok := q.(pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return errors.Join(ErrHealthcheckFailed, err)
			}
		}
		return nil
	}
}
