package internal

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sitegear/sitegear/pkg/job"
)

// jobConfig records how the job queue is built.
type jobConfig struct {
	pool *pgxpool.Pool
	opts []job.Option
}

// setupQueue builds the job queue from WithJobs or WithInlineJobs plus the
// tasks of every Tasker module. Without either and without module tasks
// the engine has no queue.
func (e *Engine) setupQueue() error {
	var tasks []job.Option
	for _, m := range e.modules {
		if t, ok := m.(Tasker); ok {
			tasks = append(tasks, t.Tasks(e.config.Sub("modules."+m.Name()))...)
		}
	}

	cfg := e.jobs
	if cfg == nil {
		if len(tasks) == 0 {
			return nil
		}
		cfg = &jobConfig{}
	}

	opts := make([]job.Option, 0, len(cfg.opts)+len(tasks)+1)
	opts = append(opts, job.WithLogger(e.logger))
	opts = append(opts, cfg.opts...)
	opts = append(opts, tasks...)

	if cfg.pool != nil {
		m, err := job.NewManager(cfg.pool, opts...)
		if err != nil {
			return err
		}
		e.queue = m
		if e.db == nil {
			e.db = cfg.pool
		}
		return nil
	}

	q, err := job.NewInline(opts...)
	if err != nil {
		return err
	}
	e.queue = q
	return nil
}
