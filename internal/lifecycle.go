package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Start starts modules in registration order, then the job queue.
// Module tasks are registered before any module starts, and task handlers
// may rely on state the module sets up in Start. On failure the modules
// already started are stopped again.
func (e *Engine) Start(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if e.running {
		return ErrAlreadyStarted
	}

	for _, m := range e.modules {
		s, ok := m.(Starter)
		if !ok {
			continue
		}
		if err := s.Start(ctx, e.host(m)); err != nil {
			err = fmt.Errorf("start module %s: %w", m.Name(), err)
			return errors.Join(err, e.stopModules(ctx))
		}
		e.started = append(e.started, m)
		e.logger.DebugContext(ctx, "module started", slog.String("module", m.Name()))
	}

	if e.queue != nil {
		if err := e.queue.Start(ctx); err != nil {
			return errors.Join(fmt.Errorf("start job queue: %w", err), e.stopModules(ctx))
		}
	}

	e.running = true
	return nil
}

// Stop stops the job queue, then the started modules in reverse order.
// Every module gets a Stop call even when an earlier one fails.
func (e *Engine) Stop(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()

	if !e.running {
		return nil
	}
	e.running = false

	var errs []error
	if e.queue != nil && e.queue.Running() {
		if err := e.queue.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop job queue: %w", err))
		}
	}
	if err := e.stopModules(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Running reports whether Start has completed and Stop was not called.
func (e *Engine) Running() bool {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.running
}

// stopModules stops started modules in reverse order. Caller holds runMu.
func (e *Engine) stopModules(ctx context.Context) error {
	var errs []error
	for _, m := range slices.Backward(e.started) {
		s, ok := m.(Stopper)
		if !ok {
			continue
		}
		if err := s.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop module %s: %w", m.Name(), err))
			e.logger.ErrorContext(ctx, "module stop failed",
				slog.String("module", m.Name()),
				slog.Any("error", err),
			)
		}
	}
	e.started = nil
	return errors.Join(errs...)
}

// Run starts the engine, serves HTTP on addr until SIGINT/SIGTERM or the
// WithContext context ends, then shuts the server down and stops the
// engine.
//
// Example:
//
//	if err := e.Run(":8080", sitegear.ShutdownHook(db.Shutdown(pool))); err != nil {
//	    log.Fatal(err)
//	}
func (e *Engine) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(append([]RunOption{Address(addr), Logger(e.logger)}, opts...)...)

	ctx := cfg.baseCtx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.Start(ctx); err != nil {
		return err
	}

	hooks := append([]func(context.Context) error{e.Stop}, cfg.shutdownHooks...)
	return runServer(runtimeConfig{
		handler:         e,
		address:         cfg.address,
		logger:          cfg.logger,
		server:          limitsFrom(e.config),
		shutdownTimeout: cfg.shutdownTimeout,
		shutdownHooks:   hooks,
		baseCtx:         cfg.baseCtx,
	})
}
