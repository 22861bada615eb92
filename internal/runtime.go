package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sitegear/sitegear/pkg/config"
)

// runtimeConfig holds configuration for running the HTTP server.
type runtimeConfig struct {
	handler         http.Handler
	address         string
	logger          *slog.Logger
	server          serverLimits
	shutdownTimeout time.Duration
	shutdownHooks   []func(context.Context) error
	baseCtx         context.Context
}

// serverLimits are the http.Server timeouts and header limit.
type serverLimits struct {
	read, readHeader, write, idle time.Duration
	maxHeaderBytes                int
}

// limitsFrom reads the server section:
//
//	server:
//	  read-timeout: 15s
//	  read-header-timeout: 5s
//	  write-timeout: 30s
//	  idle-timeout: 2m
//	  max-header-bytes: 1048576
func limitsFrom(cfg *config.Container) serverLimits {
	return serverLimits{
		read:           cfg.Duration("server.read-timeout", defaultReadTimeout),
		readHeader:     cfg.Duration("server.read-header-timeout", defaultReadHeaderTimeout),
		write:          cfg.Duration("server.write-timeout", defaultWriteTimeout),
		idle:           cfg.Duration("server.idle-timeout", defaultIdleTimeout),
		maxHeaderBytes: cfg.Int("server.max-header-bytes", defaultMaxHeaderBytes),
	}
}

// runServer serves until the base context ends or SIGINT/SIGTERM, then
// drains the server and runs the shutdown hooks. Hooks also run when the
// listener cannot be opened, so a started engine is always stopped.
func runServer(cfg runtimeConfig) error {
	if cfg.address == "" {
		cfg.address = ":8080"
	}
	if cfg.shutdownTimeout == 0 {
		cfg.shutdownTimeout = defaultShutdownTimeout
	}
	log := cfg.logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	server := &http.Server{
		Addr:              cfg.address,
		Handler:           cfg.handler,
		ReadTimeout:       cfg.server.read,
		ReadHeaderTimeout: cfg.server.readHeader,
		WriteTimeout:      cfg.server.write,
		IdleTimeout:       cfg.server.idle,
		MaxHeaderBytes:    cfg.server.maxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	baseCtx := cfg.baseCtx
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(baseCtx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return errors.Join(err, runHooks(cfg.shutdownHooks, cfg.shutdownTimeout, log))
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("site listening", slog.String("address", ln.Addr().String()))
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return errors.Join(err, runHooks(cfg.shutdownHooks, cfg.shutdownTimeout, log))
		}
	case <-ctx.Done():
	}

	log.Info("site shutting down")
	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
	defer drainCancel()

	errs := []error{server.Shutdown(drainCtx)}
	errs = append(errs, runHooks(cfg.shutdownHooks, cfg.shutdownTimeout, log))
	if err := errors.Join(errs...); err != nil {
		log.Error("site stopped with errors", slog.Any("error", err))
		return err
	}
	log.Info("site stopped")
	return nil
}

// runHooks calls each hook in order with a shared timeout.
func runHooks(hooks []func(context.Context) error, timeout time.Duration, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			errs = append(errs, err)
			log.Error("shutdown hook failed", slog.Any("error", err))
		}
	}
	return errors.Join(errs...)
}
