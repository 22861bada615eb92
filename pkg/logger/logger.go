package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
)

// New creates a logger from cfg. Context extractors are applied to every
// destination, including Sentry when it is enabled.
//
// A Sentry failure is not fatal: the stdout logger is returned together
// with an error wrapping ErrSentryInit so the caller can report it.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	format, err := parseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	base := newStreamHandler(out, format, level)
	if cfg.SentryDSN == "" {
		return slog.New(NewLogHandlerDecorator(base, extractors...)), nil
	}

	sh, err := newSentryHandler(cfg.SentryDSN, cfg.Environment, level)
	if err != nil {
		return slog.New(NewLogHandlerDecorator(base, extractors...)), errors.Join(ErrSentryInit, err)
	}
	return slog.New(NewLogHandlerDecorator(Fanout(base, sh), extractors...)), nil
}

// MustNew is like New but panics when the configuration is invalid.
// Sentry initialization errors are ignored.
func MustNew(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	log, err := New(cfg, extractors...)
	if log == nil {
		panic(err)
	}
	return log
}

// NewNope creates a logger that discards all output.
func NewNope() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStreamHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == FormatText {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
