// Package logger builds the site's structured logger on top of log/slog.
//
// Loggers are created from a Config, usually filled from the site
// configuration keys logging.level, logging.format and logging.sentry-dsn:
//
//	log, err := logger.New(logger.Config{Level: "debug", Format: "text"},
//		logger.ValueExtractor[string](requestIDKey{}, "request_id"),
//	)
//
// Context extractors run for every record, so attributes such as the request
// id are attached without passing them explicitly. When a Sentry DSN is set,
// records are fanned out to stdout and Sentry; errors create Sentry issues.
//
// NewNope returns a logger that discards everything and is the default for
// components constructed without one.
package logger
