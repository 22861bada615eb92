// Package middlewares provides HTTP middleware for Sitegear sites.
//
// # Request ID
//
// RequestID assigns an ID to each request for tracing. An ID from
// X-Request-ID or X-Correlation-ID is kept, otherwise a UUID is generated.
// Views see it as "request_id" and error pages as "error.request_id".
//
// Use RequestIDExtractor with logger.New for a request_id on every log
// entry written with the request context:
//
//	log := logger.MustNew(cfg, middlewares.RequestIDExtractor())
//	e := sitegear.New(
//	    sitegear.WithLogger(log),
//	    sitegear.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	)
//
// # Recover
//
// Recover turns panics in handlers, templates and components into a 500
// HTTPError wrapping a PanicError, so the site's error page is shown:
//
//	sitegear.WithErrorHandler(func(c sitegear.Context, err error) error {
//	    if pe, ok := middlewares.AsPanicError(err); ok {
//	        c.LogError("panic", "value", pe.Value)
//	    }
//	    return c.String(http.StatusInternalServerError, "Something broke")
//	})
//
// Register RequestID before Recover so recovered panics are logged with the
// request ID.
package middlewares
