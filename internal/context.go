package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sitegear/sitegear/pkg/config"
	"github.com/sitegear/sitegear/pkg/job"
	"github.com/sitegear/sitegear/pkg/mailer"
	"github.com/sitegear/sitegear/pkg/storage"
	"github.com/sitegear/sitegear/pkg/view"
)

// contextKey stores the request Context in the request's context.Context.
type contextKey struct{}

// contextFrom returns the request Context carried by ctx, if any.
func contextFrom(ctx context.Context) Context {
	if c, ok := ctx.(Context); ok {
		return c
	}
	if c, ok := ctx.Value(contextKey{}).(Context); ok {
		return c
	}
	return nil
}

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns the URL parameter value by name.
	// Returns empty string if the parameter doesn't exist.
	Param(name string) string

	// Query returns the query parameter value by name.
	// Returns empty string if the parameter doesn't exist.
	Query(name string) string

	// QueryDefault returns the query parameter value or a default.
	QueryDefault(name, defaultValue string) string

	// Form returns the form value by name.
	Form(name string) string

	// FormFile returns the first file for the given form key.
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// View returns the request's view, creating it on first use with the
	// site layout, site data and site resources.
	View() *view.View

	// Config returns the site configuration.
	Config() *config.Container

	// Module returns a registered module by name.
	Module(name string) (Module, error)

	// Page renders the view with the given status code.
	Page(code int) error

	// Render renders a component with the given status code.
	// Compatible with templ.Component.
	Render(code int, component Component) error

	// HTML writes an HTML response with the given status code.
	HTML(code int, html string) error

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Redirect redirects to the given URL with the given status code.
	Redirect(code int, url string) error

	// Error creates and returns an HTTPError without writing a response.
	// The error should be returned from the handler to trigger the error handler.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Written returns true if a response has already been written.
	Written() bool

	// ResponseWriter returns the wrapped response writer.
	ResponseWriter() *ResponseWriter

	// Logger returns the logger for advanced usage.
	Logger() *slog.Logger

	// LogDebug logs a debug message with optional attributes.
	LogDebug(msg string, attrs ...any)

	// LogInfo logs an info message with optional attributes.
	LogInfo(msg string, attrs ...any)

	// LogWarn logs a warning message with optional attributes.
	LogWarn(msg string, attrs ...any)

	// LogError logs an error message with optional attributes.
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	// The value can be retrieved using Get or from c.Context().Value(key).
	Set(key any, value any)

	// Get retrieves a value from the request context.
	// Returns nil if the key is not found.
	Get(key any) any

	// Cookie returns a plain cookie value.
	Cookie(name string) (string, error)

	// SetCookie sets a plain cookie.
	SetCookie(name, value string, maxAge int)

	// DeleteCookie removes a cookie.
	DeleteCookie(name string)

	// CookieSigned returns a signed cookie value.
	// Returns cookie.ErrNoSecret if no secret is configured.
	CookieSigned(name string) (string, error)

	// SetCookieSigned sets a signed cookie.
	SetCookieSigned(name, value string, maxAge int) error

	// CookieEncrypted returns an encrypted cookie value.
	CookieEncrypted(name string) (string, error)

	// SetCookieEncrypted sets an encrypted cookie.
	SetCookieEncrypted(name, value string, maxAge int) error

	// CookieValue decodes an encrypted JSON cookie into dest.
	CookieValue(name string, dest any) error

	// SetCookieValue stores v as an encrypted JSON cookie.
	SetCookieValue(name string, v any, maxAge int) error

	// Flash reads and deletes a flash message.
	Flash(key string, dest any) error

	// SetFlash sets a flash message.
	SetFlash(key string, value any) error

	// Enqueue adds a task to the job queue.
	// Returns ErrNoQueue if the engine has no queue.
	Enqueue(name string, payload any, opts ...job.EnqueueOption) error

	// Storage returns the configured storage.
	// Returns ErrNoStorage if the engine has none.
	Storage() (storage.Storage, error)

	// Upload stores data and returns file info.
	Upload(r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error)

	// UploadFile stores a multipart file, keeping its name and type.
	UploadFile(fh *multipart.FileHeader, opts ...storage.Option) (*storage.FileInfo, error)

	// FileURL generates a URL for accessing the file.
	FileURL(key string, opts ...storage.URLOption) (string, error)

	// Mailer returns the engine mailer.
	// Returns ErrNoMailer if the engine has none.
	Mailer() (*mailer.Mailer, error)
}

// requestContext implements the Context interface.
type requestContext struct {
	response       http.ResponseWriter
	request        *http.Request
	responseWriter *ResponseWriter
	engine         *Engine
	view           *view.View
}

// newContext creates a new context with the response wrapper.
func newContext(w http.ResponseWriter, r *http.Request, e *Engine) *requestContext {
	rw := NewResponseWriter(w)
	c := &requestContext{
		response:       rw,
		responseWriter: rw,
		engine:         e,
	}
	c.request = r.WithContext(context.WithValue(r.Context(), contextKey{}, Context(c)))
	return c
}

// capture redirects the response into w until the returned func is called.
func (c *requestContext) capture(w http.ResponseWriter) func() {
	prevResponse, prevWriter := c.response, c.responseWriter
	rw := NewResponseWriter(w)
	c.response, c.responseWriter = rw, rw
	return func() {
		c.response, c.responseWriter = prevResponse, prevWriter
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	v := c.request.URL.Query().Get(name)
	if v == "" {
		return defaultValue
	}
	return v
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) View() *view.View {
	if c.view != nil {
		return c.view
	}
	if v := view.FromContext(c.request.Context()); v != nil {
		c.view = v
		return v
	}
	c.view = c.engine.newView(c.request)
	c.request = c.request.WithContext(view.WithView(c.request.Context(), c.view))
	return c.view
}

func (c *requestContext) Config() *config.Container {
	return c.engine.config
}

func (c *requestContext) Module(name string) (Module, error) {
	return c.engine.Module(name)
}

func (c *requestContext) Page(code int) error {
	var buf bytes.Buffer
	if err := c.engine.renderer.Render(c, &buf, c.View()); err != nil {
		return err
	}
	return c.write(code, "text/html; charset=utf-8", buf.Bytes())
}

func (c *requestContext) Render(code int, component Component) error {
	var buf bytes.Buffer
	if err := component.Render(c, &buf); err != nil {
		return err
	}
	return c.write(code, "text/html; charset=utf-8", buf.Bytes())
}

func (c *requestContext) HTML(code int, html string) error {
	return c.write(code, "text/html; charset=utf-8", []byte(html))
}

func (c *requestContext) JSON(code int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.write(code, "application/json; charset=utf-8", append(data, '\n'))
}

func (c *requestContext) String(code int, s string) error {
	return c.write(code, "text/plain; charset=utf-8", []byte(s))
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return newHTTPError(code, message, opts)
}

// write sends a fully rendered body.
func (c *requestContext) write(code int, contentType string, body []byte) error {
	c.response.Header().Set("Content-Type", contentType)
	c.response.WriteHeader(code)
	_, err := c.response.Write(body)
	return err
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}

func (c *requestContext) Logger() *slog.Logger {
	return c.engine.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.engine.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.engine.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.engine.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.engine.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.engine.cookies.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.engine.cookies.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.engine.cookies.Delete(c.response, name)
}

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.engine.cookies.GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, maxAge int) error {
	return c.engine.cookies.SetSigned(c.response, name, value, maxAge)
}

func (c *requestContext) CookieEncrypted(name string) (string, error) {
	return c.engine.cookies.GetEncrypted(c.request, name)
}

func (c *requestContext) SetCookieEncrypted(name, value string, maxAge int) error {
	return c.engine.cookies.SetEncrypted(c.response, name, value, maxAge)
}

func (c *requestContext) CookieValue(name string, dest any) error {
	return c.engine.cookies.Value(c.request, name, dest)
}

func (c *requestContext) SetCookieValue(name string, v any, maxAge int) error {
	return c.engine.cookies.SetValue(c.response, name, v, maxAge)
}

func (c *requestContext) Flash(key string, dest any) error {
	return c.engine.cookies.Flash(c.response, c.request, key, dest)
}

func (c *requestContext) SetFlash(key string, value any) error {
	return c.engine.cookies.SetFlash(c.response, key, value)
}

func (c *requestContext) Enqueue(name string, payload any, opts ...job.EnqueueOption) error {
	if c.engine.queue == nil {
		return ErrNoQueue
	}
	return c.engine.queue.Enqueue(c.Context(), name, payload, opts...)
}

func (c *requestContext) Storage() (storage.Storage, error) {
	if c.engine.storage == nil {
		return nil, ErrNoStorage
	}
	return c.engine.storage, nil
}

func (c *requestContext) Upload(r io.Reader, size int64, opts ...storage.Option) (*storage.FileInfo, error) {
	s, err := c.Storage()
	if err != nil {
		return nil, err
	}
	return s.Put(c.Context(), r, size, opts...)
}

func (c *requestContext) UploadFile(fh *multipart.FileHeader, opts ...storage.Option) (*storage.FileInfo, error) {
	s, err := c.Storage()
	if err != nil {
		return nil, err
	}
	return storage.PutFile(c.Context(), s, fh, opts...)
}

func (c *requestContext) FileURL(key string, opts ...storage.URLOption) (string, error) {
	s, err := c.Storage()
	if err != nil {
		return "", err
	}
	return s.URL(c.Context(), key, opts...)
}

func (c *requestContext) Mailer() (*mailer.Mailer, error) {
	if c.engine.mailer == nil {
		return nil, ErrNoMailer
	}
	return c.engine.mailer, nil
}
