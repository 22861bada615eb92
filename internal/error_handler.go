package internal

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sitegear/sitegear/pkg/view"
)

// defaultErrorHandler renders errors/<code> or errors/default in a fresh
// view with the error under "error". Without either template it writes plain text.
// Server errors are logged; their messages are not shown to visitors.
func (e *Engine) defaultErrorHandler(c Context, err error) error {
	herr := AsHTTPError(err)
	if herr == nil {
		herr = ErrInternal(http.StatusText(http.StatusInternalServerError), WithError(err))
	}
	code := herr.StatusCode()
	data := herr.data()
	if current := view.FromContext(c.Request().Context()); current != nil && herr.RequestID == "" {
		if id, ok := current.Get("request_id").(string); ok {
			data["request_id"] = id
		}
	}

	if code >= http.StatusInternalServerError {
		c.LogError("request failed",
			slog.Int("status", code),
			slog.String("path", c.Request().URL.Path),
			slog.Any("error", err),
		)
	}

	for _, name := range []string{"errors/" + strconv.Itoa(code), "errors/default"} {
		if !e.renderer.Exists(name) {
			continue
		}
		v := e.newView(c.Request())
		v.SetTargets(name)
		v.Set("error", data)
		var buf bytes.Buffer
		if rerr := e.renderer.Render(c, &buf, v); rerr != nil {
			c.LogError("error page failed", slog.String("template", name), slog.Any("error", rerr))
			break
		}
		return c.HTML(code, buf.String())
	}

	return c.String(code, herr.StatusText())
}
