package sitegear_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear"
	"github.com/sitegear/sitegear/pkg/config"
)

type sectionKey struct{}

// hoursModule is a module written against the public API only.
type hoursModule struct{}

func (hoursModule) Name() string { return "hours" }

func (hoursModule) Routes(r sitegear.Router) {
	r.Use(func(next sitegear.HandlerFunc) sitegear.HandlerFunc {
		return func(c sitegear.Context) error {
			c.Set(sectionKey{}, "hours")
			return next(c)
		}
	})
	r.Page("/", "index", func(c sitegear.Context) error {
		c.View().Set("days", c.Config().Map("modules.hours.days"))
		c.View().Set("section", sitegear.ContextValue[string](c, sectionKey{}))
		return nil
	})
	r.GET("/day/{n}", func(c sitegear.Context) error {
		n := sitegear.Param[int](c, "n")
		if n < 1 || n > 7 {
			return sitegear.ErrNotFound("No such day")
		}
		return c.String(http.StatusOK, sitegear.QueryDefault(c, "prefix", "day")+" ok")
	})
}

func newEngine(t *testing.T) *sitegear.Engine {
	t.Helper()
	cfg := config.New(config.WithValues(map[string]any{
		"modules": map[string]any{
			"hours": map[string]any{"days": map[string]any{"monday": "closed"}},
		},
	}))
	return sitegear.New(
		sitegear.WithConfig(cfg),
		sitegear.WithTemplates(fstest.MapFS{
			"layouts/default.html": {Data: []byte(`[{{ .Content }}]`)},
			"hours/index.html":     {Data: []byte(`{{ .section }}: monday {{ .days.monday }}`)},
		}),
		sitegear.WithModules(hoursModule{}),
	)
}

func TestEngine_PublicModule(t *testing.T) {
	t.Parallel()

	e := newEngine(t)

	tests := []struct {
		name string
		path string
		code int
		body string
	}{
		{name: "page", path: "/hours", code: http.StatusOK, body: "[hours: monday closed]"},
		{name: "param", path: "/hours/day/3", code: http.StatusOK, body: "day ok"},
		{name: "query default", path: "/hours/day/3?prefix=third", code: http.StatusOK, body: "third ok"},
		{name: "handler error", path: "/hours/day/9", code: http.StatusNotFound, body: "Not Found"},
		{name: "unknown route", path: "/opening", code: http.StatusNotFound, body: "Not Found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, tt.code, rec.Code)
			require.Contains(t, rec.Body.String(), tt.body)
		})
	}

	m, err := e.Module("hours")
	require.NoError(t, err)
	require.Equal(t, "hours", m.Name())
	_, err = e.Module("news")
	require.ErrorIs(t, err, sitegear.ErrUnknownModule)
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	require.Equal(t, http.StatusNotFound, sitegear.StatusOf(sitegear.ErrNotFound("gone")))
	require.Equal(t, http.StatusUnprocessableEntity, sitegear.StatusOf(sitegear.ErrUnprocessable("bad")))
	require.Equal(t, http.StatusInternalServerError, sitegear.StatusOf(errors.New("boom")))

	wrapped := errors.Join(errors.New("context"), sitegear.ErrBadRequest("Invalid form step"))
	herr := sitegear.AsHTTPError(wrapped)
	require.NotNil(t, herr)
	require.Equal(t, http.StatusBadRequest, herr.StatusCode())
}

func TestTokenProcessor(t *testing.T) {
	t.Parallel()

	p := sitegear.TokenProcessor("/srv/site", "prod")
	require.Equal(t, "/srv/site/forms", p("{{ engine:root }}/forms"))
	require.Equal(t, "/srv/site/templates", p("{{engine:templates}}"))
	require.Equal(t, "prod", p("{{ engine:environment }}"))
	require.Equal(t, "{{ engine:missing }}", p("{{ engine:missing }}"))
}
