package pages_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear"
	"github.com/sitegear/sitegear/modules/pages"
	"github.com/sitegear/sitegear/pkg/config"
)

func newSite(opts ...pages.Option) *sitegear.Engine {
	return sitegear.New(
		sitegear.WithConfig(config.New(config.WithValues(map[string]any{
			"site":    map[string]any{"name": "Acme"},
			"modules": map[string]any{"pages": map[string]any{"mount": "/"}},
		}))),
		sitegear.WithTemplates(fstest.MapFS{
			"layouts/default.html":  {Data: []byte(`<title>{{ .View.site.name }}</title>{{ .Content }}`)},
			"pages/index.html":      {Data: []byte(`<h1>Home</h1>`)},
			"pages/about.md":        {Data: []byte("---\ntitle: About us\n---\n# {{ .title }}\n\nWe make *things*.")},
			"pages/docs/index.html": {Data: []byte(`<h1>Docs</h1>`)},
			"pages/docs/setup.html": {Data: []byte(`<p>{{ .slug }}</p>`)},
			"pages/_partial.html":   {Data: []byte(`secret`)},
			"site/index.html":       {Data: []byte(`<h1>Alt home</h1>`)},
		}),
		sitegear.WithModules(pages.New(opts...)),
	)
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestPages(t *testing.T) {
	t.Parallel()

	e := newSite()

	tests := []struct {
		name   string
		target string
		code   int
		body   string
	}{
		{name: "index", target: "/", code: http.StatusOK, body: "<title>Acme</title><h1>Home</h1>"},
		{name: "markdown with front matter", target: "/about", code: http.StatusOK, body: "<title>Acme</title><h1>About us</h1>\n<p>We make <em>things</em>.</p>\n"},
		{name: "trailing slash", target: "/about/", code: http.StatusOK, body: "<title>Acme</title><h1>About us</h1>\n<p>We make <em>things</em>.</p>\n"},
		{name: "directory index", target: "/docs", code: http.StatusOK, body: "<title>Acme</title><h1>Docs</h1>"},
		{name: "nested page", target: "/docs/setup", code: http.StatusOK, body: "<title>Acme</title><p>docs/setup</p>"},
		{name: "missing", target: "/pricing", code: http.StatusNotFound, body: "Not Found"},
		{name: "extension", target: "/about.md", code: http.StatusNotFound, body: "Not Found"},
		{name: "partial", target: "/_partial", code: http.StatusNotFound, body: "Not Found"},
		{name: "traversal", target: "/../layouts/default", code: http.StatusNotFound, body: "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := get(e, tt.target)
			require.Equal(t, tt.code, rec.Code)
			require.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestPages_Options(t *testing.T) {
	t.Parallel()

	e := newSite(pages.WithDirectory("/site/"), pages.WithIndex(""))
	rec := get(e, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<h1>Alt home</h1>")

	require.Equal(t, http.StatusNotFound, get(e, "/about").Code)
}
