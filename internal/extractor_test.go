package internal_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/internal"
	"github.com/sitegear/sitegear/pkg/cookie"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestExtractor(t *testing.T) {
	t.Parallel()

	var (
		got   string
		found bool
	)
	extract := func(ex internal.Extractor) internal.HandlerFunc {
		return func(c internal.Context) error {
			got, found = ex.Extract(c)
			return c.NoContent(http.StatusNoContent)
		}
	}

	tests := []struct {
		name    string
		ex      internal.Extractor
		request func() *http.Request
		want    string
		found   bool
	}{
		{
			name: "header first",
			ex:   internal.NewExtractor(internal.FromHeader("X-Form"), internal.FromQuery("form")),
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/t/contact?form=query", nil)
				r.Header.Set("X-Form", "header")
				return r
			},
			want:  "header",
			found: true,
		},
		{
			name: "falls back to query",
			ex:   internal.NewExtractor(internal.FromHeader("X-Form"), internal.FromQuery("form")),
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/t/contact?form=query", nil)
			},
			want:  "query",
			found: true,
		},
		{
			name: "url param",
			ex:   internal.NewExtractor(internal.FromParam("key")),
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/t/contact", nil)
			},
			want:  "contact",
			found: true,
		},
		{
			name: "form value",
			ex:   internal.NewExtractor(internal.FromForm("step")),
			request: func() *http.Request {
				r := httptest.NewRequest(http.MethodPost, "/t/contact", strings.NewReader(url.Values{"step": {"2"}}.Encode()))
				r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
				return r
			},
			want:  "2",
			found: true,
		},
		{
			name: "form ignores the query",
			ex:   internal.NewExtractor(internal.FromForm("step")),
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/t/contact?step=1", nil)
			},
		},
		{
			name: "nothing matches",
			ex:   internal.NewExtractor(internal.FromHeader("X-Missing")),
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodGet, "/t/contact", nil)
			},
		},
	}

	for _, tt := range tests {
		// Handlers share got/found, so cases run sequentially.
		t.Run(tt.name, func(t *testing.T) {
			e := internal.New(
				internal.WithCookieOptions(cookie.WithSecret(testSecret)),
				internal.WithModules(moduleFunc{name: "t", routes: func(r internal.Router) {
					r.GET("/{key}", extract(tt.ex))
					r.POST("/{key}", extract(tt.ex))
				}}),
			)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, tt.request())
			require.Equal(t, http.StatusNoContent, rec.Code)
			require.Equal(t, tt.found, found)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestExtractor_Int(t *testing.T) {
	t.Parallel()

	type result struct {
		n     int
		found bool
		err   error
	}
	results := make(chan result, 1)
	step := internal.NewExtractor(internal.FromForm("_step"), internal.FromQuery("step"))
	e := internal.New(internal.WithModules(moduleFunc{name: "t", routes: func(r internal.Router) {
		h := func(c internal.Context) error {
			n, found, err := step.Int(c)
			results <- result{n, found, err}
			return c.NoContent(http.StatusNoContent)
		}
		r.GET("/", h)
		r.POST("/", h)
	}}))

	run := func(r *http.Request) result {
		e.ServeHTTP(httptest.NewRecorder(), r)
		return <-results
	}

	res := run(httptest.NewRequest(http.MethodGet, "/t/?step=2", nil))
	require.Equal(t, result{n: 2, found: true}, res)

	post := httptest.NewRequest(http.MethodPost, "/t/?step=2", strings.NewReader("_step=1"))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.Equal(t, result{n: 1, found: true}, run(post))

	res = run(httptest.NewRequest(http.MethodGet, "/t/", nil))
	require.Equal(t, result{}, res)

	res = run(httptest.NewRequest(http.MethodGet, "/t/?step=x", nil))
	require.True(t, res.found)
	require.Error(t, res.err)
}
