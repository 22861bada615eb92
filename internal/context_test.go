package internal_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/internal"
	"github.com/sitegear/sitegear/pkg/cookie"
	"github.com/sitegear/sitegear/pkg/mailer"
	"github.com/sitegear/sitegear/pkg/storage"
)

func TestContext_MissingServices(t *testing.T) {
	t.Parallel()

	e := internal.New(internal.WithModules(moduleFunc{name: "t", routes: func(r internal.Router) {
		r.GET("/", func(c internal.Context) error {
			require.ErrorIs(t, c.Enqueue("forms:notify", nil), internal.ErrNoQueue)
			_, err := c.Storage()
			require.ErrorIs(t, err, internal.ErrNoStorage)
			_, err = c.Upload(strings.NewReader("x"), 1)
			require.ErrorIs(t, err, internal.ErrNoStorage)
			_, err = c.FileURL("a.txt")
			require.ErrorIs(t, err, internal.ErrNoStorage)
			_, err = c.Mailer()
			require.ErrorIs(t, err, internal.ErrNoMailer)
			_, err = c.CookieSigned("x")
			require.ErrorIs(t, err, cookie.ErrNoSecret)
			return c.NoContent(http.StatusNoContent)
		})
	}}))

	require.Equal(t, http.StatusNoContent, get(t, e, "/t/").Code)
}

func TestContext_Flash(t *testing.T) {
	t.Parallel()

	e := internal.New(
		internal.WithCookieOptions(cookie.WithSecret(testSecret)),
		internal.WithModules(moduleFunc{name: "t", routes: func(r internal.Router) {
			r.POST("/save", func(c internal.Context) error {
				if err := c.SetFlash("notice", "Saved"); err != nil {
					return err
				}
				return c.Redirect(http.StatusSeeOther, "/t/show")
			})
			r.GET("/show", func(c internal.Context) error {
				var notice string
				if err := c.Flash("notice", &notice); err != nil {
					return c.String(http.StatusOK, "none")
				}
				return c.String(http.StatusOK, notice)
			})
		}}),
	)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/t/save", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/t/show", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/t/show", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	show := httptest.NewRecorder()
	e.ServeHTTP(show, req)
	require.Equal(t, "Saved", show.Body.String())
	require.Contains(t, show.Header().Get("Set-Cookie"), "Max-Age=0")

	require.Equal(t, "none", get(t, e, "/t/show").Body.String())
}

func TestContext_Uploads(t *testing.T) {
	t.Parallel()

	local, err := storage.NewLocal(storage.LocalConfig{Dir: t.TempDir(), BaseURL: "/media"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })

	e := internal.New(
		internal.WithStorage(local),
		internal.WithModules(moduleFunc{name: "t", routes: func(r internal.Router) {
			r.POST("/upload", func(c internal.Context) error {
				info, err := c.Upload(strings.NewReader("hello"), 5,
					storage.WithPrefix("forms"), storage.WithContentType("text/plain"))
				if err != nil {
					return err
				}
				u, err := c.FileURL(info.Key)
				if err != nil {
					return err
				}
				return c.String(http.StatusCreated, u)
			})
		}}),
	)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/t/upload", nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	u := rec.Body.String()
	require.True(t, strings.HasPrefix(u, "/media/forms/"), u)

	file := get(t, e, u)
	require.Equal(t, http.StatusOK, file.Code)
	require.Equal(t, "hello", file.Body.String())
	require.Equal(t, "nosniff", file.Header().Get("X-Content-Type-Options"))

	require.Equal(t, http.StatusNotFound, get(t, e, "/media/").Code)
}

func TestContext_Mailer(t *testing.T) {
	t.Parallel()

	var sent []*mailer.Email
	sender := mailer.SenderFunc(func(_ context.Context, m *mailer.Email) error {
		sent = append(sent, m)
		return nil
	})

	var logs bytes.Buffer
	e := internal.New(
		internal.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		internal.WithTemplates(fstest.MapFS{
			"emails/hello.md": {Data: []byte("---\nsubject: Hi {{ .name }}\n---\nHello **{{ .name }}**\n")},
		}),
		internal.WithMailer(sender, mailer.Config{From: "site@acme.test"}),
		internal.WithModules(moduleFunc{name: "t", routes: func(r internal.Router) {
			r.POST("/mail", func(c internal.Context) error {
				m, err := c.Mailer()
				if err != nil {
					return err
				}
				c.LogInfo("sending mail", slog.String("to", "ada@acme.test"))
				if err := m.Send(c, mailer.Message{
					To:       []string{"ada@acme.test"},
					Template: "emails/hello",
					Data:     map[string]any{"name": "Ada"},
				}); err != nil {
					return err
				}
				return c.NoContent(http.StatusAccepted)
			})
		}}),
	)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/t/mail", nil))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, sent, 1)
	require.Equal(t, "Hi Ada", sent[0].Subject)
	require.Contains(t, sent[0].HTML, "<strong>Ada</strong>")
	require.Contains(t, logs.String(), "sending mail")
}
