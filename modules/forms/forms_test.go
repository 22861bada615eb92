package forms_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear"
	"github.com/sitegear/sitegear/modules/forms"
	"github.com/sitegear/sitegear/pkg/cache"
	"github.com/sitegear/sitegear/pkg/config"
	"github.com/sitegear/sitegear/pkg/mailer"
	"github.com/sitegear/sitegear/pkg/storage"
)

const siteYAML = `
site:
  cookie-secret: 0123456789abcdef0123456789abcdef
modules:
  forms:
    upload-max-size: 1024
    definitions:
      contact:
        target-url: /thanks
        notify: [office@acme.test]
        fields:
          name: {label: Name, required: true}
          email: {type: email, label: Email, constraints: [required, email]}
          message: {type: textarea, label: Message, required: true}
        steps:
          - heading: About you
            fieldsets: [{fields: [name, email]}]
          - heading: Your message
            fieldsets: [{fields: [message]}]
`

func templates() fstest.MapFS {
	return fstest.MapFS{
		"layouts/default.html": {Data: []byte(`{{ .Content }}`)},
		"forms/form.html":      {Data: []byte(`{{ if .complete }}<p>Thanks!</p>{{ end }}{{ component "forms" "form" .form }}`)},
		"forms/apply.html":     {Data: []byte(`<h1>Apply</h1>{{ component "forms" "form" .form }}`)},
		"emails/form-submission.md": {Data: []byte(
			"---\nsubject: \"New {{ .form }} submission\"\n---\n{{ range .fields }}- {{ .Label }}: {{ .Value }}\n{{ end }}")},
	}
}

// browser keeps cookies between requests.
type browser struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, h http.Handler) *browser {
	return &browser{t: t, h: h, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) get(target string) *httptest.ResponseRecorder {
	return b.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (b *browser) post(target string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func newSite(t *testing.T, opts ...sitegear.Option) (*sitegear.Engine, *forms.Module, chan *mailer.Email) {
	t.Helper()

	values, err := config.Decode([]byte(siteYAML), ".yaml")
	require.NoError(t, err)

	local, err := storage.NewLocal(storage.LocalConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = local.Close() })

	sent := make(chan *mailer.Email, 4)
	m := forms.New(forms.WithDefinitions(fstest.MapFS{
		"apply.yaml": {Data: []byte(`
fields:
  role: {type: select, label: Role, options: [dev, ops], constraints: [choice]}
  cv: {type: file, label: CV, required: true}
`)},
		"README.txt": {Data: []byte("ignored")},
	}))

	base := []sitegear.Option{
		sitegear.WithConfig(config.New(config.WithValues(values))),
		sitegear.WithTemplates(templates()),
		sitegear.WithStorage(local),
		sitegear.WithMailer(mailer.SenderFunc(func(_ context.Context, e *mailer.Email) error {
			sent <- e
			return nil
		}), mailer.Config{From: "site@acme.test"}),
		sitegear.WithModules(m),
	}
	e := sitegear.New(append(base, opts...)...)
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Stop(context.Background()) })
	return e, m, sent
}

func TestForms_MultiStep(t *testing.T) {
	t.Parallel()

	e, m, sent := newSite(t)
	b := newBrowser(t, e)

	rec := b.get("/forms/contact")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `<form class="sitegear-form" id="form-contact" action="/forms/contact" method="post">`)
	require.Contains(t, rec.Body.String(), `name="_step" value="0"`)

	rec = b.post("/forms/contact", url.Values{"_step": {"0"}, "email": {"nope"}})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "This field is required.")
	require.Contains(t, rec.Body.String(), `value="nope"`)
	require.NotContains(t, b.cookies, "form_contact")

	rec = b.post("/forms/contact", url.Values{"_step": {"1"}, "message": {"Hi"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = b.post("/forms/contact", url.Values{"_step": {"0"}, "name": {"Ann"}, "email": {"ann@acme.test"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/forms/contact", rec.Header().Get("Location"))
	require.Contains(t, b.cookies, "form_contact")

	rec = b.get("/forms/contact")
	require.Contains(t, rec.Body.String(), `name="_step" value="1"`)
	require.Contains(t, rec.Body.String(), `formaction="/forms/contact/back"`)

	rec = b.post("/forms/contact/back", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = b.get("/forms/contact")
	require.Contains(t, rec.Body.String(), `name="_step" value="0"`)
	require.Contains(t, rec.Body.String(), `value="ann@acme.test"`)
	require.Contains(t, rec.Body.String(), `<li class="done"><a href="/forms/contact?step=1">Your message</a></li>`)

	rec = b.get("/forms/contact?step=1")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, b.get("/forms/contact").Body.String(), `name="_step" value="1"`)
	require.Equal(t, http.StatusSeeOther, b.get("/forms/contact?step=5").Code)
	require.Equal(t, http.StatusBadRequest, b.get("/forms/contact?step=x").Code)

	rec = b.post("/forms/contact", url.Values{"_step": {"1"}, "message": {"<b>Hello</b> there"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/thanks", rec.Header().Get("Location"))
	require.NotContains(t, b.cookies, "form_contact")

	subs, err := m.Submissions().List(context.Background(), "contact", 0)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, map[string]any{"name": "Ann", "email": "ann@acme.test", "message": "Hello there"}, subs[0].Values)

	select {
	case mail := <-sent:
		require.Equal(t, []string{"office@acme.test"}, mail.To)
		require.Equal(t, "New contact submission", mail.Subject)
		require.Contains(t, mail.HTML, "<li>Email: ann@acme.test</li>")
		require.Contains(t, mail.HTML, "<li>Message: Hello there</li>")
	case <-time.After(2 * time.Second):
		t.Fatal("notification not sent")
	}

	rec = b.get("/forms/contact")
	require.Contains(t, rec.Body.String(), `name="_step" value="0"`)
	require.Contains(t, rec.Body.String(), "<p>Thanks!</p>")
}

func TestForms_LongEntry(t *testing.T) {
	t.Parallel()

	values, err := config.Decode([]byte(siteYAML), ".yaml")
	require.NoError(t, err)
	states := cache.NewMemory[map[string]any]()
	t.Cleanup(func() { _ = states.Close() })

	m := forms.New(forms.WithStateCache(states))
	e := sitegear.New(
		sitegear.WithConfig(config.New(config.WithValues(values))),
		sitegear.WithTemplates(templates()),
		sitegear.WithModules(m),
	)
	require.NoError(t, e.Start(context.Background()))
	t.Cleanup(func() { _ = e.Stop(context.Background()) })
	b := newBrowser(t, e)

	long := strings.Repeat("a", 8000)
	rec := b.post("/forms/contact", url.Values{"_step": {"0"}, "name": {long}, "email": {"ann@acme.test"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, 1, states.Len())
	require.Less(t, len(b.cookies["form_contact"].Value), 512)

	rec = b.get("/forms/contact")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `name="_step" value="1"`)

	rec = b.post("/forms/contact", url.Values{"_step": {"1"}, "message": {"Hello"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, 0, states.Len())

	subs, err := m.Submissions().List(context.Background(), "contact", 0)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, long, subs[0].Values["name"])
}

func TestForms_Upload(t *testing.T) {
	t.Parallel()

	e, m, sent := newSite(t)
	b := newBrowser(t, e)

	rec := b.get("/forms/apply")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<h1>Apply</h1>")
	require.Contains(t, rec.Body.String(), `enctype="multipart/form-data"`)

	upload := func(content string) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		require.NoError(t, w.WriteField("_step", "0"))
		require.NoError(t, w.WriteField("role", "ops"))
		fw, err := w.CreateFormFile("cv", "cv.txt")
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/forms/apply", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		return b.do(req)
	}

	rec = upload(strings.Repeat("x", 2048))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Body.String(), "exceeds limit of 1024 bytes")

	rec = upload("Ten years of Go.")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/forms/apply", rec.Header().Get("Location"))

	subs, err := m.Submissions().List(context.Background(), "apply", 1)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	key, _ := subs[0].Values["cv"].(string)
	require.True(t, strings.HasPrefix(key, "forms/apply/"), key)

	rec = b.get("/uploads/" + key)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Ten years of Go.", rec.Body.String())

	// No notify addresses, no email.
	select {
	case <-sent:
		t.Fatal("unexpected email")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestForms_Errors(t *testing.T) {
	t.Parallel()

	e, _, _ := newSite(t)
	b := newBrowser(t, e)

	require.Equal(t, http.StatusNotFound, b.get("/forms/missing").Code)
	require.Equal(t, http.StatusNotFound, b.post("/forms/missing", url.Values{"_step": {"0"}}).Code)
	require.Equal(t, http.StatusBadRequest, b.post("/forms/contact", url.Values{"_step": {"x"}}).Code)
	require.Equal(t, http.StatusBadRequest, b.post("/forms/contact", url.Values{"_step": {"7"}}).Code)

	rec := b.post("/forms/contact/back", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestForms_Start(t *testing.T) {
	t.Parallel()

	start := func(values map[string]any, opts ...forms.Option) error {
		e := sitegear.New(
			sitegear.WithConfig(config.New(config.WithValues(values))),
			sitegear.WithModules(forms.New(opts...)),
		)
		err := e.Start(context.Background())
		if err == nil {
			_ = e.Stop(context.Background())
		}
		return err
	}

	def := map[string]any{"fields": map[string]any{"a": map[string]any{}}}

	t.Run("without cookie secret", func(t *testing.T) {
		t.Parallel()
		require.NoError(t, start(map[string]any{
			"modules": map[string]any{"forms": map[string]any{"definitions": map[string]any{"a": def}}},
		}))
	})

	t.Run("invalid definition", func(t *testing.T) {
		t.Parallel()
		err := start(map[string]any{
			"modules": map[string]any{"forms": map[string]any{"definitions": map[string]any{
				"a": map[string]any{"fields": map[string]any{"a": map[string]any{"type": "colour"}}},
			}}},
		})
		require.Error(t, err)
	})

	t.Run("duplicate key", func(t *testing.T) {
		t.Parallel()
		err := start(map[string]any{
			"modules": map[string]any{"forms": map[string]any{"definitions": map[string]any{"a": def}}},
		}, forms.WithDefinitions(fstest.MapFS{"a.json": {Data: []byte(`{"fields": {"x": {}}}`)}}))
		require.ErrorIs(t, err, forms.ErrDuplicateForm)
	})

	t.Run("definition directory", func(t *testing.T) {
		t.Parallel()
		err := start(map[string]any{
			"modules": map[string]any{"forms": map[string]any{"directory": "/nonexistent/forms"}},
		})
		require.Error(t, err)
	})
}

func TestForms_Accessors(t *testing.T) {
	t.Parallel()

	m := forms.New()
	_, ok := m.Form("contact")
	require.False(t, ok)

	e := sitegear.New(sitegear.WithModules(m))
	require.Equal(t, []string{forms.TaskNotify}, e.Queue().Tasks())

	_, m, _ = newSite(t)
	f, ok := m.Form("contact")
	require.True(t, ok)
	require.Equal(t, "/forms/contact", f.Action)
	require.Len(t, f.Steps, 2)
	require.Equal(t, []string{"office@acme.test"}, f.Notify)
}
