package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

const siteYAML = `
site:
  name: Acme
  uploads: "{{ engine:root }}/uploads"
logging:
  level: error
cache:
  driver: memory
modules:
  pages:
    mount: /
  news:
    per-page: 5
`

const prodYAML = `
site:
  name: Acme Ltd
`

// newSiteDir writes a minimal site and returns its root.
func newSiteDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"config/site.yaml":               siteYAML,
		"config/site.prod.yaml":          prodYAML,
		"templates/layouts/default.html": `<title>{{ .View.site.name }}</title>{{ .Content }}`,
		"templates/pages/index.md":       "# Welcome",
		"public/site.css":                "body{}",
	}
	for name, content := range files {
		p := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigCmd(t *testing.T) {
	t.Parallel()
	root := newSiteDir(t)

	t.Run("get scalar", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, "config", "get", "modules.news.per-page", "--site", root)
		require.NoError(t, err)
		require.Equal(t, "5\n", out)
	})

	t.Run("environment overlay", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, "--site", root, "--env", "prod", "config", "get", "site.name")
		require.NoError(t, err)
		require.Equal(t, "Acme Ltd\n", out)
	})

	t.Run("engine tokens", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, "config", "get", "site.uploads", "--site", root)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(root, "uploads")+"\n", out)
	})

	t.Run("map as json", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, "config", "get", "modules", "--format", "json", "--site", root)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Equal(t, map[string]any{"mount": "/"}, got["pages"])
	})

	t.Run("dump as yaml", func(t *testing.T) {
		t.Parallel()
		out, err := run(t, "config", "dump", "--site", root)
		require.NoError(t, err)
		require.Contains(t, out, "per-page: 5")
		require.Contains(t, out, "driver: memory")
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		_, err := run(t, "config", "get", "site.missing", "--site", root)
		require.ErrorContains(t, err, `key "site.missing" not found`)
	})

	t.Run("missing site", func(t *testing.T) {
		t.Parallel()
		_, err := run(t, "config", "dump", "--site", filepath.Join(root, "nope"))
		require.ErrorIs(t, err, errNoSiteDir)
	})
}

func TestConfigCmd_Env(t *testing.T) {
	root := newSiteDir(t)
	t.Setenv("SITEGEAR_SITE", root)
	t.Setenv("SITEGEAR_ENV", "prod")

	out, err := run(t, "config", "get", "site.name")
	require.NoError(t, err)
	require.Equal(t, "Acme Ltd\n", out)

	out, err = run(t, "config", "get", "site.name", "--env", "")
	require.NoError(t, err)
	require.Equal(t, "Acme\n", out)
}

func TestDatabaseCommands(t *testing.T) {
	t.Parallel()
	root := newSiteDir(t)

	_, err := run(t, "migrate", "--site", root)
	require.ErrorIs(t, err, errNoDatabase)

	_, err = run(t, "news", "add", "--title", "Hello", "--site", root)
	require.ErrorIs(t, err, errNoDatabase)

	_, err = run(t, "news", "add", "--site", root)
	require.ErrorContains(t, err, `required flag(s) "title" not set`)
}

func TestNewsItem(t *testing.T) {
	t.Parallel()

	body := filepath.Join(t.TempDir(), "body.md")
	require.NoError(t, os.WriteFile(body, []byte("Opening *soon*."), 0o644))

	v := viper.New()
	v.Set("title", "Spring hours")
	v.Set("body-file", body)
	v.Set("publish-at", "2030-04-01T09:00:00Z")

	item, err := newsItem(v)
	require.NoError(t, err)
	require.Equal(t, "Spring hours", item.Title)
	require.Equal(t, "Opening *soon*.", item.Body)
	require.Equal(t, time.Date(2030, 4, 1, 9, 0, 0, 0, time.UTC), item.PublishAt.UTC())

	v.Set("publish-at", "2030-04-01")
	item, err = newsItem(v)
	require.NoError(t, err)
	require.Equal(t, 2030, item.PublishAt.Year())

	v.Set("publish-at", "tomorrow")
	_, err = newsItem(v)
	require.ErrorContains(t, err, "--publish-at")
}

func TestSiteEngine(t *testing.T) {
	t.Parallel()
	root := newSiteDir(t)

	v := viper.New()
	v.Set("site", root)
	s, err := openSite(v)
	require.NoError(t, err)

	ctx := context.Background()
	e, err := s.engine(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.close(ctx) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<title>Acme</title>")
	require.Contains(t, rec.Body.String(), "<h1>Welcome</h1>")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/site.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "body{}", rec.Body.String())

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	names := make([]string, 0, 4)
	for _, m := range e.Modules() {
		names = append(names, m.Name())
	}
	require.Equal(t, []string{"pages", "navigation", "news", "forms"}, names)
	require.DirExists(t, filepath.Join(root, "uploads"))
}

func TestSiteWatcher(t *testing.T) {
	t.Parallel()
	root := newSiteDir(t)

	v := viper.New()
	v.Set("site", root)
	s, err := openSite(v)
	require.NoError(t, err)

	ctx := context.Background()
	e, err := s.engine(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.close(ctx) })

	home := func() string {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		return rec.Body.String()
	}
	require.Contains(t, home(), "<title>Acme</title>")

	renamed := strings.Replace(siteYAML, "name: Acme", "name: Acme Bakery", 1)
	require.NoError(t, os.WriteFile(filepath.Join(root, "config", "site.yaml"), []byte(renamed), 0o644))
	require.Contains(t, home(), "<title>Acme</title>")

	require.NoError(t, s.watcher().Reload())
	require.Equal(t, "Acme Bakery", s.config.String("site.name", ""))
	require.Contains(t, home(), "<title>Acme Bakery</title>")
}
