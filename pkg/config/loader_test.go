package config_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/pkg/config"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"site.json": {Data: []byte(`{
			"site": {"title": "Acme", "layout": "default"},
			"logging": {"level": "info"}
		}`)},
		"site.development.yaml": {Data: []byte("site:\n  title: Acme (dev)\nlogging:\n  level: debug\n")},
		"modules.yml": {Data: []byte("modules:\n  news:\n    mount: /news\n    per-page: 5\n  1: numeric-key\n")},
		"broken.json": {Data: []byte(`{"site": `)},
		"notes.txt":   {Data: []byte("hello")},
	}
}

func TestLoadTree(t *testing.T) {
	t.Parallel()

	t.Run("base only", func(t *testing.T) {
		t.Parallel()

		tree, err := config.LoadTree(testFS(), "site", "")
		require.NoError(t, err)
		require.Equal(t, "Acme", tree["site"].(map[string]any)["title"])
	})

	t.Run("environment overlay across formats", func(t *testing.T) {
		t.Parallel()

		tree, err := config.LoadTree(testFS(), "site", "development")
		require.NoError(t, err)
		site := tree["site"].(map[string]any)
		require.Equal(t, "Acme (dev)", site["title"])
		require.Equal(t, "default", site["layout"])
		require.Equal(t, "debug", tree["logging"].(map[string]any)["level"])
	})

	t.Run("missing overlay is ignored", func(t *testing.T) {
		t.Parallel()

		tree, err := config.LoadTree(testFS(), "site", "production")
		require.NoError(t, err)
		require.Equal(t, "Acme", tree["site"].(map[string]any)["title"])
	})

	t.Run("yaml keys are normalised", func(t *testing.T) {
		t.Parallel()

		tree, err := config.LoadTree(testFS(), "modules.yml", "")
		require.NoError(t, err)
		modules := tree["modules"].(map[string]any)
		require.Equal(t, "numeric-key", modules["1"])
		require.Equal(t, 5, modules["news"].(map[string]any)["per-page"])
	})

	t.Run("missing base", func(t *testing.T) {
		t.Parallel()

		_, err := config.LoadTree(testFS(), "absent", "")
		require.ErrorIs(t, err, config.ErrNotFound)
	})

	t.Run("invalid file", func(t *testing.T) {
		t.Parallel()

		_, err := config.LoadTree(testFS(), "broken", "")
		require.ErrorIs(t, err, config.ErrInvalidFile)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		t.Parallel()

		_, err := config.Decode([]byte("x"), ".ini")
		require.ErrorIs(t, err, config.ErrUnsupportedFormat)
	})
}

func TestContainer_Load(t *testing.T) {
	t.Parallel()

	c := config.New(config.WithEnvironment("development"))
	require.NoError(t, c.Load(testFS(), "site"))
	require.NoError(t, c.Load(testFS(), "modules"))
	require.Equal(t, "Acme (dev)", c.Get("site.title"))
	require.Equal(t, "/news", c.Get("modules.news.mount"))

	defaults := config.New()
	defaults.Set("site.title", "Default title")
	defaults.Set("site.footer", "(c)")
	require.NoError(t, defaults.LoadFile(testFS(), "site", false))
	require.Equal(t, "Default title", defaults.Get("site.title"))
	require.Equal(t, "default", defaults.Get("site.layout"))
	require.Equal(t, "(c)", defaults.Get("site.footer"))
}
