package config_test

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/pkg/config"
)

func TestWatcher_Reload(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "site.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"site":{"title":"One"}}`), 0o600))

	c := config.New()
	reloads := 0
	w := config.NewWatcher(c, dir, []string{"site"}, config.WithOnReload(func() { reloads++ }))

	require.NoError(t, w.Reload())
	require.Equal(t, "One", c.Get("site.title"))

	require.NoError(t, os.WriteFile(file, []byte(`{"site":{"title":"Two"}}`), 0o600))
	require.NoError(t, w.Reload())
	require.Equal(t, "Two", c.Get("site.title"))
	require.Equal(t, 2, reloads)

	require.NoError(t, os.WriteFile(file, []byte(`{"site":`), 0o600))
	require.ErrorIs(t, w.Reload(), config.ErrInvalidFile)
	require.Equal(t, "Two", c.Get("site.title"))
}

func TestWatcher_Start(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(file, []byte("site:\n  title: One\n"), 0o600))

	c := config.New()
	var reloads atomic.Int32
	w := config.NewWatcher(c, dir, []string{"site"}, config.WithOnReload(func() { reloads.Add(1) }))
	require.NoError(t, w.Reload())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o600))
	require.NoError(t, os.WriteFile(file, []byte("site:\n  title: Two\n"), 0o600))

	require.Eventually(t, func() bool {
		return c.String("site.title", "") == "Two"
	}, 2*time.Second, 20*time.Millisecond)
	require.False(t, c.Has("x"))
	require.GreaterOrEqual(t, reloads.Load(), int32(2))

	cancel()
	require.NoError(t, <-done)
}
