package config

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads configuration files from a directory when they change.
// Reloaded trees are merged over the container with overwrite semantics, so
// keys removed from a file keep their previous value until restart.
type Watcher struct {
	container *Container
	logger    *slog.Logger
	onReload  func()
	dir       string
	names     []string
}

// WatchOption configures a Watcher.
type WatchOption func(*Watcher)

// WithWatchLogger sets the logger for reload events and errors.
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnReload registers a callback invoked after every successful reload.
func WithOnReload(fn func()) WatchOption {
	return func(w *Watcher) {
		w.onReload = fn
	}
}

// NewWatcher creates a watcher for the named files (without extension) in dir.
func NewWatcher(c *Container, dir string, names []string, opts ...WatchOption) *Watcher {
	w := &Watcher{
		container: c,
		dir:       dir,
		names:     names,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Reload loads every watched file and merges it into the container.
// Nothing is merged if any file fails to load.
func (w *Watcher) Reload() error {
	fsys := os.DirFS(w.dir)
	env := w.container.Environment()

	tree := make(map[string]any)
	for _, name := range w.names {
		t, err := LoadTree(fsys, name, env)
		if err != nil {
			return err
		}
		tree = Merge(tree, t, true)
	}

	w.container.Merge(tree, true)
	if w.onReload != nil {
		w.onReload()
	}
	return nil
}

// Start watches the directory until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Join(ErrWatch, err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return errors.Join(ErrWatch, err)
	}

	w.logger.InfoContext(ctx, "watching configuration", slog.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			if err := w.Reload(); err != nil {
				w.logger.ErrorContext(ctx, "configuration reload failed",
					slog.String("file", event.Name),
					slog.Any("error", err),
				)
				continue
			}
			w.logger.InfoContext(ctx, "configuration reloaded", slog.String("file", event.Name))
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.WarnContext(ctx, "configuration watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) matches(file string) bool {
	base := filepath.Base(file)
	ext := filepath.Ext(base)
	if !hasKnownExt(base) {
		return false
	}
	stem := strings.TrimSuffix(base, ext)
	env := w.container.Environment()
	for _, name := range w.names {
		if stem == name || (env != "" && stem == name+"."+env) {
			return true
		}
	}
	return false
}
