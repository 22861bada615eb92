package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"
)

// LocalConfig configures file system storage.
type LocalConfig struct {
	// Dir is the root directory; it is created when missing.
	Dir string `json:"dir"`
	// BaseURL prefixes keys in URL, e.g. "/uploads".
	BaseURL string `json:"base-url"`
}

// Local stores files below a directory. All access goes through os.Root,
// so keys cannot escape it.
type Local struct {
	root    *os.Root
	baseURL string
}

// NewLocal opens or creates cfg.Dir.
func NewLocal(cfg LocalConfig) (*Local, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: local dir is required", ErrInvalidConfig)
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	root, err := os.OpenRoot(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	base := cfg.BaseURL
	if base == "" {
		base = "/uploads"
	}
	return &Local{root: root, baseURL: strings.TrimSuffix(base, "/")}, nil
}

func (l *Local) Put(_ context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error) {
	o := newPutOptions(ACLPublicRead, opts)
	u, err := prepare(r, size, o)
	if err != nil {
		return nil, err
	}

	if dir := path.Dir(u.key); dir != "." {
		if err := l.root.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
		}
	}
	f, err := l.root.Create(u.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	n, err := io.Copy(f, u.body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = l.root.Remove(u.key)
		return nil, fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}

	return &FileInfo{Key: u.key, ContentType: u.contentType, ACL: o.acl, Size: n}, nil
}

func (l *Local) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if !validKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	f, err := l.root.Open(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return f, err
}

func (l *Local) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	if err := l.root.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrDeleteFailed, err)
	}
	return nil
}

// URL joins the base URL and key. Local files are always public.
func (l *Local) URL(_ context.Context, key string, _ ...URLOption) (string, error) {
	if !validKey(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return l.baseURL + "/" + key, nil
}

// FS exposes the stored files, e.g. for serving them over HTTP.
func (l *Local) FS() fs.FS { return l.root.FS() }

// BaseURL is the path prefix URL puts in front of keys.
func (l *Local) BaseURL() string { return l.baseURL }

// Close releases the root directory handle.
func (l *Local) Close() error { return l.root.Close() }

var _ Storage = (*Local)(nil)
