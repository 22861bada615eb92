package config

import "errors"

var (
	ErrNotFound          = errors.New("config: file not found")
	ErrInvalidFile       = errors.New("config: invalid file")
	ErrUnsupportedFormat = errors.New("config: unsupported file format")
	ErrDecode            = errors.New("config: failed to decode value")
	ErrWatch             = errors.New("config: watcher failed")
)
