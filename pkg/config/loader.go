package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions lists the supported file extensions in lookup order.
var Extensions = []string{".json", ".yaml", ".yml"}

// LoadTree reads name from fsys and merges the environment overlay
// name.<env> over it. name may omit the extension, in which case the first
// existing file in Extensions order is used.
// A missing base file returns ErrNotFound; a missing overlay is ignored.
func LoadTree(fsys fs.FS, name, env string) (map[string]any, error) {
	base, err := readFirst(fsys, name)
	if err != nil {
		return nil, err
	}

	if env == "" {
		return base, nil
	}

	overlay, err := readFirst(fsys, overlayName(name, env))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return base, nil
		}
		return nil, err
	}

	return Merge(base, overlay, true), nil
}

// ReadFile decodes a single configuration file, choosing the format by extension.
func ReadFile(fsys fs.FS, filePath string) (map[string]any, error) {
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, filePath)
		}
		return nil, fmt.Errorf("reading %q: %w", filePath, err)
	}

	tree, err := Decode(data, path.Ext(filePath))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %s", ErrInvalidFile, filePath, err)
	}
	return tree, nil
}

// Decode parses data as JSON or YAML according to ext.
func Decode(data []byte, ext string) (map[string]any, error) {
	var raw map[string]any

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	tree, _ := normalize(raw).(map[string]any)
	return tree, nil
}

func readFirst(fsys fs.FS, name string) (map[string]any, error) {
	if hasKnownExt(name) {
		return ReadFile(fsys, name)
	}

	for _, ext := range Extensions {
		tree, err := ReadFile(fsys, name+ext)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return tree, err
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// overlayName inserts the environment before the extension, if any.
func overlayName(name, env string) string {
	if hasKnownExt(name) {
		ext := path.Ext(name)
		return strings.TrimSuffix(name, ext) + "." + env + ext
	}
	return name + "." + env
}

func hasKnownExt(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}
