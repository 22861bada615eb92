// Package pages serves content pages straight from the template
// filesystem.
//
// A request for /about renders pages/about.html or pages/about.md; / renders
// pages/index. A path without its own page falls back to the index of the
// directory of the same name, so /docs can be pages/docs/index.md. Mount
// the module at the site root:
//
//	modules:
//	  pages:
//	    mount: /
package pages

import (
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/sitegear/sitegear"
	"github.com/sitegear/sitegear/pkg/view"
)

// Module is the pages module.
type Module struct {
	dir   string
	index string
}

// Option configures the module.
type Option func(*Module)

// WithDirectory sets the template directory holding pages. Default: "pages".
func WithDirectory(dir string) Option {
	return func(m *Module) {
		if dir = strings.Trim(dir, "/"); dir != "" {
			m.dir = dir
		}
	}
}

// WithIndex sets the page rendered for a directory. Default: "index".
func WithIndex(name string) Option {
	return func(m *Module) {
		if name != "" {
			m.index = name
		}
	}
}

// New creates the pages module.
func New(opts ...Option) *Module {
	m := &Module{dir: "pages", index: "index"}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements sitegear.Module.
func (m *Module) Name() string { return "pages" }

// Routes implements sitegear.Mounter.
func (m *Module) Routes(r sitegear.Router) {
	r.Page("/*", m.index, m.show)
}

func (m *Module) show(c sitegear.Context) error {
	slug, ok := clean(c.Param("*"))
	if !ok {
		return sitegear.ErrNotFound(http.StatusText(http.StatusNotFound))
	}

	candidates := []string{path.Join(slug, m.index)}
	if slug != "" {
		candidates = []string{slug, path.Join(slug, m.index)}
	}

	v := c.View()
	v.Set("slug", slug)
	for _, name := range candidates {
		v.SetTargets(m.dir, name)
		err := c.Page(http.StatusOK)
		if !errors.Is(err, view.ErrTemplateNotFound) {
			return err
		}
	}
	return sitegear.ErrNotFound(http.StatusText(http.StatusNotFound))
}

// clean normalises a request path into a page slug. Extensions and
// segments starting with "_" or "." are never served, so partials and
// source files stay private.
func clean(p string) (string, bool) {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return "", true
	}
	if path.Ext(p) != "" {
		return "", false
	}
	for seg := range strings.SplitSeq(p, "/") {
		if strings.HasPrefix(seg, "_") || strings.HasPrefix(seg, ".") {
			return "", false
		}
	}
	return p, true
}
