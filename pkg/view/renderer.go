package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/a-h/templ"
	"github.com/yuin/goldmark"

	"github.com/sitegear/sitegear/pkg/config"
)

// Component is anything that renders itself to a writer.
type Component = templ.Component

// ComponentFunc resolves a named component of a module.
type ComponentFunc func(ctx context.Context, module, name string, args ...any) (Component, error)

// Decorator applies decorator specs to rendered content.
type Decorator interface {
	Apply(ctx context.Context, content string, specs ...string) (string, error)
}

// Template file extensions, in lookup order.
const (
	ExtHTML     = ".html"
	ExtMarkdown = ".md"
)

// Front matter keys with special meaning.
const (
	metaLayout     = "layout"
	metaDecorators = "decorators"
)

// Renderer resolves templates from a filesystem and renders views.
// Parsed templates are cached unless reload is enabled; the cached trees are
// never executed directly, each render works on a clone bound to the request.
type Renderer struct {
	fs         fs.FS
	md         goldmark.Markdown
	decorator  Decorator
	components ComponentFunc
	config     *config.Container
	funcs      template.FuncMap
	pages      map[string]*page
	layouts    map[string]*template.Template
	layoutDir  string
	reload     bool
	mu         sync.RWMutex
}

// page is a parsed content template.
type page struct {
	meta     map[string]any
	html     *template.Template
	text     *texttemplate.Template
	markdown bool
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLayoutDir sets the layout directory. Default: "layouts".
func WithLayoutDir(dir string) RendererOption {
	return func(r *Renderer) {
		r.layoutDir = dir
	}
}

// WithReload disables the template cache.
func WithReload(reload bool) RendererOption {
	return func(r *Renderer) {
		r.reload = reload
	}
}

// WithDecorator sets the decorator used for view decorators and the
// decorate template function.
func WithDecorator(d Decorator) RendererOption {
	return func(r *Renderer) {
		r.decorator = d
	}
}

// WithComponents sets the resolver behind the component template function.
func WithComponents(fn ComponentFunc) RendererOption {
	return func(r *Renderer) {
		r.components = fn
	}
}

// WithConfig exposes c to templates through the config function.
func WithConfig(c *config.Container) RendererOption {
	return func(r *Renderer) {
		r.config = c
	}
}

// WithFuncs adds template functions. Built-in names cannot be overridden.
func WithFuncs(funcs template.FuncMap) RendererOption {
	return func(r *Renderer) {
		for name, fn := range funcs {
			r.funcs[name] = fn
		}
	}
}

// WithMarkdown replaces the markdown processor.
func WithMarkdown(md goldmark.Markdown) RendererOption {
	return func(r *Renderer) {
		if md != nil {
			r.md = md
		}
	}
}

// NewRenderer creates a renderer over fsys.
func NewRenderer(fsys fs.FS, opts ...RendererOption) *Renderer {
	r := &Renderer{
		fs:        fsys,
		md:        NewMarkdown(),
		layoutDir: "layouts",
		funcs:     template.FuncMap{},
		pages:     make(map[string]*page),
		layouts:   make(map[string]*template.Template),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetComponents sets the component resolver after construction.
func (r *Renderer) SetComponents(fn ComponentFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components = fn
}

// Exists reports whether a .html or .md template exists for name.
func (r *Renderer) Exists(name string) bool {
	_, _, err := r.locate(name)
	return err == nil
}

// Render renders v's template, applies its decorators and wraps the result
// in its layout.
func (r *Renderer) Render(ctx context.Context, w io.Writer, v *View) error {
	name := v.Template()
	if name == "" {
		return ErrNoTarget
	}

	p, err := r.page(name)
	if err != nil {
		return err
	}

	if layout, ok := p.meta[metaLayout].(string); ok {
		v.SetLayout(layout)
	}
	v.AddDecorator(metaStrings(p.meta[metaDecorators])...)
	v.setDefaults(p.meta)

	data := v.Data()
	content, _, err := r.execute(ctx, p, name, data, v)
	if err != nil {
		return err
	}

	if specs := v.Decorators(); len(specs) > 0 && r.decorator != nil {
		content, err = r.decorator.Apply(ctx, content, specs...)
		if err != nil {
			return errors.Join(ErrRenderFailed, err)
		}
	}

	return r.wrap(ctx, w, v.Layout(), content, data, v)
}

// Result is the output of RenderTemplate.
type Result struct {
	Metadata map[string]any
	HTML     string
	// Text is the executed markdown source for .md templates, empty otherwise.
	Text string
}

// RenderTemplate renders a named template outside a request, e.g. for email.
// Front matter values fill keys missing from data.
func (r *Renderer) RenderTemplate(ctx context.Context, name, layout string, data map[string]any) (*Result, error) {
	p, err := r.page(name)
	if err != nil {
		return nil, err
	}

	v := New(WithData(data))
	v.setDefaults(p.meta)
	merged := v.Data()

	content, text, err := r.execute(ctx, p, name, merged, v)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := r.wrap(ctx, &out, layout, content, merged, v); err != nil {
		return nil, err
	}

	return &Result{Metadata: p.meta, HTML: out.String(), Text: text}, nil
}

// Markdown converts markdown source to HTML.
func (r *Renderer) Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) execute(ctx context.Context, p *page, name string, data map[string]any, v *View) (string, string, error) {
	funcs := r.requestFuncs(ctx, v)

	if !p.markdown {
		tmpl, err := p.html.Clone()
		if err != nil {
			return "", "", fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Funcs(funcs).Execute(&buf, data); err != nil {
			return "", "", fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
		}
		return buf.String(), "", nil
	}

	tmpl, err := p.text.Clone()
	if err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}
	var src bytes.Buffer
	if err := tmpl.Funcs(texttemplate.FuncMap(funcs)).Execute(&src, data); err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}

	var out bytes.Buffer
	if err := r.md.Convert(src.Bytes(), &out); err != nil {
		return "", "", fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}
	return out.String(), src.String(), nil
}

func (r *Renderer) wrap(ctx context.Context, w io.Writer, layout, content string, data map[string]any, v *View) error {
	if layout == "" {
		_, err := io.WriteString(w, content)
		return err
	}

	base, err := r.layout(layout)
	if err != nil {
		return err
	}
	tmpl, err := base.Clone()
	if err != nil {
		return fmt.Errorf("%w: layout %s: %w", ErrRenderFailed, layout, err)
	}

	var buf bytes.Buffer
	err = tmpl.Funcs(r.requestFuncs(ctx, v)).Execute(&buf, map[string]any{
		"Content":   template.HTML(content),
		"View":      data,
		"Resources": v.Resources(),
		"Template":  v.Template(),
	})
	if err != nil {
		return fmt.Errorf("%w: layout %s: %w", ErrRenderFailed, layout, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

// page returns a cached content template or parses and caches it.
func (r *Renderer) page(name string) (*page, error) {
	if !r.reload {
		r.mu.RLock()
		cached, ok := r.pages[name]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.pages[name]; ok && !r.reload {
		return cached, nil
	}

	file, markdown, err := r.locate(name)
	if err != nil {
		return nil, err
	}
	content, err := fs.ReadFile(r.fs, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}
	src, err := ParseSource(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	p := &page{meta: src.Metadata, markdown: markdown}
	if markdown {
		p.text, err = texttemplate.New(name).Funcs(texttemplate.FuncMap(r.placeholderFuncs())).Parse(src.Body)
	} else {
		p.html, err = template.New(name).Funcs(r.placeholderFuncs()).Parse(src.Body)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRenderFailed, name, err)
	}

	r.pages[name] = p
	return p, nil
}

// layout returns a cached layout template or parses and caches it.
func (r *Renderer) layout(name string) (*template.Template, error) {
	if !strings.HasSuffix(name, ExtHTML) {
		name += ExtHTML
	}

	if !r.reload {
		r.mu.RLock()
		cached, ok := r.layouts[name]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.layouts[name]; ok && !r.reload {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, path.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	tmpl, err := template.New(name).Funcs(r.placeholderFuncs()).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: layout %s: %v", ErrRenderFailed, name, err)
	}

	r.layouts[name] = tmpl
	return tmpl, nil
}

// locate finds the file for name, preferring .html over .md.
func (r *Renderer) locate(name string) (string, bool, error) {
	name = strings.TrimPrefix(path.Clean("/"+name), "/")
	switch path.Ext(name) {
	case ExtHTML, ExtMarkdown:
		if _, err := fs.Stat(r.fs, name); err == nil {
			return name, path.Ext(name) == ExtMarkdown, nil
		}
		return "", false, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	for _, ext := range []string{ExtHTML, ExtMarkdown} {
		if _, err := fs.Stat(r.fs, name+ext); err == nil {
			return name + ext, ext == ExtMarkdown, nil
		}
	}
	return "", false, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
}

func metaStrings(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	default:
		return nil
	}
}
