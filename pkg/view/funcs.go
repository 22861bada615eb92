package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
)

// placeholderFuncs declares every function name so templates parse.
// They are replaced per request by requestFuncs.
func (r *Renderer) placeholderFuncs() template.FuncMap {
	return r.requestFuncs(context.Background(), New())
}

// requestFuncs binds template functions to ctx and v.
func (r *Renderer) requestFuncs(ctx context.Context, v *View) template.FuncMap {
	funcs := template.FuncMap{}
	for name, fn := range r.funcs {
		funcs[name] = fn
	}

	funcs["component"] = func(module, name string, args ...any) (template.HTML, error) {
		return r.component(ctx, module, name, args...)
	}
	funcs["resources"] = func(typ string) template.HTML {
		return v.Resources().Render(typ)
	}
	funcs["decorate"] = func(spec string, content any) (template.HTML, error) {
		if r.decorator == nil {
			return template.HTML(fmt.Sprint(content)), nil
		}
		out, err := r.decorator.Apply(ctx, fmt.Sprint(content), spec)
		return template.HTML(out), err
	}
	funcs["get"] = v.Get
	funcs["config"] = func(key string) any {
		if r.config == nil {
			return nil
		}
		return r.config.Get(key)
	}
	funcs["markdown"] = func(src string) (template.HTML, error) {
		return r.Markdown(src)
	}
	return funcs
}

func (r *Renderer) component(ctx context.Context, module, name string, args ...any) (template.HTML, error) {
	r.mu.RLock()
	resolve := r.components
	r.mu.RUnlock()
	if resolve == nil {
		return "", ErrNoComponents
	}

	c, err := resolve(ctx, module, name, args...)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return template.HTML(buf.String()), nil
}
