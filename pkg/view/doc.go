// Package view holds per-request rendering state and renders it through
// templates.
//
// A View collects controller data, a stack of targets naming the template
// ("news", "item" renders news/item), a layout, decorator specs and page
// resources. The Renderer resolves <template>.html (html/template) or
// <template>.md (markdown with YAML front matter) from an fs.FS, applies the
// view's decorators to the content and executes layouts/<layout>.html around it.
//
//	v := view.New(view.WithLayout("default"), view.WithTargets("news", "item"))
//	v.Set("title", "Launch day")
//	err := renderer.Render(ctx, w, v)
//
// Templates can call component, resources, decorate, get, config and markdown.
// Front matter values fill keys the controller did not set; the layout and
// decorators keys change the view's layout and append decorators.
package view
