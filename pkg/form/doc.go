// Package form builds multi-step forms from data and drives visitors
// through them.
//
// A Builder turns a definition (a map, JSON or YAML) into a Form: fields
// keyed by name and steps made of fieldsets that reference those names.
// Constraints attach validation rules to fields; custom ones are added with
// WithConstraint.
//
//	f, err := form.NewBuilder().BuildYAML("contact", data)
//
// A Processor keeps the visitor's progress in an encrypted cookie. Each
// request binds the submitted step, validates it and either advances or
// completes:
//
//	p := form.NewProcessor(f, cookies)
//	res, err := p.Submit(w, r, step, f.Bind(step, r.PostForm))
//	if res.Complete {
//	    store(res.Values)
//	}
//
// Render writes the HTML of the current step as a templ component.
package form
