// Package decorator post-processes rendered content.
//
// Decorators are referenced by spec strings of the form "name" or
// "name:arg1,arg2" and applied in order by a Registry:
//
//	reg := decorator.New()
//	out, err := reg.Apply(ctx, html, "trim", "element:main,class=page")
//
// Built-ins: element, comments, sanitize (strict, safe or content policy),
// markdown, trim and escape.
package decorator
