package view

import "context"

type viewKey struct{}

// WithView returns a context carrying v.
func WithView(ctx context.Context, v *View) context.Context {
	return context.WithValue(ctx, viewKey{}, v)
}

// FromContext returns the view stored in ctx, or nil.
func FromContext(ctx context.Context) *View {
	v, _ := ctx.Value(viewKey{}).(*View)
	return v
}
