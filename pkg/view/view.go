package view

import (
	"maps"
	"slices"
	"strings"
	"sync"
)

// View is the per-request rendering state that controllers fill in.
// It is safe for concurrent use.
type View struct {
	data       map[string]any
	resources  *Resources
	layout     string
	targets    []string
	decorators []string
	mu         sync.RWMutex
}

// Option configures a View.
type Option func(*View)

// WithLayout sets the layout name. An empty name renders without a layout.
func WithLayout(name string) Option {
	return func(v *View) {
		v.layout = name
	}
}

// WithData seeds the view data.
func WithData(data map[string]any) Option {
	return func(v *View) {
		maps.Copy(v.data, data)
	}
}

// WithResources sets the resource registry. The registry is used as is,
// callers sharing a base set should pass a Clone.
func WithResources(r *Resources) Option {
	return func(v *View) {
		if r != nil {
			v.resources = r
		}
	}
}

// WithTargets sets the initial target stack.
func WithTargets(targets ...string) Option {
	return func(v *View) {
		v.targets = append(v.targets[:0], targets...)
	}
}

// New creates an empty view.
func New(opts ...Option) *View {
	v := &View{
		data:      make(map[string]any),
		resources: NewResources(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Set stores a data value.
func (v *View) Set(key string, value any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.data[key] = value
}

// Get returns a data value or nil.
func (v *View) Get(key string) any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.data[key]
}

// Has reports whether a data key is set.
func (v *View) Has(key string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.data[key]
	return ok
}

// Delete removes a data value.
func (v *View) Delete(key string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.data, key)
}

// Data returns a shallow copy of the view data.
func (v *View) Data() map[string]any {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return maps.Clone(v.data)
}

// setDefaults stores values for keys that are not set yet.
func (v *View) setDefaults(values map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for k, val := range values {
		if _, ok := v.data[k]; !ok {
			v.data[k] = val
		}
	}
}

// PushTarget appends targets to the stack.
func (v *View) PushTarget(targets ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.targets = append(v.targets, targets...)
}

// PopTarget removes and returns the last target.
func (v *View) PopTarget() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.targets) == 0 {
		return "", false
	}
	last := v.targets[len(v.targets)-1]
	v.targets = v.targets[:len(v.targets)-1]
	return last, true
}

// Target returns the target at index i. Negative indexes count from the end.
// Out of range indexes return "".
func (v *View) Target(i int) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if i < 0 {
		i += len(v.targets)
	}
	if i < 0 || i >= len(v.targets) {
		return ""
	}
	return v.targets[i]
}

// Targets returns a copy of the target stack.
func (v *View) Targets() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.targets)
}

// SetTargets replaces the target stack.
func (v *View) SetTargets(targets ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.targets = slices.Clone(targets)
}

// Template returns the template name built from the target stack,
// e.g. ["news", "item"] becomes "news/item".
func (v *View) Template() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return strings.Join(v.targets, "/")
}

// Layout returns the layout name.
func (v *View) Layout() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.layout
}

// SetLayout changes the layout. An empty name disables the layout.
func (v *View) SetLayout(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.layout = name
}

// AddDecorator appends decorator specs applied to the rendered content.
func (v *View) AddDecorator(specs ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.decorators = append(v.decorators, specs...)
}

// Decorators returns a copy of the decorator specs.
func (v *View) Decorators() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.decorators)
}

// Resources returns the page resource registry.
func (v *View) Resources() *Resources {
	return v.resources
}
