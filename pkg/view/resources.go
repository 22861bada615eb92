package view

import (
	"html/template"
	"slices"
	"strings"
	"sync"
)

// Resource types understood by Render.
const (
	ResourceScript = "script"
	ResourceStyle  = "style"
)

// Resources is an ordered, de-duplicated registry of page resources by type.
type Resources struct {
	byType map[string][]string
	mu     sync.RWMutex
}

// NewResources creates an empty registry.
func NewResources() *Resources {
	return &Resources{byType: make(map[string][]string)}
}

// Add registers urls under typ, keeping first-registration order.
// It reports whether anything new was added.
func (r *Resources) Add(typ string, urls ...string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := false
	for _, u := range urls {
		if u == "" || slices.Contains(r.byType[typ], u) {
			continue
		}
		r.byType[typ] = append(r.byType[typ], u)
		added = true
	}
	return added
}

// Has reports whether url is registered under typ.
func (r *Resources) Has(typ, url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Contains(r.byType[typ], url)
}

// List returns the urls registered under typ.
func (r *Resources) List(typ string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.byType[typ])
}

// Clone returns an independent copy.
func (r *Resources) Clone() *Resources {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := NewResources()
	for typ, urls := range r.byType {
		c.byType[typ] = slices.Clone(urls)
	}
	return c
}

// Render returns HTML tags for every resource of typ.
// Scripts become <script src>, styles become <link rel="stylesheet">,
// other types become <link rel="typ">.
func (r *Resources) Render(typ string) template.HTML {
	urls := r.List(typ)
	if len(urls) == 0 {
		return ""
	}

	var b strings.Builder
	for _, u := range urls {
		src := template.HTMLEscapeString(u)
		switch typ {
		case ResourceScript:
			b.WriteString(`<script src="` + src + `"></script>`)
		case ResourceStyle:
			b.WriteString(`<link rel="stylesheet" href="` + src + `">`)
		default:
			b.WriteString(`<link rel="` + template.HTMLEscapeString(typ) + `" href="` + src + `">`)
		}
		b.WriteString("\n")
	}
	return template.HTML(b.String())
}
