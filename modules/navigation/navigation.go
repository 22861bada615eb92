// Package navigation renders site menus from configuration.
//
// Menus live in the module's section as nested lists:
//
//	modules:
//	  navigation:
//	    items:
//	      - {url: /, label: Home}
//	      - url: /news
//	        label: News
//	        children:
//	          - {url: /news/archive, label: Archive}
//	    footer:
//	      - {url: /imprint, label: Imprint}
//
// Templates render them with {{ component "navigation" "menu" }} or, for
// another list, {{ component "navigation" "menu" "footer" }}.
package navigation

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
	"github.com/spf13/cast"

	"github.com/sitegear/sitegear"
)

// Item is one menu entry.
type Item struct {
	URL      string
	Label    string
	Children []Item
}

// Module is the navigation module.
type Module struct{}

// New creates the navigation module.
func New() *Module { return &Module{} }

// Name implements sitegear.Module.
func (*Module) Name() string { return "navigation" }

// Component implements sitegear.ComponentProvider.
func (m *Module) Component(c sitegear.Context, name string, args ...any) (sitegear.Component, error) {
	if name != "menu" {
		return nil, fmt.Errorf("%w: navigation/%s", sitegear.ErrUnknownComponent, name)
	}
	list := "items"
	if len(args) > 0 {
		list = cast.ToString(args[0])
	}
	items := Parse(c.Config().Get("modules.navigation." + list))
	return Menu(items, c.Request().URL.Path), nil
}

// Parse converts configuration values into menu items. Entries without a
// URL or label are skipped.
func Parse(v any) []Item {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]Item, 0, len(list))
	for _, raw := range list {
		m, err := cast.ToStringMapE(raw)
		if err != nil {
			continue
		}
		it := Item{
			URL:      cast.ToString(m["url"]),
			Label:    cast.ToString(m["label"]),
			Children: Parse(m["children"]),
		}
		if it.URL == "" || it.Label == "" {
			continue
		}
		items = append(items, it)
	}
	return items
}

// Menu renders items as nested lists. The item matching current gets the
// "active" class; its ancestors get "active-trail".
func Menu(items []Item, current string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		write(&b, items, current, "nav")
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func write(b *strings.Builder, items []Item, current, class string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(`<ul class="` + class + `">`)
	for _, it := range items {
		b.WriteString("<li")
		switch {
		case it.URL == current:
			b.WriteString(` class="active"`)
		case contains(it.Children, current):
			b.WriteString(` class="active-trail"`)
		}
		b.WriteString(`><a href="` + templ.EscapeString(it.URL) + `">` + templ.EscapeString(it.Label) + "</a>")
		write(b, it.Children, current, "nav-children")
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
}

func contains(items []Item, url string) bool {
	for _, it := range items {
		if it.URL == url || contains(it.Children, url) {
			return true
		}
	}
	return false
}
