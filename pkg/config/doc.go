// Package config provides the hierarchical configuration container used by the
// engine and its modules.
//
// Configuration is a tree of nested maps, slices and scalars loaded from JSON or
// YAML files. Files are deep-merged into a Container, optionally followed by an
// environment overlay, and values are read back with dot-separated keys.
//
// # Loading
//
//	c := config.New(config.WithEnvironment("development"))
//	if err := c.Load(os.DirFS("site/config"), "site"); err != nil {
//		return err
//	}
//
// Load reads site.json, site.yaml or site.yml (first match) and then merges
// site.development.json (or .yaml/.yml) over it when present.
//
// # Merging
//
// Merge combines two trees. Nested maps are merged key by key; any other value
// is replaced wholesale. The overwrite flag decides which side wins on conflict:
//
//	config.Merge(defaults, site, true)  // site values override defaults
//	config.Merge(site, defaults, false) // defaults only fill the gaps
//
// # Lookup
//
//	c.Get("modules.news.mount")          // nested map lookup
//	c.Get("navigation.items.0.label")    // numeric segments index slices
//	c.String("site.title", "Untitled")   // typed getters with defaults
//	news := c.Sub("modules.news")        // live view rooted at a nested key
//
// # Tokens
//
// String leaves returned by Get pass through a chain of processors. Tokens have
// the form {{ prefix:argument }}. The container resolves {{ config:key }} itself;
// {{ env:NAME }} is registered by default and further prefixes can be added with
// WithProcessor or AddProcessor:
//
//	c.AddProcessor(config.ValuesProcessor("engine", map[string]string{
//		"site-root": "/srv/site",
//	}))
//
// Unresolved tokens are left untouched.
package config
