// Package internal provides the core types and implementation of the
// Sitegear engine.
//
// This package is internal and should not be used directly. Import
// "github.com/sitegear/sitegear" instead, which re-exports the public API.
//
// # Core Types
//
//   - Engine: mounts modules on a chi router, renders views and runs the
//     module and job queue lifecycle
//   - Module: a named unit of site functionality, extended through the
//     optional Starter, Stopper, Mounter, ComponentProvider and Tasker
//     interfaces
//   - Host: the services a module receives when it starts
//   - Router: what modules use to declare routes, including Page routes
//     that render a view
//   - Context: request/response helpers, the request View and site config
//
// # Modules
//
// A module declares routes and components:
//
//	type News struct{ store news.Store }
//
//	func (m *News) Name() string { return "news" }
//
//	func (m *News) Routes(r sitegear.Router) {
//	    r.Page("/", "index", m.index)
//	    r.Page("/{slug}", "item", m.item)
//	}
//
// Routes are mounted at modules.<name>.mount, "/news" here by default.
// A mount of "/" puts the module at the site root behind every other
// module.
//
// # Views
//
// Each request gets a view with the site layout, the "site" config subtree
// as data and the resources listed under site.resources. Page routes push
// the targets [module, name] so "index" above renders news/index.html or
// news/index.md, and the handler only fills in data:
//
//	func (m *News) item(c sitegear.Context) error {
//	    item, err := m.store.BySlug(c, c.Param("slug"))
//	    if err != nil {
//	        return sitegear.ErrNotFound("News item not found")
//	    }
//	    c.View().Set("item", item)
//	    return nil
//	}
//
// Templates call other modules through {{ component "navigation" "menu" }}.
//
// # Error Handling
//
// Errors returned from handlers go to the ErrorHandler. The default one
// renders errors/<code> or errors/default with the error as "error" and
// falls back to plain text.
//
// # Lifecycle
//
// Run starts modules in registration order, then the job queue, serves
// HTTP until SIGINT or SIGTERM and stops everything in reverse:
//
//	err := e.Run(":8080", sitegear.ShutdownHook(db.Shutdown(pool)))
package internal
