// Package sitegear is a content-management web engine. A site is assembled
// from modules mounted on an [Engine]; every request gets a [View] that
// handlers fill with data and a stack of targets, and the engine renders it
// through templates, decorators and a layout.
//
// # Quick Start
//
// Load the site configuration, register modules and run:
//
//	cfg := config.New(config.WithEnvironment("prod"))
//	if err := cfg.Load(os.DirFS("site/config"), "site"); err != nil {
//	    log.Fatal(err)
//	}
//
//	e := sitegear.New(
//	    sitegear.WithConfig(cfg),
//	    sitegear.WithRoot("site"),
//	    sitegear.WithTemplates(os.DirFS("site/templates")),
//	    sitegear.WithModules(pages.New(), navigation.New(), news.New(), forms.New()),
//	)
//
//	if err := e.Run(":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// The sitegear command does the same from a site directory and wires
// PostgreSQL, Redis, S3 and Resend from the configuration.
//
// # Configuration
//
// Configuration is a tree of maps read from site.json or site.yaml, with
// site.<env>.* merged over it. Keys are addressed with dots and string
// values may carry tokens:
//
//	site:
//	  name: Corner Bakery
//	  cookie-secret: "{{ env:COOKIE_SECRET }}"
//	modules:
//	  forms:
//	    directory: "{{ engine:root }}/forms"
//
// Each module reads its own section, modules.<name>, and is mounted at
// modules.<name>.mount (default /<name>; "/" mounts it at the root, behind
// every other module).
//
// # Modules
//
// A module is anything with a Name. It opts into more through interfaces:
//
//	type Hours struct{}
//
//	func (Hours) Name() string { return "hours" }
//
//	// Mounter
//	func (Hours) Routes(r sitegear.Router) {
//	    r.Page("/", "index", func(c sitegear.Context) error {
//	        c.View().Set("days", c.Config().Map("modules.hours.days"))
//	        return nil
//	    })
//	}
//
// Page renders templates/hours/index.html (or .md) when the handler
// returns without writing. [Starter], [Stopper], [Tasker] and
// [ComponentProvider] add lifecycle hooks, background tasks and template
// components:
//
//	{{ component "navigation" "menu" }}
//	{{ component "news" "latest" 3 }}
//
// # Errors
//
// Handlers return errors. [HTTPError] values keep their status; anything
// else is a 500. The default handler renders errors/<code> or
// errors/default when the site has them:
//
//	return sitegear.ErrNotFound("No such item")
//
// # Shutdown
//
// Run handles SIGINT/SIGTERM, stops the job queue and the modules, then
// runs the shutdown hooks:
//
//	e.Run(":8080", sitegear.ShutdownHook(db.Shutdown(pool)))
package sitegear
