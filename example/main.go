// Command example serves a small bakery site built from the embedded site
// directory, with one custom module next to the shipped ones.
//
//	go run ./example
package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/sitegear/sitegear"
	"github.com/sitegear/sitegear/middlewares"
	"github.com/sitegear/sitegear/modules/forms"
	"github.com/sitegear/sitegear/modules/navigation"
	"github.com/sitegear/sitegear/modules/news"
	"github.com/sitegear/sitegear/modules/pages"
	"github.com/sitegear/sitegear/pkg/cache"
	"github.com/sitegear/sitegear/pkg/config"
	"github.com/sitegear/sitegear/pkg/logger"
	"github.com/sitegear/sitegear/pkg/mailer"
	"github.com/sitegear/sitegear/pkg/storage"
)

//go:embed site
var siteFS embed.FS

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	log := logger.MustNew(logger.Config{Format: logger.FormatText, Level: getEnv("LOG_LEVEL", "debug")},
		middlewares.RequestIDExtractor(),
	)
	uploads, err := storage.NewLocal(storage.LocalConfig{Dir: getEnv("UPLOADS_DIR", os.TempDir()+"/sitegear-example")})
	if err != nil {
		return err
	}

	e, err := newEngine(log, getEnv("SITE_ENV", "dev"), uploads)
	if err != nil {
		return err
	}
	return e.Run(getEnv("ADDRESS", ":8080"),
		sitegear.ShutdownTimeout(10*time.Second),
		sitegear.ShutdownHook(func(context.Context) error { return uploads.Close() }),
	)
}

// newEngine assembles the bakery site from the embedded files.
func newEngine(log *slog.Logger, env string, uploads storage.Storage) (*sitegear.Engine, error) {
	site, err := fs.Sub(siteFS, "site")
	if err != nil {
		return nil, err
	}
	cfg := config.New(config.WithEnvironment(env))
	if err := cfg.Load(site, "config/site"); err != nil {
		return nil, err
	}
	templates, err := fs.Sub(site, "templates")
	if err != nil {
		return nil, err
	}
	definitions, err := fs.Sub(site, "forms")
	if err != nil {
		return nil, err
	}

	store := news.NewMemoryStore()
	if err := seed(context.Background(), store); err != nil {
		return nil, err
	}

	return sitegear.New(
		sitegear.WithConfig(cfg),
		sitegear.WithLogger(log),
		sitegear.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
		sitegear.WithTemplates(templates),
		sitegear.WithStaticFiles("/assets", site, "public"),
		sitegear.WithPageCache(cache.NewMemory[cache.Page](), time.Minute),
		sitegear.WithStorage(uploads),
		// Emails are written to the log instead of being sent.
		sitegear.WithMailer(mailer.SenderFunc(func(ctx context.Context, m *mailer.Email) error {
			log.InfoContext(ctx, "email", "to", m.To, "subject", m.Subject, "text", m.Text)
			return nil
		}), mailer.Config{From: "Bakery <hello@bakery.test>"}),
		sitegear.WithInlineJobs(),
		sitegear.WithHealthChecks(),
		sitegear.WithErrorHandler(handleError),
		sitegear.WithModules(
			pages.New(),
			navigation.New(),
			news.New(news.WithStore(store)),
			forms.New(forms.WithDefinitions(definitions)),
			newHours(),
		),
	), nil
}

// handleError logs server errors and renders errors/<code> like the
// default handler, falling back to a plain message.
func handleError(c sitegear.Context, err error) error {
	code := sitegear.StatusOf(err)
	if code >= http.StatusInternalServerError {
		c.LogError("request failed", "error", err)
	}
	v := c.View()
	v.Set("code", code)
	v.Set("message", http.StatusText(code))
	v.SetTargets("errors", "default")
	if perr := c.Page(code); perr != nil {
		return c.String(code, http.StatusText(code))
	}
	return nil
}

func seed(ctx context.Context, store news.Store) error {
	items := []news.Item{
		{Title: "Sourdough is back", Summary: "Our starter survived the summer.", PublishAt: time.Now().Add(-48 * time.Hour)},
		{Title: "Spring opening hours", Summary: "Open on Sundays from April.", PublishAt: time.Now().Add(-2 * time.Hour)},
		{Title: "Easter specials", Summary: "Hot cross buns, pre-order now.", PublishAt: time.Now().Add(time.Hour)},
	}
	for i := range items {
		if err := store.Create(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

// getEnv returns environment variable value or default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
