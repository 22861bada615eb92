package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/sitegear/sitegear"
	"github.com/sitegear/sitegear/middlewares"
	"github.com/sitegear/sitegear/modules/forms"
	"github.com/sitegear/sitegear/modules/navigation"
	"github.com/sitegear/sitegear/modules/news"
	"github.com/sitegear/sitegear/modules/pages"
	"github.com/sitegear/sitegear/pkg/cache"
	"github.com/sitegear/sitegear/pkg/config"
	"github.com/sitegear/sitegear/pkg/db"
	"github.com/sitegear/sitegear/pkg/logger"
	"github.com/sitegear/sitegear/pkg/mailer"
	"github.com/sitegear/sitegear/pkg/mailer/resend"
	"github.com/sitegear/sitegear/pkg/redis"
	"github.com/sitegear/sitegear/pkg/storage"
)

// configName is the site configuration file under <site>/config.
const configName = "site"

var (
	errNoDatabase = errors.New("database.url is not set")
	errNoSiteDir  = errors.New("site directory not found")
)

// site is a site directory opened by a command.
type site struct {
	root   string
	env    string
	config *config.Container
	logger *slog.Logger

	pool  *pgxpool.Pool
	redis goredis.UniversalClient
	pages cache.Cache[cache.Page]
	hooks []func(context.Context) error
}

// openSite loads <site>/config/site.* with its environment overlay and
// builds the logger described by the logging section.
func openSite(v *viper.Viper) (*site, error) {
	root, err := filepath.Abs(v.GetString("site"))
	if err != nil {
		return nil, err
	}
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s", errNoSiteDir, root)
	}

	env := v.GetString("env")
	cfg := config.New(config.WithEnvironment(env))
	if err := cfg.Load(os.DirFS(filepath.Join(root, "config")), configName); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := v.GetString("log-level")
	if level == "" {
		level = cfg.String("logging.level", "")
	}
	log, err := logger.New(logger.Config{
		Level:       level,
		Format:      cfg.String("logging.format", ""),
		SentryDSN:   cfg.String("logging.sentry-dsn", ""),
		Environment: env,
	}, middlewares.RequestIDExtractor())
	if errors.Is(err, logger.ErrSentryInit) {
		log.Warn("sentry disabled", slog.Any("error", err))
	} else if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	return &site{root: root, env: env, config: cfg, logger: log}, nil
}

// database connects to database.url once.
func (s *site) database(ctx context.Context) (*pgxpool.Pool, error) {
	if s.pool != nil {
		return s.pool, nil
	}
	if !s.config.Has("database.url") {
		return nil, errNoDatabase
	}
	var dc db.Config
	if err := s.config.Decode("database", &dc); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, dc)
	if err != nil {
		return nil, err
	}
	s.pool = pool
	s.hooks = append(s.hooks, db.Shutdown(pool))
	return pool, nil
}

// close runs the collected shutdown hooks. serve hands them to Run instead.
func (s *site) close(ctx context.Context) error {
	var errs []error
	for _, fn := range s.hooks {
		errs = append(errs, fn(ctx))
	}
	s.hooks = nil
	return errors.Join(errs...)
}

// engine assembles the engine with the shipped modules and every backend
// the configuration names.
func (s *site) engine(ctx context.Context) (*sitegear.Engine, error) {
	opts := []sitegear.Option{
		sitegear.WithConfig(s.config),
		sitegear.WithRoot(s.root),
		sitegear.WithLogger(s.logger),
		sitegear.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
		sitegear.WithTemplates(os.DirFS(filepath.Join(s.root, "templates"))),
		sitegear.WithStaticFiles("/assets", os.DirFS(s.root), "public"),
	}
	var checks []sitegear.HealthOption

	pool, err := s.database(ctx)
	switch {
	case errors.Is(err, errNoDatabase):
		opts = append(opts, sitegear.WithInlineJobs())
	case err != nil:
		return nil, err
	default:
		opts = append(opts, sitegear.WithDB(pool), sitegear.WithJobs(pool))
		checks = append(checks, sitegear.WithReadinessCheck("database", db.Healthcheck(pool)))
	}

	pageCache, err := s.pageCache(ctx, &checks)
	if err != nil {
		return nil, err
	}
	if pageCache != nil {
		s.pages = pageCache
		opts = append(opts, sitegear.WithPageCache(pageCache, s.config.Duration("cache.ttl", 5*time.Minute)))
	}

	store, err := s.storage()
	if err != nil {
		return nil, err
	}
	opts = append(opts, sitegear.WithStorage(store))

	if s.config.Has("mailer.resend.api-key") {
		var rc resend.Config
		if err := s.config.Decode("mailer.resend", &rc); err != nil {
			return nil, err
		}
		sender, err := resend.New(rc)
		if err != nil {
			return nil, err
		}
		var mc mailer.Config
		if s.config.Has("mailer") {
			if err := s.config.Decode("mailer", &mc); err != nil {
				return nil, err
			}
		}
		opts = append(opts, sitegear.WithMailer(sender, mc))
	}

	opts = append(opts,
		sitegear.WithHealthChecks(checks...),
		sitegear.WithModules(pages.New(), navigation.New(), news.New(), forms.New(s.formOptions()...)),
	)
	return sitegear.New(opts...), nil
}

// formOptions keeps form progress in Redis when the page cache uses it,
// so it survives restarts and is shared between instances.
func (s *site) formOptions() []forms.Option {
	if s.redis == nil {
		return nil
	}
	return []forms.Option{
		forms.WithStateCache(cache.NewRedis[map[string]any](s.redis, nil, cache.WithPrefix("sitegear:forms:"))),
	}
}

// watcher reloads config/site.* into the site configuration. Cached pages
// embed site data, so each reload drops them.
func (s *site) watcher() *config.Watcher {
	return config.NewWatcher(s.config, filepath.Join(s.root, "config"), []string{configName},
		config.WithWatchLogger(s.logger),
		config.WithOnReload(func() {
			if s.pages == nil {
				return
			}
			if err := s.pages.Clear(context.Background()); err != nil {
				s.logger.Warn("page cache not cleared after reload", slog.Any("error", err))
			}
		}),
	)
}

// pageCache returns the page cache selected by cache.driver: "memory",
// "redis" or empty for none.
func (s *site) pageCache(ctx context.Context, checks *[]sitegear.HealthOption) (cache.Cache[cache.Page], error) {
	switch driver := s.config.String("cache.driver", ""); driver {
	case "":
		return nil, nil
	case "memory":
		return cache.NewMemory[cache.Page](cache.WithMaxEntries(s.config.Int("cache.max-entries", 1000))), nil
	case "redis":
		var rc redis.Config
		if err := s.config.Decode("redis", &rc); err != nil {
			return nil, err
		}
		client, err := redis.OpenConfig(ctx, rc)
		if err != nil {
			return nil, err
		}
		s.redis = client
		s.hooks = append(s.hooks, redis.Shutdown(client))
		*checks = append(*checks, sitegear.WithOptionalCheck("redis", redis.Healthcheck(client)))
		return cache.NewRedis[cache.Page](client, nil, cache.WithPrefix("sitegear:pages:")), nil
	default:
		return nil, fmt.Errorf("unknown cache.driver %q", driver)
	}
}

// storage opens the storage section. Relative local directories are
// resolved against the site root; the default is <site>/uploads.
func (s *site) storage() (storage.Storage, error) {
	var sc storage.Config
	if s.config.Has("storage") {
		if err := s.config.Decode("storage", &sc); err != nil {
			return nil, err
		}
	}
	if sc.Local.Dir == "" {
		sc.Local.Dir = "uploads"
	}
	if !filepath.IsAbs(sc.Local.Dir) {
		sc.Local.Dir = filepath.Join(s.root, sc.Local.Dir)
	}
	st, err := storage.Open(sc)
	if err != nil {
		return nil, err
	}
	if c, ok := st.(io.Closer); ok {
		s.hooks = append(s.hooks, func(context.Context) error { return c.Close() })
	}
	return st, nil
}
