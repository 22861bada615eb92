// Package forms serves multi-step forms declared in configuration or in
// definition files.
//
//	modules:
//	  forms:
//	    directory: "{{ engine:root }}/forms"   # *.yaml, *.yml, *.json
//	    upload-max-size: 10485760
//	    email-template: emails/form-submission
//	    state-ttl: 24h
//	    definitions:
//	      contact:
//	        notify: [office@acme.test]
//	        fields: {...}
//	        steps: [...]
//
// Each form is served at <mount>/<key>. Completed submissions are stored,
// uploads go to the engine storage, and the addresses in notify receive
// the submission through the forms:notify task.
package forms

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/sitegear/sitegear"
	"github.com/sitegear/sitegear/pkg/cache"
	"github.com/sitegear/sitegear/pkg/config"
	"github.com/sitegear/sitegear/pkg/cookie"
	"github.com/sitegear/sitegear/pkg/form"
	"github.com/sitegear/sitegear/pkg/job"
)

const (
	defaultEmailTemplate = "emails/form-submission"
	defaultUploadMaxSize = 10 << 20
	defaultStateTTL      = 24 * time.Hour
)

// Module is the forms module.
type Module struct {
	builder     *form.Builder
	definitions fs.FS
	submissions SubmissionStore
	auto        bool
	state       cache.Cache[map[string]any]
	ownState    bool

	host       *sitegear.Host
	cookies    *cookie.Manager
	processors map[string]*form.Processor
	mount      string
	template   string
	maxSize    int64
}

// Option configures the module.
type Option func(*Module)

// WithBuilder sets the form builder, e.g. one with custom constraints.
func WithBuilder(b *form.Builder) Option {
	return func(m *Module) {
		if b != nil {
			m.builder = b
		}
	}
}

// WithDefinitions reads form definitions from the files at the root of
// fsys, in addition to modules.forms.directory and
// modules.forms.definitions.
func WithDefinitions(fsys fs.FS) Option {
	return func(m *Module) { m.definitions = fsys }
}

// WithSubmissionStore sets where submissions are kept. Without it the
// module uses PostgreSQL when the engine has a database and memory
// otherwise.
func WithSubmissionStore(s SubmissionStore) Option {
	return func(m *Module) {
		if s != nil {
			m.submissions = s
			m.auto = false
		}
	}
}

// WithStateCache sets where values of unfinished multi-step forms are
// kept between steps. Without it the module keeps them in memory.
func WithStateCache(c cache.Cache[map[string]any]) Option {
	return func(m *Module) { m.state = c }
}

// New creates the forms module.
func New(opts ...Option) *Module {
	m := &Module{
		builder:     form.NewBuilder(),
		submissions: NewMemoryStore(),
		auto:        true,
		processors:  map[string]*form.Processor{},
		mount:       "/forms",
		template:    defaultEmailTemplate,
		maxSize:     defaultUploadMaxSize,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Name implements sitegear.Module.
func (m *Module) Name() string { return "forms" }

// Submissions returns the submission store.
func (m *Module) Submissions() SubmissionStore { return m.submissions }

// Form returns a loaded form.
func (m *Module) Form(key string) (*form.Form, bool) {
	p, ok := m.processors[key]
	if !ok {
		return nil, false
	}
	return p.Form(), true
}

// Start implements sitegear.Starter. It builds every form; an invalid
// definition fails the start.
func (m *Module) Start(_ context.Context, h *sitegear.Host) error {
	m.host = h
	if m.auto && h.DB != nil {
		m.submissions = NewPostgresStore(h.DB)
	}
	if h.Config.Has("mount") {
		m.mount = strings.TrimSuffix("/"+strings.Trim(h.Config.String("mount", ""), "/"), "/")
	}
	m.template = h.Config.String("email-template", m.template)
	m.maxSize = int64(h.Config.Int("upload-max-size", int(m.maxSize)))

	m.cookies = h.Cookies
	if m.cookies == nil || !m.cookies.HasSecret() {
		c, err := ephemeralCookies()
		if err != nil {
			return err
		}
		m.cookies = c
		h.Logger.Warn("site.cookie-secret is not set; form progress is lost on restart")
	}

	defs, err := m.load(h.Config)
	if err != nil {
		return err
	}
	keys := slices.Sorted(maps.Keys(defs))
	built := make([]*form.Form, 0, len(keys))
	for _, key := range keys {
		f, err := m.builder.Build(key, defs[key])
		if err != nil {
			return fmt.Errorf("form %s: %w", key, err)
		}
		built = append(built, f)
	}

	if m.state == nil {
		m.state = cache.NewMemory[map[string]any](cache.WithMaxEntries(10000))
		m.ownState = true
	}
	ttl := h.Config.Duration("state-ttl", defaultStateTTL)
	for _, f := range built {
		if f.Action == "" {
			f.Action = m.mount + "/" + f.Key
		}
		m.processors[f.Key] = form.NewProcessor(f, m.cookies, form.WithValueCache(m.state, ttl))
	}
	h.Logger.Info("forms loaded", slog.Int("count", len(defs)))
	return nil
}

// Stop implements sitegear.Stopper.
func (m *Module) Stop(context.Context) error {
	if m.ownState && m.state != nil {
		return m.state.Close()
	}
	return nil
}

// load collects definitions from files and configuration. A key defined
// in more than one place is an error.
func (m *Module) load(cfg *config.Container) (map[string]map[string]any, error) {
	defs := map[string]map[string]any{}
	add := func(key string, def map[string]any) error {
		if _, ok := defs[key]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateForm, key)
		}
		defs[key] = def
		return nil
	}

	sources := []fs.FS{}
	if m.definitions != nil {
		sources = append(sources, m.definitions)
	}
	if dir := cfg.String("directory", ""); dir != "" {
		sources = append(sources, os.DirFS(dir))
	}
	for _, fsys := range sources {
		entries, err := fs.ReadDir(fsys, ".")
		if err != nil {
			return nil, fmt.Errorf("form definitions: %w", err)
		}
		for _, e := range entries {
			ext := path.Ext(e.Name())
			if e.IsDir() || (ext != ".yaml" && ext != ".yml" && ext != ".json") {
				continue
			}
			def, err := config.ReadFile(fsys, e.Name())
			if err != nil {
				return nil, fmt.Errorf("form definition %s: %w", e.Name(), err)
			}
			if err := add(strings.TrimSuffix(e.Name(), ext), def); err != nil {
				return nil, err
			}
		}
	}

	for key, raw := range cfg.Map("definitions") {
		def, err := cast.ToStringMapE(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", form.ErrInvalidDefinition, key, err)
		}
		if err := add(key, def); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// Tasks implements sitegear.Tasker.
func (m *Module) Tasks(*config.Container) []job.Option {
	return []job.Option{job.WithTask(job.Func(TaskNotify, m.notify))}
}

// Component implements sitegear.ComponentProvider. "form" renders the
// current step of the form named by the first argument.
func (m *Module) Component(c sitegear.Context, name string, args ...any) (sitegear.Component, error) {
	if name != "form" || len(args) == 0 {
		return nil, fmt.Errorf("%w: forms/%s", sitegear.ErrUnknownComponent, name)
	}
	key := cast.ToString(args[0])
	p, ok := m.processors[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownForm, key)
	}
	if res, ok := c.Get(resultKey{key}).(*form.Result); ok {
		return form.Render(p.Form(), res.State, res.Errors), nil
	}
	return form.Render(p.Form(), p.Current(c.Request()), nil), nil
}

func ephemeralCookies() (*cookie.Manager, error) {
	secret := make([]byte, cookie.MinSecretLen)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	return cookie.New(cookie.WithSecret(hex.EncodeToString(secret)))
}
