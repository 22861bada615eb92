package cookie

import (
	"errors"
	"net/http"
)

// MinSecretLen is the shortest accepted secret.
const MinSecretLen = 32

// maxValueLen keeps cookies within what browsers reliably store.
const maxValueLen = 4096

// Manager reads and writes cookies with shared attributes. With a secret
// it also signs and encrypts values.
type Manager struct {
	keys     *keys
	domain   string
	path     string
	secure   bool
	httpOnly bool
	sameSite http.SameSite
}

// Option configures a Manager.
type Option func(*Manager) error

// New creates a Manager. Defaults: path "/", HttpOnly, SameSite=Lax.
func New(opts ...Option) (*Manager, error) {
	m := &Manager{path: "/", httpOnly: true, sameSite: http.SameSiteLaxMode}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// MustNew is like New but panics on invalid options.
func MustNew(opts ...Option) *Manager {
	m, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return m
}

// WithSecret enables signed and encrypted cookies. An empty secret is
// ignored; a short one is an error.
func WithSecret(secret string) Option {
	return func(m *Manager) error {
		if secret == "" {
			return nil
		}
		if len(secret) < MinSecretLen {
			return ErrBadSecret
		}
		m.keys = deriveKeys([]byte(secret))
		return nil
	}
}

func WithDomain(domain string) Option {
	return func(m *Manager) error { m.domain = domain; return nil }
}

func WithPath(path string) Option {
	return func(m *Manager) error { m.path = path; return nil }
}

func WithSecure(secure bool) Option {
	return func(m *Manager) error { m.secure = secure; return nil }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) error { m.httpOnly = httpOnly; return nil }
}

func WithSameSite(ss http.SameSite) Option {
	return func(m *Manager) error { m.sameSite = ss; return nil }
}

// HasSecret reports whether signed and encrypted cookies are available.
func (m *Manager) HasSecret() bool { return m.keys != nil }

// Get returns the raw value of a cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Set writes a plain cookie. maxAge 0 makes a session cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, m.cookie(name, value, maxAge))
}

// Delete expires a cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, m.cookie(name, "", -1))
}

func (m *Manager) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		MaxAge:   maxAge,
		Secure:   m.secure,
		HttpOnly: m.httpOnly,
		SameSite: m.sameSite,
	}
}
