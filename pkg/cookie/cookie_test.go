package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/pkg/cookie"
)

const secret = "0123456789abcdef0123456789abcdef"

// roundTrip copies cookies written to rec onto a fresh request.
func roundTrip(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("no secret", func(t *testing.T) {
		t.Parallel()
		m, err := cookie.New()
		require.NoError(t, err)
		require.False(t, m.HasSecret())
	})

	t.Run("short secret", func(t *testing.T) {
		t.Parallel()
		_, err := cookie.New(cookie.WithSecret("short"))
		require.ErrorIs(t, err, cookie.ErrBadSecret)
	})

	t.Run("must new panics", func(t *testing.T) {
		t.Parallel()
		require.Panics(t, func() { cookie.MustNew(cookie.WithSecret("short")) })
	})
}

func TestPlainCookies(t *testing.T) {
	t.Parallel()

	m := cookie.MustNew()
	rec := httptest.NewRecorder()
	m.Set(rec, "theme", "dark", 60)

	v, err := m.Get(roundTrip(rec), "theme")
	require.NoError(t, err)
	require.Equal(t, "dark", v)

	_, err = m.Get(httptest.NewRequest(http.MethodGet, "/", nil), "theme")
	require.ErrorIs(t, err, cookie.ErrNotFound)

	rec = httptest.NewRecorder()
	m.Delete(rec, "theme")
	c := rec.Result().Cookies()
	require.Len(t, c, 1)
	require.Less(t, c[0].MaxAge, 0)
}

func TestSignedCookies(t *testing.T) {
	t.Parallel()

	m := cookie.MustNew(cookie.WithSecret(secret))

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetSigned(rec, "uid", "42", 0))

	v, err := m.GetSigned(roundTrip(rec), "uid")
	require.NoError(t, err)
	require.Equal(t, "42", v)

	t.Run("tampered", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		orig := rec.Result().Cookies()[0]
		r.AddCookie(&http.Cookie{Name: "uid", Value: "NDM" + strings.TrimPrefix(orig.Value, "NDI")})
		_, err := m.GetSigned(r, "uid")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("renamed", func(t *testing.T) {
		t.Parallel()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "admin", Value: rec.Result().Cookies()[0].Value})
		_, err := m.GetSigned(r, "admin")
		require.ErrorIs(t, err, cookie.ErrBadSig)
	})

	t.Run("without secret", func(t *testing.T) {
		t.Parallel()
		err := cookie.MustNew().SetSigned(httptest.NewRecorder(), "uid", "42", 0)
		require.ErrorIs(t, err, cookie.ErrNoSecret)
	})
}

func TestEncryptedCookies(t *testing.T) {
	t.Parallel()

	m := cookie.MustNew(cookie.WithSecret(secret))

	rec := httptest.NewRecorder()
	require.NoError(t, m.SetEncrypted(rec, "token", "s3cr3t", 0))
	require.NotContains(t, rec.Result().Cookies()[0].Value, "s3cr3t")

	v, err := m.GetEncrypted(roundTrip(rec), "token")
	require.NoError(t, err)
	require.Equal(t, "s3cr3t", v)

	other := cookie.MustNew(cookie.WithSecret(strings.Repeat("x", 32)))
	_, err = other.GetEncrypted(roundTrip(rec), "token")
	require.ErrorIs(t, err, cookie.ErrDecrypt)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "!!"})
	_, err = m.GetEncrypted(r, "token")
	require.ErrorIs(t, err, cookie.ErrDecrypt)
}

func TestValue(t *testing.T) {
	t.Parallel()

	type state struct {
		Step   int               `json:"step"`
		Values map[string]string `json:"values"`
	}

	m := cookie.MustNew(cookie.WithSecret(secret))
	rec := httptest.NewRecorder()
	in := state{Step: 2, Values: map[string]string{"name": "Ann"}}
	require.NoError(t, m.SetValue(rec, "form_contact", in, 300))

	var out state
	require.NoError(t, m.Value(roundTrip(rec), "form_contact", &out))
	require.Equal(t, in, out)

	err := m.SetValue(httptest.NewRecorder(), "big", strings.Repeat("a", 5000), 0)
	require.ErrorIs(t, err, cookie.ErrTooLarge)
}

func TestFlash(t *testing.T) {
	t.Parallel()

	m := cookie.MustNew(cookie.WithSecret(secret))
	rec := httptest.NewRecorder()
	require.NoError(t, m.SetFlash(rec, "notice", "Saved"))

	out := httptest.NewRecorder()
	var msg string
	require.NoError(t, m.Flash(out, roundTrip(rec), "notice", &msg))
	require.Equal(t, "Saved", msg)

	deleted := out.Result().Cookies()
	require.Len(t, deleted, 1)
	require.Equal(t, "flash_notice", deleted[0].Name)
	require.Less(t, deleted[0].MaxAge, 0)

	err := m.Flash(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "notice", &msg)
	require.ErrorIs(t, err, cookie.ErrNotFound)
}

func TestCookieAttributes(t *testing.T) {
	t.Parallel()

	m := cookie.MustNew(
		cookie.WithDomain("example.com"),
		cookie.WithPath("/app"),
		cookie.WithSecure(true),
		cookie.WithHTTPOnly(false),
		cookie.WithSameSite(http.SameSiteStrictMode),
	)
	rec := httptest.NewRecorder()
	m.Set(rec, "k", "v", 10)

	c := rec.Result().Cookies()[0]
	require.Equal(t, "example.com", c.Domain)
	require.Equal(t, "/app", c.Path)
	require.True(t, c.Secure)
	require.False(t, c.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, c.SameSite)
	require.Equal(t, 10, c.MaxAge)
}

func TestDefaultAttributes(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	cookie.MustNew().Set(rec, "k", "v", 0)

	c := rec.Result().Cookies()[0]
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, c.SameSite)
}
