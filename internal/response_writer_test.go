package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponseWriter(t *testing.T) {
	t.Parallel()

	t.Run("first status wins", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		rw := NewResponseWriter(rec)
		require.False(t, rw.Written())

		rw.WriteHeader(http.StatusNotFound)
		rw.WriteHeader(http.StatusOK)

		require.True(t, rw.Written())
		require.Equal(t, http.StatusNotFound, rw.Status())
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("write implies 200", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		rw := NewResponseWriter(rec)

		n, err := rw.Write([]byte("hello"))
		require.NoError(t, err)
		require.Equal(t, 5, n)
		_, err = rw.Write([]byte(" world"))
		require.NoError(t, err)

		require.Equal(t, http.StatusOK, rw.Status())
		require.Equal(t, int64(11), rw.Size())
		require.Equal(t, "hello world", rec.Body.String())
	})

	t.Run("unwrap and flush", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		rw := NewResponseWriter(rec)

		require.Same(t, rec, rw.Unwrap())
		rw.Flush()
		require.True(t, rec.Flushed)

		_, _, err := rw.Hijack()
		require.ErrorIs(t, err, http.ErrNotSupported)
	})
}

func TestPageRecorder(t *testing.T) {
	t.Parallel()

	t.Run("ok page is shareable", func(t *testing.T) {
		t.Parallel()
		rec := newPageRecorder()
		rec.Header().Set("Content-Type", "text/html")
		_, err := rec.Write([]byte("<h1>Home</h1>"))
		require.NoError(t, err)

		p, shareable := rec.page()
		require.True(t, shareable)
		require.Equal(t, http.StatusOK, p.Status)
		require.Equal(t, "text/html", p.Header.Get("Content-Type"))
		require.Equal(t, "<h1>Home</h1>", string(p.Body))
		require.False(t, p.StoredAt.IsZero())
	})

	t.Run("error status is private", func(t *testing.T) {
		t.Parallel()
		rec := newPageRecorder()
		rec.WriteHeader(http.StatusNotFound)
		rec.WriteHeader(http.StatusOK)

		p, shareable := rec.page()
		require.False(t, shareable)
		require.Equal(t, http.StatusNotFound, p.Status)
	})

	t.Run("cookies are private", func(t *testing.T) {
		t.Parallel()
		rec := newPageRecorder()
		http.SetCookie(rec, &http.Cookie{Name: "flash", Value: "x"})
		rec.WriteHeader(http.StatusOK)

		_, shareable := rec.page()
		require.False(t, shareable)
	})

	t.Run("empty response defaults to 200", func(t *testing.T) {
		t.Parallel()
		p, _ := newPageRecorder().page()
		require.Equal(t, http.StatusOK, p.Status)
	})
}

func TestContextCapture(t *testing.T) {
	t.Parallel()

	e := New()
	rec := httptest.NewRecorder()
	c := newContext(rec, httptest.NewRequest(http.MethodGet, "/", nil), e)

	buf := newPageRecorder()
	restore := c.capture(buf)
	require.NoError(t, c.String(http.StatusCreated, "captured"))
	require.True(t, c.Written())
	restore()

	require.False(t, c.Written())
	require.Equal(t, "captured", buf.body.String())
	require.Equal(t, http.StatusCreated, buf.status)
	require.Empty(t, rec.Body.String())

	require.Same(t, Context(c), contextFrom(c.Request().Context()))
	require.Nil(t, contextFrom(t.Context()))
}
