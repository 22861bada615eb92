package middlewares_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sitegear/sitegear/middlewares"
)

func TestPanicError(t *testing.T) {
	t.Parallel()

	t.Run("formats the panic value", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, "panic: something went wrong", (&middlewares.PanicError{Value: "something went wrong"}).Error())
		require.Equal(t, "panic: 42", (&middlewares.PanicError{Value: 42}).Error())
		require.Equal(t, "panic: <nil>", (&middlewares.PanicError{}).Error())
	})

	t.Run("unwraps error values", func(t *testing.T) {
		t.Parallel()
		cause := errors.New("nil map")
		err := &middlewares.PanicError{Value: cause}
		require.ErrorIs(t, err, cause)
		require.NoError(t, (&middlewares.PanicError{Value: "text"}).Unwrap())
	})

	t.Run("detects wrapped panics", func(t *testing.T) {
		t.Parallel()
		wrapped := fmt.Errorf("render: %w", &middlewares.PanicError{Value: "boom"})
		require.True(t, middlewares.IsPanicError(wrapped))

		pe, ok := middlewares.AsPanicError(wrapped)
		require.True(t, ok)
		require.Equal(t, "boom", pe.Value)

		_, ok = middlewares.AsPanicError(errors.New("plain"))
		require.False(t, ok)
		require.False(t, middlewares.IsPanicError(nil))
	})
}
