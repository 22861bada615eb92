package decorator

import "errors"

var (
	// ErrUnknownDecorator indicates a spec names an unregistered decorator.
	ErrUnknownDecorator = errors.New("unknown decorator")

	// ErrInvalidArgs indicates a decorator received unusable arguments.
	ErrInvalidArgs = errors.New("invalid decorator arguments")

	// ErrDecorateFailed wraps errors returned by a decorator.
	ErrDecorateFailed = errors.New("decorator failed")
)
