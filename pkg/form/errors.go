package form

import "errors"

var (
	ErrUnknownField      = errors.New("form: unknown field")
	ErrNoSteps           = errors.New("form: no steps")
	ErrUnknownConstraint = errors.New("form: unknown constraint")
	ErrInvalidDefinition = errors.New("form: invalid definition")
	ErrInvalidStep       = errors.New("form: invalid step")
	ErrStepLocked        = errors.New("form: step not reached yet")
)
