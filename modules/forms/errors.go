package forms

import "errors"

var (
	ErrSubmissionNotFound = errors.New("forms: submission not found")
	ErrDuplicateForm      = errors.New("forms: form defined twice")
	ErrUnknownForm        = errors.New("forms: unknown form")
)
