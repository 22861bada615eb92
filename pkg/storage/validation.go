package storage

import "fmt"

// Rule validates a file before it is stored.
type Rule func(size int64, mimeType string) error

// FileError describes a rejected file. Code is stable and suitable for
// mapping onto form error messages.
type FileError struct {
	err     error
	Code    string
	Message string
}

func (e *FileError) Error() string { return e.Message }
func (e *FileError) Unwrap() error { return e.err }

const (
	CodeEmpty      = "empty_file"
	CodeTooLarge   = "file_too_large"
	CodeNotAllowed = "file_not_allowed"
)

// MaxSize rejects files larger than n bytes.
func MaxSize(n int64) Rule {
	return func(size int64, _ string) error {
		if size > n {
			return &FileError{
				err:     ErrFileTooLarge,
				Code:    CodeTooLarge,
				Message: fmt.Sprintf("file size %d exceeds limit of %d bytes", size, n),
			}
		}
		return nil
	}
}

// NotEmpty rejects zero-length files.
func NotEmpty() Rule {
	return func(size int64, _ string) error {
		if size == 0 {
			return &FileError{err: ErrEmptyFile, Code: CodeEmpty, Message: "file is empty"}
		}
		return nil
	}
}

// AllowedTypes accepts exact types and "image/*" style wildcards.
func AllowedTypes(patterns ...string) Rule {
	return func(_ int64, mimeType string) error {
		if !matchesMIME(mimeType, patterns) {
			return &FileError{
				err:     ErrFileNotAllowed,
				Code:    CodeNotAllowed,
				Message: fmt.Sprintf("file type %q is not allowed", normalizeMIME(mimeType)),
			}
		}
		return nil
	}
}

// ImageOnly accepts any image type.
func ImageOnly() Rule { return AllowedTypes("image/*") }

// DocumentsOnly accepts common office and text documents.
func DocumentsOnly() Rule { return AllowedTypes(Documents...) }

// Validate runs rules in order and returns the first failure.
func Validate(size int64, mimeType string, rules ...Rule) error {
	for _, rule := range rules {
		if err := rule(size, mimeType); err != nil {
			return err
		}
	}
	return nil
}
