package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig  = errors.New("storage: invalid configuration")
	ErrUnknownDriver  = errors.New("storage: unknown driver")
	ErrEmptyFile      = errors.New("storage: file is empty")
	ErrInvalidKey     = errors.New("storage: invalid key")
	ErrNotFound       = errors.New("storage: file not found")
	ErrAccessDenied   = errors.New("storage: access denied")
	ErrUploadFailed   = errors.New("storage: upload failed")
	ErrDeleteFailed   = errors.New("storage: delete failed")
	ErrPresignFailed  = errors.New("storage: presign failed")
	ErrFileTooLarge   = errors.New("storage: file exceeds size limit")
	ErrFileNotAllowed = errors.New("storage: file type not allowed")
)

// wrapS3Error maps S3 failures onto sentinel errors. The AWS error is kept
// as text only; callers match with errors.Is on the sentinels.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}
	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
