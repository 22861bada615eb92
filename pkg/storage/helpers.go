package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
)

// upload is the common part of Put: sniff the type, validate, pick a key.
type upload struct {
	body        io.Reader
	key         string
	contentType string
}

func prepare(r io.Reader, size int64, o *putOptions) (*upload, error) {
	u := &upload{body: r, contentType: o.contentType}
	if u.contentType == "" {
		u.contentType, u.body = sniff(r)
	}
	if err := Validate(size, u.contentType, o.rules...); err != nil {
		return nil, err
	}

	u.key = o.key
	if u.key == "" {
		u.key = newKey(o.prefix, u.contentType, o.filename)
	}
	if !validKey(u.key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, u.key)
	}
	return u, nil
}

// PutFile stores a multipart upload, keeping its filename for the extension.
func PutFile(ctx context.Context, s Storage, fh *multipart.FileHeader, opts ...Option) (*FileInfo, error) {
	if fh == nil || fh.Size == 0 {
		return nil, ErrEmptyFile
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("storage: open upload: %w", err)
	}
	defer f.Close()

	opts = append([]Option{WithFilename(fh.Filename)}, opts...)
	return s.Put(ctx, f, fh.Size, opts...)
}

// PutBytes stores data.
func PutBytes(ctx context.Context, s Storage, data []byte, opts ...Option) (*FileInfo, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	return s.Put(ctx, bytes.NewReader(data), int64(len(data)), opts...)
}
