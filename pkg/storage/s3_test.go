package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"
)

func TestNewS3(t *testing.T) {
	t.Parallel()

	s, err := NewS3(S3Config{Bucket: "site", AccessKey: "ak", SecretKey: "sk"})
	require.NoError(t, err)
	require.Equal(t, DefaultRegion, s.cfg.Region)
	require.Equal(t, ACLPrivate, s.cfg.DefaultACL)

	_, err = NewS3(S3Config{Bucket: "site"})
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestS3_publicURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  S3Config
		want string
	}{
		{"aws", S3Config{Bucket: "b", Region: "eu-west-1"}, "https://b.s3.eu-west-1.amazonaws.com/k/f.png"},
		{"cdn", S3Config{Bucket: "b", PublicURL: "https://cdn.example.com/"}, "https://cdn.example.com/k/f.png"},
		{"minio", S3Config{Bucket: "b", Endpoint: "http://localhost:9000/", PathStyle: true}, "http://localhost:9000/b/k/f.png"},
		{"virtual host", S3Config{Bucket: "b", Endpoint: "https://b.storage.example.com"}, "https://b.storage.example.com/k/f.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := &S3{cfg: tt.cfg}
			require.Equal(t, tt.want, s.publicURL("k/f.png"))
		})
	}
}

func TestS3_URL(t *testing.T) {
	t.Parallel()

	s, err := NewS3(S3Config{Bucket: "site", AccessKey: "ak", SecretKey: "sk", Region: "eu-central-1"})
	require.NoError(t, err)

	signed, err := s.URL(context.Background(), "forms/cv.pdf", WithDownload("cv.pdf"))
	require.NoError(t, err)
	require.Contains(t, signed, "X-Amz-Signature")
	require.Contains(t, signed, "response-content-disposition")

	public, err := s.URL(context.Background(), "forms/cv.pdf", WithPublic())
	require.NoError(t, err)
	require.False(t, strings.Contains(public, "X-Amz-Signature"))
}

func TestWrapS3Error(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, wrapS3Error(&smithy.GenericAPIError{Code: "NoSuchKey"}, ErrUploadFailed), ErrNotFound)
	require.ErrorIs(t, wrapS3Error(&smithy.GenericAPIError{Code: "AccessDenied"}, ErrUploadFailed), ErrAccessDenied)
	require.ErrorIs(t, wrapS3Error(errors.New("network"), ErrUploadFailed), ErrUploadFailed)
}

func TestNewKey(t *testing.T) {
	t.Parallel()

	k := newKey("forms//contact form", "image/png", "x.png")
	require.True(t, strings.HasPrefix(k, "forms/contact_form/"), k)
	require.True(t, strings.HasSuffix(k, ".png"))

	require.True(t, strings.HasSuffix(newKey("", MIMEOctetStream, "archive.tar.gz"), ".gz"))
	require.True(t, strings.HasSuffix(newKey("", MIMEOctetStream, "evil.p/hp"), ".bin"))
	require.True(t, validKey(newKey("a/b", "text/plain", "")))
}
