package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage keeps uploaded files.
type Storage interface {
	// Put stores r. size is the content length in bytes.
	Put(ctx context.Context, r io.Reader, size int64, opts ...Option) (*FileInfo, error)
	// Get opens a stored file; the caller closes it.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// URL returns an address for the file. Private S3 files get a signed URL.
	URL(ctx context.Context, key string, opts ...URLOption) (string, error)
}

// FileInfo describes a stored file.
type FileInfo struct {
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	ACL         ACL    `json:"acl"`
	Size        int64  `json:"size"`
}

// ACL is the access level of a stored file.
type ACL string

const (
	ACLPrivate    ACL = "private"
	ACLPublicRead ACL = "public-read"
)

// Drivers accepted by Open.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config is the site's "storage" section.
type Config struct {
	Driver string      `json:"driver"`
	Local  LocalConfig `json:"local"`
	S3     S3Config    `json:"s3"`
}

// Open creates the storage selected by cfg.Driver; empty means local.
func Open(cfg Config) (Storage, error) {
	switch cfg.Driver {
	case "", DriverLocal:
		return NewLocal(cfg.Local)
	case DriverS3:
		return NewS3(cfg.S3)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}

// Option configures Put.
type Option func(*putOptions)

type putOptions struct {
	key         string
	prefix      string
	filename    string
	contentType string
	acl         ACL
	rules       []Rule
}

func newPutOptions(acl ACL, opts []Option) *putOptions {
	o := &putOptions{acl: acl}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithKey stores the file under an explicit key.
func WithKey(key string) Option {
	return func(o *putOptions) { o.key = key }
}

// WithPrefix puts generated keys under prefix, e.g. "forms/contact".
func WithPrefix(prefix string) Option {
	return func(o *putOptions) { o.prefix = prefix }
}

// WithFilename supplies the original name; its extension is used when the
// content type has no known extension.
func WithFilename(name string) Option {
	return func(o *putOptions) { o.filename = name }
}

// WithContentType overrides content sniffing.
func WithContentType(ct string) Option {
	return func(o *putOptions) { o.contentType = ct }
}

// WithACL overrides the default ACL.
func WithACL(acl ACL) Option {
	return func(o *putOptions) { o.acl = acl }
}

// WithValidation checks the file before it is stored.
func WithValidation(rules ...Rule) Option {
	return func(o *putOptions) { o.rules = append(o.rules, rules...) }
}

// URLOption configures URL.
type URLOption func(*urlOptions)

type urlOptions struct {
	download string
	expiry   time.Duration
	public   bool
}

// DefaultURLExpiry is the lifetime of signed URLs.
const DefaultURLExpiry = 15 * time.Minute

// WithExpiry sets the lifetime of a signed URL.
func WithExpiry(d time.Duration) URLOption {
	return func(o *urlOptions) { o.expiry = d }
}

// WithDownload asks the browser to save the file under name.
func WithDownload(name string) URLOption {
	return func(o *urlOptions) { o.download = name }
}

// WithPublic returns the unsigned URL even for private files.
func WithPublic() URLOption {
	return func(o *urlOptions) { o.public = true }
}

var unsafeSegment = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

func cleanSegment(s string) string {
	s = strings.Trim(s, " /\\")
	s = strings.ReplaceAll(s, "..", "")
	return url.PathEscape(unsafeSegment.ReplaceAllString(s, "_"))
}

// newKey builds "{prefix}/{uuid}{ext}". Prefix segments are sanitised.
func newKey(prefix, contentType, filename string) string {
	ext := ExtFromMIME(contentType)
	if ext == "" {
		ext = strings.ToLower(path.Ext(filename))
		if cleanSegment(ext) != ext || len(ext) > 10 {
			ext = ""
		}
	}
	if ext == "" {
		ext = ".bin"
	}

	var parts []string
	for seg := range strings.SplitSeq(prefix, "/") {
		if seg = cleanSegment(seg); seg != "" {
			parts = append(parts, seg)
		}
	}
	return strings.Join(append(parts, uuid.NewString()+ext), "/")
}

// validKey rejects keys that could escape the storage root.
func validKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for seg := range strings.SplitSeq(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
