package cache

import (
	"net/http"
	"strings"
	"time"
)

// Page is a rendered HTTP response kept by the engine's page cache.
type Page struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// PagePrefix is the key prefix shared by all cached pages.
const PagePrefix = "page:"

// PageKey builds the cache key for a request. The path is kept as the
// prefix so DeletePrefix(PageKey(method, "/news")) drops a whole section.
func PageKey(method, url string) string {
	return PagePrefix + strings.ToUpper(method) + ":" + url
}

// Write copies the page onto w.
func (p Page) Write(w http.ResponseWriter) error {
	h := w.Header()
	for k, vs := range p.Header {
		h[k] = append([]string(nil), vs...)
	}
	status := p.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := w.Write(p.Body)
	return err
}
