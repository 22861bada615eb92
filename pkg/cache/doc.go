// Package cache provides generic TTL caches used for rendered pages and
// computed fragments.
//
// Two backends implement Cache: Memory, an in-process LRU with a janitor
// goroutine, and Redis, which stores values encoded by a Marshaler under an
// optional key prefix. GetOrSet collapses concurrent misses with
// singleflight.
//
// Page and PageKey describe entries of the engine's page cache. Keys start
// with the request path, so a module can invalidate a section:
//
//	_ = pages.DeletePrefix(ctx, cache.PageKey(http.MethodGet, "/news"))
package cache
