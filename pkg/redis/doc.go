// Package redis opens go-redis clients for the page cache.
//
// Settings come from the site's "redis" configuration section:
//
//	var cfg redis.Config
//	_ = site.Decode("redis", &cfg)
//	client, err := redis.OpenConfig(ctx, cfg)
//
// Healthcheck plugs into the engine's readiness endpoint and Shutdown into
// its shutdown hooks.
package redis
