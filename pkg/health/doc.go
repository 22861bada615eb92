// Package health serves liveness and readiness endpoints.
//
// The engine registers a check per configured dependency: the database and
// job queue as required checks and the Redis page cache as optional:
//
//	checks := health.New(health.WithTimeout(2 * time.Second))
//	checks.Add("db", db.Healthcheck(pool))
//	checks.AddOptional("cache", redis.Healthcheck(client))
//	r.Get("/health/ready", health.ReadinessHandler(checks))
//
// Responses are plain text by default and JSON when the client sends
// Accept: application/json or ?format=json.
package health
