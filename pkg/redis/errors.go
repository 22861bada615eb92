package redis

import "errors"

// Errors returned while opening and checking a client. Underlying go-redis
// errors are joined to them.
var (
	ErrEmptyConnectionURL = errors.New("redis: redis.url is empty")
	ErrFailedToParseURL   = errors.New("redis: failed to parse redis.url")
	ErrConnectionFailed   = errors.New("redis: failed to establish connection")
	ErrHealthcheckFailed  = errors.New("redis: healthcheck failed")
)
