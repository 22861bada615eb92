package redis

import (
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the connection settings read from the site's "redis" section.
// Zero fields fall back to the defaults below.
type Config struct {
	URL           string        `json:"url"`
	PoolSize      int           `json:"pool-size"`
	MinIdleConns  int           `json:"min-idle-conns"`
	MaxIdleTime   time.Duration `json:"max-idle-time"`
	MaxLifetime   time.Duration `json:"max-lifetime"`
	DialTimeout   time.Duration `json:"dial-timeout"`
	ReadTimeout   time.Duration `json:"read-timeout"`
	WriteTimeout  time.Duration `json:"write-timeout"`
	RetryAttempts int           `json:"retry-attempts"`
	RetryInterval time.Duration `json:"retry-interval"`
}

func (c Config) withDefaults() Config {
	def := func(v *time.Duration, d time.Duration) {
		if *v == 0 {
			*v = d
		}
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
	if c.MinIdleConns == 0 {
		c.MinIdleConns = 2
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	def(&c.MaxIdleTime, 10*time.Minute)
	def(&c.MaxLifetime, 30*time.Minute)
	def(&c.DialTimeout, 5*time.Second)
	def(&c.ReadTimeout, 3*time.Second)
	def(&c.WriteTimeout, 3*time.Second)
	def(&c.RetryInterval, 2*time.Second)
	return c
}

// Options converts the config into go-redis client options without
// connecting. Only redis:// and rediss:// URLs are accepted.
func (c Config) Options() (*redis.Options, error) {
	if c.URL == "" {
		return nil, ErrEmptyConnectionURL
	}
	if !strings.HasPrefix(c.URL, "redis://") && !strings.HasPrefix(c.URL, "rediss://") {
		return nil, ErrFailedToParseURL
	}

	opts, err := redis.ParseURL(c.URL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseURL, err)
	}

	c = c.withDefaults()
	opts.PoolSize = c.PoolSize
	opts.MinIdleConns = c.MinIdleConns
	opts.ConnMaxIdleTime = c.MaxIdleTime
	opts.ConnMaxLifetime = c.MaxLifetime
	opts.DialTimeout = c.DialTimeout
	opts.ReadTimeout = c.ReadTimeout
	opts.WriteTimeout = c.WriteTimeout
	return opts, nil
}
