package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/spf13/cast"
)

// maxTokenDepth bounds {{ config:key }} indirection so cycles terminate.
const maxTokenDepth = 8

// state is shared between a container and every Sub view of it.
type state struct {
	root       map[string]any
	env        string
	processors []Processor
	mu         sync.RWMutex
}

// Container is a thread-safe configuration tree with dot-key access and
// token processing. The zero value is not usable; create one with New.
type Container struct {
	s      *state
	prefix string
}

// Option configures a Container.
type Option func(*state)

// WithEnvironment sets the environment name used for overlay files.
func WithEnvironment(env string) Option {
	return func(s *state) {
		s.env = env
	}
}

// WithProcessor appends processors to the token chain.
func WithProcessor(p ...Processor) Option {
	return func(s *state) {
		s.processors = append(s.processors, p...)
	}
}

// WithValues seeds the container with an initial tree.
func WithValues(values map[string]any) Option {
	return func(s *state) {
		s.root = Merge(s.root, normalize(values).(map[string]any), true)
	}
}

// New creates an empty container. The env processor is always registered
// first; options may append more.
func New(opts ...Option) *Container {
	s := &state{
		root:       make(map[string]any),
		processors: []Processor{EnvProcessor()},
	}
	for _, opt := range opts {
		opt(s)
	}
	return &Container{s: s}
}

// Environment returns the configured environment name.
func (c *Container) Environment() string {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	return c.s.env
}

// AddProcessor appends a processor to the shared token chain.
func (c *Container) AddProcessor(p Processor) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.processors = append(c.s.processors, p)
}

// Load reads name (and its environment overlay) from fsys and merges it over
// the current values.
func (c *Container) Load(fsys fs.FS, name string) error {
	return c.LoadFile(fsys, name, true)
}

// LoadFile reads name (and its environment overlay) from fsys and merges it
// with the given directionality.
func (c *Container) LoadFile(fsys fs.FS, name string, overwrite bool) error {
	tree, err := LoadTree(fsys, name, c.Environment())
	if err != nil {
		return err
	}
	c.Merge(tree, overwrite)
	return nil
}

// Merge deep-merges values into the container at its prefix.
func (c *Container) Merge(values map[string]any, overwrite bool) {
	values, _ = normalize(values).(map[string]any)

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if c.prefix == "" {
		c.s.root = Merge(c.s.root, values, overwrite)
		return
	}

	current, _ := lookup(c.s.root, c.prefix)
	currentMap, _ := current.(map[string]any)
	root := copyMap(c.s.root)
	assign(root, c.prefix, Merge(currentMap, values, overwrite))
	c.s.root = root
}

// Replace swaps the container contents at its prefix for values.
func (c *Container) Replace(values map[string]any) {
	values, _ = normalize(values).(map[string]any)
	if values == nil {
		values = make(map[string]any)
	}

	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if c.prefix == "" {
		c.s.root = copyMap(values)
		return
	}
	root := copyMap(c.s.root)
	assign(root, c.prefix, copyMap(values))
	c.s.root = root
}

// Get returns the processed value at key, or def[0] (nil without a default)
// when the key is missing. The result is a copy.
func (c *Container) Get(key string, def ...any) any {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	v, ok := lookup(c.s.root, joinKey(c.prefix, key))
	if !ok {
		if len(def) > 0 {
			return def[0]
		}
		return nil
	}
	return c.processValue(copyValue(v), 0)
}

// Raw returns the unprocessed value at key.
func (c *Container) Raw(key string) (any, bool) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	v, ok := lookup(c.s.root, joinKey(c.prefix, key))
	if !ok {
		return nil, false
	}
	return copyValue(v), true
}

// Has reports whether key exists.
func (c *Container) Has(key string) bool {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	_, ok := lookup(c.s.root, joinKey(c.prefix, key))
	return ok
}

// Set stores value at key, creating intermediate maps.
func (c *Container) Set(key string, value any) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	root := copyMap(c.s.root)
	assign(root, joinKey(c.prefix, key), normalize(value))
	c.s.root = root
}

// Delete removes key. It reports whether the key existed.
func (c *Container) Delete(key string) bool {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	root := copyMap(c.s.root)
	if !remove(root, joinKey(c.prefix, key)) {
		return false
	}
	c.s.root = root
	return true
}

// All returns a processed deep copy of the tree at the container's prefix.
// A prefix that does not point at a map yields an empty map.
func (c *Container) All() map[string]any {
	m, ok := c.Get("").(map[string]any)
	if !ok {
		return make(map[string]any)
	}
	return m
}

// Sub returns a live view of the container rooted at key. Reads and writes go
// through to the parent; {{ config:key }} tokens still resolve absolute keys.
func (c *Container) Sub(key string) *Container {
	return &Container{s: c.s, prefix: joinKey(c.prefix, key)}
}

// Prefix returns the absolute key this container is rooted at.
func (c *Container) Prefix() string {
	return c.prefix
}

// String returns the value at key as a string, or def.
func (c *Container) String(key, def string) string {
	v := c.Get(key)
	if v == nil {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

// Int returns the value at key as an int, or def.
func (c *Container) Int(key string, def int) int {
	v := c.Get(key)
	if v == nil {
		return def
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return def
	}
	return i
}

// Bool returns the value at key as a bool, or def.
func (c *Container) Bool(key string, def bool) bool {
	v := c.Get(key)
	if v == nil {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// Float returns the value at key as a float64, or def.
func (c *Container) Float(key string, def float64) float64 {
	v := c.Get(key)
	if v == nil {
		return def
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return def
	}
	return f
}

// Duration returns the value at key as a time.Duration, or def.
// Strings use time.ParseDuration syntax; numbers are nanoseconds.
func (c *Container) Duration(key string, def time.Duration) time.Duration {
	v := c.Get(key)
	if v == nil {
		return def
	}
	d, err := cast.ToDurationE(v)
	if err != nil {
		return def
	}
	return d
}

// Strings returns the value at key as a string slice, or nil.
func (c *Container) Strings(key string) []string {
	v := c.Get(key)
	if v == nil {
		return nil
	}
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		return nil
	}
	return s
}

// Map returns the map at key, or nil.
func (c *Container) Map(key string) map[string]any {
	m, _ := c.Get(key).(map[string]any)
	return m
}

// Slice returns the slice at key, or nil.
func (c *Container) Slice(key string) []any {
	s, _ := c.Get(key).([]any)
	return s
}

// Decode converts the processed value at key into out through JSON.
func (c *Container) Decode(key string, out any) error {
	v := c.Get(key)
	if v == nil {
		return fmt.Errorf("%w: key %q not found", ErrDecode, joinKey(c.prefix, key))
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrDecode, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Join(ErrDecode, err)
	}
	return nil
}

// processValue applies token processing to every string leaf in v.
// Caller must hold at least the read lock.
func (c *Container) processValue(v any, depth int) any {
	switch t := v.(type) {
	case string:
		return c.processString(t, depth)
	case map[string]any:
		for k, item := range t {
			t[k] = c.processValue(item, depth)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = c.processValue(item, depth)
		}
		return t
	default:
		return v
	}
}

func (c *Container) processString(s string, depth int) string {
	s = replaceTokens(s, func(prefix, key string) (string, bool) {
		if prefix != "config" || depth >= maxTokenDepth {
			return "", false
		}
		ref, ok := lookup(c.s.root, key)
		if !ok {
			return "", false
		}
		if str, isString := ref.(string); isString {
			return c.processString(str, depth+1), true
		}
		str, err := cast.ToStringE(ref)
		if err != nil {
			return "", false
		}
		return str, true
	})

	for _, p := range c.s.processors {
		s = p(s)
	}
	return s
}
