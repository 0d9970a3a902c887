// Package config is a typed key/value store for runtime settings.
//
// Values are one of string, int, float64 or bool. Reads never fail: a missing
// key, or a key holding a value of another type, yields the caller's default.
//
//	s := config.New()
//	if err := s.LoadFile("rtcore.conf"); err != nil {
//	    log.Fatal(err)
//	}
//	workers := s.GetInt("pool.workers", 4)
//
// A Store is safe for concurrent use. There is no package-level instance;
// create one and pass it to whatever needs it.
package config

import (
	"slices"
	"sync"

	"github.com/samber/lo"
)

// Option configures a Store.
type Option func(*Store)

// OnReload registers fn to be called after every reload triggered by Watch,
// with the load error or nil.
func OnReload(fn func(path string, err error)) Option {
	return func(s *Store) {
		s.onReload = fn
	}
}

// Store holds configuration entries.
type Store struct {
	mu       sync.RWMutex
	values   map[string]any
	onReload func(path string, err error)
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{values: make(map[string]any)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores v under key, replacing any previous value. Sized integer and
// float types are widened to int and float64; any other type is kept as is
// and only readable through Get with that exact type.
func (s *Store) Set(key string, v any) {
	s.mu.Lock()
	s.values[key] = normalize(v)
	s.mu.Unlock()
}

// Get returns the value stored under key if it has type T, def otherwise.
func Get[T any](s *Store, key string, def T) T {
	s.mu.RLock()
	raw, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return def
	}

	v, ok := raw.(T)
	if !ok {
		return def
	}
	return v
}

// GetInt returns the value under key if it is an int, def otherwise.
func (s *Store) GetInt(key string, def int) int {
	return Get(s, key, def)
}

// GetFloat returns the value under key if it is a float64, def otherwise.
func (s *Store) GetFloat(key string, def float64) float64 {
	return Get(s, key, def)
}

// GetBool returns the value under key if it is a bool, def otherwise.
func (s *Store) GetBool(key string, def bool) bool {
	return Get(s, key, def)
}

// GetString returns the value under key if it is a string, def otherwise.
func (s *Store) GetString(key string, def string) string {
	return Get(s, key, def)
}

// Has reports whether key is present, whatever its type.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}

// Remove deletes key. Removing a missing key is a no-op.
func (s *Store) Remove(key string) {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
}

// Keys returns every key in lexical order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	keys := lo.Keys(s.values)
	s.mu.RUnlock()

	slices.Sort(keys)
	return keys
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

func (s *Store) merge(entries map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.values[k] = v
	}
}

func (s *Store) snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func normalize(v any) any {
	switch n := v.(type) {
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}
