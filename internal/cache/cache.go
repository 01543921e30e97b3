package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/OneOfOne/xxhash"

	"github.com/ppiankov/veracity/internal/model"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key builds a namespaced cache key from its parts. Parts are separated
// by a NUL byte before hashing so ("ab", "c") and ("a", "bc") differ.
func Key(namespace string, parts ...string) string {
	h := xxhash.NewS64(0)
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("veracity-v1-%s-%016x", namespace, h.Sum64())
}

// GetJSON decodes a cached JSON value into v
func GetJSON(c Cache, key string, v any) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON encodes v as JSON and caches it
func SetJSON(c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.Set(key, data, ttl)
}

// New builds the cache described by the configuration: memory backed by
// disk when a directory is set, memory only otherwise, or a no-op cache
// when caching is disabled.
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return Noop{}
	}
	if cfg.Dir == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}

// Noop never stores anything
type Noop struct{}

func (Noop) Get(string) ([]byte, bool) {
	return nil, false
}

func (Noop) Set(string, []byte, time.Duration) error {
	return nil
}

func (Noop) Delete(string) error {
	return nil
}

func (Noop) Clear() error {
	return nil
}
