// Package runcache provides the key/value store scoped to one pipeline run.
//
// Stages use it as a side channel for ambient data (discovered type
// descriptors, intermediate artifacts) instead of threading parameters through
// every plugin. A value stored under a key is "present" even when it is the
// zero value of its type.
package runcache

import (
	"sort"
	"sync"
)

// Cache is a mutex-guarded key/value store
type Cache struct {
	mu     sync.Mutex
	values map[string]any
}

// New creates an empty cache
func New() *Cache {
	return &Cache{
		values: make(map[string]any),
	}
}

// Set stores v under key, overwriting any existing value
func (c *Cache) Set(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = v
}

// Get returns the value stored under key, or nil when absent
func (c *Cache) Get(key string) any {
	v, _ := c.TryGet(key)
	return v
}

// TryGet returns the value stored under key and whether the key is present
func (c *Cache) TryGet(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether key is present
func (c *Cache) Has(key string) bool {
	_, ok := c.TryGet(key)
	return ok
}

// Remove deletes key and reports whether it was present
func (c *Cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	delete(c.values, key)
	return ok
}

// Keys returns the present keys in sorted order
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of present keys
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.values)
}

// Clear removes every key
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]any)
}

// TryGetAs returns the value under key converted to T. It reports false when
// the key is absent or holds a value of another type.
func TryGetAs[T any](c *Cache, key string) (T, bool) {
	var zero T
	v, ok := c.TryGet(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// GetAs is TryGetAs without the presence flag
func GetAs[T any](c *Cache, key string) T {
	v, _ := TryGetAs[T](c, key)
	return v
}
