// Package provider holds the built-in pre-processor and data providers. They
// read the run's type descriptors from the cache under typedesc.CacheKey.
package provider

import (
	"github.com/cockroachdb/errors"
	"github.com/okra-platform/genpipe/internal/runcache"
	"github.com/okra-platform/genpipe/internal/typedesc"
)

// ErrNoDescriptors is returned when the run cache holds no descriptor list
var ErrNoDescriptors = errors.New("no type descriptors in run cache")

// cacheReader is embedded by plugins that read descriptors from the run cache
type cacheReader struct {
	cache *runcache.Cache
}

func (c *cacheReader) SetCache(cache *runcache.Cache) {
	c.cache = cache
}

func (c *cacheReader) descriptors() ([]*typedesc.TypeDescriptor, error) {
	if c.cache == nil {
		return nil, errors.WithHint(ErrNoDescriptors, "the plugin was run without a cache")
	}
	ds, ok := runcache.TryGetAs[[]*typedesc.TypeDescriptor](c.cache, typedesc.CacheKey)
	if !ok {
		return nil, errors.WithHintf(ErrNoDescriptors, "expected []*typedesc.TypeDescriptor under %q", typedesc.CacheKey)
	}
	return ds, nil
}
