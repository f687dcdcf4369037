package catalog

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/projecteru2/yafuse/internal/fuse"
)

// Registry shares parsed catalogs between devices, keyed by path and format.
// Entries expire after ttl so an edited catalog is eventually picked up.
type Registry struct {
	cache *cache.Cache
}

// NewRegistry .
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &Registry{cache: cache.New(ttl, 10*time.Minute)}
}

// Get returns the catalog of path, parsing it at most once per ttl.
func (r *Registry) Get(path, format string) (*fuse.Catalog, error) {
	if len(format) < 1 {
		format = FormatOf(path)
	}
	var key = format + ":" + path

	if lazy, ok := r.cache.Get(key); ok {
		return lazy.(*Lazy).Get() //nolint
	}

	var lazy = NewLazyFile(path, format)
	if err := r.cache.Add(key, lazy, cache.DefaultExpiration); err != nil {
		// lost the race, use the winner
		if winner, ok := r.cache.Get(key); ok {
			lazy = winner.(*Lazy) //nolint
		}
	}
	return lazy.Get()
}

// Forget drops path from the registry.
func (r *Registry) Forget(path, format string) {
	if len(format) < 1 {
		format = FormatOf(path)
	}
	r.cache.Delete(format + ":" + path)
}

// Len .
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}
