// Package conn opens the primary store and the optional cache for one run
// and releases them afterwards.
package conn

import (
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/cache"
	"github.com/grand-thief-cash/chaos/app/projects/dbkeeper/internal/components/store"
)

// Config is fixed for the lifetime of a run.
type Config struct {
	Primary store.Config
	Cache   cache.Config
}

// Cache is either CachePresent or CacheAbsent.
type Cache interface {
	cache()
}

// CachePresent carries a connected client.
type CachePresent struct {
	Client *cache.Client
}

// CacheAbsent records why the run has no cache.
type CacheAbsent struct {
	Reason error
}

func (CachePresent) cache() {}
func (CacheAbsent) cache()  {}

// Handle is what tasks and the report builder see of the connections.
type Handle struct {
	Store *store.Store
	Cache Cache
}

// CacheClient returns the client when the cache is present.
func (h Handle) CacheClient() (*cache.Client, bool) {
	if p, ok := h.Cache.(CachePresent); ok && p.Client != nil {
		return p.Client, true
	}
	return nil, false
}
