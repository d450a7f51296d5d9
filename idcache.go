package recon

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// IDCache is an ImportedIDs shared by the imports of a long running process.
// It is safe for concurrent use, Claim being an atomic check and insert.
//
// Reset it between independent import sessions.
type IDCache struct {
	c *cache.Cache
}

// NewIDCache returns an empty cache. Ids are forgotten after expiry, or
// never when expiry is not positive.
func NewIDCache(expiry time.Duration) *IDCache {
	if expiry <= 0 {
		return &IDCache{c: cache.New(cache.NoExpiration, 0)}
	}
	return &IDCache{c: cache.New(expiry, expiry)}
}

func (c *IDCache) Claim(id string) bool {
	return c.c.Add(id, struct{}{}, cache.DefaultExpiration) == nil
}

// Reset forgets every id.
func (c *IDCache) Reset() { c.c.Flush() }

// Len returns the number of ids known, expired ones included until cleanup.
func (c *IDCache) Len() int { return c.c.ItemCount() }
