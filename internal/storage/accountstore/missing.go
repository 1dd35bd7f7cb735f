package accountstore

import (
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// missingCache tracks addresses known to be absent from the database so
// repeated lookups of unfunded accounts skip the backend. Entries expire
// after a TTL and are dropped as soon as the address is written.
type missingCache struct {
	entries *expirable.LRU[solana.PublicKey, struct{}]

	hits   atomic.Int64
	misses atomic.Int64
}

// MissingStats reports negative cache activity
type MissingStats struct {
	Entries int
	Hits    int64
	Misses  int64
}

func newMissingCache(size int, ttl time.Duration) *missingCache {
	return &missingCache{
		entries: expirable.NewLRU[solana.PublicKey, struct{}](size, nil, ttl),
	}
}

// markMissing records that key is not stored
func (c *missingCache) markMissing(key solana.PublicKey) {
	c.entries.Add(key, struct{}{})
}

// isMissing reports whether key is known to be absent
func (c *missingCache) isMissing(key solana.PublicKey) bool {
	if c.entries.Contains(key) {
		c.hits.Add(1)
		return true
	}
	c.misses.Add(1)
	return false
}

// remove forgets key, called whenever key is written
func (c *missingCache) remove(key solana.PublicKey) {
	c.entries.Remove(key)
}

func (c *missingCache) stats() MissingStats {
	return MissingStats{
		Entries: c.entries.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}
