package redirect

import (
	"sync"
	"time"
)

// CachedTarget holds the subset of a dynamic record the redirect path needs.
type CachedTarget struct {
	QRCodeID       string
	DestinationURL string
	CachedAt       time.Time
}

// TargetCache memoizes token resolutions for a short TTL so hot short links
// skip the datastore.
type TargetCache struct {
	store sync.Map // map[token]*CachedTarget
	ttl   time.Duration
}

func NewTargetCache(ttl time.Duration) *TargetCache {
	return &TargetCache{ttl: ttl}
}

func (c *TargetCache) Get(token string) (*CachedTarget, bool) {
	val, ok := c.store.Load(token)
	if !ok {
		return nil, false
	}

	target := val.(*CachedTarget)
	if time.Since(target.CachedAt) > c.ttl {
		c.store.Delete(token)
		return nil, false
	}

	return target, true
}

func (c *TargetCache) Set(token, qrID, destinationURL string) {
	c.store.Store(token, &CachedTarget{
		QRCodeID:       qrID,
		DestinationURL: destinationURL,
		CachedAt:       time.Now(),
	})
}

// Invalidate drops a token, used when a dynamic record's destination
// changes or the record is deleted.
func (c *TargetCache) Invalidate(token string) {
	c.store.Delete(token)
}
