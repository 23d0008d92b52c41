package redirect

import (
	"errors"
	"time"

	"qrgen/internal/engine/qrcodes"
)

var ErrNotFound = errors.New("short link not found")

// Resolver maps a short-link token to its redirect target. Only dynamic
// records resolve; static records and unknown tokens are indistinguishable
// to the caller.
type Resolver struct {
	repo  *qrcodes.Repository
	cache *TargetCache
}

func NewResolver(repo *qrcodes.Repository, cacheTTL time.Duration) *Resolver {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &Resolver{
		repo:  repo,
		cache: NewTargetCache(cacheTTL),
	}
}

func (r *Resolver) Resolve(token string) (*CachedTarget, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	if target, ok := r.cache.Get(token); ok {
		return target, nil
	}

	qr, err := r.repo.GetDynamicByShortLink(token)
	if err != nil {
		if errors.Is(err, qrcodes.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	r.cache.Set(token, qr.ID, qr.DestinationURL)
	return &CachedTarget{QRCodeID: qr.ID, DestinationURL: qr.DestinationURL}, nil
}

// Invalidate removes a token from the cache after destination updates or
// record deletion.
func (r *Resolver) Invalidate(token string) {
	r.cache.Invalidate(token)
}
