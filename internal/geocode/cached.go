package geocode

import (
	"context"
	"fmt"
	"time"

	"EmberWatch/pkg/cache"
)

// CachedGeocoder decorates a Geocoder with read-through caching so repeat
// submissions from the same spot skip the provider round trip.
type CachedGeocoder struct {
	inner Geocoder
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedGeocoder wraps inner with a cache.
func NewCachedGeocoder(inner Geocoder, c cache.Cache, ttl time.Duration) *CachedGeocoder {
	return &CachedGeocoder{inner: inner, cache: c, ttl: ttl}
}

// ReverseGeocode serves from cache when possible. Only successful provider
// results are cached; failures stay soft and uncached.
func (g *CachedGeocoder) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	key := cacheKey(lat, lng)

	if value, ok := g.cache.Get(ctx, key); ok {
		if address, ok := value.(string); ok && address != "" {
			return address, nil
		}
	}

	address, err := g.inner.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		return "", err
	}

	_ = g.cache.Set(ctx, key, address, g.ttl)
	return address, nil
}

// cacheKey rounds to ~11m of precision so nearby submissions share entries.
func cacheKey(lat, lng float64) string {
	return fmt.Sprintf("geocode:%.4f:%.4f", lat, lng)
}
