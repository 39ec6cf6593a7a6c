// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package geocode

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/pirayeshfar/location-finder/internal/locate"
)

// coordPrecision is the precision used to quantize coordinates (0.01 degrees ≈ 1.1 km)
const coordPrecision = 1e-2

type cacheKey struct {
	Provider string
	LatQ     int32
	LonQ     int32
}

type cacheEntry struct {
	Address Address
	Expiry  time.Time
}

// CachedGeocoder caches the addresses of another Geocoder keyed by quantized coordinates. Addresses
// without any structured field are kept for ttlMiss instead of ttlHit. Errors are never cached.
type CachedGeocoder struct {
	coder   Geocoder
	clock   clockwork.Clock
	ttlHit  time.Duration
	ttlMiss time.Duration

	mu    sync.RWMutex
	cache map[cacheKey]cacheEntry
}

func NewCachedGeocoder(coder Geocoder, ttlHit, ttlMiss time.Duration) *CachedGeocoder {
	return NewCachedGeocoderWithClock(coder, ttlHit, ttlMiss, clockwork.NewRealClock())
}

func NewCachedGeocoderWithClock(coder Geocoder, ttlHit, ttlMiss time.Duration, clock clockwork.Clock) *CachedGeocoder {
	return &CachedGeocoder{
		coder:   coder,
		clock:   clock,
		ttlHit:  ttlHit,
		ttlMiss: ttlMiss,
		cache:   make(map[cacheKey]cacheEntry),
	}
}

func (c *CachedGeocoder) Name() string {
	return "geocoder cache using " + c.coder.Name()
}

func (c *CachedGeocoder) Reverse(ctx context.Context, coords locate.Coordinates) (Address, error) {
	lookup, err := c.Lookup(ctx, coords)
	return lookup.Address, err
}

// Lookup returns the cached address for the coordinates, or resolves and caches it.
func (c *CachedGeocoder) Lookup(ctx context.Context, coords locate.Coordinates) (Lookup, error) {
	key := newKey(c.coder.Name(), coords.Lat, coords.Lon)

	c.mu.RLock()
	entry, ok := c.cache[key]
	if ok && c.clock.Now().Before(entry.Expiry) {
		c.mu.RUnlock()
		return Lookup{Address: entry.Address, CacheHit: true}, nil
	}
	c.mu.RUnlock()

	addr, err := c.coder.Reverse(ctx, coords)
	if err != nil {
		return Lookup{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ttl := c.ttlHit
	if !addr.HasDetails() {
		ttl = c.ttlMiss
	}
	if ttl > 0 {
		c.cache[key] = cacheEntry{
			Address: addr,
			Expiry:  c.clock.Now().Add(ttl),
		}
	}
	c.evictExpired()

	return Lookup{Address: addr}, nil
}

// evictExpired removes expired entries. The caller must hold the write lock.
func (c *CachedGeocoder) evictExpired() {
	now := c.clock.Now()
	for key, entry := range c.cache {
		if !now.Before(entry.Expiry) {
			delete(c.cache, key)
		}
	}
}

func quantizeCoord(val float64) int32 {
	return int32(math.Round(val / coordPrecision))
}

func newKey(provider string, lat, lon float64) cacheKey {
	return cacheKey{
		Provider: provider,
		LatQ:     quantizeCoord(lat),
		LonQ:     quantizeCoord(lon),
	}
}
