package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultSpotTTL is how long a spot price stays fresh.
const DefaultSpotTTL = 15 * time.Second

// MinuteBucket rounds a millisecond instant down to its minute bucket.
// Historical lookups are keyed by (mint, bucket) so repeated legs of the
// same asset within a minute share one oracle call.
func MinuteBucket(tsMs int64) int64 {
	return tsMs / 60_000 * 60_000
}

// Cache is an explicit in-memory price cache with caller-controlled
// lifetime (per run or per batch). Spot entries expire after a TTL;
// historical entries are immutable and kept for the cache's lifetime.
// Safe for concurrent use.
type Cache struct {
	mu         sync.Mutex
	spot       map[string]spotEntry
	historical map[string]float64 // "mint@bucketMs" -> price
	spotTTL    time.Duration
	now        func() time.Time
}

type spotEntry struct {
	price   float64
	fetched time.Time
}

// NewCache creates a cache with the default spot TTL.
func NewCache() *Cache {
	return &Cache{
		spot:       make(map[string]spotEntry),
		historical: make(map[string]float64),
		spotTTL:    DefaultSpotTTL,
		now:        time.Now,
	}
}

// Spot returns a fresh cached spot price.
func (c *Cache) Spot(mint string) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.spot[mint]
	if !ok || c.now().Sub(e.fetched) >= c.spotTTL {
		return 0, false
	}
	return e.price, true
}

// SetSpot stores a spot price.
func (c *Cache) SetSpot(mint string, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spot[mint] = spotEntry{price: price, fetched: c.now()}
}

func historicalKey(mint string, bucketMs int64) string {
	return fmt.Sprintf("%s@%d", mint, bucketMs)
}

// Historical returns a cached historical price for the minute bucket.
func (c *Cache) Historical(mint string, bucketMs int64) (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	price, ok := c.historical[historicalKey(mint, bucketMs)]
	return price, ok
}

// SetHistorical stores a historical price for the minute bucket.
// Zero results are cached too: a mint the oracle cannot price should not
// be re-queried for the same bucket.
func (c *Cache) SetHistorical(mint string, bucketMs int64, price float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.historical[historicalKey(mint, bucketMs)] = price
}

// CachedOracle decorates an Oracle with a Cache.
type CachedOracle struct {
	oracle Oracle
	cache  *Cache
}

// NewCachedOracle wraps the oracle with the cache.
func NewCachedOracle(oracle Oracle, cache *Cache) *CachedOracle {
	return &CachedOracle{oracle: oracle, cache: cache}
}

// Spot implements Oracle.
func (o *CachedOracle) Spot(ctx context.Context, mint string) float64 {
	if price, ok := o.cache.Spot(mint); ok {
		return price
	}
	price := o.oracle.Spot(ctx, mint)
	o.cache.SetSpot(mint, price)
	return price
}

// Historical implements Oracle.
func (o *CachedOracle) Historical(ctx context.Context, mint string, tsMs int64) float64 {
	bucket := MinuteBucket(tsMs)
	if price, ok := o.cache.Historical(mint, bucket); ok {
		return price
	}
	price := o.oracle.Historical(ctx, mint, bucket)
	o.cache.SetHistorical(mint, bucket, price)
	return price
}

// Ensure CachedOracle implements Oracle.
var _ Oracle = (*CachedOracle)(nil)
