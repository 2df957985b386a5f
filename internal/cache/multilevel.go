package cache

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// MultiLevelCache reads L1 first, then L2. L2 errors never reach callers of
// Get: they count as misses and feed the circuit breaker.
//
// A key whose L2 delete failed is tombstoned: Get skips L2 for it until a
// later L2 write or delete of that key succeeds, or the tombstone expires.
type MultiLevelCache struct {
	l1      *MemoryCache
	l2      *RedisCache
	breaker *CircuitBreaker
	metrics *CacheMetrics

	l1TTL time.Duration

	mu           sync.Mutex
	tombstones   map[string]time.Time
	tombstoneTTL time.Duration
}

type MultiLevelOption func(*MultiLevelCache)

// WithL1TTL caps how long an entry lives in process memory.
func WithL1TTL(ttl time.Duration) MultiLevelOption {
	return func(c *MultiLevelCache) { c.l1TTL = ttl }
}

// WithTombstoneTTL sets how long L2 is bypassed for a key whose L2 delete
// failed. It should outlive the longest TTL written to L2.
func WithTombstoneTTL(ttl time.Duration) MultiLevelOption {
	return func(c *MultiLevelCache) { c.tombstoneTTL = ttl }
}

func WithCircuitBreaker(cfg *CircuitBreakerConfig) MultiLevelOption {
	return func(c *MultiLevelCache) { c.breaker = NewCircuitBreaker(cfg) }
}

// NewMultiLevelCache builds the cache. redisCache may be nil, in which case
// only the in-memory tier is used.
func NewMultiLevelCache(redisCache *RedisCache, opts ...MultiLevelOption) *MultiLevelCache {
	c := &MultiLevelCache{
		l1:      NewMemoryCache(),
		l2:      redisCache,
		breaker: NewCircuitBreaker(nil),
		metrics: NewCacheMetrics(),
		l1TTL:   time.Minute,

		tombstones:   make(map[string]time.Time),
		tombstoneTTL: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.breaker.OnStateChange = func(from, to CircuitBreakerState) {
		log.Printf("Redis cache circuit breaker %s -> %s", from, to)
	}
	return c
}

func (c *MultiLevelCache) Metrics() *CacheMetrics {
	return c.metrics
}

func (c *MultiLevelCache) localTTL(ttl time.Duration) time.Duration {
	if c.l2 == nil || (ttl > 0 && ttl < c.l1TTL) {
		return ttl
	}
	return c.l1TTL
}

func (c *MultiLevelCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := c.l1.Get(ctx, key, dest); err == nil {
		c.metrics.RecordL1Hit()
		return nil
	}

	if c.l2 == nil || c.tombstoned(key) {
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	miss := false
	err := c.breaker.Execute(func() error {
		err := c.l2.Get(ctx, key, dest)
		if errors.Is(err, ErrCacheMiss) {
			miss = true
			return nil
		}
		return err
	})

	switch {
	case errors.Is(err, ErrCircuitBreakerOpen):
		c.metrics.RecordRejected()
		c.metrics.RecordMiss()
		return ErrCacheMiss
	case err != nil:
		c.metrics.RecordError()
		c.metrics.RecordMiss()
		log.Printf("Redis cache get %s failed: %v", key, err)
		return ErrCacheMiss
	case miss:
		c.metrics.RecordMiss()
		return ErrCacheMiss
	}

	c.metrics.RecordL2Hit()
	if err := c.l1.Set(ctx, key, dest, c.l1TTL); err != nil {
		log.Printf("Memory cache backfill %s failed: %v", key, err)
	}
	return nil
}

func (c *MultiLevelCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if err := c.l1.Set(ctx, key, value, c.localTTL(ttl)); err != nil {
		c.metrics.RecordError()
		return err
	}
	c.metrics.RecordSet()

	if c.l2 == nil {
		return nil
	}

	err := c.l2Call(func() error { return c.l2.Set(ctx, key, value, ttl) })
	if err == nil {
		c.clearTombstones(key)
	}
	return err
}

func (c *MultiLevelCache) Delete(ctx context.Context, keys ...string) error {
	c.l1.Delete(ctx, keys...)
	c.metrics.RecordDelete()

	if c.l2 == nil {
		return nil
	}

	err := c.l2Call(func() error { return c.l2.Delete(ctx, keys...) })
	if err != nil {
		c.addTombstones(keys...)
		return err
	}
	c.clearTombstones(keys...)
	return nil
}

func (c *MultiLevelCache) addTombstones(keys ...string) {
	expires := time.Now().Add(c.tombstoneTTL)
	c.mu.Lock()
	for _, key := range keys {
		c.tombstones[key] = expires
	}
	c.mu.Unlock()
}

func (c *MultiLevelCache) clearTombstones(keys ...string) {
	c.mu.Lock()
	for _, key := range keys {
		delete(c.tombstones, key)
	}
	c.mu.Unlock()
}

func (c *MultiLevelCache) tombstoned(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	expires, ok := c.tombstones[key]
	if ok && !time.Now().Before(expires) {
		delete(c.tombstones, key)
		return false
	}
	return ok
}

// retryTombstones reissues the L2 delete for every live tombstone.
func (c *MultiLevelCache) retryTombstones(ctx context.Context) {
	now := time.Now()
	c.mu.Lock()
	keys := make([]string, 0, len(c.tombstones))
	for key, expires := range c.tombstones {
		if !now.Before(expires) {
			delete(c.tombstones, key)
			continue
		}
		keys = append(keys, key)
	}
	c.mu.Unlock()

	if len(keys) == 0 || c.l2 == nil {
		return
	}
	if err := c.l2Call(func() error { return c.l2.Delete(ctx, keys...) }); err != nil {
		log.Printf("Redis cache retry delete %v failed: %v", keys, err)
		return
	}
	c.clearTombstones(keys...)
}

func (c *MultiLevelCache) l2Call(fn func() error) error {
	err := c.breaker.Execute(fn)
	if errors.Is(err, ErrCircuitBreakerOpen) {
		c.metrics.RecordRejected()
		return ErrCacheDown
	}
	if err != nil {
		c.metrics.RecordError()
		return err
	}
	return nil
}

// Health reports the L2 status. A cache running on L1 alone is always healthy.
func (c *MultiLevelCache) Health(ctx context.Context) error {
	if c.l2 == nil {
		return nil
	}
	return c.l2.Health(ctx)
}

func (c *MultiLevelCache) Stats() map[string]interface{} {
	stats := map[string]interface{}{
		"mode":     "memory",
		"l1":       c.l1.Stats(),
		"metrics":  c.metrics.Snapshot(),
		"hit_rate": c.metrics.HitRate(),
	}

	if c.l2 != nil {
		stats["mode"] = "memory+redis"
		stats["l2"] = c.l2.Stats()
		stats["circuit_breaker"] = c.breaker.GetStats()
		c.mu.Lock()
		stats["tombstones"] = len(c.tombstones)
		c.mu.Unlock()
	}

	return stats
}

func (c *MultiLevelCache) Close() error {
	c.l1.Close()
	if c.l2 != nil {
		return c.l2.Close()
	}
	return nil
}

// RunJanitor purges expired L1 entries and retries failed L2 deletes every
// interval until ctx is done.
func (c *MultiLevelCache) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.l1.Purge()
			c.retryTombstones(ctx)
		}
	}
}
