package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestMultiLevelCache_MemoryOnly(t *testing.T) {
	c := NewMultiLevelCache(nil)
	defer c.Close()
	ctx := context.Background()

	var v []string
	if err := c.Get(ctx, "k", &v); err != ErrCacheMiss {
		t.Errorf("Expected miss on empty cache, got %v", err)
	}

	if err := c.Set(ctx, "k", []string{"x"}, time.Minute); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}

	if err := c.Get(ctx, "k", &v); err != nil || len(v) != 1 {
		t.Errorf("Expected hit, got %v (%v)", v, err)
	}

	if err := c.Health(ctx); err != nil {
		t.Errorf("Expected memory-only cache to be healthy, got %v", err)
	}

	m := c.Metrics().Snapshot()
	if m.L1Hits != 1 || m.Misses != 1 || m.Sets != 1 {
		t.Errorf("Unexpected metrics %+v", m)
	}

	if c.Stats()["mode"] != "memory" {
		t.Errorf("Expected memory mode, got %v", c.Stats()["mode"])
	}
}

func TestMultiLevelCache_ReadsThroughToRedis(t *testing.T) {
	redisCache, _ := setupTestRedis(t)
	writer := NewMultiLevelCache(redisCache)
	reader := NewMultiLevelCache(redisCache)
	ctx := context.Background()

	if err := writer.Set(ctx, "lists:all", []string{"shared"}, time.Minute); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}

	var v []string
	if err := reader.Get(ctx, "lists:all", &v); err != nil || v[0] != "shared" {
		t.Fatalf("Expected L2 hit, got %v (%v)", v, err)
	}
	if reader.Metrics().Snapshot().L2Hits != 1 {
		t.Errorf("Expected one L2 hit, got %+v", reader.Metrics().Snapshot())
	}

	v = nil
	reader.Get(ctx, "lists:all", &v)
	if reader.Metrics().Snapshot().L1Hits != 1 {
		t.Errorf("Expected backfilled L1 hit, got %+v", reader.Metrics().Snapshot())
	}
}

func TestMultiLevelCache_DeleteInvalidatesBothTiers(t *testing.T) {
	redisCache, mr := setupTestRedis(t)
	c := NewMultiLevelCache(redisCache)
	ctx := context.Background()

	c.Set(ctx, "tasks:inbox", []int{1}, time.Minute)
	if err := c.Delete(ctx, "tasks:inbox"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	if mr.Exists("weektodo:tasks:inbox") {
		t.Error("Expected L2 key to be removed")
	}

	var v []int
	if err := c.Get(ctx, "tasks:inbox", &v); err != ErrCacheMiss {
		t.Errorf("Expected miss after delete, got %v", err)
	}
}

func TestMultiLevelCache_RedisOutageFallsBackToMiss(t *testing.T) {
	mr := miniredis.RunT(t)
	config := DefaultCacheConfig()
	config.Addr = mr.Addr()
	config.MaxRetries = -1
	config.DialTimeout = 100 * time.Millisecond
	redisCache := NewRedisCache(config)
	defer redisCache.Close()

	c := NewMultiLevelCache(redisCache, WithCircuitBreaker(&CircuitBreakerConfig{
		MaxFailures:      2,
		Timeout:          time.Minute,
		HalfOpenMaxCalls: 1,
	}))
	ctx := context.Background()

	mr.Close()

	var v string
	for i := 0; i < 3; i++ {
		if err := c.Get(ctx, "missing", &v); err != ErrCacheMiss {
			t.Errorf("Expected outage to surface as a miss, got %v", err)
		}
	}

	if c.breaker.GetState() != CircuitBreakerOpen {
		t.Errorf("Expected breaker to open during outage, got %v", c.breaker.GetState())
	}

	m := c.Metrics().Snapshot()
	if m.Errors != 2 || m.Rejected != 1 {
		t.Errorf("Expected 2 errors and 1 rejected call, got %+v", m)
	}

	if err := c.Set(ctx, "k", "v", time.Minute); err != ErrCacheDown {
		t.Errorf("Expected ErrCacheDown while breaker is open, got %v", err)
	}
	if err := c.Get(ctx, "k", &v); err != nil || v != "v" {
		t.Errorf("Expected L1 to keep serving, got %q (%v)", v, err)
	}
}

func TestMultiLevelCache_L1TTLIsCapped(t *testing.T) {
	redisCache, _ := setupTestRedis(t)
	c := NewMultiLevelCache(redisCache, WithL1TTL(30*time.Second))

	if got := c.localTTL(10 * time.Minute); got != 30*time.Second {
		t.Errorf("Expected L1 TTL to be capped at 30s, got %v", got)
	}
	if got := c.localTTL(5 * time.Second); got != 5*time.Second {
		t.Errorf("Expected shorter TTL to be kept, got %v", got)
	}

	memoryOnly := NewMultiLevelCache(nil, WithL1TTL(30*time.Second))
	if got := memoryOnly.localTTL(10 * time.Minute); got != 10*time.Minute {
		t.Errorf("Expected memory-only cache to keep the full TTL, got %v", got)
	}
}

func TestMultiLevelCache_RunJanitorPurgesExpiredEntries(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMultiLevelCache(nil)
	c.l1.now = clock.Now
	ctx, cancel := context.WithCancel(context.Background())

	if err := c.Set(ctx, "k", "v", time.Second); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}
	clock.Advance(2 * time.Second)

	done := make(chan struct{})
	go func() {
		c.RunJanitor(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for c.l1.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected janitor to purge the expired entry")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("Expected janitor to stop when the context is cancelled")
	}
}

func TestMultiLevelCache_FailedDeleteBypassesStaleL2(t *testing.T) {
	redisCache, mr := setupTestRedis(t)
	c := NewMultiLevelCache(redisCache)
	ctx := context.Background()

	if err := c.Set(ctx, "lists:all", []string{"old"}, time.Minute); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}

	mr.SetError("ERR injected failure")
	if err := c.Delete(ctx, "lists:all"); err == nil {
		t.Fatal("Expected L2 delete to fail")
	}
	mr.SetError("")

	if !mr.Exists("weektodo:lists:all") {
		t.Fatal("Expected stale L2 entry to survive the failed delete")
	}

	var v []string
	if err := c.Get(ctx, "lists:all", &v); err != ErrCacheMiss {
		t.Errorf("Expected miss while the key is tombstoned, got %v (%v)", v, err)
	}

	if err := c.Set(ctx, "lists:all", []string{"fresh"}, time.Minute); err != nil {
		t.Fatalf("Failed to set: %v", err)
	}
	c.l1.Delete(ctx, "lists:all")

	v = nil
	if err := c.Get(ctx, "lists:all", &v); err != nil || len(v) != 1 || v[0] != "fresh" {
		t.Errorf("Expected fresh L2 value once rewritten, got %v (%v)", v, err)
	}
	if c.tombstoned("lists:all") {
		t.Error("Expected successful write to clear the tombstone")
	}
}

func TestMultiLevelCache_RetryTombstonesDeletesStaleL2(t *testing.T) {
	redisCache, mr := setupTestRedis(t)
	c := NewMultiLevelCache(redisCache)
	ctx := context.Background()

	c.Set(ctx, "tasks:inbox", []int{1}, time.Minute)

	mr.SetError("ERR injected failure")
	c.Delete(ctx, "tasks:inbox")
	c.retryTombstones(ctx)
	if !c.tombstoned("tasks:inbox") {
		t.Fatal("Expected tombstone to stay while Redis keeps failing")
	}
	mr.SetError("")

	c.retryTombstones(ctx)

	if mr.Exists("weektodo:tasks:inbox") {
		t.Error("Expected retried delete to remove the stale L2 key")
	}
	if c.tombstoned("tasks:inbox") {
		t.Error("Expected tombstone to be cleared after a successful retry")
	}
}

func TestMultiLevelCache_TombstoneExpires(t *testing.T) {
	redisCache, mr := setupTestRedis(t)
	c := NewMultiLevelCache(redisCache, WithTombstoneTTL(time.Millisecond))
	ctx := context.Background()

	mr.SetError("ERR injected failure")
	c.Delete(ctx, "k")
	mr.SetError("")

	time.Sleep(5 * time.Millisecond)
	if c.tombstoned("k") {
		t.Error("Expected tombstone to expire")
	}
}
