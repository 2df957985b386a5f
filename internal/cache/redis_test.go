package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"weektodo/backend/internal/config"

	"github.com/alicebob/miniredis/v2"
)

func TestDefaultCacheConfig(t *testing.T) {
	config := DefaultCacheConfig()

	if config.Addr != "localhost:6379" {
		t.Errorf("Expected Addr to be localhost:6379, got %s", config.Addr)
	}

	if config.PoolSize != 10 {
		t.Errorf("Expected PoolSize to be 10, got %d", config.PoolSize)
	}

	if config.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries to be 3, got %d", config.MaxRetries)
	}

	if config.DialTimeout != 5*time.Second {
		t.Errorf("Expected DialTimeout to be 5s, got %v", config.DialTimeout)
	}

	if config.KeyPrefix != "weektodo:" {
		t.Errorf("Expected KeyPrefix to be weektodo:, got %s", config.KeyPrefix)
	}
}

func TestCacheConfigFrom(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Host:        "cache.internal",
			Port:        "6380",
			Password:    "secret",
			DB:          2,
			PoolSize:    0,
			DialTimeout: time.Second,
		},
	}

	c := CacheConfigFrom(cfg)

	if c.Addr != "cache.internal:6380" {
		t.Errorf("Expected Addr cache.internal:6380, got %s", c.Addr)
	}
	if c.Password != "secret" || c.DB != 2 {
		t.Errorf("Expected credentials to be mapped, got %+v", c)
	}
	if c.PoolSize != 10 {
		t.Errorf("Expected default PoolSize for zero value, got %d", c.PoolSize)
	}
	if c.DialTimeout != time.Second {
		t.Errorf("Expected DialTimeout 1s, got %v", c.DialTimeout)
	}
}

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	config := DefaultCacheConfig()
	config.Addr = mr.Addr()

	cache := NewRedisCache(config)
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

func TestNewRedisCache_WithNilConfig(t *testing.T) {
	cache := NewRedisCache(nil)
	defer cache.Close()

	if cache.client == nil {
		t.Error("Expected Redis client to be initialized")
	}
}

func TestRedisCache_SetAndGet(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	type testData struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	if err := cache.Set(ctx, "tasks:inbox", testData{Name: "test", Value: 42}, time.Minute); err != nil {
		t.Fatalf("Failed to set cache: %v", err)
	}

	if !mr.Exists("weektodo:tasks:inbox") {
		t.Error("Expected key to be stored with prefix")
	}

	if ttl := mr.TTL("weektodo:tasks:inbox"); ttl != time.Minute {
		t.Errorf("Expected TTL of 1m, got %v", ttl)
	}

	var result testData
	if err := cache.Get(ctx, "tasks:inbox", &result); err != nil {
		t.Fatalf("Failed to get cache: %v", err)
	}

	if result.Name != "test" || result.Value != 42 {
		t.Errorf("Expected {test 42}, got %+v", result)
	}
}

func TestRedisCache_Get_CacheMiss(t *testing.T) {
	cache, _ := setupTestRedis(t)

	var result string
	err := cache.Get(context.Background(), "nonexistent", &result)

	if err != ErrCacheMiss {
		t.Errorf("Expected ErrCacheMiss, got %v", err)
	}
}

func TestRedisCache_Expiry(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	cache.Set(ctx, "lists:all", []string{"a"}, time.Minute)
	mr.FastForward(2 * time.Minute)

	var result []string
	if err := cache.Get(ctx, "lists:all", &result); err != ErrCacheMiss {
		t.Errorf("Expected expired key to miss, got %v", err)
	}
}

func TestRedisCache_Set_InvalidData(t *testing.T) {
	cache, _ := setupTestRedis(t)

	if err := cache.Set(context.Background(), "invalid", make(chan int), time.Minute); err == nil {
		t.Error("Expected error when setting invalid data")
	}
}

func TestRedisCache_Get_InvalidJSON(t *testing.T) {
	cache, mr := setupTestRedis(t)

	mr.Set("weektodo:invalid", "not json")

	var result map[string]interface{}
	err := cache.Get(context.Background(), "invalid", &result)
	if err == nil || err == ErrCacheMiss {
		t.Errorf("Expected decode error, got %v", err)
	}
}

func TestRedisCache_Delete(t *testing.T) {
	cache, mr := setupTestRedis(t)
	ctx := context.Background()

	cache.Set(ctx, "a", 1, time.Minute)
	cache.Set(ctx, "b", 2, time.Minute)

	if err := cache.Delete(ctx, "a", "b", "missing"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}

	if mr.Exists("weektodo:a") || mr.Exists("weektodo:b") {
		t.Error("Expected keys to be deleted")
	}

	if err := cache.Delete(ctx); err != nil {
		t.Errorf("Expected no-op delete to succeed, got %v", err)
	}
}

func TestRedisCache_Health(t *testing.T) {
	cache, mr := setupTestRedis(t)

	if err := cache.Health(context.Background()); err != nil {
		t.Errorf("Expected healthy cache, got %v", err)
	}

	mr.Close()

	err := cache.Health(context.Background())
	if !errors.Is(err, ErrCacheDown) {
		t.Errorf("Expected ErrCacheDown after server stop, got %v", err)
	}
}

func TestRedisCache_Stats(t *testing.T) {
	cache, _ := setupTestRedis(t)

	stats := cache.Stats()
	for _, key := range []string{"pool_hits", "pool_misses", "pool_total", "pool_idle"} {
		if _, ok := stats[key]; !ok {
			t.Errorf("Expected %s in stats", key)
		}
	}
}
