// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryCache_BasicOperations(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(CacheConfig{
		MaxSize:        10,
		DefaultTTL:     1 * time.Minute,
		EvictionPolicy: EvictionPolicyLRU,
	})
	defer cache.Close()

	err := cache.Set(ctx, "key1", "value1", 1*time.Minute)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, found := cache.Get(ctx, "key1")
	if !found {
		t.Fatal("Expected to find key1")
	}
	if value != "value1" {
		t.Errorf("Expected value1, got %v", value)
	}

	_, found = cache.Get(ctx, "nonexistent")
	if found {
		t.Error("Should not find nonexistent key")
	}

	err = cache.Delete(ctx, "key1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, found = cache.Get(ctx, "key1")
	if found {
		t.Error("Key should be deleted")
	}
}

func TestMemoryCache_TTLExpiration(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(CacheConfig{
		MaxSize:        10,
		DefaultTTL:     50 * time.Millisecond,
		EvictionPolicy: EvictionPolicyLRU,
	})
	defer cache.Close()

	err := cache.Set(ctx, "key1", "value1", 100*time.Millisecond)
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	_, found := cache.Get(ctx, "key1")
	if !found {
		t.Error("Key should exist")
	}

	time.Sleep(150 * time.Millisecond)

	_, found = cache.Get(ctx, "key1")
	if found {
		t.Error("Key should be expired")
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(CacheConfig{
		MaxSize:        10,
		DefaultTTL:     1 * time.Minute,
		EvictionPolicy: EvictionPolicyLRU,
	})
	defer cache.Close()

	cache.Set(ctx, "key1", "value1", 1*time.Minute)
	cache.Set(ctx, "key2", "value2", 1*time.Minute)
	cache.Set(ctx, "key3", "value3", 1*time.Minute)

	stats := cache.Stats()
	if stats.Size != 3 {
		t.Errorf("Expected size 3, got %d", stats.Size)
	}

	err := cache.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	stats = cache.Stats()
	if stats.Size != 0 {
		t.Errorf("Expected size 0 after clear, got %d", stats.Size)
	}

	_, found := cache.Get(ctx, "key1")
	if found {
		t.Error("Key should not exist after clear")
	}
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(CacheConfig{
		MaxSize:        3,
		DefaultTTL:     1 * time.Minute,
		EvictionPolicy: EvictionPolicyLRU,
	})
	defer cache.Close()

	cache.Set(ctx, "key1", "value1", 1*time.Minute)
	cache.Set(ctx, "key2", "value2", 1*time.Minute)
	cache.Set(ctx, "key3", "value3", 1*time.Minute)

	cache.Get(ctx, "key1")

	cache.Set(ctx, "key4", "value4", 1*time.Minute)

	_, found := cache.Get(ctx, "key2")
	if found {
		t.Error("key2 should be evicted")
	}

	_, found = cache.Get(ctx, "key1")
	if !found {
		t.Error("key1 should still exist")
	}
}

func TestMemoryCache_Stats(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(CacheConfig{
		MaxSize:        10,
		DefaultTTL:     1 * time.Minute,
		EvictionPolicy: EvictionPolicyLRU,
		EnableMetrics:  true,
	})
	defer cache.Close()

	cache.Set(ctx, "key1", "value1", 1*time.Minute)
	cache.Set(ctx, "key2", "value2", 1*time.Minute)

	cache.Get(ctx, "key1")
	cache.Get(ctx, "key1")

	cache.Get(ctx, "nonexistent")

	stats := cache.Stats()

	if stats.Sets != 2 {
		t.Errorf("Expected 2 sets, got %d", stats.Sets)
	}

	if stats.Hits != 2 {
		t.Errorf("Expected 2 hits, got %d", stats.Hits)
	}

	if stats.Misses != 1 {
		t.Errorf("Expected 1 miss, got %d", stats.Misses)
	}

	expectedHitRate := float64(2) / float64(3)
	if stats.HitRate < expectedHitRate-0.01 || stats.HitRate > expectedHitRate+0.01 {
		t.Errorf("Expected hit rate ~%.2f, got %.2f", expectedHitRate, stats.HitRate)
	}

	if stats.Size != 2 {
		t.Errorf("Expected size 2, got %d", stats.Size)
	}
}

func TestKeyFor(t *testing.T) {
	type query struct {
		GroupBy []string
		Status  string
	}

	key1 := KeyFor("analytics", query{GroupBy: []string{"model"}, Status: "ok"})
	key2 := KeyFor("analytics", query{GroupBy: []string{"model"}, Status: "ok"})
	key3 := KeyFor("analytics", query{GroupBy: []string{"provider"}, Status: "ok"})

	if key1 != key2 {
		t.Error("same query should generate same key")
	}
	if key1 == key3 {
		t.Error("different queries should generate different keys")
	}
	if key1 == KeyFor("other-namespace", query{GroupBy: []string{"model"}, Status: "ok"}) {
		t.Error("different namespaces should generate different keys")
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryCache(CacheConfig{
		MaxSize:        100,
		DefaultTTL:     1 * time.Minute,
		EvictionPolicy: EvictionPolicyLRU,
	})
	defer cache.Close()

	done := make(chan bool)

	for i := 0; i < 10; i++ {
		go func(n int) {
			for j := 0; j < 10; j++ {
				cache.Set(ctx, "key", n, 1*time.Minute)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 10; j++ {
				cache.Get(ctx, "key")
			}
			done <- true
		}()
	}

	for i := 0; i < 20; i++ {
		<-done
	}

	stats := cache.Stats()
	if stats.Sets == 0 {
		t.Error("Expected some sets")
	}
}
