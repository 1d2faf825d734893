// Copyright (C) 2025 sage-x-project
// SPDX-License-Identifier: LGPL-3.0-or-later

/*
Package cache provides an in-process result cache used to avoid
recomputing expensive analytics queries on every request.

Features:
  - TTL-based expiration
  - LRU/LFU/FIFO/TTL eviction policies
  - Deterministic key generation from arbitrary queryable values

Example:

	c := cache.NewMemoryCache(cache.DefaultCacheConfig())

	key := cache.KeyFor("analytics", query)
	if v, found := c.Get(ctx, key); found {
	    return v.(store.Result)
	}

	result := computeExpensiveThing()
	c.Set(ctx, key, result, 0)
*/
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Cache defines the interface for caching implementations.
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL. A zero ttl uses the cache's
	// configured default.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all entries from cache
	Clear(ctx context.Context) error

	// Stats returns cache statistics
	Stats() CacheStats

	// Close closes the cache
	Close() error
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	// MaxSize is the maximum number of entries
	MaxSize int

	// DefaultTTL is the default time-to-live
	DefaultTTL time.Duration

	// EvictionPolicy determines how entries are evicted
	EvictionPolicy EvictionPolicy

	// EnableMetrics enables cache metrics collection
	EnableMetrics bool
}

// EvictionPolicy determines how cache entries are evicted
type EvictionPolicy string

const (
	// EvictionPolicyLRU evicts least recently used entries
	EvictionPolicyLRU EvictionPolicy = "lru"

	// EvictionPolicyLFU evicts least frequently used entries
	EvictionPolicyLFU EvictionPolicy = "lfu"

	// EvictionPolicyFIFO evicts oldest entries first
	EvictionPolicyFIFO EvictionPolicy = "fifo"

	// EvictionPolicyTTL evicts based on TTL only
	EvictionPolicyTTL EvictionPolicy = "ttl"
)

// CacheStats holds cache statistics
type CacheStats struct {
	Hits          int64
	Misses        int64
	Sets          int64
	Deletes       int64
	Evictions     int64
	Size          int
	MaxSize       int
	HitRate       float64
	MemoryUsageKB int64
}

// DefaultCacheConfig returns default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		MaxSize:        1000,
		DefaultTTL:     30 * time.Second,
		EvictionPolicy: EvictionPolicyLRU,
		EnableMetrics:  true,
	}
}

// KeyFor builds a deterministic cache key from a namespace and any
// JSON-marshalable query value. Two equal queries under the same
// namespace always produce the same key regardless of map iteration
// order, since encoding/json sorts map keys.
func KeyFor(namespace string, query interface{}) string {
	data, _ := json.Marshal(query)
	hash := sha256.Sum256(append([]byte(namespace+":"), data...))
	return namespace + ":" + hex.EncodeToString(hash[:])
}
