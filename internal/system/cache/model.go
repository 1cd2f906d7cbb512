/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package cache provides a generic, size bounded, TTL aware in-memory cache.
package cache

import "time"

// EvictionPolicy defines the eviction policy for cache entries.
type EvictionPolicy string

const (
	// EvictionPolicyLRU evicts the least recently used entry.
	EvictionPolicyLRU EvictionPolicy = "LRU"
	// EvictionPolicyLFU evicts the least frequently used entry.
	EvictionPolicyLFU EvictionPolicy = "LFU"
)

const (
	// DefaultCacheSize is the maximum number of entries held when no size is configured.
	DefaultCacheSize = 1000
	// DefaultCacheTTL is the entry lifetime used when no TTL is configured.
	DefaultCacheTTL = 300 * time.Second
)

// CacheKey represents a key for the cache.
type CacheKey struct {
	Key string
}

// ToString returns the string representation of the CacheKey.
func (key CacheKey) ToString() string {
	return key.Key
}

// CacheEntry represents a cache entry.
type CacheEntry[T any] struct {
	Value     T
	Timestamp time.Time
}

// expired reports whether the entry has outlived ttl at the given instant.
func (e *CacheEntry[T]) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.Timestamp) >= ttl
}

// CacheStat represents cache statistics.
type CacheStat struct {
	Enabled    bool    `json:"enabled"`
	Size       int     `json:"size"`
	MaxSize    int     `json:"maxSize"`
	HitCount   int64   `json:"hits"`
	MissCount  int64   `json:"misses"`
	HitRate    float64 `json:"hitRate"`
	EvictCount int64   `json:"evictions"`
	TTL        int64   `json:"ttlMs"`
}

// Options configures an in-memory cache.
type Options struct {
	Name           string
	Disabled       bool
	Size           int
	TTL            time.Duration
	EvictionPolicy EvictionPolicy
	// Clock overrides time.Now, mainly for tests.
	Clock func() time.Time
}

// CacheInterface defines the operations of a cache.
type CacheInterface[T any] interface {
	Set(key CacheKey, value T)
	Get(key CacheKey) (T, bool)
	Delete(key CacheKey)
	Clear()
	CleanupExpired() int
	SetTTL(ttl time.Duration)
	TTL() time.Duration
	IsEnabled() bool
	GetName() string
	GetStats() CacheStat
}
