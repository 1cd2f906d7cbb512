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

package cache

import (
	"container/heap"
	"container/list"
	"sync"
	"time"

	"github.com/skyforge/missionflow/internal/system/log"
)

const loggerComponentName = "InMemoryCache"

// lfuHeapItem represents an item in the LFU heap.
type lfuHeapItem struct {
	key         CacheKey
	accessCount int64
	lastAccess  time.Time
	index       int
}

// lfuHeap implements heap.Interface ordering by access count, then by last access.
type lfuHeap []*lfuHeapItem

func (h lfuHeap) Len() int { return len(h) }

func (h lfuHeap) Less(i, j int) bool {
	if h[i].accessCount != h[j].accessCount {
		return h[i].accessCount < h[j].accessCount
	}
	return h[i].lastAccess.Before(h[j].lastAccess)
}

func (h lfuHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *lfuHeap) Push(x any) {
	item := x.(*lfuHeapItem)
	item.index = len(*h)
	*h = append(*h, item)
}

func (h *lfuHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[0 : n-1]
	return item
}

type inMemoryCacheEntry[T any] struct {
	CacheEntry[T]
	listElement *list.Element
	heapItem    *lfuHeapItem
	accessCount int64
}

// inMemoryCache implements CacheInterface with a map, an access list and an optional LFU heap.
type inMemoryCache[T any] struct {
	enabled        bool
	name           string
	entries        map[CacheKey]*inMemoryCacheEntry[T]
	accessOrder    *list.List
	lfuHeap        *lfuHeap
	mu             sync.Mutex
	size           int
	ttl            time.Duration
	evictionPolicy EvictionPolicy
	now            func() time.Time
	hitCount       int64
	missCount      int64
	evictCount     int64
	logger         *log.Logger
}

// NewInMemoryCache creates a new in-memory cache with the given options.
func NewInMemoryCache[T any](opts Options) CacheInterface[T] {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName),
		log.String("name", opts.Name))

	if opts.Disabled {
		logger.Warn("In-memory cache is disabled, returning empty cache")
		return &inMemoryCache[T]{name: opts.Name, logger: logger}
	}

	size := opts.Size
	if size <= 0 {
		size = DefaultCacheSize
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	policy := opts.EvictionPolicy
	if policy != EvictionPolicyLFU {
		policy = EvictionPolicyLRU
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	logger.Debug("Initializing in-memory cache", log.String("evictionPolicy", string(policy)),
		log.Int("size", size), log.Duration("ttl", ttl))

	h := &lfuHeap{}
	heap.Init(h)

	return &inMemoryCache[T]{
		enabled:        true,
		name:           opts.Name,
		entries:        make(map[CacheKey]*inMemoryCacheEntry[T]),
		accessOrder:    list.New(),
		lfuHeap:        h,
		size:           size,
		ttl:            ttl,
		evictionPolicy: policy,
		now:            clock,
		logger:         logger,
	}
}

// Set adds or replaces an entry, restarting its lifetime.
func (c *inMemoryCache[T]) Set(key CacheKey, value T) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if existing, ok := c.entries[key]; ok {
		existing.Value = value
		existing.Timestamp = now
		c.touch(existing, now)
		return
	}

	if len(c.entries) >= c.size {
		c.evict()
	}

	entry := &inMemoryCacheEntry[T]{
		CacheEntry:  CacheEntry[T]{Value: value, Timestamp: now},
		listElement: c.accessOrder.PushFront(key),
		accessCount: 1,
	}
	if c.evictionPolicy == EvictionPolicyLFU {
		entry.heapItem = &lfuHeapItem{key: key, accessCount: 1, lastAccess: now}
		heap.Push(c.lfuHeap, entry.heapItem)
	}
	c.entries[key] = entry
}

// Get returns the value for key when present and not expired. Expired entries are dropped.
func (c *inMemoryCache[T]) Get(key CacheKey) (T, bool) {
	var zero T
	if !c.enabled {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		c.missCount++
		return zero, false
	}

	now := c.now()
	if entry.expired(now, c.ttl) {
		c.deleteEntry(key, entry)
		c.missCount++
		return zero, false
	}

	c.touch(entry, now)
	c.hitCount++
	return entry.Value, true
}

// Delete removes an entry from the cache.
func (c *inMemoryCache[T]) Delete(key CacheKey) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.deleteEntry(key, entry)
	}
}

// Clear removes all entries and resets the statistics.
func (c *inMemoryCache[T]) Clear() {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[CacheKey]*inMemoryCacheEntry[T])
	c.accessOrder.Init()
	c.lfuHeap = &lfuHeap{}
	heap.Init(c.lfuHeap)
	c.hitCount = 0
	c.missCount = 0
	c.evictCount = 0
	c.logger.Debug("Cleared all entries in the cache")
}

// CleanupExpired removes every expired entry and returns how many were removed.
func (c *inMemoryCache[T]) CleanupExpired() int {
	if !c.enabled {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	cleaned := 0
	for key, entry := range c.entries {
		if entry.expired(now, c.ttl) {
			c.deleteEntry(key, entry)
			cleaned++
		}
	}

	if cleaned > 0 {
		c.logger.Debug("Expired cache entries cleaned", log.Int("count", cleaned))
	}
	return cleaned
}

// SetTTL changes the lifetime applied to current and future entries.
func (c *inMemoryCache[T]) SetTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ttl = ttl
}

// TTL returns the current entry lifetime.
func (c *inMemoryCache[T]) TTL() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl
}

// IsEnabled returns whether the cache is enabled.
func (c *inMemoryCache[T]) IsEnabled() bool {
	return c.enabled
}

// GetName returns the name of the cache.
func (c *inMemoryCache[T]) GetName() string {
	return c.name
}

// GetStats returns cache statistics.
func (c *inMemoryCache[T]) GetStats() CacheStat {
	if !c.enabled {
		return CacheStat{Enabled: false}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var hitRate float64
	if total := c.hitCount + c.missCount; total > 0 {
		hitRate = float64(c.hitCount) / float64(total)
	}

	return CacheStat{
		Enabled:    true,
		Size:       len(c.entries),
		MaxSize:    c.size,
		HitCount:   c.hitCount,
		MissCount:  c.missCount,
		HitRate:    hitRate,
		EvictCount: c.evictCount,
		TTL:        c.ttl.Milliseconds(),
	}
}

// touch records an access for the eviction bookkeeping.
func (c *inMemoryCache[T]) touch(entry *inMemoryCacheEntry[T], now time.Time) {
	entry.accessCount++
	c.accessOrder.MoveToFront(entry.listElement)
	if entry.heapItem != nil {
		entry.heapItem.accessCount = entry.accessCount
		entry.heapItem.lastAccess = now
		heap.Fix(c.lfuHeap, entry.heapItem.index)
	}
}

func (c *inMemoryCache[T]) evict() {
	var key CacheKey
	if c.evictionPolicy == EvictionPolicyLFU {
		if c.lfuHeap.Len() == 0 {
			return
		}
		key = (*c.lfuHeap)[0].key
	} else {
		oldest := c.accessOrder.Back()
		if oldest == nil {
			return
		}
		key = oldest.Value.(CacheKey)
	}

	if entry, ok := c.entries[key]; ok {
		c.deleteEntry(key, entry)
		c.evictCount++
		c.logger.Debug("Cache entry evicted", log.String("key", key.ToString()),
			log.String("policy", string(c.evictionPolicy)))
	}
}

// deleteEntry removes an entry from the map, the access list and the heap.
func (c *inMemoryCache[T]) deleteEntry(key CacheKey, entry *inMemoryCacheEntry[T]) {
	delete(c.entries, key)
	c.accessOrder.Remove(entry.listElement)
	if entry.heapItem != nil && entry.heapItem.index >= 0 {
		heap.Remove(c.lfuHeap, entry.heapItem.index)
	}
}
