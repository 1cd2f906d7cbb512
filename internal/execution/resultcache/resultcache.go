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

// Package resultcache memoizes node executor results keyed by node type and canonical parameters.
package resultcache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/skyforge/missionflow/internal/system/cache"
	"github.com/skyforge/missionflow/internal/system/log"
)

const loggerComponentName = "ResultCache"

// ScopeKey isolates cache entries. Runs share results only when they share a scope.
type ScopeKey string

// CacheSerializationError reports parameters that cannot be turned into a cache key.
type CacheSerializationError struct {
	NodeType string
	Cause    error
}

func (e *CacheSerializationError) Error() string {
	return fmt.Sprintf("parameters of node type %q cannot be serialized for caching: %v", e.NodeType, e.Cause)
}

func (e *CacheSerializationError) Unwrap() error {
	return e.Cause
}

// CapabilityLookup tells whether a node type opted in to result caching.
type CapabilityLookup interface {
	Cacheable(nodeType string) bool
}

// Options configures a result cache.
type Options struct {
	Size           int
	TTL            time.Duration
	EvictionPolicy cache.EvictionPolicy
	Disabled       bool
	Clock          func() time.Time
}

// Cache stores executor results of cacheable node types.
type Cache struct {
	store        cache.CacheInterface[interface{}]
	capabilities CapabilityLookup
	logger       *log.Logger
}

// New creates a result cache. Node types are cached only when capabilities reports them cacheable.
func New(opts Options, capabilities CapabilityLookup) *Cache {
	return &Cache{
		store: cache.NewInMemoryCache[interface{}](cache.Options{
			Name:           "ResultCache",
			Disabled:       opts.Disabled,
			Size:           opts.Size,
			TTL:            opts.TTL,
			EvictionPolicy: opts.EvictionPolicy,
			Clock:          opts.Clock,
		}),
		capabilities: capabilities,
		logger:       log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// Cacheable reports whether results of the node type may be cached.
func (c *Cache) Cacheable(nodeType string) bool {
	return c.store.IsEnabled() && c.capabilities != nil && c.capabilities.Cacheable(nodeType)
}

// Key builds the cache key of a node invocation. Parameter objects with the same content
// produce the same key whatever their key order.
func (c *Cache) Key(scope ScopeKey, nodeType string, params map[string]interface{}) (cache.CacheKey, error) {
	canonical, err := CanonicalJSON(map[string]interface{}{"type": nodeType, "params": params})
	if err != nil {
		return cache.CacheKey{}, &CacheSerializationError{NodeType: nodeType, Cause: err}
	}
	return cache.CacheKey{Key: string(scope) + "|" + string(canonical)}, nil
}

// Lookup returns a fresh result for the key, if any.
func (c *Cache) Lookup(key cache.CacheKey) (interface{}, bool) {
	return c.store.Get(key)
}

// Store records a result under the key.
func (c *Cache) Store(key cache.CacheKey, result interface{}) {
	c.store.Set(key, result)
}

// Get is a convenience combining Cacheable, Key and Lookup.
func (c *Cache) Get(scope ScopeKey, nodeType string, params map[string]interface{}) (interface{}, bool) {
	if !c.Cacheable(nodeType) {
		return nil, false
	}
	key, err := c.Key(scope, nodeType, params)
	if err != nil {
		c.logger.Warn("Skipping result cache lookup", log.String(log.LoggerKeyNodeType, nodeType), log.Error(err))
		return nil, false
	}
	return c.store.Get(key)
}

// Set is a convenience combining Cacheable, Key and Store. It is a no-op for non cacheable types.
func (c *Cache) Set(scope ScopeKey, nodeType string, params map[string]interface{}, result interface{}) error {
	if !c.Cacheable(nodeType) {
		return nil
	}
	key, err := c.Key(scope, nodeType, params)
	if err != nil {
		return err
	}
	c.store.Set(key, result)
	return nil
}

// Sweep removes all expired entries and returns how many were removed.
func (c *Cache) Sweep() int {
	return c.store.CleanupExpired()
}

// CleanupExpired implements cache.Cleaner.
func (c *Cache) CleanupExpired() int {
	return c.Sweep()
}

// SetTTL changes the entry lifetime.
func (c *Cache) SetTTL(ttl time.Duration) {
	c.store.SetTTL(ttl)
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.store.TTL()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.store.Clear()
}

// Stats returns the cache statistics.
func (c *Cache) Stats() cache.CacheStat {
	return c.store.GetStats()
}

// CanonicalJSON serializes v with object keys sorted at every depth. Values are first
// normalized through a JSON round trip so structs and typed maps canonicalize like plain maps;
// encoding/json writes map keys in sorted order.
func CanonicalJSON(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var normalized interface{}
	if err := decoder.Decode(&normalized); err != nil {
		return nil, err
	}
	return json.Marshal(normalized)
}
