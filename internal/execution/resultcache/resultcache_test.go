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

package resultcache

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type capabilities map[string]bool

func (c capabilities) Cacheable(nodeType string) bool {
	return c[nodeType]
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (m *manualClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *manualClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
}

type ResultCacheTestSuite struct {
	suite.Suite
	clock *manualClock
	cache *Cache
}

func TestResultCacheSuite(t *testing.T) {
	suite.Run(t, new(ResultCacheTestSuite))
}

func (suite *ResultCacheTestSuite) SetupTest() {
	suite.clock = &manualClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	suite.cache = New(Options{TTL: 300 * time.Second, Clock: suite.clock.Now},
		capabilities{"typeX": true, "get_battery": true})
}

func (suite *ResultCacheTestSuite) TestKeyOrderDoesNotMatter() {
	err := suite.cache.Set("", "typeX", map[string]interface{}{"a": 1, "b": 2}, "result")
	require.NoError(suite.T(), err)

	value, ok := suite.cache.Get("", "typeX", map[string]interface{}{"b": 2, "a": 1})

	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "result", value)
}

func (suite *ResultCacheTestSuite) TestNestedKeyOrderDoesNotMatter() {
	first, err := suite.cache.Key("", "typeX", map[string]interface{}{
		"target": map[string]interface{}{"y": 2, "x": 1},
		"list":   []interface{}{map[string]interface{}{"d": 1, "c": 2}},
	})
	require.NoError(suite.T(), err)

	second, err := suite.cache.Key("", "typeX", map[string]interface{}{
		"list":   []interface{}{map[string]interface{}{"c": 2, "d": 1}},
		"target": map[string]interface{}{"x": 1, "y": 2},
	})
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), first, second)
}

func (suite *ResultCacheTestSuite) TestDifferentParamsMiss() {
	require.NoError(suite.T(), suite.cache.Set("", "typeX", map[string]interface{}{"a": 1}, "one"))

	_, ok := suite.cache.Get("", "typeX", map[string]interface{}{"a": 2})

	assert.False(suite.T(), ok)
}

func (suite *ResultCacheTestSuite) TestExpiredEntryIsNeverAHit() {
	params := map[string]interface{}{"a": 1}
	require.NoError(suite.T(), suite.cache.Set("", "typeX", params, "fresh"))

	suite.clock.Advance(299 * time.Second)
	_, ok := suite.cache.Get("", "typeX", params)
	assert.True(suite.T(), ok)

	suite.clock.Advance(time.Second)
	_, ok = suite.cache.Get("", "typeX", params)
	assert.False(suite.T(), ok)
}

func (suite *ResultCacheTestSuite) TestSweep() {
	require.NoError(suite.T(), suite.cache.Set("", "typeX", map[string]interface{}{"a": 1}, "1"))
	require.NoError(suite.T(), suite.cache.Set("", "typeX", map[string]interface{}{"a": 2}, "2"))
	suite.clock.Advance(301 * time.Second)
	require.NoError(suite.T(), suite.cache.Set("", "typeX", map[string]interface{}{"a": 3}, "3"))

	assert.Equal(suite.T(), 2, suite.cache.Sweep())
	assert.Equal(suite.T(), 1, suite.cache.Stats().Size)
}

func (suite *ResultCacheTestSuite) TestNonCacheableTypeIsNeverStored() {
	params := map[string]interface{}{"height": 100}

	require.NoError(suite.T(), suite.cache.Set("", "takeoff", params, "done"))
	_, ok := suite.cache.Get("", "takeoff", params)

	assert.False(suite.T(), ok)
	assert.Equal(suite.T(), 0, suite.cache.Stats().Size)
}

func (suite *ResultCacheTestSuite) TestScopesAreIsolated() {
	params := map[string]interface{}{}
	require.NoError(suite.T(), suite.cache.Set("mission-a", "get_battery", params, 80))

	_, okOther := suite.cache.Get("mission-b", "get_battery", params)
	value, okSame := suite.cache.Get("mission-a", "get_battery", params)

	assert.False(suite.T(), okOther)
	assert.True(suite.T(), okSame)
	assert.Equal(suite.T(), 80, value)
}

func (suite *ResultCacheTestSuite) TestSerializationError() {
	params := map[string]interface{}{"callback": func() {}}

	err := suite.cache.Set("", "typeX", params, "x")

	var serErr *CacheSerializationError
	require.True(suite.T(), errors.As(err, &serErr))
	assert.Equal(suite.T(), "typeX", serErr.NodeType)
	assert.NotNil(suite.T(), errors.Unwrap(err))

	_, ok := suite.cache.Get("", "typeX", map[string]interface{}{"bad": math.NaN()})
	assert.False(suite.T(), ok)
}

func (suite *ResultCacheTestSuite) TestSetTTLAndStats() {
	suite.cache.SetTTL(time.Minute)
	assert.Equal(suite.T(), time.Minute, suite.cache.TTL())

	require.NoError(suite.T(), suite.cache.Set("", "typeX", map[string]interface{}{"a": 1}, "1"))
	_, _ = suite.cache.Get("", "typeX", map[string]interface{}{"a": 1})
	_, _ = suite.cache.Get("", "typeX", map[string]interface{}{"a": 9})

	stats := suite.cache.Stats()
	assert.Equal(suite.T(), int64(1), stats.HitCount)
	assert.Equal(suite.T(), int64(1), stats.MissCount)
	assert.Equal(suite.T(), 0.5, stats.HitRate)

	suite.cache.Clear()
	assert.Equal(suite.T(), 0, suite.cache.Stats().Size)
}

func (suite *ResultCacheTestSuite) TestDisabledCacheIsNeverCacheable() {
	disabled := New(Options{Disabled: true}, capabilities{"typeX": true})

	assert.False(suite.T(), disabled.Cacheable("typeX"))
}

func (suite *ResultCacheTestSuite) TestCanonicalJSON() {
	type point struct {
		Y int `json:"y"`
		X int `json:"x"`
	}

	out, err := CanonicalJSON(map[string]interface{}{"p": point{Y: 2, X: 1}, "b": 1.5, "a": "s"})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), `{"a":"s","b":1.5,"p":{"x":1,"y":2}}`, string(out))
}
