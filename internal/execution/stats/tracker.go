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

// Package stats tracks execution durations per node type.
package stats

import (
	"sync"
	"time"
)

// ExecutionStats aggregates the executions of one node type.
type ExecutionStats struct {
	Count             int64         `json:"count"`
	TotalDuration     time.Duration `json:"totalDuration"`
	AvgDuration       time.Duration `json:"avgDuration"`
	LastExecutionTime time.Time     `json:"lastExecutionTime"`
}

// Tracker keeps per node type execution statistics. It is safe for concurrent use.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]ExecutionStats
	now   func() time.Time
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{stats: make(map[string]ExecutionStats), now: time.Now}
}

// Record adds one execution of the node type.
func (t *Tracker) Record(nodeType string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.stats[nodeType]
	s.Count++
	s.TotalDuration += duration
	s.AvgDuration = s.TotalDuration / time.Duration(s.Count)
	s.LastExecutionTime = t.now()
	t.stats[nodeType] = s
}

// Get returns the statistics of a node type.
func (t *Tracker) Get(nodeType string) (ExecutionStats, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.stats[nodeType]
	return s, ok
}

// Average returns the live average duration of a node type, if it ever ran.
func (t *Tracker) Average(nodeType string) (time.Duration, bool) {
	s, ok := t.Get(nodeType)
	if !ok || s.Count == 0 {
		return 0, false
	}
	return s.AvgDuration, true
}

// Snapshot returns a copy of all statistics.
func (t *Tracker) Snapshot() map[string]ExecutionStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string]ExecutionStats, len(t.stats))
	for k, v := range t.stats {
		out[k] = v
	}
	return out
}

// Totals returns the number of executions and their summed duration across all node types.
func (t *Tracker) Totals() (int64, time.Duration) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var count int64
	var total time.Duration
	for _, s := range t.stats {
		count += s.Count
		total += s.TotalDuration
	}
	return count, total
}

// Reset drops all statistics.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = make(map[string]ExecutionStats)
}
