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

// Package performance drives batched workflow runs and tunes the optimizations applied to them.
package performance

import (
	"context"
	"sync"
	"time"

	"github.com/skyforge/missionflow/internal/execution/batcher"
	"github.com/skyforge/missionflow/internal/execution/condition"
	"github.com/skyforge/missionflow/internal/execution/resultcache"
	"github.com/skyforge/missionflow/internal/execution/stats"
	"github.com/skyforge/missionflow/internal/render/viewport"
	"github.com/skyforge/missionflow/internal/system/cache"
	"github.com/skyforge/missionflow/internal/system/log"
	"github.com/skyforge/missionflow/internal/workflow/graph"
	"github.com/skyforge/missionflow/internal/workflow/model"
	"github.com/skyforge/missionflow/internal/workflow/nodetype"
)

const loggerComponentName = "PerformanceManager"

// DefaultNodeTimeout bounds one node dispatch when neither the node type nor the options set one.
const DefaultNodeTimeout = 30 * time.Second

// Options configures a manager.
type Options struct {
	Registry        *nodetype.Registry
	Cache           resultcache.Options
	Viewport        viewport.Options
	MaxBatchSize    int
	NodeTimeout     time.Duration
	ConditionPolicy condition.Policy
	// TransitiveSkip skips nodes left without any enabling dependency.
	TransitiveSkip bool
	ShortestFirst  bool
	// AutoTune derives batch size, buffer zone and cache TTL from the workflow size on each run.
	AutoTune           bool
	ValidateParameters bool
	// Scope isolates cached results. Empty means the workflow id.
	Scope resultcache.ScopeKey
}

// DefaultOptions returns the options of a manager with every safety feature on.
func DefaultOptions() Options {
	return Options{
		Registry:           nodetype.DefaultRegistry(),
		MaxBatchSize:       batcher.DefaultMaxBatchSize,
		NodeTimeout:        DefaultNodeTimeout,
		ConditionPolicy:    condition.FailOpen,
		TransitiveSkip:     true,
		ShortestFirst:      true,
		AutoTune:           true,
		ValidateParameters: true,
	}
}

// OptimizationStats is a snapshot of the optimizations in effect and their counters.
type OptimizationStats struct {
	Settings       Settings                     `json:"settings"`
	Cache          cache.CacheStat              `json:"cache"`
	Virtualization viewport.VirtualizationStats `json:"virtualization"`
	Runs           int64                        `json:"runs"`
	NodesExecuted  int64                        `json:"nodesExecuted"`
	NodesCached    int64                        `json:"nodesCached"`
	NodesSkipped   int64                        `json:"nodesSkipped"`
	NodesFailed    int64                        `json:"nodesFailed"`
}

// PerformanceStats is a snapshot of the observed execution durations.
type PerformanceStats struct {
	NodeTypes       map[string]stats.ExecutionStats `json:"nodeTypes"`
	TotalExecutions int64                           `json:"totalExecutions"`
	TotalDuration   time.Duration                   `json:"totalDuration"`
	AverageDuration time.Duration                   `json:"averageDuration"`
}

type counters struct {
	runs, executed, cached, skipped, failed int64
}

// Manager owns the cache, statistics and virtualizer of one session and runs workflows
// against them. It runs at most one workflow at a time.
type Manager struct {
	opts        Options
	registry    *nodetype.Registry
	cache       *resultcache.Cache
	stats       *stats.Tracker
	virtualizer *viewport.Virtualizer
	evaluator   *condition.Evaluator
	logger      *log.Logger

	mu       sync.Mutex
	settings Settings
	cancel   context.CancelFunc
	running  bool
	counters counters
}

// NewManager creates a manager.
func NewManager(opts Options) *Manager {
	if opts.Registry == nil {
		opts.Registry = nodetype.DefaultRegistry()
	}
	if opts.NodeTimeout <= 0 {
		opts.NodeTimeout = DefaultNodeTimeout
	}
	if opts.Cache.TTL <= 0 {
		opts.Cache.TTL = cache.DefaultCacheTTL
	}
	if opts.Viewport.BufferZone <= 0 {
		opts.Viewport.BufferZone = viewport.DefaultBufferZone
	}

	return &Manager{
		opts:        opts,
		registry:    opts.Registry,
		cache:       resultcache.New(opts.Cache, opts.Registry),
		stats:       stats.NewTracker(),
		virtualizer: viewport.NewVirtualizer(opts.Viewport),
		evaluator:   condition.NewEvaluator(opts.ConditionPolicy),
		logger:      log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
		settings: Settings{
			BatchingEnabled:       opts.MaxBatchSize > 0,
			MaxBatchSize:          opts.MaxBatchSize,
			VirtualizationEnabled: !opts.Viewport.Disabled,
			BufferZone:            opts.Viewport.BufferZone,
			CacheTTL:              opts.Cache.TTL,
		},
	}
}

// Registry returns the node type registry used by the manager.
func (m *Manager) Registry() *nodetype.Registry {
	return m.registry
}

// Cache returns the result cache owned by the manager.
func (m *Manager) Cache() *resultcache.Cache {
	return m.cache
}

// Virtualizer returns the viewport virtualizer owned by the manager.
func (m *Manager) Virtualizer() *viewport.Virtualizer {
	return m.virtualizer
}

// Settings returns the settings currently in effect.
func (m *Manager) Settings() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Optimize tunes the settings for a workflow of nodeCount nodes and applies them to the
// cache and the virtualizer. Without auto-tuning the configured settings stay in place.
func (m *Manager) Optimize(nodeCount int) Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.opts.AutoTune {
		return m.settings
	}

	m.settings = Tune(nodeCount)
	m.cache.SetTTL(m.settings.CacheTTL)
	// Culling stays as configured; the threshold decides per call whether a graph is culled.
	m.virtualizer.Configure(m.settings.BufferZone, !m.opts.Viewport.Disabled)
	m.logger.Debug("Tuned optimization settings", log.Int("nodes", nodeCount),
		log.Int("maxBatchSize", m.settings.MaxBatchSize), log.Bool("virtualization", m.settings.VirtualizationEnabled))
	return m.settings
}

// Plan validates the workflow structure, tunes the settings to its size and returns the batches
// a run would execute.
func (m *Manager) Plan(def *model.WorkflowDefinition) ([]batcher.ExecutionBatch, Settings, error) {
	if err := graph.ValidateStructure(def); err != nil {
		return nil, Settings{}, err
	}
	settings := m.Optimize(len(def.Nodes))
	levels, err := graph.ComputeLevels(def)
	if err != nil {
		return nil, Settings{}, err
	}
	return m.newBatcher(settings).Plan(def, levels), settings, nil
}

// Abort cancels the active run, if any.
func (m *Manager) Abort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.logger.Info("Aborting active workflow run")
		m.cancel()
	}
}

// IsRunning reports whether a run is active.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// GetOptimizationStats returns a snapshot of the optimization state.
func (m *Manager) GetOptimizationStats() OptimizationStats {
	m.mu.Lock()
	settings, c := m.settings, m.counters
	m.mu.Unlock()

	return OptimizationStats{
		Settings:       settings,
		Cache:          m.cache.Stats(),
		Virtualization: m.virtualizer.GetVirtualizationStats(),
		Runs:           c.runs,
		NodesExecuted:  c.executed,
		NodesCached:    c.cached,
		NodesSkipped:   c.skipped,
		NodesFailed:    c.failed,
	}
}

// GetPerformanceStats returns a snapshot of the observed execution durations.
func (m *Manager) GetPerformanceStats() PerformanceStats {
	count, total := m.stats.Totals()
	ps := PerformanceStats{
		NodeTypes:       m.stats.Snapshot(),
		TotalExecutions: count,
		TotalDuration:   total,
	}
	if count > 0 {
		ps.AverageDuration = total / time.Duration(count)
	}
	return ps
}

// ClearCache drops every cached result.
func (m *Manager) ClearCache() {
	m.cache.Clear()
}

// ResetStats drops the execution statistics and run counters.
func (m *Manager) ResetStats() {
	m.stats.Reset()
	m.mu.Lock()
	m.counters = counters{}
	m.mu.Unlock()
}

// Close releases the resources held by the manager.
func (m *Manager) Close() {
	m.Abort()
	m.virtualizer.Stop()
}

func (m *Manager) newBatcher(settings Settings) *batcher.Batcher {
	size := settings.MaxBatchSize
	if !settings.BatchingEnabled {
		size = 0
	}
	return batcher.New(batcher.Options{MaxBatchSize: size, ShortestFirst: m.opts.ShortestFirst},
		batcher.LiveEstimator{Observed: m.stats, Declared: m.registry})
}

func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return ErrRunInProgress
	}
	m.running = true
	m.counters.runs++
	return nil
}

func (m *Manager) attach(cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancel = cancel
}

func (m *Manager) finish(outcomes map[string]model.NodeOutcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.cancel = nil
	for _, o := range outcomes {
		switch {
		case o.Cached:
			m.counters.cached++
		case o.Skipped:
			m.counters.skipped++
		case o.Status == model.NodeStatusError:
			m.counters.failed++
			m.counters.executed++
		case o.Status == model.NodeStatusSuccess:
			m.counters.executed++
		}
	}
}
