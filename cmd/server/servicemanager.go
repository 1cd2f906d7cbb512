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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skyforge/missionflow/internal/execution/condition"
	"github.com/skyforge/missionflow/internal/execution/performance"
	"github.com/skyforge/missionflow/internal/execution/resultcache"
	"github.com/skyforge/missionflow/internal/render/layout"
	"github.com/skyforge/missionflow/internal/render/viewport"
	"github.com/skyforge/missionflow/internal/system/cache"
	"github.com/skyforge/missionflow/internal/system/config"
	"github.com/skyforge/missionflow/internal/system/database/provider"
	"github.com/skyforge/missionflow/internal/system/healthcheck"
	"github.com/skyforge/missionflow/internal/system/log"
	"github.com/skyforge/missionflow/internal/workflow"
	"github.com/skyforge/missionflow/internal/workflow/nodetype"
	"github.com/skyforge/missionflow/internal/workflow/store"
)

const (
	storageTypeMemory   = "memory"
	storageTypeFile     = "file"
	storageTypeDatabase = "database"

	defaultStorageDirectory = "repository/data/workflows"
)

// serviceManager assembles the services of the server from its configuration.
type serviceManager struct {
	mux        *http.ServeMux
	cfg        *config.Config
	serverHome string
	closers    []func() error
	logger     *log.Logger
}

// newServiceManager creates a service manager registering routes on mux.
func newServiceManager(mux *http.ServeMux, cfg *config.Config, serverHome string) *serviceManager {
	return &serviceManager{
		mux:        mux,
		cfg:        cfg,
		serverHome: serverHome,
		logger:     log.GetLogger().With(log.String(log.LoggerKeyComponentName, "ServiceManager")),
	}
}

// RegisterServices builds the workflow services and registers their routes. Background work
// started here stops when ctx is done.
func (sm *serviceManager) RegisterServices(ctx context.Context) error {
	registry, err := buildRegistry(sm.cfg.NodeTypes)
	if err != nil {
		return err
	}
	managerOpts, err := buildManagerOptions(sm.cfg, registry)
	if err != nil {
		return err
	}
	layoutOpts, err := buildLayoutOptions(sm.cfg.Layout)
	if err != nil {
		return err
	}

	health := healthcheck.NewHealthCheckService()
	blobs, err := sm.openBlobStore(health)
	if err != nil {
		return err
	}

	workflowStore := store.New(blobs, sm.cfg.Storage.CollectionKey, registry)
	if err := sm.importWorkflows(workflowStore); err != nil {
		sm.logger.Warn("Some workflows could not be imported", log.Error(err))
	}

	manager := performance.NewManager(managerOpts)
	sm.closers = append(sm.closers, func() error {
		manager.Close()
		return nil
	})
	if interval := sm.cfg.Cache.CleanupInterval; interval > 0 {
		cache.RunCleanup(ctx, time.Duration(interval)*time.Second, manager.Cache())
	}

	workflow.Initialize(sm.mux, workflowStore, manager, layoutOpts)
	healthcheck.NewHealthCheckHandler(health).RegisterRoutes(sm.mux)

	sm.logger.Info("Services registered", log.String("storage", storageType(sm.cfg.Storage)),
		log.Int("nodeTypes", len(registry.List())))
	return nil
}

// Close releases the resources opened by RegisterServices, last opened first.
func (sm *serviceManager) Close() {
	for i := len(sm.closers) - 1; i >= 0; i-- {
		if err := sm.closers[i](); err != nil {
			sm.logger.Error("Failed to release resource", log.Error(err))
		}
	}
	sm.closers = nil
}

func (sm *serviceManager) openBlobStore(health *healthcheck.HealthCheckService) (store.BlobStore, error) {
	storage := sm.cfg.Storage
	collectionKey := storage.CollectionKey
	if collectionKey == "" {
		collectionKey = store.DefaultCollectionKey
	}

	switch storageType(storage) {
	case storageTypeMemory:
		return store.NewMemoryBlobStore(), nil
	case storageTypeFile:
		dir := storage.Directory
		if dir == "" {
			dir = defaultStorageDirectory
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(sm.serverHome, dir)
		}
		blobs, err := store.NewFileBlobStore(dir, storage.Watch)
		if err != nil {
			return nil, err
		}
		sm.closers = append(sm.closers, blobs.Close)
		health.Register("WorkflowStore", func() error {
			_, _, err := blobs.Get(collectionKey)
			return err
		})
		return blobs, nil
	case storageTypeDatabase:
		dbProvider := provider.NewDBProvider(sm.serverHome, sm.cfg.Database.Workflow)
		sm.closers = append(sm.closers, dbProvider.Close)
		blobs := store.NewDBBlobStore(dbProvider)
		if err := blobs.EnsureSchema(); err != nil {
			return nil, err
		}
		health.Register("WorkflowDB",
			healthcheck.DatabaseCheck(dbProvider, provider.WorkflowDB, store.QueryCheckBlobTable))
		return blobs, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", storage.Type)
	}
}

func (sm *serviceManager) importWorkflows(workflowStore *store.Store) error {
	pattern := sm.cfg.Storage.ImportPattern
	if pattern == "" {
		return nil
	}
	results, err := workflowStore.ImportDirectory(os.DirFS(sm.serverHome), pattern)
	sm.logger.Info("Imported workflows", log.String("pattern", pattern), log.Int("count", len(results)))
	return err
}

func storageType(storage config.StorageConfig) string {
	if storage.Type == "" {
		return storageTypeFile
	}
	return strings.ToLower(storage.Type)
}

// buildRegistry returns the built-in node types with the configured capability overrides.
func buildRegistry(overrides []config.NodeTypeOverride) (*nodetype.Registry, error) {
	registry := nodetype.DefaultRegistry()
	converted := make([]nodetype.Override, 0, len(overrides))
	for _, o := range overrides {
		if o.Pattern == "" {
			return nil, errors.New("node type override without pattern")
		}
		converted = append(converted, nodetype.Override{
			Pattern:                o.Pattern,
			Cacheable:              o.Cacheable,
			ContinueOnFail:         o.ContinueOnFail,
			ToleratesMissingInputs: o.ToleratesMissingInputs,
			Timeout:                time.Duration(o.Timeout) * time.Millisecond,
		})
	}
	if err := registry.ApplyOverrides(converted); err != nil {
		return nil, err
	}
	return registry, nil
}

// buildManagerOptions maps the cache, execution and viewport sections onto manager options.
func buildManagerOptions(cfg *config.Config, registry *nodetype.Registry) (performance.Options, error) {
	opts := performance.DefaultOptions()
	opts.Registry = registry

	policy, err := condition.ParsePolicy(cfg.Execution.ConditionPolicy)
	if err != nil {
		return opts, err
	}
	opts.ConditionPolicy = policy
	if cfg.Execution.MaxBatchSize > 0 {
		opts.MaxBatchSize = cfg.Execution.MaxBatchSize
	}
	if cfg.Execution.NodeTimeout > 0 {
		opts.NodeTimeout = time.Duration(cfg.Execution.NodeTimeout) * time.Millisecond
	}
	opts.TransitiveSkip = config.BoolOrDefault(cfg.Execution.TransitiveSkip, opts.TransitiveSkip)
	opts.ShortestFirst = config.BoolOrDefault(cfg.Execution.ShortestFirst, opts.ShortestFirst)
	opts.AutoTune = config.BoolOrDefault(cfg.Execution.AutoTune, opts.AutoTune)
	opts.ValidateParameters = config.BoolOrDefault(cfg.Execution.ValidateOnExecute, opts.ValidateParameters)

	opts.Cache = resultcache.Options{
		Disabled:       cfg.Cache.Disabled,
		Size:           cfg.Cache.Size,
		TTL:            time.Duration(cfg.Cache.TTL) * time.Millisecond,
		EvictionPolicy: cache.EvictionPolicy(strings.ToUpper(cfg.Cache.EvictionPolicy)),
	}
	opts.Viewport = viewport.Options{
		Threshold:  cfg.Viewport.Threshold,
		BufferZone: cfg.Viewport.BufferZone,
		Debounce:   time.Duration(cfg.Viewport.Debounce) * time.Millisecond,
		NodeWidth:  cfg.Layout.NodeWidth,
		NodeHeight: cfg.Layout.NodeHeight,
	}
	return opts, nil
}

// buildLayoutOptions maps the layout section onto layout options. Unset values keep the
// defaults and a negative grid size disables snapping.
func buildLayoutOptions(lc config.LayoutConfig) (layout.Options, error) {
	opts := layout.DefaultOptions()
	direction, err := layout.ParseDirection(lc.Direction)
	if err != nil {
		return opts, err
	}
	opts.Direction = direction

	setIfPositive(&opts.NodeWidth, lc.NodeWidth)
	setIfPositive(&opts.NodeHeight, lc.NodeHeight)
	setIfPositive(&opts.NodeSpacing, lc.NodeSpacing)
	setIfPositive(&opts.RankSpacing, lc.RankSpacing)
	setIfPositive(&opts.MinDistance, lc.MinDistance)
	switch {
	case lc.GridSize < 0:
		opts.GridSize = 0
	case lc.GridSize > 0:
		opts.GridSize = lc.GridSize
	}
	return opts, nil
}

func setIfPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
