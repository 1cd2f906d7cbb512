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

// Package batcher partitions a workflow into ordered batches of nodes that may run concurrently.
package batcher

import (
	"sort"
	"time"

	"github.com/skyforge/missionflow/internal/workflow/graph"
	"github.com/skyforge/missionflow/internal/workflow/model"
)

// DefaultMaxBatchSize is the batch size used when none is configured.
const DefaultMaxBatchSize = 10

// ExecutionBatch is a group of nodes of one dependency level dispatched together.
type ExecutionBatch struct {
	Index    int      `json:"index"`
	Level    int      `json:"level"`
	Priority int      `json:"priority"`
	NodeIDs  []string `json:"nodeIds"`
	// EstimatedDuration is the largest estimate among the members.
	EstimatedDuration time.Duration `json:"estimatedDuration"`
}

// Estimator predicts how long a node type takes to execute.
type Estimator interface {
	Estimate(nodeType string) time.Duration
}

// AverageSource supplies observed average durations per node type.
type AverageSource interface {
	Average(nodeType string) (time.Duration, bool)
}

// LiveEstimator prefers observed averages and falls back to declared estimates.
type LiveEstimator struct {
	Observed AverageSource
	Declared Estimator
}

// Estimate implements Estimator.
func (e LiveEstimator) Estimate(nodeType string) time.Duration {
	if e.Observed != nil {
		if avg, ok := e.Observed.Average(nodeType); ok && avg > 0 {
			return avg
		}
	}
	if e.Declared != nil {
		return e.Declared.Estimate(nodeType)
	}
	return time.Second
}

// Options tunes batch planning.
type Options struct {
	// MaxBatchSize caps the members of one batch. Zero or negative means unbounded.
	MaxBatchSize int
	// ShortestFirst orders members of a batch by ascending estimate.
	ShortestFirst bool
}

// Batcher plans execution batches.
type Batcher struct {
	opts      Options
	estimator Estimator
}

// New creates a batcher.
func New(opts Options, estimator Estimator) *Batcher {
	return &Batcher{opts: opts, estimator: estimator}
}

// Options returns the planning options.
func (b *Batcher) Options() Options {
	return b.opts
}

// Plan groups nodes by level and splits every level into batches of at most MaxBatchSize,
// in definition order. With ShortestFirst the members of each batch are then sorted stably
// by ascending estimate.
func (b *Batcher) Plan(def *model.WorkflowDefinition, levels graph.Levels) []ExecutionBatch {
	nodeTypes := make(map[string]string, len(def.Nodes))
	for _, n := range def.Nodes {
		nodeTypes[n.ID] = n.NodeType
	}

	estimates := make(map[string]time.Duration, len(nodeTypes))
	for id, nodeType := range nodeTypes {
		estimates[id] = b.estimate(nodeType)
	}

	batches := make([]ExecutionBatch, 0)
	for level, ids := range levels.Group(def) {
		if len(ids) == 0 {
			continue
		}
		size := b.opts.MaxBatchSize
		if size <= 0 {
			size = len(ids)
		}
		for start := 0; start < len(ids); start += size {
			end := start + size
			if end > len(ids) {
				end = len(ids)
			}
			members := append([]string(nil), ids[start:end]...)
			if b.opts.ShortestFirst {
				sort.SliceStable(members, func(i, j int) bool {
					return estimates[members[i]] < estimates[members[j]]
				})
			}

			var longest time.Duration
			for _, id := range members {
				if estimates[id] > longest {
					longest = estimates[id]
				}
			}
			batches = append(batches, ExecutionBatch{
				Index:             len(batches),
				Level:             level,
				Priority:          level,
				NodeIDs:           members,
				EstimatedDuration: longest,
			})
		}
	}
	return batches
}

// TotalEstimate sums the estimates of sequential batches.
func TotalEstimate(batches []ExecutionBatch) time.Duration {
	var total time.Duration
	for _, batch := range batches {
		total += batch.EstimatedDuration
	}
	return total
}

func (b *Batcher) estimate(nodeType string) time.Duration {
	if b.estimator == nil {
		return time.Second
	}
	return b.estimator.Estimate(nodeType)
}
