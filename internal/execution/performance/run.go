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

package performance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skyforge/missionflow/internal/execution/batcher"
	"github.com/skyforge/missionflow/internal/execution/resultcache"
	"github.com/skyforge/missionflow/internal/system/cache"
	"github.com/skyforge/missionflow/internal/system/log"
	"github.com/skyforge/missionflow/internal/system/utils"
	"github.com/skyforge/missionflow/internal/workflow/graph"
	"github.com/skyforge/missionflow/internal/workflow/model"
	"github.com/skyforge/missionflow/internal/workflow/nodetype"
)

// Run executes the workflow batch by batch. Batches run strictly one after another; the
// members of a batch run concurrently and the next batch starts once all of them settled.
// Node statuses are written onto def as the run progresses.
//
// Structural defects and invalid parameters fail the run before any node is dispatched. A node
// failure aborts the run with an *ExecutionError unless its type continues on failure. The
// returned result is non-nil whenever any node was dispatched.
func (m *Manager) Run(ctx context.Context, def *model.WorkflowDefinition, exec Executor) (*model.RunResult, error) {
	if err := graph.ValidateStructure(def); err != nil {
		return nil, err
	}
	if m.opts.ValidateParameters {
		if err := m.registry.ValidateParameters(def); err != nil {
			return nil, err
		}
	}

	if err := m.begin(); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.attach(cancel)
	defer cancel()

	batches, settings, err := m.Plan(def)
	if err != nil {
		m.finish(nil)
		return nil, err
	}

	r := m.newRun(def, exec)
	logger := m.logger.With(log.String(log.LoggerKeyRunID, r.result.RunID),
		log.String(log.LoggerKeyWorkflowID, def.Metadata.ID))
	logger.Info("Workflow run started", log.Int("nodes", len(def.Nodes)), log.Int("batches", len(batches)),
		log.Int("maxBatchSize", settings.MaxBatchSize))

	runErr := r.execute(runCtx, batches)

	r.result.Duration = time.Since(r.result.StartedAt)
	r.result.Batches = len(batches)
	switch {
	case runErr == nil && runCtx.Err() != nil:
		r.result.Status = model.RunStatusAborted
		runErr = ErrRunAborted
	case runErr == nil:
		r.result.Status = model.RunStatusSuccess
	default:
		r.result.Status = model.RunStatusFailed
	}
	m.finish(r.result.NodeResults)

	if runErr != nil {
		logger.Error("Workflow run ended", log.String("status", string(r.result.Status)),
			log.Duration("duration", r.result.Duration), log.Error(runErr))
	} else {
		logger.Info("Workflow run completed", log.Duration("duration", r.result.Duration),
			log.Int("skipped", r.result.Count(func(o model.NodeOutcome) bool { return o.Skipped })),
			log.Int("cached", r.result.Count(func(o model.NodeOutcome) bool { return o.Cached })))
	}
	return r.result, runErr
}

// run holds the state of one workflow run.
type run struct {
	m        *Manager
	def      *model.WorkflowDefinition
	exec     Executor
	vars     *model.Variables
	index    map[string]int
	incoming map[string][]model.WorkflowEdge
	scope    resultcache.ScopeKey
	logger   *log.Logger

	mu     sync.Mutex
	result *model.RunResult
}

func (m *Manager) newRun(def *model.WorkflowDefinition, exec Executor) *run {
	def.ResetStatus()
	scope := m.opts.Scope
	if scope == "" {
		scope = resultcache.ScopeKey(def.Metadata.ID)
	}
	runID := utils.GenerateUUID()
	return &run{
		m:        m,
		def:      def,
		exec:     exec,
		vars:     model.NewVariables(def.Variables),
		index:    def.NodeIndex(),
		incoming: graph.IncomingEdges(def),
		scope:    scope,
		logger:   m.logger.With(log.String(log.LoggerKeyRunID, runID)),
		result: &model.RunResult{
			RunID:       runID,
			WorkflowID:  def.Metadata.ID,
			NodeResults: make(map[string]model.NodeOutcome, len(def.Nodes)),
			StartedAt:   time.Now(),
		},
	}
}

// execute runs the batches in order and returns the error that aborted the run, if any.
func (r *run) execute(ctx context.Context, batches []batcher.ExecutionBatch) error {
	for i, batch := range batches {
		if ctx.Err() != nil {
			r.abortRemaining(batches[i:])
			return nil
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(len(batch.NodeIDs))
		for _, id := range batch.NodeIDs {
			g.Go(func() error {
				return r.runNode(gctx, id, batch.Index)
			})
		}
		if err := g.Wait(); err != nil {
			r.abortRemaining(batches[i+1:])
			return err
		}
	}
	return nil
}

// runNode takes one node through skip evaluation, cache lookup and dispatch. It returns an
// error only when the failure must abort the run.
func (r *run) runNode(ctx context.Context, id string, batchIndex int) error {
	node := r.node(id)
	nodeType := r.m.registry.Get(node.NodeType)
	outcome := model.NodeOutcome{NodeID: id, NodeType: node.NodeType, Batch: batchIndex}

	if d := r.decideSkip(node, nodeType); d.skip {
		outcome.Status = model.NodeStatusSkipped
		outcome.Skipped = true
		outcome.SkipReason = d.reason
		if d.err != nil {
			outcome.Error = d.err.Error()
		}
		r.logger.Debug("Node skipped", log.String(log.LoggerKeyNodeID, id), log.String("reason", d.reason))
		r.record(outcome, nil)
		return nil
	}

	key, cacheable := r.cacheKey(node)
	if cacheable {
		if value, hit := r.m.cache.Lookup(key); hit {
			outcome.Status = model.NodeStatusSuccess
			outcome.Cached = true
			outcome.Result = value
			r.record(outcome, value)
			return nil
		}
	}

	// A sibling failure or an abort may have cancelled the batch before this node started.
	if ctx.Err() != nil {
		outcome.Status = model.NodeStatusSkipped
		outcome.Skipped = true
		outcome.SkipReason = model.SkipReasonRunAborted
		r.record(outcome, nil)
		return nil
	}

	r.setStatus(id, model.NodeStatusRunning)
	value, duration, err := r.dispatch(ctx, node, nodeType)
	outcome.Duration = duration
	if err != nil {
		outcome.Status = model.NodeStatusError
		outcome.Err = err
		outcome.Error = err.Error()
		r.record(outcome, nil)
		var execErr *ExecutionError
		if !errors.As(err, &execErr) {
			// Cancelled with the run; the error that aborted it is reported by its own node.
			return nil
		}
		if nodeType.ContinueOnFail {
			r.logger.Warn("Node failed, continuing run", log.String(log.LoggerKeyNodeID, id),
				log.String(log.LoggerKeyNodeType, node.NodeType), log.Error(err))
			return nil
		}
		return err
	}

	r.m.stats.Record(node.NodeType, duration)
	if cacheable {
		r.m.cache.Store(key, value)
	}
	outcome.Status = model.NodeStatusSuccess
	outcome.Result = value
	r.record(outcome, value)
	return nil
}

// dispatch calls the executor under the node timeout and stops waiting once the timeout or
// the run cancellation fires.
func (r *run) dispatch(ctx context.Context, node model.WorkflowNode,
	nodeType nodetype.Type) (interface{}, time.Duration, error) {
	timeout := nodeType.Timeout
	if timeout <= 0 {
		timeout = r.m.opts.NodeTimeout
	}
	nodeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		value interface{}
		err   error
	}
	done := make(chan reply, 1)
	start := time.Now()
	go func() {
		value, err := safeExecute(nodeCtx, r.exec, node, r.vars)
		done <- reply{value: value, err: err}
	}()

	select {
	case res := <-done:
		elapsed := time.Since(start)
		if res.err != nil {
			if ctx.Err() != nil {
				return nil, elapsed, res.err
			}
			return nil, elapsed, &ExecutionError{NodeID: node.ID, NodeType: node.NodeType,
				TimedOut: isTimeout(nodeCtx, ctx), Cause: res.err}
		}
		return res.value, elapsed, nil
	case <-nodeCtx.Done():
		elapsed := time.Since(start)
		if isTimeout(nodeCtx, ctx) {
			return nil, elapsed, &ExecutionError{NodeID: node.ID, NodeType: node.NodeType, TimedOut: true,
				Cause: fmt.Errorf("no result within %s: %w", timeout, nodeCtx.Err())}
		}
		return nil, elapsed, ctx.Err()
	}
}

type skipDecision struct {
	skip   bool
	reason string
	// err describes a broken condition resolved by the policy.
	err error
}

// decideSkip decides whether a node must not be dispatched. Without any enabling incoming
// edge the node is skipped, reporting a condition reason when an edge condition disabled it.
// Condition nodes are then skipped when their own condition does not hold.
func (r *run) decideSkip(node model.WorkflowNode, nodeType nodetype.Type) skipDecision {
	edges := r.incoming[node.ID]

	if r.m.opts.TransitiveSkip && len(edges) > 0 && !nodeType.ToleratesMissingInputs {
		blocked := skipDecision{skip: true, reason: model.SkipReasonUpstreamSkipped}
		enabled := false
		for _, edge := range edges {
			d := r.edgeDecision(node.ID, edge)
			if !d.skip {
				enabled = true
				break
			}
			if blocked.reason != model.SkipReasonConditionBroken && d.reason != model.SkipReasonUpstreamSkipped {
				blocked = d
			}
		}
		if !enabled {
			return blocked
		}
	}

	if !nodeType.IsCondition {
		return skipDecision{}
	}
	decision := r.m.evaluator.Decide(node.ID, conditionOf(node, edges), r.vars.Snapshot())
	switch {
	case decision.Proceed:
		return skipDecision{}
	case decision.Err != nil:
		return skipDecision{skip: true, reason: model.SkipReasonConditionBroken, err: decision.Err}
	default:
		return skipDecision{skip: true, reason: model.SkipReasonConditionFalse}
	}
}

// edgeDecision reports whether an incoming edge blocks its target: the source did not succeed
// or the edge condition does not hold.
func (r *run) edgeDecision(target string, edge model.WorkflowEdge) skipDecision {
	r.mu.Lock()
	source, ok := r.result.NodeResults[edge.Source]
	r.mu.Unlock()
	if !ok || !source.Enabling() {
		return skipDecision{skip: true, reason: model.SkipReasonUpstreamSkipped}
	}
	if !edge.IsConditional() || edge.Condition == "" {
		return skipDecision{}
	}
	decision := r.m.evaluator.Decide(target, edge.Condition, r.vars.Snapshot())
	switch {
	case decision.Proceed:
		return skipDecision{}
	case decision.Err != nil:
		return skipDecision{skip: true, reason: model.SkipReasonConditionBroken, err: decision.Err}
	default:
		return skipDecision{skip: true, reason: model.SkipReasonConditionFalse}
	}
}

// conditionOf returns the expression guarding a condition node: its own condition parameter,
// else the condition of its first incoming conditional edge.
func conditionOf(node model.WorkflowNode, incoming []model.WorkflowEdge) string {
	if expr, ok := node.Parameters["condition"].(string); ok && expr != "" {
		return expr
	}
	for _, edge := range incoming {
		if edge.IsConditional() && edge.Condition != "" {
			return edge.Condition
		}
	}
	return ""
}

func (r *run) cacheKey(node model.WorkflowNode) (cache.CacheKey, bool) {
	if !r.m.cache.Cacheable(node.NodeType) {
		return cache.CacheKey{}, false
	}
	key, err := r.m.cache.Key(r.scope, node.NodeType, node.Parameters)
	if err != nil {
		r.logger.Warn("Result caching skipped for node", log.String(log.LoggerKeyNodeID, node.ID), log.Error(err))
		return cache.CacheKey{}, false
	}
	return key, true
}

// abortRemaining marks every node of the given batches as skipped because the run ended.
func (r *run) abortRemaining(batches []batcher.ExecutionBatch) {
	for _, batch := range batches {
		for _, id := range batch.NodeIDs {
			r.record(model.NodeOutcome{
				NodeID:     id,
				NodeType:   r.node(id).NodeType,
				Status:     model.NodeStatusSkipped,
				Skipped:    true,
				SkipReason: model.SkipReasonRunAborted,
				Batch:      batch.Index,
			}, nil)
		}
	}
}

func (r *run) node(id string) model.WorkflowNode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.def.Nodes[r.index[id]]
}

func (r *run) setStatus(id string, status model.NodeStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.def.Nodes[r.index[id]].Status = status
}

func (r *run) record(outcome model.NodeOutcome, result interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.result.NodeResults[outcome.NodeID] = outcome
	n := &r.def.Nodes[r.index[outcome.NodeID]]
	n.Status = outcome.Status
	n.Result = result
}
