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

package model

import "time"

// RunStatus is the terminal status of a workflow run.
type RunStatus string

const (
	// RunStatusSuccess denotes a run in which every batch settled without an aborting failure.
	RunStatusSuccess RunStatus = "success"
	// RunStatusFailed denotes a run aborted by a node failure.
	RunStatusFailed RunStatus = "failed"
	// RunStatusAborted denotes a run cancelled by its caller.
	RunStatusAborted RunStatus = "aborted"
)

// Skip reasons recorded on node outcomes.
const (
	SkipReasonConditionFalse  = "condition_false"
	SkipReasonConditionBroken = "condition_error"
	SkipReasonUpstreamSkipped = "upstream_skipped"
	SkipReasonRunAborted      = "run_aborted"
)

// NodeOutcome is what happened to one node during a run.
type NodeOutcome struct {
	NodeID     string        `json:"nodeId"`
	NodeType   string        `json:"nodeType"`
	Status     NodeStatus    `json:"status"`
	Cached     bool          `json:"cached,omitempty"`
	Skipped    bool          `json:"skipped,omitempty"`
	SkipReason string        `json:"skipReason,omitempty"`
	Result     interface{}   `json:"result,omitempty"`
	Err        error         `json:"-"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	Batch      int           `json:"batch"`
}

// Enabling reports whether the outcome lets dependent nodes run.
func (o NodeOutcome) Enabling() bool {
	return o.Status == NodeStatusSuccess
}

// RunResult summarizes a completed, failed or aborted run.
type RunResult struct {
	RunID       string                 `json:"runId"`
	WorkflowID  string                 `json:"workflowId"`
	Status      RunStatus              `json:"status"`
	NodeResults map[string]NodeOutcome `json:"nodeResults"`
	Batches     int                    `json:"batches"`
	StartedAt   time.Time              `json:"startedAt"`
	Duration    time.Duration          `json:"duration"`
}

// Count returns how many outcomes match the predicate.
func (r *RunResult) Count(match func(NodeOutcome) bool) int {
	n := 0
	for _, o := range r.NodeResults {
		if match(o) {
			n++
		}
	}
	return n
}
