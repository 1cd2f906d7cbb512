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

package workflow

import (
	"time"

	"github.com/skyforge/missionflow/internal/execution/batcher"
	"github.com/skyforge/missionflow/internal/execution/performance"
	"github.com/skyforge/missionflow/internal/render/viewport"
	"github.com/skyforge/missionflow/internal/workflow/model"
)

// ValidationIssue is one defect found while validating a workflow.
type ValidationIssue struct {
	Kind     string            `json:"kind"`
	NodeIDs  []string          `json:"nodeIds,omitempty"`
	EdgeID   string            `json:"edgeId,omitempty"`
	NodeType string            `json:"nodeType,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
	Message  string            `json:"message"`
}

// ValidationResponse is the outcome of validating a workflow.
type ValidationResponse struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationIssue `json:"errors"`
	Warnings []string          `json:"warnings"`
}

// PlanResponse is the execution plan of a workflow.
type PlanResponse struct {
	WorkflowID        string                   `json:"workflowId"`
	Settings          performance.Settings     `json:"settings"`
	Batches           []batcher.ExecutionBatch `json:"batches"`
	EstimatedDuration time.Duration            `json:"estimatedDuration"`
}

// LayoutRequest asks for an automatic layout of a stored workflow.
type LayoutRequest struct {
	Direction string `json:"direction,omitempty"`
	// Persist stores the laid out definition.
	Persist bool `json:"persist,omitempty"`
}

// LayoutResponse carries the computed node positions.
type LayoutResponse struct {
	WorkflowID string                    `json:"workflowId"`
	Direction  string                    `json:"direction"`
	Positions  map[string]model.Position `json:"positions"`
	Persisted  bool                      `json:"persisted"`
}

// VisibleRequest describes the canvas a client is rendering.
type VisibleRequest struct {
	Viewport viewport.Viewport `json:"viewport"`
	Width    float64           `json:"width"`
	Height   float64           `json:"height"`
}

// VisibleResponse is the part of a workflow that should be rendered.
type VisibleResponse struct {
	Nodes []model.WorkflowNode         `json:"nodes"`
	Edges []model.WorkflowEdge         `json:"edges"`
	Stats viewport.VirtualizationStats `json:"stats"`
}

// StatsResponse groups the optimization and performance statistics of the server.
type StatsResponse struct {
	Optimization performance.OptimizationStats `json:"optimization"`
	Performance  performance.PerformanceStats  `json:"performance"`
}
