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

// Package model defines the data structures of a mission workflow.
package model

import (
	"time"

	"github.com/skyforge/missionflow/internal/system/utils"
)

// CurrentSchemaVersion is the version stamped on every saved workflow definition.
const CurrentSchemaVersion = "2.0.0"

// NodeStatus is the execution status of a workflow node.
type NodeStatus string

const (
	// NodeStatusIdle denotes a node that has not run.
	NodeStatusIdle NodeStatus = "idle"
	// NodeStatusRunning denotes a node whose executor is in flight.
	NodeStatusRunning NodeStatus = "running"
	// NodeStatusSuccess denotes a node that completed or was served from cache.
	NodeStatusSuccess NodeStatus = "success"
	// NodeStatusError denotes a node whose executor failed or timed out.
	NodeStatusError NodeStatus = "error"
	// NodeStatusSkipped denotes a node that was never dispatched.
	NodeStatusSkipped NodeStatus = "skipped"
)

// EdgeKind distinguishes plain dependencies from guarded ones.
type EdgeKind string

const (
	// EdgeKindDefault is an unconditional dependency.
	EdgeKindDefault EdgeKind = "default"
	// EdgeKindConditional is a dependency enabled only when its condition holds.
	EdgeKindConditional EdgeKind = "conditional"
)

// Position is the top-left canvas coordinate of a node. It carries no execution semantics.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WorkflowNode is a typed task in a mission graph.
type WorkflowNode struct {
	ID         string                 `json:"id"`
	NodeType   string                 `json:"type"`
	Label      string                 `json:"label,omitempty"`
	Position   Position               `json:"position"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Status     NodeStatus             `json:"status,omitempty"`
	Result     interface{}            `json:"result,omitempty"`
}

// WorkflowEdge is a directed dependency between two nodes.
type WorkflowEdge struct {
	ID        string   `json:"id"`
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Kind      EdgeKind `json:"kind,omitempty"`
	Condition string   `json:"condition,omitempty"`
	Label     string   `json:"label,omitempty"`
}

// IsConditional reports whether the edge is guarded by a condition.
func (e WorkflowEdge) IsConditional() bool {
	return e.Kind == EdgeKindConditional
}

// Metadata describes a stored workflow definition.
type Metadata struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Version     string    `json:"version"`
	Author      string    `json:"author"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	NodeCount   int       `json:"nodeCount"`
	EdgeCount   int       `json:"edgeCount"`
}

// WorkflowDefinition is a complete mission graph with its metadata and initial variables.
type WorkflowDefinition struct {
	Metadata  Metadata               `json:"metadata"`
	Nodes     []WorkflowNode         `json:"nodes"`
	Edges     []WorkflowEdge         `json:"edges"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// NodeIndex returns the position of every node id in the node list. Later duplicates win.
func (d *WorkflowDefinition) NodeIndex() map[string]int {
	index := make(map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		index[n.ID] = i
	}
	return index
}

// Node returns the node with the given id.
func (d *WorkflowDefinition) Node(id string) (*WorkflowNode, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// ResetStatus marks every node idle and drops cached results.
func (d *WorkflowDefinition) ResetStatus() {
	for i := range d.Nodes {
		d.Nodes[i].Status = NodeStatusIdle
		d.Nodes[i].Result = nil
	}
}

// Clone returns a deep copy of the definition.
func (d *WorkflowDefinition) Clone() *WorkflowDefinition {
	if d == nil {
		return nil
	}

	clone := &WorkflowDefinition{
		Metadata:  d.Metadata,
		Variables: utils.DeepCopyMap(d.Variables),
	}
	if d.Metadata.Tags != nil {
		clone.Metadata.Tags = append([]string{}, d.Metadata.Tags...)
	}
	if d.Nodes != nil {
		clone.Nodes = make([]WorkflowNode, len(d.Nodes))
		for i, n := range d.Nodes {
			n.Parameters = utils.DeepCopyMap(n.Parameters)
			n.Result = utils.DeepCopyValue(n.Result)
			clone.Nodes[i] = n
		}
	}
	if d.Edges != nil {
		clone.Edges = append([]WorkflowEdge{}, d.Edges...)
	}
	return clone
}
