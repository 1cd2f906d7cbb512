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

package graph

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a structural defect of a workflow graph.
type ErrorKind string

const (
	// ErrorKindCycle denotes a dependency cycle.
	ErrorKindCycle ErrorKind = "cycle"
	// ErrorKindDanglingEdge denotes an edge whose source or target node does not exist.
	ErrorKindDanglingEdge ErrorKind = "dangling_edge"
	// ErrorKindDuplicateNodeID denotes two nodes sharing an id.
	ErrorKindDuplicateNodeID ErrorKind = "duplicate_node_id"
	// ErrorKindDuplicateEdgeID denotes two edges sharing an id.
	ErrorKindDuplicateEdgeID ErrorKind = "duplicate_edge_id"
)

// GraphStructureError reports a structural defect that makes a workflow unrunnable.
type GraphStructureError struct {
	Kind ErrorKind
	// NodeIDs holds the offending node ids. For cycles it is the cycle path, first node repeated last.
	NodeIDs []string
	EdgeID  string
	Message string
}

func (e *GraphStructureError) Error() string {
	switch e.Kind {
	case ErrorKindCycle:
		return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.NodeIDs, " -> "))
	case ErrorKindDanglingEdge:
		return fmt.Sprintf("edge %q references unknown node %q", e.EdgeID, strings.Join(e.NodeIDs, ", "))
	case ErrorKindDuplicateNodeID:
		return fmt.Sprintf("duplicate node id %q", strings.Join(e.NodeIDs, ", "))
	case ErrorKindDuplicateEdgeID:
		return fmt.Sprintf("duplicate edge id %q", e.EdgeID)
	}
	return e.Message
}
