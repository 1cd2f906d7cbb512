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

// Package graph analyzes the dependency structure of workflow definitions. The level
// computation here is the single source of ranks for both execution batching and layout.
package graph

import (
	"sort"

	"github.com/skyforge/missionflow/internal/workflow/model"

	"go.uber.org/multierr"
)

// Levels maps node ids to their dependency level.
type Levels map[string]int

// Max returns the highest level, or -1 for an empty graph.
func (l Levels) Max() int {
	maxLevel := -1
	for _, level := range l {
		if level > maxLevel {
			maxLevel = level
		}
	}
	return maxLevel
}

// Group returns node ids grouped by level, each group in node list order.
func (l Levels) Group(def *model.WorkflowDefinition) [][]string {
	groups := make([][]string, l.Max()+1)
	for _, n := range def.Nodes {
		level, ok := l[n.ID]
		if !ok {
			continue
		}
		groups[level] = append(groups[level], n.ID)
	}
	return groups
}

// Dependencies returns, per node, the distinct source nodes of its incoming edges in edge order.
func Dependencies(def *model.WorkflowDefinition) map[string][]string {
	deps := make(map[string][]string, len(def.Nodes))
	for _, n := range def.Nodes {
		deps[n.ID] = nil
	}
	seen := make(map[[2]string]bool, len(def.Edges))
	for _, e := range def.Edges {
		pair := [2]string{e.Source, e.Target}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		deps[e.Target] = append(deps[e.Target], e.Source)
	}
	return deps
}

// Dependents returns, per node, the distinct target nodes of its outgoing edges in edge order.
func Dependents(def *model.WorkflowDefinition) map[string][]string {
	out := make(map[string][]string, len(def.Nodes))
	for _, n := range def.Nodes {
		out[n.ID] = nil
	}
	seen := make(map[[2]string]bool, len(def.Edges))
	for _, e := range def.Edges {
		pair := [2]string{e.Source, e.Target}
		if seen[pair] {
			continue
		}
		seen[pair] = true
		out[e.Source] = append(out[e.Source], e.Target)
	}
	return out
}

// IncomingEdges returns, per node, its incoming edges in edge order.
func IncomingEdges(def *model.WorkflowDefinition) map[string][]model.WorkflowEdge {
	in := make(map[string][]model.WorkflowEdge, len(def.Nodes))
	for _, e := range def.Edges {
		in[e.Target] = append(in[e.Target], e)
	}
	return in
}

// ComputeLevels assigns every node its dependency level: 0 without dependencies, otherwise one
// more than the highest level among its dependencies. A dangling edge or a cycle fails the whole
// computation with a *GraphStructureError; no node is ever given a default level.
func ComputeLevels(def *model.WorkflowDefinition) (Levels, error) {
	if err := checkEdgeEndpoints(def); err != nil {
		return nil, err
	}

	deps := Dependencies(def)
	levels := make(Levels, len(def.Nodes))
	onPath := make(map[string]int)
	var path []string

	var visit func(id string) (int, error)
	visit = func(id string) (int, error) {
		if level, ok := levels[id]; ok {
			return level, nil
		}
		if start, ok := onPath[id]; ok {
			cycle := append(append([]string{}, path[start:]...), id)
			return 0, &GraphStructureError{Kind: ErrorKindCycle, NodeIDs: cycle}
		}

		onPath[id] = len(path)
		path = append(path, id)

		level := 0
		for _, dep := range deps[id] {
			depLevel, err := visit(dep)
			if err != nil {
				return 0, err
			}
			if depLevel+1 > level {
				level = depLevel + 1
			}
		}

		path = path[:len(path)-1]
		delete(onPath, id)
		levels[id] = level
		return level, nil
	}

	for _, n := range def.Nodes {
		if _, err := visit(n.ID); err != nil {
			return nil, err
		}
	}
	return levels, nil
}

// ValidateStructure checks node and edge id uniqueness, edge endpoints and acyclicity. Every
// defect found is returned as a *GraphStructureError, combined into one error.
func ValidateStructure(def *model.WorkflowDefinition) error {
	var errs error

	nodeIDs := make(map[string]int, len(def.Nodes))
	for _, n := range def.Nodes {
		nodeIDs[n.ID]++
	}
	for _, id := range sortedDuplicates(nodeIDs) {
		errs = multierr.Append(errs, &GraphStructureError{Kind: ErrorKindDuplicateNodeID, NodeIDs: []string{id}})
	}

	edgeIDs := make(map[string]int, len(def.Edges))
	for _, e := range def.Edges {
		edgeIDs[e.ID]++
	}
	for _, id := range sortedDuplicates(edgeIDs) {
		errs = multierr.Append(errs, &GraphStructureError{Kind: ErrorKindDuplicateEdgeID, EdgeID: id})
	}

	dangling := danglingEdges(def, nodeIDs)
	for _, err := range dangling {
		errs = multierr.Append(errs, err)
	}

	// Cycle detection needs resolvable edges.
	if len(dangling) == 0 {
		if _, err := ComputeLevels(def); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func checkEdgeEndpoints(def *model.WorkflowDefinition) error {
	ids := make(map[string]int, len(def.Nodes))
	for _, n := range def.Nodes {
		ids[n.ID]++
	}
	if dangling := danglingEdges(def, ids); len(dangling) > 0 {
		return dangling[0]
	}
	return nil
}

func danglingEdges(def *model.WorkflowDefinition, nodeIDs map[string]int) []*GraphStructureError {
	var errs []*GraphStructureError
	for _, e := range def.Edges {
		var missing []string
		if nodeIDs[e.Source] == 0 {
			missing = append(missing, e.Source)
		}
		if nodeIDs[e.Target] == 0 && e.Target != e.Source {
			missing = append(missing, e.Target)
		}
		if len(missing) > 0 {
			errs = append(errs, &GraphStructureError{Kind: ErrorKindDanglingEdge, EdgeID: e.ID, NodeIDs: missing})
		}
	}
	return errs
}

func sortedDuplicates(counts map[string]int) []string {
	var dups []string
	for id, count := range counts {
		if count > 1 {
			dups = append(dups, id)
		}
	}
	sort.Strings(dups)
	return dups
}
