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

package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/skyforge/missionflow/internal/workflow/model"
)

// LegacyAuthor is the author recorded on definitions migrated from the legacy format.
const LegacyAuthor = "unknown"

// IsLegacy reports whether a stored definition predates the metadata envelope: it has no
// metadata object but carries a top-level id or name.
func IsLegacy(raw gjson.Result) bool {
	if !raw.IsObject() || raw.Get("metadata").Exists() {
		return false
	}
	return raw.Get("id").Exists() || raw.Get("name").Exists()
}

// MigrateLegacy converts a legacy definition into the current format. Nodes may carry their
// parameters and label either at the top level or under data.
func MigrateLegacy(raw gjson.Result, now time.Time) (*model.WorkflowDefinition, error) {
	stamp := now
	if ts := raw.Get("timestamp"); ts.Exists() {
		parsed, err := parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		stamp = parsed
	}

	def := &model.WorkflowDefinition{
		Metadata: model.Metadata{
			ID:          raw.Get("id").String(),
			Name:        raw.Get("name").String(),
			Description: raw.Get("description").String(),
			Version:     model.CurrentSchemaVersion,
			Author:      LegacyAuthor,
			Tags:        []string{},
			CreatedAt:   stamp,
			UpdatedAt:   stamp,
		},
		Nodes: make([]model.WorkflowNode, 0),
		Edges: make([]model.WorkflowEdge, 0),
	}

	var err error
	raw.Get("nodes").ForEach(func(_, n gjson.Result) bool {
		node := model.WorkflowNode{
			ID:       n.Get("id").String(),
			NodeType: firstString(n, "type", "data.type", "data.nodeType"),
			Label:    firstString(n, "label", "data.label"),
			Position: model.Position{X: n.Get("position.x").Float(), Y: n.Get("position.y").Float()},
			Status:   model.NodeStatusIdle,
		}
		params := firstExisting(n, "parameters", "data.parameters", "data.params")
		if params.IsObject() {
			if err = json.Unmarshal([]byte(params.Raw), &node.Parameters); err != nil {
				err = fmt.Errorf("invalid parameters of legacy node %q: %w", node.ID, err)
				return false
			}
		}
		def.Nodes = append(def.Nodes, node)
		return true
	})
	if err != nil {
		return nil, err
	}

	raw.Get("edges").ForEach(func(_, e gjson.Result) bool {
		edge := model.WorkflowEdge{
			ID:        e.Get("id").String(),
			Source:    e.Get("source").String(),
			Target:    e.Get("target").String(),
			Kind:      model.EdgeKindDefault,
			Condition: firstString(e, "condition", "data.condition"),
			Label:     e.Get("label").String(),
		}
		if edge.Condition != "" {
			edge.Kind = model.EdgeKindConditional
		}
		def.Edges = append(def.Edges, edge)
		return true
	})

	if vars := raw.Get("variables"); vars.IsObject() {
		if err := json.Unmarshal([]byte(vars.Raw), &def.Variables); err != nil {
			return nil, fmt.Errorf("invalid legacy variables: %w", err)
		}
	}

	def.Metadata.NodeCount = len(def.Nodes)
	def.Metadata.EdgeCount = len(def.Edges)
	return def, nil
}

// parseTimestamp accepts epoch milliseconds or an RFC 3339 string.
func parseTimestamp(ts gjson.Result) (time.Time, error) {
	switch ts.Type {
	case gjson.Number:
		return time.UnixMilli(ts.Int()).UTC(), nil
	case gjson.String:
		parsed, err := time.Parse(time.RFC3339Nano, ts.String())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid legacy timestamp %q: %w", ts.String(), err)
		}
		return parsed.UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("invalid legacy timestamp %s", ts.Raw)
	}
}

func firstExisting(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func firstString(r gjson.Result, paths ...string) string {
	return firstExisting(r, paths...).String()
}
