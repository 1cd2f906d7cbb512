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

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ModelTestSuite struct {
	suite.Suite
}

func TestModelSuite(t *testing.T) {
	suite.Run(t, new(ModelTestSuite))
}

func sampleDefinition() *WorkflowDefinition {
	return &WorkflowDefinition{
		Metadata: Metadata{ID: "wf", Name: "Survey", Tags: []string{"field"}},
		Nodes: []WorkflowNode{
			{ID: "start", NodeType: "start"},
			{ID: "move", NodeType: "move_forward", Parameters: map[string]interface{}{
				"distance": 100.0,
				"profile":  map[string]interface{}{"speed": 20.0},
			}},
		},
		Edges:     []WorkflowEdge{{ID: "e1", Source: "start", Target: "move"}},
		Variables: map[string]interface{}{"battery": 80.0},
	}
}

func (suite *ModelTestSuite) TestCloneIsDeep() {
	def := sampleDefinition()

	clone := def.Clone()
	clone.Nodes[1].Parameters["profile"].(map[string]interface{})["speed"] = 50.0
	clone.Metadata.Tags[0] = "lab"
	clone.Edges[0].Target = "other"
	clone.Variables["battery"] = 10.0

	assert.Equal(suite.T(), 20.0, def.Nodes[1].Parameters["profile"].(map[string]interface{})["speed"])
	assert.Equal(suite.T(), "field", def.Metadata.Tags[0])
	assert.Equal(suite.T(), "move", def.Edges[0].Target)
	assert.Equal(suite.T(), 80.0, def.Variables["battery"])
	assert.Nil(suite.T(), (*WorkflowDefinition)(nil).Clone())
}

func (suite *ModelTestSuite) TestNodeLookup() {
	def := sampleDefinition()

	node, ok := def.Node("move")
	require.True(suite.T(), ok)
	node.Status = NodeStatusRunning

	assert.Equal(suite.T(), NodeStatusRunning, def.Nodes[1].Status)
	assert.Equal(suite.T(), map[string]int{"start": 0, "move": 1}, def.NodeIndex())

	_, ok = def.Node("missing")
	assert.False(suite.T(), ok)

	def.ResetStatus()
	assert.Equal(suite.T(), NodeStatusIdle, def.Nodes[1].Status)
}

func (suite *ModelTestSuite) TestJSONShape() {
	data, err := json.Marshal(sampleDefinition())
	require.NoError(suite.T(), err)

	var decoded map[string]interface{}
	require.NoError(suite.T(), json.Unmarshal(data, &decoded))

	assert.Contains(suite.T(), decoded, "metadata")
	assert.Contains(suite.T(), decoded, "nodes")
	assert.Contains(suite.T(), decoded, "edges")
	assert.Contains(suite.T(), decoded, "variables")
	node := decoded["nodes"].([]interface{})[1].(map[string]interface{})
	assert.Equal(suite.T(), "move_forward", node["type"])
}

func (suite *ModelTestSuite) TestEdgeIsConditional() {
	assert.True(suite.T(), WorkflowEdge{Kind: EdgeKindConditional}.IsConditional())
	assert.False(suite.T(), WorkflowEdge{}.IsConditional())
}

func (suite *ModelTestSuite) TestVariablesConcurrentAccess() {
	vars := NewVariables(map[string]interface{}{"seed": 1})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			vars.Set("k", i)
			_, _ = vars.Get("seed")
			_ = vars.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Equal(suite.T(), 2, vars.Len())
	vars.Delete("k")
	_, ok := vars.Get("k")
	assert.False(suite.T(), ok)
}

func (suite *ModelTestSuite) TestVariablesSeedIsCopied() {
	seed := map[string]interface{}{"target": map[string]interface{}{"x": 1.0}}
	vars := NewVariables(seed)

	snapshot := vars.Snapshot()
	snapshot["target"].(map[string]interface{})["x"] = 2.0

	assert.Equal(suite.T(), 1.0, seed["target"].(map[string]interface{})["x"])
	value, _ := vars.Get("target")
	assert.Equal(suite.T(), 1.0, value.(map[string]interface{})["x"])
	assert.Equal(suite.T(), 0, NewVariables(nil).Len())
}

func (suite *ModelTestSuite) TestRunResultCount() {
	result := RunResult{NodeResults: map[string]NodeOutcome{
		"a": {Status: NodeStatusSuccess, Cached: true},
		"b": {Status: NodeStatusSkipped, Skipped: true},
		"c": {Status: NodeStatusSuccess},
	}}

	assert.Equal(suite.T(), 2, result.Count(NodeOutcome.Enabling))
	assert.Equal(suite.T(), 1, result.Count(func(o NodeOutcome) bool { return o.Cached }))
}
