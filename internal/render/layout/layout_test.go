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

package layout

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/skyforge/missionflow/internal/workflow/graph"
	"github.com/skyforge/missionflow/internal/workflow/model"
)

const epsilon = 1e-6

type LayoutTestSuite struct {
	suite.Suite
}

func TestLayoutSuite(t *testing.T) {
	suite.Run(t, new(LayoutTestSuite))
}

func chain(ids ...string) *model.WorkflowDefinition {
	def := &model.WorkflowDefinition{}
	for i, id := range ids {
		def.Nodes = append(def.Nodes, model.WorkflowNode{ID: id, NodeType: "hover"})
		if i > 0 {
			def.Edges = append(def.Edges, model.WorkflowEdge{ID: fmt.Sprintf("e%d", i), Source: ids[i-1], Target: id})
		}
	}
	return def
}

func (suite *LayoutTestSuite) assertSeparated(positions map[string]model.Position, opts Options) {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	for i := range ids {
		for j := i + 1; j < len(ids); j++ {
			a, b := positions[ids[i]], positions[ids[j]]
			assert.False(suite.T(), Overlaps(a, b, opts.NodeWidth-epsilon, opts.NodeHeight-epsilon),
				"%s at %v overlaps %s at %v", ids[i], a, ids[j], b)
			assert.GreaterOrEqual(suite.T(), math.Hypot(a.X-b.X, a.Y-b.Y), opts.MinDistance-epsilon,
				"%s and %s are too close", ids[i], ids[j])
		}
	}
}

func (suite *LayoutTestSuite) TestChainTopBottom() {
	positions, err := NewEngine(Options{}).Compute(chain("start", "a", "b"))

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), model.Position{X: -100, Y: -40}, positions["start"])
	assert.Equal(suite.T(), model.Position{X: -100, Y: 190}, positions["a"])
	assert.Equal(suite.T(), model.Position{X: -100, Y: 420}, positions["b"])
}

func (suite *LayoutTestSuite) TestChainLeftRight() {
	positions, err := NewEngine(Options{Direction: LeftRight}).Compute(chain("start", "a"))

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), model.Position{X: -100, Y: -40}, positions["start"])
	assert.Equal(suite.T(), model.Position{X: 250, Y: -40}, positions["a"])
}

func (suite *LayoutTestSuite) TestRankIsCenteredAtZero() {
	def := &model.WorkflowDefinition{
		Nodes: []model.WorkflowNode{{ID: "s"}, {ID: "a"}, {ID: "b"}},
		Edges: []model.WorkflowEdge{{ID: "1", Source: "s", Target: "a"}, {ID: "2", Source: "s", Target: "b"}},
	}

	positions, err := NewEngine(Options{}).Compute(def)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), model.Position{X: -225, Y: 190}, positions["a"])
	assert.Equal(suite.T(), model.Position{X: 25, Y: 190}, positions["b"])
}

func (suite *LayoutTestSuite) TestDiamondUsesSharedLevels() {
	def := &model.WorkflowDefinition{
		Nodes: []model.WorkflowNode{{ID: "s"}, {ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}},
		Edges: []model.WorkflowEdge{
			{ID: "1", Source: "s", Target: "a"},
			{ID: "2", Source: "a", Target: "b"},
			{ID: "3", Source: "b", Target: "d"},
			{ID: "4", Source: "s", Target: "c"},
			{ID: "5", Source: "c", Target: "d"},
		},
	}
	levels, err := graph.ComputeLevels(def)
	require.NoError(suite.T(), err)

	positions, err := NewEngine(Options{}).Compute(def)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, levels["d"])
	assert.Equal(suite.T(), float64(levels["d"])*230-40, positions["d"].Y)
}

func (suite *LayoutTestSuite) TestTightSpacingIsResolved() {
	opts := Options{NodeSpacing: 10, MinDistance: 220}
	def := &model.WorkflowDefinition{Nodes: []model.WorkflowNode{{ID: "s"}}}
	for i := 0; i < 8; i++ {
		id := fmt.Sprintf("n%d", i)
		def.Nodes = append(def.Nodes, model.WorkflowNode{ID: id})
		def.Edges = append(def.Edges, model.WorkflowEdge{ID: id, Source: "s", Target: id})
	}

	engine := NewEngine(opts)
	positions, err := engine.Compute(def)

	require.NoError(suite.T(), err)
	require.Len(suite.T(), positions, 9)
	suite.assertSeparated(positions, engine.Options())
}

func (suite *LayoutTestSuite) TestGridSnap() {
	def := chain("start", "a", "b", "c")

	engine := NewEngine(DefaultOptions())
	positions, err := engine.Compute(def)

	require.NoError(suite.T(), err)
	for id, pos := range positions {
		assert.InDelta(suite.T(), 0, math.Mod(pos.X, 20), epsilon, "x of %s", id)
		assert.InDelta(suite.T(), 0, math.Mod(pos.Y, 20), epsilon, "y of %s", id)
	}
	suite.assertSeparated(positions, engine.Options())
}

func (suite *LayoutTestSuite) TestGridSnapDoesNotReintroduceConflicts() {
	opts := Options{NodeSpacing: 205, MinDistance: 205, GridSize: 50}
	def := &model.WorkflowDefinition{Nodes: []model.WorkflowNode{{ID: "a"}, {ID: "b"}, {ID: "c"}}}

	engine := NewEngine(opts)
	positions, err := engine.Compute(def)

	require.NoError(suite.T(), err)
	suite.assertSeparated(positions, engine.Options())
}

func (suite *LayoutTestSuite) TestCycleFails() {
	def := chain("a", "b")
	def.Edges = append(def.Edges, model.WorkflowEdge{ID: "back", Source: "b", Target: "a"})

	_, err := NewEngine(Options{}).Compute(def)

	var graphErr *graph.GraphStructureError
	require.True(suite.T(), errors.As(err, &graphErr))
	assert.Equal(suite.T(), graph.ErrorKindCycle, graphErr.Kind)
}

func (suite *LayoutTestSuite) TestApplyWritesPositions() {
	def := chain("start", "a")

	require.NoError(suite.T(), NewEngine(Options{}).Apply(def))

	assert.Equal(suite.T(), model.Position{X: -100, Y: -40}, def.Nodes[0].Position)
	assert.Equal(suite.T(), model.Position{X: -100, Y: 190}, def.Nodes[1].Position)
}

func (suite *LayoutTestSuite) TestEmptyGraph() {
	positions, err := NewEngine(Options{}).Compute(&model.WorkflowDefinition{})

	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), positions)
}

func (suite *LayoutTestSuite) TestParseDirection() {
	direction, err := ParseDirection("")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), TopBottom, direction)

	direction, err = ParseDirection("LR")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), LeftRight, direction)

	_, err = ParseDirection("diagonal")
	assert.Error(suite.T(), err)
}

func (suite *LayoutTestSuite) TestRandomGraphsNeverOverlap() {
	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 30; round++ {
		def := &model.WorkflowDefinition{}
		n := 1 + rng.Intn(40)
		for i := 0; i < n; i++ {
			def.Nodes = append(def.Nodes, model.WorkflowNode{ID: fmt.Sprintf("n%d", i)})
		}
		for j := 1; j < n; j++ {
			i := rng.Intn(j)
			def.Edges = append(def.Edges, model.WorkflowEdge{ID: fmt.Sprintf("e%d", j),
				Source: fmt.Sprintf("n%d", i), Target: fmt.Sprintf("n%d", j)})
		}

		width, height := 100+rng.Float64()*150, 40+rng.Float64()*80
		opts := Options{
			NodeWidth:   width,
			NodeHeight:  height,
			NodeSpacing: rng.Float64() * 300,
			RankSpacing: rng.Float64() * 200,
			MinDistance: math.Max(width, height) + rng.Float64()*50,
		}
		if round%2 == 0 {
			opts.Direction = LeftRight
		}
		if round%3 == 0 {
			opts.GridSize = 20
		}

		engine := NewEngine(opts)
		positions, err := engine.Compute(def)

		require.NoError(suite.T(), err)
		require.Len(suite.T(), positions, n)
		suite.assertSeparated(positions, engine.Options())
	}
}
