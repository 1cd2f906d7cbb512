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

package viewport

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/skyforge/missionflow/internal/workflow/model"
)

type VirtualizerTestSuite struct {
	suite.Suite
}

func TestVirtualizerSuite(t *testing.T) {
	suite.Run(t, new(VirtualizerTestSuite))
}

// grid lays out count nodes in rows of ten, 300 units apart.
func grid(count int) []model.WorkflowNode {
	nodes := make([]model.WorkflowNode, 0, count)
	for i := 0; i < count; i++ {
		nodes = append(nodes, model.WorkflowNode{
			ID:       fmt.Sprintf("n%d", i),
			Position: model.Position{X: float64(i%10) * 300, Y: float64(i/10) * 300},
		})
	}
	return nodes
}

func ids(nodes []model.WorkflowNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func (suite *VirtualizerTestSuite) TestVisibleRect() {
	rect := VisibleRect(Viewport{X: -100, Y: 50, Zoom: 2}, 800, 600, 200)

	assert.Equal(suite.T(), Rect{MinX: -50, MinY: -125, MaxX: 550, MaxY: 375}, rect)
}

func (suite *VirtualizerTestSuite) TestVisibleRectTreatsZeroZoomAsOne() {
	rect := VisibleRect(Viewport{}, 100, 100, 0)

	assert.Equal(suite.T(), Rect{MaxX: 100, MaxY: 100}, rect)
}

func (suite *VirtualizerTestSuite) TestBelowThresholdPassesThrough() {
	v := NewVirtualizer(Options{})
	nodes := grid(DefaultThreshold)
	edges := []model.WorkflowEdge{{ID: "e", Source: "n0", Target: "n49"}}

	visible := v.GetVisibleNodes(nodes, Viewport{X: -100000, Y: -100000, Zoom: 1}, 800, 600)
	visibleEdges := v.GetVisibleEdges(edges, visible)

	assert.Equal(suite.T(), nodes, visible)
	assert.Equal(suite.T(), edges, visibleEdges)
	assert.False(suite.T(), v.GetVirtualizationStats().Active)
}

func (suite *VirtualizerTestSuite) TestCullsNodesOutsideBufferedViewport() {
	v := NewVirtualizer(Options{BufferZone: 0})
	nodes := grid(100)

	visible := v.GetVisibleNodes(nodes, Viewport{Zoom: 1}, 800, 500)

	// Columns 0..2 start at x 0, 300, 600 and rows 0..1 at y 0, 300.
	assert.ElementsMatch(suite.T(), []string{"n0", "n1", "n2", "n10", "n11", "n12"}, ids(visible))
	stats := v.GetVirtualizationStats()
	assert.True(suite.T(), stats.Active)
	assert.Equal(suite.T(), 100, stats.TotalNodes)
	assert.Equal(suite.T(), 6, stats.VisibleNodes)
	assert.Equal(suite.T(), 94, stats.CulledNodes)
}

func (suite *VirtualizerTestSuite) TestBufferZoneExtendsVisibleArea() {
	nodes := grid(100)
	vp := Viewport{Zoom: 1}

	narrow := NewVirtualizer(Options{BufferZone: 0}).GetVisibleNodes(nodes, vp, 800, 500)
	wide := NewVirtualizer(Options{BufferZone: 300}).GetVisibleNodes(nodes, vp, 800, 500)

	assert.Greater(suite.T(), len(wide), len(narrow))
	assert.Subset(suite.T(), ids(wide), ids(narrow))
}

func (suite *VirtualizerTestSuite) TestCullingMatchesBruteForce() {
	v := NewVirtualizer(Options{Threshold: 10, BufferZone: 50})
	nodes := grid(120)
	viewports := []Viewport{
		{X: 0, Y: 0, Zoom: 1},
		{X: -900, Y: -600, Zoom: 0.5},
		{X: 400, Y: -1500, Zoom: 2},
		{X: -2500, Y: -2500, Zoom: 0.25},
	}

	for _, vp := range viewports {
		visible := v.GetVisibleNodes(nodes, vp, 1024, 768)

		rect := VisibleRect(vp, 1024, 768, 50)
		expected := make([]string, 0)
		for _, n := range nodes {
			inX := n.Position.X+DefaultNodeWidth >= rect.MinX && n.Position.X <= rect.MaxX
			inY := n.Position.Y+DefaultNodeHeight >= rect.MinY && n.Position.Y <= rect.MaxY
			if inX && inY {
				expected = append(expected, n.ID)
			}
		}
		assert.Equal(suite.T(), expected, ids(visible), "viewport %+v", vp)
	}
}

func (suite *VirtualizerTestSuite) TestEdgesNeedOneVisibleEndpoint() {
	v := NewVirtualizer(Options{BufferZone: 0})
	nodes := grid(100)
	edges := []model.WorkflowEdge{
		{ID: "inside", Source: "n0", Target: "n1"},
		{ID: "leaving", Source: "n1", Target: "n99"},
		{ID: "entering", Source: "n98", Target: "n10"},
		{ID: "outside", Source: "n98", Target: "n99"},
	}

	visible := v.GetVisibleNodes(nodes, Viewport{Zoom: 1}, 800, 500)
	visibleEdges := v.GetVisibleEdges(edges, visible)

	edgeIDs := make([]string, 0)
	for _, e := range visibleEdges {
		edgeIDs = append(edgeIDs, e.ID)
	}
	assert.Equal(suite.T(), []string{"inside", "leaving", "entering"}, edgeIDs)
}

func (suite *VirtualizerTestSuite) TestConfigureDisablesCulling() {
	v := NewVirtualizer(Options{})
	v.Configure(300, false)
	nodes := grid(100)

	visible := v.GetVisibleNodes(nodes, Viewport{X: -100000, Zoom: 1}, 800, 600)

	assert.Len(suite.T(), visible, 100)
	stats := v.GetVirtualizationStats()
	assert.False(suite.T(), stats.Enabled)
	assert.Equal(suite.T(), 300.0, stats.BufferZone)
}

func (suite *VirtualizerTestSuite) TestUpdateIsDebounced() {
	v := NewVirtualizer(Options{Debounce: 30 * time.Millisecond, BufferZone: 0})
	defer v.Stop()

	var mu sync.Mutex
	settled := make([]VisibleSet, 0)
	v.OnSettle(func(set VisibleSet) {
		mu.Lock()
		defer mu.Unlock()
		settled = append(settled, set)
	})

	nodes := grid(100)
	for i := 0; i < 5; i++ {
		v.Update(nodes, nil, Viewport{X: float64(-300 * i), Zoom: 1}, 800, 500)
	}

	require.Eventually(suite.T(), func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(settled) == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(60 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	require.Len(suite.T(), settled, 1)
	// The last viewport is shifted four columns to the right.
	assert.Contains(suite.T(), ids(settled[0].Nodes), "n4")
	assert.NotContains(suite.T(), ids(settled[0].Nodes), "n0")

	stats := v.GetVirtualizationStats()
	assert.Equal(suite.T(), int64(5), stats.Updates)
	assert.Equal(suite.T(), int64(1), stats.Settles)
}

func (suite *VirtualizerTestSuite) TestFlushDeliversImmediately() {
	v := NewVirtualizer(Options{Debounce: time.Hour})
	delivered := make(chan VisibleSet, 1)
	v.OnSettle(func(set VisibleSet) { delivered <- set })

	v.Update(grid(3), nil, Viewport{Zoom: 1}, 800, 600)
	v.Flush()

	select {
	case set := <-delivered:
		assert.Len(suite.T(), set.Nodes, 3)
	default:
		suite.Fail("flush did not deliver the pending update")
	}
}

func (suite *VirtualizerTestSuite) TestStopDropsPendingUpdate() {
	v := NewVirtualizer(Options{Debounce: 10 * time.Millisecond})
	called := make(chan struct{}, 1)
	v.OnSettle(func(VisibleSet) { called <- struct{}{} })

	v.Update(grid(3), nil, Viewport{Zoom: 1}, 800, 600)
	v.Stop()

	select {
	case <-called:
		suite.Fail("stopped virtualizer delivered an update")
	case <-time.After(50 * time.Millisecond):
	}
}
