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

// Package viewport culls workflow nodes and edges that fall outside the visible canvas.
package viewport

import (
	"sync"
	"time"

	"github.com/skyforge/missionflow/internal/system/log"
	"github.com/skyforge/missionflow/internal/workflow/model"
)

const loggerComponentName = "ViewportVirtualizer"

// Defaults applied to zero-valued options.
const (
	DefaultThreshold  = 50
	DefaultBufferZone = 200.0
	DefaultDebounce   = 100 * time.Millisecond
	DefaultNodeWidth  = 200.0
	DefaultNodeHeight = 80.0
)

// Viewport is the pan offset in pixels and the zoom factor of the canvas.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// Rect is an axis-aligned rectangle in world coordinates.
type Rect struct {
	MinX float64 `json:"minX"`
	MinY float64 `json:"minY"`
	MaxX float64 `json:"maxX"`
	MaxY float64 `json:"maxY"`
}

// Intersects reports whether two rectangles share any point. Touching edges count.
func (r Rect) Intersects(o Rect) bool {
	return r.MinX <= o.MaxX && o.MinX <= r.MaxX && r.MinY <= o.MaxY && o.MinY <= r.MaxY
}

// VisibleRect returns the world rectangle shown by a canvas of the given pixel size,
// grown on every side by buffer screen pixels.
func VisibleRect(vp Viewport, width, height, buffer float64) Rect {
	zoom := vp.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	margin := buffer / zoom
	return Rect{
		MinX: -vp.X/zoom - margin,
		MinY: -vp.Y/zoom - margin,
		MaxX: (width-vp.X)/zoom + margin,
		MaxY: (height-vp.Y)/zoom + margin,
	}
}

// Options configures a virtualizer.
type Options struct {
	// Threshold is the node count above which culling starts.
	Threshold  int
	BufferZone float64
	Debounce   time.Duration
	NodeWidth  float64
	NodeHeight float64
	Disabled   bool
}

func (o Options) withDefaults() Options {
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.BufferZone < 0 {
		o.BufferZone = 0
	}
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	return o
}

// VisibleSet is the outcome of one settled viewport update.
type VisibleSet struct {
	Nodes []model.WorkflowNode
	Edges []model.WorkflowEdge
	Rect  Rect
}

// SettleFunc receives the visible set once viewport updates stop arriving.
type SettleFunc func(VisibleSet)

// VirtualizationStats is a snapshot of the virtualizer state.
type VirtualizationStats struct {
	Enabled      bool    `json:"enabled"`
	Active       bool    `json:"active"`
	Threshold    int     `json:"threshold"`
	BufferZone   float64 `json:"bufferZone"`
	TotalNodes   int     `json:"totalNodes"`
	VisibleNodes int     `json:"visibleNodes"`
	CulledNodes  int     `json:"culledNodes"`
	TotalEdges   int     `json:"totalEdges"`
	VisibleEdges int     `json:"visibleEdges"`
	Updates      int64   `json:"updates"`
	Settles      int64   `json:"settles"`
}

type pendingUpdate struct {
	nodes  []model.WorkflowNode
	edges  []model.WorkflowEdge
	vp     Viewport
	width  float64
	height float64
}

// Virtualizer tracks which nodes and edges need rendering.
type Virtualizer struct {
	mu          sync.Mutex
	opts        Options
	passthrough bool
	timer       *time.Timer
	generation  uint64
	pending     *pendingUpdate
	callbacks   []SettleFunc
	stats       VirtualizationStats
	logger      *log.Logger
}

// NewVirtualizer creates a virtualizer.
func NewVirtualizer(opts Options) *Virtualizer {
	opts = opts.withDefaults()
	return &Virtualizer{
		opts:        opts,
		passthrough: true,
		logger:      log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// Configure changes the buffer zone and switches culling on or off.
func (v *Virtualizer) Configure(bufferZone float64, enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if bufferZone >= 0 {
		v.opts.BufferZone = bufferZone
	}
	v.opts.Disabled = !enabled
}

// OnSettle registers a callback invoked after each debounced update.
func (v *Virtualizer) OnSettle(fn SettleFunc) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.callbacks = append(v.callbacks, fn)
}

// GetVisibleNodes returns the nodes whose bounding box intersects the buffered viewport.
// At or below the threshold, or when disabled, the input is returned unchanged.
func (v *Virtualizer) GetVisibleNodes(nodes []model.WorkflowNode, vp Viewport, width, height float64) []model.WorkflowNode {
	v.mu.Lock()
	defer v.mu.Unlock()
	visible, _ := v.visibleNodesLocked(nodes, vp, width, height)
	return visible
}

// GetVisibleEdges returns the edges with at least one visible endpoint. When the latest node
// computation did not cull, the input is returned unchanged.
func (v *Virtualizer) GetVisibleEdges(edges []model.WorkflowEdge, visibleNodes []model.WorkflowNode) []model.WorkflowEdge {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibleEdgesLocked(edges, visibleNodes)
}

// Update schedules a visibility computation. Calls arriving within the debounce window
// replace the pending one; only the last is computed and delivered to the callbacks.
func (v *Virtualizer) Update(nodes []model.WorkflowNode, edges []model.WorkflowEdge, vp Viewport, width, height float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stats.Updates++
	v.pending = &pendingUpdate{nodes: nodes, edges: edges, vp: vp, width: width, height: height}
	if v.timer != nil {
		v.timer.Stop()
	}
	v.generation++
	generation := v.generation
	v.timer = time.AfterFunc(v.opts.Debounce, func() { v.settle(generation) })
}

// Flush computes the pending update immediately, if any.
func (v *Virtualizer) Flush() {
	v.mu.Lock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	generation := v.generation
	v.mu.Unlock()
	v.settle(generation)
}

// Stop cancels any pending update.
func (v *Virtualizer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.pending = nil
}

// GetVirtualizationStats returns a snapshot of the virtualizer state.
func (v *Virtualizer) GetVirtualizationStats() VirtualizationStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	stats := v.stats
	stats.Enabled = !v.opts.Disabled
	stats.Active = !v.passthrough
	stats.Threshold = v.opts.Threshold
	stats.BufferZone = v.opts.BufferZone
	return stats
}

// settle computes the pending update unless a newer Update superseded the timer that fired.
func (v *Virtualizer) settle(generation uint64) {
	v.mu.Lock()
	if generation != v.generation {
		v.mu.Unlock()
		return
	}
	pending := v.pending
	v.pending = nil
	v.timer = nil
	if pending == nil {
		v.mu.Unlock()
		return
	}
	nodes, rect := v.visibleNodesLocked(pending.nodes, pending.vp, pending.width, pending.height)
	edges := v.visibleEdgesLocked(pending.edges, nodes)
	v.stats.Settles++
	callbacks := append([]SettleFunc(nil), v.callbacks...)
	v.mu.Unlock()

	v.logger.Debug("Viewport settled", log.Int("visibleNodes", len(nodes)), log.Int("visibleEdges", len(edges)))
	set := VisibleSet{Nodes: nodes, Edges: edges, Rect: rect}
	for _, fn := range callbacks {
		fn(set)
	}
}

func (v *Virtualizer) visibleNodesLocked(nodes []model.WorkflowNode, vp Viewport,
	width, height float64) ([]model.WorkflowNode, Rect) {
	rect := VisibleRect(vp, width, height, v.opts.BufferZone)
	v.stats.TotalNodes = len(nodes)

	if v.opts.Disabled || len(nodes) <= v.opts.Threshold {
		v.passthrough = true
		v.stats.VisibleNodes = len(nodes)
		v.stats.CulledNodes = 0
		return nodes, rect
	}

	v.passthrough = false
	visible := make([]model.WorkflowNode, 0, len(nodes))
	for _, n := range nodes {
		box := Rect{
			MinX: n.Position.X,
			MinY: n.Position.Y,
			MaxX: n.Position.X + v.opts.NodeWidth,
			MaxY: n.Position.Y + v.opts.NodeHeight,
		}
		if box.Intersects(rect) {
			visible = append(visible, n)
		}
	}
	v.stats.VisibleNodes = len(visible)
	v.stats.CulledNodes = len(nodes) - len(visible)
	return visible, rect
}

func (v *Virtualizer) visibleEdgesLocked(edges []model.WorkflowEdge, visibleNodes []model.WorkflowNode) []model.WorkflowEdge {
	v.stats.TotalEdges = len(edges)
	if v.passthrough {
		v.stats.VisibleEdges = len(edges)
		return edges
	}

	ids := make(map[string]struct{}, len(visibleNodes))
	for _, n := range visibleNodes {
		ids[n.ID] = struct{}{}
	}
	visible := make([]model.WorkflowEdge, 0, len(edges))
	for _, e := range edges {
		_, sourceVisible := ids[e.Source]
		_, targetVisible := ids[e.Target]
		if sourceVisible || targetVisible {
			visible = append(visible, e)
		}
	}
	v.stats.VisibleEdges = len(visible)
	return visible
}
