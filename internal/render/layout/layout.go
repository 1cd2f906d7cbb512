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

// Package layout computes hierarchical canvas positions for workflow nodes.
package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/skyforge/missionflow/internal/system/log"
	"github.com/skyforge/missionflow/internal/workflow/graph"
	"github.com/skyforge/missionflow/internal/workflow/model"
)

const loggerComponentName = "LayoutEngine"

// Direction is the axis along which ranks advance.
type Direction string

const (
	// TopBottom stacks ranks downwards.
	TopBottom Direction = "TB"
	// LeftRight stacks ranks to the right.
	LeftRight Direction = "LR"
)

// Defaults applied to zero-valued options.
const (
	DefaultNodeWidth     = 200.0
	DefaultNodeHeight    = 80.0
	DefaultNodeSpacing   = 250.0
	DefaultRankSpacing   = 150.0
	DefaultMinDistance   = 220.0
	DefaultGridSize      = 20.0
	DefaultMaxIterations = 100
)

// Options configures the layout. Zero values take the defaults, except GridSize where zero
// disables snapping.
type Options struct {
	Direction     Direction
	NodeWidth     float64
	NodeHeight    float64
	NodeSpacing   float64
	RankSpacing   float64
	MinDistance   float64
	GridSize      float64
	MaxIterations int
}

// ParseDirection converts a configured direction. Empty means TopBottom.
func ParseDirection(name string) (Direction, error) {
	switch Direction(name) {
	case "", TopBottom:
		return TopBottom, nil
	case LeftRight:
		return LeftRight, nil
	default:
		return "", fmt.Errorf("unknown layout direction %q", name)
	}
}

// DefaultOptions returns the default top-bottom layout with grid snapping.
func DefaultOptions() Options {
	return Options{
		Direction:     TopBottom,
		NodeWidth:     DefaultNodeWidth,
		NodeHeight:    DefaultNodeHeight,
		NodeSpacing:   DefaultNodeSpacing,
		RankSpacing:   DefaultRankSpacing,
		MinDistance:   DefaultMinDistance,
		GridSize:      DefaultGridSize,
		MaxIterations: DefaultMaxIterations,
	}
}

func (o Options) withDefaults() Options {
	if o.Direction == "" {
		o.Direction = TopBottom
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = DefaultNodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = DefaultNodeHeight
	}
	if o.NodeSpacing <= 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.RankSpacing < 0 {
		o.RankSpacing = 0
	} else if o.RankSpacing == 0 {
		o.RankSpacing = DefaultRankSpacing
	}
	if o.MinDistance <= 0 {
		o.MinDistance = DefaultMinDistance
	}
	if o.GridSize < 0 {
		o.GridSize = 0
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	return o
}

// Engine lays out workflow graphs.
type Engine struct {
	opts   Options
	logger *log.Logger
}

// NewEngine creates a layout engine.
func NewEngine(opts Options) *Engine {
	return &Engine{
		opts:   opts.withDefaults(),
		logger: log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)),
	}
}

// Options returns the effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// point is a node center in layout space: u runs within a rank, v across ranks.
type point struct {
	id   string
	u, v float64
}

// Compute returns the top-left position of every node. Ranks come from the shared
// dependency levels, so a cyclic graph fails with the same error as execution planning.
func (e *Engine) Compute(def *model.WorkflowDefinition) (map[string]model.Position, error) {
	levels, err := graph.ComputeLevels(def)
	if err != nil {
		return nil, err
	}

	sizeU, sizeV := e.axisSizes()
	points := make([]*point, 0, len(def.Nodes))
	for rank, ids := range levels.Group(def) {
		v := float64(rank) * (sizeV + e.opts.RankSpacing)
		offset := float64(len(ids)-1) * e.opts.NodeSpacing / 2
		for i, id := range ids {
			points = append(points, &point{id: id, u: float64(i)*e.opts.NodeSpacing - offset, v: v})
		}
	}

	iterations := e.separate(points, sizeU, sizeV)
	e.sweep(points, sizeU, sizeV, e.opts.MinDistance)

	if e.opts.GridSize > 0 {
		e.snap(points)
		if conflicts(points, sizeU, sizeV, e.opts.MinDistance) {
			gap := math.Ceil(math.Max(sizeU, e.opts.MinDistance)/e.opts.GridSize) * e.opts.GridSize
			e.sweep(points, sizeU, sizeV, gap)
		}
	}

	e.logger.Debug("Computed layout", log.Int("nodes", len(points)),
		log.Int("ranks", levels.Max()+1), log.Int("iterations", iterations))

	positions := make(map[string]model.Position, len(points))
	for _, p := range points {
		positions[p.id] = e.topLeft(p)
	}
	return positions, nil
}

// Apply computes the layout and writes the positions onto the definition's nodes.
func (e *Engine) Apply(def *model.WorkflowDefinition) error {
	positions, err := e.Compute(def)
	if err != nil {
		return err
	}
	for i := range def.Nodes {
		if pos, ok := positions[def.Nodes[i].ID]; ok {
			def.Nodes[i].Position = pos
		}
	}
	return nil
}

// Overlaps reports whether two node boxes of the given size placed at top-left positions
// a and b intersect. Touching edges do not overlap.
func Overlaps(a, b model.Position, width, height float64) bool {
	return math.Abs(a.X-b.X) < width && math.Abs(a.Y-b.Y) < height
}

func (e *Engine) axisSizes() (float64, float64) {
	if e.opts.Direction == LeftRight {
		return e.opts.NodeHeight, e.opts.NodeWidth
	}
	return e.opts.NodeWidth, e.opts.NodeHeight
}

func (e *Engine) topLeft(p *point) model.Position {
	x, y := p.u, p.v
	if e.opts.Direction == LeftRight {
		x, y = p.v, p.u
	}
	return model.Position{X: x - e.opts.NodeWidth/2, Y: y - e.opts.NodeHeight/2}
}

func (e *Engine) fromTopLeft(p *point, pos model.Position) {
	x, y := pos.X+e.opts.NodeWidth/2, pos.Y+e.opts.NodeHeight/2
	if e.opts.Direction == LeftRight {
		x, y = y, x
	}
	p.u, p.v = x, y
}

func tooClose(a, b *point, sizeU, sizeV, minDistance float64) bool {
	du, dv := math.Abs(a.u-b.u), math.Abs(a.v-b.v)
	if du < sizeU && dv < sizeV {
		return true
	}
	return math.Hypot(du, dv) < minDistance
}

func conflicts(points []*point, sizeU, sizeV, minDistance float64) bool {
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			if tooClose(points[i], points[j], sizeU, sizeV, minDistance) {
				return true
			}
		}
	}
	return false
}

// separate pushes conflicting pairs apart along the line joining their centers until no
// pair conflicts or the iteration budget runs out. It returns the iterations used.
func (e *Engine) separate(points []*point, sizeU, sizeV float64) int {
	for iter := 0; iter < e.opts.MaxIterations; iter++ {
		moved := false
		for i := range points {
			for j := i + 1; j < len(points); j++ {
				a, b := points[i], points[j]
				if !tooClose(a, b, sizeU, sizeV, e.opts.MinDistance) {
					continue
				}
				du, dv := b.u-a.u, b.v-a.v
				dist := math.Hypot(du, dv)
				if dist == 0 {
					du, dv, dist = 1, 0, 1
				}
				target := e.opts.MinDistance
				if dist >= target {
					// Far enough apart yet the boxes still intersect.
					target = dist * 1.1
				}
				push := (target - dist) / 2
				a.u -= du / dist * push
				a.v -= dv / dist * push
				b.u += du / dist * push
				b.v += dv / dist * push
				moved = true
			}
		}
		if !moved {
			return iter
		}
	}
	return e.opts.MaxIterations
}

// sweep resolves any conflict left over by shifting nodes along the in-rank axis. Nodes are
// visited in ascending u; each one moves just past every earlier node it could collide with,
// and earlier nodes never move again, so every pair ends at least gap apart along u or far
// enough apart along v.
func (e *Engine) sweep(points []*point, sizeU, sizeV, gap float64) {
	if !conflicts(points, sizeU, sizeV, e.opts.MinDistance) {
		return
	}
	gap = math.Max(gap, sizeU)
	band := math.Max(sizeV, e.opts.MinDistance)

	sort.SliceStable(points, func(i, j int) bool { return points[i].u < points[j].u })
	for i := 1; i < len(points); i++ {
		for j := 0; j < i; j++ {
			if math.Abs(points[i].v-points[j].v) >= band {
				continue
			}
			if points[i].u < points[j].u+gap {
				points[i].u = points[j].u + gap
			}
		}
	}
}

// snap moves every node so its top-left corner lands on the nearest grid point.
func (e *Engine) snap(points []*point) {
	grid := e.opts.GridSize
	for _, p := range points {
		pos := e.topLeft(p)
		pos.X = math.Round(pos.X/grid) * grid
		pos.Y = math.Round(pos.Y/grid) * grid
		e.fromTopLeft(p, pos)
	}
}
