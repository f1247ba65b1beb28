package router

import (
	"math"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/geom"
)

// DetourMargin is the clearance kept between a detour and the obstacles it avoids
const DetourMargin = 20.0

// Path is a routed polyline between two anchor points
type Path struct {
	// Points includes start and end
	Points []geom.Point
	// Intersects is true when the path still crosses a node box
	Intersects bool
}

// Length returns the total Euclidean length of the path
func (p Path) Length() float64 {
	return geom.PathLength(p.Points)
}

// PathRouter computes the polyline drawn for a connection. Implementations
// must be deterministic; they run for every connection on every render.
type PathRouter interface {
	ComputePath(start, end geom.Point, nodes []diagram.Node, exclude ...string) Path
}

// HeuristicRouter avoids obstacles with six fixed detour candidates and keeps
// the shortest valid one. It is a local heuristic, not a visibility-graph
// router: when no candidate is clear it falls back to the straight line.
type HeuristicRouter struct {
	Margin float64
}

// NewHeuristicRouter creates a router with the default detour margin
func NewHeuristicRouter() *HeuristicRouter {
	return &HeuristicRouter{Margin: DetourMargin}
}

// ComputePath routes from start to end around every node not listed in exclude.
// Algorithm:
// 1. Straight segment if it crosses no obstacle
// 2. Collect the crossed obstacles and their union box
// 3. Build above/below/left/right detours and the two midpoint L-shapes
// 4. Drop candidates that cross any non-excluded node
// 5. Keep the shortest survivor, or fall back to the straight path flagged as intersecting
func (r *HeuristicRouter) ComputePath(start, end geom.Point, nodes []diagram.Node, exclude ...string) Path {
	obstacles := candidateObstacles(nodes, exclude)
	straight := []geom.Point{start, end}

	crossed := make([]geom.Rect, 0)
	for _, box := range obstacles {
		if geom.SegmentIntersectsRect(start, end, box) {
			crossed = append(crossed, box)
		}
	}
	if len(crossed) == 0 {
		return Path{Points: straight}
	}

	union, _ := geom.BoundingRect(crossed)
	margin := r.Margin
	if margin <= 0 {
		margin = DetourMargin
	}

	var best []geom.Point
	bestLength := math.Inf(1)
	for _, candidate := range detourCandidates(start, end, union, margin) {
		if !pathClear(candidate, obstacles) {
			continue
		}
		if length := geom.PathLength(candidate); length < bestLength {
			best = candidate
			bestLength = length
		}
	}

	if best == nil {
		return Path{Points: straight, Intersects: true}
	}
	return Path{Points: best}
}

// candidateObstacles returns the boxes of nodes that are not excluded
func candidateObstacles(nodes []diagram.Node, exclude []string) []geom.Rect {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	boxes := make([]geom.Rect, 0, len(nodes))
	for _, n := range nodes {
		if skip[n.ID] {
			continue
		}
		boxes = append(boxes, n.Bounds())
	}
	return boxes
}

// detourCandidates builds the six fixed detour shapes, in tie-break order
func detourCandidates(start, end geom.Point, union geom.Rect, margin float64) [][]geom.Point {
	above := union.Y - margin
	below := union.Bottom() + margin
	left := union.X - margin
	right := union.Right() + margin
	mid := start.Midpoint(end)

	candidates := [][]geom.Point{
		{start, geom.Pt(start.X, above), geom.Pt(end.X, above), end},
		{start, geom.Pt(start.X, below), geom.Pt(end.X, below), end},
		{start, geom.Pt(left, start.Y), geom.Pt(left, end.Y), end},
		{start, geom.Pt(right, start.Y), geom.Pt(right, end.Y), end},
		{start, geom.Pt(start.X, mid.Y), geom.Pt(end.X, mid.Y), end},
		{start, geom.Pt(mid.X, start.Y), geom.Pt(mid.X, end.Y), end},
	}

	for i, c := range candidates {
		candidates[i] = dedupe(c)
	}
	return candidates
}

// pathClear checks every segment of points against every obstacle
func pathClear(points []geom.Point, obstacles []geom.Rect) bool {
	for i := 1; i < len(points); i++ {
		for _, box := range obstacles {
			if geom.SegmentIntersectsRect(points[i-1], points[i], box) {
				return false
			}
		}
	}
	return true
}

// dedupe drops consecutive duplicate points
func dedupe(points []geom.Point) []geom.Point {
	out := make([]geom.Point, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}
