package geom

import "math"

const epsilon = 1e-9

// orientation returns >0 for counter-clockwise, <0 for clockwise and 0 for collinear
func orientation(a, b, c Point) float64 {
	v := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	if math.Abs(v) < epsilon {
		return 0
	}
	return v
}

// onSegment reports whether q lies on segment pr, given that p, q, r are collinear
func onSegment(p, q, r Point) bool {
	return q.X <= math.Max(p.X, r.X)+epsilon && q.X >= math.Min(p.X, r.X)-epsilon &&
		q.Y <= math.Max(p.Y, r.Y)+epsilon && q.Y >= math.Min(p.Y, r.Y)-epsilon
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// SegmentsIntersect reports whether segments p1q1 and p2q2 share at least one point
func SegmentsIntersect(p1, q1, p2, q2 Point) bool {
	o1 := sign(orientation(p1, q1, p2))
	o2 := sign(orientation(p1, q1, q2))
	o3 := sign(orientation(p2, q2, p1))
	o4 := sign(orientation(p2, q2, q1))

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Collinear special cases
	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && onSegment(p1, q2, q1) {
		return true
	}
	if o3 == 0 && onSegment(p2, p1, q2) {
		return true
	}
	if o4 == 0 && onSegment(p2, q1, q2) {
		return true
	}
	return false
}

// SegmentIntersectsRect reports whether segment ab crosses any edge of r or
// lies entirely inside it
func SegmentIntersectsRect(a, b Point, r Rect) bool {
	if r.Contains(a) || r.Contains(b) {
		return true
	}

	tl := Point{X: r.X, Y: r.Y}
	tr := Point{X: r.Right(), Y: r.Y}
	br := Point{X: r.Right(), Y: r.Bottom()}
	bl := Point{X: r.X, Y: r.Bottom()}

	return SegmentsIntersect(a, b, tl, tr) ||
		SegmentsIntersect(a, b, tr, br) ||
		SegmentsIntersect(a, b, br, bl) ||
		SegmentsIntersect(a, b, bl, tl)
}

// DistanceToSegment returns the shortest distance from p to segment ab
func DistanceToSegment(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq < epsilon {
		return p.Distance(a)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(Point{X: a.X + t*dx, Y: a.Y + t*dy})
}

// DistanceToPolyline returns the shortest distance from p to any segment of points
func DistanceToPolyline(p Point, points []Point) float64 {
	if len(points) == 0 {
		return math.Inf(1)
	}
	if len(points) == 1 {
		return p.Distance(points[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(points); i++ {
		if d := DistanceToSegment(p, points[i-1], points[i]); d < best {
			best = d
		}
	}
	return best
}
