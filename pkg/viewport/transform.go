package viewport

import (
	"math"

	"github.com/dshills/flowcanvas/pkg/geom"
)

// Zoom limits and defaults
const (
	MinScale          = 0.1
	MaxScale          = 3.0
	ZoomStep          = 0.1
	DefaultFitPadding = 100.0
)

// Transform maps world coordinates to screen coordinates:
// screen = world*Scale + Translate
type Transform struct {
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Scale      float64 `json:"scale"`
}

// Identity returns the untransformed viewport
func Identity() Transform {
	return Transform{TranslateX: 0, TranslateY: 0, Scale: 1}
}

// ScreenToWorld converts a screen point to world coordinates
func (t Transform) ScreenToWorld(p geom.Point) geom.Point {
	scale := t.Scale
	if scale == 0 {
		scale = 1
	}
	return geom.Point{
		X: (p.X - t.TranslateX) / scale,
		Y: (p.Y - t.TranslateY) / scale,
	}
}

// WorldToScreen converts a world point to screen coordinates
func (t Transform) WorldToScreen(p geom.Point) geom.Point {
	return geom.Point{
		X: p.X*t.Scale + t.TranslateX,
		Y: p.Y*t.Scale + t.TranslateY,
	}
}

// WorldRectToScreen converts a world rectangle to screen coordinates
func (t Transform) WorldRectToScreen(r geom.Rect) geom.Rect {
	tl := t.WorldToScreen(geom.Pt(r.X, r.Y))
	return geom.NewRect(tl.X, tl.Y, r.Width*t.Scale, r.Height*t.Scale)
}

// ZoomAt changes the scale by one step per wheel tick while keeping the world
// point under screenPoint fixed. A negative delta zooms in, a positive delta
// zooms out, a zero delta does nothing.
func (t *Transform) ZoomAt(screenPoint geom.Point, delta float64) {
	if delta == 0 {
		return
	}

	step := ZoomStep
	if delta > 0 {
		step = -ZoomStep
	}
	newScale := ClampScale(t.Scale + step)
	// A fitted scale may sit outside the clamp range; a tick never reverses direction
	if newScale == t.Scale || (step < 0) != (newScale < t.Scale) {
		return
	}

	world := t.ScreenToWorld(screenPoint)
	t.Scale = newScale
	t.TranslateX = screenPoint.X - world.X*newScale
	t.TranslateY = screenPoint.Y - world.Y*newScale
}

// Pan translates by a screen-space delta, independent of scale
func (t *Transform) Pan(dx, dy float64) {
	t.TranslateX += dx
	t.TranslateY += dy
}

// Reset restores the identity transform
func (t *Transform) Reset() {
	*t = Identity()
}

// FitToContent scales and centers the bounding box of rects (grown by padding)
// inside a viewport of the given size. The scale never exceeds 1. It is a
// no-op when rects is empty or the viewport has no area.
func (t *Transform) FitToContent(rects []geom.Rect, viewportSize geom.Size, padding float64) {
	bounds, ok := geom.BoundingRect(rects)
	if !ok || viewportSize.Width <= 0 || viewportSize.Height <= 0 {
		return
	}
	bounds = bounds.Expand(padding)
	if bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}

	scale := math.Min(viewportSize.Width/bounds.Width, viewportSize.Height/bounds.Height)
	scale = math.Min(scale, 1)

	center := bounds.Center()
	t.Scale = scale
	t.TranslateX = viewportSize.Width/2 - center.X*scale
	t.TranslateY = viewportSize.Height/2 - center.Y*scale
}

// ClampScale limits a scale to [MinScale, MaxScale] and rounds it to two
// decimals so repeated wheel steps land on exact values
func ClampScale(scale float64) float64 {
	scale = math.Round(scale*100) / 100
	if scale < MinScale {
		return MinScale
	}
	if scale > MaxScale {
		return MaxScale
	}
	return scale
}
