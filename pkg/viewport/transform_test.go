package viewport

import (
	"testing"

	"github.com/dshills/flowcanvas/pkg/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-6

func TestScreenWorldRoundTrip(t *testing.T) {
	tr := Transform{TranslateX: 40, TranslateY: -25, Scale: 1.5}

	points := []geom.Point{geom.Pt(0, 0), geom.Pt(123.5, -42), geom.Pt(-300, 800)}
	for _, p := range points {
		back := tr.ScreenToWorld(tr.WorldToScreen(p))
		assert.InDelta(t, p.X, back.X, tolerance)
		assert.InDelta(t, p.Y, back.Y, tolerance)
	}

	w := tr.ScreenToWorld(geom.Pt(190, 125))
	assert.InDelta(t, 100, w.X, tolerance)
	assert.InDelta(t, 100, w.Y, tolerance)
}

func TestZoomAtKeepsCursorWorldPointFixed(t *testing.T) {
	tr := Identity()
	cursor := geom.Pt(320, 240)
	before := tr.ScreenToWorld(cursor)

	tr.ZoomAt(cursor, -1)
	assert.InDelta(t, 1.1, tr.Scale, tolerance)

	after := tr.ScreenToWorld(cursor)
	assert.InDelta(t, before.X, after.X, tolerance)
	assert.InDelta(t, before.Y, after.Y, tolerance)

	tr.ZoomAt(cursor, 1)
	tr.ZoomAt(cursor, 1)
	assert.InDelta(t, 0.9, tr.Scale, tolerance)
	after = tr.ScreenToWorld(cursor)
	assert.InDelta(t, before.X, after.X, tolerance)
	assert.InDelta(t, before.Y, after.Y, tolerance)
}

func TestZoomClamp(t *testing.T) {
	tr := Identity()
	for i := 0; i < 100; i++ {
		tr.ZoomAt(geom.Pt(10, 10), -120)
		assert.LessOrEqual(t, tr.Scale, MaxScale)
	}
	assert.Equal(t, MaxScale, tr.Scale)

	for i := 0; i < 100; i++ {
		tr.ZoomAt(geom.Pt(10, 10), 120)
		assert.GreaterOrEqual(t, tr.Scale, MinScale)
	}
	assert.Equal(t, MinScale, tr.Scale)
}

func TestZoomAfterFitBelowMinScale(t *testing.T) {
	tr := Identity()
	tr.FitToContent([]geom.Rect{geom.NewRect(0, 0, 20000, 500)}, geom.Size{Width: 800, Height: 600}, DefaultFitPadding)
	fitted := tr
	require.Less(t, fitted.Scale, MinScale)

	// Zooming out cannot enlarge the view
	tr.ZoomAt(geom.Pt(400, 300), 120)
	assert.Equal(t, fitted, tr)

	tr.ZoomAt(geom.Pt(400, 300), -120)
	assert.Greater(t, tr.Scale, fitted.Scale)
	assert.InDelta(t, 0.14, tr.Scale, tolerance)
}

func TestZoomAtZeroDeltaIsNoop(t *testing.T) {
	tr := Transform{TranslateX: 5, TranslateY: 6, Scale: 2}
	tr.ZoomAt(geom.Pt(100, 100), 0)
	assert.Equal(t, Transform{TranslateX: 5, TranslateY: 6, Scale: 2}, tr)
}

func TestPanIgnoresScale(t *testing.T) {
	tr := Transform{Scale: 2.5}
	tr.Pan(30, -10)
	assert.Equal(t, 30.0, tr.TranslateX)
	assert.Equal(t, -10.0, tr.TranslateY)
	assert.Equal(t, 2.5, tr.Scale)

	tr.Reset()
	assert.Equal(t, Identity(), tr)
}

func TestFitToContent(t *testing.T) {
	tr := Identity()
	rects := []geom.Rect{
		geom.NewRect(0, 0, 200, 60),
		geom.NewRect(800, 440, 200, 60),
	}
	viewportSize := geom.Size{Width: 800, Height: 600}

	tr.FitToContent(rects, viewportSize, DefaultFitPadding)

	assert.LessOrEqual(t, tr.Scale, 1.0)
	// bbox (0,0)-(1000,500) padded by 100 is 1200x700; width dominates
	assert.InDelta(t, 800.0/1200.0, tr.Scale, tolerance)

	center := tr.WorldToScreen(geom.Pt(500, 250))
	assert.InDelta(t, 400, center.X, tolerance)
	assert.InDelta(t, 300, center.Y, tolerance)
}

func TestFitToContentNeverUpscales(t *testing.T) {
	tr := Identity()
	tr.FitToContent([]geom.Rect{geom.NewRect(10, 10, 50, 50)}, geom.Size{Width: 1920, Height: 1080}, DefaultFitPadding)

	assert.Equal(t, 1.0, tr.Scale)
	center := tr.WorldToScreen(geom.Pt(35, 35))
	assert.InDelta(t, 960, center.X, tolerance)
	assert.InDelta(t, 540, center.Y, tolerance)
}

func TestFitToContentEmptyIsNoop(t *testing.T) {
	tr := Transform{TranslateX: 12, TranslateY: 34, Scale: 0.5}
	tr.FitToContent(nil, geom.Size{Width: 800, Height: 600}, DefaultFitPadding)
	assert.Equal(t, Transform{TranslateX: 12, TranslateY: 34, Scale: 0.5}, tr)
}

func TestCommands(t *testing.T) {
	tr := Transform{TranslateX: 1, TranslateY: 2, Scale: 3}

	SetTransformCommand(Transform{TranslateX: -50, TranslateY: 20, Scale: 0.75}).Apply(&tr)
	assert.Equal(t, Transform{TranslateX: -50, TranslateY: 20, Scale: 0.75}, tr)

	SetTransformCommand(Transform{Scale: 0}).Apply(&tr)
	assert.Equal(t, 0.75, tr.Scale, "non-positive scale must be ignored")

	ResetCommand().Apply(&tr)
	assert.Equal(t, Identity(), tr)
}
