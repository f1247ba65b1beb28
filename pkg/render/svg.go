package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/dshills/flowcanvas/pkg/geom"
)

// SVGOptions configures vector export
type SVGOptions struct {
	Padding    float64
	Theme      Theme
	Background string
}

// errWriter remembers the first write error so svgo's unchecked writes can be reported
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, err
}

// RenderSVG writes the scene as an SVG document to w. Coordinates are
// rounded to whole world units.
func RenderSVG(w io.Writer, s Scene, opts SVGOptions) error {
	if opts.Padding < 0 {
		opts.Padding = 0
	}
	theme := opts.Theme
	if theme == (Theme{}) {
		theme = DefaultTheme()
	}
	if opts.Background != "" {
		theme.Background = opts.Background
	}

	bounds := s.Bounds().Expand(opts.Padding)
	width := round(bounds.Width)
	height := round(bounds.Height)

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:"+theme.Background)
	canvas.Gtransform(fmt.Sprintf("translate(%d,%d)", round(-bounds.X), round(-bounds.Y)))

	for _, e := range s.Edges {
		if len(e.Points) < 2 {
			continue
		}
		stroke := theme.edgeColor(e)
		xs, ys := splitPoints(e.Points)
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2", stroke))

		last := len(e.Points) - 1
		hx, hy := arrowHead(e.Points[last-1], e.Points[last])
		if hx != nil {
			canvas.Polygon(hx, hy, "fill:"+stroke)
		}
	}

	for _, n := range s.Nodes {
		box := n.Box
		canvas.Roundrect(round(box.X), round(box.Y), round(box.Width), round(box.Height), 6, 6,
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:1.5", theme.NodeFill, theme.nodeStroke(n)))
		center := box.Center()
		canvas.Text(round(center.X), round(center.Y), n.Text,
			fmt.Sprintf("fill:%s;font-family:monospace;font-size:%gpx;text-anchor:middle;dominant-baseline:middle", theme.Text, DefaultFontSize))
	}

	for _, a := range s.Anchors {
		canvas.Circle(round(a.Center.X), round(a.Center.Y), round(anchorRadius), "fill:"+theme.Anchor)
	}

	if len(s.Preview) >= 2 {
		xs, ys := splitPoints(s.Preview)
		canvas.Polyline(xs, ys, fmt.Sprintf("fill:none;stroke:%s;stroke-dasharray:6,4", theme.Preview))
	}

	canvas.Gend()
	canvas.End()

	if ew.err != nil {
		return fmt.Errorf("failed to write SVG: %w", ew.err)
	}
	return nil
}

func round(v float64) int {
	return int(math.Round(v))
}

func splitPoints(points []geom.Point) ([]int, []int) {
	xs := make([]int, len(points))
	ys := make([]int, len(points))
	for i, p := range points {
		xs[i] = round(p.X)
		ys[i] = round(p.Y)
	}
	return xs, ys
}

// arrowHead returns the triangle for an arrow pointing from -> to
func arrowHead(from, to geom.Point) ([]int, []int) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 0.1 {
		return nil, nil
	}
	dx /= length
	dy /= length

	return splitPoints([]geom.Point{
		to,
		geom.Pt(to.X-arrowSize*dx+arrowSize*dy*arrowAngle, to.Y-arrowSize*dy-arrowSize*dx*arrowAngle),
		geom.Pt(to.X-arrowSize*dx-arrowSize*dy*arrowAngle, to.Y-arrowSize*dy+arrowSize*dx*arrowAngle),
	})
}
