package render

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"github.com/dshills/flowcanvas/pkg/geom"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// Raster defaults
const (
	DefaultPixelRatio = 2.0
	DefaultPadding    = 20.0
	DefaultFontSize   = 13.0
	arrowSize         = 8.0
	arrowAngle        = 0.5
	anchorRadius      = 5.0

	// MaxImagePixels bounds the raster so a far-away node cannot exhaust memory
	MaxImagePixels = 64 << 20
)

// ErrImageTooLarge is returned when the scene would need more than MaxImagePixels
var ErrImageTooLarge = errors.New("image too large")

// Result is the outcome of an asynchronous export
type Result struct {
	Data []byte
	Err  error
}

// PNGOptions configures rasterization
type PNGOptions struct {
	// PixelRatio multiplies every world unit; 2 gives a high-density capture
	PixelRatio float64
	// Padding is added around the scene bounds, in world units
	Padding float64
	Theme   Theme
	// Background overrides Theme.Background when set
	Background string
}

func (o PNGOptions) withDefaults() PNGOptions {
	if o.PixelRatio <= 0 {
		o.PixelRatio = DefaultPixelRatio
	}
	if o.Padding < 0 {
		o.Padding = 0
	}
	if o.Theme == (Theme{}) {
		o.Theme = DefaultTheme()
	}
	if o.Background != "" {
		o.Theme.Background = o.Background
	}
	return o
}

var (
	fontOnce sync.Once
	monoFont *truetype.Font
	fontErr  error
)

func loadFont() (*truetype.Font, error) {
	fontOnce.Do(func() {
		monoFont, fontErr = truetype.Parse(gomono.TTF)
	})
	return monoFont, fontErr
}

// Rasterize draws the scene into an image
func Rasterize(s Scene, opts PNGOptions) (image.Image, error) {
	opts = opts.withDefaults()

	bounds := s.Bounds().Expand(opts.Padding)
	w := math.Ceil(bounds.Width * opts.PixelRatio)
	h := math.Ceil(bounds.Height * opts.PixelRatio)
	if math.IsNaN(w) || math.IsNaN(h) || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid image size %gx%g", w, h)
	}
	if w*h > MaxImagePixels {
		return nil, fmt.Errorf("%w: %gx%g exceeds %d pixels", ErrImageTooLarge, w, h, MaxImagePixels)
	}
	width, height := int(w), int(h)

	ttf, err := loadFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	dc := gg.NewContext(width, height)
	dc.SetHexColor(opts.Theme.Background)
	dc.Clear()

	dc.Scale(opts.PixelRatio, opts.PixelRatio)
	dc.Translate(-bounds.X, -bounds.Y)

	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    DefaultFontSize * opts.PixelRatio,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	dc.SetFontFace(face)

	// Edges first so node boxes cover their ends
	for _, e := range s.Edges {
		drawEdgePNG(dc, e, opts.Theme)
	}
	for _, n := range s.Nodes {
		drawNodePNG(dc, n, opts.Theme, opts.PixelRatio)
	}
	for _, a := range s.Anchors {
		dc.SetHexColor(opts.Theme.Anchor)
		dc.DrawCircle(a.Center.X, a.Center.Y, anchorRadius)
		dc.Fill()
	}
	if len(s.Preview) >= 2 {
		dc.SetHexColor(opts.Theme.Preview)
		dc.SetLineWidth(1.5)
		dc.SetDash(6, 4)
		strokePolyline(dc, s.Preview)
		dc.SetDash()
	}

	return dc.Image(), nil
}

// RenderPNG rasterizes the scene and encodes it as PNG to w
func RenderPNG(w io.Writer, s Scene, opts PNGOptions) error {
	opts = opts.withDefaults()
	img, err := Rasterize(s, opts)
	if err != nil {
		return err
	}

	dc := gg.NewContextForImage(img)
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	return nil
}

func drawEdgePNG(dc *gg.Context, e EdgeShape, theme Theme) {
	if len(e.Points) < 2 {
		return
	}

	dc.SetHexColor(theme.edgeColor(e))
	dc.SetLineWidth(2)
	strokePolyline(dc, e.Points)

	last := len(e.Points) - 1
	drawArrowPNG(dc, e.Points[last-1], e.Points[last])
}

func strokePolyline(dc *gg.Context, points []geom.Point) {
	dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
}

// drawArrowPNG fills a triangular head pointing from -> to
func drawArrowPNG(dc *gg.Context, from, to geom.Point) {
	dx := to.X - from.X
	dy := to.Y - from.Y
	length := math.Sqrt(dx*dx + dy*dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	dc.MoveTo(to.X, to.Y)
	dc.LineTo(to.X-arrowSize*dx+arrowSize*dy*arrowAngle, to.Y-arrowSize*dy-arrowSize*dx*arrowAngle)
	dc.LineTo(to.X-arrowSize*dx-arrowSize*dy*arrowAngle, to.Y-arrowSize*dy+arrowSize*dx*arrowAngle)
	dc.ClosePath()
	dc.Fill()
}

func drawNodePNG(dc *gg.Context, n NodeShape, theme Theme, ratio float64) {
	box := n.Box

	dc.SetHexColor(theme.NodeFill)
	dc.DrawRoundedRectangle(box.X, box.Y, box.Width, box.Height, 6)
	dc.FillPreserve()
	dc.SetHexColor(theme.nodeStroke(n))
	if n.Selected {
		dc.SetLineWidth(2.5)
	} else {
		dc.SetLineWidth(1.5)
	}
	dc.Stroke()

	// The face is sized for device pixels, so text is laid out unscaled
	center := box.Center()
	dc.Push()
	dc.Scale(1/ratio, 1/ratio)
	dc.SetHexColor(theme.Text)
	dc.DrawStringWrapped(n.Text, center.X*ratio, center.Y*ratio, 0.5, 0.5, (box.Width-12)*ratio, 1.2, gg.AlignCenter)
	dc.Pop()
}
