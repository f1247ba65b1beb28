package render

import (
	"math"

	"github.com/dshills/flowcanvas/pkg/geom"
	"github.com/dshills/goterm"
)

// Screen defines the methods required from a goterm.Screen
type Screen interface {
	Size() (width, height int)
	Clear()
	Show() error
	SetCell(x, y int, cell goterm.Cell)
	DrawText(x, y int, text string, fg, bg goterm.Color, style goterm.Style)
}

// Default world units covered by one terminal cell
const (
	DefaultCellWidth  = 10.0
	DefaultCellHeight = 20.0
)

type cell struct {
	X, Y int
}

// TerminalRenderer draws a scene onto a character grid. The top-left of the
// scene bounds maps to cell (0,0); anything past the screen edge is clipped.
type TerminalRenderer struct {
	screen     Screen
	CellWidth  float64
	CellHeight float64
}

// NewTerminalRenderer creates a renderer with the default cell size
func NewTerminalRenderer(screen Screen) *TerminalRenderer {
	return &TerminalRenderer{
		screen:     screen,
		CellWidth:  DefaultCellWidth,
		CellHeight: DefaultCellHeight,
	}
}

// Render clears the screen, draws the scene and shows it
func (r *TerminalRenderer) Render(s Scene) error {
	r.screen.Clear()
	origin := s.Bounds()

	fg := goterm.ColorDefault()
	bg := goterm.ColorDefault()

	heads := make([]struct {
		at  cell
		dir rune
	}, 0, len(s.Edges))

	for _, e := range s.Edges {
		if len(e.Points) < 2 {
			continue
		}
		style := goterm.StyleNone
		if e.Selected {
			style = goterm.StyleBold
		} else if e.Intersects {
			style = goterm.StyleDim
		}

		cells := make([]cell, len(e.Points))
		for i, p := range e.Points {
			cells[i] = r.toCell(p, origin)
		}
		for i := 1; i < len(cells); i++ {
			r.drawSegment(cells[i-1], cells[i], fg, bg, style)
		}
		for i := 1; i < len(cells)-1; i++ {
			if ch, ok := cornerRune(cells[i-1], cells[i], cells[i+1]); ok {
				r.set(cells[i], ch, fg, bg, style)
			}
		}

		last := cells[len(cells)-1]
		prev := cells[len(cells)-2]
		if last != prev {
			heads = append(heads, struct {
				at  cell
				dir rune
			}{at: stepBack(prev, last), dir: edgeDirection(prev, last)})
		}
	}

	for _, n := range s.Nodes {
		r.drawNode(n, origin, fg, bg)
	}

	for _, h := range heads {
		r.set(h.at, h.dir, fg, bg, goterm.StyleBold)
	}

	for _, a := range s.Anchors {
		r.set(r.toCell(a.Center, origin), '●', fg, bg, goterm.StyleNone)
	}

	return r.screen.Show()
}

func (r *TerminalRenderer) toCell(p geom.Point, origin geom.Rect) cell {
	cw, ch := r.CellWidth, r.CellHeight
	if cw <= 0 {
		cw = DefaultCellWidth
	}
	if ch <= 0 {
		ch = DefaultCellHeight
	}
	return cell{
		X: int(math.Round((p.X - origin.X) / cw)),
		Y: int(math.Round((p.Y - origin.Y) / ch)),
	}
}

func (r *TerminalRenderer) set(c cell, ch rune, fg, bg goterm.Color, style goterm.Style) {
	w, h := r.screen.Size()
	if c.X < 0 || c.Y < 0 || c.X >= w || c.Y >= h {
		return
	}
	r.screen.SetCell(c.X, c.Y, goterm.NewCell(ch, fg, bg, style))
}

// drawSegment rasterizes a segment with Bresenham; axis-aligned runs use box-drawing lines
func (r *TerminalRenderer) drawSegment(a, b cell, fg, bg goterm.Color, style goterm.Style) {
	ch := '·'
	switch {
	case a.Y == b.Y:
		ch = '─'
	case a.X == b.X:
		ch = '│'
	}

	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	e := dx + dy
	x, y := a.X, a.Y
	for {
		r.set(cell{x, y}, ch, fg, bg, style)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func (r *TerminalRenderer) drawNode(n NodeShape, origin geom.Rect, fg, bg goterm.Color) {
	tl := r.toCell(geom.Pt(n.Box.X, n.Box.Y), origin)
	br := r.toCell(geom.Pt(n.Box.Right(), n.Box.Bottom()), origin)
	if br.X-tl.X < 2 {
		br.X = tl.X + 2
	}
	if br.Y-tl.Y < 2 {
		br.Y = tl.Y + 2
	}

	style := goterm.StyleNone
	if n.Selected {
		style = goterm.StyleBold
	}

	for x := tl.X + 1; x < br.X; x++ {
		r.set(cell{x, tl.Y}, '─', fg, bg, style)
		r.set(cell{x, br.Y}, '─', fg, bg, style)
	}
	for y := tl.Y + 1; y < br.Y; y++ {
		r.set(cell{tl.X, y}, '│', fg, bg, style)
		r.set(cell{br.X, y}, '│', fg, bg, style)
		for x := tl.X + 1; x < br.X; x++ {
			r.set(cell{x, y}, ' ', fg, bg, goterm.StyleNone)
		}
	}
	r.set(tl, '┌', fg, bg, style)
	r.set(cell{br.X, tl.Y}, '┐', fg, bg, style)
	r.set(cell{tl.X, br.Y}, '└', fg, bg, style)
	r.set(br, '┘', fg, bg, style)

	inner := br.X - tl.X - 1
	text := []rune(n.Text)
	if len(text) > inner {
		if inner > 1 {
			text = append(text[:inner-1], '…')
		} else {
			text = text[:inner]
		}
	}
	textStyle := goterm.StyleNone
	if n.Editing {
		textStyle = goterm.StyleReverse
	}
	x := tl.X + 1 + (inner-len(text))/2
	y := (tl.Y + br.Y) / 2
	for i, ch := range text {
		r.set(cell{x + i, y}, ch, fg, bg, textStyle)
	}
}

// cornerRune picks the box-drawing corner joining two axis-aligned segments
func cornerRune(prev, cur, next cell) (rune, bool) {
	in := edgeDirection(prev, cur)
	out := edgeDirection(cur, next)
	switch {
	case (in == '►' && out == '▼') || (in == '▲' && out == '◄'):
		return '┐', true
	case (in == '►' && out == '▲') || (in == '▼' && out == '◄'):
		return '┘', true
	case (in == '◄' && out == '▼') || (in == '▲' && out == '►'):
		return '┌', true
	case (in == '◄' && out == '▲') || (in == '▼' && out == '►'):
		return '└', true
	}
	return 0, false
}

// edgeDirection returns the arrow character for travel from -> to
func edgeDirection(from, to cell) rune {
	dx := to.X - from.X
	dy := to.Y - from.Y
	switch {
	case dx == 0 && dy > 0:
		return '▼'
	case dx == 0 && dy < 0:
		return '▲'
	case dy == 0 && dx > 0:
		return '►'
	case dy == 0 && dx < 0:
		return '◄'
	case abs(dy) >= abs(dx) && dy > 0:
		return '▼'
	case abs(dy) >= abs(dx):
		return '▲'
	case dx > 0:
		return '►'
	default:
		return '◄'
	}
}

// stepBack returns the cell one step before last along the segment from prev
func stepBack(prev, last cell) cell {
	return cell{X: last.X - sign(last.X-prev.X), Y: last.Y - sign(last.Y-prev.Y)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
