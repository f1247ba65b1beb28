package render

// Theme holds the hex colors shared by the PNG and SVG renderers
type Theme struct {
	Background   string
	NodeFill     string
	NodeStroke   string
	Text         string
	Edge         string
	Selected     string
	Intersecting string
	Anchor       string
	Preview      string
}

// DarkBackground is the background used by the read-only detail capture
const DarkBackground = "#1e1e1e"

// DefaultTheme matches the editor canvas
func DefaultTheme() Theme {
	return Theme{
		Background:   "#ffffff",
		NodeFill:     "#f5f7fa",
		NodeStroke:   "#4a5568",
		Text:         "#1a202c",
		Edge:         "#4a5568",
		Selected:     "#3182ce",
		Intersecting: "#dd6b20",
		Anchor:       "#3182ce",
		Preview:      "#a0aec0",
	}
}

// DarkTheme is used for captures on a dark background
func DarkTheme() Theme {
	return Theme{
		Background:   DarkBackground,
		NodeFill:     "#2d2d2d",
		NodeStroke:   "#9aa5b1",
		Text:         "#e2e8f0",
		Edge:         "#9aa5b1",
		Selected:     "#63b3ed",
		Intersecting: "#f6ad55",
		Anchor:       "#63b3ed",
		Preview:      "#718096",
	}
}

// edgeColor picks the stroke for an edge
func (t Theme) edgeColor(e EdgeShape) string {
	switch {
	case e.Selected:
		return t.Selected
	case e.Intersects:
		return t.Intersecting
	default:
		return t.Edge
	}
}

// nodeStroke picks the border for a node
func (t Theme) nodeStroke(n NodeShape) string {
	if n.Selected || n.Editing {
		return t.Selected
	}
	return t.NodeStroke
}
