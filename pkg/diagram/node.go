package diagram

import "github.com/dshills/flowcanvas/pkg/geom"

// Node is a labeled rectangle positioned in world coordinates
type Node struct {
	ID         string  `json:"id" yaml:"id" validate:"required"`
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	Width      float64 `json:"width" yaml:"width" validate:"gt=0"`
	Height     float64 `json:"height" yaml:"height" validate:"gt=0"`
	Text       string  `json:"text" yaml:"text"`
	NodeNumber int     `json:"nodeNumber" yaml:"nodeNumber" validate:"gte=1"`
}

// NewNode creates a node with default size and label at the given world point
func NewNode(nodeNumber int, at geom.Point) Node {
	return Node{
		ID:         NodeIDFor(nodeNumber),
		X:          at.X,
		Y:          at.Y,
		Width:      DefaultNodeWidth,
		Height:     DefaultNodeHeight,
		Text:       DefaultNodeText,
		NodeNumber: nodeNumber,
	}
}

// Bounds returns the node's bounding box
func (n Node) Bounds() geom.Rect {
	return geom.NewRect(n.X, n.Y, n.Width, n.Height)
}

// AnchorPoint computes the live position of an anchor from the node's current box
func (n Node) AnchorPoint(a Anchor) geom.Point {
	switch a {
	case AnchorTop:
		return geom.Pt(n.X+n.Width/2, n.Y)
	case AnchorRight:
		return geom.Pt(n.X+n.Width, n.Y+n.Height/2)
	case AnchorBottom:
		return geom.Pt(n.X+n.Width/2, n.Y+n.Height)
	case AnchorLeft:
		return geom.Pt(n.X, n.Y+n.Height/2)
	default:
		return geom.Pt(n.X, n.Y)
	}
}
