package render

import (
	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/geom"
	"github.com/dshills/flowcanvas/pkg/router"
)

// EmptySceneSize is the world area rendered when a scene has no elements
var EmptySceneSize = geom.Size{Width: 400, Height: 300}

// NodeShape is a node box ready to draw
type NodeShape struct {
	ID       string
	Number   int
	Box      geom.Rect
	Text     string
	Selected bool
	Editing  bool
}

// EdgeShape is a routed connection ready to draw
type EdgeShape struct {
	ID         string
	Points     []geom.Point
	Selected   bool
	Intersects bool
}

// AnchorHandle is a connection handle drawn on a node side
type AnchorHandle struct {
	NodeID string
	Anchor diagram.Anchor
	Center geom.Point
}

// Overlays carries the interaction state that decorates a scene. A capture
// for export passes the zero value.
type Overlays struct {
	SelectedNodeID       string
	SelectedConnectionID string
	EditingNodeID        string
	// DraftText replaces the text of EditingNodeID while editing
	DraftText string
	// ShowAnchors draws the four handles on every node
	ShowAnchors bool
	// Preview is the rubber-band line while a connection is being drawn
	Preview []geom.Point
}

// Scene is the renderer-independent drawing list for a diagram. Edges are
// drawn first so node boxes cover their ends.
type Scene struct {
	Nodes   []NodeShape
	Edges   []EdgeShape
	Anchors []AnchorHandle
	Preview []geom.Point
}

// Build routes every connection of d with r and decorates the result with ov
func Build(d diagram.Diagram, r router.PathRouter, ov Overlays) Scene {
	if r == nil {
		r = router.NewHeuristicRouter()
	}

	scene := Scene{
		Nodes: make([]NodeShape, 0, len(d.Nodes)),
		Edges: make([]EdgeShape, 0, len(d.Connections)),
	}

	for _, n := range d.Nodes {
		text := n.Text
		editing := ov.EditingNodeID != "" && n.ID == ov.EditingNodeID
		if editing {
			text = ov.DraftText
		}
		scene.Nodes = append(scene.Nodes, NodeShape{
			ID:       n.ID,
			Number:   n.NodeNumber,
			Box:      n.Bounds(),
			Text:     text,
			Selected: n.ID == ov.SelectedNodeID,
			Editing:  editing,
		})

		if ov.ShowAnchors {
			for _, a := range diagram.Anchors {
				scene.Anchors = append(scene.Anchors, AnchorHandle{
					NodeID: n.ID,
					Anchor: a,
					Center: n.AnchorPoint(a),
				})
			}
		}
	}

	for _, c := range d.Connections {
		path, ok := RouteConnection(d, r, c)
		if !ok {
			continue
		}
		scene.Edges = append(scene.Edges, EdgeShape{
			ID:         c.ID,
			Points:     path.Points,
			Selected:   c.ID == ov.SelectedConnectionID,
			Intersects: path.Intersects,
		})
	}

	if len(ov.Preview) >= 2 {
		scene.Preview = append([]geom.Point(nil), ov.Preview...)
	}
	return scene
}

// RouteConnection computes the drawn path of c, excluding its own endpoint
// nodes from the obstacles. It returns false when an endpoint is unknown.
func RouteConnection(d diagram.Diagram, r router.PathRouter, c diagram.Connection) (router.Path, bool) {
	start, ok := d.AnchorPoint(c.From)
	if !ok {
		return router.Path{}, false
	}
	end, ok := d.AnchorPoint(c.To)
	if !ok {
		return router.Path{}, false
	}
	return r.ComputePath(start, end, d.Nodes, c.From.NodeID, c.To.NodeID), true
}

// IsEmpty reports whether the scene has nothing to draw
func (s Scene) IsEmpty() bool {
	return len(s.Nodes) == 0 && len(s.Edges) == 0 && len(s.Preview) == 0
}

// Bounds returns the world rectangle covering every element. An empty scene
// covers EmptySceneSize at the origin.
func (s Scene) Bounds() geom.Rect {
	rects := make([]geom.Rect, 0, len(s.Nodes)+len(s.Edges))
	for _, n := range s.Nodes {
		rects = append(rects, n.Box)
	}
	for _, e := range s.Edges {
		rects = append(rects, pointsRect(e.Points))
	}
	if len(s.Preview) > 0 {
		rects = append(rects, pointsRect(s.Preview))
	}

	bounds, ok := geom.BoundingRect(rects)
	if !ok {
		return geom.NewRect(0, 0, EmptySceneSize.Width, EmptySceneSize.Height)
	}
	return bounds
}

func pointsRect(points []geom.Point) geom.Rect {
	if len(points) == 0 {
		return geom.Rect{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return geom.NewRect(minX, minY, maxX-minX, maxY-minY)
}
