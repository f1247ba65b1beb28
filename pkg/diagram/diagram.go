package diagram

import "github.com/dshills/flowcanvas/pkg/geom"

// Diagram is the persisted document edited by the canvas: nodes and the
// connections between their anchors. Slice order is insertion order; later
// elements paint on top.
type Diagram struct {
	Nodes       []Node       `json:"nodes" yaml:"nodes" validate:"dive"`
	Connections []Connection `json:"connections" yaml:"connections" validate:"dive"`
}

// New creates an empty diagram
func New() Diagram {
	return Diagram{
		Nodes:       make([]Node, 0),
		Connections: make([]Connection, 0),
	}
}

// FromParts builds a diagram from node and connection slices, copying both
func FromParts(nodes []Node, connections []Connection) Diagram {
	d := Diagram{
		Nodes:       make([]Node, len(nodes)),
		Connections: make([]Connection, len(connections)),
	}
	copy(d.Nodes, nodes)
	copy(d.Connections, connections)
	return d
}

// Clone returns a deep copy of the diagram
func (d Diagram) Clone() Diagram {
	return FromParts(d.Nodes, d.Connections)
}

// Node returns a pointer to the node with the given ID
func (d *Diagram) Node(id string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// Connection returns a pointer to the connection with the given ID
func (d *Diagram) Connection(id string) (*Connection, bool) {
	for i := range d.Connections {
		if d.Connections[i].ID == id {
			return &d.Connections[i], true
		}
	}
	return nil, false
}

// AnchorPoint resolves an endpoint to its current world position
func (d *Diagram) AnchorPoint(e Endpoint) (geom.Point, bool) {
	n, ok := d.Node(e.NodeID)
	if !ok {
		return geom.Point{}, false
	}
	return n.AnchorPoint(e.AnchorPosition), true
}

// AddNode appends a node
func (d *Diagram) AddNode(n Node) {
	d.Nodes = append(d.Nodes, n)
}

// AddConnection appends a connection
func (d *Diagram) AddConnection(c Connection) {
	d.Connections = append(d.Connections, c)
}

// RemoveNode removes a node and every connection referencing it.
// Returns false if the node does not exist.
func (d *Diagram) RemoveNode(id string) bool {
	found := false
	nodes := make([]Node, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID == id {
			found = true
			continue
		}
		nodes = append(nodes, n)
	}
	if !found {
		return false
	}
	d.Nodes = nodes

	connections := make([]Connection, 0, len(d.Connections))
	for _, c := range d.Connections {
		if !c.Touches(id) {
			connections = append(connections, c)
		}
	}
	d.Connections = connections
	return true
}

// RemoveConnection removes a connection by ID.
// Returns false if the connection does not exist.
func (d *Diagram) RemoveConnection(id string) bool {
	found := false
	connections := make([]Connection, 0, len(d.Connections))
	for _, c := range d.Connections {
		if c.ID == id {
			found = true
			continue
		}
		connections = append(connections, c)
	}
	if found {
		d.Connections = connections
	}
	return found
}

// ConnectionsOf returns all connections touching a node
func (d *Diagram) ConnectionsOf(nodeID string) []Connection {
	result := make([]Connection, 0)
	for _, c := range d.Connections {
		if c.Touches(nodeID) {
			result = append(result, c)
		}
	}
	return result
}

// MaxNodeNumber returns the highest node number in the diagram, or 0 when empty
func (d *Diagram) MaxNodeNumber() int {
	maxNumber := 0
	for _, n := range d.Nodes {
		if n.NodeNumber > maxNumber {
			maxNumber = n.NodeNumber
		}
	}
	return maxNumber
}

// NextNodeNumber returns the counter seed used after a diagram is loaded
func (d *Diagram) NextNodeNumber() int {
	return d.MaxNodeNumber() + 1
}

// NodeRects returns the bounding boxes of all nodes
func (d *Diagram) NodeRects() []geom.Rect {
	rects := make([]geom.Rect, len(d.Nodes))
	for i, n := range d.Nodes {
		rects[i] = n.Bounds()
	}
	return rects
}

// Bounds returns the union of all node boxes. ok is false for an empty diagram.
func (d *Diagram) Bounds() (geom.Rect, bool) {
	return geom.BoundingRect(d.NodeRects())
}

// IsEmpty reports whether the diagram has no nodes and no connections
func (d *Diagram) IsEmpty() bool {
	return len(d.Nodes) == 0 && len(d.Connections) == 0
}
