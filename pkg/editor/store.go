package editor

import (
	"fmt"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/geom"
	"go.uber.org/zap"
)

// CreateNode adds a node with its top-left at world and selects it. Only the
// text tool creates nodes, and never in read-only mode.
func (e *Editor) CreateNode(world geom.Point) (diagram.Node, bool) {
	if e.readOnly || e.tool != ToolText {
		return diagram.Node{}, false
	}

	// Imported IDs need not follow their numbers, so skip numbers whose ID is taken
	for {
		if _, taken := e.doc.Node(diagram.NodeIDFor(e.counter)); !taken {
			break
		}
		e.counter++
	}
	n := diagram.NewNode(e.counter, world)
	e.counter++
	e.doc.AddNode(n)
	e.selectedNodeID = n.ID
	e.selectedConnectionID = ""

	e.logger.Debug("node created", zap.String("id", n.ID), zap.Int("number", n.NodeNumber))
	e.changed()
	return n, true
}

// UpdateNodeText replaces the label of a node
func (e *Editor) UpdateNodeText(id, text string) bool {
	if e.readOnly {
		return false
	}
	n, ok := e.doc.Node(id)
	if !ok {
		return false
	}
	if n.Text == text {
		return true
	}

	n.Text = text
	e.changed()
	return true
}

// MoveNode puts the top-left corner of a node at world. Only the select and
// arrow tools move nodes.
func (e *Editor) MoveNode(id string, world geom.Point) bool {
	if e.readOnly || (e.tool != ToolSelect && e.tool != ToolArrow) {
		return false
	}
	n, ok := e.doc.Node(id)
	if !ok {
		return false
	}

	n.X = world.X
	n.Y = world.Y
	e.changed()
	return true
}

// DeleteNode removes a node and every connection touching it after the user
// confirms. The prior state is kept for Undo.
func (e *Editor) DeleteNode(id string) bool {
	if e.readOnly {
		return false
	}
	n, ok := e.doc.Node(id)
	if !ok {
		return false
	}
	number := n.NodeNumber

	if !e.confirmed(fmt.Sprintf("Delete node #%d and all its connections?", number)) {
		return false
	}

	e.pushSnapshot()
	e.doc.RemoveNode(id)
	if e.selectedNodeID == id {
		e.selectedNodeID = ""
	}
	if e.editingNodeID == id {
		e.stopEditing()
	}
	if e.drag != nil && e.drag.nodeID == id {
		e.drag = nil
		e.mode = ModeIdle
	}

	e.logger.Debug("node deleted", zap.String("id", id))
	e.notify(LevelInfo, fmt.Sprintf("Deleted node #%d", number))
	e.changed()
	return true
}

// DeleteConnection removes a connection. The prior state is kept for Undo.
func (e *Editor) DeleteConnection(id string) bool {
	if e.readOnly {
		return false
	}
	if _, ok := e.doc.Connection(id); !ok {
		return false
	}

	e.pushSnapshot()
	e.doc.RemoveConnection(id)
	if e.selectedConnectionID == id {
		e.selectedConnectionID = ""
	}

	e.logger.Debug("connection deleted", zap.String("id", id))
	e.notify(LevelInfo, "Deleted connection")
	e.changed()
	return true
}

// Connect adds a connection between anchors of two different existing nodes.
// Self-loops and unknown endpoints are rejected silently.
func (e *Editor) Connect(from, to diagram.Endpoint) (diagram.Connection, bool) {
	if e.readOnly {
		return diagram.Connection{}, false
	}

	c := diagram.Connection{ID: e.nextConnectionID(), From: from, To: to}
	if err := c.Validate(); err != nil {
		e.logger.Debug("connection rejected", zap.Error(err))
		return diagram.Connection{}, false
	}
	if !from.AnchorPosition.Valid() || !to.AnchorPosition.Valid() {
		return diagram.Connection{}, false
	}
	if _, ok := e.doc.Node(from.NodeID); !ok {
		return diagram.Connection{}, false
	}
	if _, ok := e.doc.Node(to.NodeID); !ok {
		return diagram.Connection{}, false
	}

	e.doc.AddConnection(c)
	e.logger.Debug("connection created",
		zap.String("id", c.ID),
		zap.String("from", from.NodeID),
		zap.String("to", to.NodeID))
	e.changed()
	return c, true
}

// Undo restores the most recent snapshot taken before a deletion
func (e *Editor) Undo() bool {
	if e.readOnly {
		return false
	}
	s, ok := e.history.Pop()
	if !ok {
		return false
	}

	e.doc = s.Diagram
	e.selectedNodeID = s.SelectedNodeID
	e.selectedConnectionID = s.SelectedConnectionID

	e.notify(LevelInfo, "Undid delete")
	e.changed()
	return true
}

// SelectNode selects a node, clearing any connection selection
func (e *Editor) SelectNode(id string) bool {
	if e.readOnly {
		return false
	}
	if _, ok := e.doc.Node(id); !ok {
		return false
	}
	e.selectedNodeID = id
	e.selectedConnectionID = ""
	return true
}

// SelectConnection selects a connection, clearing any node selection
func (e *Editor) SelectConnection(id string) bool {
	if e.readOnly {
		return false
	}
	if _, ok := e.doc.Connection(id); !ok {
		return false
	}
	e.selectedConnectionID = id
	e.selectedNodeID = ""
	return true
}

// ClearSelection deselects everything
func (e *Editor) ClearSelection() {
	e.clearSelection()
}

// DeleteSelection deletes the selected node (with confirmation) or connection
func (e *Editor) DeleteSelection() bool {
	switch {
	case e.selectedNodeID != "":
		return e.DeleteNode(e.selectedNodeID)
	case e.selectedConnectionID != "":
		return e.DeleteConnection(e.selectedConnectionID)
	}
	return false
}

func (e *Editor) pushSnapshot() {
	e.history.Push(snapshot{
		Diagram:              e.doc,
		SelectedNodeID:       e.selectedNodeID,
		SelectedConnectionID: e.selectedConnectionID,
		Timestamp:            e.now(),
	})
}

// nextConnectionID derives an ID from the clock, bumping past IDs in use
func (e *Editor) nextConnectionID() string {
	ms := e.now().UnixMilli()
	for {
		id := diagram.ConnectionIDFor(ms)
		if _, taken := e.doc.Connection(id); !taken {
			return id
		}
		ms++
	}
}
