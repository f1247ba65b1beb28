package editor

import (
	"math"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/geom"
	"github.com/dshills/flowcanvas/pkg/render"
	"go.uber.org/zap"
)

// Interaction tuning
const (
	// DragThreshold is the screen distance a press must travel before a node moves
	DragThreshold = 5.0
	// AnchorHitRadius is the base anchor hit radius in world units
	AnchorHitRadius = 10.0
	// MaxAnchorHitRadius caps the anchor hit radius when zoomed out
	MaxAnchorHitRadius = 15.0
	// ConnectionTolerance is how close to a routed path a press selects it, in world units
	ConnectionTolerance = 6.0
)

// anchorRadius grows the hit radius as the view zooms out so handles stay reachable
func (e *Editor) anchorRadius() float64 {
	scale := e.transform.Scale
	if scale <= 0 {
		scale = 1
	}
	return math.Min(math.Max(AnchorHitRadius/scale, AnchorHitRadius), MaxAnchorHitRadius)
}

// HitTest reports what lies under a screen point. Anchors are only hit with
// the arrow tool; nodes are tested topmost first.
func (e *Editor) HitTest(screen geom.Point) Hit {
	world := e.transform.ScreenToWorld(screen)

	if e.tool == ToolArrow && !e.readOnly {
		if ep, ok := e.anchorAt(world, ""); ok {
			return Hit{Kind: HitAnchor, NodeID: ep.NodeID, Anchor: ep.AnchorPosition}
		}
	}

	if id, ok := e.nodeAt(world); ok {
		return Hit{Kind: HitNode, NodeID: id}
	}

	if id, ok := e.connectionAt(world); ok {
		return Hit{Kind: HitConnection, ConnectionID: id}
	}

	return Hit{Kind: HitCanvas}
}

// anchorAt returns the topmost anchor within reach of world, ignoring the
// anchors of skipNodeID
func (e *Editor) anchorAt(world geom.Point, skipNodeID string) (diagram.Endpoint, bool) {
	radius := e.anchorRadius()
	for i := len(e.doc.Nodes) - 1; i >= 0; i-- {
		n := e.doc.Nodes[i]
		if n.ID == skipNodeID {
			continue
		}
		for _, a := range diagram.Anchors {
			if n.AnchorPoint(a).Distance(world) < radius {
				return diagram.Endpoint{NodeID: n.ID, AnchorPosition: a}, true
			}
		}
	}
	return diagram.Endpoint{}, false
}

func (e *Editor) nodeAt(world geom.Point) (string, bool) {
	for i := len(e.doc.Nodes) - 1; i >= 0; i-- {
		if e.doc.Nodes[i].Bounds().Contains(world) {
			return e.doc.Nodes[i].ID, true
		}
	}
	return "", false
}

func (e *Editor) connectionAt(world geom.Point) (string, bool) {
	for i := len(e.doc.Connections) - 1; i >= 0; i-- {
		c := e.doc.Connections[i]
		path, ok := render.RouteConnection(e.doc, e.router, c)
		if !ok {
			continue
		}
		if geom.DistanceToPolyline(world, path.Points) <= ConnectionTolerance {
			return c.ID, true
		}
	}
	return "", false
}

// PointerDown handles a press. Read-only editors and the middle button only pan.
func (e *Editor) PointerDown(ev PointerEvent) {
	if ev.Button == ButtonMiddle || e.readOnly {
		e.startPan(ev.Screen)
		return
	}
	if ev.Button != ButtonPrimary {
		return
	}

	hit := e.HitTest(ev.Screen)
	world := e.transform.ScreenToWorld(ev.Screen)

	// Pressing anywhere but the edited node blurs the text input
	if e.mode == ModeEditingText && !(hit.Kind == HitNode && hit.NodeID == e.editingNodeID) {
		e.Blur()
	}

	switch hit.Kind {
	case HitAnchor:
		e.connecting = &connectState{from: hit.Endpoint(), current: world}
		e.hovered = nil
		e.mode = ModeConnecting

	case HitNode:
		if hit.NodeID == e.editingNodeID {
			// The press lands on the text input of the edited node
			return
		}
		e.selectedNodeID = hit.NodeID
		e.selectedConnectionID = ""
		if e.tool == ToolSelect || e.tool == ToolArrow {
			e.drag = &dragState{nodeID: hit.NodeID, press: ev.Screen}
			e.mode = ModeDragging
		}

	case HitConnection:
		e.selectedConnectionID = hit.ConnectionID
		e.selectedNodeID = ""

	case HitCanvas:
		// Deselection wins over creation on the same press
		if e.selectedNodeID != "" || e.selectedConnectionID != "" {
			e.clearSelection()
			return
		}
		switch e.tool {
		case ToolText:
			e.CreateNode(world)
		case ToolSelect:
			e.startPan(ev.Screen)
		}
	}
}

// PointerMove handles pointer motion for the active gesture
func (e *Editor) PointerMove(ev PointerEvent) {
	switch e.mode {
	case ModePanning:
		e.transform.Pan(ev.Screen.X-e.panLast.X, ev.Screen.Y-e.panLast.Y)
		e.panLast = ev.Screen

	case ModeDragging:
		if e.drag == nil {
			e.mode = ModeIdle
			return
		}
		if !e.drag.moved {
			dx := math.Abs(ev.Screen.X - e.drag.press.X)
			dy := math.Abs(ev.Screen.Y - e.drag.press.Y)
			if dx <= DragThreshold && dy <= DragThreshold {
				return
			}
			e.drag.moved = true
		}
		e.MoveNode(e.drag.nodeID, e.transform.ScreenToWorld(ev.Screen))

	case ModeConnecting:
		world := e.transform.ScreenToWorld(ev.Screen)
		e.connecting.current = world
		if ep, ok := e.anchorAt(world, e.connecting.from.NodeID); ok {
			e.hovered = &ep
		} else {
			e.hovered = nil
		}
	}
}

// PointerUp ends the active gesture. A connection is created only when the
// release lands on an anchor of a different node.
func (e *Editor) PointerUp(ev PointerEvent) {
	switch e.mode {
	case ModeDragging:
		e.drag = nil
		e.mode = ModeIdle

	case ModePanning:
		e.mode = ModeIdle

	case ModeConnecting:
		from := e.connecting.from
		e.connecting = nil
		e.hovered = nil
		e.mode = ModeIdle

		if e.tool != ToolArrow {
			return
		}
		to, ok := e.anchorAt(e.transform.ScreenToWorld(ev.Screen), from.NodeID)
		if !ok {
			return
		}
		e.Connect(from, to)
	}
}

// DoubleClick starts editing the text of the node under the pointer
func (e *Editor) DoubleClick(ev PointerEvent) {
	if e.readOnly || (e.tool != ToolSelect && e.tool != ToolArrow) {
		return
	}
	id, ok := e.nodeAt(e.transform.ScreenToWorld(ev.Screen))
	if !ok {
		return
	}
	e.StartEditing(id)
}

// StartEditing opens the text input of a node with the caret at the end
func (e *Editor) StartEditing(id string) bool {
	if e.readOnly {
		return false
	}
	n, ok := e.doc.Node(id)
	if !ok {
		return false
	}
	if e.mode == ModeEditingText && e.editingNodeID != id {
		e.Blur()
	}

	e.drag = nil
	e.connecting = nil
	e.editingNodeID = id
	e.draft = []rune(n.Text)
	e.caret = len(e.draft)
	e.mode = ModeEditingText
	return true
}

// SetDraft replaces the text being edited, leaving the caret at the end
func (e *Editor) SetDraft(text string) {
	if e.mode != ModeEditingText {
		return
	}
	e.draft = []rune(text)
	e.caret = len(e.draft)
}

// Blur leaves text editing, writing the draft back to the node
func (e *Editor) Blur() {
	if e.mode != ModeEditingText {
		return
	}
	id := e.editingNodeID
	text := string(e.draft)
	e.stopEditing()
	e.UpdateNodeText(id, text)
}

func (e *Editor) stopEditing() {
	e.editingNodeID = ""
	e.draft = nil
	e.caret = 0
	if e.mode == ModeEditingText {
		e.mode = ModeIdle
	}
}

// Wheel zooms around the pointer. It works in read-only mode too.
func (e *Editor) Wheel(ev WheelEvent) {
	e.transform.ZoomAt(ev.Screen, ev.DeltaY)
}

func (e *Editor) startPan(screen geom.Point) {
	e.panLast = screen
	e.mode = ModePanning
}

// KeyDown handles keyboard shortcuts. While a node is being edited, keys go
// to its text input instead.
func (e *Editor) KeyDown(ev KeyEvent) {
	if ev.IsSpecial && ev.Special == KeyF11 {
		e.toggleFullscreen()
		return
	}

	if e.mode == ModeEditingText {
		e.editKey(ev)
		return
	}

	switch {
	case ev.IsSpecial && ev.Special == KeyEscape:
		e.clearSelection()
		if e.mode == ModeConnecting {
			e.connecting = nil
			e.hovered = nil
			e.mode = ModeIdle
		}
		e.exitFullscreen()

	case ev.IsSpecial && ev.Special == KeyDelete:
		e.DeleteSelection()

	case ev.Ctrl && (ev.Key == 'z' || ev.Key == 'Z'):
		e.Undo()
	}
}

// editKey applies a key to the draft of the edited node
func (e *Editor) editKey(ev KeyEvent) {
	if !ev.IsSpecial {
		if ev.Ctrl || ev.Alt || ev.Key == 0 {
			return
		}
		e.insert(ev.Key)
		return
	}

	switch ev.Special {
	case KeyEscape:
		e.Blur()
		e.exitFullscreen()
	case KeyEnter:
		e.insert('\n')
	case KeyBackspace:
		if e.caret > 0 {
			e.draft = append(e.draft[:e.caret-1], e.draft[e.caret:]...)
			e.caret--
		}
	case KeyDelete:
		if e.caret < len(e.draft) {
			e.draft = append(e.draft[:e.caret], e.draft[e.caret+1:]...)
		}
	case KeyLeft:
		if e.caret > 0 {
			e.caret--
		}
	case KeyRight:
		if e.caret < len(e.draft) {
			e.caret++
		}
	}
}

func (e *Editor) insert(r rune) {
	draft := make([]rune, 0, len(e.draft)+1)
	draft = append(draft, e.draft[:e.caret]...)
	draft = append(draft, r)
	draft = append(draft, e.draft[e.caret:]...)
	e.draft = draft
	e.caret++
}

func (e *Editor) toggleFullscreen() {
	if e.fullscreen == nil {
		return
	}
	var err error
	if e.fullscreen.IsFullscreen() {
		err = e.fullscreen.Exit()
	} else {
		err = e.fullscreen.Enter()
	}
	if err != nil {
		e.logger.Warn("fullscreen toggle failed", zap.Error(err))
	}
}

func (e *Editor) exitFullscreen() {
	if e.fullscreen == nil || !e.fullscreen.IsFullscreen() {
		return
	}
	if err := e.fullscreen.Exit(); err != nil {
		e.logger.Warn("exit fullscreen failed", zap.Error(err))
	}
}
