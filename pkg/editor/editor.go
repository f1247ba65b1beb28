// Package editor implements the headless flowchart editor: the node and
// connection store, the pointer/keyboard interaction state machine, undo,
// notifications and local persistence. An Editor is owned by a single caller
// and is not safe for concurrent use; only ExportPNG does work on another
// goroutine.
package editor

import (
	"sync/atomic"
	"time"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/geom"
	"github.com/dshills/flowcanvas/pkg/logging"
	"github.com/dshills/flowcanvas/pkg/render"
	"github.com/dshills/flowcanvas/pkg/router"
	"github.com/dshills/flowcanvas/pkg/storage"
	"github.com/dshills/flowcanvas/pkg/viewport"
	"go.uber.org/zap"
)

// dragState tracks a node press until the pointer is released
type dragState struct {
	nodeID string
	press  geom.Point // screen
	moved  bool
}

// connectState is the rubber band drawn from an anchor
type connectState struct {
	from    diagram.Endpoint
	current geom.Point // world
}

// Editor is the flowchart editing core
type Editor struct {
	doc     diagram.Diagram
	counter int // next node number

	tool                 Tool
	mode                 Mode
	selectedNodeID       string
	selectedConnectionID string
	editingNodeID        string
	draft                []rune
	caret                int
	drag                 *dragState
	connecting           *connectState
	hovered              *diagram.Endpoint
	panLast              geom.Point

	transform     viewport.Transform
	history       *History
	notifications Notifications
	overlaysOff   bool
	exporting     atomic.Bool

	readOnly   bool
	initial    diagram.Diagram
	confirm    Confirmer
	fullscreen FullscreenController
	store      storage.KeyValueStore
	router     router.PathRouter
	logger     *zap.Logger
	now        func() time.Time
	onChange   ChangeFunc
}

// New creates an editor. Without options it is an empty, editable canvas
// with the select tool, an in-memory store and single-level undo.
func New(opts ...Option) *Editor {
	e := &Editor{
		tool:      ToolSelect,
		mode:      ModeIdle,
		transform: viewport.Identity(),
		initial:   diagram.New(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.history == nil {
		e.history = NewHistory(DefaultHistoryDepth)
	}
	if e.store == nil {
		e.store = storage.NewMemoryStore()
	}
	if e.router == nil {
		e.router = router.NewHeuristicRouter()
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.logger = logging.OrNop(e.logger)

	e.doc = e.initial.Clone()
	e.counter = e.doc.NextNodeNumber()
	e.initial = diagram.Diagram{}
	return e
}

// Diagram returns a copy of the current diagram
func (e *Editor) Diagram() diagram.Diagram {
	return e.doc.Clone()
}

// Nodes returns a copy of the nodes in paint order
func (e *Editor) Nodes() []diagram.Node {
	return e.doc.Clone().Nodes
}

// Connections returns a copy of the connections
func (e *Editor) Connections() []diagram.Connection {
	return e.doc.Clone().Connections
}

// Node returns a copy of the node with the given ID
func (e *Editor) Node(id string) (diagram.Node, bool) {
	n, ok := e.doc.Node(id)
	if !ok {
		return diagram.Node{}, false
	}
	return *n, true
}

// NextNodeNumber is the number the next created node will receive
func (e *Editor) NextNodeNumber() int { return e.counter }

// ReadOnly reports whether mutations are disabled
func (e *Editor) ReadOnly() bool { return e.readOnly }

// Tool returns the active tool
func (e *Editor) Tool() Tool { return e.tool }

// Mode returns the in-progress gesture
func (e *Editor) Mode() Mode { return e.mode }

// SelectedNodeID returns the selected node, or ""
func (e *Editor) SelectedNodeID() string { return e.selectedNodeID }

// SelectedConnectionID returns the selected connection, or ""
func (e *Editor) SelectedConnectionID() string { return e.selectedConnectionID }

// EditingNodeID returns the node whose text is being edited, or ""
func (e *Editor) EditingNodeID() string { return e.editingNodeID }

// Draft returns the text being edited
func (e *Editor) Draft() string { return string(e.draft) }

// Caret returns the caret position in the draft, in runes
func (e *Editor) Caret() int { return e.caret }

// HoveredAnchor returns the anchor highlighted while drawing a connection
func (e *Editor) HoveredAnchor() (diagram.Endpoint, bool) {
	if e.hovered == nil {
		return diagram.Endpoint{}, false
	}
	return *e.hovered, true
}

// Transform returns the viewport transform
func (e *Editor) Transform() viewport.Transform { return e.transform }

// CanUndo reports whether Undo would restore a snapshot
func (e *Editor) CanUndo() bool { return e.history.CanUndo() }

// Notification returns the visible notification, or nil
func (e *Editor) Notification() *Notification {
	return e.notifications.Current(e.now())
}

// Apply executes a viewport command sent by the host
func (e *Editor) Apply(cmd viewport.Command) {
	cmd.Apply(&e.transform)
}

// FitToContent centers every node inside a viewport of the given size
func (e *Editor) FitToContent(size geom.Size) {
	e.transform.FitToContent(e.doc.NodeRects(), size, viewport.DefaultFitPadding)
}

// SetTool switches the active tool and abandons any connection being drawn
func (e *Editor) SetTool(t Tool) {
	if e.tool == t {
		return
	}
	e.tool = t
	if e.mode == ModeConnecting {
		e.mode = ModeIdle
	}
	e.connecting = nil
	e.hovered = nil
}

// Scene builds the drawing list for the current state
func (e *Editor) Scene() render.Scene {
	return render.Build(e.doc, e.router, e.overlays())
}

func (e *Editor) overlays() render.Overlays {
	if e.overlaysOff {
		return render.Overlays{}
	}

	ov := render.Overlays{
		SelectedNodeID:       e.selectedNodeID,
		SelectedConnectionID: e.selectedConnectionID,
		EditingNodeID:        e.editingNodeID,
		DraftText:            string(e.draft),
		ShowAnchors:          e.tool == ToolArrow && !e.readOnly,
	}
	if e.connecting != nil {
		if start, ok := e.doc.AnchorPoint(e.connecting.from); ok {
			ov.Preview = []geom.Point{start, e.connecting.current}
		}
	}
	return ov
}

// notify publishes a notification and logs it
func (e *Editor) notify(level Level, message string) {
	note := e.notifications.Publish(level, message, e.now())
	e.logger.Debug("notification",
		zap.String("id", note.ID),
		zap.String("level", string(level)),
		zap.String("message", message))
}

// changed fires the host callback with copies of the diagram
func (e *Editor) changed() {
	if e.onChange == nil {
		return
	}
	d := e.doc.Clone()
	e.onChange(d.Nodes, d.Connections)
}

// confirmed asks the injected confirmer, approving when none is set
func (e *Editor) confirmed(prompt string) bool {
	if e.confirm == nil {
		return true
	}
	return e.confirm.Confirm(prompt)
}

// replace swaps in a whole diagram and discards every piece of interaction state
func (e *Editor) replace(d diagram.Diagram) {
	e.doc = d.Clone()
	e.counter = e.doc.NextNodeNumber()
	e.clearSelection()
	e.editingNodeID = ""
	e.draft = nil
	e.caret = 0
	e.drag = nil
	e.connecting = nil
	e.hovered = nil
	e.mode = ModeIdle
	e.history.Clear()
}

func (e *Editor) clearSelection() {
	e.selectedNodeID = ""
	e.selectedConnectionID = ""
}
