package editor

import (
	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/geom"
)

// Tool is the active toolbar tool
type Tool int

const (
	// ToolSelect drags nodes and pans the empty canvas
	ToolSelect Tool = iota
	// ToolText creates nodes on empty canvas clicks
	ToolText
	// ToolArrow draws connections between anchors; nodes can still be dragged
	ToolArrow
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolText:
		return "text"
	case ToolArrow:
		return "arrow"
	default:
		return "unknown"
	}
}

// Mode is the in-progress gesture. At most one is active.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeConnecting
	ModeEditingText
	ModePanning
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDragging:
		return "dragging"
	case ModeConnecting:
		return "connecting"
	case ModeEditingText:
		return "editing"
	case ModePanning:
		return "panning"
	default:
		return "unknown"
	}
}

// Button identifies the pointer button of a press
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// PointerEvent is a pointer press, move, release or double click in screen coordinates
type PointerEvent struct {
	Screen geom.Point
	Button Button
}

// WheelEvent is a wheel tick at a screen position. Negative DeltaY zooms in.
type WheelEvent struct {
	Screen geom.Point
	DeltaY float64
}

// KeyEvent represents a keyboard event
type KeyEvent struct {
	Key       rune   // The character pressed
	Ctrl      bool   // Ctrl modifier
	Shift     bool   // Shift modifier
	Alt       bool   // Alt modifier
	IsSpecial bool   // Whether this is a special key
	Special   string // Special key name (Delete, Escape, F11, etc.)
}

// Special key names understood by the editor
const (
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
	KeyEscape    = "Escape"
	KeyEnter     = "Enter"
	KeyLeft      = "Left"
	KeyRight     = "Right"
	KeyF11       = "F11"
)

// SpecialKey builds a KeyEvent for a named key
func SpecialKey(name string) KeyEvent {
	return KeyEvent{IsSpecial: true, Special: name}
}

// CharKey builds a KeyEvent for a typed character
func CharKey(r rune) KeyEvent {
	return KeyEvent{Key: r}
}

// CtrlKey builds a KeyEvent for Ctrl plus a character
func CtrlKey(r rune) KeyEvent {
	return KeyEvent{Key: r, Ctrl: true}
}

// HitKind classifies what lies under a pointer
type HitKind int

const (
	HitCanvas HitKind = iota
	HitAnchor
	HitNode
	HitConnection
)

// Hit is the result of hit testing a world point
type Hit struct {
	Kind         HitKind
	NodeID       string
	Anchor       diagram.Anchor
	ConnectionID string
}

// Endpoint returns the anchor endpoint of an anchor hit
func (h Hit) Endpoint() diagram.Endpoint {
	return diagram.Endpoint{NodeID: h.NodeID, AnchorPosition: h.Anchor}
}
