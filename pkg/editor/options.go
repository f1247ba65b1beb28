package editor

import (
	"time"

	"github.com/dshills/flowcanvas/pkg/diagram"
	"github.com/dshills/flowcanvas/pkg/router"
	"github.com/dshills/flowcanvas/pkg/storage"
	"go.uber.org/zap"
)

// Confirmer asks the user to confirm a destructive action
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(prompt string) bool

// Confirm calls f
func (f ConfirmFunc) Confirm(prompt string) bool {
	return f(prompt)
}

// FullscreenController enters and leaves the presentation mode of the host
type FullscreenController interface {
	IsFullscreen() bool
	Enter() error
	Exit() error
}

// ChangeFunc receives the diagram after every mutation. The slices are copies.
type ChangeFunc func(nodes []diagram.Node, connections []diagram.Connection)

// Option configures an Editor
type Option func(*Editor)

// WithReadOnly disables every mutation; only pan and zoom stay active
func WithReadOnly(readOnly bool) Option {
	return func(e *Editor) {
		e.readOnly = readOnly
	}
}

// WithConfirmer sets the confirmation prompt used by node deletion and reset.
// Without one every prompt is approved.
func WithConfirmer(c Confirmer) Option {
	return func(e *Editor) {
		e.confirm = c
	}
}

// WithStore sets the durable store behind SaveLocal and LoadLocal
func WithStore(s storage.KeyValueStore) Option {
	return func(e *Editor) {
		e.store = s
	}
}

// WithFullscreen sets the controller toggled by F11 and left by Escape
func WithFullscreen(f FullscreenController) Option {
	return func(e *Editor) {
		e.fullscreen = f
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(e *Editor) {
		e.logger = l
	}
}

// WithRouter replaces the connection router
func WithRouter(r router.PathRouter) Option {
	return func(e *Editor) {
		e.router = r
	}
}

// WithClock sets the time source used for connection IDs and notifications
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// WithOnChange registers the callback fired after every mutation
func WithOnChange(fn ChangeFunc) Option {
	return func(e *Editor) {
		e.onChange = fn
	}
}

// WithHistoryDepth sets how many destructive operations can be undone
func WithHistoryDepth(depth int) Option {
	return func(e *Editor) {
		e.history = NewHistory(depth)
	}
}

// WithInitial seeds the editor with a diagram supplied by the host
func WithInitial(nodes []diagram.Node, connections []diagram.Connection) Option {
	return func(e *Editor) {
		e.initial = diagram.FromParts(nodes, connections)
	}
}
