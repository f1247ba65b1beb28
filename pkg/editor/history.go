package editor

import (
	"time"

	"github.com/dshills/flowcanvas/pkg/diagram"
)

// DefaultHistoryDepth keeps only the most recent destructive operation
const DefaultHistoryDepth = 1

// snapshot is the state captured before a destructive operation
type snapshot struct {
	Diagram              diagram.Diagram // Deep copy of nodes and connections
	SelectedNodeID       string
	SelectedConnectionID string
	Timestamp            time.Time
}

// History is a bounded stack of snapshots. When full, the oldest snapshot is
// dropped. There is no redo: undoing pops the snapshot for good.
type History struct {
	snapshots []snapshot
	capacity  int
}

// NewHistory creates a history holding at most capacity snapshots
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryDepth
	}

	return &History{
		snapshots: make([]snapshot, 0, capacity),
		capacity:  capacity,
	}
}

// Push records a snapshot, evicting the oldest one at capacity
func (h *History) Push(s snapshot) {
	s.Diagram = s.Diagram.Clone()

	if len(h.snapshots) >= h.capacity {
		copy(h.snapshots, h.snapshots[1:])
		h.snapshots[len(h.snapshots)-1] = s
		return
	}
	h.snapshots = append(h.snapshots, s)
}

// Pop removes and returns the most recent snapshot
func (h *History) Pop() (snapshot, bool) {
	if len(h.snapshots) == 0 {
		return snapshot{}, false
	}

	last := h.snapshots[len(h.snapshots)-1]
	h.snapshots = h.snapshots[:len(h.snapshots)-1]
	return last, true
}

// CanUndo returns true if a snapshot is available
func (h *History) CanUndo() bool {
	return len(h.snapshots) > 0
}

// Clear drops every snapshot
func (h *History) Clear() {
	h.snapshots = h.snapshots[:0]
}

// Size returns the current number of snapshots
func (h *History) Size() int {
	return len(h.snapshots)
}
