package checklist

import (
	"time"

	"github.com/dshills/flowcanvas/pkg/editor"
)

// notices holds the host's user-facing messages, with the same expiry as the editor's
type notices struct {
	list editor.Notifications
	now  func() time.Time
}

func newNotices() notices {
	return notices{now: time.Now}
}

func (n *notices) publish(level editor.Level, message string) {
	n.list.Publish(level, message, n.now())
}

// Notification returns the visible host notification, or nil
func (n *notices) Notification() *editor.Notification {
	return n.list.Current(n.now())
}
