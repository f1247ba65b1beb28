package editor

import (
	"time"

	"github.com/google/uuid"
)

// NotificationTTL is how long a notification stays visible
const NotificationTTL = 3 * time.Second

// Level classifies a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a transient message shown to the user
type Notification struct {
	ID        string
	Level     Level
	Message   string
	CreatedAt time.Time
}

// Expired reports whether the notification should no longer be shown at now
func (n Notification) Expired(now time.Time) bool {
	return now.Sub(n.CreatedAt) >= NotificationTTL
}

// Notifications holds the latest notification. A new one replaces the
// previous; expiry is evaluated lazily so no timer is needed.
type Notifications struct {
	latest *Notification
}

// Publish replaces the current notification
func (n *Notifications) Publish(level Level, message string, now time.Time) Notification {
	note := Notification{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
	}
	n.latest = &note
	return note
}

// Current returns the visible notification at now, or nil once it expired
func (n *Notifications) Current(now time.Time) *Notification {
	if n.latest == nil || n.latest.Expired(now) {
		return nil
	}
	note := *n.latest
	return &note
}

// Dismiss hides the current notification
func (n *Notifications) Dismiss() {
	n.latest = nil
}
