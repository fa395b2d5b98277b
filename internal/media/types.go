// Package media defines shared types for the sublookup application.
package media

import (
	"strings"
	"time"
)

// ProcessState is the lifecycle state of the launched player.
type ProcessState string

const (
	NotStarted ProcessState = "not-started"
	Running    ProcessState = "running"
	Exited     ProcessState = "exited"
)

// WindowHandle is an opaque OS identifier for the player's top-level window
// (an X11 window id as printed by xdotool).
type WindowHandle string

func (w WindowHandle) String() string { return string(w) }

// Endpoint is the discovered address of the player's control socket.
// The zero value means unresolved.
type Endpoint string

func (e Endpoint) String() string { return string(e) }

// IsUnix reports whether the endpoint names a filesystem socket rather than
// a tcp address or similar.
func (e Endpoint) IsUnix() bool {
	return strings.HasPrefix(string(e), "/")
}

// Snapshot is the last subtitle text read from the player.
type Snapshot struct {
	Text     string
	Observed bool // false until the first non-empty reading
}

func (s Snapshot) String() string {
	if !s.Observed {
		return "none"
	}
	return s.Text
}

// SelectionEvent is a text fragment the user picked from the displayed subtitle.
// It is consumed immediately and never stored.
type SelectionEvent struct {
	Text string
	At   time.Time
}

// NewSelection stamps a selection with the current time.
func NewSelection(text string) SelectionEvent {
	return SelectionEvent{Text: text, At: time.Now()}
}
