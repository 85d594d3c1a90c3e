// Package view defines the binding the session controller renders into.
// The tview TUI implements it for interactive use; tests substitute fakes.
package view

import (
	"time"

	"github.com/matheus3301/pawchat/internal/preview"
)

// Delivery status shown next to outgoing messages.
const (
	StatusNone = "none" // incoming: no status icon
	StatusSent = "sent" // single check
	StatusRead = "read" // double check
)

// Message is the render model for one chat bubble.
type Message struct {
	ID       int64
	SenderID int64
	Content  string
	Time     time.Time
	Outgoing bool
	Status   string
}

// View is the surface a dialog session renders into. Implementations must
// tolerate calls from the controller's read-loop goroutine.
type View interface {
	// AppendMessage adds a bubble at the end and scrolls to it.
	AppendMessage(m Message)
	// MarkRead upgrades the status icon of a previously appended outgoing
	// message. Unknown ids are ignored.
	MarkRead(messageID int64)
	// SetTyping shows or hides the peer typing indicator.
	SetTyping(username string, typing bool)
	// SetPresence updates the online/offline label.
	SetPresence(online bool)
	// ShowPreview appends a local media preview to the preview panel and
	// makes the panel visible.
	ShowPreview(p preview.Preview)
	// ShowError surfaces a user-facing action failure.
	ShowError(msg string)
	// ClearInput empties the composer after a successful send.
	ClearInput()
}
