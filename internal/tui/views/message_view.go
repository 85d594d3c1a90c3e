package views

import (
	"fmt"
	"sync"

	"github.com/matheus3301/pawchat/internal/view"
	"github.com/rivo/tview"
)

// MessageView displays the message list for the open dialog.
type MessageView struct {
	*tview.TextView

	mu   sync.Mutex
	msgs []view.Message
}

// NewMessageView creates a new message view.
func NewMessageView() *MessageView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Messages ")

	return &MessageView{TextView: tv}
}

// Append adds a message bubble at the end and scrolls to it.
func (mv *MessageView) Append(m view.Message) {
	mv.mu.Lock()
	mv.msgs = append(mv.msgs, m)
	mv.mu.Unlock()
	mv.render()
}

// MarkRead upgrades the status icon of the outgoing message with the given
// id. Unknown ids are ignored.
func (mv *MessageView) MarkRead(messageID int64) {
	mv.mu.Lock()
	changed := false
	for i := range mv.msgs {
		if mv.msgs[i].ID == messageID && mv.msgs[i].Outgoing {
			mv.msgs[i].Status = view.StatusRead
			changed = true
		}
	}
	mv.mu.Unlock()
	if changed {
		mv.render()
	}
}

func (mv *MessageView) render() {
	mv.mu.Lock()
	defer mv.mu.Unlock()

	mv.Clear()
	for _, m := range mv.msgs {
		_, _ = fmt.Fprint(mv.TextView, formatMessage(m))
	}
	mv.ScrollToEnd()
}

func formatMessage(m view.Message) string {
	ts := ""
	if !m.Time.IsZero() {
		ts = m.Time.Format("15:04")
	}

	if m.Outgoing {
		return fmt.Sprintf("[green::b]You[-:-:-] [::d]%s[-:-:-] %s\n%s\n\n", ts, statusIcon(m.Status), m.Content)
	}
	return fmt.Sprintf("[yellow::b]#%d[-:-:-] [::d]%s[-:-:-]\n%s\n\n", m.SenderID, ts, m.Content)
}

func statusIcon(status string) string {
	switch status {
	case view.StatusRead:
		return "[blue]✓✓[-]"
	case view.StatusSent:
		return "✓"
	default:
		return ""
	}
}
