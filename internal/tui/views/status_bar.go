package views

import (
	"fmt"

	"github.com/rivo/tview"
)

// StatusBar displays the dialog, channel state, peer presence and flashes.
type StatusBar struct {
	*tview.TextView
	dialog     string
	connState  string
	online     bool
	typingUser string
	flash      string
}

// NewStatusBar creates a new status bar.
func NewStatusBar() *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv}
}

// SetDialog updates the dialog id display.
func (sb *StatusBar) SetDialog(id string) {
	sb.dialog = id
	sb.render()
}

// SetConnState updates the channel state display.
func (sb *StatusBar) SetConnState(state string) {
	sb.connState = state
	sb.render()
}

// SetPresence updates the peer online/offline label.
func (sb *StatusBar) SetPresence(online bool) {
	sb.online = online
	sb.render()
}

// SetTypingUser shows who is typing; empty hides the indicator.
func (sb *StatusBar) SetTypingUser(username string) {
	sb.typingUser = username
	sb.render()
}

// SetFlash sets a temporary message.
func (sb *StatusBar) SetFlash(msg string) {
	sb.flash = msg
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	presence := "[red]offline[-]"
	if sb.online {
		presence = "[green]online[-]"
	}

	line := fmt.Sprintf(" [::b]dialog %s[-:-:-] | %s | %s", sb.dialog, sb.connState, presence)
	if sb.typingUser != "" {
		line += fmt.Sprintf(" | [::d]%s is typing…[-:-:-]", sb.typingUser)
	}
	if sb.flash != "" {
		line += fmt.Sprintf(" | [yellow]%s[-]", sb.flash)
	}

	_, _ = fmt.Fprint(sb.TextView, line)
}
