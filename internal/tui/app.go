// Package tui implements the terminal user interface for a pawchat dialog.
package tui

import (
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/pawchat/internal/preview"
	"github.com/matheus3301/pawchat/internal/tui/views"
	"github.com/matheus3301/pawchat/internal/view"
	"github.com/rivo/tview"
)

const flashDuration = 4 * time.Second

// Handlers are the user-action callbacks the app invokes. Each one runs on
// its own goroutine, never on the UI event loop, so handlers may render
// through the view and perform blocking I/O. All of them are optional;
// unset handlers turn the corresponding key into a no-op.
type Handlers struct {
	OnSubmit       func(text string)
	OnInputChanged func()
	OnLocation     func()
	OnVoiceStart   func()
	OnVoiceStop    func()
	OnAttach       func(paths []string)
	OnSendStaged   func()
}

// App is the tview application for a single open dialog. It satisfies the
// controller's view contract; every update goes through QueueUpdateDraw so
// it is safe to call from the read loop.
type App struct {
	app   *tview.Application
	pages *tview.Pages

	messageView  *views.MessageView
	composer     *views.Composer
	statusBar    *views.StatusBar
	previewPanel *views.PreviewPanel
	layout       *tview.Flex

	handlers Handlers

	mu         sync.Mutex
	recording  bool
	flashTimer *time.Timer
	onQuit     func()
}

// New creates the app for the given dialog.
func New(dialogID string) *App {
	a := &App{
		app:          tview.NewApplication(),
		pages:        tview.NewPages(),
		messageView:  views.NewMessageView(),
		composer:     views.NewComposer(),
		statusBar:    views.NewStatusBar(),
		previewPanel: views.NewPreviewPanel(),
	}

	a.statusBar.SetDialog(dialogID)
	a.statusBar.SetConnState("connecting")

	a.layout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.messageView, 0, 1, false).
		AddItem(a.previewPanel, 0, 0, false).
		AddItem(a.composer, 1, 0, true).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.AddPage("main", a.layout, true, true)

	// Dispatched off the event loop: the submit path renders back through
	// QueueUpdateDraw and the typing signal writes to the network, and the
	// loop processing this key event cannot service either.
	a.composer.SetOnSend(func(text string) {
		if a.handlers.OnSubmit != nil {
			go a.handlers.OnSubmit(text)
		}
	})
	a.composer.SetOnChanged(func() {
		if a.handlers.OnInputChanged != nil {
			go a.handlers.OnInputChanged()
		}
	})

	a.app.SetInputCapture(a.handleKey)
	a.app.SetRoot(a.pages, true)

	return a
}

// SetHandlers wires the user-action callbacks. Call before Run.
func (a *App) SetHandlers(h Handlers) {
	a.handlers = h
}

// SetOnQuit sets the callback invoked after the UI loop stops.
func (a *App) SetOnQuit(fn func()) {
	a.onQuit = fn
}

// SetScreen replaces the screen the UI renders to. Tests use it with a
// tcell simulation screen.
func (a *App) SetScreen(screen tcell.Screen) {
	a.app.SetScreen(screen)
}

// Run starts the UI event loop and blocks until quit.
func (a *App) Run() error {
	err := a.app.Run()
	if a.onQuit != nil {
		a.onQuit()
	}
	return err
}

// Stop terminates the UI event loop.
func (a *App) Stop() {
	a.app.Stop()
}

// SetConnState updates the channel state in the status bar.
func (a *App) SetConnState(state string) {
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetConnState(state)
	})
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyCtrlL:
		if a.handlers.OnLocation != nil {
			go a.handlers.OnLocation()
		}
		return nil
	case tcell.KeyCtrlR:
		a.toggleVoice()
		return nil
	case tcell.KeyCtrlO:
		a.showAttachPrompt()
		return nil
	case tcell.KeyCtrlP:
		if a.handlers.OnSendStaged != nil {
			go a.handlers.OnSendStaged()
		}
		return nil
	case tcell.KeyCtrlC, tcell.KeyEscape:
		a.app.Stop()
		return nil
	}
	return event
}

func (a *App) toggleVoice() {
	a.mu.Lock()
	recording := a.recording
	a.recording = !recording
	a.mu.Unlock()

	if recording {
		a.statusBar.SetFlash("")
		if a.handlers.OnVoiceStop != nil {
			go a.handlers.OnVoiceStop()
		}
		return
	}
	a.statusBar.SetFlash("recording… Ctrl-R to stop")
	if a.handlers.OnVoiceStart != nil {
		go a.handlers.OnVoiceStart()
	}
}

// showAttachPrompt opens a one-line prompt for file paths, separated by
// spaces. Esc cancels.
func (a *App) showAttachPrompt() {
	input := tview.NewInputField().
		SetLabel(" attach: ").
		SetFieldWidth(0)
	input.SetBorder(true).SetTitle(" Files ")

	close := func() {
		a.pages.RemovePage("attach")
		a.app.SetFocus(a.composer)
	}

	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			paths := strings.Fields(input.GetText())
			close()
			if len(paths) > 0 && a.handlers.OnAttach != nil {
				go a.handlers.OnAttach(paths)
			}
			return
		}
		close()
	})

	modal := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(input, 3, 0, true).
			AddItem(nil, 0, 1, false), 0, 2, true).
		AddItem(nil, 0, 1, false)

	a.pages.AddPage("attach", modal, true, true)
	a.app.SetFocus(input)
}

// AppendMessage renders a message at the end of the list.
func (a *App) AppendMessage(m view.Message) {
	a.app.QueueUpdateDraw(func() {
		a.messageView.Append(m)
	})
}

// MarkRead upgrades the status icon of an outgoing message.
func (a *App) MarkRead(messageID int64) {
	a.app.QueueUpdateDraw(func() {
		a.messageView.MarkRead(messageID)
	})
}

// SetTyping shows or hides the peer typing indicator.
func (a *App) SetTyping(username string, typing bool) {
	a.app.QueueUpdateDraw(func() {
		if typing {
			a.statusBar.SetTypingUser(username)
		} else {
			a.statusBar.SetTypingUser("")
		}
	})
}

// SetPresence updates the peer online/offline label.
func (a *App) SetPresence(online bool) {
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetPresence(online)
	})
}

// ShowPreview adds a preview entry and reveals the panel.
func (a *App) ShowPreview(p preview.Preview) {
	a.app.QueueUpdateDraw(func() {
		a.previewPanel.Append(p)
		height := a.previewPanel.Count() + 2
		if height > 8 {
			height = 8
		}
		a.layout.ResizeItem(a.previewPanel, height, 0)
	})
}

// ShowError flashes an error in the status bar.
func (a *App) ShowError(msg string) {
	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetFlash(msg)
	})

	a.mu.Lock()
	if a.flashTimer != nil {
		a.flashTimer.Stop()
	}
	a.flashTimer = time.AfterFunc(flashDuration, func() {
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetFlash("")
		})
	})
	a.mu.Unlock()
}

// ClearInput empties the composer after a successful send.
func (a *App) ClearInput() {
	a.app.QueueUpdateDraw(func() {
		a.composer.Clear()
	})
}

var _ view.View = (*App)(nil)
