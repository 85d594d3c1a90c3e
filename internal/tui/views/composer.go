package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Composer is the text input for sending messages.
type Composer struct {
	*tview.InputField
	onSend    func(text string)
	onChanged func()
}

// NewComposer creates a new message composer.
func NewComposer() *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)

	c := &Composer{InputField: input}

	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && c.onSend != nil {
			c.onSend(c.GetText())
		}
	})
	input.SetChangedFunc(func(string) {
		if c.onChanged != nil {
			c.onChanged()
		}
	})

	return c
}

// SetOnSend sets the callback for a submit. The controller clears the
// input itself on success.
func (c *Composer) SetOnSend(fn func(text string)) {
	c.onSend = fn
}

// SetOnChanged sets the callback for every keystroke, feeding the typing
// signal debounce.
func (c *Composer) SetOnChanged(fn func()) {
	c.onChanged = fn
}

// Clear empties the input field.
func (c *Composer) Clear() {
	c.SetText("")
}
