package views

import (
	"fmt"
	"sync"

	"github.com/matheus3301/pawchat/internal/preview"
	"github.com/rivo/tview"
)

// PreviewPanel lists local previews of staged attachments, shared
// locations and recorded clips. Hidden until the first preview arrives.
type PreviewPanel struct {
	*tview.TextView

	mu    sync.Mutex
	items []preview.Preview
}

// NewPreviewPanel creates an empty, hidden preview panel.
func NewPreviewPanel() *PreviewPanel {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBorder(true).SetTitle(" Attachments ")

	return &PreviewPanel{TextView: tv}
}

// Append adds a preview entry.
func (pp *PreviewPanel) Append(p preview.Preview) {
	pp.mu.Lock()
	pp.items = append(pp.items, p)
	items := append([]preview.Preview(nil), pp.items...)
	pp.mu.Unlock()

	pp.Clear()
	for _, it := range items {
		_, _ = fmt.Fprint(pp.TextView, formatPreview(it))
	}
}

// Count reports how many previews are shown; zero keeps the panel hidden.
func (pp *PreviewPanel) Count() int {
	pp.mu.Lock()
	defer pp.mu.Unlock()
	return len(pp.items)
}

func formatPreview(p preview.Preview) string {
	switch p.Kind {
	case preview.KindImage:
		return fmt.Sprintf("[green]▣ image[-] %s\n", p.URL)
	case preview.KindAudio:
		return fmt.Sprintf("[green]♪ voice note[-] %s\n", p.URL)
	case preview.KindMap:
		return fmt.Sprintf("[green]⚑ location[-] %s\n", p.URL)
	default:
		return fmt.Sprintf("[::d]🗎[-:-:-] %s\n", p.Label)
	}
}
