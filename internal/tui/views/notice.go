package views

import (
	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/rivo/tview"
)

// Notice is the dismissable dialog used for failures the user must read.
type Notice struct {
	*tview.Modal
	onDone func()
}

// NewNotice creates an empty dialog.
func NewNotice(theme *ui.Theme) *Notice {
	n := &Notice{Modal: tview.NewModal()}
	n.SetBackgroundColor(theme.BgColor)
	n.SetTextColor(theme.FgColor)
	n.SetBorderColor(theme.FlashErrColor)
	n.SetButtonBackgroundColor(theme.BorderColor)
	n.AddButtons([]string{"OK"})
	n.SetDoneFunc(func(int, string) {
		if n.onDone != nil {
			n.onDone()
		}
	})
	return n
}

// Name implements Component.
func (n *Notice) Name() string { return "Notice" }

// Hints implements Component.
func (n *Notice) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Enter", Description: "Dismiss"}}
}

// SetOnDone sets the callback for dismissal.
func (n *Notice) SetOnDone(fn func()) {
	n.onDone = fn
}

// Show replaces the dialog text.
func (n *Notice) Show(text string) {
	n.SetText(text)
}
