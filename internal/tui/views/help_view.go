package views

import (
	"fmt"
	"strings"

	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays key binding reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
	}
}

type helpSection struct {
	title string
	keys  [][2]string
}

var helpSections = []helpSection{
	{"Global", [][2]string{
		{":", "Command mode"},
		{"/", "Filter groups"},
		{"?", "This help"},
		{"Esc", "Cancel / go back"},
		{"q", "Quit from the group list"},
		{"Ctrl-C", "Quit immediately"},
	}},
	{"Groups", [][2]string{
		{"Enter", "Open group"},
		{"j/k", "Move down / up"},
		{"1-9", "Open the Nth group"},
		{"n", "New group"},
		{"d", "Group details"},
		{"r", "Refresh groups"},
	}},
	{"Thread", [][2]string{
		{"i", "Focus composer"},
		{"j/k", "Select message"},
		{"p", "Pause or resume the selected message"},
		{"d", "Group details"},
		{"r", "Reload messages"},
		{"Ctrl-S", "Send (in composer)"},
	}},
	{"Commands", [][2]string{
		{":group <name|id>", "Open a group"},
		{":groups", "Back to the group list"},
		{":new", "New group"},
		{":info", "Details of the open group"},
		{":refresh", "Refresh groups"},
		{":logout", "Sign out"},
		{":help", "This help"},
		{":quit", "Quit"},
	}},
}

func (hv *HelpView) render() {
	kc := ui.Tag(hv.theme.MenuKeyColor)
	var b strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, k := range s.keys {
			fmt.Fprintf(&b, "  [%s]%-18s[-:-:-] %s\n", kc, tview.Escape(k[0]), k[1])
		}
	}
	_, _ = fmt.Fprint(hv, b.String())
}
