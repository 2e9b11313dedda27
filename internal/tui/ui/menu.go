package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// menuRows is how many hints fit in one column of the header.
const menuRows = 5

// Menu lists the shortcuts of the current page in columns.
type Menu struct {
	*tview.TextView
	theme *Theme
}

// NewMenu creates an empty menu.
func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 2, 0)

	return &Menu{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders hints column by column.
func (m *Menu) Update(hints []MenuHint) {
	m.Clear()
	_, _ = fmt.Fprint(m, LayoutHints(hints, menuRows, Tag(m.theme.MenuKeyColor)))
}

// LayoutHints arranges hints top to bottom in columns of rows entries.
func LayoutHints(hints []MenuHint, rows int, keyColor string) string {
	if len(hints) == 0 || rows < 1 {
		return ""
	}
	lines := make([]strings.Builder, min(rows, len(hints)))
	for i, h := range hints {
		cell := fmt.Sprintf("[%s::b]<%s>[-:-:-] %-12s", keyColor, h.Key, h.Description)
		lines[i%rows].WriteString(cell)
	}
	out := make([]string, len(lines))
	for i := range lines {
		out[i] = strings.TrimRight(lines[i].String(), " ")
	}
	return strings.Join(out, "\n")
}
