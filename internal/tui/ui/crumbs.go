package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// maxCrumb truncates long group names in the trail.
const maxCrumb = 24

// Crumbs shows the navigation trail at the bottom of the screen.
type Crumbs struct {
	*tview.TextView
	theme *Theme
}

// NewCrumbs creates an empty trail.
func NewCrumbs(theme *Theme) *Crumbs {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &Crumbs{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders labels, the last one highlighted.
func (c *Crumbs) Update(labels []string) {
	c.Clear()
	parts := make([]string, 0, len(labels))
	for i, label := range labels {
		label = tview.Escape(Truncate(label, maxCrumb))
		fg, bg := c.theme.CrumbInactiveFg, c.theme.CrumbInactiveBg
		attr := ""
		if i == len(labels)-1 {
			fg, bg = c.theme.CrumbActiveFg, c.theme.CrumbActiveBg
			attr = "b"
		}
		parts = append(parts, fmt.Sprintf("[%s:%s:%s] <%s> [-:-:-]", Tag(fg), Tag(bg), attr, label))
	}
	_, _ = fmt.Fprint(c, strings.Join(parts, " "))
}

// Truncate shortens s to at most n runes, marking the cut with "~".
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n || n < 1 {
		return s
	}
	return string(r[:n-1]) + "~"
}
