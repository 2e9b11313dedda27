package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/rivo/tview"
)

// GroupList is the main page: one row per group, most recent first.
type GroupList struct {
	*tview.Table
	theme   *ui.Theme
	groups  []directory.Group
	visible []directory.Group
	filter  string
	now     func() time.Time
}

// NewGroupList creates an empty group table.
func NewGroupList(theme *ui.Theme) *GroupList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
	table.SetTitle(" Groups ")
	table.SetTitleColor(theme.TitleColor)

	gl := &GroupList{Table: table, theme: theme, now: time.Now}
	gl.render()
	return gl
}

// Name implements Component.
func (gl *GroupList) Name() string { return "Groups" }

// Hints implements Component.
func (gl *GroupList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
		{Key: "n", Description: "New group"},
		{Key: "d", Description: "Details"},
		{Key: "r", Description: "Refresh"},
		{Key: "1-9", Description: "Jump"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
		{Key: "q", Description: "Quit"},
	}
}

// Update replaces the rows, keeping the cursor on the same group.
func (gl *GroupList) Update(groups []directory.Group) {
	selected := gl.SelectedGroup()
	gl.groups = groups
	gl.render()
	for i, g := range gl.visible {
		if g.ID == selected.ID {
			gl.Select(i+1, 0)
			return
		}
	}
}

// SetFilter narrows the rows to groups matching filter.
func (gl *GroupList) SetFilter(filter string) {
	gl.filter = filter
	gl.render()
	gl.Select(1, 0)
}

// Filter returns the active filter.
func (gl *GroupList) Filter() string { return gl.filter }

func (gl *GroupList) render() {
	gl.Clear()

	headers := []struct {
		text string
		exp  int
	}{
		{" NAME", 1},
		{" LAST MESSAGE", 2},
		{" TIME", 0},
		{" ID", 0},
	}
	for col, h := range headers {
		gl.SetCell(0, col, tview.NewTableCell(h.text).
			SetSelectable(false).
			SetTextColor(gl.theme.TableHeaderFg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(h.exp))
	}

	gl.visible = FilterGroups(gl.groups, gl.filter)
	now := gl.now()
	for i, g := range gl.visible {
		row := i + 1
		name := safe(g.Name)
		color := gl.theme.FgColor
		if g.Placeholder {
			name += " (offline)"
			color = gl.theme.MutedColor
		}
		gl.SetCell(row, 0, tview.NewTableCell(" "+name).SetExpansion(1).SetTextColor(color))
		gl.SetCell(row, 1, tview.NewTableCell(" "+safe(firstLine(g.LastMessage))).SetExpansion(2).SetTextColor(color))
		gl.SetCell(row, 2, tview.NewTableCell(" "+FormatTime(g.Time, now)).SetAlign(tview.AlignRight).SetTextColor(color))
		gl.SetCell(row, 3, tview.NewTableCell(" "+safe(g.ID)+" ").SetTextColor(gl.theme.MutedColor))
	}

	if gl.filter != "" {
		gl.SetTitle(fmt.Sprintf(" Groups (%d/%d) filter: %s ", len(gl.visible), len(gl.groups), tview.Escape(gl.filter)))
	} else {
		gl.SetTitle(fmt.Sprintf(" Groups (%d) ", len(gl.groups)))
	}
}

// SelectedGroup returns the group under the cursor, or the zero Group.
func (gl *GroupList) SelectedGroup() directory.Group {
	row, _ := gl.GetSelection()
	return gl.GroupByIndex(row)
}

// GroupByIndex returns the Nth visible group (1-based).
func (gl *GroupList) GroupByIndex(n int) directory.Group {
	if n < 1 || n > len(gl.visible) {
		return directory.Group{}
	}
	return gl.visible[n-1]
}

// FilterGroups keeps the groups whose name, id or last message contains
// filter, ignoring case.
func FilterGroups(groups []directory.Group, filter string) []directory.Group {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return groups
	}
	var out []directory.Group
	for _, g := range groups {
		if strings.Contains(strings.ToLower(g.Name), filter) ||
			strings.Contains(strings.ToLower(g.ID), filter) ||
			strings.Contains(strings.ToLower(g.LastMessage), filter) {
			out = append(out, g)
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " ..."
	}
	return s
}
