package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/rivo/tview"
	qrcode "github.com/skip2/go-qrcode"
)

// GroupInfo shows the details of one group and, for public groups, a QR
// code of its share link.
type GroupInfo struct {
	*tview.TextView
	theme *ui.Theme
}

// NewGroupInfo creates an empty details page.
func NewGroupInfo(theme *ui.Theme) *GroupInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Group Details ")
	tv.SetTitleColor(theme.TitleColor)
	return &GroupInfo{TextView: tv, theme: theme}
}

// Name implements Component.
func (gi *GroupInfo) Name() string { return "Details" }

// Hints implements Component.
func (gi *GroupInfo) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// Update renders g. messages is the number of cached messages.
func (gi *GroupInfo) Update(g directory.Group, messages int, now time.Time) {
	gi.Clear()
	fg, ct := ui.Tag(gi.theme.FgColor), ui.Tag(gi.theme.CounterColor)

	last := FormatTime(g.Time, now)
	if last == "" {
		last = "-"
	}
	kind := "Private chat"
	if strings.HasPrefix(g.ID, "@") {
		kind = "Public group"
	}
	if g.Placeholder {
		kind = "Offline placeholder"
	}

	row := func(label, value string) string {
		return fmt.Sprintf(" [%s::b]%-14s[-:-:-] [%s]%s[-]\n", fg, label+":", ct, value)
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(row("Name", safe(g.Name)))
	b.WriteString(row("ID", safe(g.ID)))
	b.WriteString(row("Type", kind))
	b.WriteString(row("Messages", fmt.Sprint(messages)))
	b.WriteString(row("Last Active", last))
	b.WriteString(row("Last Message", safe(firstLine(g.LastMessage))))

	if link := ShareURL(g.ID); link != "" && !g.Placeholder {
		b.WriteString(row("Link", link))
		b.WriteString("\n")
		b.WriteString(renderQR(link))
	}

	_, _ = fmt.Fprint(gi, b.String())
	gi.SetTitle(fmt.Sprintf(" %s Details ", safe(g.Name)))
	gi.ScrollToBeginning()
}

// ShareURL is the public t.me link of an @handle group, or empty for
// numeric chat ids.
func ShareURL(groupID string) string {
	handle, ok := strings.CutPrefix(groupID, "@")
	if !ok || handle == "" {
		return ""
	}
	return "https://t.me/" + handle
}

// renderQR draws content as a QR code using half-block characters, two
// modules per terminal row.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "  (QR generation failed: " + err.Error() + ")\n"
	}
	bitmap := qr.Bitmap()

	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		sb.WriteString("  ")
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bot := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
