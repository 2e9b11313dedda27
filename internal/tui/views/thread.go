package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/rivo/tview"
)

const emptyThread = "No messages yet. Say hello!"

// MessageThread shows the messages of one group above the composer.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	composer *Composer

	group    directory.Group
	msgs     []backend.Message
	selected int
}

// NewMessageThread creates an empty thread.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Messages ")
	messages.SetTitleColor(theme.TitleColor)

	composer := NewComposer(theme)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, true).
		AddItem(composer, 9, 0, false)

	return &MessageThread{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		composer: composer,
		selected: -1,
	}
}

// Name implements Component.
func (mt *MessageThread) Name() string {
	if mt.group.Name != "" {
		return mt.group.Name
	}
	return "Messages"
}

// Hints implements Component.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "j/k", Description: "Select"},
		{Key: "p", Description: "Pause/Resume"},
		{Key: "d", Description: "Details"},
		{Key: "r", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// SetGroup switches the thread to g and drops the selection.
func (mt *MessageThread) SetGroup(g directory.Group) {
	if g.ID != mt.group.ID {
		mt.selected = -1
		mt.msgs = nil
	}
	mt.group = g
	mt.messages.SetTitle(fmt.Sprintf(" %s ", safe(g.Name)))
}

// Group returns the group on screen.
func (mt *MessageThread) Group() directory.Group {
	return mt.group
}

// Update redraws the thread. The selection follows the message id.
func (mt *MessageThread) Update(msgs []backend.Message, now time.Time) {
	var selectedID string
	if m, ok := mt.Selected(); ok {
		selectedID = m.ID
	}
	mt.msgs = msgs
	mt.selected = -1
	for i, m := range msgs {
		if selectedID != "" && m.ID == selectedID {
			mt.selected = i
		}
	}
	mt.render(now)
	if mt.selected < 0 {
		mt.messages.ScrollToEnd()
	}
}

// Select moves the selection by delta, starting from the newest message.
func (mt *MessageThread) Select(delta int) {
	if len(mt.msgs) == 0 {
		return
	}
	next := mt.selected + delta
	if mt.selected < 0 {
		next = len(mt.msgs) - 1
	}
	mt.selected = min(max(next, 0), len(mt.msgs)-1)
	mt.render(time.Now())
}

// Selected returns the highlighted message.
func (mt *MessageThread) Selected() (backend.Message, bool) {
	if mt.selected < 0 || mt.selected >= len(mt.msgs) {
		return backend.Message{}, false
	}
	return mt.msgs[mt.selected], true
}

func (mt *MessageThread) render(now time.Time) {
	mt.messages.Clear()
	if len(mt.msgs) == 0 {
		_, _ = fmt.Fprintf(mt.messages, "\n[%s]%s[-]", ui.Tag(mt.theme.MutedColor), emptyThread)
		return
	}
	var b strings.Builder
	for i, m := range mt.msgs {
		fmt.Fprintf(&b, `["m%d"]`, i)
		b.WriteString(RenderMessage(m, now, mt.theme))
		b.WriteString(`[""]`)
		b.WriteString("\n")
	}
	_, _ = fmt.Fprint(mt.messages, b.String())
	if mt.selected >= 0 {
		mt.messages.Highlight(fmt.Sprintf("m%d", mt.selected))
		mt.messages.ScrollToHighlight()
	} else {
		mt.messages.Highlight()
	}
}

// Messages returns the message list (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer.
func (mt *MessageThread) Composer() *Composer {
	return mt.composer
}

// RenderMessage formats one outgoing message with its delivery ticks and,
// for scheduled messages, the reply bubble carrying the schedule.
func RenderMessage(m backend.Message, now time.Time, theme *ui.Theme) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]%s[-]\n", ui.Tag(theme.OutgoingColor), safe(m.Text))
	fmt.Fprintf(&b, "[%s]%s[-] %s", ui.Tag(theme.MutedColor), FormatTime(m.Timestamp(), now), TickGlyph(msgstore.TickFor(m), theme))
	if msgstore.Pausable(m) {
		color := theme.TickSentColor
		if m.Paused {
			color = theme.FlashWarnColor
		}
		fmt.Fprintf(&b, "  [%s]%s[-]", ui.Tag(color), tview.Escape("["+msgstore.PauseLabel(m)+"]"))
	}
	b.WriteString("\n")
	if msgstore.HasUpdate(m) {
		for _, line := range []string{msgstore.ScheduledLine(m), msgstore.RepeatLine(m)} {
			if line != "" {
				fmt.Fprintf(&b, "  [%s]│ %s[-]\n", ui.Tag(theme.MutedColor), safe(line))
			}
		}
	}
	return b.String()
}
