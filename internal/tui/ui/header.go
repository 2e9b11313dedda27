package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// HeaderData is what the header shows about the session.
type HeaderData struct {
	Session string
	User    string
	Status  string
	Offline bool
	Groups  int
	Synced  time.Time
	Now     time.Time
}

// Header shows the greeting and session details in the top left corner.
type Header struct {
	*tview.TextView
	theme *Theme
}

// NewHeader creates an empty header.
func NewHeader(theme *Theme) *Header {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &Header{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders data.
func (h *Header) Update(data HeaderData) {
	h.Clear()

	fg := Tag(h.theme.FgColor)
	val := Tag(h.theme.CounterColor)

	greeting := Greeting(data.Now)
	if data.User != "" {
		greeting += ", " + data.User
	}
	status := data.Status
	if data.Offline {
		status = fmt.Sprintf("[%s]%s (placeholder)[-]", Tag(h.theme.FlashWarnColor), status)
	}

	groups := fmt.Sprintf("%d", data.Groups)
	if !data.Synced.IsZero() {
		groups += " (synced " + data.Synced.Format("15:04") + ")"
	}

	_, _ = fmt.Fprintf(h,
		"[%s::b]%s[-:-:-]\n"+
			"[%s::b]Session:[-:-:-] [%s]%s[-]\n"+
			"[%s::b]Status:[-:-:-]  [%s]%s[-]\n"+
			"[%s::b]Groups:[-:-:-]  [%s]%s[-]",
		Tag(h.theme.TitleColor), tview.Escape(greeting),
		fg, val, data.Session,
		fg, val, status,
		fg, val, groups,
	)
}

// Greeting returns the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	default:
		return "Good evening"
	}
}
