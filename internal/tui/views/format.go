package views

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/tui/ui"
	"github.com/rivo/tview"
)

// FormatTime renders a backend timestamp for the group list and thread:
// the clock time today, "Yesterday", the weekday within the last week and
// the date otherwise. Values that are not timestamps, like "09:00", are
// shown as they are.
func FormatTime(ts string, now time.Time) string {
	if ts == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ts
	}
	t = t.In(now.Location())

	day := func(x time.Time) time.Time {
		y, m, d := x.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, x.Location())
	}
	days := int(day(now).Sub(day(t)).Hours() / 24)
	switch {
	case days <= 0:
		return t.Format("15:04")
	case days == 1:
		return "Yesterday"
	case days < 7:
		return t.Weekday().String()
	default:
		return t.Format("02/01/2006")
	}
}

// TickGlyph renders a delivery tick as two colored check marks.
func TickGlyph(t msgstore.Tick, theme *ui.Theme) string {
	grey, blue := ui.Tag(theme.TickUnsentColor), ui.Tag(theme.TickSentColor)
	switch t {
	case msgstore.TickFull:
		return fmt.Sprintf("[%s]✓✓[-]", blue)
	case msgstore.TickPartial:
		return fmt.Sprintf("[%s]✓[-][%s]✓[-]", blue, grey)
	default:
		return fmt.Sprintf("[%s]✓✓[-]", grey)
	}
}

// sanitize drops control characters and the codepoints that break cell
// width calculation in tcell: skin tone modifiers, zero width joiners and
// variation selectors. Newlines and tabs are kept.
func sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r == utf8.RuneError && size == 1 {
			continue
		}
		if dropRune(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func dropRune(r rune) bool {
	switch {
	case r == '\n' || r == '\t':
		return false
	case unicode.IsControl(r):
		return true
	case r >= 0x1F3FB && r <= 0x1F3FF:
		return true
	case r == 0x200D:
		return true
	case r >= 0xFE00 && r <= 0xFE0F:
		return true
	case r >= 0xE0100 && r <= 0xE01EF:
		return true
	default:
		return false
	}
}

// safe prepares backend text for a dynamic-color tview widget.
func safe(s string) string {
	return tview.Escape(sanitize(s))
}
