package views

import (
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/tsched/internal/msgstore"
	"github.com/matheus3301/tsched/internal/tui/ui"
)

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	now := time.Date(2026, 10, 15, 14, 0, 0, 0, loc) // Thursday

	tests := []struct {
		name string
		ts   string
		want string
	}{
		{"empty", "", ""},
		{"not a timestamp", "09:00", "09:00"},
		{"today", "2026-10-15T12:05:00.000Z", "09:05"},
		{"earlier local day", "2026-10-15T02:30:00Z", "Yesterday"},
		{"yesterday", "2026-10-14T15:00:00Z", "Yesterday"},
		{"this week", "2026-10-11T15:00:00Z", "Sunday"},
		{"older", "2026-10-01T15:00:00Z", "01/10/2026"},
		{"future", "2026-10-20T15:00:00Z", "12:00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatTime(tt.ts, now); got != tt.want {
				t.Errorf("FormatTime(%q) = %q, want %q", tt.ts, got, tt.want)
			}
		})
	}
}

func TestTickGlyph(t *testing.T) {
	theme := ui.DefaultTheme()
	blue, grey := ui.Tag(theme.TickSentColor), ui.Tag(theme.TickUnsentColor)

	if got := TickGlyph(msgstore.TickFull, theme); strings.Contains(got, grey) || !strings.Contains(got, blue) {
		t.Errorf("full = %q", got)
	}
	if got := TickGlyph(msgstore.TickUnsent, theme); strings.Contains(got, blue) {
		t.Errorf("unsent = %q", got)
	}
	if got := TickGlyph(msgstore.TickPartial, theme); !strings.Contains(got, blue) || !strings.Contains(got, grey) {
		t.Errorf("partial = %q", got)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"line\nbreak\ttab", "line\nbreak\ttab"},
		{"bell\x07", "bell"},
		{"\U0001F44D\U0001F3FB", "\U0001F44D"},
		{"a‍b", "ab"},
		{"❤️", "❤"},
		{"bad\xffbyte", "badbyte"},
	}
	for _, tt := range tests {
		if got := sanitize(tt.in); got != tt.want {
			t.Errorf("sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
