package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/rivo/tview"
)

func TestGreeting(t *testing.T) {
	tests := []struct {
		hour int
		want string
	}{
		{0, "Good morning"},
		{11, "Good morning"},
		{12, "Good afternoon"},
		{17, "Good afternoon"},
		{18, "Good evening"},
		{23, "Good evening"},
	}
	for _, tt := range tests {
		at := time.Date(2026, 5, 1, tt.hour, 30, 0, 0, time.Local)
		if got := Greeting(at); got != tt.want {
			t.Errorf("Greeting(%02d:30) = %q, want %q", tt.hour, got, tt.want)
		}
	}
}

func TestPagesStack(t *testing.T) {
	p := NewPages()
	for _, name := range []string{"groups", "thread", "notice"} {
		p.AddPage(name, tview.NewBox(), true, false)
	}
	p.AddModal("modal", tview.NewBox())

	var seen [][]string
	p.SetOnChange(func(stack []string) { seen = append(seen, stack) })

	p.Reset("groups")
	p.Push("thread")
	p.Push("thread")
	p.Push("modal")

	if got := strings.Join(p.Stack(), ","); got != "groups,thread,modal" {
		t.Fatalf("stack = %s", got)
	}
	if !p.IsModal("modal") || p.IsModal("thread") {
		t.Error("IsModal mismatch")
	}
	if top := p.Pop(); top != "modal" {
		t.Errorf("Pop() = %q, want modal", top)
	}
	if p.Pop() != "thread" || p.Current() != "groups" {
		t.Errorf("current = %q after pops", p.Current())
	}
	if p.Pop() != "" {
		t.Error("last page should not pop")
	}
	if !p.Contains("groups") || p.Contains("thread") {
		t.Error("Contains mismatch")
	}
	if len(seen) != 5 {
		t.Errorf("onChange fired %d times, want 5", len(seen))
	}
}

func TestFlashExpires(t *testing.T) {
	f := NewFlashModel()
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }

	if f.Current() != nil {
		t.Error("empty model has a message")
	}
	f.Err("boom")
	if m := f.Current(); m == nil || m.Text != "boom" || m.Level != FlashErr {
		t.Errorf("Current() = %+v", m)
	}
	now = now.Add(11 * time.Second)
	if f.Current() != nil {
		t.Error("message did not expire")
	}
}

func TestComplete(t *testing.T) {
	cmds := []string{"group", "groups", "help", "logout", "new", "quit", "refresh"}
	tests := []struct {
		text string
		want string
	}{
		{"gr", "group,groups"},
		{"group", "groups"},
		{"q", "quit"},
		{"", ""},
		{"group ops", ""},
		{"x", ""},
	}
	for _, tt := range tests {
		if got := strings.Join(Complete(cmds, tt.text), ","); got != tt.want {
			t.Errorf("Complete(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Operations Team", 5); got != "Oper~" {
		t.Errorf("Truncate = %q", got)
	}
	if got := Truncate("Ops", 5); got != "Ops" {
		t.Errorf("Truncate short = %q", got)
	}
}

func TestLayoutHints(t *testing.T) {
	hints := []MenuHint{{Key: "a", Description: "One"}, {Key: "b", Description: "Two"}, {Key: "c", Description: "Three"}}
	out := LayoutHints(hints, 2, "blue")
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2: %q", len(lines), out)
	}
	if !strings.Contains(lines[0], "<a>") || !strings.Contains(lines[0], "<c>") || !strings.Contains(lines[1], "<b>") {
		t.Errorf("layout = %q", out)
	}
}

func TestHeaderUpdate(t *testing.T) {
	h := NewHeader(DefaultTheme())
	h.Update(HeaderData{
		Session: "work",
		User:    "ana",
		Status:  "online",
		Groups:  3,
		Synced:  time.Date(2026, 5, 1, 9, 5, 0, 0, time.Local),
		Now:     time.Date(2026, 5, 1, 9, 30, 0, 0, time.Local),
	})

	text := h.GetText(true)
	for _, want := range []string{"Good morning, ana", "work", "online", "3 (synced 09:05)"} {
		if !strings.Contains(text, want) {
			t.Errorf("header %q missing %q", text, want)
		}
	}
}
