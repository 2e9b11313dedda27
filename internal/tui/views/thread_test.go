package views

import (
	"strings"
	"testing"
	"time"

	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/directory"
	"github.com/matheus3301/tsched/internal/tui/ui"
)

func TestRenderMessage(t *testing.T) {
	theme := ui.DefaultTheme()
	now := time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC)

	t.Run("recurring", func(t *testing.T) {
		m := backend.Message{
			ID:              "1",
			Text:            "standup in 5",
			Time:            "2026-10-15T13:00:00Z",
			ScheduleType:    backend.ScheduleInterval,
			IntervalValue:   5,
			IntervalUnit:    backend.UnitMinutes,
			RepeatCount:     3,
			SentCount:       1,
			Paused:          true,
			ScheduleSummary: "Will repeat every 5 minutes",
		}
		out := RenderMessage(m, now, theme)
		for _, want := range []string{"standup in 5", "13:00", "Paused", "Scheduled: Will repeat every 5 minutes", "Repeat: Sent 1 of 3 times"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("immediate", func(t *testing.T) {
		m := backend.Message{ID: "2", Text: "hi [red]there", ScheduleType: backend.ScheduleNow, Sent: true, SentCount: 1}
		out := RenderMessage(m, now, theme)
		if strings.Contains(out, "Active") || strings.Contains(out, "Paused") {
			t.Errorf("immediate message shows a pause state:\n%s", out)
		}
		if strings.Contains(out, "│") {
			t.Errorf("immediate message shows a schedule bubble:\n%s", out)
		}
		if !strings.Contains(out, "[red[]") {
			t.Errorf("text not escaped:\n%s", out)
		}
	})
}

func TestMessageThreadSelection(t *testing.T) {
	mt := NewMessageThread(ui.DefaultTheme())
	mt.SetGroup(directory.Group{ID: "@opsteam", Name: "Ops"})
	now := time.Now()

	if _, ok := mt.Selected(); ok {
		t.Fatal("selection on empty thread")
	}

	msgs := []backend.Message{{ID: "a", Text: "one"}, {ID: "b", Text: "two"}, {ID: "c", Text: "three"}}
	mt.Update(msgs, now)
	mt.Select(-1)
	if m, _ := mt.Selected(); m.ID != "c" {
		t.Fatalf("first select = %q, want newest", m.ID)
	}
	mt.Select(-5)
	if m, _ := mt.Selected(); m.ID != "a" {
		t.Fatalf("clamped select = %q, want a", m.ID)
	}

	mt.Update(append([]backend.Message{{ID: "z"}}, msgs...), now)
	if m, _ := mt.Selected(); m.ID != "a" {
		t.Errorf("selection after update = %q, want a", m.ID)
	}

	mt.SetGroup(directory.Group{ID: "@other", Name: "Other"})
	if _, ok := mt.Selected(); ok {
		t.Error("selection kept across groups")
	}
	if mt.Name() != "Other" {
		t.Errorf("Name = %q", mt.Name())
	}
}
