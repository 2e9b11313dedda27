package msgstore

import (
	"testing"

	"github.com/matheus3301/tsched/internal/backend"
)

func TestTickFor(t *testing.T) {
	tests := []struct {
		name string
		m    backend.Message
		want Tick
	}{
		{"none of five", backend.Message{ScheduleType: backend.ScheduleInterval, RepeatCount: 5}, TickUnsent},
		{"three of five", backend.Message{ScheduleType: backend.ScheduleInterval, RepeatCount: 5, SentCount: 3}, TickPartial},
		{"five of five", backend.Message{ScheduleType: backend.ScheduleInterval, RepeatCount: 5, SentCount: 5}, TickFull},
		{"datetime pending", backend.Message{ScheduleType: backend.ScheduleDateTime, SentCount: 1}, TickUnsent},
		{"datetime sent", backend.Message{ScheduleType: backend.ScheduleDateTime, Sent: true}, TickFull},
		{"now sent once", backend.Message{ScheduleType: backend.ScheduleNow, SentCount: 1}, TickFull},
		{"now flagged sent without count", backend.Message{ScheduleType: backend.ScheduleNow, Sent: true}, TickUnsent},
		{"interval flagged sent without count", backend.Message{ScheduleType: backend.ScheduleInterval, Sent: true, RepeatCount: 1}, TickUnsent},
		{"plain unsent", backend.Message{}, TickUnsent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TickFor(tt.m); got != tt.want {
				t.Errorf("TickFor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasUpdate(t *testing.T) {
	tests := []struct {
		name string
		m    backend.Message
		want bool
	}{
		{"now with repeat", backend.Message{ScheduleType: backend.ScheduleNow, RepeatCount: 3, ScheduleSummary: "x"}, false},
		{"interval repeat", backend.Message{ScheduleType: backend.ScheduleInterval, RepeatCount: 2}, true},
		{"datetime summary", backend.Message{ScheduleType: backend.ScheduleDateTime, ScheduleSummary: "Will run at"}, true},
		{"single interval without summary", backend.Message{ScheduleType: backend.ScheduleInterval, RepeatCount: 1}, false},
		{"untyped with summary", backend.Message{ScheduleSummary: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasUpdate(tt.m); got != tt.want {
				t.Errorf("HasUpdate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLines(t *testing.T) {
	m := backend.Message{
		ScheduleType:    backend.ScheduleInterval,
		RepeatCount:     4,
		SentCount:       1,
		ScheduleSummary: "Will repeat every 2 hours",
		IsScheduled:     true,
		Paused:          true,
	}
	if got := RepeatLine(m); got != "Repeat: Sent 1 of 4 times" {
		t.Errorf("RepeatLine = %q", got)
	}
	if got := ScheduledLine(m); got != "Scheduled: Will repeat every 2 hours" {
		t.Errorf("ScheduledLine = %q", got)
	}
	if !Pausable(m) || PauseLabel(m) != "Paused" {
		t.Errorf("pause state = %v %q", Pausable(m), PauseLabel(m))
	}

	single := backend.Message{ScheduleType: backend.ScheduleNow, RepeatCount: 1}
	if RepeatLine(single) != "" || ScheduledLine(single) != "" || Pausable(single) {
		t.Error("immediate single send should show no schedule decorations")
	}
	if PauseLabel(single) != "Active" {
		t.Errorf("PauseLabel = %q", PauseLabel(single))
	}
}
