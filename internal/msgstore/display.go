package msgstore

import (
	"fmt"

	"github.com/matheus3301/tsched/internal/backend"
)

// Tick is the delivery indicator of a message.
type Tick int

const (
	// TickUnsent is two grey ticks.
	TickUnsent Tick = iota
	// TickPartial is one blue and one grey tick.
	TickPartial
	// TickFull is two blue ticks.
	TickFull
)

func (t Tick) String() string {
	switch t {
	case TickUnsent:
		return "unsent"
	case TickPartial:
		return "partial"
	case TickFull:
		return "sent"
	default:
		return fmt.Sprintf("Tick(%d)", int(t))
	}
}

// TickFor derives the delivery indicator from the server counters.
// Datetime sends go out once, so only the sent flag matters for them.
// Every other type goes by sentCount alone; a message without a repeat
// count counts as a single delivery.
func TickFor(m backend.Message) Tick {
	if m.ScheduleType == backend.ScheduleDateTime {
		if m.Sent {
			return TickFull
		}
		return TickUnsent
	}
	if m.SentCount <= 0 {
		return TickUnsent
	}
	if m.SentCount >= max(m.RepeatCount, 1) {
		return TickFull
	}
	return TickPartial
}

// HasUpdate reports whether the message carries the schedule reply bubble.
func HasUpdate(m backend.Message) bool {
	if m.ScheduleType == backend.ScheduleNow {
		return false
	}
	return m.ScheduleSummary != "" || m.RepeatCount > 1
}

// RepeatLine is the progress line of a repeating message, or empty.
func RepeatLine(m backend.Message) string {
	if m.RepeatCount <= 1 {
		return ""
	}
	return fmt.Sprintf("Repeat: Sent %d of %d times", m.SentCount, m.RepeatCount)
}

// ScheduledLine is the summary line of a scheduled message, or empty.
func ScheduledLine(m backend.Message) string {
	if m.ScheduleSummary == "" || m.ScheduleType == backend.ScheduleNow {
		return ""
	}
	return "Scheduled: " + m.ScheduleSummary
}

// Pausable reports whether the message exposes the pause toggle.
func Pausable(m backend.Message) bool {
	return m.IsScheduled || (m.ScheduleType != "" && m.ScheduleType != backend.ScheduleNow)
}

// PauseLabel is the state shown next to the pause toggle.
func PauseLabel(m backend.Message) string {
	if m.Paused {
		return "Paused"
	}
	return "Active"
}
