// Package schedule turns a compose-time schedule selection into the cron
// descriptor and summary line sent to the relay backend.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/matheus3301/tsched/internal/backend"
)

// Type re-exports backend.ScheduleType for callers that only compose.
type Type = backend.ScheduleType

// Unit re-exports backend.IntervalUnit.
type Unit = backend.IntervalUnit

const (
	Now      = backend.ScheduleNow
	DateTime = backend.ScheduleDateTime
	Interval = backend.ScheduleInterval

	Minutes = backend.UnitMinutes
	Hours   = backend.UnitHours
	Days    = backend.UnitDays
)

// EveryMinute is the descriptor used for immediate sends and as the
// fallback for unusable interval input.
const EveryMinute = "* * * * *"

// SummaryLayout formats the target time in "Will run at ..." summaries.
const SummaryLayout = "1/2/2006, 3:04:05 PM"

// Types lists the selectable schedule types in display order.
var Types = []Type{Now, DateTime, Interval}

// Units lists the selectable interval units in display order.
var Units = []Unit{Minutes, Hours, Days}

// Selection is the schedule part of the compose state. Numeric inputs are
// kept raw so that blank and malformed entries stay distinguishable.
type Selection struct {
	Type          Type      `json:"type"`
	DateTime      time.Time `json:"dateTime,omitzero"`
	IntervalValue string    `json:"intervalValue,omitempty"`
	IntervalUnit  Unit      `json:"intervalUnit,omitempty"`
	RepeatCount   string    `json:"repeatCount,omitempty"`
}

// Descriptor is what the builder produces for one selection.
type Descriptor struct {
	Cron    string
	Summary string
}

// Build returns the cron descriptor and summary for sel.
func Build(sel Selection) Descriptor {
	return Descriptor{Cron: Cron(sel), Summary: Summary(sel)}
}

// Cron returns the five-field descriptor for sel. Datetime descriptors use
// the calendar fields of sel.DateTime in its own location.
func Cron(sel Selection) string {
	switch sel.Type {
	case DateTime:
		if sel.DateTime.IsZero() {
			return EveryMinute
		}
		t := sel.DateTime
		return fmt.Sprintf("%d %d %d %d *", t.Minute(), t.Hour(), t.Day(), int(t.Month()))
	case Interval:
		n, ok := positiveInt(sel.IntervalValue)
		if !ok {
			return EveryMinute
		}
		switch sel.IntervalUnit {
		case Minutes:
			return fmt.Sprintf("*/%d * * * *", n)
		case Hours:
			return fmt.Sprintf("0 */%d * * *", n)
		case Days:
			return fmt.Sprintf("0 0 */%d * *", n)
		}
		return EveryMinute
	default:
		return EveryMinute
	}
}

// Summary returns the human-readable line attached to a scheduled message.
func Summary(sel Selection) string {
	switch sel.Type {
	case DateTime:
		if sel.DateTime.IsZero() {
			return ""
		}
		return "Will run at " + sel.DateTime.Format(SummaryLayout)
	case Interval:
		return fmt.Sprintf("Will repeat every %s %s", strings.TrimSpace(sel.IntervalValue), sel.IntervalUnit)
	default:
		return ""
	}
}

// Label is the display name of a schedule type.
func Label(t Type) string {
	switch t {
	case Now:
		return "Send Now"
	case DateTime:
		return "Specific Time"
	case Interval:
		return "Recurring"
	default:
		return string(t)
	}
}

// positiveInt parses a strictly positive whole number.
func positiveInt(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
