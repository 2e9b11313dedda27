package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/matheus3301/tsched/internal/backend"
	"github.com/matheus3301/tsched/internal/validate"
	"github.com/robfig/cron/v3"
)

// wireTimeLayout matches the millisecond ISO-8601 timestamps the backend stores.
const wireTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// Compose is the whole compose state of the message being written.
type Compose struct {
	Text     string    `json:"text"`
	Schedule Selection `json:"schedule"`
}

// Reset clears the compose state after a successful send.
func (c *Compose) Reset() {
	*c = Compose{}
}

// Eligible reports whether c can be sent as is.
func Eligible(c Compose) bool {
	return Validate(c) == nil
}

// Validate returns one field error per missing or malformed input.
func Validate(c Compose) error {
	var errs validate.FieldErrors
	if strings.TrimSpace(c.Text) == "" {
		errs = append(errs, &validate.FieldError{Field: "text", Message: "Message cannot be empty"})
	}

	sel := c.Schedule
	switch sel.Type {
	case Now:
	case DateTime:
		if sel.DateTime.IsZero() {
			errs = append(errs, &validate.FieldError{Field: "dateTime", Message: "Pick a date and time"})
		}
	case Interval:
		if _, ok := positiveInt(sel.IntervalValue); !ok {
			errs = append(errs, &validate.FieldError{Field: "intervalValue", Message: "Interval must be a positive whole number"})
		}
		if !slices.Contains(Units, sel.IntervalUnit) {
			errs = append(errs, &validate.FieldError{Field: "intervalUnit", Message: "Choose minutes, hours or days"})
		}
		if _, ok := positiveInt(sel.RepeatCount); !ok {
			errs = append(errs, &validate.FieldError{Field: "repeatCount", Message: "Repeat count must be a positive whole number"})
		}
	case "":
		errs = append(errs, &validate.FieldError{Field: "scheduleType", Message: "Choose when to send"})
	default:
		errs = append(errs, &validate.FieldError{Field: "scheduleType", Message: fmt.Sprintf("Unknown schedule type %q", sel.Type)})
	}
	return errs.Err()
}

// Payload builds the POST /messages/schedule body for c.
func Payload(groupID string, c Compose, d Descriptor) backend.ScheduleRequest {
	sel := c.Schedule
	req := backend.ScheduleRequest{
		GroupID:      groupID,
		Message:      c.Text,
		ScheduleType: sel.Type,
		Cron:         d.Cron,
	}
	switch sel.Type {
	case DateTime:
		req.ScheduleDateTime = sel.DateTime.UTC().Format(wireTimeLayout)
	case Interval:
		req.IntervalValue, _ = positiveInt(sel.IntervalValue)
		req.IntervalUnit = sel.IntervalUnit
		req.RepeatCount, _ = positiveInt(sel.RepeatCount)
	}
	return req
}

// NextRun returns the first time after from that the descriptor fires,
// evaluated in from's location.
func NextRun(descriptor string, from time.Time) (time.Time, error) {
	s, err := cron.ParseStandard(descriptor)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse descriptor %q: %w", descriptor, err)
	}
	next := s.Next(from)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("descriptor %q never fires", descriptor)
	}
	return next, nil
}
