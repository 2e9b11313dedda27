package backend

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ScheduleType is how the backend should deliver a message.
type ScheduleType string

const (
	ScheduleNow      ScheduleType = "now"
	ScheduleDateTime ScheduleType = "datetime"
	ScheduleInterval ScheduleType = "interval"
)

// IntervalUnit is the unit of a recurring schedule.
type IntervalUnit string

const (
	UnitMinutes IntervalUnit = "minutes"
	UnitHours   IntervalUnit = "hours"
	UnitDays    IntervalUnit = "days"
)

// Count is a non-negative counter that the backend may encode as a JSON
// number or as a numeric string.
type Count int

// UnmarshalJSON accepts 3, "3", "" and null.
func (c *Count) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*c = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("count %s: %w", data, err)
	}
	*c = Count(f)
	return nil
}

// User is the signed-in account as returned by /auth/login.
type User struct {
	ID       string `json:"_id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginResponse is the body of a login call.
type LoginResponse struct {
	User    User   `json:"user"`
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}

// RemoteGroup is a group as listed by GET /groups.
type RemoteGroup struct {
	GroupID         string `json:"groupId"`
	DisplayName     string `json:"displayName"`
	CreatedAt       string `json:"createdAt,omitempty"`
	LastMessageTime string `json:"lastMessageTime,omitempty"`
}

// Message is a message in a group thread.
type Message struct {
	ID               string       `json:"id"`
	Text             string       `json:"text"`
	Time             string       `json:"time,omitempty"`
	CreatedAt        string       `json:"createdAt,omitempty"`
	Sent             bool         `json:"sent"`
	ScheduleType     ScheduleType `json:"scheduleType,omitempty"`
	ScheduleDateTime string       `json:"scheduleDateTime,omitempty"`
	IntervalValue    Count        `json:"intervalValue,omitempty"`
	IntervalUnit     IntervalUnit `json:"intervalUnit,omitempty"`
	RepeatCount      Count        `json:"repeatCount,omitempty"`
	SentCount        Count        `json:"sentCount,omitempty"`
	Paused           bool         `json:"paused,omitempty"`
	IsScheduled      bool         `json:"isScheduled,omitempty"`
	ScheduleSummary  string       `json:"scheduleSummary,omitempty"`
}

// UnmarshalJSON also accepts the alternate field names older backend
// versions emit: _id, message, isSent and userSchedule.
func (m *Message) UnmarshalJSON(data []byte) error {
	type plain Message
	aux := struct {
		*plain
		MongoID      string `json:"_id"`
		Body         string `json:"message"`
		IsSent       bool   `json:"isSent"`
		UserSchedule string `json:"userSchedule"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = aux.MongoID
	}
	if m.Text == "" {
		m.Text = aux.Body
	}
	if aux.IsSent {
		m.Sent = true
	}
	if m.ScheduleSummary == "" {
		m.ScheduleSummary = aux.UserSchedule
	}
	return nil
}

// Timestamp returns the raw time of the message, preferring time over createdAt.
func (m Message) Timestamp() string {
	if m.Time != "" {
		return m.Time
	}
	return m.CreatedAt
}

// ScheduleRequest is the body of POST /messages/schedule.
type ScheduleRequest struct {
	GroupID          string       `json:"groupId"`
	Message          string       `json:"message"`
	ScheduleType     ScheduleType `json:"scheduleType"`
	ScheduleDateTime string       `json:"scheduleDateTime,omitempty"`
	IntervalValue    int          `json:"intervalValue,omitempty"`
	IntervalUnit     IntervalUnit `json:"intervalUnit,omitempty"`
	RepeatCount      int          `json:"repeatCount,omitempty"`
	Cron             string       `json:"cron,omitempty"`
}
