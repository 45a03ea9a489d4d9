package domain

import (
	"encoding/json"
	"time"
)

// EventTime is an absolute instant that tolerates unparsable wire values.
// An event whose timestamp does not parse keeps Valid=false and falls back
// to arrival order in the reconciler instead of being discarded.
type EventTime struct {
	Time  time.Time
	Valid bool
}

// NewEventTime wraps a known-good instant.
func NewEventTime(t time.Time) EventTime {
	return EventTime{Time: t, Valid: true}
}

// UnmarshalJSON accepts an RFC3339 string; anything else yields an invalid
// (but present) EventTime.
func (t *EventTime) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Valid = false
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.Valid = false
		return nil
	}
	t.Time = parsed
	t.Valid = true
	return nil
}

// MarshalJSON encodes the instant as RFC3339, or null when invalid.
func (t EventTime) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// After orders two EventTimes. Any pair involving an invalid instant is
// incomparable and reports false; callers that need a total order must
// exclude invalid instants before comparing.
func (t EventTime) After(other EventTime) bool {
	if !t.Valid || !other.Valid {
		return false
	}
	return t.Time.After(other.Time)
}

// TimelineEvent is one immutable status-change record in a ticket's history.
// Events are never mutated after creation; an authorized actor may only
// remove one from the set.
type TimelineEvent struct {
	ID          string       `json:"id"`
	TicketID    string       `json:"ticketId"`
	Status      TicketStatus `json:"status"`
	Description string       `json:"description"`
	Location    string       `json:"location"`
	Image       string       `json:"image,omitempty"`
	Timestamp   EventTime    `json:"timestamp"`
}
