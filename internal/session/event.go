package session

import (
	"fmt"
	"time"
)

// EventKind identifies a session lifecycle event.
type EventKind string

const (
	EventCreate EventKind = "create"
	EventSend   EventKind = "send"
	EventKill   EventKind = "kill"
	EventExit   EventKind = "exit"
	EventError  EventKind = "error"
)

// Event records one significant session lifecycle occurrence.
type Event struct {
	Time      time.Time
	Kind      EventKind
	SessionID string
	Detail    string
}

// Line formats the event as a single timestamped log line, the form
// consumed by injectable sinks.
func (e Event) Line() string {
	if e.Detail == "" {
		return fmt.Sprintf("[%s] %s session=%s", e.Time.Format(time.RFC3339), e.Kind, e.SessionID)
	}
	return fmt.Sprintf("[%s] %s session=%s %s", e.Time.Format(time.RFC3339), e.Kind, e.SessionID, e.Detail)
}

// Sink receives formatted lifecycle event lines. Sinks must not block;
// sink failures are deliberately ignored.
type Sink func(line string)
