package events

import (
	"context"
	"strings"
	"time"
)

// SubjectPrefix namespaces every event subject on the bus.
const SubjectPrefix = "events."

const (
	NotebookImported = "NOTEBOOK_IMPORTED"
	NotebookUpdated  = "NOTEBOOK_UPDATED"
	NotebookExported = "NOTEBOOK_EXPORTED"
	NotebookDeleted  = "NOTEBOOK_DELETED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "NOTEBOOK_IMPORTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Bus is anything events can be published to.
type Bus interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// TypeFromSubject reverses Subject.
func TypeFromSubject(subject string) string {
	return strings.TrimPrefix(subject, SubjectPrefix)
}
