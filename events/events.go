package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SubjectPrefix is the default subject prefix for lifecycle events.
const SubjectPrefix = "lifecycle"

// Type identifies a lifecycle event kind.
type Type string

const (
	// TypeResolved fires when an instance's declaration is first resolved.
	TypeResolved Type = "resolved"

	// TypeStarted fires when an instance's runtime environment is bound.
	TypeStarted Type = "started"

	// TypeStopped fires when an instance's runtime environment stops.
	TypeStopped Type = "stopped"

	// TypeDestroyed fires when an instance's resources are erased.
	TypeDestroyed Type = "destroyed"

	// TypeChildDeleted fires when a child is removed from a parent's table.
	TypeChildDeleted Type = "child_deleted"
)

// Event represents a single lifecycle event on an instance.
type Event struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// Type indicates what happened.
	Type Type `json:"type"`

	// Moniker identifies the instance the event occurred on.
	Moniker string `json:"moniker"`

	// Child is the affected child name, for child-scoped events.
	Child string `json:"child,omitempty"`

	// Timestamp is when the event was generated.
	Timestamp time.Time `json:"timestamp"`
}

// New creates an event with a fresh ID and timestamp.
func New(t Type, moniker string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      t,
		Moniker:   moniker,
		Timestamp: time.Now().UTC(),
	}
}

// Resolved creates a resolved event.
func Resolved(moniker string) Event {
	return New(TypeResolved, moniker)
}

// Started creates a started event.
func Started(moniker string) Event {
	return New(TypeStarted, moniker)
}

// Stopped creates a stopped event.
func Stopped(moniker string) Event {
	return New(TypeStopped, moniker)
}

// Destroyed creates a destroyed event.
func Destroyed(moniker string) Event {
	return New(TypeDestroyed, moniker)
}

// ChildDeleted creates a child-deleted event on the parent's moniker.
func ChildDeleted(moniker, child string) Event {
	e := New(TypeChildDeleted, moniker)
	e.Child = child
	return e
}

// Marshal serializes an event to JSON.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Unmarshal deserializes an event from JSON.
func Unmarshal(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Subject returns the bus subject for this event under the given prefix.
func (e Event) Subject(prefix string) string {
	if prefix == "" {
		prefix = SubjectPrefix
	}
	return prefix + "." + string(e.Type)
}
