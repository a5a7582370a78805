package core

import "fmt"

// EventType represents the type of change in a vault.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event reports a change to a record document.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}
