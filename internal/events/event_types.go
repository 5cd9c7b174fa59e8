package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDictionariesHydrated EventType = "dictionaries_hydrated"
	EventDictionariesSynced   EventType = "dictionaries_synced"
	EventCateringChanged      EventType = "catering_changed"
	EventAccommodationChanged EventType = "accommodation_changed"
	EventTeamsChanged         EventType = "teams_changed"
)

// ChangeKind tells subscribers what mutation produced a change event.
type ChangeKind string

const (
	ChangeCreated ChangeKind = "created"
	ChangeUpdated ChangeKind = "updated"
	ChangeDeleted ChangeKind = "deleted"
	ChangeMoved   ChangeKind = "moved"
)

// Event represents a store change emitted after a successful mutation,
// fetch, or hydration. Subscribing views re-read the store; the event
// carries enough to skip irrelevant redraws, not the data itself.
type Event struct {
	Type      EventType  `json:"type"`
	Kind      ChangeKind `json:"kind,omitempty"`
	EntityID  string     `json:"entity_id,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}
