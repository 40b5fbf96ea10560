package domain

import "time"

// Kind of live-session event.
type EventType string

const (
	EventChat     EventType = "chat"
	EventLocation EventType = "location"
	EventSystem   EventType = "system"
)

// Event is one message fanned out to the members of a live trip session.
// Text is set for chat, Lat/Lng for location and Message for system events.
type Event struct {
	ID        string
	Type      EventType
	TripID    string
	UserID    string
	Username  string
	Timestamp time.Time
	Text      string
	Lat       *float64
	Lng       *float64
	Message   string
}
