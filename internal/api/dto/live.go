package dto

import (
	"time"
	"triptracks-service/internal/domain"
)

type PlaceResponse struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// NewPlaceResponses converts autocomplete results to their wire form. The
// result is never nil, so an empty search encodes as [].
func NewPlaceResponses(places []domain.Location) []PlaceResponse {
	out := make([]PlaceResponse, 0, len(places))
	for _, p := range places {
		out = append(out, PlaceResponse{Name: p.Name, Lat: p.Lat, Lng: p.Lng})
	}
	return out
}

// EventMessage is the wire form of a live-session event.
type EventMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"user_id,omitempty"`
	Username  string    `json:"username,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text,omitempty"`
	Lat       *float64  `json:"lat,omitempty"`
	Lng       *float64  `json:"lng,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// InboundMessage is a frame sent by a live-session member.
type InboundMessage struct {
	Type string   `json:"type"`
	Text string   `json:"text"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

type ChatHistoryResponse struct {
	TripID   string         `json:"trip_id"`
	Messages []EventMessage `json:"messages"`
}

func NewEventMessage(ev domain.Event) EventMessage {
	return EventMessage{
		ID:        ev.ID,
		Type:      string(ev.Type),
		UserID:    ev.UserID,
		Username:  ev.Username,
		Timestamp: ev.Timestamp,
		Text:      ev.Text,
		Lat:       ev.Lat,
		Lng:       ev.Lng,
		Message:   ev.Message,
	}
}
