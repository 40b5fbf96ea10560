package ports

import (
	"context"
	"errors"
	"triptracks-service/internal/domain"
)

// ErrNotFound is returned by repositories when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Port: persistence of live-session chat history.
type ChatRepository interface {
	// Persist one chat event under its TripID.
	SaveMessage(ctx context.Context, msg domain.Event) error
	// Return up to limit most recent chat events for the trip, oldest first.
	ListMessages(ctx context.Context, tripID string, limit int) ([]domain.Event, error)
}

// Port: read access to traveler profiles (saved vehicles, spending habits).
type TravelerRepository interface {
	// Return the traveler, or ErrNotFound.
	GetTraveler(ctx context.Context, userID string) (*domain.Traveler, error)
}
