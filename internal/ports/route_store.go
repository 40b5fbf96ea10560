package ports

import (
	"context"
	"triptracks-service/internal/domain"
)

// Port: a durable second-tier cache for provider results, so routes and
// place searches survive process restarts. Keys are normalized by the caller.
type RouteStore interface {
	// Return the stored route for key; ok is false on a miss.
	GetRoute(ctx context.Context, key string) (_ RouteResult, ok bool, err error)
	// Store or replace the route for key.
	PutRoute(ctx context.Context, key string, r RouteResult) error
}

// Port: durable storage of autocomplete results keyed by normalized query.
type PlaceStore interface {
	GetPlaces(ctx context.Context, query string) (_ []domain.Location, ok bool, err error)
	PutPlaces(ctx context.Context, query string, places []domain.Location) error
}
