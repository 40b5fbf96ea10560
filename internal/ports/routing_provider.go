package ports

import (
	"context"
	"errors"
	"triptracks-service/internal/domain"
)

// ErrProviderUnconfigured is returned by UnconfiguredProvider for every call.
var ErrProviderUnconfigured = errors.New("routing provider is not configured")

// Distance (km) and travel duration (minutes) between two coordinates as
// reported by a routing provider.
type RouteResult struct {
	DistanceKm      float64
	DurationMinutes float64
}

// Contract for an external routing and place-search provider.
//
// Implementations come in two variants: a configured client talking to a real
// API, and UnconfiguredProvider. Callers branch on Configured() rather than
// inspecting errors.
type RoutingProvider interface {
	// Report whether the provider can serve requests at all.
	Configured() bool
	// Return the routed distance and duration from one coordinate to another.
	Route(ctx context.Context, from, to domain.Location) (RouteResult, error)
	// Return up to limit ranked places matching query.
	Autocomplete(ctx context.Context, query string, limit int) ([]domain.Location, error)
}

// UnconfiguredProvider is the RoutingProvider variant used when no API key is set.
type UnconfiguredProvider struct{}

func (UnconfiguredProvider) Configured() bool { return false }

func (UnconfiguredProvider) Route(context.Context, domain.Location, domain.Location) (RouteResult, error) {
	return RouteResult{}, ErrProviderUnconfigured
}

func (UnconfiguredProvider) Autocomplete(context.Context, string, int) ([]domain.Location, error) {
	return nil, ErrProviderUnconfigured
}
