package routing

import (
	"context"
	"fmt"
	"sync"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/ports"
)

type MockPair struct {
	From, To   domain.Location
	DistanceKm float64
	Minutes    float64
}

// MockProvider is a configured RoutingProvider answering from fixed tables.
// Pairs missing from the table fail, which exercises caller fallbacks.
type MockProvider struct {
	mu     sync.Mutex
	routes map[string]ports.RouteResult
	places map[string][]domain.Location
	err    error

	routeCalls        int
	autocompleteCalls int
}

func NewMockProvider(pairs []MockPair) *MockProvider {
	m := make(map[string]ports.RouteResult, len(pairs))
	for _, p := range pairs {
		m[mockKey(p.From, p.To)] = ports.RouteResult{DistanceKm: p.DistanceKm, DurationMinutes: p.Minutes}
	}
	return &MockProvider{routes: m, places: map[string][]domain.Location{}}
}

// WithPlaces registers autocomplete results for an exact query.
func (p *MockProvider) WithPlaces(query string, places []domain.Location) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.places[query] = places
	return p
}

// FailWith makes every subsequent call return err.
func (p *MockProvider) FailWith(err error) *MockProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
	return p
}

// Calls reports how many Route and Autocomplete calls were made.
func (p *MockProvider) Calls() (route, autocomplete int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.routeCalls, p.autocompleteCalls
}

func (p *MockProvider) Configured() bool { return true }

func (p *MockProvider) Route(ctx context.Context, from, to domain.Location) (ports.RouteResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routeCalls++

	if p.err != nil {
		return ports.RouteResult{}, p.err
	}
	if err := ctx.Err(); err != nil {
		return ports.RouteResult{}, err
	}

	r, ok := p.routes[mockKey(from, to)]
	if !ok {
		return ports.RouteResult{}, fmt.Errorf("missing pair %q -> %q", from.Name, to.Name)
	}

	return r, nil
}

func (p *MockProvider) Autocomplete(ctx context.Context, query string, limit int) ([]domain.Location, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.autocompleteCalls++

	if p.err != nil {
		return nil, p.err
	}

	places := p.places[query]
	if len(places) > limit {
		places = places[:limit]
	}
	return places, nil
}

func mockKey(from, to domain.Location) string {
	return fmt.Sprintf("%v,%v|%v,%v", from.Lat, from.Lng, to.Lat, to.Lng)
}
