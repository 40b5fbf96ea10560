package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"
	"triptracks-service/internal/adapters/cache"
	"triptracks-service/internal/adapters/routing"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/platform/metrics"
	"triptracks-service/internal/ports"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHaversineProperties(t *testing.T) {
	points := []domain.Location{
		{Lat: 0, Lng: 0},
		{Lat: 51.5074, Lng: -0.1278},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 89.9, Lng: 179.9},
	}

	for _, a := range points {
		if d := Haversine(a.Lat, a.Lng, a.Lat, a.Lng); d != 0 {
			t.Fatalf("distance to self = %v, want 0", d)
		}
		for _, b := range points {
			ab := Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
			ba := Haversine(b.Lat, b.Lng, a.Lat, a.Lng)
			if ab < 0 {
				t.Fatalf("negative distance %v", ab)
			}
			if math.Abs(ab-ba) > 1e-9 {
				t.Fatalf("asymmetric distance %v vs %v", ab, ba)
			}
		}
	}
}

func TestResolveLegCachesResult(t *testing.T) {
	src := domain.Location{Name: "A", Lat: 10, Lng: 10}
	dst := domain.Location{Name: "B", Lat: 10.5, Lng: 10.5}

	provider := routing.NewMockProvider([]routing.MockPair{
		{From: src, To: dst, DistanceKm: 78.456, Minutes: 64.9},
	})
	r := NewDistanceResolver(cache.NewMemoryCache(10, time.Hour), provider, time.Second, metrics.New(prometheus.NewRegistry()))

	first := r.ResolveLeg(context.Background(), src, dst)
	second := r.ResolveLeg(context.Background(), src, dst)

	if first != second {
		t.Fatalf("cached leg differs: %+v vs %+v", first, second)
	}
	if first.DistanceKm != 78.46 {
		t.Fatalf("expected distance rounded to 78.46, got %v", first.DistanceKm)
	}
	if first.EstimatedTimeMins != 64 {
		t.Fatalf("expected minutes truncated to 64, got %d", first.EstimatedTimeMins)
	}
	if calls, _ := provider.Calls(); calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", calls)
	}
}

func TestResolveLegKeyIsDirectional(t *testing.T) {
	a := domain.Location{Lat: 1, Lng: 2}
	b := domain.Location{Lat: 3, Lng: 4}

	if LegCacheKey(a, b) == LegCacheKey(b, a) {
		t.Fatalf("reversed legs must not share a cache key")
	}
	if got := LegCacheKey(a, b); got != "route_1_2_3_4" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestResolveLegProviderFailureFallsBack(t *testing.T) {
	src := domain.Location{Name: "A", Lat: 0, Lng: 0}
	dst := domain.Location{Name: "B", Lat: 0, Lng: 1}

	provider := routing.NewMockProvider(nil).FailWith(errors.New("upstream 503"))
	c := cache.NewMemoryCache(10, time.Hour)
	r := NewDistanceResolver(c, provider, time.Second, nil)

	leg := r.ResolveLeg(context.Background(), src, dst)

	if leg.DistanceKm != 111.19 || leg.EstimatedTimeMins != 111 {
		t.Fatalf("expected great-circle fallback, got %+v", leg)
	}
	if _, ok := c.Get(LegCacheKey(src, dst)); !ok {
		t.Fatalf("fallback leg should be cached")
	}
}

func TestResolveLegUnconfiguredSkipsProvider(t *testing.T) {
	r := NewDistanceResolver(cache.NewMemoryCache(10, time.Hour), nil, 0, nil)

	leg := r.ResolveLeg(context.Background(), domain.Location{Lat: 0, Lng: 0}, domain.Location{Lat: 1, Lng: 0})
	if leg.DistanceKm != 111.19 {
		t.Fatalf("expected 111.19, got %v", leg.DistanceKm)
	}
}

// chattyProvider ignores the requested limit.
type chattyProvider struct {
	places []domain.Location
	calls  int
}

func (p *chattyProvider) Configured() bool { return true }

func (p *chattyProvider) Route(context.Context, domain.Location, domain.Location) (ports.RouteResult, error) {
	return ports.RouteResult{}, errors.New("not used")
}

func (p *chattyProvider) Autocomplete(context.Context, string, int) ([]domain.Location, error) {
	p.calls++
	return p.places, nil
}

func TestAutocompleteProviderResultsTruncated(t *testing.T) {
	places := make([]domain.Location, 7)
	for i := range places {
		places[i] = domain.Location{Name: "P", Lat: float64(i), Lng: float64(i)}
	}

	provider := &chattyProvider{places: places}
	r := NewDistanceResolver(cache.NewMemoryCache(10, time.Hour), provider, time.Second, nil)

	got := r.Autocomplete(context.Background(), "goa")
	if len(got) != 5 {
		t.Fatalf("expected 5 places, got %d", len(got))
	}
	got[0].Name = "mutated"

	again := r.Autocomplete(context.Background(), "goa")
	if again[0].Name != "P" {
		t.Fatalf("cached places were mutated through a returned slice")
	}
	if provider.calls != 1 {
		t.Fatalf("expected 1 provider call, got %d", provider.calls)
	}
}

func TestAutocompleteFallbackIsDeterministic(t *testing.T) {
	r1 := NewDistanceResolver(cache.NewMemoryCache(10, time.Hour), nil, 0, nil)
	r2 := NewDistanceResolver(cache.NewMemoryCache(10, time.Hour), nil, 0, nil)

	a := r1.Autocomplete(context.Background(), "Lake Como")
	b := r2.Autocomplete(context.Background(), "Lake Como")

	if len(a) != 2 {
		t.Fatalf("expected 2 placeholder places, got %d", len(a))
	}
	if a[0].Name != "Lake Como City" || a[1].Name != "Lake Como Town" {
		t.Fatalf("unexpected names %q, %q", a[0].Name, a[1].Name)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("placeholder %d differs across resolvers: %+v vs %+v", i, a[i], b[i])
		}
		if !a[i].Valid() {
			t.Fatalf("placeholder %d has invalid coordinates %+v", i, a[i])
		}
	}

	// Case only affects the name, not the coordinates.
	lower := FallbackPlaces("lake como")
	if lower[0].Lat != a[0].Lat || lower[0].Lng != a[0].Lng {
		t.Fatalf("coordinates should not depend on case")
	}
}

func TestAutocompleteEmptyProviderResultFallsBack(t *testing.T) {
	provider := routing.NewMockProvider(nil)
	c := cache.NewMemoryCache(10, time.Hour)
	r := NewDistanceResolver(c, provider, time.Second, nil)

	got := r.Autocomplete(context.Background(), "nowhere special")
	if len(got) != 2 || got[0].Name != "nowhere special City" {
		t.Fatalf("expected placeholders, got %+v", got)
	}
	if _, ok := c.Get(AutocompleteCacheKey("nowhere special")); !ok {
		t.Fatalf("expected key %q to be cached", AutocompleteCacheKey("nowhere special"))
	}
	if AutocompleteCacheKey("nowhere special") != "autocomplete_nowhere_special" {
		t.Fatalf("unexpected autocomplete key %q", AutocompleteCacheKey("nowhere special"))
	}
}
