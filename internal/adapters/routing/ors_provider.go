package routing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/platform/obs"
	"triptracks-service/internal/ports"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.openrouteservice.org"

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 4 << 10

// orsStatusError reports a non-2xx answer from one ORS endpoint.
type orsStatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *orsStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("ORS %s: status %d", e.Endpoint, e.Code)
	}
	return fmt.Sprintf("ORS %s: status %d: %s", e.Endpoint, e.Code, e.Body)
}

// Unauthorized reports whether the key was rejected, as opposed to the
// provider being down or the pair being unroutable.
func (e *orsStatusError) Unauthorized() bool {
	return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
}

// ORSProvider implements ports.RoutingProvider using OpenRouteService.
//
// It coordinates:
//   - Persistent route caching (optional)
//   - Persistent place-search caching (optional)
//   - Single-attempt external API calls bounded by an HTTP client timeout
//
// Failures are returned to the caller, which decides how to degrade.
// The provider is safe for concurrent use.
type ORSProvider struct {
	session    *http.Client
	apiKey     string
	baseURL    string
	profile    string
	routeStore ports.RouteStore
	placeStore ports.PlaceStore
}

func NewORSProvider(
	apiKey string,
	baseURL string,
	timeout time.Duration,
	routeStore ports.RouteStore,
	placeStore ports.PlaceStore,
) (*ORSProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ORS api key is empty")
	}

	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	provider := &ORSProvider{
		session:    &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		profile:    "driving-car",
		routeStore: routeStore,
		placeStore: placeStore,
	}

	return provider, nil
}

func (o *ORSProvider) Configured() bool { return true }

// normalize ensures consistent cache keys by collapsing whitespace and case.
func (o *ORSProvider) normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// routeKey identifies a directed coordinate pair at roughly 10cm precision.
func (o *ORSProvider) routeKey(from, to domain.Location) string {
	return fmt.Sprintf("%s:%.6f,%.6f|%.6f,%.6f", o.profile, from.Lat, from.Lng, to.Lat, to.Lng)
}

// Route returns the driving distance and duration between two coordinates.
func (o *ORSProvider) Route(
	ctx context.Context,
	from domain.Location,
	to domain.Location,
) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, "ors.Route")(&err)

	if !from.Valid() || !to.Valid() {
		return ports.RouteResult{}, errors.New("get ORS route: coordinates out of range")
	}

	key := o.routeKey(from, to)

	// Check persistent route cache before issuing external API calls.
	if o.routeStore != nil {
		hit, ok, err := o.routeStore.GetRoute(ctx, key)
		if err != nil {
			zap.L().Warn("route cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return hit, nil
		}
	}

	result, err := o.fetchRoute(ctx, from, to)
	if err != nil {
		return ports.RouteResult{}, fmt.Errorf("fetching route %q: %w", key, err)
	}

	if o.routeStore != nil {
		if err := o.routeStore.PutRoute(ctx, key, result); err != nil {
			zap.L().Warn("route cache write failed", zap.String("key", key), zap.Error(err))
		}
	}

	return result, nil
}

// Autocomplete returns up to limit places matching query.
func (o *ORSProvider) Autocomplete(
	ctx context.Context,
	query string,
	limit int,
) (_ []domain.Location, err error) {
	defer obs.Time(ctx, "ors.Autocomplete")(&err)

	norm := o.normalize(query)
	if norm == "" {
		return nil, errors.New("ORS autocomplete: query must be non-empty")
	}

	if limit <= 0 {
		limit = 5
	}

	// Resolve places via cache before calling ORS geocoding.
	if o.placeStore != nil {
		hit, ok, err := o.placeStore.GetPlaces(ctx, norm)
		if err != nil {
			zap.L().Warn("place cache read failed", zap.String("query", norm), zap.Error(err))
		} else if ok {
			return truncate(hit, limit), nil
		}
	}

	places, err := o.geocodeAutocomplete(ctx, norm, limit)
	if err != nil {
		return nil, fmt.Errorf("retrieving places for %q: %w", norm, err)
	}

	if o.placeStore != nil && len(places) > 0 {
		if err := o.placeStore.PutPlaces(ctx, norm, places); err != nil {
			zap.L().Warn("place cache write failed", zap.String("query", norm), zap.Error(err))
		}
	}

	return places, nil
}

// call issues one authenticated request against an ORS endpoint. Failed calls
// are not retried: the distance resolver falls back to a local estimate.
// On success the caller owns the response body.
func (o *ORSProvider) call(
	ctx context.Context,
	endpoint string,
	method string,
	url string,
	body io.Reader,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build ORS %s request: %w", endpoint, err)
	}
	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ORS %s: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		return nil, &orsStatusError{
			Endpoint: endpoint,
			Code:     resp.StatusCode,
			Body:     strings.TrimSpace(string(b)),
		}
	}
	return resp, nil
}

func truncate(places []domain.Location, limit int) []domain.Location {
	if len(places) > limit {
		return places[:limit]
	}
	return places
}
