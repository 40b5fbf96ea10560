package services

import (
	"context"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/platform/metrics"
	"triptracks-service/internal/ports"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

const (
	legTTL            = time.Hour
	autocompleteTTL   = time.Hour
	autocompleteLimit = 5

	defaultProviderTimeout = 5 * time.Second
)

// DistanceResolver turns coordinate pairs into routed legs and text queries
// into places. Results are cached; a configured provider is preferred and any
// provider failure degrades to a deterministic local estimate.
//
// The resolver never returns an error: the fallback is always available.
type DistanceResolver struct {
	cache    ports.Cache
	provider ports.RoutingProvider
	timeout  time.Duration
	metrics  *metrics.Metrics
}

func NewDistanceResolver(
	cache ports.Cache,
	provider ports.RoutingProvider,
	timeout time.Duration,
	m *metrics.Metrics,
) *DistanceResolver {
	if provider == nil {
		provider = ports.UnconfiguredProvider{}
	}
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}

	return &DistanceResolver{
		cache:    cache,
		provider: provider,
		timeout:  timeout,
		metrics:  m,
	}
}

// LegCacheKey is a function of both coordinate pairs in request order.
func LegCacheKey(src, dst domain.Location) string {
	return "route_" + formatCoord(src.Lat) + "_" + formatCoord(src.Lng) +
		"_" + formatCoord(dst.Lat) + "_" + formatCoord(dst.Lng)
}

// AutocompleteCacheKey namespaces a query with spaces replaced.
func AutocompleteCacheKey(query string) string {
	return "autocomplete_" + strings.ReplaceAll(query, " ", "_")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ResolveLeg returns the routed leg from src to dst.
func (r *DistanceResolver) ResolveLeg(ctx context.Context, src, dst domain.Location) domain.Leg {
	key := LegCacheKey(src, dst)

	if v, ok := r.cache.Get(key); ok {
		if leg, ok := v.(domain.Leg); ok {
			r.metrics.LegResolved(metrics.SourceCache)
			return leg
		}
	}

	leg, ok := r.routeViaProvider(ctx, src, dst)
	if ok {
		r.metrics.LegResolved(metrics.SourceProvider)
	} else {
		leg = FallbackLeg(src, dst)
		r.metrics.LegResolved(metrics.SourceFallback)
	}

	// Provenance is not recorded: fallback and provider legs share key and TTL.
	r.cache.Set(key, leg, legTTL)
	return leg
}

func (r *DistanceResolver) routeViaProvider(ctx context.Context, src, dst domain.Location) (domain.Leg, bool) {
	if !r.provider.Configured() {
		return domain.Leg{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.provider.Route(ctx, src, dst)
	if err != nil {
		zap.L().Warn("routing provider failed; using great-circle estimate",
			zap.String("from", src.Name), zap.String("to", dst.Name), zap.Error(err))
		return domain.Leg{}, false
	}

	if !validMetric(res.DistanceKm) || !validMetric(res.DurationMinutes) {
		zap.L().Warn("routing provider returned invalid metrics; using great-circle estimate",
			zap.Float64("distance_km", res.DistanceKm), zap.Float64("duration_minutes", res.DurationMinutes))
		return domain.Leg{}, false
	}

	return domain.Leg{
		DistanceKm:        round2(res.DistanceKm),
		EstimatedTimeMins: int(res.DurationMinutes),
	}, true
}

func validMetric(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// FallbackLeg estimates a leg from great-circle distance at 60 km/h, so the
// minute count equals the rounded kilometer count.
func FallbackLeg(src, dst domain.Location) domain.Leg {
	km := round2(Haversine(src.Lat, src.Lng, dst.Lat, dst.Lng))
	return domain.Leg{
		DistanceKm:        km,
		EstimatedTimeMins: int(math.Round(km)),
	}
}

// Autocomplete returns up to five places matching query.
func (r *DistanceResolver) Autocomplete(ctx context.Context, query string) []domain.Location {
	key := AutocompleteCacheKey(query)

	if v, ok := r.cache.Get(key); ok {
		if places, ok := v.([]domain.Location); ok {
			r.metrics.AutocompleteServed(metrics.SourceCache)
			return slices.Clone(places)
		}
	}

	var places []domain.Location
	if r.provider.Configured() {
		pctx, cancel := context.WithTimeout(ctx, r.timeout)
		res, err := r.provider.Autocomplete(pctx, query, autocompleteLimit)
		cancel()

		if err != nil {
			zap.L().Warn("autocomplete provider failed; using placeholders",
				zap.String("query", query), zap.Error(err))
		} else {
			places = res
		}
	}

	if len(places) > autocompleteLimit {
		places = places[:autocompleteLimit]
	}

	if len(places) > 0 {
		r.metrics.AutocompleteServed(metrics.SourceProvider)
	} else {
		places = FallbackPlaces(query)
		r.metrics.AutocompleteServed(metrics.SourceFallback)
	}

	r.cache.Set(key, slices.Clone(places), autocompleteTTL)
	return places
}

// FallbackPlaces synthesizes two placeholder places whose coordinates are
// derived from a hash of the lowercased query, so identical text always maps
// to identical coordinates.
func FallbackPlaces(query string) []domain.Location {
	lower := strings.ToLower(query)

	return []domain.Location{
		placeholder(query+" City", xxhash.Sum64String(lower)),
		placeholder(query+" Town", xxhash.Sum64String(lower+"#town")),
	}
}

// placeholder spreads the high and low 32 bits of h over latitude and longitude.
func placeholder(name string, h uint64) domain.Location {
	const span = float64(1 << 32)

	lat := float64(h>>32)/span*180 - 90
	lng := float64(h&0xffffffff)/span*360 - 180

	return domain.Location{
		Name: name,
		Lat:  math.Round(lat*1e4) / 1e4,
		Lng:  math.Round(lng*1e4) / 1e4,
	}
}
