package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"triptracks-service/internal/platform/obs"
	"triptracks-service/internal/ports"
)

// SQLRouteCache is a Postgres-backed store of provider route results.
type SQLRouteCache struct {
	DB *sql.DB
}

func NewSQLRouteCache(db *sql.DB) *SQLRouteCache {
	return &SQLRouteCache{DB: db}
}

// Fetch the cached route stored under key.
func (s *SQLRouteCache) GetRoute(ctx context.Context, key string) (_ ports.RouteResult, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.GetRoute")(&err)

	if s.DB == nil {
		return ports.RouteResult{}, false, errors.New("route cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return ports.RouteResult{}, false, errors.New("get route cache: key must not be empty")
	}

	q := `
	SELECT distance_km, duration_minutes
    FROM route_cache
    WHERE route_key = $1;
	`

	var r ports.RouteResult
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&r.DistanceKm, &r.DurationMinutes)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteResult{}, false, nil
	}
	if err != nil {
		return ports.RouteResult{}, false, fmt.Errorf("get route cache: query route_cache table: %w", err)
	}

	return r, true, nil
}

// Store or replace the route result under key.
func (s *SQLRouteCache) PutRoute(ctx context.Context, key string, r ports.RouteResult) (err error) {
	defer obs.Time(ctx, "route.cache.PutRoute")(&err)

	if s.DB == nil {
		return errors.New("route cache: db is nil")
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("insert route cache: key must not be empty")
	}

	q := `
	INSERT INTO route_cache (route_key, distance_km, duration_minutes, updated_at)
    VALUES ($1, $2, $3, now())
	ON CONFLICT (route_key) DO UPDATE
	SET distance_km = EXCLUDED.distance_km,
		duration_minutes = EXCLUDED.duration_minutes,
		updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, key, r.DistanceKm, r.DurationMinutes); err != nil {
		return fmt.Errorf("insert route cache key=%q: %w", key, err)
	}

	return nil
}
