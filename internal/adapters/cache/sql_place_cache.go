package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"triptracks-service/internal/domain"
	"triptracks-service/internal/platform/obs"
)

// placeRecord is the JSON form of a place stored in place_cache.places.
type placeRecord struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
}

// SQLPlaceCache is a Postgres-backed cache mapping autocomplete queries to places.
type SQLPlaceCache struct {
	DB *sql.DB
}

func NewSQLPlaceCache(db *sql.DB) *SQLPlaceCache {
	return &SQLPlaceCache{DB: db}
}

// Fetch cached places for a normalized query.
func (s *SQLPlaceCache) GetPlaces(ctx context.Context, query string) (_ []domain.Location, _ bool, err error) {
	defer obs.Time(ctx, "place.cache.GetPlaces")(&err)

	if s.DB == nil {
		return nil, false, errors.New("place cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, false, errors.New("get place cache: query must not be empty")
	}

	q := `
	SELECT places
    FROM place_cache
    WHERE query = $1;
	`

	var raw []byte
	err = s.DB.QueryRowContext(ctx, q, query).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get place cache: query place_cache table: %w", err)
	}

	var records []placeRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, false, fmt.Errorf("get place cache: decode places for %q: %w", query, err)
	}

	out := make([]domain.Location, 0, len(records))
	for _, r := range records {
		out = append(out, domain.Location{Name: r.Name, Lat: r.Lat, Lng: r.Lng})
	}

	return out, true, nil
}

// Store query -> places in the cache.
func (s *SQLPlaceCache) PutPlaces(ctx context.Context, query string, places []domain.Location) (err error) {
	defer obs.Time(ctx, "place.cache.PutPlaces")(&err)

	if s.DB == nil {
		return errors.New("place cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("insert place cache: empty query key")
	}

	records := make([]placeRecord, 0, len(places))
	for _, p := range places {
		records = append(records, placeRecord{Name: p.Name, Lat: p.Lat, Lng: p.Lng})
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("insert place cache: encode places: %w", err)
	}

	q := `
	INSERT INTO place_cache (query, places, updated_at)
    VALUES ($1, $2, now())
	ON CONFLICT (query) DO UPDATE
	SET places = EXCLUDED.places,
		updated_at = EXCLUDED.updated_at;
	`
	if _, err := s.DB.ExecContext(ctx, q, query, raw); err != nil {
		return fmt.Errorf("insert place cache query=%q: %w", query, err)
	}

	return nil
}
