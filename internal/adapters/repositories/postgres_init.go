package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"triptracks-service/internal/domain"
)

// Initialize the Postgres schema used by the route stores and repositories.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		route_key TEXT PRIMARY KEY,
		distance_km DOUBLE PRECISION NOT NULL,
		duration_minutes DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createPlaceCacheQuery := `
	CREATE TABLE IF NOT EXISTS place_cache (
		query TEXT PRIMARY KEY,
		places JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createTravelersQuery := `
	CREATE TABLE IF NOT EXISTS travelers (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		avg_daily_food_expense DOUBLE PRECISION NOT NULL DEFAULT 0,
		avg_nightly_stay_expense DOUBLE PRECISION NOT NULL DEFAULT 0
	);
	`

	createVehiclesQuery := `
	CREATE TABLE IF NOT EXISTS vehicles (
		vehicle_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES travelers(user_id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		seats INTEGER NOT NULL DEFAULT 0,
		mileage_per_liter DOUBLE PRECISION NOT NULL DEFAULT 0,
		avg_distance_per_day DOUBLE PRECISION NOT NULL DEFAULT 0
	);
	`

	createTripChatsQuery := `
	CREATE TABLE IF NOT EXISTS trip_chats (
		message_id TEXT PRIMARY KEY,
		trip_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		username TEXT NOT NULL,
		text TEXT NOT NULL,
		sent_at TIMESTAMPTZ NOT NULL
	);
	`

	createIndexQueries := []string{
		`CREATE INDEX IF NOT EXISTS idx_vehicles_user_id ON vehicles(user_id);`,
		`CREATE INDEX IF NOT EXISTS idx_trip_chats_trip_sent ON trip_chats(trip_id, sent_at);`,
	}

	statements := []string{
		createRouteCacheQuery,
		createPlaceCacheQuery,
		createTravelersQuery,
		createVehiclesQuery,
		createTripChatsQuery,
	}
	statements = append(statements, createIndexQueries...)

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type VehicleSeed struct {
	VehicleID         string  `json:"vehicle_id"`
	Type              string  `json:"type"`
	Seats             int     `json:"seats"`
	MileagePerLiter   float64 `json:"mileage_per_liter"`
	AvgDistancePerDay float64 `json:"avg_distance_per_day"`
}

type TravelerSeed struct {
	UserID                string        `json:"user_id"`
	Username              string        `json:"username"`
	AvgDailyFoodExpense   float64       `json:"avg_daily_food_expense"`
	AvgNightlyStayExpense float64       `json:"avg_nightly_stay_expense"`
	Vehicles              []VehicleSeed `json:"vehicles"`
}

// Read and validate traveler seeds from a JSON file.
func LoadTravelerSeeds(jsonPath string) ([]*domain.Traveler, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("seed travelers: read %q: %w", jsonPath, err)
	}
	return ParseTravelerSeeds(bytes)
}

// Decode and validate traveler seeds.
func ParseTravelerSeeds(raw []byte) ([]*domain.Traveler, error) {
	var data []TravelerSeed
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("seed travelers: parse json: %w", err)
	}

	out := make([]*domain.Traveler, 0, len(data))
	seen := make(map[string]bool, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.UserID)
		if id == "" {
			return nil, fmt.Errorf("seed travelers: item at index %d: user_id cannot be empty", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("seed travelers: item at index %d: duplicate user_id %q", i+1, id)
		}
		seen[id] = true

		if item.AvgDailyFoodExpense < 0 || item.AvgNightlyStayExpense < 0 {
			return nil, fmt.Errorf("seed travelers: user_id=%q: expenses cannot be negative", id)
		}

		t := &domain.Traveler{
			UserID:                id,
			Username:              strings.TrimSpace(item.Username),
			AvgDailyFoodExpense:   item.AvgDailyFoodExpense,
			AvgNightlyStayExpense: item.AvgNightlyStayExpense,
			Vehicles:              make([]domain.Vehicle, 0, len(item.Vehicles)),
		}
		for j, v := range item.Vehicles {
			vid := strings.TrimSpace(v.VehicleID)
			if vid == "" {
				return nil, fmt.Errorf("seed travelers: user_id=%q vehicle #%d: vehicle_id cannot be empty", id, j+1)
			}
			if v.MileagePerLiter < 0 || v.AvgDistancePerDay < 0 {
				return nil, fmt.Errorf("seed travelers: vehicle_id=%q: capabilities cannot be negative", vid)
			}
			t.Vehicles = append(t.Vehicles, domain.Vehicle{
				ID:                vid,
				Type:              strings.TrimSpace(v.Type),
				Seats:             v.Seats,
				MileagePerLiter:   v.MileagePerLiter,
				AvgDistancePerDay: v.AvgDistancePerDay,
			})
		}
		out = append(out, t)
	}

	return out, nil
}

// Populate the travelers and vehicles tables from a JSON file.
// Existing travelers are replaced together with their saved vehicles.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) (int, error) {
	if db == nil {
		return 0, errors.New("seed travelers: DB is nil")
	}

	travelers, err := LoadTravelerSeeds(jsonPath)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed travelers: begin tx: %w", err)
	}
	defer tx.Rollback()

	upsertTraveler := `
	INSERT INTO travelers (
		user_id,
		username,
		avg_daily_food_expense,
		avg_nightly_stay_expense
	)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (user_id) DO UPDATE
	SET username = EXCLUDED.username,
		avg_daily_food_expense = EXCLUDED.avg_daily_food_expense,
		avg_nightly_stay_expense = EXCLUDED.avg_nightly_stay_expense;
	`
	deleteVehicles := `DELETE FROM vehicles WHERE user_id = $1;`
	insertVehicle := `
	INSERT INTO vehicles (
		vehicle_id,
		user_id,
		type,
		seats,
		mileage_per_liter,
		avg_distance_per_day
	)
	VALUES ($1, $2, $3, $4, $5, $6);
	`

	for _, t := range travelers {
		if _, err := tx.ExecContext(ctx, upsertTraveler,
			t.UserID, t.Username, t.AvgDailyFoodExpense, t.AvgNightlyStayExpense); err != nil {
			return 0, fmt.Errorf("seed travelers: upsert user_id=%q: %w", t.UserID, err)
		}
		if _, err := tx.ExecContext(ctx, deleteVehicles, t.UserID); err != nil {
			return 0, fmt.Errorf("seed travelers: clear vehicles user_id=%q: %w", t.UserID, err)
		}
		for _, v := range t.Vehicles {
			if _, err := tx.ExecContext(ctx, insertVehicle,
				v.ID, t.UserID, v.Type, v.Seats, v.MileagePerLiter, v.AvgDistancePerDay); err != nil {
				return 0, fmt.Errorf("seed travelers: insert vehicle_id=%q: %w", v.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed travelers: commit tx: %w", err)
	}

	return len(travelers), nil
}
